package eks

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/validation/field"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/kubeform/kubeform/pkg/cloud"
	"github.com/kubeform/kubeform/pkg/cloud/types"
)

// Provider provisions the EKS side. Cluster creation itself is not built
// out yet: Create ensures the member account exists and that the caller
// holds credentials for it, then returns the enriched spec.
type Provider struct {
	cfg      *cloud.Config
	accounts AccountClient
	observer cloud.Observer
	log      *logrus.Entry
}

func NewProvider(cfg *cloud.Config, observer cloud.Observer, logger *logrus.Logger) (*Provider, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	log := logger.WithField("provider", "eks")
	return &Provider{
		cfg:      cfg,
		accounts: NewOrganizationsService(log, nil),
		observer: observer,
		log:      log,
	}, nil
}

// Create ensures the organization member account for this project. An
// existing account is reused with the caller's credentials; a new account
// gets a freshly minted access key written into the spec, which the caller
// must persist since the secret is never retrievable again.
func (p *Provider) Create(ctx context.Context, opts *types.ClusterSpec) (*types.ClusterSpec, error) {
	options := cloud.MergeOptions(p.cfg, opts)
	if err := validateOptions(options); err != nil {
		return nil, err
	}
	if err := p.createProject(ctx, options); err != nil {
		return nil, err
	}

	cloud.SafeEmit(p.observer, p.log, cloud.EventPrerequisitesCreated, &cloud.PrerequisitesPayload{
		Provider: "eks",
		Prerequisites: []string{
			"account-created",
			"account-credentials-acquired",
		},
	})

	p.log.Warn("EKS cluster provisioning is not implemented yet; only the account was prepared")
	return options, nil
}

// GetRegions lists the known EKS regions.
func (p *Provider) GetRegions() []string {
	return GetRegions()
}

// GetZones lists the availability zones within a region.
func (p *Provider) GetZones(region string) []string {
	return GetZones(region)
}

// GetAPIVersions reports the pinned EKS control plane versions. The
// project and zone arguments exist to satisfy the provider contract; EKS
// offers no per-zone version discovery.
func (p *Provider) GetAPIVersions(ctx context.Context, projectID, zone string) (*types.APIVersions, error) {
	versions := eksVersions
	return &versions, nil
}

// GetKubeConfig is not available until EKS cluster provisioning is built out.
func (p *Provider) GetKubeConfig(ctx context.Context, opts *types.ClusterSpec) (clientcmdapi.Config, error) {
	return clientcmdapi.Config{}, errors.New("EKS kubeconfig retrieval is not implemented yet")
}

func (p *Provider) createProject(ctx context.Context, options *types.ClusterSpec) error {
	if options.ProjectID == "" {
		options.ProjectID = options.Name
	}
	log := p.log.WithField("project", options.ProjectID)
	log.Info("creating project")

	account, err := p.accounts.FindAccount(ctx, options.ProjectID)
	if err != nil {
		return err
	}
	if account != nil {
		log.Info("account already exists, skipping creation step")
		return nil
	}

	account, err = p.accounts.CreateAccount(ctx, options.ProjectID)
	if err != nil {
		return errors.Wrapf(err, "failed to create project %s", options.ProjectID)
	}
	creds, err := p.accounts.CreateAccessKey(ctx, *account.Name)
	if err != nil {
		return errors.Wrapf(err, "failed to create project %s", options.ProjectID)
	}
	options.Credentials = creds
	return nil
}

func validateOptions(options *types.ClusterSpec) error {
	var errs field.ErrorList
	if options.Name == "" {
		errs = append(errs, field.Required(field.NewPath("name"), "cluster name is required"))
	}
	if len(errs) > 0 {
		return &cloud.ValidationError{Errors: errs}
	}
	return nil
}
