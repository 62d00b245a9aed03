package gke

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/thoas/go-funk"
	cloudresourcemanager "google.golang.org/api/cloudresourcemanager/v1"
	container "google.golang.org/api/container/v1"
	"google.golang.org/api/option"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/kubeform/kubeform/pkg/cloud"
	"github.com/kubeform/kubeform/pkg/cloud/types"
)

// Services enabled before billing is associated. Only these work on an
// unbilled project.
var baselineServices = []string{
	"servicemanagement.googleapis.com",
	"cloudapis.googleapis.com",
}

// Services that require billing, enabled after the account is associated.
var supportingServices = []string{
	"compute.googleapis.com",
	"container.googleapis.com",
	"storage-component.googleapis.com",
	"storage-api.googleapis.com",
}

// Roles the cluster's service account needs to run nodes, write logs and
// metrics, and reach storage.
var clusterRoles = []string{
	"roles/logging.privateLogViewer",
	"roles/monitoring.metricWriter",
	"roles/monitoring.viewer",
	"roles/storage.admin",
	"roles/storage.objectAdmin",
	"roles/storage.objectCreator",
	"roles/storage.objectViewer",
}

var inProgressStatuses = map[string]bool{
	"":                   true,
	"PROVISIONING":       true,
	"RECONCILING":        true,
	"STATUS_UNSPECIFIED": true,
	"RUNNING":            true,
}

// Provider provisions GKE clusters. One provisioning run is a strictly
// sequential workflow: most steps are read-modify-write against shared
// remote state (IAM policies, the enabled-services list) where concurrent
// writers would race on optimistic-concurrency tokens. There is no state
// persisted across restarts; a failed run is re-run from the top and relies
// on each step's idempotence to skip completed work.
type Provider struct {
	cfg      *cloud.Config
	resource ResourceClient
	identity IdentityClient
	clusters ClusterClient
	buckets  BucketClient
	observer cloud.Observer
	log      *logrus.Entry
	sleep    cloud.SleepFunc
}

// NewProvider builds a GKE provider from the boundary config. Credentials
// come from cfg.AuthFile when set, otherwise application defaults.
func NewProvider(ctx context.Context, cfg *cloud.Config, observer cloud.Observer, logger *logrus.Logger) (*Provider, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	log := logger.WithField("provider", "gke")

	var opts []option.ClientOption
	if cfg.AuthFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.AuthFile))
	}

	resource, err := NewResourceService(ctx, log, opts...)
	if err != nil {
		return nil, err
	}
	identity, err := NewIAMService(ctx, log, opts...)
	if err != nil {
		return nil, err
	}
	clusters, err := NewClusterService(ctx, log, opts...)
	if err != nil {
		return nil, err
	}
	buckets, err := NewStorageService(ctx, log, opts...)
	if err != nil {
		return nil, err
	}

	return &Provider{
		cfg:      cfg,
		resource: resource,
		identity: identity,
		clusters: clusters,
		buckets:  buckets,
		observer: observer,
		log:      log,
		sleep:    cloud.Sleep,
	}, nil
}

// Create runs the provisioning workflow end to end and returns the enriched
// spec. Prior partial runs are absorbed: every step checks for its own
// completed work before acting, except key minting, which is skipped
// whenever the caller supplied credentials.
func (p *Provider) Create(ctx context.Context, opts *types.ClusterSpec) (*types.ClusterSpec, error) {
	options := cloud.MergeOptions(p.cfg, opts)
	if err := ValidateOptions(options); err != nil {
		return nil, err
	}

	if err := p.createProject(ctx, options); err != nil {
		return nil, err
	}
	if err := p.enableServices(ctx, options.ProjectID, baselineServices); err != nil {
		return nil, err
	}
	if err := p.identity.AssignBilling(ctx, options.ProjectID, options.BillingAccount); err != nil {
		return nil, errors.Wrapf(err, "failed to associate billing with project %s", options.ProjectID)
	}
	if err := p.enableServices(ctx, options.ProjectID, supportingServices); err != nil {
		return nil, err
	}
	if err := p.createClusterService(ctx, options); err != nil {
		return nil, err
	}
	if options.Credentials == nil {
		p.log.WithField("project", options.ProjectID).Info("acquiring service account credentials")
		creds, err := p.identity.CreateCredentials(ctx, options.ProjectID, options.ServiceAccount)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get account credentials for %s", options.ServiceAccount)
		}
		options.Credentials = creds
	} else {
		p.log.Info("reusing caller-supplied service account credentials")
	}
	p.log.WithField("project", options.ProjectID).Info("setting service account roles")
	if _, err := p.identity.AssignRoles(ctx, options.ProjectID, "serviceAccount", options.ServiceAccount, clusterRoles); err != nil {
		return nil, errors.Wrapf(err, "failed to assign roles to cluster service %s", options.ServiceAccount)
	}

	cloud.SafeEmit(p.observer, p.log, cloud.EventPrerequisitesCreated, &cloud.PrerequisitesPayload{
		Provider: "gke",
		Prerequisites: []string{
			"project-created",
			"service-apis-enabled",
			"billing-associated",
			"service-account-created",
			"account-credentials-acquired",
			"iam-roles-assigned",
		},
	})

	if err := p.grantBucketAccess(ctx, options); err != nil {
		return nil, err
	}
	cloud.SafeEmit(p.observer, p.log, cloud.EventBucketPermissionsSet, &cloud.BucketPermissionsPayload{
		ReadAccess:  options.ReadableBuckets,
		WriteAccess: options.WriteableBuckets,
	})

	request := ClusterRequest(options)
	if err := p.createCluster(ctx, options, request); err != nil {
		return nil, err
	}
	cloud.SafeEmit(p.observer, p.log, cloud.EventClusterInitialized, &cloud.ClusterInitializedPayload{
		KubernetesCluster: request,
	})

	if err := p.checkCluster(ctx, options); err != nil {
		return nil, err
	}
	p.clusterDetails(ctx, options)

	return options, nil
}

// GetRegions lists the known GKE regions.
func (p *Provider) GetRegions() []string {
	return GetRegions()
}

// GetZones lists the zones within a region.
func (p *Provider) GetZones(region string) []string {
	return GetZones(region)
}

// GetAPIVersions reports the master versions the zone's control plane
// accepts.
func (p *Provider) GetAPIVersions(ctx context.Context, projectID, zone string) (*types.APIVersions, error) {
	config, err := p.clusters.GetServerConfig(ctx, projectID, zone)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get server config for %s/%s", projectID, zone)
	}
	return &types.APIVersions{
		DefaultClusterVersion: config.DefaultClusterVersion,
		ValidMasterVersions:   config.ValidMasterVersions,
	}, nil
}

// GetKubeConfig reads the provisioned cluster back and builds a client
// config from its master auth material.
func (p *Provider) GetKubeConfig(ctx context.Context, opts *types.ClusterSpec) (clientcmdapi.Config, error) {
	if len(opts.Zones) == 0 {
		return clientcmdapi.Config{}, errors.New("at least one zone is required to locate the cluster")
	}
	projectID := opts.ProjectID
	if projectID == "" {
		projectID = opts.Name
	}
	cluster, err := p.clusters.GetCluster(ctx, projectID, opts.Zones[0], opts.Name)
	if err != nil {
		return clientcmdapi.Config{}, errors.Wrapf(err, "failed to get cluster %s", opts.Name)
	}
	return GenerateKubeConfig(cluster)
}

// createProject finds the project in the organization's project list, or
// creates it and waits for the creation operation to finish. An existing
// project short-circuits with its metadata.
func (p *Provider) createProject(ctx context.Context, options *types.ClusterSpec) error {
	if options.ProjectID == "" {
		options.ProjectID = options.Name
	}
	log := p.log.WithField("project", options.ProjectID)
	log.Info("creating project")

	projects, err := p.resource.GetProjects(ctx)
	if err != nil {
		// a failed listing degrades to the create path, which will
		// report a conflict if the project really exists
		log.Warnf("failed to get a project list to check for project existence: %v", err)
	}
	for _, proj := range projects {
		if proj.ProjectId == options.ProjectID {
			log.Info("project already exists, skipping creation step")
			options.ProjectNumber = proj.ProjectNumber
			return nil
		}
	}

	op, err := p.resource.CreateProject(ctx, options.ProjectID, options.OrganizationID)
	if err != nil {
		return errors.Wrapf(err, "failed to create project %s for organization %s", options.ProjectID, options.OrganizationID)
	}
	op, err = p.waitForResourceOperation(ctx, op)
	if err != nil {
		return errors.Wrapf(err, "failed to create project %s for organization %s", options.ProjectID, options.OrganizationID)
	}
	if op.Error != nil {
		return errors.Errorf("failed to create project %s for organization %s with %s", options.ProjectID, options.OrganizationID, op.Error.Message)
	}

	proj, err := p.resource.GetProject(ctx, options.ProjectID)
	if err != nil {
		log.Warnf("failed to read back new project: %v", err)
		return nil
	}
	options.ProjectNumber = proj.ProjectNumber
	return nil
}

func (p *Provider) waitForResourceOperation(ctx context.Context, op *cloudresourcemanager.Operation) (*cloudresourcemanager.Operation, error) {
	pause := cloud.ServicePollBackoff.Initial
	for !op.Done {
		if err := p.sleep(ctx, pause); err != nil {
			return nil, err
		}
		pause = cloud.ServicePollBackoff.Step(pause)
		var err error
		op, err = p.resource.GetOperation(ctx, op.Name)
		if err != nil {
			return nil, err
		}
	}
	return op, nil
}

// enableServices enables only the delta between desired and already-enabled
// services, one at a time in list order. All-enabled means zero calls.
func (p *Provider) enableServices(ctx context.Context, projectID string, services []string) error {
	enabled, err := p.identity.GetEnabledServices(ctx, projectID)
	if err != nil {
		return err
	}
	p.log.WithField("project", projectID).Infof("enabling services %v", services)
	for _, svc := range services {
		if funk.ContainsString(enabled, svc) {
			p.log.WithField("service", svc).Debug("service already enabled")
			continue
		}
		if err := p.identity.EnableService(ctx, projectID, svc); err != nil {
			return err
		}
	}
	return nil
}

// createClusterService creates or adopts the cluster's service account and
// rewrites the spec's serviceAccount field to the canonical email.
func (p *Provider) createClusterService(ctx context.Context, options *types.ClusterSpec) error {
	p.log.WithField("project", options.ProjectID).Info("creating service account")
	account, err := p.identity.CreateServiceAccount(ctx, options.ProjectID, options.ServiceAccount, "kubernetes cluster service account")
	if err != nil {
		return errors.Wrapf(err, "failed to create cluster service %s", options.ServiceAccount)
	}
	if account.Email != "" {
		options.ServiceAccount = account.Email
	}
	return nil
}

// grantBucketAccess grants read and write roles bucket by bucket, strictly
// sequentially: concurrent writes against one bucket's policy would race on
// its etag.
func (p *Provider) grantBucketAccess(ctx context.Context, options *types.ClusterSpec) error {
	p.log.WithField("project", options.ProjectID).Info("granting bucket access")
	member := "serviceAccount:" + options.ServiceAccount
	for _, bucket := range options.ReadableBuckets {
		if err := p.grantBucketRole(ctx, bucket, RoleObjectViewer, member); err != nil {
			return err
		}
	}
	for _, bucket := range options.WriteableBuckets {
		if err := p.grantBucketRole(ctx, bucket, RoleLegacyBucketWriter, member); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) grantBucketRole(ctx context.Context, bucket, role, member string) error {
	policy, err := p.buckets.GetPolicy(ctx, bucket)
	if err != nil {
		return err
	}
	if !BindRoleToMember(policy, role, member) {
		p.log.WithFields(logrus.Fields{"bucket": bucket, "role": role}).Debug("member already bound")
		return nil
	}
	if _, err := p.buckets.SetPolicy(ctx, bucket, policy); err != nil {
		return errors.Wrapf(err, "failed to grant %s to %s", role, member)
	}
	return nil
}

// createCluster adopts an existing cluster of the same name, otherwise
// issues the create call. The only transient signal is the provider asking
// to wait a few minutes while the new project's environment settles; that
// retries the same call after a long flat pause. Everything else is fatal.
func (p *Provider) createCluster(ctx context.Context, options *types.ClusterSpec, request *container.CreateClusterRequest) error {
	zone := options.Zones[0]
	log := p.log.WithField("project", options.ProjectID)
	log.Info("creating Kubernetes cluster")

	existing, err := p.clusters.GetCluster(ctx, options.ProjectID, zone, options.Name)
	if err == nil {
		log.Info("cluster already exists, adopting master credentials")
		if existing.MasterAuth != nil {
			options.User = existing.MasterAuth.Username
			options.Password = existing.MasterAuth.Password
		}
		return nil
	}
	if !isNotFound(err) {
		log.Debugf("could not check for existing cluster: %v", err)
	}

	var lastErr error
	for attempt := 0; attempt < cloud.MaxTransientRetries; attempt++ {
		op, err := p.clusters.CreateCluster(ctx, options.ProjectID, zone, request)
		if err == nil {
			options.Operation = &types.Operation{
				Name: op.Name,
				Zone: zone,
				Kind: "create-cluster",
			}
			return nil
		}
		if !cloud.IsEnvironmentNotReady(err) {
			return errors.Wrapf(err, "failed to instantiate cluster %s", options.Name)
		}
		log.Warnf("cluster environment not ready yet, trying again in %s", cloud.EnvironmentRetryDelay)
		lastErr = err
		if err := p.sleep(ctx, cloud.EnvironmentRetryDelay); err != nil {
			return err
		}
	}
	return &cloud.RetryExhaustedError{
		Op:       fmt.Sprintf("create cluster %s", options.Name),
		Attempts: cloud.MaxTransientRetries,
		Last:     lastErr,
	}
}

// checkCluster polls the creation operation until its status leaves the
// in-progress set. Terminal error statuses end the poll like success does;
// the details fetch that follows is the caller-visible readiness check, so
// an error status is only logged here.
func (p *Provider) checkCluster(ctx context.Context, options *types.ClusterSpec) error {
	if options.Operation == nil {
		return nil
	}
	pause := cloud.ClusterPollBackoff.Initial
	for {
		op, err := p.clusters.GetOperation(ctx, options.ProjectID, options.Operation.Zone, options.Operation.Name)
		if err != nil {
			return errors.Wrapf(err, "failed to check cluster operation %s", options.Operation.Name)
		}
		p.log.Infof("cluster status is %s", op.Status)
		if !inProgressStatuses[op.Status] {
			if op.StatusMessage != "" {
				p.log.WithField("status", op.Status).Warnf("cluster operation finished with message: %s", op.StatusMessage)
			}
			return nil
		}
		if err := p.sleep(ctx, pause); err != nil {
			return err
		}
		pause = cloud.ClusterPollBackoff.Step(pause)
	}
}

// clusterDetails fetches the master endpoint. The cluster is already
// confirmed created by this point, so a fetch failure degrades to an unknown
// endpoint instead of failing the run.
func (p *Provider) clusterDetails(ctx context.Context, options *types.ClusterSpec) {
	cluster, err := p.clusters.GetCluster(ctx, options.ProjectID, options.Zones[0], options.Name)
	if err != nil {
		p.log.Errorf("failed to get cluster details for project %q cluster %q: %v", options.ProjectID, options.Name, err)
		return
	}
	options.MasterEndpoint = cluster.Endpoint
}
