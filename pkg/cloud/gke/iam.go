package gke

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	cloudbilling "google.golang.org/api/cloudbilling/v1"
	cloudresourcemanager "google.golang.org/api/cloudresourcemanager/v1"
	iam "google.golang.org/api/iam/v1"
	"google.golang.org/api/option"
	serviceusage "google.golang.org/api/serviceusage/v1"

	"github.com/kubeform/kubeform/pkg/cloud"
	"github.com/kubeform/kubeform/pkg/cloud/types"
	"github.com/kubeform/kubeform/pkg/utils/objects"
)

const credentialsKeyType = "TYPE_GOOGLE_CREDENTIALS_FILE"

// IAMService implements IdentityClient against the live IAM, Resource
// Manager, Cloud Billing, and Service Usage APIs.
type IAMService struct {
	iam     *iam.Service
	crm     *cloudresourcemanager.Service
	billing *cloudbilling.APIService
	usage   *serviceusage.Service
	log     *logrus.Entry
	sleep   cloud.SleepFunc
}

func NewIAMService(ctx context.Context, log *logrus.Entry, opts ...option.ClientOption) (*IAMService, error) {
	iamSvc, err := iam.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "could not create iam client")
	}
	crmSvc, err := cloudresourcemanager.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "could not create resource manager client")
	}
	billingSvc, err := cloudbilling.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "could not create billing client")
	}
	usageSvc, err := serviceusage.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "could not create service usage client")
	}
	return &IAMService{
		iam:     iamSvc,
		crm:     crmSvc,
		billing: billingSvc,
		usage:   usageSvc,
		log:     log,
		sleep:   cloud.Sleep,
	}, nil
}

// ServiceAccountEmail returns the deterministic email of a project's service
// account.
func ServiceAccountEmail(projectID, name string) string {
	return fmt.Sprintf("%s@%s.iam.gserviceaccount.com", name, projectID)
}

// CreateServiceAccount returns the existing account when one with the
// deterministic email already exists, otherwise creates it. A 404 on lookup
// means "does not exist"; any other lookup failure is surfaced.
func (s *IAMService) CreateServiceAccount(ctx context.Context, projectID, name, displayName string) (*iam.ServiceAccount, error) {
	resource := fmt.Sprintf("projects/%s/serviceAccounts/%s", projectID, ServiceAccountEmail(projectID, name))
	existing, err := s.iam.Projects.ServiceAccounts.Get(resource).Context(ctx).Do()
	if err == nil {
		s.log.WithField("account", existing.Email).Info("service account already exists, skipping creation")
		return existing, nil
	}
	if !isNotFound(err) {
		return nil, errors.Wrapf(err, "failed to look up service account %s", name)
	}
	return s.iam.Projects.ServiceAccounts.Create("projects/"+projectID, &iam.CreateServiceAccountRequest{
		AccountId: name,
		ServiceAccount: &iam.ServiceAccount{
			DisplayName: displayName,
		},
	}).Context(ctx).Do()
}

// CreateCredentials mints a new key for the account and decodes it into
// structured credentials. Not idempotent: every call produces a new key and
// old keys cannot be fetched again, so callers must persist the result.
func (s *IAMService) CreateCredentials(ctx context.Context, projectID, email string) (*types.Credentials, error) {
	resource := fmt.Sprintf("projects/%s/serviceAccounts/%s", projectID, email)
	key, err := s.iam.Projects.ServiceAccounts.Keys.Create(resource, &iam.CreateServiceAccountKeyRequest{
		PrivateKeyType: credentialsKeyType,
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(key.PrivateKeyData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode private key data")
	}
	creds := &types.Credentials{}
	if err := json.Unmarshal(raw, creds); err != nil {
		return nil, errors.Wrap(err, "failed to parse credentials file")
	}
	return creds, nil
}

// AssignBilling associates the billing account with the project. A no-op
// when the project already bills to that account.
func (s *IAMService) AssignBilling(ctx context.Context, projectID, billingAccount string) error {
	name := "projects/" + projectID
	info, err := s.billing.Projects.GetBillingInfo(name).Context(ctx).Do()
	if err == nil && strings.Contains(info.BillingAccountName, billingAccount) {
		s.log.WithField("project", projectID).Debug("billing account already associated")
		return nil
	}
	if err != nil {
		// a failed pre-check falls through to the update
		s.log.WithField("project", projectID).Warnf("failed to check billing: %v", err)
	}
	_, err = s.billing.Projects.UpdateBillingInfo(name, &cloudbilling.ProjectBillingInfo{
		BillingAccountName: "billingAccounts/" + billingAccount,
	}).Context(ctx).Do()
	return err
}

// GetEnabledServices lists the service names currently enabled on the
// project, e.g. "compute.googleapis.com".
func (s *IAMService) GetEnabledServices(ctx context.Context, projectID string) ([]string, error) {
	var enabled []string
	call := s.usage.Services.List("projects/" + projectID).Filter("state:ENABLED")
	err := call.Pages(ctx, func(resp *serviceusage.ListServicesResponse) error {
		for _, svc := range resp.Services {
			if svc.Config != nil {
				enabled = append(enabled, svc.Config.Name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list enabled services for %s", projectID)
	}
	return enabled, nil
}

// EnableService turns a service on and waits for the enable operation to
// complete.
func (s *IAMService) EnableService(ctx context.Context, projectID, service string) error {
	s.log.WithFields(logrus.Fields{"project": projectID, "service": service}).Debug("enabling service")
	op, err := s.usage.Services.Enable(
		fmt.Sprintf("projects/%s/services/%s", projectID, service),
		&serviceusage.EnableServiceRequest{},
	).Context(ctx).Do()
	if err != nil {
		return errors.Wrapf(err, "failed to enable %s on %s", service, projectID)
	}
	return s.waitForService(ctx, op)
}

func (s *IAMService) waitForService(ctx context.Context, op *serviceusage.Operation) error {
	pause := cloud.ServicePollBackoff.Initial
	for !op.Done {
		if err := s.sleep(ctx, pause); err != nil {
			return err
		}
		pause = cloud.ServicePollBackoff.Step(pause)
		name := op.Name
		var err error
		op, err = s.usage.Operations.Get(name).Context(ctx).Do()
		if err != nil {
			return errors.Wrapf(err, "failed to check service operation %s", name)
		}
	}
	return nil
}

// GetRoles fetches the project's current IAM policy.
func (s *IAMService) GetRoles(ctx context.Context, projectID string) (*cloudresourcemanager.Policy, error) {
	return s.crm.Projects.GetIamPolicy(projectID, &cloudresourcemanager.GetIamPolicyRequest{}).Context(ctx).Do()
}

// AssignRoles adds {accountType}:{accountName} to each role's binding,
// consuming the role list from the end. Each role is written as a full
// policy update. A "please retry" rejection restarts that role from a
// freshly fetched policy, discarding local state accumulated in the pass.
// Roles already committed stay committed on failure.
func (s *IAMService) AssignRoles(ctx context.Context, projectID, accountType, accountName string, roles []string) (*cloudresourcemanager.Policy, error) {
	policy, err := s.GetRoles(ctx, projectID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read IAM policy for %s", projectID)
	}
	member := fmt.Sprintf("%s:%s", accountType, accountName)
	for i := len(roles) - 1; i >= 0; i-- {
		policy, err = s.assignRole(ctx, projectID, policy, roles[i], member)
		if err != nil {
			return nil, err
		}
	}
	return policy, nil
}

// assignRole is one read-modify-write cycle. Each attempt works on its own
// copy of the policy; no attempt aliases another's state.
func (s *IAMService) assignRole(ctx context.Context, projectID string, policy *cloudresourcemanager.Policy, role, member string) (*cloudresourcemanager.Policy, error) {
	var lastErr error
	for attempt := 0; attempt < cloud.MaxTransientRetries; attempt++ {
		updated := objects.Clone(policy).(*cloudresourcemanager.Policy)
		AddBinding(updated, role, member)
		s.log.WithFields(logrus.Fields{"role": role, "member": member}).Info("adding role")

		_, err := s.crm.Projects.SetIamPolicy(projectID, &cloudresourcemanager.SetIamPolicyRequest{
			Policy: updated,
		}).Context(ctx).Do()
		if err == nil {
			return s.checkRole(ctx, projectID, policy.Etag)
		}
		if !cloud.IsPolicyRetry(err) {
			return nil, errors.Wrapf(err, "failed to assign %s to %s", role, member)
		}

		s.log.WithField("role", role).Warn("remote policy not yet consistent, retrying in 200ms")
		lastErr = err
		if err := s.sleep(ctx, cloud.PolicyRetryDelay); err != nil {
			return nil, err
		}
		policy, err = s.GetRoles(ctx, projectID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to re-read IAM policy for %s", projectID)
		}
	}
	return nil, &cloud.RetryExhaustedError{
		Op:       fmt.Sprintf("assign %s to %s", role, member),
		Attempts: cloud.MaxTransientRetries,
		Last:     lastErr,
	}
}

// checkRole polls until the policy's etag moves past the pre-write value, so
// the next role in the pass never works from a stale read.
func (s *IAMService) checkRole(ctx context.Context, projectID, previousEtag string) (*cloudresourcemanager.Policy, error) {
	pause := cloud.PolicyPollBackoff.Initial
	for {
		policy, err := s.GetRoles(ctx, projectID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read IAM policy for %s", projectID)
		}
		if policy.Etag != previousEtag {
			return policy, nil
		}
		if err := s.sleep(ctx, pause); err != nil {
			return nil, err
		}
		pause = cloud.PolicyPollBackoff.Step(pause)
	}
}

// AddBinding adds member to the role's binding, creating the binding when
// the role is absent. Reports whether the policy changed; re-adding an
// existing member is a no-op and never duplicates.
func AddBinding(policy *cloudresourcemanager.Policy, role, member string) bool {
	for _, binding := range policy.Bindings {
		if binding.Role != role {
			continue
		}
		for _, m := range binding.Members {
			if m == member {
				return false
			}
		}
		binding.Members = append(binding.Members, member)
		return true
	}
	policy.Bindings = append(policy.Bindings, &cloudresourcemanager.Binding{
		Role:    role,
		Members: []string{member},
	})
	return true
}
