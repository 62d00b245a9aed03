package gke

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	cloudresourcemanager "google.golang.org/api/cloudresourcemanager/v1"
	container "google.golang.org/api/container/v1"
	"google.golang.org/api/googleapi"
	iam "google.golang.org/api/iam/v1"
	storage "google.golang.org/api/storage/v1"

	"github.com/kubeform/kubeform/pkg/cloud/types"
)

// ResourceClient covers project lookup and creation under an organization.
type ResourceClient interface {
	GetProjects(ctx context.Context) ([]*cloudresourcemanager.Project, error)
	GetProject(ctx context.Context, projectID string) (*cloudresourcemanager.Project, error)
	CreateProject(ctx context.Context, projectID, organizationID string) (*cloudresourcemanager.Operation, error)
	GetOperation(ctx context.Context, name string) (*cloudresourcemanager.Operation, error)
}

// IdentityClient covers service accounts, keys, billing association, service
// enablement, and IAM role assignment.
type IdentityClient interface {
	CreateServiceAccount(ctx context.Context, projectID, name, displayName string) (*iam.ServiceAccount, error)
	CreateCredentials(ctx context.Context, projectID, email string) (*types.Credentials, error)
	AssignBilling(ctx context.Context, projectID, billingAccount string) error
	GetEnabledServices(ctx context.Context, projectID string) ([]string, error)
	EnableService(ctx context.Context, projectID, service string) error
	GetRoles(ctx context.Context, projectID string) (*cloudresourcemanager.Policy, error)
	AssignRoles(ctx context.Context, projectID, accountType, accountName string, roles []string) (*cloudresourcemanager.Policy, error)
}

// ClusterClient covers cluster creation and its long-running operation.
type ClusterClient interface {
	GetCluster(ctx context.Context, projectID, zone, name string) (*container.Cluster, error)
	CreateCluster(ctx context.Context, projectID, zone string, req *container.CreateClusterRequest) (*container.Operation, error)
	GetOperation(ctx context.Context, projectID, zone, operationID string) (*container.Operation, error)
	GetServerConfig(ctx context.Context, projectID, zone string) (*container.ServerConfig, error)
}

// BucketClient covers bucket-level IAM policy reads and writes.
type BucketClient interface {
	GetPolicy(ctx context.Context, bucket string) (*storage.Policy, error)
	SetPolicy(ctx context.Context, bucket string, policy *storage.Policy) (*storage.Policy, error)
}

// isNotFound matches the googleapi 404 any lookup-by-name treats as "does
// not exist". Anything else is a real failure and must be surfaced.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound
	}
	return false
}
