package cloud

import (
	"context"

	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/kubeform/kubeform/pkg/cloud/types"
)

// Provider is the produced interface of this module: a single entry point
// that runs the provisioning workflow and resolves with the enriched spec,
// plus the metadata projections callers use to build one.
type Provider interface {
	// Create runs the full provisioning workflow for the given cluster
	// spec and returns the spec enriched with everything the run
	// discovered or generated (project number, service-account email,
	// credentials, operation handle, master endpoint).
	Create(ctx context.Context, opts *types.ClusterSpec) (*types.ClusterSpec, error)

	// GetRegions lists the regions the provider can place clusters in.
	GetRegions() []string

	// GetZones lists the availability zones within a region.
	GetZones(region string) []string

	// GetAPIVersions reports the Kubernetes master versions the provider
	// accepts for a new cluster.
	GetAPIVersions(ctx context.Context, projectID, zone string) (*types.APIVersions, error)

	// GetKubeConfig builds a client config for a provisioned cluster.
	GetKubeConfig(ctx context.Context, opts *types.ClusterSpec) (clientcmdapi.Config, error)
}
