package cloud

import (
	"fmt"

	"github.com/kubeform/kubeform/pkg/cloud/types"
	"github.com/kubeform/kubeform/pkg/utils/objects"
)

// defaults fills every field a user is allowed to omit. Flags default to the
// conservative posture: repairs on, scaling off, dashboard off, network
// policy on.
var defaults = &types.ClusterSpec{
	Managers: 1,
	Worker: types.WorkerSpec{
		Cores:             2,
		Count:             3,
		Memory:            "13GB",
		MaxPerInstance:    9,
		Reserved:          types.BoolPtr(true),
		MaintenanceWindow: "08:00:00Z",
		Storage: types.StorageSpec{
			Ephemeral:  "0GB",
			Persistent: "100GB",
		},
	},
	Flags: types.FlagSpec{
		AlphaFeatures:       types.BoolPtr(false),
		AuthedNetworksOnly:  types.BoolPtr(false),
		AutoRepair:          types.BoolPtr(true),
		AutoScale:           types.BoolPtr(false),
		AutoUpgrade:         types.BoolPtr(false),
		BasicAuth:           types.BoolPtr(true),
		ClientCert:          types.BoolPtr(true),
		IncludeDashboard:    types.BoolPtr(false),
		LegacyAuthorization: types.BoolPtr(false),
		LoadBalancedHTTP:    types.BoolPtr(true),
		NetworkPolicy:       types.BoolPtr(true),
		PrivateCluster:      types.BoolPtr(false),
		ServiceMonitoring:   types.BoolPtr(false),
		ServiceLogging:      types.BoolPtr(false),
	},
}

// DefaultSpec returns a fresh copy of the static defaults. Callers may
// mutate the result freely.
func DefaultSpec() *types.ClusterSpec {
	return objects.Clone(defaults).(*types.ClusterSpec)
}

// MergeOptions resolves a provisioning spec: caller overrides win, the
// boundary config fills identity fields, defaults fill the rest. The
// service-account name is always recomputed from the resolved project so it
// stays consistent with whatever identity the run converges on.
func MergeOptions(cfg *Config, opts *types.ClusterSpec) *types.ClusterSpec {
	merged := &types.ClusterSpec{}
	if opts != nil {
		merged = objects.Clone(opts).(*types.ClusterSpec)
	}
	if cfg != nil {
		objects.MergeObject(merged, &types.ClusterSpec{
			Provider:       cfg.Provider,
			ProjectID:      cfg.ProjectID,
			OrganizationID: cfg.OrganizationID,
			BillingAccount: cfg.BillingAccount,
		})
	}
	objects.MergeObject(merged, DefaultSpec())

	name := merged.ProjectID
	if name == "" {
		name = merged.Name
	}
	merged.ServiceAccount = fmt.Sprintf("%s-k8s-sa", name)
	return merged
}
