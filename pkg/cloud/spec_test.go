package cloud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeform/kubeform/pkg/cloud/types"
)

func TestMergeOptionsFillsDefaults(t *testing.T) {
	opts := &types.ClusterSpec{Name: "npm"}

	merged := MergeOptions(nil, opts)

	assert.Equal(t, "npm", merged.Name)
	assert.Equal(t, 1, merged.Managers)
	assert.Equal(t, 2, merged.Worker.Cores)
	assert.Equal(t, int64(3), merged.Worker.Count)
	assert.Equal(t, "13GB", merged.Worker.Memory)
	assert.Equal(t, 9, merged.Worker.MaxPerInstance)
	assert.Equal(t, "08:00:00Z", merged.Worker.MaintenanceWindow)
	assert.Equal(t, "0GB", merged.Worker.Storage.Ephemeral)
	assert.Equal(t, "100GB", merged.Worker.Storage.Persistent)
	assert.True(t, types.IsTrue(merged.Worker.Reserved))
	assert.True(t, types.IsTrue(merged.Flags.AutoRepair))
	assert.True(t, types.IsTrue(merged.Flags.BasicAuth))
	assert.True(t, types.IsTrue(merged.Flags.NetworkPolicy))
	assert.True(t, types.IsFalse(merged.Flags.AutoScale))
	assert.True(t, types.IsFalse(merged.Flags.IncludeDashboard))
}

func TestMergeOptionsCallerWinsOverConfigAndDefaults(t *testing.T) {
	cfg := &Config{
		Provider:       "gke",
		ProjectID:      "config-project",
		OrganizationID: "org-1",
		BillingAccount: "bill-1",
	}
	opts := &types.ClusterSpec{
		Name:      "npm",
		ProjectID: "caller-project",
		Worker:    types.WorkerSpec{Cores: 32},
	}

	merged := MergeOptions(cfg, opts)

	assert.Equal(t, "caller-project", merged.ProjectID)
	assert.Equal(t, "org-1", merged.OrganizationID)
	assert.Equal(t, "bill-1", merged.BillingAccount)
	assert.Equal(t, "gke", merged.Provider)
	assert.Equal(t, 32, merged.Worker.Cores)
	// unset worker fields still come from defaults
	assert.Equal(t, int64(3), merged.Worker.Count)
}

func TestMergeOptionsPreservesExplicitFalse(t *testing.T) {
	opts := &types.ClusterSpec{
		Name: "npm",
		Worker: types.WorkerSpec{
			Reserved: types.BoolPtr(false),
		},
		Flags: types.FlagSpec{
			BasicAuth: types.BoolPtr(false),
		},
	}

	merged := MergeOptions(nil, opts)

	require.NotNil(t, merged.Worker.Reserved)
	assert.False(t, *merged.Worker.Reserved)
	require.NotNil(t, merged.Flags.BasicAuth)
	assert.False(t, *merged.Flags.BasicAuth)
}

func TestMergeOptionsServiceAccountDerivation(t *testing.T) {
	merged := MergeOptions(nil, &types.ClusterSpec{Name: "npm", ProjectID: "npm-project"})
	assert.Equal(t, "npm-project-k8s-sa", merged.ServiceAccount)

	merged = MergeOptions(nil, &types.ClusterSpec{Name: "npm"})
	assert.Equal(t, "npm-k8s-sa", merged.ServiceAccount)

	// a caller-supplied account name is overwritten so it always matches
	// the resolved project
	merged = MergeOptions(nil, &types.ClusterSpec{Name: "npm", ServiceAccount: "custom"})
	assert.Equal(t, "npm-k8s-sa", merged.ServiceAccount)
}

func TestMergeOptionsDoesNotMutateInputs(t *testing.T) {
	opts := &types.ClusterSpec{Name: "npm"}
	merged := MergeOptions(nil, opts)

	merged.Worker.Cores = 64
	merged.Zones = append(merged.Zones, "us-east1-b")

	assert.Equal(t, 0, opts.Worker.Cores)
	assert.Empty(t, opts.Zones)
	// the static defaults must stay pristine across runs
	assert.Equal(t, 2, DefaultSpec().Worker.Cores)
}

func TestMergeOptionsIdempotent(t *testing.T) {
	opts := &types.ClusterSpec{Name: "npm", Zones: []string{"us-east1-b"}}

	once := MergeOptions(nil, opts)
	twice := MergeOptions(nil, once)

	assert.Equal(t, once, twice)
}
