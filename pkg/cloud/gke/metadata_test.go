package gke

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeform/kubeform/pkg/cloud/types"
)

func TestGetMachineType(t *testing.T) {
	cases := []struct {
		name   string
		worker types.WorkerSpec
		want   string
	}{
		{
			name:   "defaults pick the cheapest two-core highmem",
			worker: types.WorkerSpec{Cores: 2, Memory: "13GB"},
			want:   "n1-highmem-2",
		},
		{
			name:   "8GB exceeds the standard two-core tier",
			worker: types.WorkerSpec{Cores: 2, Memory: "8GB"},
			want:   "n1-highmem-2",
		},
		{
			name:   "unspecified memory assumes 1GB",
			worker: types.WorkerSpec{Cores: 32},
			want:   "n1-highcpu-32",
		},
		{
			name:   "18GB fits the highcpu 32-core tier",
			worker: types.WorkerSpec{Cores: 32, Memory: "18GB"},
			want:   "n1-highcpu-32",
		},
		{
			name:   "64GB needs the standard 32-core tier",
			worker: types.WorkerSpec{Cores: 32, Memory: "64GB"},
			want:   "n1-standard-32",
		},
		{
			name:   "high memory forces the standard tier",
			worker: types.WorkerSpec{Cores: 32, Memory: "120GB"},
			want:   "n1-standard-32",
		},
		{
			name:   "memory in MB converts to GB",
			worker: types.WorkerSpec{Cores: 1, Memory: "2048MB"},
			want:   "n1-standard-1",
		},
		{
			name:   "unparseable memory falls back to 1GB",
			worker: types.WorkerSpec{Cores: 2, Memory: "lots"},
			want:   "n1-highcpu-2",
		},
		{
			name:   "nothing in the catalog is large enough",
			worker: types.WorkerSpec{Cores: 512},
			want:   "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GetMachineType(tc.worker))
		})
	}
}

func TestParseSize(t *testing.T) {
	size, err := parseSize("100GB")
	require.NoError(t, err)
	assert.Equal(t, 100.0, size)

	size, err = parseSize("512MB")
	require.NoError(t, err)
	assert.Equal(t, 0.5, size)

	_, err = parseSize("100")
	assert.Error(t, err)
	_, err = parseSize("abcGB")
	assert.Error(t, err)
}

func TestGetRegionsSorted(t *testing.T) {
	regions := GetRegions()
	assert.True(t, sort.StringsAreSorted(regions))
	assert.Contains(t, regions, "us-central1")
	assert.Contains(t, regions, "europe-west1")
}

func TestGetZones(t *testing.T) {
	assert.Equal(t, []string{"europe-west1-b", "europe-west1-c", "europe-west1-d"}, GetZones("europe-west1"))
	assert.Len(t, GetZones("us-central1"), 4)
	assert.Nil(t, GetZones("mars-north1"))
}

func TestGetAllLocationsIncludesZonesAndRegions(t *testing.T) {
	locations := GetAllLocations()
	assert.Contains(t, locations, "us-central1")
	assert.Contains(t, locations, "us-central1-f")
}

func TestGetMachineTypesReturnsACopy(t *testing.T) {
	catalog := GetMachineTypes()
	require.NotEmpty(t, catalog)
	catalog[0].Name = "mutated"
	assert.NotEqual(t, "mutated", GetMachineTypes()[0].Name)
}
