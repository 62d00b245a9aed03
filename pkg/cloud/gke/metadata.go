package gke

import (
	"regexp"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/kubeform/kubeform/pkg/cloud/types"
)

// MachineType is one row of the static instance catalog. Memory is in GB,
// price is USD per month for sustained use.
type MachineType struct {
	Name     string
	Cores    int
	Memory   float64
	PerMonth float64
}

var machines = []MachineType{
	{"n1-standard-1", 1, 3.75, 24.2725},
	{"n1-standard-2", 2, 7.50, 48.55},
	{"n1-standard-4", 4, 15, 97.09},
	{"n1-standard-8", 8, 30, 194.18},
	{"n1-standard-16", 16, 60, 388.36},
	{"n1-standard-32", 32, 120, 776.72},
	{"n1-standard-64", 64, 240, 1553.44},
	{"n1-standard-96", 96, 360, 2330.16},
	{"n1-highmem-2", 2, 13, 60.50},
	{"n1-highmem-4", 4, 26, 121.00},
	{"n1-highmem-8", 8, 52, 242.00},
	{"n1-highmem-16", 16, 104, 484.00},
	{"n1-highmem-32", 32, 208, 968.00},
	{"n1-highmem-64", 64, 416, 1936.00},
	{"n1-highmem-96", 96, 624, 2904.12},
	{"n1-highcpu-2", 2, 1.8, 36.23},
	{"n1-highcpu-4", 4, 3.6, 72.46},
	{"n1-highcpu-8", 8, 7.2, 144.92},
	{"n1-highcpu-16", 16, 14.4, 289.84},
	{"n1-highcpu-32", 32, 28.8, 579.68},
	{"n1-highcpu-64", 64, 57.6, 1159.36},
	{"n1-highcpu-96", 96, 86.4, 1739.04},
	{"n1-ultramem-40", 40, 938, 3221.2929},
	{"n1-ultramem-80", 80, 1922, 6442.5858},
	{"n1-ultramem-96", 96, 1433.6, 5454.3070},
	{"n1-ultramem-160", 160, 3844, 12885.1716},
}

var regionZones = map[string][]string{
	"asia-east1":              {"asia-east1-a", "asia-east1-b", "asia-east1-c"},
	"asia-northeast1":         {"asia-northeast1-a", "asia-northeast1-b", "asia-northeast1-c"},
	"asia-south1":             {"asia-south1-a", "asia-south1-b", "asia-south1-c"},
	"asia-southeast1":         {"asia-southeast1-a", "asia-southeast1-b", "asia-southeast1-c"},
	"australia-southeast1":    {"australia-southeast1-a", "australia-southeast1-b", "australia-southeast1-c"},
	"europe-north1":           {"europe-north1-a", "europe-north1-b", "europe-north1-c"},
	"europe-west1":            {"europe-west1-b", "europe-west1-c", "europe-west1-d"},
	"europe-west2":            {"europe-west2-a", "europe-west2-b", "europe-west2-c"},
	"europe-west3":            {"europe-west3-a", "europe-west3-b", "europe-west3-c"},
	"europe-west4":            {"europe-west4-a", "europe-west4-b", "europe-west4-c"},
	"northamerica-northeast1": {"northamerica-northeast1-a", "northamerica-northeast1-b", "northamerica-northeast1-c"},
	"southamerica-east1":      {"southamerica-east1-a", "southamerica-east1-b", "southamerica-east1-c"},
	"us-central1":             {"us-central1-a", "us-central1-b", "us-central1-c", "us-central1-f"},
	"us-east1":                {"us-east1-a", "us-east1-b", "us-east1-c"},
	"us-east4":                {"us-east4-a", "us-east4-b", "us-east4-c"},
	"us-west1":                {"us-west1-a", "us-west1-b", "us-west1-c"},
}

var sizeRegex = regexp.MustCompile(`^([0-9]+)(MB|GB)$`)

// GetRegions lists the known GKE regions, sorted.
func GetRegions() []string {
	regions := make([]string, 0, len(regionZones))
	for region := range regionZones {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}

// GetZones lists the zones within a region, or nil for an unknown region.
func GetZones(region string) []string {
	return regionZones[region]
}

// GetAllZones flattens the region table into one zone list.
func GetAllZones() []string {
	var zones []string
	for _, region := range GetRegions() {
		zones = append(zones, regionZones[region]...)
	}
	return zones
}

// GetAllLocations lists every placement target: zones plus regions.
func GetAllLocations() []string {
	return append(GetAllZones(), GetRegions()...)
}

// GetMachineTypes returns a copy of the instance catalog, in catalog order.
func GetMachineTypes() []MachineType {
	catalog := make([]MachineType, len(machines))
	copy(catalog, machines)
	return catalog
}

// GetMachineType selects the cheapest catalog type whose cores and memory
// meet or exceed the requested worker shape. Returns empty when nothing in
// the catalog is large enough.
func GetMachineType(worker types.WorkerSpec) string {
	sorted := make([]MachineType, len(machines))
	copy(sorted, machines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PerMonth < sorted[j].PerMonth
	})

	memory := 1.0
	if worker.Memory != "" {
		if parsed, err := parseSize(worker.Memory); err == nil {
			memory = parsed
		}
	}
	for _, m := range sorted {
		if m.Cores >= worker.Cores && m.Memory >= memory {
			return m.Name
		}
	}
	return ""
}

// parseSize converts a "<integer><MB|GB>" string to GB.
func parseSize(size string) (float64, error) {
	match := sizeRegex.FindStringSubmatch(size)
	if match == nil {
		return 0, errors.Errorf("invalid size %q, expected <number>MB or <number>GB", size)
	}
	amount := cast.ToFloat64(match[1])
	if match[2] == "MB" {
		amount /= 1024
	}
	return amount, nil
}
