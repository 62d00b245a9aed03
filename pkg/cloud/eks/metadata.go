package eks

import (
	"sort"

	"github.com/kubeform/kubeform/pkg/cloud/types"
)

type regionInfo struct {
	Region    string
	Zones     []string
	Geography string
}

// EKS has no API to list supported control plane versions, so these are
// pinned here.
var eksVersions = types.APIVersions{
	DefaultClusterVersion: "1.11.5",
	ValidMasterVersions:   []string{"1.10.11", "1.11.5"},
}

var regions = []regionInfo{
	{Region: "us-east-1", Zones: []string{"a", "b", "c", "d", "e", "f"}, Geography: "Northern Virgina, USA"},
	{Region: "us-east-2", Zones: []string{"a", "b", "c"}, Geography: "Ohio, USA"},
	{Region: "us-west-2", Zones: []string{"a", "b", "c", "d"}, Geography: "Oregon, USA"},
	{Region: "eu-west-1", Zones: []string{"a", "b", "c"}, Geography: "Dublin, Ireland"},
	{Region: "eu-central-1", Zones: []string{"a", "b", "c"}, Geography: "Frankfurt, Germany"},
	{Region: "eu-west-2", Zones: []string{"a", "b", "c"}, Geography: "London, England, UK"},
	{Region: "eu-west-3", Zones: []string{"a", "b", "c"}, Geography: "Paris, France"},
	{Region: "eu-north-1", Zones: []string{"a", "b", "c"}, Geography: "Stockholm, Sweden"},
	{Region: "ap-southeast-1", Zones: []string{"a", "b", "c"}, Geography: "Singapore"},
	{Region: "ap-northeast-1", Zones: []string{"a", "b", "c", "d"}, Geography: "Tokyo, Japan"},
	{Region: "ap-southeast-2", Zones: []string{"a", "b", "c"}, Geography: "Sydney, Australia"},
	{Region: "ap-northeast-2", Zones: []string{"a", "b"}, Geography: "Seoul, Korea"},
	{Region: "ap-south-1", Zones: []string{"a", "b"}, Geography: "Mumbai, India"},
}

// GetRegions lists the known EKS regions.
func GetRegions() []string {
	names := make([]string, 0, len(regions))
	for _, r := range regions {
		names = append(names, r.Region)
	}
	sort.Strings(names)
	return names
}

// GetZones lists the availability zones of a region, expanded to full names
// like us-east-1a. Unknown regions return nil.
func GetZones(region string) []string {
	for _, r := range regions {
		if r.Region != region {
			continue
		}
		zones := make([]string, 0, len(r.Zones))
		for _, suffix := range r.Zones {
			zones = append(zones, r.Region+suffix)
		}
		return zones
	}
	return nil
}

// GetGeography reports the human-readable location of a region, or "" when
// the region is unknown.
func GetGeography(region string) string {
	for _, r := range regions {
		if r.Region == region {
			return r.Geography
		}
	}
	return ""
}
