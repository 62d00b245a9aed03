package gke

import (
	"github.com/google/uuid"
	container "google.golang.org/api/container/v1"

	"github.com/kubeform/kubeform/pkg/cloud/types"
)

const (
	defaultNodePoolName = "default-pool"
	defaultImageType    = "COS"
	defaultMasterUser   = "admin"
	networkPolicyCalico = "CALICO"
)

var nodeOauthScopes = []string{
	"https://www.googleapis.com/auth/compute",
	"https://www.googleapis.com/auth/devstorage.read_only",
}

// ClusterRequest derives the provider-specific creation request from a
// merged spec. When basic auth is on and no password was supplied, one is
// generated and written back to the spec so the run's output stays usable.
func ClusterRequest(spec *types.ClusterSpec) *container.CreateClusterRequest {
	cluster := &container.Cluster{
		Name:                  spec.Name,
		Description:           spec.Description,
		NodePools:             []*container.NodePool{nodePool(spec)},
		InitialClusterVersion: spec.Version,
		Locations:             spec.Zones,
		EnableKubernetesAlpha: types.IsTrue(spec.Flags.AlphaFeatures),
		AddonsConfig: &container.AddonsConfig{
			// the flags express what to turn on, the API expresses
			// what to turn off
			HttpLoadBalancing: &container.HttpLoadBalancing{
				Disabled: !types.IsTrue(spec.Flags.LoadBalancedHTTP),
			},
			HorizontalPodAutoscaling: &container.HorizontalPodAutoscaling{
				Disabled: !types.IsTrue(spec.Flags.AutoScale),
			},
			KubernetesDashboard: &container.KubernetesDashboard{
				Disabled: !types.IsTrue(spec.Flags.IncludeDashboard),
			},
			NetworkPolicyConfig: &container.NetworkPolicyConfig{
				Disabled: !types.IsTrue(spec.Flags.NetworkPolicy),
			},
		},
		LegacyAbac: &container.LegacyAbac{
			Enabled: types.IsTrue(spec.Flags.LegacyAuthorization),
		},
		NetworkPolicy: &container.NetworkPolicy{
			Enabled:  types.IsTrue(spec.Flags.NetworkPolicy),
			Provider: networkPolicyCalico,
		},
		MasterAuthorizedNetworksConfig: authorizedNetworks(spec),
		MaintenancePolicy: &container.MaintenancePolicy{
			Window: &container.MaintenanceWindow{
				DailyMaintenanceWindow: &container.DailyMaintenanceWindow{
					StartTime: spec.Worker.MaintenanceWindow,
				},
			},
		},
		MasterAuth: masterAuth(spec),
	}

	if spec.Worker.Network != nil {
		cluster.Network = spec.Worker.Network.VPC
		cluster.ClusterIpv4Cidr = spec.Worker.Network.Range
	}
	if types.IsFalse(spec.Flags.ServiceMonitoring) {
		cluster.MonitoringService = "none"
	}
	if types.IsFalse(spec.Flags.ServiceLogging) {
		cluster.LoggingService = "none"
	}

	return &container.CreateClusterRequest{
		ProjectId: spec.ProjectID,
		Zone:      spec.Zones[0],
		Cluster:   cluster,
	}
}

func masterAuth(spec *types.ClusterSpec) *container.MasterAuth {
	auth := &container.MasterAuth{
		ClientCertificateConfig: &container.ClientCertificateConfig{
			IssueClientCertificate: types.IsTrue(spec.Flags.ClientCert),
		},
	}
	if types.IsTrue(spec.Flags.BasicAuth) {
		if spec.User == "" {
			spec.User = defaultMasterUser
		}
		if spec.Password == "" {
			spec.Password = uuid.NewString()
		}
		auth.Username = spec.User
		auth.Password = spec.Password
	}
	return auth
}

func authorizedNetworks(spec *types.ClusterSpec) *container.MasterAuthorizedNetworksConfig {
	cidrs := spec.Manager.Network.AuthorizedCIDR
	config := &container.MasterAuthorizedNetworksConfig{
		Enabled:    len(cidrs) > 0,
		CidrBlocks: []*container.CidrBlock{},
	}
	for _, cidr := range cidrs {
		config.CidrBlocks = append(config.CidrBlocks, &container.CidrBlock{
			DisplayName: cidr.Name,
			CidrBlock:   cidr.Block,
		})
	}
	return config
}

func nodePool(spec *types.ClusterSpec) *container.NodePool {
	worker := spec.Worker
	var persistent float64
	if worker.Storage.Persistent != "" {
		if size, err := parseSize(worker.Storage.Persistent); err == nil {
			persistent = size
		}
	}

	pool := &container.NodePool{
		Name:             defaultNodePoolName,
		InitialNodeCount: worker.Count,
		Config: &container.NodeConfig{
			MachineType:    GetMachineType(worker),
			ServiceAccount: spec.ServiceAccount,
			DiskSizeGb:     int64(persistent),
			ImageType:      defaultImageType,
			LocalSsdCount:  0,
			Preemptible:    !types.IsTrue(worker.Reserved),
			OauthScopes:    nodeOauthScopes,
		},
		Management: &container.NodeManagement{
			AutoRepair:  types.IsTrue(spec.Flags.AutoRepair),
			AutoUpgrade: types.IsTrue(spec.Flags.AutoUpgrade),
		},
	}
	if types.IsTrue(spec.Flags.AutoScale) && worker.Min > 0 && worker.Max > 0 {
		pool.Autoscaling = &container.NodePoolAutoscaling{
			Enabled:      true,
			MinNodeCount: worker.Min,
			MaxNodeCount: worker.Max,
		}
	}
	return pool
}
