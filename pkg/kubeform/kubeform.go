// Package kubeform ties a cloud provider to a config and exposes the
// public provisioning API.
package kubeform

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/kubeform/kubeform/pkg/cloud"
	"github.com/kubeform/kubeform/pkg/cloud/eks"
	"github.com/kubeform/kubeform/pkg/cloud/gke"
	"github.com/kubeform/kubeform/pkg/cloud/none"
	"github.com/kubeform/kubeform/pkg/cloud/types"
	"github.com/kubeform/kubeform/pkg/utils/files"
)

type Kubeform struct {
	cfg      *cloud.Config
	provider cloud.Provider
	log      *logrus.Entry
}

// New selects the provider named by cfg.Provider (case-insensitive) and
// returns the API bound to it.
func New(ctx context.Context, cfg *cloud.Config, observer cloud.Observer, logger *logrus.Logger) (*Kubeform, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	provider, err := selectProvider(ctx, cfg, observer, logger)
	if err != nil {
		return nil, err
	}
	return &Kubeform{
		cfg:      cfg,
		provider: provider,
		log:      logger.WithField("component", "kubeform"),
	}, nil
}

func selectProvider(ctx context.Context, cfg *cloud.Config, observer cloud.Observer, logger *logrus.Logger) (cloud.Provider, error) {
	switch strings.ToUpper(cfg.Provider) {
	case "GKE":
		return gke.NewProvider(ctx, cfg, observer, logger)
	case "EKS":
		return eks.NewProvider(cfg, observer, logger)
	case "NONE":
		return none.NewProvider(), nil
	default:
		return nil, errors.Errorf("provider %s is not supported yet", cfg.Provider)
	}
}

// Create provisions a cluster from the given options. When the config names
// a credentials file, its tokens are loaded into the options first; a
// missing or unreadable file is skipped so a fresh key gets minted instead.
func (k *Kubeform) Create(ctx context.Context, opts *types.ClusterSpec) (*types.ClusterSpec, error) {
	if k.cfg.CredFile != "" && opts.Credentials == nil {
		credPath, err := filepath.Abs(k.cfg.CredFile)
		if err != nil {
			credPath = k.cfg.CredFile
		}
		if _, err := os.Stat(credPath); err == nil {
			k.log.Infof("loading service account credentials from '%s'", credPath)
			creds := &types.Credentials{}
			if err := files.LoadTokens(credPath, creds); err != nil {
				k.log.Warnf("failed to load credentials, proceeding without them: %v", err)
			} else {
				opts.Credentials = creds
			}
		} else {
			k.log.Warnf("the credentials file '%s' does not exist or could not be read, proceeding without it", credPath)
		}
	}
	return k.provider.Create(ctx, opts)
}

// GetRegions lists the provider's regions.
func (k *Kubeform) GetRegions() []string {
	return k.provider.GetRegions()
}

// GetZones lists the zones within a region.
func (k *Kubeform) GetZones(region string) []string {
	return k.provider.GetZones(region)
}

// GetAPIVersions reports the Kubernetes versions available for new clusters.
func (k *Kubeform) GetAPIVersions(ctx context.Context, projectID, zone string) (*types.APIVersions, error) {
	return k.provider.GetAPIVersions(ctx, projectID, zone)
}

// GetKubeConfig builds a client config for a provisioned cluster.
func (k *Kubeform) GetKubeConfig(ctx context.Context, opts *types.ClusterSpec) (clientcmdapi.Config, error) {
	return k.provider.GetKubeConfig(ctx, opts)
}
