// Package none is the provider used when no cloud has been selected. Every
// call fails with the same instruction to pick one.
package none

import (
	"context"

	"github.com/pkg/errors"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/kubeform/kubeform/pkg/cloud/types"
)

var errNoProvider = errors.New("the cloud provider is required in order to perform this action")

type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Create(ctx context.Context, opts *types.ClusterSpec) (*types.ClusterSpec, error) {
	return nil, errNoProvider
}

func (p *Provider) GetRegions() []string {
	return nil
}

func (p *Provider) GetZones(region string) []string {
	return nil
}

func (p *Provider) GetAPIVersions(ctx context.Context, projectID, zone string) (*types.APIVersions, error) {
	return nil, errNoProvider
}

func (p *Provider) GetKubeConfig(ctx context.Context, opts *types.ClusterSpec) (clientcmdapi.Config, error) {
	return clientcmdapi.Config{}, errNoProvider
}
