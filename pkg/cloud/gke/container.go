package gke

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	container "google.golang.org/api/container/v1"
	"google.golang.org/api/option"
)

// ClusterService implements ClusterClient against the live Container Engine
// API.
type ClusterService struct {
	svc *container.Service
	log *logrus.Entry
}

func NewClusterService(ctx context.Context, log *logrus.Entry, opts ...option.ClientOption) (*ClusterService, error) {
	svc, err := container.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "could not create container client")
	}
	return &ClusterService{svc: svc, log: log}, nil
}

func (s *ClusterService) GetCluster(ctx context.Context, projectID, zone, name string) (*container.Cluster, error) {
	return s.svc.Projects.Zones.Clusters.Get(projectID, zone, name).Context(ctx).Do()
}

func (s *ClusterService) CreateCluster(ctx context.Context, projectID, zone string, req *container.CreateClusterRequest) (*container.Operation, error) {
	return s.svc.Projects.Zones.Clusters.Create(projectID, zone, req).Context(ctx).Do()
}

func (s *ClusterService) GetOperation(ctx context.Context, projectID, zone, operationID string) (*container.Operation, error) {
	return s.svc.Projects.Zones.Operations.Get(projectID, zone, operationID).Context(ctx).Do()
}

func (s *ClusterService) GetServerConfig(ctx context.Context, projectID, zone string) (*container.ServerConfig, error) {
	return s.svc.Projects.Zones.GetServerconfig(projectID, zone).Context(ctx).Do()
}
