package gke

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	cloudresourcemanager "google.golang.org/api/cloudresourcemanager/v1"
	"google.golang.org/api/option"
)

// ResourceService implements ResourceClient against the live Resource
// Manager API.
type ResourceService struct {
	crm *cloudresourcemanager.Service
	log *logrus.Entry
}

func NewResourceService(ctx context.Context, log *logrus.Entry, opts ...option.ClientOption) (*ResourceService, error) {
	crmSvc, err := cloudresourcemanager.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "could not create resource manager client")
	}
	return &ResourceService{crm: crmSvc, log: log}, nil
}

// GetProjects lists every project visible to the caller.
func (s *ResourceService) GetProjects(ctx context.Context) ([]*cloudresourcemanager.Project, error) {
	var projects []*cloudresourcemanager.Project
	err := s.crm.Projects.List().Pages(ctx, func(resp *cloudresourcemanager.ListProjectsResponse) error {
		projects = append(projects, resp.Projects...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ResourceService) GetProject(ctx context.Context, projectID string) (*cloudresourcemanager.Project, error) {
	return s.crm.Projects.Get(projectID).Context(ctx).Do()
}

// CreateProject requests a new project under the organization. The returned
// operation must be awaited before the project is usable.
func (s *ResourceService) CreateProject(ctx context.Context, projectID, organizationID string) (*cloudresourcemanager.Operation, error) {
	return s.crm.Projects.Create(&cloudresourcemanager.Project{
		ProjectId: projectID,
		Name:      projectID,
		Parent: &cloudresourcemanager.ResourceId{
			Type: "organization",
			Id:   organizationID,
		},
	}).Context(ctx).Do()
}

func (s *ResourceService) GetOperation(ctx context.Context, name string) (*cloudresourcemanager.Operation, error) {
	return s.crm.Operations.Get(name).Context(ctx).Do()
}
