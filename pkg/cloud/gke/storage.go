package gke

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

// Bucket roles granted to the cluster's service account.
const (
	RoleObjectViewer       = "roles/storage.objectViewer"
	RoleLegacyBucketWriter = "roles/storage.legacyBucketWriter"
)

// StorageService implements BucketClient against the live Storage JSON API.
type StorageService struct {
	svc *storage.Service
	log *logrus.Entry
}

func NewStorageService(ctx context.Context, log *logrus.Entry, opts ...option.ClientOption) (*StorageService, error) {
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "could not create storage client")
	}
	return &StorageService{svc: svc, log: log}, nil
}

func (s *StorageService) GetPolicy(ctx context.Context, bucket string) (*storage.Policy, error) {
	policy, err := s.svc.Buckets.GetIamPolicy(bucket).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get roles for %s", bucket)
	}
	return policy, nil
}

func (s *StorageService) SetPolicy(ctx context.Context, bucket string, policy *storage.Policy) (*storage.Policy, error) {
	return s.svc.Buckets.SetIamPolicy(bucket, policy).Context(ctx).Do()
}

// BindRoleToMember adds member to the role's binding on a bucket policy,
// creating the binding when absent. Reports whether the policy changed so
// callers can skip the write when the member is already bound.
func BindRoleToMember(policy *storage.Policy, role, member string) bool {
	for _, binding := range policy.Bindings {
		if binding.Role != role {
			continue
		}
		for _, m := range binding.Members {
			if m == member {
				return false
			}
		}
		binding.Members = append(binding.Members, member)
		return true
	}
	policy.Bindings = append(policy.Bindings, &storage.PolicyBindings{
		Role:    role,
		Members: []string{member},
	})
	return true
}
