package eks

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/organizations"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kubeform/kubeform/pkg/cloud/types"
)

// AccountClient covers member-account lookup and creation under an AWS
// organization, plus access key minting for the account's user.
type AccountClient interface {
	FindAccount(ctx context.Context, name string) (*organizations.Account, error)
	CreateAccount(ctx context.Context, name string) (*organizations.Account, error)
	CreateAccessKey(ctx context.Context, userName string) (*types.Credentials, error)
}

type OrganizationsService struct {
	Organizations *organizations.Organizations
	IAM           *iam.IAM
	log           *logrus.Entry
}

func NewOrganizationsService(log *logrus.Entry, creds *types.Credentials) *OrganizationsService {
	cfg := aws.NewConfig()
	if creds != nil && creds.AccessKeyID != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(creds.AccessKeyID, creds.SecretAccessKey, ""))
	}
	s := session.Must(session.NewSession(cfg))
	return &OrganizationsService{
		Organizations: organizations.New(s),
		IAM:           iam.New(s),
		log:           log,
	}
}

// FindAccount scans the organization's member accounts for one matching the
// name. A nil account with a nil error means the account does not exist.
func (s *OrganizationsService) FindAccount(ctx context.Context, name string) (*organizations.Account, error) {
	var found *organizations.Account
	err := s.Organizations.ListAccountsPagesWithContext(ctx, &organizations.ListAccountsInput{},
		func(page *organizations.ListAccountsOutput, lastPage bool) bool {
			for _, acct := range page.Accounts {
				if aws.StringValue(acct.Name) == name {
					found = acct
					return false
				}
			}
			return true
		})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list organization accounts")
	}
	return found, nil
}

func (s *OrganizationsService) CreateAccount(ctx context.Context, name string) (*organizations.Account, error) {
	out, err := s.Organizations.CreateAccountWithContext(ctx, &organizations.CreateAccountInput{
		AccountName:            aws.String(name),
		Email:                  aws.String(""),
		IamUserAccessToBilling: aws.String(organizations.IAMUserAccessToBillingDeny),
	})
	if err != nil {
		return nil, err
	}
	return &organizations.Account{
		Id:   out.CreateAccountStatus.AccountId,
		Name: out.CreateAccountStatus.AccountName,
	}, nil
}

// CreateAccessKey mints an access key for the account's user so the caller
// can persist it. The secret is only returned once.
func (s *OrganizationsService) CreateAccessKey(ctx context.Context, userName string) (*types.Credentials, error) {
	out, err := s.IAM.CreateAccessKeyWithContext(ctx, &iam.CreateAccessKeyInput{
		UserName: aws.String(userName),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create access key for %s", userName)
	}
	return &types.Credentials{
		AccessKeyID:     aws.StringValue(out.AccessKey.AccessKeyId),
		SecretAccessKey: aws.StringValue(out.AccessKey.SecretAccessKey),
	}, nil
}
