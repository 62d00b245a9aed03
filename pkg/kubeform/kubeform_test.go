package kubeform

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeform/kubeform/pkg/cloud"
	"github.com/kubeform/kubeform/pkg/cloud/types"
)

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), &cloud.Config{Provider: "aks"}, cloud.NopObserver(), logrus.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestNewSelectsProviderCaseInsensitively(t *testing.T) {
	for _, name := range []string{"none", "NONE", "None"} {
		kf, err := New(context.Background(), &cloud.Config{Provider: name}, cloud.NopObserver(), logrus.New())
		require.NoError(t, err, name)
		require.NotNil(t, kf)
	}
}

func TestCreateWithoutProviderFails(t *testing.T) {
	kf, err := New(context.Background(), &cloud.Config{Provider: "none"}, cloud.NopObserver(), logrus.New())
	require.NoError(t, err)

	_, err = kf.Create(context.Background(), &types.ClusterSpec{Name: "npm-cluster"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cloud provider is required")
}

func TestCreateLoadsCredentialsFromFile(t *testing.T) {
	credPath := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, ioutil.WriteFile(credPath,
		[]byte(`{"type":"service_account","project_id":"npm-project"}`), 0600))

	kf, err := New(context.Background(), &cloud.Config{Provider: "none", CredFile: credPath}, cloud.NopObserver(), logrus.New())
	require.NoError(t, err)

	opts := &types.ClusterSpec{Name: "npm-cluster"}
	_, err = kf.Create(context.Background(), opts)
	require.Error(t, err, "the none provider cannot create clusters")

	// the credentials were loaded before the provider was consulted
	require.NotNil(t, opts.Credentials)
	assert.Equal(t, "npm-project", opts.Credentials.ProjectID)
}

func TestCreateSkipsMissingCredentialsFile(t *testing.T) {
	credPath := filepath.Join(t.TempDir(), "absent.json")
	kf, err := New(context.Background(), &cloud.Config{Provider: "none", CredFile: credPath}, cloud.NopObserver(), logrus.New())
	require.NoError(t, err)

	opts := &types.ClusterSpec{Name: "npm-cluster"}
	_, err = kf.Create(context.Background(), opts)
	require.Error(t, err)
	assert.Nil(t, opts.Credentials)
}

func TestGetKubeConfigWithoutProviderFails(t *testing.T) {
	kf, err := New(context.Background(), &cloud.Config{Provider: "none"}, cloud.NopObserver(), logrus.New())
	require.NoError(t, err)

	_, err = kf.GetKubeConfig(context.Background(), &types.ClusterSpec{Name: "npm-cluster"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cloud provider is required")
}

func TestGetRegionsAndZonesByProvider(t *testing.T) {
	kf, err := New(context.Background(), &cloud.Config{Provider: "eks"}, cloud.NopObserver(), logrus.New())
	require.NoError(t, err)

	regions := kf.GetRegions()
	assert.Contains(t, regions, "us-east-1")
	assert.Contains(t, kf.GetZones("us-east-1"), "us-east-1a")
}
