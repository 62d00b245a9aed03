package gke

import (
	"encoding/base64"
	"fmt"

	"github.com/pkg/errors"
	container "google.golang.org/api/container/v1"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// GenerateKubeConfig builds a client-go config for a provisioned cluster.
// Basic auth and client-cert material are copied over when the cluster
// carries them.
func GenerateKubeConfig(cluster *container.Cluster) (clientcmdapi.Config, error) {
	if cluster.MasterAuth == nil {
		return clientcmdapi.Config{}, errors.New("cluster has no master auth info")
	}
	c := clientcmdapi.Config{
		Clusters: map[string]*clientcmdapi.Cluster{
			cluster.Name: {
				Server: fmt.Sprintf("https://%s", cluster.Endpoint),
			},
		},
		Contexts: map[string]*clientcmdapi.Context{
			cluster.Name: {
				Cluster:  cluster.Name,
				AuthInfo: cluster.Name,
			},
		},
		AuthInfos: map[string]*clientcmdapi.AuthInfo{
			cluster.Name: {
				Username: cluster.MasterAuth.Username,
				Password: cluster.MasterAuth.Password,
			},
		},
		CurrentContext: cluster.Name,
	}

	ca, err := base64.StdEncoding.DecodeString(cluster.MasterAuth.ClusterCaCertificate)
	if err != nil {
		return clientcmdapi.Config{}, errors.Wrap(err, "failed to decode cluster CA certificate")
	}
	c.Clusters[cluster.Name].CertificateAuthorityData = ca

	cert, err := base64.StdEncoding.DecodeString(cluster.MasterAuth.ClientCertificate)
	if err != nil {
		return clientcmdapi.Config{}, errors.Wrap(err, "failed to decode client certificate")
	}
	c.AuthInfos[cluster.Name].ClientCertificateData = cert

	key, err := base64.StdEncoding.DecodeString(cluster.MasterAuth.ClientKey)
	if err != nil {
		return clientcmdapi.Config{}, errors.Wrap(err, "failed to decode client key")
	}
	c.AuthInfos[cluster.Name].ClientKeyData = key

	return c, nil
}
