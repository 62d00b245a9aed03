package types

// ClusterSpec is the fully merged cluster configuration for a provisioning
// run. It's constructed once by merging defaults, persisted config, and user
// overrides, then enriched in place as the provisioner discovers or creates
// resources. Its JSON form is the durable output of a run.
type ClusterSpec struct {
	Name             string       `json:"name"`
	Description      string       `json:"description,omitempty"`
	Provider         string       `json:"provider,omitempty"`
	ProjectID        string       `json:"projectId,omitempty"`
	ProjectNumber    int64        `json:"projectNumber,omitempty"`
	OrganizationID   string       `json:"organizationId"`
	BillingAccount   string       `json:"billingAccount"`
	ServiceAccount   string       `json:"serviceAccount,omitempty"`
	Zones            []string     `json:"zones"`
	Version          string       `json:"version,omitempty"`
	User             string       `json:"user,omitempty"`
	Password         string       `json:"password,omitempty"`
	ReadableBuckets  []string     `json:"readableBuckets,omitempty"`
	WriteableBuckets []string     `json:"writeableBuckets,omitempty"`
	Managers         int          `json:"managers,omitempty"`
	Manager          ManagerSpec  `json:"manager,omitempty"`
	Worker           WorkerSpec   `json:"worker,omitempty"`
	Flags            FlagSpec     `json:"flags,omitempty"`
	Credentials      *Credentials `json:"credentials,omitempty"`
	Operation        *Operation   `json:"operation,omitempty"`
	MasterEndpoint   string       `json:"masterEndpoint,omitempty"`
}

type ManagerSpec struct {
	Distributed bool           `json:"distributed,omitempty"`
	Network     ManagerNetwork `json:"network,omitempty"`
}

type ManagerNetwork struct {
	AuthorizedCIDR []CIDRBlock `json:"authorizedCidr,omitempty"`
}

// CIDRBlock is a named network range authorized to reach the cluster master.
type CIDRBlock struct {
	Name  string `json:"name"`
	Block string `json:"block"`
}

type WorkerSpec struct {
	Cores             int            `json:"cores,omitempty"`
	Count             int64          `json:"count,omitempty"`
	Min               int64          `json:"min,omitempty"`
	Max               int64          `json:"max,omitempty"`
	Memory            string         `json:"memory,omitempty"`
	MaxPerInstance    int            `json:"maxPerInstance,omitempty"`
	Reserved          *bool          `json:"reserved,omitempty"`
	MaintenanceWindow string         `json:"maintenanceWindow,omitempty"`
	Storage           StorageSpec    `json:"storage,omitempty"`
	Network           *WorkerNetwork `json:"network,omitempty"`
}

// StorageSpec sizes use a "<integer><MB|GB>" format, e.g. "100GB".
type StorageSpec struct {
	Ephemeral  string `json:"ephemeral,omitempty"`
	Persistent string `json:"persistent,omitempty"`
}

type WorkerNetwork struct {
	Range string `json:"range,omitempty"`
	VPC   string `json:"vpc,omitempty"`
}

// FlagSpec toggles use pointers so that an explicit false survives merging
// with defaults that are true.
type FlagSpec struct {
	AlphaFeatures       *bool `json:"alphaFeatures,omitempty"`
	AuthedNetworksOnly  *bool `json:"authedNetworksOnly,omitempty"`
	AutoRepair          *bool `json:"autoRepair,omitempty"`
	AutoScale           *bool `json:"autoScale,omitempty"`
	AutoUpgrade         *bool `json:"autoUpgrade,omitempty"`
	BasicAuth           *bool `json:"basicAuth,omitempty"`
	ClientCert          *bool `json:"clientCert,omitempty"`
	IncludeDashboard    *bool `json:"includeDashboard,omitempty"`
	LegacyAuthorization *bool `json:"legacyAuthorization,omitempty"`
	LoadBalancedHTTP    *bool `json:"loadBalancedHTTP,omitempty"`
	NetworkPolicy       *bool `json:"networkPolicy,omitempty"`
	PrivateCluster      *bool `json:"privateCluster,omitempty"`
	ServiceMonitoring   *bool `json:"serviceMonitoring,omitempty"`
	ServiceLogging      *bool `json:"serviceLogging,omitempty"`
}

// Credentials holds a decoded service-account key file. A newly minted key is
// not retrievable again, so callers must persist this.
type Credentials struct {
	Type                    string `json:"type,omitempty"`
	ProjectID               string `json:"project_id,omitempty"`
	PrivateKeyID            string `json:"private_key_id,omitempty"`
	PrivateKey              string `json:"private_key,omitempty"`
	ClientEmail             string `json:"client_email,omitempty"`
	ClientID                string `json:"client_id,omitempty"`
	AuthURI                 string `json:"auth_uri,omitempty"`
	TokenURI                string `json:"token_uri,omitempty"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url,omitempty"`
	ClientX509CertURL       string `json:"client_x509_cert_url,omitempty"`

	// set by the EKS provider, which issues access keys instead of key files
	AccessKeyID     string `json:"accessKeyId,omitempty"`
	SecretAccessKey string `json:"secretAccessKey,omitempty"`
}

// Operation is a handle to an asynchronous remote action, polled until it
// reaches a terminal status and then discarded.
type Operation struct {
	Name string `json:"name"`
	Zone string `json:"zone,omitempty"`
	Kind string `json:"kind,omitempty"`
}

// APIVersions lists the master versions a provider will accept for a new
// cluster.
type APIVersions struct {
	DefaultClusterVersion string   `json:"defaultClusterVersion"`
	ValidMasterVersions   []string `json:"validMasterVersions"`
}
