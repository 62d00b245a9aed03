package cloud

// Config carries everything a provider needs to talk to its cloud. It is
// constructed once at the boundary (the CLI resolves flags and environment
// there) and passed through explicitly; providers never read ambient state.
type Config struct {
	// Provider selects the cloud backend: gke, eks, or none.
	Provider string
	// AuthFile is a path to the credentials used for provisioning calls.
	// When empty, application default credentials are used.
	AuthFile string
	// CredFile optionally points at previously minted service-account
	// credentials. When present the provisioner reuses them instead of
	// minting a new key.
	CredFile string
	// OrganizationID owns any project the provisioner creates.
	OrganizationID string
	// BillingAccount is associated with the project before billable
	// services are enabled.
	BillingAccount string
	// ProjectID overrides the project derived from the cluster name.
	ProjectID string
}
