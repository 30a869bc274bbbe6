package scan

// ScanContext owns everything with a one-scan lifetime: the credential, the
// typed client factory, the directory service, and the identity resolver's
// cache. Construct one per scan and pass it by reference; nothing in it is
// process-wide state.
type ScanContext struct {
	TenantID       string
	Credential     CredentialProvider
	Clients        ClientFactory
	Directory      DirectoryService
	MaxConcurrency int

	resolver *IdentityResolver
}

// NewScanContext assembles a scan context. Directory may be nil when the
// tenant's directory is unreachable; identity resolution then degrades to
// Unresolved for every principal.
func NewScanContext(tenantID string, credential CredentialProvider, clients ClientFactory, directory DirectoryService) *ScanContext {
	return &ScanContext{
		TenantID:       tenantID,
		Credential:     credential,
		Clients:        clients,
		Directory:      directory,
		MaxConcurrency: DefaultMaxConcurrency,
	}
}

// Resolver returns the scan-scoped identity resolver, building it on first
// use.
func (c *ScanContext) Resolver() *IdentityResolver {
	if c.resolver == nil {
		c.resolver = NewIdentityResolver(c.Directory)
	}
	return c.resolver
}
