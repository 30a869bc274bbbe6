package scan

import "context"

// The engine consumes upstream Azure data through these narrow collaborator
// interfaces. Production implementations live in internal/azure and
// internal/graph; tests inject fakes.

// CredentialProvider supplies tokens for upstream calls.
type CredentialProvider interface {
	// IsValid reports whether a usable credential is currently held.
	IsValid(ctx context.Context) bool
}

// NetworkClient lists network resources within one subscription.
type NetworkClient interface {
	SecurityGroups(ctx context.Context) ([]SecurityGroupConfig, error)
	PublicIPAddresses(ctx context.Context) ([]PublicIPAddress, error)
	NetworkInterfaces(ctx context.Context) ([]NetworkInterface, error)
	LoadBalancers(ctx context.Context) ([]LoadBalancer, error)
	ApplicationGateways(ctx context.Context) ([]ApplicationGateway, error)
}

// AuthorizationClient lists RBAC data within one subscription.
type AuthorizationClient interface {
	RoleAssignments(ctx context.Context) ([]RoleAssignment, error)
	// RoleDefinitionNames maps role definition IDs to display names.
	RoleDefinitionNames(ctx context.Context) (map[string]string, error)
}

// PolicyClient lists policy assignments and compliance states within one
// subscription.
type PolicyClient interface {
	PolicyAssignments(ctx context.Context) ([]PolicyAssignment, error)
	ComplianceStates(ctx context.Context) ([]ComplianceResult, error)
}

// SecurityClient lists Defender for Cloud data within one subscription.
type SecurityClient interface {
	SecureScores(ctx context.Context) ([]ControlScore, error)
	Assessments(ctx context.Context) ([]Recommendation, error)
}

// ClientFactory produces typed clients bound to one subscription. Clients
// are cached per (kind, scope) and shared read-only across concurrent
// operations touching the same scope.
type ClientFactory interface {
	Network(scope Scope) (NetworkClient, error)
	Authorization(scope Scope) (AuthorizationClient, error)
	Policy(scope Scope) (PolicyClient, error)
	Security(scope Scope) (SecurityClient, error)
}

// DirectoryObject is a minimal directory entry shared by all probe kinds.
type DirectoryObject struct {
	ID                string
	DisplayName       string
	UserPrincipalName string
	Mail              string
	UserType          string
	Tags              []string
}

// DirectoryService looks up principals by object ID. Implementations return
// ErrNotFound for a miss and ErrDirectoryUnavailable when the directory
// cannot be reached at all.
type DirectoryService interface {
	ServicePrincipal(ctx context.Context, id string) (*DirectoryObject, error)
	User(ctx context.Context, id string) (*DirectoryObject, error)
	Group(ctx context.Context, id string) (*DirectoryObject, error)
	// Users lists tenant users, at most top entries.
	Users(ctx context.Context, top int) ([]UserAccount, error)
}

// Raw network inventory shapes consumed by the exposure collector.

type PublicIPAddress struct {
	ID            string
	Name          string
	Location      string
	IPAddress     string
	ResourceGroup string
}

type NetworkInterface struct {
	ID                string
	Name              string
	VirtualMachineID  string
	PublicIPAddresses []string // public IP resource IDs referenced by IP configs
}

type LoadBalancer struct {
	ID                string
	Name              string
	PublicIPAddresses []string
	FrontendPorts     []int32
	Protocols         []string
}

type ApplicationGateway struct {
	ID                string
	Name              string
	PublicIPAddresses []string
	FrontendPorts     []int32
	Protocols         []string
}
