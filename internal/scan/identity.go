package scan

import (
	"context"
	"errors"

	"github.com/wardspan/azure-recon/internal/output"
)

// managedIdentityTag marks a service principal as a platform-managed
// workload identity rather than an application registration.
const managedIdentityTag = "WindowsAzureActiveDirectoryIntegratedApp"

// IdentityResolver classifies principal IDs via an ordered probe chain
// against the directory. Its cache lives for one scan only; a principal may
// legitimately resolve differently on the next run if the directory changed.
type IdentityResolver struct {
	directory DirectoryService
	probes    []identityProbe
	cache     map[string]Principal

	// lastOutage is set when the most recent resolve hit a directory-wide
	// outage rather than an ordinary probe miss.
	lastOutage bool
}

type identityProbe func(ctx context.Context, id string) (Principal, error)

// NewIdentityResolver builds a resolver over the given directory service.
// A nil directory yields a resolver that classifies everything Unresolved.
func NewIdentityResolver(directory DirectoryService) *IdentityResolver {
	r := &IdentityResolver{
		directory: directory,
		cache:     make(map[string]Principal),
	}
	if directory != nil {
		r.probes = []identityProbe{
			r.probeServicePrincipal,
			r.probeUser,
			r.probeGroup,
		}
	}
	return r
}

// ResolveType classifies one principal ID. It never fails: the probe chain
// is exhausted and the fall-through answer is Unresolved.
func (r *IdentityResolver) ResolveType(ctx context.Context, id string) IdentityType {
	return r.resolve(ctx, id).Type
}

// ResolveAll classifies a batch of unique principal IDs. An unrecoverable
// directory outage short-circuits: every remaining ID maps to Unresolved.
func (r *IdentityResolver) ResolveAll(ctx context.Context, ids []string) map[string]IdentityType {
	types := make(map[string]IdentityType, len(ids))
	available := r.directory != nil
	for _, id := range ids {
		if !available {
			types[id] = IdentityUnresolved
			continue
		}
		principal := r.resolve(ctx, id)
		types[id] = principal.Type
		if r.lastOutage {
			output.Warn("directory unavailable, remaining principals unresolved")
			available = false
		}
	}
	return types
}

func (r *IdentityResolver) resolve(ctx context.Context, id string) Principal {
	if cached, ok := r.cache[id]; ok {
		return cached
	}
	r.lastOutage = false

	principal := Principal{ID: id, Type: IdentityUnresolved}
	for _, probe := range r.probes {
		resolved, err := probe(ctx, id)
		if err == nil {
			principal = resolved
			break
		}
		if errors.Is(err, ErrDirectoryUnavailable) {
			r.lastOutage = true
			break
		}
		// Not-found, permission-denied, and transient probe errors all fall
		// through to the next probe.
	}

	r.cache[id] = principal
	return principal
}

func (r *IdentityResolver) probeServicePrincipal(ctx context.Context, id string) (Principal, error) {
	sp, err := r.directory.ServicePrincipal(ctx, id)
	if err != nil {
		return Principal{}, err
	}
	identityType := IdentityServicePrincipal
	for _, tag := range sp.Tags {
		if tag == managedIdentityTag {
			identityType = IdentityManagedIdentity
			break
		}
	}
	return Principal{ID: id, Type: identityType, DisplayName: sp.DisplayName}, nil
}

func (r *IdentityResolver) probeUser(ctx context.Context, id string) (Principal, error) {
	user, err := r.directory.User(ctx, id)
	if err != nil {
		return Principal{}, err
	}
	return Principal{ID: id, Type: IdentityUser, DisplayName: user.DisplayName}, nil
}

func (r *IdentityResolver) probeGroup(ctx context.Context, id string) (Principal, error) {
	group, err := r.directory.Group(ctx, id)
	if err != nil {
		return Principal{}, err
	}
	return Principal{ID: id, Type: IdentityGroup, DisplayName: group.DisplayName}, nil
}

// Principals returns every principal resolved so far in this scan.
func (r *IdentityResolver) Principals() map[string]Principal {
	out := make(map[string]Principal, len(r.cache))
	for id, p := range r.cache {
		out[id] = p
	}
	return out
}
