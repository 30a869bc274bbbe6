package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDirectory serves canned directory objects and counts probe calls.
type fakeDirectory struct {
	servicePrincipals map[string]*DirectoryObject
	users             map[string]*DirectoryObject
	groups            map[string]*DirectoryObject

	outageAfter int // calls before every probe starts failing with outage; <0 disables
	calls       int

	userList []UserAccount
	usersErr error
}

func (f *fakeDirectory) lookup(m map[string]*DirectoryObject, id string) (*DirectoryObject, error) {
	f.calls++
	if f.outageAfter >= 0 && f.calls > f.outageAfter {
		return nil, ErrDirectoryUnavailable
	}
	if obj, ok := m[id]; ok {
		return obj, nil
	}
	return nil, ErrNotFound
}

func (f *fakeDirectory) ServicePrincipal(_ context.Context, id string) (*DirectoryObject, error) {
	return f.lookup(f.servicePrincipals, id)
}

func (f *fakeDirectory) User(_ context.Context, id string) (*DirectoryObject, error) {
	return f.lookup(f.users, id)
}

func (f *fakeDirectory) Group(_ context.Context, id string) (*DirectoryObject, error) {
	return f.lookup(f.groups, id)
}

func (f *fakeDirectory) Users(_ context.Context, _ int) ([]UserAccount, error) {
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return f.userList, nil
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		servicePrincipals: map[string]*DirectoryObject{},
		users:             map[string]*DirectoryObject{},
		groups:            map[string]*DirectoryObject{},
		outageAfter:       -1,
	}
}

func TestResolveType_ServicePrincipal(t *testing.T) {
	dir := newFakeDirectory()
	dir.servicePrincipals["sp-1"] = &DirectoryObject{ID: "sp-1", DisplayName: "ci-deployer"}

	r := NewIdentityResolver(dir)
	assert.Equal(t, IdentityServicePrincipal, r.ResolveType(context.Background(), "sp-1"))
}

func TestResolveType_ManagedIdentityViaTag(t *testing.T) {
	dir := newFakeDirectory()
	dir.servicePrincipals["mi-1"] = &DirectoryObject{
		ID:   "mi-1",
		Tags: []string{"other", "WindowsAzureActiveDirectoryIntegratedApp"},
	}

	r := NewIdentityResolver(dir)
	assert.Equal(t, IdentityManagedIdentity, r.ResolveType(context.Background(), "mi-1"))
}

func TestResolveType_ProbeOrderFallsThroughToUser(t *testing.T) {
	dir := newFakeDirectory()
	dir.users["u-1"] = &DirectoryObject{ID: "u-1", DisplayName: "Alice"}

	r := NewIdentityResolver(dir)
	assert.Equal(t, IdentityUser, r.ResolveType(context.Background(), "u-1"))
}

func TestResolveType_ProbeOrderFallsThroughToGroup(t *testing.T) {
	dir := newFakeDirectory()
	dir.groups["g-1"] = &DirectoryObject{ID: "g-1", DisplayName: "platform-team"}

	r := NewIdentityResolver(dir)
	assert.Equal(t, IdentityGroup, r.ResolveType(context.Background(), "g-1"))
}

func TestResolveType_UnknownIsUnresolved(t *testing.T) {
	r := NewIdentityResolver(newFakeDirectory())
	assert.Equal(t, IdentityUnresolved, r.ResolveType(context.Background(), "ghost"))
}

func TestResolveType_NilDirectory(t *testing.T) {
	r := NewIdentityResolver(nil)
	assert.Equal(t, IdentityUnresolved, r.ResolveType(context.Background(), "anything"))
}

func TestResolveType_UserPreferredOverGroupOnDualMatch(t *testing.T) {
	// Same ID present as both user and group: the earlier probe wins.
	dir := newFakeDirectory()
	dir.users["dup"] = &DirectoryObject{ID: "dup"}
	dir.groups["dup"] = &DirectoryObject{ID: "dup"}

	r := NewIdentityResolver(dir)
	assert.Equal(t, IdentityUser, r.ResolveType(context.Background(), "dup"))
}

func TestResolveType_CachesWithinScan(t *testing.T) {
	dir := newFakeDirectory()
	dir.servicePrincipals["sp-1"] = &DirectoryObject{ID: "sp-1"}

	r := NewIdentityResolver(dir)
	r.ResolveType(context.Background(), "sp-1")
	callsAfterFirst := dir.calls
	r.ResolveType(context.Background(), "sp-1")
	assert.Equal(t, callsAfterFirst, dir.calls, "second resolve should hit the cache")
}

func TestResolveAll_OutageShortCircuits(t *testing.T) {
	dir := newFakeDirectory()
	dir.servicePrincipals["sp-1"] = &DirectoryObject{ID: "sp-1"}
	// First ID resolves in one call; every later probe hits the outage.
	dir.outageAfter = 1

	r := NewIdentityResolver(dir)
	types := r.ResolveAll(context.Background(), []string{"sp-1", "u-1", "u-2", "u-3"})

	require.Len(t, types, 4)
	assert.Equal(t, IdentityServicePrincipal, types["sp-1"])
	assert.Equal(t, IdentityUnresolved, types["u-1"])
	assert.Equal(t, IdentityUnresolved, types["u-2"])
	assert.Equal(t, IdentityUnresolved, types["u-3"])
	// Only the outage-triggering probe ran after the first resolve; the
	// remaining IDs were never probed.
	assert.Equal(t, 2, dir.calls)
}

func TestResolveAll_NotFoundDoesNotShortCircuit(t *testing.T) {
	dir := newFakeDirectory()
	dir.users["u-2"] = &DirectoryObject{ID: "u-2"}

	r := NewIdentityResolver(dir)
	types := r.ResolveAll(context.Background(), []string{"ghost", "u-2"})

	assert.Equal(t, IdentityUnresolved, types["ghost"])
	assert.Equal(t, IdentityUser, types["u-2"])
}

func TestPrincipals_ReturnsResolvedCopy(t *testing.T) {
	dir := newFakeDirectory()
	dir.users["u-1"] = &DirectoryObject{ID: "u-1", DisplayName: "Alice"}

	r := NewIdentityResolver(dir)
	r.ResolveType(context.Background(), "u-1")

	principals := r.Principals()
	require.Contains(t, principals, "u-1")
	assert.Equal(t, "Alice", principals["u-1"].DisplayName)

	// Mutating the copy must not touch the resolver cache.
	principals["u-1"] = Principal{ID: "u-1", Type: IdentityGroup}
	assert.Equal(t, IdentityUser, r.ResolveType(context.Background(), "u-1"))
}
