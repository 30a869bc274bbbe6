// Package azure implements the typed ARM client layer behind the scan
// engine's collaborator interfaces. One client of each kind is built lazily
// per subscription and cached for the life of the factory (one scan).
package azure

import (
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/wardspan/azure-recon/internal/scan"
)

// Factory caches typed clients keyed by (kind, subscription), all bound to
// one shared credential. Cached clients are shared read-only across
// concurrent operations on the same subscription.
type Factory struct {
	cred azcore.TokenCredential

	mu            sync.Mutex
	network       map[scan.Scope]scan.NetworkClient
	authorization map[scan.Scope]scan.AuthorizationClient
	policy        map[scan.Scope]scan.PolicyClient
	security      map[scan.Scope]scan.SecurityClient
}

// NewFactory builds a client factory over a resolved credential.
func NewFactory(cred azcore.TokenCredential) *Factory {
	return &Factory{
		cred:          cred,
		network:       make(map[scan.Scope]scan.NetworkClient),
		authorization: make(map[scan.Scope]scan.AuthorizationClient),
		policy:        make(map[scan.Scope]scan.PolicyClient),
		security:      make(map[scan.Scope]scan.SecurityClient),
	}
}

// Network returns the cached network client for a subscription.
func (f *Factory) Network(scope scan.Scope) (scan.NetworkClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if client, ok := f.network[scope]; ok {
		return client, nil
	}
	client, err := newNetworkClient(scope, f.cred)
	if err != nil {
		return nil, err
	}
	f.network[scope] = client
	return client, nil
}

// Authorization returns the cached authorization client for a subscription.
func (f *Factory) Authorization(scope scan.Scope) (scan.AuthorizationClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if client, ok := f.authorization[scope]; ok {
		return client, nil
	}
	client, err := newAuthorizationClient(scope, f.cred)
	if err != nil {
		return nil, err
	}
	f.authorization[scope] = client
	return client, nil
}

// Policy returns the cached policy client for a subscription.
func (f *Factory) Policy(scope scan.Scope) (scan.PolicyClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if client, ok := f.policy[scope]; ok {
		return client, nil
	}
	client, err := newPolicyClient(scope, f.cred)
	if err != nil {
		return nil, err
	}
	f.policy[scope] = client
	return client, nil
}

// Security returns the cached Defender for Cloud client for a subscription.
func (f *Factory) Security(scope scan.Scope) (scan.SecurityClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if client, ok := f.security[scope]; ok {
		return client, nil
	}
	client, err := newSecurityClient(scope, f.cred)
	if err != nil {
		return nil, err
	}
	f.security[scope] = client
	return client, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func derefInt32(v *int32) int32 {
	if v == nil {
		return 0
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// resourceGroupFromID extracts the resource group segment of an ARM ID
// (/subscriptions/<sub>/resourceGroups/<rg>/...).
func resourceGroupFromID(id string) string {
	parts := strings.Split(id, "/")
	if len(parts) > 4 {
		return parts[4]
	}
	return "unknown"
}
