package azauth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
)

func fakeJWT(t *testing.T, claims map[string]any) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshaling claims: %v", err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return "eyJhbGciOiJub25lIn0." + encoded + ".sig"
}

func TestValidateTenantBinding_Match(t *testing.T) {
	token := fakeJWT(t, map[string]any{"tid": "tenant-a"})
	if err := ValidateTenantBinding(token, "tenant-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateTenantBinding_CaseInsensitive(t *testing.T) {
	token := fakeJWT(t, map[string]any{"tid": "TENANT-A"})
	if err := ValidateTenantBinding(token, "tenant-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateTenantBinding_Mismatch(t *testing.T) {
	token := fakeJWT(t, map[string]any{"tid": "tenant-b"})
	err := ValidateTenantBinding(token, "tenant-a")
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	var mismatch *TenantMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected TenantMismatchError, got %T", err)
	}
	if mismatch.JWTTenantClaim != "tenant-b" {
		t.Errorf("got claim %q, want tenant-b", mismatch.JWTTenantClaim)
	}
}

func TestValidateTenantBinding_NoRequestedTenant(t *testing.T) {
	token := fakeJWT(t, map[string]any{"tid": "tenant-b"})
	if err := ValidateTenantBinding(token, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateTenantBinding_MalformedTokenIsNonFatal(t *testing.T) {
	if err := ValidateTenantBinding("not-a-jwt", "tenant-a"); err != nil {
		t.Fatalf("malformed token should be non-fatal, got: %v", err)
	}
}

func TestDecodeJWTClaims_MissingTID(t *testing.T) {
	token := fakeJWT(t, map[string]any{"appid": "app-1"})
	if err := ValidateTenantBinding(token, "tenant-a"); err != nil {
		t.Fatalf("missing tid claim should not fail: %v", err)
	}
}
