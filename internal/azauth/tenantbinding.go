// Package azauth — file: tenantbinding.go
//
// Tenant binding validation. A scan run against the wrong tenant produces a
// posture report that looks authoritative but describes someone else's
// estate. After authentication the JWT 'tid' claim is decoded and compared
// with the tenant the user asked for.
package azauth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// TenantMismatchError is returned when the JWT tenant ID does not match the
// requested tenant.
type TenantMismatchError struct {
	RequestedTenant string
	JWTTenantClaim  string
}

func (e *TenantMismatchError) Error() string {
	return fmt.Sprintf(
		"TENANT_MISMATCH: JWT 'tid' claim (%s) does not match requested tenant (%s).\n"+
			"The credential belongs to a different Azure AD tenant; run 'az login --tenant %s' or fix AZURE_TENANT_ID.",
		e.JWTTenantClaim, e.RequestedTenant, e.RequestedTenant,
	)
}

// ValidateTenantBinding decodes the access token (without verifying the
// signature — the Azure SDK already validates the token cryptographically)
// and checks that the 'tid' claim matches the requested tenant.
//
// rawToken is the access token string returned by Credential.GetToken().
func ValidateTenantBinding(rawToken, requestedTenant string) error {
	if strings.TrimSpace(requestedTenant) == "" {
		return nil
	}

	claims, err := decodeJWTClaims(rawToken)
	if err != nil {
		// Non-fatal: claim validation failure should not block the scan
		fmt.Fprintf(os.Stderr, "⚠️  tenant claim validation skipped (could not decode token): %v\n", err)
		return nil
	}

	if jwtTID, ok := claims["tid"].(string); ok && jwtTID != "" {
		if !strings.EqualFold(jwtTID, requestedTenant) {
			return &TenantMismatchError{
				RequestedTenant: requestedTenant,
				JWTTenantClaim:  jwtTID,
			}
		}
	}

	return nil
}

// jwtClaims is a minimal set of claims from an Azure AD access token.
type jwtClaims map[string]any

// decodeJWTClaims decodes the payload of a JWT WITHOUT verifying the signature.
// Signature verification is handled by the Azure SDK and ARM API itself.
// This is safe because we are extracting informational claims for local validation only;
// any tampered token will be rejected by the Azure API when used.
func decodeJWTClaims(rawToken string) (jwtClaims, error) {
	parts := strings.Split(rawToken, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid JWT format: expected 3 parts, got %d", len(parts))
	}

	// JWT payload is base64url-encoded (no padding)
	payload := parts[1]
	// Add padding if necessary
	switch len(payload) % 4 {
	case 2:
		payload += "=="
	case 3:
		payload += "="
	}

	decoded, err := base64.URLEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding JWT payload: %w", err)
	}

	var claims jwtClaims
	if err := json.Unmarshal(decoded, &claims); err != nil {
		return nil, fmt.Errorf("parsing JWT claims: %w", err)
	}

	return claims, nil
}
