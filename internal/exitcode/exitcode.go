package exitcode

import (
	"errors"
	"strings"

	"github.com/wardspan/azure-recon/internal/azauth"
	"github.com/wardspan/azure-recon/internal/scan"
)

const (
	OK            = 0
	Generic       = 1
	Validation    = 2
	Azure         = 3
	Auth          = 4
	Directory     = 5
	SecurityBlock = 7
)

type Error struct {
	Code  int
	Cause error
}

func (e *Error) Error() string {
	return e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Cause: err}
}

func Of(err error) int {
	if err == nil {
		return OK
	}

	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}

	var authErr *azauth.AuthError
	if errors.As(err, &authErr) {
		return Auth
	}

	var scanAuthErr *scan.AuthenticationError
	if errors.As(err, &scanAuthErr) {
		return Auth
	}

	var tenantErr *azauth.TenantMismatchError
	if errors.As(err, &tenantErr) {
		return SecurityBlock
	}

	if errors.Is(err, scan.ErrDirectoryUnavailable) {
		return Directory
	}

	// Fallback: string-based classification for errors not yet wrapped with typed codes.
	// Each case here is a candidate for future replacement with a typed error.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "tenant_mismatch"):
		return SecurityBlock
	case strings.Contains(msg, "authentication") || strings.Contains(msg, "credential"):
		return Auth
	case strings.Contains(msg, "validation") || strings.Contains(msg, "invalid"):
		return Validation
	case strings.Contains(msg, "azure") || strings.Contains(msg, "arm"):
		return Azure
	default:
		return Generic
	}
}
