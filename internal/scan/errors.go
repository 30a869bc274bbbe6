package scan

import "errors"

// ErrNotFound signals a directory probe miss: the principal does not exist
// as the probed object type. The resolver moves on to the next probe.
var ErrNotFound = errors.New("directory object not found")

// ErrDirectoryUnavailable signals that the directory service cannot be
// reached at all (no token, no endpoint). It aborts the whole resolution
// batch; every remaining principal resolves to Unresolved.
var ErrDirectoryUnavailable = errors.New("directory service unavailable")

// AuthenticationError is fatal for any operation requiring a credential.
// It is the only error class allowed to abort a scan.
type AuthenticationError struct {
	Cause error
}

func (e *AuthenticationError) Error() string {
	if e.Cause == nil {
		return "not authenticated with Azure"
	}
	return "not authenticated with Azure: " + e.Cause.Error()
}

func (e *AuthenticationError) Unwrap() error { return e.Cause }
