package vault

import (
	"errors"
	"fmt"
	"os"
)

// Sentinel errors used for simple equality-style checks.
var (
	ErrInvalid  = os.ErrInvalid  // invalid argument
	ErrNotExist = os.ErrNotExist // file or folder does not exist
)

// BackendError wraps failures coming from the storage behind a Store.
type BackendError struct {
	Backend string // e.g. "fs", "memory"
	Op      string // operation, e.g. "ReadText", "List"
	Path    string // vault-relative path, when known
	Cause   error
}

func (e *BackendError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Backend, e.Op, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Cause)
}

// Unwrap returns the wrapped cause.
func (e *BackendError) Unwrap() error { return e.Cause }

// NewBackendError constructs a *BackendError describing an operation against a backend.
func NewBackendError(backend, op, path string, cause error) error {
	return &BackendError{Backend: backend, Op: op, Path: path, Cause: cause}
}

// IsNotExist reports whether err is (or wraps) a missing file or folder.
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist)
}

// IsBackendError reports whether err is (or wraps) a BackendError.
func IsBackendError(err error) bool {
	if err == nil {
		return false
	}
	var be *BackendError
	return errors.As(err, &be)
}
