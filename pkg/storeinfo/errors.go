package storeinfo

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrStoreNotFound indicates no store exists under the requested workspace and name
	ErrStoreNotFound = errors.New("store not found")

	// ErrUnsupportedBackend indicates no backend client can open the store
	ErrUnsupportedBackend = errors.New("unsupported backend")

	// ErrMissingParameter indicates a required connection parameter is absent
	ErrMissingParameter = errors.New("missing connection parameter")

	// ErrNoCatalog indicates the service was built without a catalog
	ErrNoCatalog = errors.New("catalog is required")
)

// LookupError represents a failed store lookup. It is the only error the
// Service returns to callers.
type LookupError struct {
	Workspace string
	Name      string
	Err       error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup of store %s:%s failed: %v", e.Workspace, e.Name, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// BackendError represents a failed backend operation against a store
type BackendError struct {
	Store string
	Op    string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend operation %s failed for store %s: %v", e.Op, e.Store, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
