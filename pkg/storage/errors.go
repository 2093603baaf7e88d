package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when an asset does not exist or belongs to
	// another tenant.
	ErrNotFound = errors.New("asset not found")

	// ErrConflict is returned when an asset with the given ID already exists.
	ErrConflict = errors.New("asset already exists")

	// ErrNoTenant is returned when a tenant-scoped operation runs without
	// a tenant in the context.
	ErrNoTenant = errors.New("no tenant in context")
)
