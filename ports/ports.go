// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a record with the same identity already exists.
var ErrDuplicate = errors.New("already exists")

// PackageKind distinguishes published interfaces from integrations.
type PackageKind string

const (
	KindInterface   PackageKind = "interface"
	KindIntegration PackageKind = "integration"
)

// PackageRecord is a published package as stored.
type PackageRecord struct {
	ID      string
	Kind    PackageKind
	Name    string
	Version string

	// Digest identifies Content; equal digests mean equal packages.
	Digest string

	// Content is the JSON encoding of the package definition.
	Content []byte

	CreatedAt time.Time
}

// PackageStore persists published packages. Records are write-once.
type PackageStore interface {
	// Get retrieves a package by kind and identity.
	Get(ctx context.Context, kind PackageKind, name, version string) (PackageRecord, error)

	// GetByID retrieves a package by ID.
	GetByID(ctx context.Context, id string) (PackageRecord, error)

	// List returns all packages of a kind ordered by name then version.
	List(ctx context.Context, kind PackageKind) ([]PackageRecord, error)

	// Create stores a new package. Returns ErrDuplicate if kind, name and
	// version are taken.
	Create(ctx context.Context, rec PackageRecord) error
}
