// Package storage defines the repository contract for trust records and its
// interchangeable backends: an in-memory map, a polling CSV file cache, a
// redis passthrough and a postgres document read path.
package storage

import (
	"context"

	"trustregistry/internal/domain"
)

// QueryRepository is the read-only capability exposed to anonymous callers.
type QueryRepository interface {
	// FindByQuery returns the record for the natural key, or nil when no
	// record exists. A miss is not an error on this path.
	FindByQuery(ctx context.Context, query domain.TrustRecordQuery) (*domain.TrustRecord, error)
}

// AdminRepository is the full capability used by authorized admin traffic.
// It is interface-driven so handlers stay testable and backends can be
// swapped without rewiring protocol code.
type AdminRepository interface {
	QueryRepository

	// Create inserts a record. Fails with ErrRecordAlreadyExists when the
	// natural key is already present.
	Create(ctx context.Context, record domain.TrustRecord) error

	// Update replaces the record wholesale. Fields absent from the new
	// record are dropped, not preserved. Fails with ErrRecordNotFound when
	// the key is absent.
	Update(ctx context.Context, record domain.TrustRecord) error

	// Delete removes the record. Fails with ErrRecordNotFound when absent.
	Delete(ctx context.Context, query domain.TrustRecordQuery) error

	// Read returns the record. Unlike FindByQuery, a miss is an error
	// (ErrRecordNotFound): the admin caller named a key it expects to exist.
	Read(ctx context.Context, query domain.TrustRecordQuery) (domain.TrustRecord, error)

	// List returns all records. Order is unspecified.
	List(ctx context.Context) ([]domain.TrustRecord, error)
}
