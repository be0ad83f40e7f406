// Package store holds the storage collaborators behind the generic
// repository. Every implementation honors the same predicate semantics as
// query.Predicate.Matches and exposes an atomic conditional update.
package store

import (
	"context"
	"errors"

	"admin-backend/internal/data/entity"
	"admin-backend/internal/data/query"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicate     = errors.New("duplicate value for unique field")
	ErrGuardRejected = errors.New("conditional update rejected")
	ErrInvalidQuery  = errors.New("invalid query")
)

// FindOptions shapes a multi-record read. Nil Pagination or Sort means none.
type FindOptions struct {
	Pagination *query.Pagination
	Sort       *query.Sort
	Projection entity.Projection
}

// Patch maps field names to new values. A nil value clears a nullable field.
type Patch map[string]any

// Guard admits an update only when Field is unset or equals Value.
type Guard struct {
	Field string
	Value any
}

// Store is the persistence contract for one record type.
type Store[T any] interface {
	// FindOne returns (nil, nil) when nothing matches.
	FindOne(ctx context.Context, pred query.Predicate, proj entity.Projection) (*T, error)
	Find(ctx context.Context, pred query.Predicate, opts FindOptions) ([]*T, error)
	Count(ctx context.Context, pred query.Predicate) (int64, error)
	Create(ctx context.Context, rec *T) error
	// UpdateByID returns the post-update record or ErrNotFound.
	UpdateByID(ctx context.Context, id uuid.UUID, patch Patch) (*T, error)
	// UpdateIf applies patch atomically only if guard holds.
	// Missing records yield ErrNotFound, failed guards ErrGuardRejected.
	UpdateIf(ctx context.Context, id uuid.UUID, guard Guard, patch Patch) (*T, error)
	// RemoveByID returns the removed record or ErrNotFound.
	RemoveByID(ctx context.Context, id uuid.UUID) (*T, error)
}
