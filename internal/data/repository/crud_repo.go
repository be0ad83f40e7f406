package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"admin-backend/internal/data/entity"
	"admin-backend/internal/data/query"
	"admin-backend/internal/data/store"
	"admin-backend/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RelationLoader expands one named relation on already fetched records.
type RelationLoader[T any] func(ctx context.Context, records []*T) error

// CRUDRepository is the entity-agnostic repository. Every error it returns is an *apperror.Error.
type CRUDRepository[T any] interface {
	Create(ctx context.Context, record *T) (*T, error)
	// FindOne returns (nil, nil) when nothing matches.
	FindOne(ctx context.Context, pred query.Predicate, relations []string, proj entity.Projection) (*T, error)
	// Find applies no limit when page is nil and no ordering when sort is nil.
	Find(ctx context.Context, pred query.Predicate, relations []string, page *query.Pagination, sort *query.Sort, proj entity.Projection) ([]*T, error)
	Count(ctx context.Context, pred query.Predicate) (int64, error)
	Update(ctx context.Context, id uuid.UUID, patch store.Patch) (*T, error)
	Remove(ctx context.Context, id uuid.UUID) (*T, error)
}

type crudRepository[T any, PT entity.RecordPtr[T]] struct {
	store     store.Store[T]
	schema    *entity.Schema
	timeout   time.Duration
	relations map[string]RelationLoader[T]
	log       *zap.Logger
	now       func() time.Time
}

func NewCRUDRepository[T any, PT entity.RecordPtr[T]](s store.Store[T], timeout time.Duration, log *zap.Logger, relations map[string]RelationLoader[T]) CRUDRepository[T] {
	return newCRUDRepository[T, PT](s, timeout, log, relations)
}

func newCRUDRepository[T any, PT entity.RecordPtr[T]](s store.Store[T], timeout time.Duration, log *zap.Logger, relations map[string]RelationLoader[T]) *crudRepository[T, PT] {
	schema := PT(new(T)).Schema()
	return &crudRepository[T, PT]{
		store:     s,
		schema:    schema,
		timeout:   timeout,
		relations: relations,
		log:       log.With(zap.String("repository", schema.Table)),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *crudRepository[T, PT]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Create fills in a missing id and timestamps before persisting.
func (r *crudRepository[T, PT]) Create(ctx context.Context, record *T) (*T, error) {
	rec := PT(record)
	if p, ok := rec.FieldPtr(r.schema.IDField).(*uuid.UUID); ok && *p == uuid.Nil {
		*p = uuid.New()
	}
	now := r.now()
	for _, name := range []string{entity.FieldCreatedAt, entity.FieldUpdatedAt} {
		if p, ok := rec.FieldPtr(name).(*time.Time); ok && p.IsZero() {
			*p = now
		}
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.store.Create(ctx, record); err != nil {
		return nil, r.storeError("create", apperror.MsgErrorCreatingRecord, err)
	}
	return record, nil
}

func (r *crudRepository[T, PT]) FindOne(ctx context.Context, pred query.Predicate, relations []string, proj entity.Projection) (*T, error) {
	if err := r.validate(pred, nil, relations); err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	record, err := r.store.FindOne(ctx, pred, proj)
	if err != nil {
		return nil, r.storeError("find one", apperror.MsgErrorRetrievingRecord, err)
	}
	if record == nil {
		return nil, nil
	}
	if err := r.expand(ctx, []*T{record}, relations); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *crudRepository[T, PT]) Find(ctx context.Context, pred query.Predicate, relations []string, page *query.Pagination, sort *query.Sort, proj entity.Projection) ([]*T, error) {
	if err := r.validate(pred, sort, relations); err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	records, err := r.store.Find(ctx, pred, store.FindOptions{Pagination: page, Sort: sort, Projection: proj})
	if err != nil {
		return nil, r.storeError("find", apperror.MsgErrorRetrievingRecord, err)
	}
	if err := r.expand(ctx, records, relations); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *crudRepository[T, PT]) Count(ctx context.Context, pred query.Predicate) (int64, error) {
	if err := r.validate(pred, nil, nil); err != nil {
		return 0, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.store.Count(ctx, pred)
	if err != nil {
		return 0, r.storeError("count", apperror.MsgErrorCountingRecord, err)
	}
	return n, nil
}

// Update stamps updatedAt unless the patch sets it.
func (r *crudRepository[T, PT]) Update(ctx context.Context, id uuid.UUID, patch store.Patch) (*T, error) {
	patch = r.stamp(patch)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	record, err := r.store.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, r.storeError("update", apperror.MsgErrorUpdatingRecord, err, zap.String("id", id.String()))
	}
	return record, nil
}

func (r *crudRepository[T, PT]) Remove(ctx context.Context, id uuid.UUID) (*T, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	record, err := r.store.RemoveByID(ctx, id)
	if err != nil {
		return nil, r.storeError("remove", apperror.MsgErrorRemovingRecord, err, zap.String("id", id.String()))
	}
	return record, nil
}

func (r *crudRepository[T, PT]) stamp(patch store.Patch) store.Patch {
	if _, ok := r.schema.Lookup(entity.FieldUpdatedAt); !ok {
		return patch
	}
	if _, ok := patch[entity.FieldUpdatedAt]; ok {
		return patch
	}
	out := make(store.Patch, len(patch)+1)
	for k, v := range patch {
		out[k] = v
	}
	out[entity.FieldUpdatedAt] = r.now()
	return out
}

// validate checks fields, values, sort and relations against the schema
// so a bad client query is a VALIDATION_FAILED instead of a storage error.
func (r *crudRepository[T, PT]) validate(pred query.Predicate, sort *query.Sort, relations []string) error {
	for _, fp := range pred.Fields() {
		field, ok := r.schema.Lookup(fp.Field)
		if !ok || field.Private {
			return apperror.Validation("Unknown filter field %q", fp.Field)
		}
		for _, c := range fp.Conditions {
			if err := validateCondition(field, c); err != nil {
				return err
			}
		}
	}

	if sort != nil {
		field, ok := r.schema.Lookup(sort.Field)
		if !ok || field.Private {
			return apperror.Validation("Unknown sort field %q", sort.Field)
		}
	}

	for _, name := range relations {
		if _, ok := r.relations[name]; !ok {
			return apperror.Validation("Unknown relation %q", name)
		}
	}
	return nil
}

func validateCondition(field entity.Field, c query.Condition) error {
	if c.Operator.IsText() {
		if field.Kind != entity.KindString {
			return apperror.Validation("Operator %s needs a text field, %s is %s", c.Operator, field.Name, field.Kind)
		}
		return nil
	}

	values := []string{c.Value}
	if c.Operator.IsList() {
		values = c.Values()
	}
	for _, v := range values {
		if _, err := field.ParseValue(v); err != nil {
			return apperror.Validation("Invalid filter value %q: %v", v, err)
		}
	}
	return nil
}

func (r *crudRepository[T, PT]) expand(ctx context.Context, records []*T, relations []string) error {
	if len(records) == 0 {
		return nil
	}
	for _, name := range relations {
		if err := r.relations[name](ctx, records); err != nil {
			r.log.Error("Failed to load relation", zap.String("relation", name), zap.Error(err))
			return apperror.Internal(apperror.MsgErrorRetrievingRecord, fmt.Errorf("load relation %s: %w", name, err))
		}
	}
	return nil
}

// storeError translates store sentinels into typed errors and logs the rest.
func (r *crudRepository[T, PT]) storeError(op, message string, err error, fields ...zap.Field) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperror.NotFound("").WithCause(err)
	case errors.Is(err, store.ErrDuplicate):
		r.log.Warn("Duplicate record", append(fields, zap.String("op", op), zap.Error(err))...)
		return apperror.Conflict(apperror.MsgDuplicateRecord).WithCause(err)
	case errors.Is(err, store.ErrInvalidQuery):
		return apperror.Validation("%s", err.Error()).WithCause(err)
	}

	r.log.Error("Storage operation failed", append(fields, zap.String("op", op), zap.Error(err))...)
	return apperror.Internal(message, fmt.Errorf("%s %s: %w", op, r.schema.Table, err))
}
