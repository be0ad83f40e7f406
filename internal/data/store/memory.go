package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"admin-backend/internal/data/entity"
	"admin-backend/internal/data/query"

	"github.com/google/uuid"
)

// MemoryStore keeps records in process. All reads return copies and all
// writes happen under one lock, which makes UpdateIf a true compare-and-set.
type MemoryStore[T any, PT entity.RecordPtr[T]] struct {
	mu      sync.RWMutex
	records []*T
	schema  *entity.Schema
}

func NewMemoryStore[T any, PT entity.RecordPtr[T]]() *MemoryStore[T, PT] {
	return &MemoryStore[T, PT]{schema: PT(new(T)).Schema()}
}

func (s *MemoryStore[T, PT]) FindOne(ctx context.Context, pred query.Predicate, proj entity.Projection) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if pred.Matches(s.lookup(rec)) {
			out := s.clone(rec)
			entity.Project(PT(out), proj)
			return out, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore[T, PT]) Find(ctx context.Context, pred query.Predicate, opts FindOptions) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]*T, 0)
	for _, rec := range s.records {
		if pred.Matches(s.lookup(rec)) {
			matched = append(matched, s.clone(rec))
		}
	}
	s.mu.RUnlock()

	if opts.Sort != nil {
		field := opts.Sort.Field
		desc := opts.Sort.Descending()
		sort.SliceStable(matched, func(i, j int) bool {
			a, aok := entity.Value(PT(matched[i]).FieldPtr(field))
			b, bok := entity.Value(PT(matched[j]).FieldPtr(field))
			c := compareValues(a, aok, b, bok)
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	if opts.Pagination != nil {
		skip, limit := opts.Pagination.Skip(), opts.Pagination.Limit()
		if skip >= len(matched) {
			matched = matched[:0]
		} else {
			end := skip + limit
			if end > len(matched) {
				end = len(matched)
			}
			matched = matched[skip:end]
		}
	}

	for _, rec := range matched {
		entity.Project(PT(rec), opts.Projection)
	}
	return matched, nil
}

func (s *MemoryStore[T, PT]) Count(ctx context.Context, pred query.Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, rec := range s.records {
		if pred.Matches(s.lookup(rec)) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore[T, PT]) Create(ctx context.Context, rec *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(rec, nil); err != nil {
		return err
	}
	s.records = append(s.records, s.clone(rec))
	return nil
}

func (s *MemoryStore[T, PT]) UpdateByID(ctx context.Context, id uuid.UUID, patch Patch) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return s.applyAt(i, patch)
}

func (s *MemoryStore[T, PT]) UpdateIf(ctx context.Context, id uuid.UUID, guard Guard, patch Patch) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}

	ptr := PT(s.records[i]).FieldPtr(guard.Field)
	if ptr == nil {
		return nil, fmt.Errorf("%w: unknown guard field %q", ErrInvalidQuery, guard.Field)
	}
	if current, present := entity.Value(ptr); present && current != guard.Value {
		return nil, ErrGuardRejected
	}
	return s.applyAt(i, patch)
}

func (s *MemoryStore[T, PT]) RemoveByID(ctx context.Context, id uuid.UUID) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	removed := s.records[i]
	s.records = append(s.records[:i], s.records[i+1:]...)
	return removed, nil
}

// applyAt must be called with the write lock held.
func (s *MemoryStore[T, PT]) applyAt(i int, patch Patch) (*T, error) {
	updated := s.clone(s.records[i])
	for name, v := range patch {
		if name == s.schema.IDField {
			return nil, fmt.Errorf("%w: %s is immutable", ErrInvalidQuery, name)
		}
		ptr := PT(updated).FieldPtr(name)
		if ptr == nil {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, name)
		}
		if err := entity.Assign(ptr, v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
	}

	if err := s.checkUnique(updated, s.records[i]); err != nil {
		return nil, err
	}
	s.records[i] = updated
	return s.clone(updated), nil
}

func (s *MemoryStore[T, PT]) checkUnique(candidate, self *T) error {
	for _, f := range s.schema.Fields {
		if !f.Unique {
			continue
		}
		want, ok := entity.Value(PT(candidate).FieldPtr(f.Name))
		if !ok {
			continue
		}
		for _, rec := range s.records {
			if rec == self {
				continue
			}
			if got, ok := entity.Value(PT(rec).FieldPtr(f.Name)); ok && got == want {
				return fmt.Errorf("%w: %s", ErrDuplicate, f.Name)
			}
		}
	}
	return nil
}

func (s *MemoryStore[T, PT]) indexOf(id uuid.UUID) int {
	for i, rec := range s.records {
		if s.idOf(rec) == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore[T, PT]) idOf(rec *T) uuid.UUID {
	if p, ok := PT(rec).FieldPtr(s.schema.IDField).(*uuid.UUID); ok {
		return *p
	}
	return uuid.Nil
}

func (s *MemoryStore[T, PT]) lookup(rec *T) query.LookupFunc {
	return func(field string) (any, bool) {
		ptr := PT(rec).FieldPtr(field)
		if ptr == nil {
			return nil, false
		}
		return entity.Value(ptr)
	}
}

func (s *MemoryStore[T, PT]) clone(src *T) *T {
	dst := new(T)
	entity.Copy(PT(dst), PT(src))
	return dst
}

// compareValues orders unset values first.
func compareValues(a any, aok bool, b any, bok bool) int {
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}

	switch x := a.(type) {
	case string:
		return strings.Compare(x, b.(string))
	case int64:
		y := b.(int64)
		if x < y {
			return -1
		} else if x > y {
			return 1
		}
		return 0
	case bool:
		y := b.(bool)
		if x == y {
			return 0
		} else if !x {
			return -1
		}
		return 1
	case time.Time:
		return x.Compare(b.(time.Time))
	case uuid.UUID:
		return strings.Compare(x.String(), b.(uuid.UUID).String())
	}
	return 0
}
