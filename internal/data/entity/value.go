package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Value dereferences a field pointer returned by FieldPtr. Nil pointers to
// nullable fields report present=false.
func Value(ptr any) (value any, present bool) {
	switch p := ptr.(type) {
	case *string:
		return *p, true
	case **string:
		if *p == nil {
			return nil, false
		}
		return **p, true
	case *bool:
		return *p, true
	case *int64:
		return *p, true
	case *uuid.UUID:
		return *p, true
	case *time.Time:
		return *p, true
	case **time.Time:
		if *p == nil {
			return nil, false
		}
		return **p, true
	}
	return nil, false
}

// Assign stores v into the field behind ptr. A nil v clears nullable fields.
func Assign(ptr any, v any) error {
	switch p := ptr.(type) {
	case *string:
		switch x := v.(type) {
		case string:
			*p = x
			return nil
		case UserRole:
			*p = string(x)
			return nil
		}
	case **string:
		switch x := v.(type) {
		case nil:
			*p = nil
			return nil
		case string:
			*p = &x
			return nil
		case *string:
			if x == nil {
				*p = nil
			} else {
				s := *x
				*p = &s
			}
			return nil
		}
	case *bool:
		if x, ok := v.(bool); ok {
			*p = x
			return nil
		}
	case *int64:
		switch x := v.(type) {
		case int64:
			*p = x
			return nil
		case int:
			*p = int64(x)
			return nil
		}
	case *uuid.UUID:
		if x, ok := v.(uuid.UUID); ok {
			*p = x
			return nil
		}
	case *time.Time:
		if x, ok := v.(time.Time); ok {
			*p = x.UTC()
			return nil
		}
	case **time.Time:
		switch x := v.(type) {
		case nil:
			*p = nil
			return nil
		case time.Time:
			t := x.UTC()
			*p = &t
			return nil
		case *time.Time:
			if x == nil {
				*p = nil
			} else {
				t := x.UTC()
				*p = &t
			}
			return nil
		}
	default:
		return fmt.Errorf("unsupported field type %T", ptr)
	}
	return fmt.Errorf("cannot assign %T to %T", v, ptr)
}

// Zero resets the field behind ptr.
func Zero(ptr any) {
	switch p := ptr.(type) {
	case *string:
		*p = ""
	case **string:
		*p = nil
	case *bool:
		*p = false
	case *int64:
		*p = 0
	case *uuid.UUID:
		*p = uuid.Nil
	case *time.Time:
		*p = time.Time{}
	case **time.Time:
		*p = nil
	}
}

// Copy deep-copies src into dst field by field, so nullable pointers are not shared.
func Copy(dst, src Record) {
	for _, f := range src.Schema().Fields {
		v, ok := Value(src.FieldPtr(f.Name))
		if !ok {
			Zero(dst.FieldPtr(f.Name))
			continue
		}
		_ = Assign(dst.FieldPtr(f.Name), v)
	}
}

// Project zeroes every field excluded by proj.
func Project(rec Record, proj Projection) {
	for _, name := range proj.Exclude {
		if ptr := rec.FieldPtr(name); ptr != nil {
			Zero(ptr)
		}
	}
}
