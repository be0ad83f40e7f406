package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Kind int

const (
	KindString Kind = iota + 1
	KindUUID
	KindBool
	KindInt
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindUUID:
		return "uuid"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindTime:
		return "time"
	}
	return "unknown"
}

// Field maps an API field name to its storage column.
type Field struct {
	Name     string
	Column   string
	Kind     Kind
	Nullable bool
	Unique   bool
	// Private fields cannot be filtered or sorted on.
	Private bool
}

// Schema describes how a record type is stored.
type Schema struct {
	Table   string
	IDField string
	Fields  []Field

	byName map[string]int
}

func NewSchema(table, idField string, fields ...Field) *Schema {
	s := &Schema{Table: table, IDField: idField, Fields: fields, byName: make(map[string]int, len(fields))}
	for i, f := range fields {
		s.byName[f.Name] = i
	}
	return s
}

func (s *Schema) Lookup(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Visible returns the fields left after applying proj, in declaration order.
func (s *Schema) Visible(proj Projection) []Field {
	out := make([]Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if !proj.Excludes(f.Name) {
			out = append(out, f)
		}
	}
	return out
}

// ParseValue converts a raw filter value into the Go type stored for the field.
func (f Field) ParseValue(raw string) (any, error) {
	switch f.Kind {
	case KindString:
		return raw, nil
	case KindUUID:
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("field %s expects a uuid", f.Name)
		}
		return id, nil
	case KindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("field %s expects a boolean", f.Name)
		}
		return b, nil
	case KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s expects an integer", f.Name)
		}
		return n, nil
	case KindTime:
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("field %s expects an RFC3339 timestamp", f.Name)
		}
		return t.UTC(), nil
	}
	return nil, fmt.Errorf("field %s has unsupported kind", f.Name)
}

// Projection lists fields to leave out of a read.
type Projection struct {
	Exclude []string
}

func (p Projection) Excludes(name string) bool {
	for _, e := range p.Exclude {
		if e == name {
			return true
		}
	}
	return false
}

// Record is implemented by pointers to storable entities.
type Record interface {
	Schema() *Schema
	// FieldPtr returns a pointer to the named field, or nil if unknown.
	FieldPtr(name string) any
}

// RecordPtr constrains generic code to *T implementing Record.
type RecordPtr[T any] interface {
	*T
	Record
}
