package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Condition is one comparison attached to a field.
type Condition struct {
	Operator Operator
	// Value is the raw value; for IN/NI use Values.
	Value string
}

// Values splits a list operand on commas.
func (c Condition) Values() []string {
	return strings.Split(c.Value, ",")
}

// FieldPredicate is the conjunction of conditions on one field.
type FieldPredicate struct {
	Field      string
	Conditions []Condition
}

// Predicate is a conjunction of per-field conditions. The zero value matches everything.
type Predicate struct {
	fields []FieldPredicate
}

// Where starts a predicate with a single condition.
func Where(field string, op Operator, value string) Predicate {
	return Predicate{}.And(field, op, value)
}

// And returns a new predicate with one more condition. The receiver is not modified.
func (p Predicate) And(field string, op Operator, value string) Predicate {
	fields := make([]FieldPredicate, len(p.fields), len(p.fields)+1)
	for i, fp := range p.fields {
		fields[i] = FieldPredicate{Field: fp.Field, Conditions: append([]Condition(nil), fp.Conditions...)}
	}

	cond := Condition{Operator: op, Value: value}
	for i := range fields {
		if fields[i].Field == field {
			fields[i].Conditions = append(fields[i].Conditions, cond)
			return Predicate{fields: fields}
		}
	}
	return Predicate{fields: append(fields, FieldPredicate{Field: field, Conditions: []Condition{cond}})}
}

// Fields returns the per-field groups in first-seen order.
func (p Predicate) Fields() []FieldPredicate {
	return p.fields
}

// IsEmpty reports whether the predicate has no conditions.
func (p Predicate) IsEmpty() bool {
	return len(p.fields) == 0
}

func (p Predicate) String() string {
	var parts []string
	for _, fp := range p.fields {
		for _, c := range fp.Conditions {
			parts = append(parts, fmt.Sprintf("%s:%s:%s", fp.Field, c.Operator, c.Value))
		}
	}
	return strings.Join(parts, " AND ")
}

// LookupFunc returns the typed value of field and whether it is set.
// Supported value types are string, int, int64, bool, time.Time and fmt.Stringer.
type LookupFunc func(field string) (value any, present bool)

// Matches evaluates the predicate against a record exposed through lookup.
func (p Predicate) Matches(lookup LookupFunc) bool {
	for _, fp := range p.fields {
		value, present := lookup(fp.Field)
		for _, c := range fp.Conditions {
			if !c.matches(value, present) {
				return false
			}
		}
	}
	return true
}

func (c Condition) matches(value any, present bool) bool {
	if !present {
		return c.Operator == NE || c.Operator == NI
	}

	switch c.Operator {
	case CN, SW:
		s, ok := asString(value)
		if !ok {
			return false
		}
		s, needle := strings.ToLower(s), strings.ToLower(c.Value)
		if c.Operator == CN {
			return strings.Contains(s, needle)
		}
		return strings.HasPrefix(s, needle)

	case IN, NI:
		found := false
		for _, v := range c.Values() {
			if cmp, ok := compare(value, v); ok && cmp == 0 {
				found = true
				break
			}
		}
		return found == (c.Operator == IN)
	}

	cmp, ok := compare(value, c.Value)
	if !ok {
		return c.Operator == NE
	}
	switch c.Operator {
	case EQ:
		return cmp == 0
	case NE:
		return cmp != 0
	case LT:
		return cmp < 0
	case GT:
		return cmp > 0
	case LE:
		return cmp <= 0
	case GE:
		return cmp >= 0
	}
	return false
}

func asString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

// compare orders value against raw parsed into value's type.
func compare(value any, raw string) (int, bool) {
	switch v := value.(type) {
	case string:
		return strings.Compare(v, raw), true
	case int:
		return compare(int64(v), raw)
	case int64:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return 0, false
		}
		return compareOrdered(v, n), true
	case bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return 0, false
		}
		return compareOrdered(boolRank(v), boolRank(b)), true
	case time.Time:
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
		if err != nil {
			return 0, false
		}
		return v.Compare(t), true
	case fmt.Stringer:
		return strings.Compare(v.String(), raw), true
	}
	return 0, false
}

func boolRank(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
