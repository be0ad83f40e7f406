// Package query turns client supplied "field:operator:value" filter tokens,
// "field:direction" sort tokens and page numbers into storage-agnostic
// structures. It does no I/O.
package query

import (
	"fmt"
	"strings"
)

// NullSentinel as a filter value disables that filter item.
// There is no escape for searching the literal text "null".
const NullSentinel = "null"

// FilterItem is one parsed filter token.
type FilterItem struct {
	Field    string
	Operator Operator
	Value    string
}

// ParseError names the token that could not be parsed.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid token %q: %s", e.Token, e.Reason)
}

// Parse splits each raw token on its first two colons. Any further colons
// belong to the value.
func Parse(rawTokens []string) ([]FilterItem, error) {
	items := make([]FilterItem, 0, len(rawTokens))
	for _, raw := range rawTokens {
		parts := strings.SplitN(raw, ":", 3)
		if len(parts) != 3 {
			return nil, &ParseError{Token: raw, Reason: "expected field:operator:value"}
		}

		field := strings.TrimSpace(parts[0])
		if field == "" {
			return nil, &ParseError{Token: raw, Reason: "empty field"}
		}

		op, ok := ParseOperator(parts[1])
		if !ok {
			return nil, &ParseError{Token: raw, Reason: fmt.Sprintf("unknown operator %q", parts[1])}
		}

		items = append(items, FilterItem{Field: field, Operator: op, Value: parts[2]})
	}
	return items, nil
}

// Compile groups items by field; every condition on a field must hold.
// Items whose value is NullSentinel contribute nothing.
func Compile(items []FilterItem) Predicate {
	var p Predicate
	for _, item := range items {
		if item.Value == NullSentinel {
			continue
		}
		p = p.And(item.Field, item.Operator, item.Value)
	}
	return p
}

// ParseAndCompile is Parse followed by Compile.
func ParseAndCompile(rawTokens []string) (Predicate, error) {
	items, err := Parse(rawTokens)
	if err != nil {
		return Predicate{}, err
	}
	return Compile(items), nil
}
