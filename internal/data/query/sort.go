package query

import (
	"fmt"
	"strings"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort orders results by one field.
type Sort struct {
	Field     string
	Direction Direction
}

// ParseSort parses "field:direction". A missing direction means ascending.
func ParseSort(raw string) (*Sort, error) {
	field, dir, _ := strings.Cut(raw, ":")
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, &ParseError{Token: raw, Reason: "empty sort field"}
	}

	d, err := ParseDirection(dir)
	if err != nil {
		return nil, &ParseError{Token: raw, Reason: err.Error()}
	}
	return &Sort{Field: field, Direction: d}, nil
}

// ParseDirection accepts asc/desc, ascending/descending and 1/-1.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "asc", "ascending", "1":
		return Asc, nil
	case "desc", "descending", "-1":
		return Desc, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", raw)
}

func (s Sort) Descending() bool {
	return s.Direction == Desc
}
