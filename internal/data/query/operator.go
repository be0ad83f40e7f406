package query

import "strings"

// Operator is the closed set of filter comparisons.
type Operator int

const (
	EQ Operator = iota + 1
	NE
	LT
	GT
	LE
	GE
	IN
	NI // not in
	SW // starts with, case-insensitive
	CN // contains, case-insensitive
)

var operatorCodes = map[Operator]string{
	EQ: "eq",
	NE: "ne",
	LT: "lt",
	GT: "gt",
	LE: "le",
	GE: "ge",
	IN: "in",
	NI: "ni",
	SW: "sw",
	CN: "cn",
}

// ParseOperator accepts the two-letter code in any case.
func ParseOperator(code string) (Operator, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for op, c := range operatorCodes {
		if c == code {
			return op, true
		}
	}
	return 0, false
}

func (o Operator) String() string {
	if c, ok := operatorCodes[o]; ok {
		return c
	}
	return "unknown"
}

// IsList reports whether the operator takes a comma-separated value list.
func (o Operator) IsList() bool {
	return o == IN || o == NI
}

// IsText reports whether the operator only applies to string fields.
func (o Operator) IsText() bool {
	return o == SW || o == CN
}
