package rules

import (
	"fmt"
	"strings"
)

// ComparisonOperator decides how a field value is compared against a rule value.
type ComparisonOperator string

const (
	Equals      ComparisonOperator = "equals"
	NotEquals   ComparisonOperator = "notEquals"
	Contains    ComparisonOperator = "contains"
	NotContains ComparisonOperator = "notContains"
	IsEmpty     ComparisonOperator = "isEmpty"
	IsNotEmpty  ComparisonOperator = "isNotEmpty"
	WithinDays  ComparisonOperator = "withinDays"
	LessThan    ComparisonOperator = "lessThan"
	GreaterThan ComparisonOperator = "greaterThan"
)

var comparisonOrder = []ComparisonOperator{
	Equals,
	NotEquals,
	Contains,
	NotContains,
	IsEmpty,
	IsNotEmpty,
	WithinDays,
	LessThan,
	GreaterThan,
}

// legalComparisons lists, per value type, the operators a rule may use.
// Menu order is preserved.
var legalComparisons = map[ValueType][]ComparisonOperator{
	TypeString:    {Equals, NotEquals, Contains, NotContains},
	TypeStringSet: {Contains, NotContains, IsEmpty, IsNotEmpty},
	TypeBool:      {Equals, NotEquals},
	TypeDate:      {WithinDays, LessThan, GreaterThan},
	TypeNumber:    {Equals, NotEquals, LessThan, GreaterThan},
}

// Comparisons returns every known operator.
func Comparisons() []ComparisonOperator {
	return append([]ComparisonOperator(nil), comparisonOrder...)
}

// ParseComparison resolves an operator name case-insensitively.
func ParseComparison(name string) (ComparisonOperator, error) {
	name = strings.TrimSpace(name)
	for _, op := range comparisonOrder {
		if strings.EqualFold(string(op), name) {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownComparison, name)
}

func (c ComparisonOperator) Valid() bool {
	for _, op := range comparisonOrder {
		if op == c {
			return true
		}
	}
	return false
}

// TakesValue reports whether the operator reads the rule value at all.
func (c ComparisonOperator) TakesValue() bool {
	return c != IsEmpty && c != IsNotEmpty
}

func (c ComparisonOperator) String() string {
	return string(c)
}

// LegalComparisons returns the operators allowed for field, or nil for an unknown field.
func LegalComparisons(field FilterField) []ComparisonOperator {
	if !field.Valid() {
		return nil
	}
	return append([]ComparisonOperator(nil), legalComparisons[field.ValueType()]...)
}

// IsLegal reports whether comparison may be paired with field.
func IsLegal(field FilterField, comparison ComparisonOperator) bool {
	for _, op := range LegalComparisons(field) {
		if op == comparison {
			return true
		}
	}
	return false
}
