package rules

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownField      = errors.New("unknown filter field")
	ErrUnknownComparison = errors.New("unknown comparison operator")
	ErrIllegalComparison = errors.New("comparison not supported by field")
)

// RuleValidationError reports a field/comparison pairing that cannot be evaluated.
type RuleValidationError struct {
	Field      FilterField
	Comparison ComparisonOperator
	Err        error
}

func (e *RuleValidationError) Error() string {
	return fmt.Sprintf("invalid rule %s %s: %v", e.Field, e.Comparison, e.Err)
}

func (e *RuleValidationError) Unwrap() error {
	return e.Err
}

// Validate checks the field/comparison pairing against the legality table.
func Validate(field FilterField, comparison ComparisonOperator) error {
	switch {
	case !field.Valid():
		return &RuleValidationError{Field: field, Comparison: comparison, Err: ErrUnknownField}
	case !comparison.Valid():
		return &RuleValidationError{Field: field, Comparison: comparison, Err: ErrUnknownComparison}
	case !IsLegal(field, comparison):
		return &RuleValidationError{Field: field, Comparison: comparison, Err: ErrIllegalComparison}
	}
	return nil
}
