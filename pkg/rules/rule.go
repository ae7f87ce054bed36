package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// FilterRule is one field/comparison/value triple. Rules are values: an
// edit produces a new rule carrying the same id.
type FilterRule struct {
	id         string
	field      FilterField
	comparison ComparisonOperator
	value      string
}

// BuildRule validates the pairing and returns a rule with a fresh id.
func BuildRule(field FilterField, comparison ComparisonOperator, value string) (FilterRule, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return FilterRule{}, fmt.Errorf("failed to generate rule id: %w", err)
	}
	return RestoreRule(id.String(), field, comparison, value)
}

// RestoreRule validates a previously persisted rule and keeps its id.
func RestoreRule(id string, field FilterField, comparison ComparisonOperator, value string) (FilterRule, error) {
	if id == "" {
		return FilterRule{}, fmt.Errorf("rule id must not be empty")
	}
	if err := Validate(field, comparison); err != nil {
		return FilterRule{}, err
	}

	return FilterRule{
		id:         id,
		field:      field,
		comparison: comparison,
		value:      value,
	}, nil
}

// Edit returns a validated replacement of r with the same id. r itself is
// left untouched, so a rejected edit keeps the previous rule usable.
func (r FilterRule) Edit(field FilterField, comparison ComparisonOperator, value string) (FilterRule, error) {
	return RestoreRule(r.id, field, comparison, value)
}

func (r FilterRule) ID() string                     { return r.id }
func (r FilterRule) Field() FilterField             { return r.field }
func (r FilterRule) Comparison() ComparisonOperator { return r.comparison }
func (r FilterRule) Value() string                  { return r.value }

func (r FilterRule) String() string {
	if !r.comparison.TakesValue() {
		return fmt.Sprintf("%s %s", r.field, r.comparison)
	}
	return fmt.Sprintf("%s %s %q", r.field, r.comparison, r.value)
}

// Query is an ordered list of rules combined by logical AND. The order only
// matters for display.
type Query []FilterRule

// Validate re-checks every rule, which matters for rules that were not
// created through BuildRule, e.g. the zero FilterRule.
func (q Query) Validate() error {
	for _, rule := range q {
		if err := Validate(rule.field, rule.comparison); err != nil {
			return err
		}
	}
	return nil
}

// Relative reports whether the result of the query depends on the
// evaluation instant and not only on the library content.
func (q Query) Relative() bool {
	for _, rule := range q {
		if rule.comparison == WithinDays {
			return true
		}
	}
	return false
}

// Hash returns an order independent fingerprint of the rule triples. Rule
// ids do not contribute, so two queries with the same semantics share a hash.
func (q Query) Hash() uint64 {
	triples := make([]string, 0, len(q))
	for _, rule := range q {
		value := rule.value
		if !rule.comparison.TakesValue() {
			value = ""
		}
		triples = append(triples, strings.Join([]string{
			string(rule.field),
			string(rule.comparison),
			value,
		}, "\x1f"))
	}
	slices.Sort(triples)

	digest := xxhash.New()
	for _, triple := range triples {
		digest.WriteString(triple)
		digest.WriteString("\x1e")
	}
	return digest.Sum64()
}
