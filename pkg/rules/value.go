package rules

import (
	"strings"
	"time"

	"github.com/mwantia/mugenvault/pkg/library"
)

// Value is the native value a field extracts to. The zero Value is
// not-applicable, which never matches any rule.
type Value struct {
	typ    ValueType
	text   string
	set    map[string]struct{}
	flag   bool
	date   time.Time
	number float64
}

func StringValue(s string) Value {
	return Value{typ: TypeString, text: s}
}

// SetValue builds a tag set. Members are compared case-insensitively and
// surrounding whitespace is ignored.
func SetValue(members []string) Value {
	return Value{typ: TypeStringSet, set: normalizeSet(members)}
}

func BoolValue(b bool) Value {
	return Value{typ: TypeBool, flag: b}
}

// DateValue returns not-applicable for the zero time, as an item without a
// known install date cannot satisfy any date rule.
func DateValue(t time.Time) Value {
	if t.IsZero() {
		return Value{}
	}
	return Value{typ: TypeDate, date: t}
}

func NumberValue(n float64) Value {
	return Value{typ: TypeNumber, number: n}
}

func (v Value) Type() ValueType {
	return v.typ
}

func (v Value) Applicable() bool {
	return v.typ != TypeNotApplicable
}

// ExtractCharacter reads field from c.
func ExtractCharacter(field FilterField, c *library.Character) Value {
	spec, ok := fieldSpecs[field]
	if !ok || spec.character == nil || c == nil {
		return Value{}
	}
	return spec.character(c)
}

// ExtractStage reads field from s.
func ExtractStage(field FilterField, s *library.Stage) Value {
	spec, ok := fieldSpecs[field]
	if !ok || spec.stage == nil || s == nil {
		return Value{}
	}
	return spec.stage(s)
}

func normalizeSet(members []string) map[string]struct{} {
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		set[m] = struct{}{}
	}
	return set
}

// splitSet turns a comma separated rule value into a normalized set.
func splitSet(raw string) map[string]struct{} {
	return normalizeSet(strings.Split(raw, ","))
}
