package rules

import (
	"fmt"
	"strings"

	"github.com/mwantia/mugenvault/pkg/library"
)

// FilterField names the item attribute a rule inspects.
type FilterField string

const (
	FieldName        FilterField = "name"
	FieldAuthor      FilterField = "author"
	FieldTag         FilterField = "tag"
	FieldInstalledAt FilterField = "installedAt"
	FieldIsHD        FilterField = "isHD"
	FieldHasAI       FilterField = "hasAI"
	FieldHasMusic    FilterField = "hasMusic"
	FieldResolution  FilterField = "resolution"
	FieldTotalWidth  FilterField = "totalWidth"
	FieldSourceGame  FilterField = "sourceGame"
	FieldStyle       FilterField = "style"
)

// ValueType is the native type a field extracts to.
type ValueType uint8

const (
	TypeNotApplicable ValueType = iota
	TypeString
	TypeStringSet
	TypeBool
	TypeDate
	TypeNumber
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeStringSet:
		return "string-set"
	case TypeBool:
		return "bool"
	case TypeDate:
		return "date"
	case TypeNumber:
		return "number"
	default:
		return "not-applicable"
	}
}

type characterAccessor func(c *library.Character) Value
type stageAccessor func(s *library.Stage) Value

// fieldSpec is the single source of truth for a field: its value type and
// how it is read from each item kind. A nil accessor marks the field as not
// applicable for that kind.
type fieldSpec struct {
	valueType ValueType
	character characterAccessor
	stage     stageAccessor
}

var fieldOrder = []FilterField{
	FieldName,
	FieldAuthor,
	FieldTag,
	FieldInstalledAt,
	FieldIsHD,
	FieldHasAI,
	FieldHasMusic,
	FieldResolution,
	FieldTotalWidth,
	FieldSourceGame,
	FieldStyle,
}

var fieldSpecs = map[FilterField]fieldSpec{
	FieldName: {
		valueType: TypeString,
		character: func(c *library.Character) Value { return StringValue(c.Name) },
		stage:     func(s *library.Stage) Value { return StringValue(s.Name) },
	},
	FieldAuthor: {
		valueType: TypeString,
		character: func(c *library.Character) Value { return StringValue(c.Author) },
	},
	FieldTag: {
		valueType: TypeStringSet,
		character: func(c *library.Character) Value { return SetValue(c.Tags) },
		stage:     func(s *library.Stage) Value { return SetValue(s.Tags) },
	},
	FieldInstalledAt: {
		valueType: TypeDate,
		character: func(c *library.Character) Value { return DateValue(c.InstalledAt) },
		stage:     func(s *library.Stage) Value { return DateValue(s.InstalledAt) },
	},
	FieldIsHD: {
		valueType: TypeBool,
		character: func(c *library.Character) Value { return BoolValue(c.IsHD) },
	},
	FieldHasAI: {
		valueType: TypeBool,
		character: func(c *library.Character) Value { return BoolValue(c.HasAI) },
	},
	FieldHasMusic: {
		valueType: TypeBool,
		stage:     func(s *library.Stage) Value { return BoolValue(s.HasMusic) },
	},
	FieldResolution: {
		valueType: TypeString,
		stage:     func(s *library.Stage) Value { return StringValue(s.Resolution) },
	},
	FieldTotalWidth: {
		valueType: TypeNumber,
		stage:     func(s *library.Stage) Value { return NumberValue(s.TotalWidth) },
	},
	FieldSourceGame: {
		valueType: TypeString,
		character: func(c *library.Character) Value { return StringValue(c.SourceGame) },
		stage:     func(s *library.Stage) Value { return StringValue(s.SourceGame) },
	},
	FieldStyle: {
		valueType: TypeString,
		character: func(c *library.Character) Value { return StringValue(c.Style) },
		stage:     func(s *library.Stage) Value { return StringValue(s.Style) },
	},
}

// Fields returns every known field in menu order.
func Fields() []FilterField {
	return append([]FilterField(nil), fieldOrder...)
}

// ParseField resolves a field name case-insensitively.
func ParseField(name string) (FilterField, error) {
	name = strings.TrimSpace(name)
	for _, field := range fieldOrder {
		if strings.EqualFold(string(field), name) {
			return field, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

func (f FilterField) Valid() bool {
	_, ok := fieldSpecs[f]
	return ok
}

func (f FilterField) ValueType() ValueType {
	return fieldSpecs[f].valueType
}

// Kinds returns the item kinds the field can be read from.
func (f FilterField) Kinds() library.Kind {
	spec, ok := fieldSpecs[f]
	if !ok {
		return 0
	}

	var kinds library.Kind
	if spec.character != nil {
		kinds |= library.KindCharacter
	}
	if spec.stage != nil {
		kinds |= library.KindStage
	}
	return kinds
}

func (f FilterField) AppliesTo(kind library.Kind) bool {
	return f.Kinds().Has(kind)
}

func (f FilterField) String() string {
	return string(f)
}
