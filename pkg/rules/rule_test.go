package rules

import (
	"errors"
	"testing"

	"github.com/mwantia/mugenvault/pkg/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRule_LegalPairings(t *testing.T) {
	for _, field := range Fields() {
		for _, op := range LegalComparisons(field) {
			rule, err := BuildRule(field, op, "x")
			require.NoError(t, err, "%s %s", field, op)
			assert.NotEmpty(t, rule.ID())
			assert.Equal(t, field, rule.Field())
			assert.Equal(t, op, rule.Comparison())
			assert.Equal(t, "x", rule.Value())
		}
	}
}

func TestBuildRule_IllegalPairing(t *testing.T) {
	_, err := BuildRule(FieldIsHD, WithinDays, "7")
	require.Error(t, err)

	var validationErr *RuleValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, FieldIsHD, validationErr.Field)
	assert.Equal(t, WithinDays, validationErr.Comparison)
	assert.ErrorIs(t, err, ErrIllegalComparison)
}

func TestBuildRule_UnknownFieldAndComparison(t *testing.T) {
	_, err := BuildRule("palette", Equals, "1")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = BuildRule(FieldName, "startsWith", "R")
	assert.ErrorIs(t, err, ErrUnknownComparison)
}

func TestBuildRule_FreshIDs(t *testing.T) {
	a, err := BuildRule(FieldName, Equals, "Ryu")
	require.NoError(t, err)
	b, err := BuildRule(FieldName, Equals, "Ryu")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
}

func TestFilterRule_EditKeepsID(t *testing.T) {
	original, err := BuildRule(FieldName, Equals, "Ryu")
	require.NoError(t, err)

	edited, err := original.Edit(FieldName, Contains, "Ke")
	require.NoError(t, err)
	assert.Equal(t, original.ID(), edited.ID())
	assert.Equal(t, Contains, edited.Comparison())
	assert.Equal(t, Equals, original.Comparison(), "original must not change")

	_, err = original.Edit(FieldName, WithinDays, "3")
	assert.ErrorIs(t, err, ErrIllegalComparison)
}

func TestRestoreRule_RequiresID(t *testing.T) {
	_, err := RestoreRule("", FieldName, Equals, "Ryu")
	assert.Error(t, err)
}

func TestLegalityTable(t *testing.T) {
	tests := []struct {
		field FilterField
		legal []ComparisonOperator
	}{
		{FieldName, []ComparisonOperator{Equals, NotEquals, Contains, NotContains}},
		{FieldTag, []ComparisonOperator{Contains, NotContains, IsEmpty, IsNotEmpty}},
		{FieldIsHD, []ComparisonOperator{Equals, NotEquals}},
		{FieldInstalledAt, []ComparisonOperator{WithinDays, LessThan, GreaterThan}},
		{FieldTotalWidth, []ComparisonOperator{Equals, NotEquals, LessThan, GreaterThan}},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			assert.Equal(t, tt.legal, LegalComparisons(tt.field))
			for _, op := range Comparisons() {
				assert.Equal(t, contains(tt.legal, op), IsLegal(tt.field, op), "%s", op)
			}
		})
	}

	assert.Nil(t, LegalComparisons("unknown"))
}

func TestFieldKinds(t *testing.T) {
	assert.Equal(t, library.KindCharacter|library.KindStage, FieldName.Kinds())
	assert.Equal(t, library.KindCharacter, FieldAuthor.Kinds())
	assert.Equal(t, library.KindCharacter, FieldIsHD.Kinds())
	assert.Equal(t, library.KindCharacter, FieldHasAI.Kinds())
	assert.Equal(t, library.KindStage, FieldHasMusic.Kinds())
	assert.Equal(t, library.KindStage, FieldResolution.Kinds())
	assert.Equal(t, library.KindStage, FieldTotalWidth.Kinds())
	assert.True(t, FieldTag.AppliesTo(library.KindStage))
	assert.False(t, FieldIsHD.AppliesTo(library.KindStage))
}

func TestEveryFieldHasSpec(t *testing.T) {
	for _, field := range Fields() {
		assert.True(t, field.Valid(), "%s", field)
		assert.NotEqual(t, TypeNotApplicable, field.ValueType(), "%s", field)
		assert.NotZero(t, field.Kinds(), "%s", field)
		assert.NotEmpty(t, LegalComparisons(field), "%s", field)
	}
	assert.Len(t, fieldSpecs, len(Fields()))
}

func TestParseFieldAndComparison(t *testing.T) {
	field, err := ParseField(" ishd ")
	require.NoError(t, err)
	assert.Equal(t, FieldIsHD, field)

	op, err := ParseComparison("WITHINDAYS")
	require.NoError(t, err)
	assert.Equal(t, WithinDays, op)

	_, err = ParseField("nope")
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = ParseComparison("nope")
	assert.ErrorIs(t, err, ErrUnknownComparison)
}

func TestQueryHash(t *testing.T) {
	a := mustRule(t, FieldTag, Contains, "Street Fighter")
	b := mustRule(t, FieldIsHD, Equals, "true")

	assert.Equal(t, Query{a, b}.Hash(), Query{b, a}.Hash(), "order must not matter")
	assert.Equal(t, Query{a}.Hash(), Query{mustRule(t, FieldTag, Contains, "Street Fighter")}.Hash(), "ids must not matter")
	assert.NotEqual(t, Query{a}.Hash(), Query{b}.Hash())
	assert.NotEqual(t, Query{}.Hash(), Query{a}.Hash())

	empty1 := mustRule(t, FieldTag, IsEmpty, "")
	empty2 := mustRule(t, FieldTag, IsEmpty, "ignored")
	assert.Equal(t, Query{empty1}.Hash(), Query{empty2}.Hash())
}

func TestQueryValidate(t *testing.T) {
	assert.NoError(t, Query{mustRule(t, FieldName, Equals, "Ryu")}.Validate())
	assert.ErrorIs(t, Query{{}}.Validate(), ErrUnknownField)
}

func mustRule(t *testing.T, field FilterField, comparison ComparisonOperator, value string) FilterRule {
	t.Helper()
	rule, err := BuildRule(field, comparison, value)
	require.NoError(t, err)
	return rule
}

func contains(ops []ComparisonOperator, op ComparisonOperator) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

func TestQueryRelative(t *testing.T) {
	assert.False(t, Query{mustRule(t, FieldInstalledAt, LessThan, "2024-01-01")}.Relative())
	assert.True(t, Query{
		mustRule(t, FieldName, Equals, "Ryu"),
		mustRule(t, FieldInstalledAt, WithinDays, "7"),
	}.Relative())
}
