package rules

import (
	"testing"
	"time"

	"github.com/mwantia/mugenvault/pkg/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() library.Snapshot {
	return library.Snapshot{
		Version: 3,
		TakenAt: reference,
		Characters: []library.Character{
			{
				ID:          "ryu",
				Name:        "Ryu",
				Author:      "Phantom.of.the.Server",
				Tags:        []string{"Street Fighter", "HD"},
				InstalledAt: reference.Add(-3 * day),
				IsHD:        true,
				HasAI:       true,
				SourceGame:  "Street Fighter III",
				Style:       "CvS",
			},
			{
				ID:          "ken",
				Name:        "Ken",
				Author:      "Warusaki3",
				Tags:        []string{"Street Fighter"},
				InstalledAt: reference.Add(-30 * day),
				IsHD:        false,
				SourceGame:  "Street Fighter II",
			},
			{
				ID:   "kfm",
				Name: "Kung Fu Man",
			},
		},
		Stages: []library.Stage{
			{
				ID:          "training",
				Name:        "Training Room",
				Tags:        []string{"Street Fighter"},
				InstalledAt: reference.Add(-1 * day),
				HasMusic:    true,
				Resolution:  "1280x720",
				TotalWidth:  1600,
			},
			{
				ID:          "kfm_stage",
				Name:        "KFM Stage",
				InstalledAt: reference.Add(-100 * day),
				Resolution:  "320x240",
				TotalWidth:  640,
			},
		},
	}
}

func TestEvaluate_EmptyQueryMatchesEverything(t *testing.T) {
	result := Evaluate(nil, testSnapshot())

	assert.Equal(t, []string{"ryu", "ken", "kfm"}, result.CharacterIDs)
	assert.Equal(t, []string{"training", "kfm_stage"}, result.StageIDs)
}

func TestEvaluate_EmptySnapshot(t *testing.T) {
	result := Evaluate(Query{mustRule(t, FieldName, Contains, "")}, library.Snapshot{})

	assert.NotNil(t, result.CharacterIDs)
	assert.NotNil(t, result.StageIDs)
	assert.Empty(t, result.CharacterIDs)
	assert.Empty(t, result.StageIDs)
}

func TestEvaluate_StreetFighterHD(t *testing.T) {
	query := Query{
		mustRule(t, FieldTag, Contains, "Street Fighter"),
		mustRule(t, FieldIsHD, Equals, "true"),
	}

	result := Evaluate(query, testSnapshot())
	assert.Equal(t, []string{"ryu"}, result.CharacterIDs)
	assert.Empty(t, result.StageIDs, "isHD does not apply to stages")
}

func TestEvaluate_Idempotent(t *testing.T) {
	query := Query{
		mustRule(t, FieldInstalledAt, WithinDays, "7"),
		mustRule(t, FieldName, NotEquals, "Ken"),
	}
	snapshot := testSnapshot()

	first := Evaluate(query, snapshot)
	second := Evaluate(query, snapshot)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"ryu"}, first.CharacterIDs)
	assert.Equal(t, []string{"training"}, first.StageIDs)
}

func TestEvaluate_ConjunctionIsMonotonic(t *testing.T) {
	snapshot := testSnapshot()
	candidates := []FilterRule{
		mustRule(t, FieldTag, IsNotEmpty, ""),
		mustRule(t, FieldName, Contains, "r"),
		mustRule(t, FieldInstalledAt, WithinDays, "10"),
		mustRule(t, FieldSourceGame, Contains, "street"),
		mustRule(t, FieldHasAI, Equals, "true"),
	}

	var query Query
	previous := Evaluate(query, snapshot)
	for _, rule := range candidates {
		query = append(query, rule)
		next := Evaluate(query, snapshot)

		assert.LessOrEqual(t, len(next.CharacterIDs), len(previous.CharacterIDs))
		assert.LessOrEqual(t, len(next.StageIDs), len(previous.StageIDs))
		assert.Subset(t, previous.CharacterIDs, next.CharacterIDs)
		assert.Subset(t, previous.StageIDs, next.StageIDs)
		previous = next
	}
}

func TestEvaluate_ContradictionYieldsEmpty(t *testing.T) {
	query := Query{
		mustRule(t, FieldIsHD, Equals, "true"),
		mustRule(t, FieldIsHD, Equals, "false"),
	}

	result := Evaluate(query, testSnapshot())
	assert.Empty(t, result.CharacterIDs)
	assert.Empty(t, result.StageIDs)
}

func TestEvaluate_TagSuperset(t *testing.T) {
	snapshot := library.Snapshot{
		TakenAt:    reference,
		Characters: []library.Character{{ID: "ab", Tags: []string{"A", "B"}}},
	}

	assert.Empty(t, Evaluate(Query{mustRule(t, FieldTag, Contains, "A,C")}, snapshot).CharacterIDs)
	assert.Equal(t, []string{"ab"}, Evaluate(Query{mustRule(t, FieldTag, Contains, "A")}, snapshot).CharacterIDs)
}

func TestEvaluate_DateBoundaryIsInclusive(t *testing.T) {
	snapshot := library.Snapshot{
		TakenAt:    reference,
		Characters: []library.Character{{ID: "edge", InstalledAt: reference.Add(-7 * 24 * time.Hour)}},
		Stages:     []library.Stage{{ID: "edge", InstalledAt: reference.Add(-7*24*time.Hour - time.Second)}},
	}

	result := Evaluate(Query{mustRule(t, FieldInstalledAt, WithinDays, "7")}, snapshot)
	assert.Equal(t, []string{"edge"}, result.CharacterIDs)
	assert.Empty(t, result.StageIDs)
}

func TestEvaluate_WithinDaysLargeCounts(t *testing.T) {
	snapshot := library.Snapshot{
		TakenAt:    reference,
		Characters: []library.Character{{ID: "yesterday", InstalledAt: reference.Add(-24 * time.Hour)}},
	}

	for _, days := range []string{"100000", "106752", "200000", "999999999"} {
		result := Evaluate(Query{mustRule(t, FieldInstalledAt, WithinDays, days)}, snapshot)
		assert.Equal(t, []string{"yesterday"}, result.CharacterIDs, "withinDays %s", days)
	}
}

func TestEvaluate_FailClosedParsing(t *testing.T) {
	query := Query{mustRule(t, FieldTotalWidth, GreaterThan, "notanumber")}

	var result Result
	require.NotPanics(t, func() { result = Evaluate(query, testSnapshot()) })
	assert.Empty(t, result.CharacterIDs)
	assert.Empty(t, result.StageIDs)
}

func TestEvaluate_CrossKindIsolation(t *testing.T) {
	snapshot := testSnapshot()

	for _, value := range []string{"true", "false"} {
		hd := Evaluate(Query{mustRule(t, FieldIsHD, Equals, value)}, snapshot)
		assert.Empty(t, hd.StageIDs, "isHD %s", value)

		music := Evaluate(Query{mustRule(t, FieldHasMusic, Equals, value)}, snapshot)
		assert.Empty(t, music.CharacterIDs, "hasMusic %s", value)
	}

	assert.Empty(t, Evaluate(Query{mustRule(t, FieldIsHD, NotEquals, "true")}, snapshot).StageIDs)
	assert.Empty(t, Evaluate(Query{mustRule(t, FieldAuthor, NotContains, "x")}, snapshot).StageIDs)
}

func TestEvaluate_StageFields(t *testing.T) {
	snapshot := testSnapshot()

	wide := Evaluate(Query{mustRule(t, FieldTotalWidth, GreaterThan, "1000")}, snapshot)
	assert.Equal(t, []string{"training"}, wide.StageIDs)
	assert.Empty(t, wide.CharacterIDs)

	lowres := Evaluate(Query{mustRule(t, FieldResolution, Equals, "320X240")}, snapshot)
	assert.Equal(t, []string{"kfm_stage"}, lowres.StageIDs)
}

func TestEvaluate_MissingInstallDateNeverMatchesDateRules(t *testing.T) {
	result := Evaluate(Query{mustRule(t, FieldInstalledAt, LessThan, "2100-01-01")}, testSnapshot())
	assert.Equal(t, []string{"ryu", "ken"}, result.CharacterIDs)
}

func TestEvaluate_DuplicateIDsAreReportedOnce(t *testing.T) {
	snapshot := library.Snapshot{
		TakenAt:    reference,
		Characters: []library.Character{{ID: "ryu", Name: "Ryu"}, {ID: "ryu", Name: "Ryu"}},
	}

	assert.Equal(t, []string{"ryu"}, Evaluate(nil, snapshot).CharacterIDs)
}

func TestEvaluate_DoesNotMutateSnapshot(t *testing.T) {
	snapshot := testSnapshot()
	before := testSnapshot()

	Evaluate(Query{mustRule(t, FieldTag, Contains, "hd")}, snapshot)
	assert.Equal(t, before, snapshot)
}

func TestMatchCharacterAndStage(t *testing.T) {
	snapshot := testSnapshot()
	query := Query{mustRule(t, FieldName, Contains, "room")}

	assert.False(t, MatchCharacter(query, &snapshot.Characters[0], reference))
	assert.True(t, MatchStage(query, &snapshot.Stages[0], reference))
}
