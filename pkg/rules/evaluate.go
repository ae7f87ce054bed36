package rules

import (
	"time"

	"github.com/mwantia/mugenvault/pkg/library"
)

// Result holds the ids of every item matching a query, in snapshot order.
type Result struct {
	CharacterIDs []string `json:"characterIds"`
	StageIDs     []string `json:"stageIds"`
}

// Evaluate returns the characters and stages of snapshot that satisfy every
// rule in query. An empty query matches everything.
//
// The result only depends on query and snapshot: relative date rules are
// measured from snapshot.TakenAt, and only fall back to the wall clock when
// the snapshot carries no timestamp.
func Evaluate(query Query, snapshot library.Snapshot) Result {
	now := snapshot.TakenAt
	if now.IsZero() {
		now = time.Now()
	}

	result := Result{
		CharacterIDs: make([]string, 0, len(snapshot.Characters)),
		StageIDs:     make([]string, 0, len(snapshot.Stages)),
	}

	seen := make(map[string]struct{}, len(snapshot.Characters))
	for i := range snapshot.Characters {
		character := &snapshot.Characters[i]
		if _, ok := seen[character.ID]; ok {
			continue
		}
		if MatchCharacter(query, character, now) {
			seen[character.ID] = struct{}{}
			result.CharacterIDs = append(result.CharacterIDs, character.ID)
		}
	}

	seen = make(map[string]struct{}, len(snapshot.Stages))
	for i := range snapshot.Stages {
		stage := &snapshot.Stages[i]
		if _, ok := seen[stage.ID]; ok {
			continue
		}
		if MatchStage(query, stage, now) {
			seen[stage.ID] = struct{}{}
			result.StageIDs = append(result.StageIDs, stage.ID)
		}
	}

	return result
}

// MatchCharacter reports whether a single character satisfies query.
func MatchCharacter(query Query, c *library.Character, now time.Time) bool {
	return matchAll(query, now, func(f FilterField) Value { return ExtractCharacter(f, c) })
}

// MatchStage reports whether a single stage satisfies query.
func MatchStage(query Query, s *library.Stage, now time.Time) bool {
	return matchAll(query, now, func(f FilterField) Value { return ExtractStage(f, s) })
}

func matchAll(query Query, now time.Time, extract func(FilterField) Value) bool {
	for _, rule := range query {
		value := extract(rule.field)
		if !value.Applicable() {
			return false
		}
		if !Compare(value, rule.comparison, rule.value, now) {
			return false
		}
	}
	return true
}
