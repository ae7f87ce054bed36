// Package library describes the read-only metadata records of installed
// characters and stages, and the snapshot through which they are handed
// to collection evaluation.
package library

import (
	"context"
	"time"
)

// Kind identifies the type of content an item record represents.
type Kind uint8

const (
	KindCharacter Kind = 1 << iota
	KindStage
)

func (k Kind) String() string {
	switch k {
	case KindCharacter:
		return "character"
	case KindStage:
		return "stage"
	case KindCharacter | KindStage:
		return "character+stage"
	default:
		return "none"
	}
}

// Has reports whether every kind in other is part of k.
func (k Kind) Has(other Kind) bool {
	return other != 0 && k&other == other
}

// Character is the metadata of a single installed character.
type Character struct {
	ID          string    `json:"id"          yaml:"id"`
	Name        string    `json:"name"        yaml:"name"`
	Author      string    `json:"author"      yaml:"author"`
	Tags        []string  `json:"tags"        yaml:"tags"`
	InstalledAt time.Time `json:"installedAt" yaml:"installed_at"`
	IsHD        bool      `json:"isHD"        yaml:"is_hd"`
	HasAI       bool      `json:"hasAI"       yaml:"has_ai"`
	SourceGame  string    `json:"sourceGame"  yaml:"source_game"`
	Style       string    `json:"style"       yaml:"style"`
}

// Stage is the metadata of a single installed stage.
type Stage struct {
	ID          string    `json:"id"          yaml:"id"`
	Name        string    `json:"name"        yaml:"name"`
	Author      string    `json:"author"      yaml:"author"`
	Tags        []string  `json:"tags"        yaml:"tags"`
	InstalledAt time.Time `json:"installedAt" yaml:"installed_at"`
	HasMusic    bool      `json:"hasMusic"    yaml:"has_music"`
	Resolution  string    `json:"resolution"  yaml:"resolution"`
	TotalWidth  float64   `json:"totalWidth"  yaml:"total_width"`
	SourceGame  string    `json:"sourceGame"  yaml:"source_game"`
	Style       string    `json:"style"       yaml:"style"`
}

// Snapshot is the full library content at one point in time.
//
// Version increases whenever the underlying metadata changes, which allows
// consumers to key derived data by (query, version). TakenAt is the instant
// the snapshot was materialized and serves as "now" for relative date rules.
type Snapshot struct {
	Version    int64       `json:"version"`
	TakenAt    time.Time   `json:"takenAt"`
	Characters []Character `json:"characters"`
	Stages     []Stage     `json:"stages"`
}

// Provider hands out library snapshots.
type Provider interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// StaticProvider always returns the same snapshot.
type StaticProvider struct {
	snapshot Snapshot
}

func NewStaticProvider(snapshot Snapshot) *StaticProvider {
	return &StaticProvider{snapshot: snapshot}
}

func (p *StaticProvider) Snapshot(_ context.Context) (Snapshot, error) {
	return p.snapshot, nil
}
