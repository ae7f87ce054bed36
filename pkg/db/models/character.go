package models

import (
	"time"

	"github.com/mwantia/mugenvault/pkg/library"
)

// Character represents the metadata of an installed character
type Character struct {
	ID         string `gorm:"primaryKey;type:text"`
	Name       string `gorm:"type:text;not null;index"`
	Author     string `gorm:"type:text"`
	SourceGame string `gorm:"type:text"`
	Style      string `gorm:"type:text"`

	// Capabilities
	IsHD  bool `gorm:"default:false"`
	HasAI bool `gorm:"default:false"`

	// Timestamps
	InstalledAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Relationships
	Tags []CharacterTag `gorm:"foreignKey:CharacterID;constraint:OnDelete:CASCADE"`
}

func NewCharacter(record library.Character) Character {
	c := Character{
		ID:          record.ID,
		Name:        record.Name,
		Author:      record.Author,
		SourceGame:  record.SourceGame,
		Style:       record.Style,
		IsHD:        record.IsHD,
		HasAI:       record.HasAI,
		InstalledAt: record.InstalledAt.UTC(),
	}
	for _, tag := range record.Tags {
		c.Tags = append(c.Tags, CharacterTag{CharacterID: record.ID, Value: tag})
	}
	return c
}

// Record converts the row into the read-only library representation
func (c *Character) Record() library.Character {
	record := library.Character{
		ID:          c.ID,
		Name:        c.Name,
		Author:      c.Author,
		InstalledAt: c.InstalledAt,
		IsHD:        c.IsHD,
		HasAI:       c.HasAI,
		SourceGame:  c.SourceGame,
		Style:       c.Style,
		Tags:        make([]string, 0, len(c.Tags)),
	}
	for _, tag := range c.Tags {
		record.Tags = append(record.Tags, tag.Value)
	}
	return record
}
