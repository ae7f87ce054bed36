package models

import (
	"time"

	"github.com/mwantia/mugenvault/pkg/library"
)

// Stage represents the metadata of an installed stage
type Stage struct {
	ID         string  `gorm:"primaryKey;type:text"`
	Name       string  `gorm:"type:text;not null;index"`
	Author     string  `gorm:"type:text"`
	SourceGame string  `gorm:"type:text"`
	Style      string  `gorm:"type:text"`
	HasMusic   bool    `gorm:"default:false"`
	Resolution string  `gorm:"type:text"`
	TotalWidth float64 `gorm:"default:0"`

	InstalledAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Relationships
	Tags []StageTag `gorm:"foreignKey:StageID;constraint:OnDelete:CASCADE"`
}

func NewStage(record library.Stage) Stage {
	s := Stage{
		ID:          record.ID,
		Name:        record.Name,
		Author:      record.Author,
		SourceGame:  record.SourceGame,
		Style:       record.Style,
		HasMusic:    record.HasMusic,
		Resolution:  record.Resolution,
		TotalWidth:  record.TotalWidth,
		InstalledAt: record.InstalledAt.UTC(),
	}
	for _, tag := range record.Tags {
		s.Tags = append(s.Tags, StageTag{StageID: record.ID, Value: tag})
	}
	return s
}

func (s *Stage) Record() library.Stage {
	record := library.Stage{
		ID:          s.ID,
		Name:        s.Name,
		Author:      s.Author,
		InstalledAt: s.InstalledAt,
		HasMusic:    s.HasMusic,
		Resolution:  s.Resolution,
		TotalWidth:  s.TotalWidth,
		SourceGame:  s.SourceGame,
		Style:       s.Style,
		Tags:        make([]string, 0, len(s.Tags)),
	}
	for _, tag := range s.Tags {
		record.Tags = append(record.Tags, tag.Value)
	}
	return record
}
