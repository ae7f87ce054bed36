package models

import (
	"time"
)

// LibraryState holds the single library version row, which increases on
// every character or stage mutation
type LibraryState struct {
	ID        uint  `gorm:"primaryKey"`
	Version   int64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// RefreshState tracks the outcome of the last evaluation of a collection
type RefreshState struct {
	ID           uint `gorm:"primaryKey"`
	CollectionID uint `gorm:"not null;uniqueIndex"`

	// State tracking
	LibraryVersion int64  `gorm:"default:0"`
	QueryHash      string `gorm:"type:text"`
	CharacterCount int    `gorm:"default:0"`
	StageCount     int    `gorm:"default:0"`
	RefreshedAt    time.Time
	LastError      string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
