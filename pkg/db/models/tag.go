package models

// CharacterTag is a single tag attached to a character
type CharacterTag struct {
	ID          uint   `gorm:"primaryKey"`
	CharacterID string `gorm:"type:text;not null;index:idx_character_tags"`
	Value       string `gorm:"type:text;not null;index:idx_character_tag_value"`
}

// StageTag is a single tag attached to a stage
type StageTag struct {
	ID      uint   `gorm:"primaryKey"`
	StageID string `gorm:"type:text;not null;index:idx_stage_tags"`
	Value   string `gorm:"type:text;not null;index:idx_stage_tag_value"`
}
