package models

import (
	"time"

	"github.com/mwantia/mugenvault/pkg/rules"
)

// Collection represents a smart collection whose members are computed from its rules
type Collection struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"type:text;not null;index"`
	Description string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Rules []CollectionRule `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE"`
}

// CollectionRule persists a single filter rule, Position keeps the display order
type CollectionRule struct {
	ID           string `gorm:"primaryKey;type:text"`
	CollectionID uint   `gorm:"not null;index:idx_collection_rules"`
	Position     int    `gorm:"not null"`
	Field        string `gorm:"type:text;not null"`
	Comparison   string `gorm:"type:text;not null"`
	Value        string `gorm:"type:text"`
}

// NewCollectionRules converts a query into rows ordered by their query position
func NewCollectionRules(collectionID uint, query rules.Query) []CollectionRule {
	rows := make([]CollectionRule, 0, len(query))
	for i, rule := range query {
		rows = append(rows, CollectionRule{
			ID:           rule.ID(),
			CollectionID: collectionID,
			Position:     i,
			Field:        string(rule.Field()),
			Comparison:   string(rule.Comparison()),
			Value:        rule.Value(),
		})
	}
	return rows
}

// Query restores the validated rules of the collection in display order.
// Rows are expected to be loaded ordered by position.
func (c *Collection) Query() (rules.Query, error) {
	query := make(rules.Query, 0, len(c.Rules))
	for _, row := range c.Rules {
		rule, err := rules.RestoreRule(row.ID, rules.FilterField(row.Field), rules.ComparisonOperator(row.Comparison), row.Value)
		if err != nil {
			return nil, err
		}
		query = append(query, rule)
	}
	return query, nil
}
