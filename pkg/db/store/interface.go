package store

import (
	"context"
	"errors"

	"github.com/mwantia/mugenvault/pkg/db/models"
	"github.com/mwantia/mugenvault/pkg/library"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// MetadataStore defines the interface for database operations
type MetadataStore interface {
	library.Provider

	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Character operations
	SaveCharacter(ctx context.Context, character *models.Character) error
	GetCharacter(ctx context.Context, id string) (*models.Character, error)
	ListCharacters(ctx context.Context) ([]models.Character, error)
	DeleteCharacter(ctx context.Context, id string) error

	// Stage operations
	SaveStage(ctx context.Context, stage *models.Stage) error
	GetStage(ctx context.Context, id string) (*models.Stage, error)
	ListStages(ctx context.Context) ([]models.Stage, error)
	DeleteStage(ctx context.Context, id string) error

	// Library state
	LibraryVersion(ctx context.Context) (int64, error)

	// Collection operations
	CreateCollection(ctx context.Context, collection *models.Collection) error
	GetCollection(ctx context.Context, id uint) (*models.Collection, error)
	GetCollectionByName(ctx context.Context, name string) (*models.Collection, error)
	ListCollections(ctx context.Context) ([]models.Collection, error)
	UpdateCollection(ctx context.Context, collection *models.Collection) error
	DeleteCollection(ctx context.Context, id uint) error
	ReplaceRules(ctx context.Context, collectionID uint, rules []models.CollectionRule) error

	// Refresh state operations
	SaveRefreshState(ctx context.Context, state *models.RefreshState) error
	GetRefreshState(ctx context.Context, collectionID uint) (*models.RefreshState, error)
}
