package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/mugenvault/pkg/db/migrations"
	"github.com/mwantia/mugenvault/pkg/db/models"
	"github.com/mwantia/mugenvault/pkg/library"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const libraryStateID = 1

// SQLiteStore implements MetadataStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
	now  func() time.Time
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path     string
	LogLevel logger.LogLevel
}

// NewSQLiteStore creates a new SQLite-backed metadata store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	s := &SQLiteStore{
		path: cfg.Path,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:  logger.Default.LogMode(cfg.LogLevel),
		NowFunc: s.now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	s.db = db
	return s, nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Exec("PRAGMA foreign_keys = ON").Error
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs all pending schema migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Migrate(ctx)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Character operations

// SaveCharacter inserts or replaces a character together with its tags
func (s *SQLiteStore) SaveCharacter(ctx context.Context, character *models.Character) error {
	if character.ID == "" {
		return fmt.Errorf("character id is required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(character).Error; err != nil {
			return fmt.Errorf("failed to save character %q: %w", character.ID, err)
		}

		if err := tx.Where("character_id = ?", character.ID).Delete(&models.CharacterTag{}).Error; err != nil {
			return fmt.Errorf("failed to clear tags of character %q: %w", character.ID, err)
		}

		for i := range character.Tags {
			character.Tags[i].ID = 0
			character.Tags[i].CharacterID = character.ID
		}
		if len(character.Tags) > 0 {
			if err := tx.Create(&character.Tags).Error; err != nil {
				return fmt.Errorf("failed to save tags of character %q: %w", character.ID, err)
			}
		}

		return s.bumpVersion(tx)
	})
}

func (s *SQLiteStore) GetCharacter(ctx context.Context, id string) (*models.Character, error) {
	var character models.Character
	err := s.db.WithContext(ctx).
		Preload("Tags", orderByID).
		Where("id = ?", id).
		First(&character).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &character, nil
}

func (s *SQLiteStore) ListCharacters(ctx context.Context) ([]models.Character, error) {
	return listCharacters(s.db.WithContext(ctx))
}

func (s *SQLiteStore) DeleteCharacter(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("character_id = ?", id).Delete(&models.CharacterTag{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Character{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		return s.bumpVersion(tx)
	})
}

// Stage operations

// SaveStage inserts or replaces a stage together with its tags
func (s *SQLiteStore) SaveStage(ctx context.Context, stage *models.Stage) error {
	if stage.ID == "" {
		return fmt.Errorf("stage id is required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(stage).Error; err != nil {
			return fmt.Errorf("failed to save stage %q: %w", stage.ID, err)
		}

		if err := tx.Where("stage_id = ?", stage.ID).Delete(&models.StageTag{}).Error; err != nil {
			return fmt.Errorf("failed to clear tags of stage %q: %w", stage.ID, err)
		}

		for i := range stage.Tags {
			stage.Tags[i].ID = 0
			stage.Tags[i].StageID = stage.ID
		}
		if len(stage.Tags) > 0 {
			if err := tx.Create(&stage.Tags).Error; err != nil {
				return fmt.Errorf("failed to save tags of stage %q: %w", stage.ID, err)
			}
		}

		return s.bumpVersion(tx)
	})
}

func (s *SQLiteStore) GetStage(ctx context.Context, id string) (*models.Stage, error) {
	var stage models.Stage
	err := s.db.WithContext(ctx).
		Preload("Tags", orderByID).
		Where("id = ?", id).
		First(&stage).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &stage, nil
}

func (s *SQLiteStore) ListStages(ctx context.Context) ([]models.Stage, error) {
	return listStages(s.db.WithContext(ctx))
}

func (s *SQLiteStore) DeleteStage(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stage_id = ?", id).Delete(&models.StageTag{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Stage{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		return s.bumpVersion(tx)
	})
}

// Library state

func (s *SQLiteStore) LibraryVersion(ctx context.Context) (int64, error) {
	return libraryVersion(s.db.WithContext(ctx))
}

// Snapshot materializes the whole library inside a single read transaction,
// so the version always describes exactly the returned records.
func (s *SQLiteStore) Snapshot(ctx context.Context) (library.Snapshot, error) {
	snapshot := library.Snapshot{TakenAt: s.now()}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		version, err := libraryVersion(tx)
		if err != nil {
			return err
		}

		characters, err := listCharacters(tx)
		if err != nil {
			return err
		}

		stages, err := listStages(tx)
		if err != nil {
			return err
		}

		snapshot.Version = version
		snapshot.Characters = make([]library.Character, 0, len(characters))
		for i := range characters {
			snapshot.Characters = append(snapshot.Characters, characters[i].Record())
		}
		snapshot.Stages = make([]library.Stage, 0, len(stages))
		for i := range stages {
			snapshot.Stages = append(snapshot.Stages, stages[i].Record())
		}
		return nil
	})
	if err != nil {
		return library.Snapshot{}, fmt.Errorf("failed to load library snapshot: %w", err)
	}

	return snapshot, nil
}

// Collection operations

func (s *SQLiteStore) CreateCollection(ctx context.Context, collection *models.Collection) error {
	if collection.Name == "" {
		return fmt.Errorf("collection name is required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(collection).Error; err != nil {
			return err
		}
		return replaceRules(tx, collection.ID, collection.Rules)
	})
}

func (s *SQLiteStore) GetCollection(ctx context.Context, id uint) (*models.Collection, error) {
	var collection models.Collection
	err := s.db.WithContext(ctx).
		Preload("Rules", orderByPosition).
		First(&collection, id).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &collection, nil
}

func (s *SQLiteStore) GetCollectionByName(ctx context.Context, name string) (*models.Collection, error) {
	var collection models.Collection
	err := s.db.WithContext(ctx).
		Preload("Rules", orderByPosition).
		Where("name = ?", name).
		Order("id ASC").
		First(&collection).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &collection, nil
}

func (s *SQLiteStore) ListCollections(ctx context.Context) ([]models.Collection, error) {
	var collections []models.Collection
	err := s.db.WithContext(ctx).
		Preload("Rules", orderByPosition).
		Order("id ASC").
		Find(&collections).Error
	return collections, err
}

// UpdateCollection only persists the name and description, rules are
// replaced through ReplaceRules
func (s *SQLiteStore) UpdateCollection(ctx context.Context, collection *models.Collection) error {
	result := s.db.WithContext(ctx).
		Model(&models.Collection{ID: collection.ID}).
		Select("name", "description", "updated_at").
		Updates(map[string]any{
			"name":        collection.Name,
			"description": collection.Description,
			"updated_at":  s.now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteCollection(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).Delete(&models.CollectionRule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("collection_id = ?", id).Delete(&models.RefreshState{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Collection{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ReplaceRules swaps the complete rule list of a collection
func (s *SQLiteStore) ReplaceRules(ctx context.Context, collectionID uint, rules []models.CollectionRule) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Collection{}).Where("id = ?", collectionID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}

		if err := replaceRules(tx, collectionID, rules); err != nil {
			return err
		}

		return tx.Model(&models.Collection{ID: collectionID}).UpdateColumn("updated_at", s.now()).Error
	})
}

// Refresh state operations

func (s *SQLiteStore) SaveRefreshState(ctx context.Context, state *models.RefreshState) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "collection_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"library_version",
				"query_hash",
				"character_count",
				"stage_count",
				"refreshed_at",
				"last_error",
				"updated_at",
			}),
		}).
		Create(state).Error
}

func (s *SQLiteStore) GetRefreshState(ctx context.Context, collectionID uint) (*models.RefreshState, error) {
	var state models.RefreshState
	err := s.db.WithContext(ctx).Where("collection_id = ?", collectionID).First(&state).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &state, nil
}

func (s *SQLiteStore) bumpVersion(tx *gorm.DB) error {
	var state models.LibraryState
	if err := tx.Where("id = ?", libraryStateID).
		Attrs(models.LibraryState{ID: libraryStateID}).
		FirstOrCreate(&state).Error; err != nil {
		return fmt.Errorf("failed to load library state: %w", err)
	}

	return tx.Model(&state).UpdateColumns(map[string]any{
		"version":    gorm.Expr("version + ?", 1),
		"updated_at": s.now(),
	}).Error
}

func libraryVersion(tx *gorm.DB) (int64, error) {
	var state models.LibraryState
	err := tx.Where("id = ?", libraryStateID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return state.Version, nil
}

func listCharacters(tx *gorm.DB) ([]models.Character, error) {
	var characters []models.Character
	err := tx.Preload("Tags", orderByID).Order("id ASC").Find(&characters).Error
	return characters, err
}

func listStages(tx *gorm.DB) ([]models.Stage, error) {
	var stages []models.Stage
	err := tx.Preload("Tags", orderByID).Order("id ASC").Find(&stages).Error
	return stages, err
}

func replaceRules(tx *gorm.DB, collectionID uint, rules []models.CollectionRule) error {
	if err := tx.Where("collection_id = ?", collectionID).Delete(&models.CollectionRule{}).Error; err != nil {
		return fmt.Errorf("failed to clear rules of collection %d: %w", collectionID, err)
	}

	for i := range rules {
		rules[i].CollectionID = collectionID
		rules[i].Position = i
	}
	if len(rules) == 0 {
		return nil
	}

	if err := tx.Create(&rules).Error; err != nil {
		return fmt.Errorf("failed to save rules of collection %d: %w", collectionID, err)
	}
	return nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
