package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/mugenvault/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrations.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestMigrator_MigrateAndStatus(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	migrator := NewMigrator(db)

	statuses, err := migrator.Status(ctx)
	require.NoError(t, err)
	for _, status := range statuses {
		assert.False(t, status.Applied, "version %d", status.Version)
	}

	require.NoError(t, migrator.Migrate(ctx))
	require.NoError(t, migrator.Migrate(ctx), "migrate must be repeatable")

	statuses, err = migrator.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, len(allMigrations()))
	for _, status := range statuses {
		assert.True(t, status.Applied, "version %d", status.Version)
	}

	assert.True(t, db.Migrator().HasTable(&models.Character{}))
	assert.True(t, db.Migrator().HasTable(&models.CollectionRule{}))
	assert.True(t, db.Migrator().HasTable(&models.RefreshState{}))
}

func TestMigrator_Rollback(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	migrator := NewMigrator(db)

	require.NoError(t, migrator.Migrate(ctx))
	require.NoError(t, migrator.Rollback(ctx))

	assert.False(t, db.Migrator().HasTable(&models.RefreshState{}))
	assert.True(t, db.Migrator().HasTable(&models.Collection{}))

	statuses, err := migrator.Status(ctx)
	require.NoError(t, err)
	last := statuses[len(statuses)-1]
	assert.Equal(t, 3, last.Version)
	assert.False(t, last.Applied)

	require.NoError(t, migrator.Migrate(ctx))
	assert.True(t, db.Migrator().HasTable(&models.RefreshState{}))
}

func TestMigrator_RollbackWithoutHistory(t *testing.T) {
	ctx := context.Background()
	migrator := NewMigrator(openTestDB(t))

	_, err := migrator.Status(ctx)
	require.NoError(t, err)
	assert.Error(t, migrator.Rollback(ctx))
}
