package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mwantia/mugenvault/pkg/collection"
	"github.com/mwantia/mugenvault/pkg/db/models"
	"github.com/mwantia/mugenvault/pkg/db/store"
	"github.com/mwantia/mugenvault/pkg/log"

	config "github.com/mwantia/mugenvault/internal/config/server"
)

// session bundles the services a single command invocation needs.
type session struct {
	store       *store.SQLiteStore
	collections *collection.Service
	log         log.LoggerService
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load server configuration: %w", err)
	}

	logger := log.NewLoggerService("mugenvault", cfg.Log).Named("cli")

	s, err := openStore(ctx, cfg.Metadata.SQLite.Path)
	if err != nil {
		log.Close(logger)
		return nil, err
	}

	logger.Debug("Opened metadata store '%s'", cfg.Metadata.SQLite.Path)

	return &session{
		store: s,
		collections: collection.NewService(s, s,
			collection.WithLogger(logger.Named("collections")),
			collection.WithCache(collection.NewCache(cfg.Cache)),
			collection.WithWorkers(cfg.Refresh.Workers)),
		log: logger,
	}, nil
}

func openStore(ctx context.Context, path string) (*store.SQLiteStore, error) {
	s, err := store.NewSQLiteStore(store.SQLiteConfig{Path: path})
	if err != nil {
		return nil, err
	}

	if err := s.Connect(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to connect to metadata store: %w", err)
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to migrate metadata store: %w", err)
	}
	return s, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Warn("Failed to close metadata store: %v", err)
	}
	log.Close(s.log)
}

// resolveCollection accepts either a numeric id or a collection name.
func (s *session) resolveCollection(ctx context.Context, ref string) (*models.Collection, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		c, err := s.store.GetCollection(ctx, uint(id))
		if err == nil || !errors.Is(err, store.ErrNotFound) {
			return c, err
		}
	}

	c, err := s.store.GetCollectionByName(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("collection '%s' does not exist", ref)
	}
	return c, err
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
