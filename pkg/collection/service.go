// Package collection evaluates persisted smart collections against the
// current library snapshot.
package collection

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mwantia/mugenvault/pkg/db/models"
	"github.com/mwantia/mugenvault/pkg/library"
	"github.com/mwantia/mugenvault/pkg/log"
	"github.com/mwantia/mugenvault/pkg/metrics"
	"github.com/mwantia/mugenvault/pkg/rules"
	"golang.org/x/sync/errgroup"
)

const (
	sourceCollection = "collection"
	sourcePreview    = "preview"
)

// Repository is the subset of the metadata store the service depends on.
type Repository interface {
	GetCollection(ctx context.Context, id uint) (*models.Collection, error)
	ListCollections(ctx context.Context) ([]models.Collection, error)
	ReplaceRules(ctx context.Context, collectionID uint, rules []models.CollectionRule) error
	SaveRefreshState(ctx context.Context, state *models.RefreshState) error
}

// Evaluation is the outcome of evaluating one smart collection.
type Evaluation struct {
	CollectionID   uint
	Name           string
	LibraryVersion int64
	QueryHash      uint64
	Cached         bool
	Result         rules.Result
	Err            error
}

type Service struct {
	repo     Repository
	provider library.Provider
	cache    Cache
	metrics  metrics.Recorder
	log      log.LoggerService
	workers  int
}

type Option func(*Service)

func WithCache(cache Cache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithMetrics(recorder metrics.Recorder) Option {
	return func(s *Service) { s.metrics = recorder }
}

func WithLogger(logger log.LoggerService) Option {
	return func(s *Service) { s.log = logger }
}

// WithWorkers limits how many collections RefreshAll evaluates concurrently.
func WithWorkers(workers int) Option {
	return func(s *Service) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

func NewService(repo Repository, provider library.Provider, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		provider: provider,
		cache:    noopCache{},
		metrics:  metrics.Noop{},
		log:      log.NewDiscardLoggerService(),
		workers:  1,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildRule parses textual field and comparison names and validates the
// resulting rule.
func (s *Service) BuildRule(field, comparison, value string) (rules.FilterRule, error) {
	f, err := rules.ParseField(field)
	if err != nil {
		s.metrics.IncRejectedRules()
		return rules.FilterRule{}, err
	}

	c, err := rules.ParseComparison(comparison)
	if err != nil {
		s.metrics.IncRejectedRules()
		return rules.FilterRule{}, err
	}

	rule, err := rules.BuildRule(f, c, value)
	if err != nil {
		s.metrics.IncRejectedRules()
		s.log.Debug("Rejected rule '%s %s %q': %v", field, comparison, value, err)
		return rules.FilterRule{}, err
	}
	return rule, nil
}

// SaveRules validates query and replaces the complete rule list of the collection.
func (s *Service) SaveRules(ctx context.Context, collectionID uint, query rules.Query) error {
	if err := query.Validate(); err != nil {
		s.metrics.IncRejectedRules()
		return err
	}

	if err := s.repo.ReplaceRules(ctx, collectionID, models.NewCollectionRules(collectionID, query)); err != nil {
		return fmt.Errorf("failed to save rules of collection %d: %w", collectionID, err)
	}
	return nil
}

// Evaluate computes the members of a persisted smart collection.
func (s *Service) Evaluate(ctx context.Context, collectionID uint) (Evaluation, error) {
	collection, err := s.repo.GetCollection(ctx, collectionID)
	if err != nil {
		return Evaluation{}, fmt.Errorf("failed to load collection %d: %w", collectionID, err)
	}

	snapshot, err := s.provider.Snapshot(ctx)
	if err != nil {
		return Evaluation{}, err
	}

	evaluation := s.evaluateCollection(collection, snapshot)
	return evaluation, evaluation.Err
}

// Preview evaluates an unsaved query against the current library.
func (s *Service) Preview(ctx context.Context, query rules.Query) (rules.Result, error) {
	if err := query.Validate(); err != nil {
		s.metrics.IncRejectedRules()
		return rules.Result{}, err
	}

	snapshot, err := s.provider.Snapshot(ctx)
	if err != nil {
		return rules.Result{}, err
	}

	result, _ := s.evaluate(query, snapshot, sourcePreview)
	return result, nil
}

// RefreshAll evaluates every smart collection against one shared snapshot
// and records the outcome of each. A failing collection does not stop the
// others; its error is reported in the returned evaluation.
func (s *Service) RefreshAll(ctx context.Context) ([]Evaluation, error) {
	collections, err := s.repo.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	snapshot, err := s.provider.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	evaluations := make([]Evaluation, len(collections))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range collections {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			evaluation := s.evaluateCollection(&collections[i], snapshot)
			evaluations[i] = evaluation

			if err := s.repo.SaveRefreshState(gctx, refreshState(evaluation, snapshot.TakenAt)); err != nil {
				return fmt.Errorf("failed to save refresh state of collection %d: %w", evaluation.CollectionID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Debug("Refreshed %d collections at library version %d", len(evaluations), snapshot.Version)
	return evaluations, nil
}

func (s *Service) evaluateCollection(collection *models.Collection, snapshot library.Snapshot) Evaluation {
	evaluation := Evaluation{
		CollectionID:   collection.ID,
		Name:           collection.Name,
		LibraryVersion: snapshot.Version,
	}

	query, err := collection.Query()
	if err != nil {
		s.metrics.IncRejectedRules()
		s.log.Warn("Collection '%s' (%d) holds an invalid rule: %v", collection.Name, collection.ID, err)
		evaluation.Err = fmt.Errorf("collection %d: %w", collection.ID, err)
		return evaluation
	}

	evaluation.QueryHash = query.Hash()
	evaluation.Result, evaluation.Cached = s.evaluate(query, snapshot, sourceCollection)

	s.metrics.SetCollectionSize(collection.Name, len(evaluation.Result.CharacterIDs), len(evaluation.Result.StageIDs))
	s.log.Debug("Collection '%s' matched %d characters and %d stages (cached: %t)",
		collection.Name, len(evaluation.Result.CharacterIDs), len(evaluation.Result.StageIDs), evaluation.Cached)

	return evaluation
}

// evaluate consults the cache before running the rules. Queries relative to
// the evaluation instant are never cached, as their result may change
// without the library version changing.
func (s *Service) evaluate(query rules.Query, snapshot library.Snapshot, source string) (rules.Result, bool) {
	cacheable := !query.Relative()
	hash := query.Hash()

	if cacheable {
		if result, ok := s.cache.Get(hash, snapshot.Version); ok {
			s.metrics.IncCacheHits()
			return result, true
		}
		s.metrics.IncCacheMisses()
	}

	start := time.Now()
	result := rules.Evaluate(query, snapshot)
	s.metrics.ObserveEvaluation(source, time.Since(start))

	if cacheable {
		s.cache.Set(hash, snapshot.Version, result)
	}
	return result, false
}

func refreshState(evaluation Evaluation, refreshedAt time.Time) *models.RefreshState {
	state := &models.RefreshState{
		CollectionID:   evaluation.CollectionID,
		LibraryVersion: evaluation.LibraryVersion,
		QueryHash:      strconv.FormatUint(evaluation.QueryHash, 16),
		CharacterCount: len(evaluation.Result.CharacterIDs),
		StageCount:     len(evaluation.Result.StageIDs),
		RefreshedAt:    refreshedAt,
	}
	if refreshedAt.IsZero() {
		state.RefreshedAt = time.Now().UTC()
	}
	if evaluation.Err != nil {
		state.LastError = evaluation.Err.Error()
	}
	return state
}
