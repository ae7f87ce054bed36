package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"sync"
	"time"

	"github.com/mwantia/fabric/pkg/container"
	"github.com/mwantia/mugenvault/pkg/collection"
	"github.com/mwantia/mugenvault/pkg/db/store"
	"github.com/mwantia/mugenvault/pkg/log"
	"github.com/mwantia/mugenvault/pkg/metrics"

	config "github.com/mwantia/mugenvault/internal/config/server"
)

type MugenVaultAgent struct {
	mutex sync.Mutex
	wait  sync.WaitGroup

	cfg *config.BaseServerConfig
	sc  *container.ServiceContainer
	log log.LoggerService

	store       *store.SQLiteStore
	collections *collection.Service
	metrics     *metrics.Collectors
	server      *http.Server
}

func NewAgent(cfg *config.BaseServerConfig) *MugenVaultAgent {
	return &MugenVaultAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("mugenvault", cfg.Log),
	}
}

func (mva *MugenVaultAgent) setupServices(ctx context.Context) (err error) {
	mva.mutex.Lock()
	defer mva.mutex.Unlock()

	s, err := store.NewSQLiteStore(store.SQLiteConfig{Path: mva.cfg.Metadata.SQLite.Path})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	if err := s.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to metadata store: %w", err)
	}

	if err := s.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate metadata store: %w", err)
	}

	opts := []collection.Option{
		collection.WithLogger(mva.log.Named("collections")),
		collection.WithCache(collection.NewCache(mva.cfg.Cache)),
		collection.WithWorkers(mva.cfg.Refresh.Workers),
	}
	if mva.cfg.Metrics.Enabled {
		mva.metrics = metrics.NewCollectors()
		opts = append(opts, collection.WithMetrics(mva.metrics))
	}

	errs := container.Errors{}

	mva.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](mva.sc,
		container.With[log.LoggerService](),
		container.WithInstance(mva.log)))

	mva.log.Debug("Registering 'MetadataStore'...")
	errs.Add(container.Register[store.SQLiteStore](mva.sc,
		container.With[store.MetadataStore](),
		container.WithInstance(s)))

	if err := errs.Errors(); err != nil {
		return err
	}

	provider, err := resolve[store.MetadataStore](ctx, mva.sc)
	if err != nil {
		return err
	}

	collections := collection.NewService(provider, provider, opts...)

	mva.log.Debug("Registering 'CollectionService'...")
	if err := container.Register[collection.Service](mva.sc,
		container.WithInstance(collections)); err != nil {
		return err
	}

	mva.store = s
	mva.collections = collections
	return nil
}

// resolve looks up the service registered for the interface T.
func resolve[T any](ctx context.Context, sc *container.ServiceContainer) (T, error) {
	var zero T

	ok, resolved := sc.ResolveByType(ctx, reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return zero, fmt.Errorf("no service registered for '%s'", reflect.TypeOf((*T)(nil)).Elem())
	}

	service, ok := resolved.(T)
	if !ok {
		return zero, fmt.Errorf("resolved service is not a '%s'", reflect.TypeOf((*T)(nil)).Elem())
	}
	return service, nil
}

// RefreshOnce evaluates every smart collection a single time and exits.
func (mva *MugenVaultAgent) RefreshOnce(ctx context.Context) error {
	if err := mva.setupServices(ctx); err != nil {
		log.Close(mva.log)
		return err
	}
	defer mva.shutdown()

	return mva.refresh(ctx)
}

func (mva *MugenVaultAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	if err := mva.setupServices(ctx); err != nil {
		log.Close(mva.log)
		return err
	}

	interval, err := time.ParseDuration(mva.cfg.Refresh.Interval)
	if err != nil || interval <= 0 {
		interval = 5 * time.Minute
	}

	if mva.metrics != nil {
		mva.serveMetrics()
	}

	mva.wait.Add(1)
	go func() {
		defer mva.wait.Done()
		mva.refreshLoop(ctx, interval)
	}()

	mva.log.Info("Agent started, refreshing collections every %s", interval)
	<-ctx.Done()
	mva.log.Info("Shutting down agent...")

	return mva.shutdown()
}

func (mva *MugenVaultAgent) refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := mva.refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
			mva.log.Error("Failed to refresh collections: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (mva *MugenVaultAgent) refresh(ctx context.Context) error {
	start := time.Now()

	evaluations, err := mva.collections.RefreshAll(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, evaluation := range evaluations {
		if evaluation.Err != nil {
			failed++
			mva.log.Warn("Collection '%s' could not be evaluated: %v", evaluation.Name, evaluation.Err)
		}
	}

	mva.log.Info("Refreshed %d collections in %s (%d failed)", len(evaluations), time.Since(start).Round(time.Millisecond), failed)
	return nil
}

func (mva *MugenVaultAgent) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", mva.metrics.Handler())

	mva.server = &http.Server{
		Addr:              mva.cfg.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	mva.wait.Add(1)
	go func() {
		defer mva.wait.Done()

		mva.log.Info("Serving metrics on 'http://%s/metrics'", mva.cfg.Metrics.Address)
		if err := mva.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mva.log.Error("Metrics server failed: %v", err)
		}
	}()
}

func (mva *MugenVaultAgent) shutdown() error {
	mva.mutex.Lock()
	defer mva.mutex.Unlock()

	timeout, err := time.ParseDuration(mva.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error

	if mva.server != nil {
		if err := mva.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown metrics server: %w", err))
		}
	}

	mva.wait.Wait()

	if err := mva.sc.Cleanup(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to complete service container cleanup: %w", err))
	}

	if mva.store != nil {
		if err := mva.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close metadata store: %w", err))
		}
		mva.store = nil
	}

	if err := log.Close(mva.log); err != nil {
		errs = append(errs, fmt.Errorf("failed to close logger: %w", err))
	}

	return errors.Join(errs...)
}
