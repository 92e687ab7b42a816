// Package app wires configuration, storage and the recipe engine into the
// recipestore HTTP service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/recipestore/recipestore/internal/api"
	httpapi "github.com/recipestore/recipestore/internal/api/http"
	"github.com/recipestore/recipestore/internal/config"
	"github.com/recipestore/recipestore/internal/dataset"
	"github.com/recipestore/recipestore/internal/observability"
	"github.com/recipestore/recipestore/internal/recipe"
	"github.com/recipestore/recipestore/internal/server"
	"github.com/recipestore/recipestore/internal/storage"
)

// Components are the request-handling pieces shared by the HTTP server and
// the Lambda handler.
type Components struct {
	Storage storage.ObjectStorage
	Store   *dataset.ObjectStore
	Engine  *recipe.Engine
	Service *api.Service
	Stats   *observability.QueryStats
	Metrics *observability.Metrics
}

// Build creates the components described by cfg. cfg must be resolved and
// validated.
func Build(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	objects, err := NewObjectStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	encoding, err := dataset.ParseEncoding(cfg.Dataset.Encoding)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics()
	stats := observability.NewQueryStats(cfg.Query.StatsWindow)

	store := dataset.NewObjectStore(objects, cfg.Dataset.Key,
		dataset.WithEncoding(encoding),
		dataset.WithConditionalWrites(cfg.Dataset.ConditionalWrites),
		dataset.WithLogger(logger),
		dataset.WithMetrics(metrics),
	)

	engine := recipe.NewEngine(store,
		recipe.WithDefaultSample(cfg.Query.DefaultSample),
		recipe.WithQueryStats(stats),
		recipe.WithMetrics(metrics),
		recipe.WithLogger(logger),
	)

	logger.Infow("Recipe dataset configured",
		"storage", cfg.Storage.Type,
		"key", store.Key(),
		"encoding", encoding,
		"conditional_writes", cfg.Dataset.ConditionalWrites,
	)

	return &Components{
		Storage: objects,
		Store:   store,
		Engine:  engine,
		Service: api.NewService(engine, metrics, logger),
		Stats:   stats,
		Metrics: metrics,
	}, nil
}

// NewObjectStorage creates the storage backend named by cfg.Type.
func NewObjectStorage(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStorage, error) {
	switch cfg.Type {
	case config.StorageLocal:
		return storage.NewLocalStorage(cfg.Path)
	case config.StorageS3:
		s3Cfg := storage.DefaultS3Config()
		if cfg.S3.Region != "" {
			s3Cfg.Region = cfg.S3.Region
		}
		s3Cfg.Endpoint = cfg.S3.Endpoint
		s3Cfg.UsePathStyle = cfg.S3.UsePathStyle
		s3Cfg.AccessKeyID = cfg.S3.AccessKeyID
		s3Cfg.SecretAccessKey = cfg.S3.SecretAccessKey
		return storage.NewS3Storage(ctx, cfg.S3.Bucket, s3Cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// App manages the HTTP service lifecycle.
type App struct {
	cfg    *config.Config
	logger *zap.SugaredLogger

	components *Components
	shutdown   *server.ShutdownManager
	httpServer *http.Server

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	errCh   chan error
}

// New creates a new App with the given configuration.
func New(cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		shutdown: server.NewShutdownManager(cfg.HTTP.ShutdownTimeout, logger),
		errCh:    make(chan error, 1),
	}, nil
}

// Start builds the components and starts the HTTP server and the
// statistics pruner.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app is already running")
	}
	a.running = true
	a.mu.Unlock()

	components, err := Build(ctx, a.cfg, a.logger)
	if err != nil {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
		return err
	}
	a.components = components

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.httpServer = &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      a.Handler(),
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.shutdown.Serve(a.httpServer); err != nil {
			a.logger.Errorw("HTTP server error", "error", err)
			a.errCh <- err
		}
	}()

	if a.cfg.Query.StatsPruneInterval > 0 {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.pruneStats(ctx)
		}()
	}

	a.logger.Infow("recipestore started", "addr", a.cfg.HTTP.Addr)
	return nil
}

// Handler returns the HTTP handler of the running app.
func (a *App) Handler() http.Handler {
	return httpapi.NewRouter(httpapi.RouterConfig{
		Service:    a.components.Service,
		Stats:      a.components.Stats,
		Metrics:    a.components.Metrics,
		Logger:     a.logger,
		Ready:      a.ready,
		Middleware: []func(http.Handler) http.Handler{a.shutdown.Middleware},
	})
}

// ready fails while shutting down or when the dataset object is missing.
func (a *App) ready(ctx context.Context) error {
	if a.shutdown.IsShuttingDown() {
		return fmt.Errorf("shutting down")
	}
	ok, err := a.components.Store.Exists(ctx)
	if err != nil {
		return fmt.Errorf("dataset check failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("dataset %s not found", a.components.Store.Key())
	}
	return nil
}

// pruneStats drops stale filter statistics until ctx is done.
func (a *App) pruneStats(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Query.StatsPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.components.Stats.Prune()
		}
	}
}

// Stop drains in-flight requests and stops the server.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	a.mu.Unlock()

	a.logger.Infow("Initiating graceful shutdown", "in_flight", a.shutdown.InFlightCount())

	if a.cancel != nil {
		a.cancel()
	}

	err := a.shutdown.Shutdown(ctx, "stop requested")

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warnw("Shutdown timeout, some goroutines may not have finished")
	}

	a.logger.Infow("recipestore stopped")
	return err
}

// WaitForShutdown blocks until a shutdown signal arrives, ctx is cancelled
// or the HTTP server fails.
func (a *App) WaitForShutdown(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case err := <-a.errCh:
			a.errCh <- err
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := a.shutdown.ListenForSignals(ctx); err != nil {
		return err
	}

	select {
	case err := <-a.errCh:
		return err
	default:
		return nil
	}
}
