package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/recipestore/recipestore/internal/api"
	"github.com/recipestore/recipestore/internal/observability"
)

// RouterConfig holds the dependencies of the HTTP API.
type RouterConfig struct {
	Service *api.Service
	Stats   *observability.QueryStats
	Metrics *observability.Metrics
	Logger  *zap.SugaredLogger

	// Ready reports whether the service can take traffic. Nil means always
	// ready.
	Ready func(ctx context.Context) error

	// Middleware wraps every route after the default chain, e.g. shutdown
	// tracking.
	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the HTTP handler for the recipe API.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	mux := http.NewServeMux()
	mux.Handle("/v1/recipes", NewRecipesHandler(cfg.Service))
	mux.Handle("/v1/categories", NewCategoriesHandler(cfg.Service))
	if cfg.Stats != nil {
		mux.Handle("/v1/stats/filters", NewFilterStatsHandler(cfg.Stats))
	}
	mux.HandleFunc("/health", HealthHandler)
	mux.Handle("/ready", NewReadyHandler(cfg.Ready))
	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics.Handler())
	}

	middlewares := append([]func(http.Handler) http.Handler{DefaultMiddleware(logger)}, cfg.Middleware...)
	return ChainMiddleware(middlewares...)(mux)
}
