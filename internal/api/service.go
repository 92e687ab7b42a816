package api

import (
	"context"
	"time"

	"go.uber.org/zap"

	rerrors "github.com/recipestore/recipestore/internal/errors"
	"github.com/recipestore/recipestore/internal/observability"
	"github.com/recipestore/recipestore/internal/recipe"
	"github.com/recipestore/recipestore/pkg/types"
)

// Operation names used in logs and metrics.
const (
	OperationFind       = "find"
	OperationCategories = "categories"
	OperationAdd        = "add"
)

// Service runs normalized requests against the engine and always answers
// with an envelope; errors never escape.
type Service struct {
	engine  *recipe.Engine
	metrics *observability.Metrics
	logger  *zap.SugaredLogger
}

// NewService creates a Service. metrics may be nil.
func NewService(engine *recipe.Engine, metrics *observability.Metrics, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{engine: engine, metrics: metrics, logger: logger}
}

// Find parses params and runs a find or category listing.
func (s *Service) Find(ctx context.Context, params map[string]string) Response {
	start := time.Now()

	q, err := ParseQuery(params)
	if err != nil {
		return s.finish(OperationFind, start, FromError(err), err)
	}
	return s.FindQuery(ctx, q, start)
}

// FindQuery runs an already parsed query. start is the time the request
// was received.
func (s *Service) FindQuery(ctx context.Context, q types.Query, start time.Time) Response {
	op := OperationFind
	if q.Categories {
		op = OperationCategories
	}

	res, err := s.engine.Find(ctx, q)
	if err != nil {
		return s.finish(op, start, FromError(err), err)
	}
	return s.finish(op, start, FromResult(res), nil)
}

// Add decodes body as a recipe and appends it.
func (s *Service) Add(ctx context.Context, body []byte) Response {
	start := time.Now()

	r, err := DecodeRecipe(body)
	if err != nil {
		return s.finish(OperationAdd, start, FromError(err), err)
	}

	res, err := s.engine.Add(ctx, r)
	if err != nil {
		return s.finish(OperationAdd, start, FromError(err), err)
	}
	return s.finish(OperationAdd, start, FromResult(res), nil)
}

func (s *Service) finish(op string, start time.Time, resp Response, err error) Response {
	elapsed := time.Since(start)
	s.metrics.ObserveRequest(op, resp.StatusCode, elapsed)

	if err != nil {
		log := s.logger.Warnw
		if resp.StatusCode >= 500 {
			log = s.logger.Errorw
		}
		log("Request failed",
			"operation", op,
			"status", resp.StatusCode,
			"category", rerrors.GetCategory(err),
			"code", rerrors.GetCode(err),
			"retryable", rerrors.IsRetryable(err),
			"error", err,
		)
	}
	return resp
}
