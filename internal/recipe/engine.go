// Package recipe implements recipe lookups and additions against the
// recipe dataset.
package recipe

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/recipestore/recipestore/internal/dataset"
	rerrors "github.com/recipestore/recipestore/internal/errors"
	"github.com/recipestore/recipestore/internal/observability"
	"github.com/recipestore/recipestore/pkg/types"
)

// Result messages.
const (
	MessageFound           = "Recipes found"
	MessageNotFound        = "Recipes not found"
	MessageCategoriesFound = "Categories found"
	MessageRecipeRequired  = "Recipe Name is required"
)

// Result is the outcome of a successful Find or Add.
type Result struct {
	// Message is a human-readable summary.
	Message string

	// Recipes holds the rows of a find. Empty, not nil, when nothing matched.
	Recipes []types.Recipe

	// Categories is set for category listings only.
	Categories *types.Categories
}

// Engine runs find and add requests. Each call loads a fresh table from the
// store; nothing is cached between calls.
type Engine struct {
	store         dataset.Store
	defaultSample int
	stats         *observability.QueryStats
	metrics       *observability.Metrics
	logger        *zap.SugaredLogger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultSample sets the sample size used when a query does not ask for one.
func WithDefaultSample(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultSample = n
		}
	}
}

// WithQueryStats records filter usage.
func WithQueryStats(stats *observability.QueryStats) Option {
	return func(e *Engine) { e.stats = stats }
}

// WithMetrics records result sizes.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRand sets the random source used for sampling.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// NewEngine creates an engine over store.
func NewEngine(store dataset.Store, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		defaultSample: types.DefaultSampleSize,
		logger:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e
}

// Find filters the table by q and returns a random sample of at most the
// requested size, or the category lists when q.Categories is set.
func (e *Engine) Find(ctx context.Context, q types.Query) (*Result, error) {
	if q.Sample < 0 {
		return nil, rerrors.NewQueryError(rerrors.CodeInvalidSample,
			fmt.Sprintf("sample must not be negative, got %d", q.Sample))
	}

	table, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if q.Categories {
		e.stats.RecordCategoryLookup()
		categories := ListCategories(table.Recipes)
		return &Result{Message: MessageCategoriesFound, Categories: &categories}, nil
	}

	for _, p := range predicates(q) {
		if p.value != "" {
			e.stats.RecordFilter(p.column, p.operator)
		}
	}

	matched := Filter(table.Recipes, q)

	sampleSize := q.Sample
	if sampleSize == 0 {
		sampleSize = e.defaultSample
	}

	e.logger.Debugw("Filtered recipes", "rows", table.Len(), "matched", len(matched), "sample", sampleSize)

	if len(matched) == 0 {
		e.metrics.ObserveRowsReturned(0)
		return &Result{Message: MessageNotFound, Recipes: []types.Recipe{}}, nil
	}

	rows := e.sample(matched, sampleSize)
	e.metrics.ObserveRowsReturned(len(rows))
	return &Result{Message: MessageFound, Recipes: rows}, nil
}

// sample returns n rows drawn uniformly without replacement, or rows itself
// when it holds no more than n.
func (e *Engine) sample(rows []types.Recipe, n int) []types.Recipe {
	if len(rows) <= n {
		return rows
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}

	// Partial Fisher-Yates: the first n positions end up a uniform sample.
	e.rngMu.Lock()
	for i := 0; i < n; i++ {
		j := i + e.rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	e.rngMu.Unlock()

	out := make([]types.Recipe, n)
	for i := range out {
		out[i] = rows[idx[i]]
	}
	return out
}

// Add appends r to the table and saves it. A missing recipe name fails
// validation before the store is touched. CRLF line breaks inside fields are
// stored as LF, the only form a CSV reader gives back.
func (e *Engine) Add(ctx context.Context, r types.Recipe) (*Result, error) {
	if strings.TrimSpace(r.Recipe) == "" {
		return nil, rerrors.NewValidationError(rerrors.CodeRecipeRequired, MessageRecipeRequired)
	}
	r = normalizeLineBreaks(r)

	table, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	table.Append(r)

	if err := e.store.Save(ctx, table); err != nil {
		return nil, err
	}

	e.logger.Infow("Added recipe", "recipe", r.Recipe, "rows", table.Len())
	return &Result{Message: fmt.Sprintf("%s added to recipes list", r.Recipe)}, nil
}

// normalizeLineBreaks rewrites CRLF to LF in every field of r.
func normalizeLineBreaks(r types.Recipe) types.Recipe {
	for _, column := range types.Columns {
		if v := r.Field(column); strings.Contains(v, "\r\n") {
			r.SetField(column, strings.ReplaceAll(v, "\r\n", "\n"))
		}
	}
	return r
}
