package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/recipestore/recipestore/internal/api"
	rerrors "github.com/recipestore/recipestore/internal/errors"
	"github.com/recipestore/recipestore/internal/observability"
	"github.com/recipestore/recipestore/pkg/types"
)

// MaxRecipeBodyBytes caps the size of a POST /v1/recipes body.
const MaxRecipeBodyBytes = 1 << 20

// DefaultTopFilters is the number of entries GET /v1/stats/filters
// returns without a top parameter.
const DefaultTopFilters = 10

// RecipesHandler handles GET and POST /v1/recipes.
type RecipesHandler struct {
	service *api.Service
}

// NewRecipesHandler creates a new recipes handler.
func NewRecipesHandler(service *api.Service) *RecipesHandler {
	return &RecipesHandler{service: service}
}

// ServeHTTP finds recipes on GET and adds one on POST.
func (h *RecipesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeEnvelope(w, h.service.Find(r.Context(), queryParams(r)))
	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, MaxRecipeBodyBytes+1))
		if err != nil {
			writeEnvelope(w, api.FromError(rerrors.NewValidationError(rerrors.CodeInvalidRecord,
				fmt.Sprintf("failed to read request body: %v", err))))
			return
		}
		if len(body) > MaxRecipeBodyBytes {
			writeEnvelope(w, api.FromError(rerrors.NewValidationError(rerrors.CodeInvalidRecord,
				"request body too large")))
			return
		}
		writeEnvelope(w, h.service.Add(r.Context(), body))
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// CategoriesHandler handles GET /v1/categories.
type CategoriesHandler struct {
	service *api.Service
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(service *api.Service) *CategoriesHandler {
	return &CategoriesHandler{service: service}
}

// ServeHTTP lists the distinct category values.
func (h *CategoriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeEnvelope(w, h.service.FindQuery(r.Context(), types.Query{Categories: true}, time.Now()))
}

// FilterStatsResponse is the body of GET /v1/stats/filters.
type FilterStatsResponse struct {
	Filters         []observability.ColumnStats `json:"filters"`
	CategoryLookups int64                       `json:"category_lookups"`
	RequestID       string                      `json:"request_id"`
}

// FilterStatsHandler handles GET /v1/stats/filters.
type FilterStatsHandler struct {
	stats *observability.QueryStats
}

// NewFilterStatsHandler creates a new filter statistics handler.
func NewFilterStatsHandler(stats *observability.QueryStats) *FilterStatsHandler {
	return &FilterStatsHandler{stats: stats}
}

// ServeHTTP reports the most used filter columns.
func (h *FilterStatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	top := DefaultTopFilters
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeEnvelope(w, api.FromError(rerrors.NewQueryError(rerrors.CodeInvalidParameter,
				fmt.Sprintf("top must be a positive integer, got %q", raw))))
			return
		}
		top = n
	}

	writeJSON(w, http.StatusOK, FilterStatsResponse{
		Filters:         h.stats.GetTopFilters(top),
		CategoryLookups: h.stats.CategoryLookups(),
		RequestID:       GetRequestID(r.Context()),
	})
}

// HealthHandler handles GET /health.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyHandler handles GET /ready.
type ReadyHandler struct {
	check func(ctx context.Context) error
}

// NewReadyHandler creates a readiness handler. A nil check is always ready.
func NewReadyHandler(check func(ctx context.Context) error) *ReadyHandler {
	return &ReadyHandler{check: check}
}

// ServeHTTP answers 200 when the check passes and 503 otherwise.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		if err := h.check(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// queryParams flattens URL query values, keeping the first value of each key.
func queryParams(r *http.Request) map[string]string {
	values := r.URL.Query()
	params := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}
	return params
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	writeEnvelope(w, api.Response{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    "method not allowed",
		Body:       "",
	})
}
