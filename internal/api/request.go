package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	rerrors "github.com/recipestore/recipestore/internal/errors"
	"github.com/recipestore/recipestore/pkg/types"
)

// Query parameter names.
const (
	ParamRecipe         = "recipe"
	ParamType           = "type"
	ParamMainIngredient = "main_ingredient"
	ParamCuisine        = "cuisine"
	ParamSource         = "source"
	ParamSample         = "sample"
	ParamCategories     = "categories"
)

// ParseQuery builds a find query from flat string parameters. Unknown
// parameters are ignored; missing ones leave the filter empty.
func ParseQuery(params map[string]string) (types.Query, error) {
	q := types.Query{
		Recipe:         strings.TrimSpace(params[ParamRecipe]),
		Type:           params[ParamType],
		MainIngredient: params[ParamMainIngredient],
		Cuisine:        params[ParamCuisine],
		Source:         params[ParamSource],
	}

	if raw := strings.TrimSpace(params[ParamSample]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return types.Query{}, rerrors.NewQueryError(rerrors.CodeInvalidSample,
				fmt.Sprintf("sample must be an integer, got %q", raw))
		}
		if n < 0 {
			return types.Query{}, rerrors.NewQueryError(rerrors.CodeInvalidSample,
				fmt.Sprintf("sample must not be negative, got %d", n))
		}
		q.Sample = n
	}

	if raw := strings.TrimSpace(params[ParamCategories]); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return types.Query{}, rerrors.NewQueryError(rerrors.CodeInvalidParameter,
				fmt.Sprintf("categories must be a boolean, got %q", raw))
		}
		q.Categories = b
	}

	return q, nil
}

// queryParams lists the keys ParseQuery reads.
var queryParams = []string{
	ParamRecipe,
	ParamType,
	ParamMainIngredient,
	ParamCuisine,
	ParamSource,
	ParamSample,
	ParamCategories,
}

// ParamsFromJSON extracts the query parameters of a JSON object for
// ParseQuery. Numbers and booleans are kept in their JSON text form and null
// becomes empty. Members other than the query parameters are skipped
// whatever their shape; a nested value under a query parameter is rejected.
func ParamsFromJSON(body []byte) (map[string]string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]string{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, rerrors.NewQueryError(rerrors.CodeInvalidParameter,
			fmt.Sprintf("request body must be a JSON object: %v", err))
	}

	params := make(map[string]string, len(queryParams))
	for _, key := range queryParams {
		value, ok := raw[key]
		if !ok {
			continue
		}
		s, err := scalarString(value)
		if err != nil {
			return nil, rerrors.NewQueryError(rerrors.CodeInvalidParameter,
				fmt.Sprintf("parameter %s: %v", key, err))
		}
		params[key] = s
	}
	return params, nil
}

// DecodeRecipe extracts the seven recipe fields from a JSON object. Extra
// fields are ignored and missing fields are empty. Numeric values are
// accepted as their JSON text (e.g., a numeric Page).
func DecodeRecipe(body []byte) (types.Recipe, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		msg := "request body must be a JSON object"
		if err != nil {
			msg = fmt.Sprintf("%s: %v", msg, err)
		}
		return types.Recipe{}, rerrors.NewValidationError(rerrors.CodeInvalidRecord, msg)
	}

	var r types.Recipe
	for _, column := range types.Columns {
		value, ok := raw[column]
		if !ok {
			continue
		}
		s, err := scalarString(value)
		if err != nil {
			return types.Recipe{}, rerrors.NewValidationError(rerrors.CodeInvalidRecord,
				fmt.Sprintf("field %s: %v", column, err)).
				WithDetails(map[string]interface{}{"field": column})
		}
		r.SetField(column, s)
	}
	return r, nil
}

// scalarString renders a JSON scalar as a string.
func scalarString(value json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("expected a string, number or boolean")
	default:
		return string(trimmed), nil
	}
}
