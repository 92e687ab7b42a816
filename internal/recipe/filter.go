package recipe

import (
	"slices"
	"strings"

	"github.com/recipestore/recipestore/internal/observability"
	"github.com/recipestore/recipestore/pkg/types"
)

// predicate narrows a row set. An empty value disables the predicate.
type predicate struct {
	column   string
	operator string
	value    string
	match    func(types.Recipe, string) bool
}

// predicates returns the filters of q in evaluation order: the recipe name
// substring first, then the exact matches on Type, Main_Ingredient, Cuisine
// and Source.
func predicates(q types.Query) []predicate {
	return []predicate{
		{types.ColumnRecipe, observability.OperatorContains, q.Recipe, containsFold},
		{types.ColumnType, observability.OperatorEquals, q.Type, equals(types.ColumnType)},
		{types.ColumnMainIngredient, observability.OperatorEquals, q.MainIngredient, equals(types.ColumnMainIngredient)},
		{types.ColumnCuisine, observability.OperatorEquals, q.Cuisine, equals(types.ColumnCuisine)},
		{types.ColumnSource, observability.OperatorEquals, q.Source, equals(types.ColumnSource)},
	}
}

func containsFold(r types.Recipe, value string) bool {
	return strings.Contains(strings.ToLower(r.Recipe), strings.ToLower(value))
}

func equals(column string) func(types.Recipe, string) bool {
	return func(r types.Recipe, value string) bool {
		return r.Field(column) == value
	}
}

// Filter returns the recipes matching every non-empty filter of q, in table
// order. The input slice is not modified.
func Filter(recipes []types.Recipe, q types.Query) []types.Recipe {
	result := recipes
	for _, p := range predicates(q) {
		if p.value == "" {
			continue
		}
		narrowed := make([]types.Recipe, 0, len(result))
		for _, r := range result {
			if p.match(r, p.value) {
				narrowed = append(narrowed, r)
			}
		}
		result = narrowed
	}
	return result
}

// ListCategories returns the distinct non-empty values of each categorical
// column, sorted ascending and prefixed with "".
func ListCategories(recipes []types.Recipe) types.Categories {
	return types.Categories{
		Type:           distinct(recipes, types.ColumnType),
		Cuisine:        distinct(recipes, types.ColumnCuisine),
		Source:         distinct(recipes, types.ColumnSource),
		MainIngredient: distinct(recipes, types.ColumnMainIngredient),
	}
}

func distinct(recipes []types.Recipe, column string) []string {
	seen := make(map[string]struct{})
	for _, r := range recipes {
		if v := r.Field(column); v != "" {
			seen[v] = struct{}{}
		}
	}

	values := make([]string, 0, len(seen)+1)
	values = append(values, "")
	for v := range seen {
		values = append(values, v)
	}
	slices.Sort(values[1:])
	return values
}
