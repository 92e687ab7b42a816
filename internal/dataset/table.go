// Package dataset loads and saves the recipe table as a single CSV object.
package dataset

import (
	"github.com/recipestore/recipestore/pkg/types"
)

// Table is the in-memory recipe table for one request.
type Table struct {
	// Recipes are the rows in file order.
	Recipes []types.Recipe

	// version is the storage version the table was loaded from or last
	// saved as. Empty for tables that never touched storage.
	version string
}

// NewTable creates a table holding recipes.
func NewTable(recipes []types.Recipe) *Table {
	return &Table{Recipes: recipes}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Recipes)
}

// Append adds a recipe as the last row.
func (t *Table) Append(r types.Recipe) {
	t.Recipes = append(t.Recipes, r)
}

// Version returns the storage version of the table.
func (t *Table) Version() string {
	return t.version
}
