// Package types provides core data types for recipestore.
package types

// DefaultSampleSize is the number of rows returned by a find when the
// query does not ask for a specific sample size.
const DefaultSampleSize = 5

// Column names of the recipe table, in canonical order.
const (
	ColumnRecipe         = "Recipe"
	ColumnType           = "Type"
	ColumnMainIngredient = "Main_Ingredient"
	ColumnCuisine        = "Cuisine"
	ColumnSource         = "Source"
	ColumnPage           = "Page"
	ColumnLink           = "Link"
)

// Columns lists the recipe columns in the order they are written.
var Columns = []string{
	ColumnRecipe,
	ColumnType,
	ColumnMainIngredient,
	ColumnCuisine,
	ColumnSource,
	ColumnPage,
	ColumnLink,
}

// Recipe is one row of the recipe table.
type Recipe struct {
	// Recipe is the recipe name. Required, unique in practice but not enforced.
	Recipe string `json:"Recipe"`

	// Type is the meal category (e.g., "Dinner").
	Type string `json:"Type"`

	// MainIngredient is the primary ingredient.
	MainIngredient string `json:"Main_Ingredient"`

	// Cuisine is the cuisine the recipe belongs to.
	Cuisine string `json:"Cuisine"`

	// Source names the book or site the recipe comes from.
	Source string `json:"Source"`

	// Page is kept as text even when numeric.
	Page string `json:"Page"`

	// Link is a URL to the recipe.
	Link string `json:"Link"`
}

// Field returns the value of the named column, or "" for unknown columns.
func (r Recipe) Field(column string) string {
	switch column {
	case ColumnRecipe:
		return r.Recipe
	case ColumnType:
		return r.Type
	case ColumnMainIngredient:
		return r.MainIngredient
	case ColumnCuisine:
		return r.Cuisine
	case ColumnSource:
		return r.Source
	case ColumnPage:
		return r.Page
	case ColumnLink:
		return r.Link
	default:
		return ""
	}
}

// SetField sets the named column. Unknown columns are ignored.
func (r *Recipe) SetField(column, value string) {
	switch column {
	case ColumnRecipe:
		r.Recipe = value
	case ColumnType:
		r.Type = value
	case ColumnMainIngredient:
		r.MainIngredient = value
	case ColumnCuisine:
		r.Cuisine = value
	case ColumnSource:
		r.Source = value
	case ColumnPage:
		r.Page = value
	case ColumnLink:
		r.Link = value
	}
}

// Values returns the recipe fields in Columns order.
func (r Recipe) Values() []string {
	return []string{r.Recipe, r.Type, r.MainIngredient, r.Cuisine, r.Source, r.Page, r.Link}
}

// Query holds the optional filters of a find request.
// Empty filter fields match every row.
type Query struct {
	// Recipe is a case-insensitive substring match on the recipe name.
	Recipe string `json:"recipe,omitempty"`

	// Type, MainIngredient, Cuisine and Source are exact matches.
	Type           string `json:"type,omitempty"`
	MainIngredient string `json:"main_ingredient,omitempty"`
	Cuisine        string `json:"cuisine,omitempty"`
	Source         string `json:"source,omitempty"`

	// Sample is the maximum number of rows returned. Zero means the default.
	Sample int `json:"sample,omitempty"`

	// Categories requests the distinct values of each categorical column
	// instead of matching rows.
	Categories bool `json:"categories,omitempty"`
}

// Categories holds the distinct values of each categorical column. Each list
// is sorted ascending and starts with an empty string meaning "no filter".
type Categories struct {
	Type           []string `json:"Type"`
	Cuisine        []string `json:"Cuisine"`
	Source         []string `json:"Source"`
	MainIngredient []string `json:"Main_Ingredient"`
}
