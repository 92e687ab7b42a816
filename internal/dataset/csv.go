package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	rerrors "github.com/recipestore/recipestore/internal/errors"
	"github.com/recipestore/recipestore/pkg/types"
)

// IndexColumn is the header of the synthetic leading row-index column.
const IndexColumn = ""

// legacyColumns maps header names used by older dataset files to their
// canonical column.
var legacyColumns = map[string]string{
	"Ingredient": types.ColumnMainIngredient,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode parses a recipe CSV. Columns are matched by header name; a leading
// column with an empty header is the row index and is skipped. Unknown
// columns are ignored.
func Decode(data []byte) ([]types.Recipe, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		return nil, rerrors.NewDataError(rerrors.CodeInvalidUTF8, "recipe dataset is not valid UTF-8", nil)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, rerrors.NewDataError(rerrors.CodeMalformedCSV, "recipe dataset is empty", nil)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
			return nil, rerrors.NewDataError(rerrors.CodeMalformedCSV,
				fmt.Sprintf("row %d has the wrong number of columns", parseErr.Line), err)
		}
		return nil, rerrors.NewDataError(rerrors.CodeMalformedCSV, "failed to parse recipe dataset", err)
	}

	header := records[0]
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 && name == IndexColumn {
			continue
		}
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}
	for legacy, canonical := range legacyColumns {
		if pos, ok := positions[legacy]; ok {
			if _, has := positions[canonical]; !has {
				positions[canonical] = pos
			}
		}
	}

	if _, ok := positions[types.ColumnRecipe]; !ok {
		return nil, rerrors.NewDataError(rerrors.CodeMissingColumn,
			fmt.Sprintf("recipe dataset has no %s column", types.ColumnRecipe), nil).
			WithDetails(map[string]interface{}{"header": header})
	}

	recipes := make([]types.Recipe, 0, len(records)-1)
	for _, record := range records[1:] {
		var r types.Recipe
		for _, column := range types.Columns {
			if pos, ok := positions[column]; ok {
				r.SetField(column, record[pos])
			}
		}
		recipes = append(recipes, r)
	}

	return recipes, nil
}

// Encode writes recipes as CSV with the index column first, renumbered from
// zero, followed by the recipe columns in canonical order.
func Encode(recipes []types.Recipe) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, 0, len(types.Columns)+1)
	header = append(header, IndexColumn)
	header = append(header, types.Columns...)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	row := make([]string, 0, len(header))
	for i, r := range recipes {
		row = append(row[:0], strconv.Itoa(i))
		row = append(row, r.Values()...)
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
