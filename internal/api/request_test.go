package api

import (
	"testing"

	rerrors "github.com/recipestore/recipestore/internal/errors"
	"github.com/recipestore/recipestore/pkg/types"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   types.Query
	}{
		{
			name:   "empty",
			params: map[string]string{},
			want:   types.Query{},
		},
		{
			name: "all filters",
			params: map[string]string{
				"recipe":          "  pasta ",
				"type":            "Dinner",
				"main_ingredient": "Chicken",
				"cuisine":         "Italian",
				"source":          "Book",
				"sample":          "3",
			},
			want: types.Query{
				Recipe:         "pasta",
				Type:           "Dinner",
				MainIngredient: "Chicken",
				Cuisine:        "Italian",
				Source:         "Book",
				Sample:         3,
			},
		},
		{
			name:   "categories",
			params: map[string]string{"categories": "true"},
			want:   types.Query{Categories: true},
		},
		{
			name:   "unknown parameters ignored",
			params: map[string]string{"http_method": "GET", "foo": "bar"},
			want:   types.Query{},
		},
		{
			name:   "zero sample",
			params: map[string]string{"sample": "0"},
			want:   types.Query{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuery(tt.params)
			if err != nil {
				t.Fatalf("ParseQuery failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseQuery() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseQuery_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		code   string
	}{
		{"non-numeric sample", map[string]string{"sample": "five"}, rerrors.CodeInvalidSample},
		{"negative sample", map[string]string{"sample": "-1"}, rerrors.CodeInvalidSample},
		{"bad categories", map[string]string{"categories": "maybe"}, rerrors.CodeInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuery(tt.params)
			if err == nil {
				t.Fatal("expected error")
			}
			if rerrors.GetCategory(err) != rerrors.ErrCategoryQuery {
				t.Errorf("category = %s, want QUERY", rerrors.GetCategory(err))
			}
			if rerrors.GetCode(err) != tt.code {
				t.Errorf("code = %s, want %s", rerrors.GetCode(err), tt.code)
			}
		})
	}
}

func TestParamsFromJSON(t *testing.T) {
	params, err := ParamsFromJSON([]byte(`{"http_method":"GET","type":"Dinner","sample":2,"categories":false,"source":null}`))
	if err != nil {
		t.Fatalf("ParamsFromJSON failed: %v", err)
	}
	want := map[string]string{
		"type":       "Dinner",
		"sample":     "2",
		"categories": "false",
		"source":     "",
	}
	for k, v := range want {
		if params[k] != v {
			t.Errorf("params[%q] = %q, want %q", k, params[k], v)
		}
	}
	if _, ok := params["http_method"]; ok {
		t.Error("http_method should not be a query parameter")
	}

	q, err := ParseQuery(params)
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	if q.Type != "Dinner" || q.Sample != 2 || q.Categories {
		t.Errorf("unexpected query %+v", q)
	}
}

func TestParamsFromJSON_SkipsUnrelatedMembers(t *testing.T) {
	body := `{"type":"Dinner","context":{"stage":"prod"},"headers":{"Accept":"*/*"},"tags":["a","b"]}`

	params, err := ParamsFromJSON([]byte(body))
	if err != nil {
		t.Fatalf("ParamsFromJSON failed: %v", err)
	}
	if len(params) != 1 || params["type"] != "Dinner" {
		t.Errorf("params = %v, want only type", params)
	}
}

func TestParamsFromJSON_Empty(t *testing.T) {
	params, err := ParamsFromJSON(nil)
	if err != nil {
		t.Fatalf("ParamsFromJSON failed: %v", err)
	}
	if len(params) != 0 {
		t.Errorf("expected no params, got %v", params)
	}
}

func TestParamsFromJSON_Invalid(t *testing.T) {
	for _, body := range []string{`[1,2]`, `{"type":{"a":1}}`, `not json`} {
		if _, err := ParamsFromJSON([]byte(body)); err == nil {
			t.Errorf("ParamsFromJSON(%s) expected error", body)
		} else if rerrors.GetCategory(err) != rerrors.ErrCategoryQuery {
			t.Errorf("ParamsFromJSON(%s) category = %s", body, rerrors.GetCategory(err))
		}
	}
}

func TestDecodeRecipe(t *testing.T) {
	body := `{"Recipe":"Tacos","Type":"Dinner","Main_Ingredient":"Beef","Cuisine":"Mexican","Source":"Book","Page":42,"Link":"","extra":"ignored"}`

	r, err := DecodeRecipe([]byte(body))
	if err != nil {
		t.Fatalf("DecodeRecipe failed: %v", err)
	}
	want := types.Recipe{
		Recipe:         "Tacos",
		Type:           "Dinner",
		MainIngredient: "Beef",
		Cuisine:        "Mexican",
		Source:         "Book",
		Page:           "42",
	}
	if r != want {
		t.Errorf("DecodeRecipe() = %+v, want %+v", r, want)
	}
}

func TestDecodeRecipe_MissingFields(t *testing.T) {
	r, err := DecodeRecipe([]byte(`{"Recipe":"Toast"}`))
	if err != nil {
		t.Fatalf("DecodeRecipe failed: %v", err)
	}
	if r != (types.Recipe{Recipe: "Toast"}) {
		t.Errorf("unexpected recipe %+v", r)
	}
}

func TestDecodeRecipe_Invalid(t *testing.T) {
	for _, body := range []string{``, `null`, `"Pasta"`, `{"Recipe":["a"]}`, `{"Type":{"x":1}}`} {
		_, err := DecodeRecipe([]byte(body))
		if err == nil {
			t.Errorf("DecodeRecipe(%q) expected error", body)
			continue
		}
		if rerrors.GetCode(err) != rerrors.CodeInvalidRecord {
			t.Errorf("DecodeRecipe(%q) code = %s", body, rerrors.GetCode(err))
		}
		if rerrors.StatusCode(err) != 400 {
			t.Errorf("DecodeRecipe(%q) status = %d", body, rerrors.StatusCode(err))
		}
	}
}
