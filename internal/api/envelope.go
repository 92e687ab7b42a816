// Package api holds the request normalization and response envelope shared
// by the HTTP and Lambda adapters.
package api

import (
	"net/http"

	rerrors "github.com/recipestore/recipestore/internal/errors"
	"github.com/recipestore/recipestore/internal/recipe"
	"github.com/recipestore/recipestore/pkg/types"
)

// Response is the envelope returned for every request.
type Response struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Body       interface{} `json:"body"`
}

// FindBody is the body of a find in row mode.
type FindBody struct {
	Recipes []types.Recipe `json:"Recipes"`
}

// FromResult builds the success envelope for an engine result.
func FromResult(res *recipe.Result) Response {
	resp := Response{
		StatusCode: http.StatusOK,
		Message:    res.Message,
	}
	switch {
	case res.Categories != nil:
		resp.Body = res.Categories
	case res.Recipes != nil:
		resp.Body = FindBody{Recipes: res.Recipes}
	default:
		resp.Body = ""
	}
	return resp
}

// FromError builds the failure envelope for err.
func FromError(err error) Response {
	return Response{
		StatusCode: rerrors.StatusCode(err),
		Message:    rerrors.Message(err),
		Body:       "",
	}
}
