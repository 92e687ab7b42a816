// Package lambda adapts the recipe API to AWS Lambda invocations.
package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"

	"github.com/recipestore/recipestore/internal/api"
	rerrors "github.com/recipestore/recipestore/internal/errors"
)

// Event keys that select how an invocation is interpreted.
const (
	// proxyMethodKey marks an API Gateway proxy event.
	proxyMethodKey = "httpMethod"
	// directMethodKey marks a direct invocation event.
	directMethodKey = "http_method"
)

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

// DirectResponse is returned for direct invocations: the envelope plus the
// response headers.
type DirectResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Message    string            `json:"message"`
	Body       interface{}       `json:"body"`
}

// Handler serves Lambda invocations. POST requests add a recipe; every
// other method is a find.
type Handler struct {
	service *api.Service
	logger  *zap.SugaredLogger
}

// NewHandler creates a new Lambda handler.
func NewHandler(service *api.Service, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{service: service, logger: logger}
}

// Invoke is the Lambda entry point. It accepts an API Gateway proxy event
// or a direct invocation event carrying http_method and flat fields.
func (h *Handler) Invoke(ctx context.Context, event json.RawMessage) (interface{}, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(event, &probe); err != nil || probe == nil {
		resp := api.FromError(rerrors.NewValidationError(rerrors.CodeInvalidRecord,
			"invocation event must be a JSON object"))
		return direct(resp), nil
	}

	if lc, ok := lambdacontext.FromContext(ctx); ok {
		h.logger.Debugw("Lambda invocation", "aws_request_id", lc.AwsRequestID)
	}

	if _, ok := probe[proxyMethodKey]; ok {
		var req events.APIGatewayProxyRequest
		if err := json.Unmarshal(event, &req); err != nil {
			return proxy(api.FromError(rerrors.NewValidationError(rerrors.CodeInvalidRecord,
				fmt.Sprintf("invalid API Gateway event: %v", err)))), nil
		}
		return h.HandleProxy(ctx, req), nil
	}

	return h.HandleDirect(ctx, event, probe), nil
}

// HandleProxy serves an API Gateway proxy request.
func (h *Handler) HandleProxy(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if strings.EqualFold(req.HTTPMethod, http.MethodPost) {
		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				return proxy(api.FromError(rerrors.NewValidationError(rerrors.CodeInvalidRecord,
					fmt.Sprintf("invalid base64 body: %v", err))))
			}
			body = decoded
		}
		return proxy(h.service.Add(ctx, body))
	}

	params := make(map[string]string, len(req.QueryStringParameters))
	for k, v := range req.QueryStringParameters {
		params[k] = v
	}
	return proxy(h.service.Find(ctx, params))
}

// HandleDirect serves a direct invocation. event is the raw event and
// fields its top-level members.
func (h *Handler) HandleDirect(ctx context.Context, event json.RawMessage, fields map[string]json.RawMessage) DirectResponse {
	var method string
	if raw, ok := fields[directMethodKey]; ok {
		_ = json.Unmarshal(raw, &method)
	}

	if strings.EqualFold(method, http.MethodPost) {
		return direct(h.service.Add(ctx, event))
	}

	params, err := api.ParamsFromJSON(event)
	if err != nil {
		return direct(api.FromError(err))
	}
	return direct(h.service.Find(ctx, params))
}

func direct(resp api.Response) DirectResponse {
	return DirectResponse{
		StatusCode: resp.StatusCode,
		Headers:    jsonHeaders(),
		Message:    resp.Message,
		Body:       resp.Body,
	}
}

// proxy renders the envelope as the body of an API Gateway response.
func proxy(resp api.Response) events.APIGatewayProxyResponse {
	body, err := json.Marshal(resp)
	if err != nil {
		body = []byte(`{"statusCode":500,"message":"failed to encode response","body":""}`)
		resp.StatusCode = http.StatusInternalServerError
	}
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    jsonHeaders(),
		Body:       string(body),
	}
}
