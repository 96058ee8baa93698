// Package lambdaentry adapts API Gateway proxy events to the dispatcher.
package lambdaentry

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/book-expert/ai-router/internal/api"
	"github.com/book-expert/logger"
)

// ErrDispatcherNil is returned when no dispatcher is supplied.
var ErrDispatcherNil = errors.New("dispatcher cannot be nil")

// Dispatcher handles transport-neutral requests.
type Dispatcher interface {
	Dispatch(ctx context.Context, req api.Request) api.Response
}

// Handler answers API Gateway proxy integration events.
type Handler struct {
	dispatcher Dispatcher
	log        *logger.Logger
}

// NewHandler creates a proxy event handler.
func NewHandler(dispatcher Dispatcher, log *logger.Logger) (*Handler, error) {
	if dispatcher == nil {
		return nil, ErrDispatcherNil
	}

	return &Handler{dispatcher: dispatcher, log: log}, nil
}

// Handle never returns an error: failures are carried in the response so
// API Gateway does not replace them with its own 502.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx = api.WithRequestID(ctx, requestID(ctx, event))

	body := []byte(event.Body)

	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			h.log.Error("Request %s: failed to decode base64 body: %v", api.RequestIDFrom(ctx), err)

			return toProxyResponse(api.InternalError()), nil
		}

		body = decoded
	}

	response := h.dispatcher.Dispatch(ctx, api.Request{
		Path:   event.Path,
		Method: event.HTTPMethod,
		Body:   body,
		Query:  event.QueryStringParameters,
	})

	return toProxyResponse(response), nil
}

func requestID(ctx context.Context, event events.APIGatewayProxyRequest) string {
	if event.RequestContext.RequestID != "" {
		return event.RequestContext.RequestID
	}

	if lambdaContext, ok := lambdacontext.FromContext(ctx); ok {
		return lambdaContext.AwsRequestID
	}

	return ""
}

func toProxyResponse(response api.Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: response.StatusCode,
		Headers:    response.Headers,
		Body:       string(response.Body),
	}
}
