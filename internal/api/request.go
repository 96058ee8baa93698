package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/book-expert/ai-router/internal/apperr"
)

const errFmtMissingField = "Missing or invalid '%s' field"

// Request is a transport-neutral inbound request.
type Request struct {
	Path   string            `json:"path"`
	Method string            `json:"method,omitempty"`
	Body   json.RawMessage   `json:"body,omitempty"`
	Query  map[string]string `json:"query,omitempty"`
}

type requestIDKey struct{}

// WithRequestID stores a request id in ctx for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFrom returns the request id stored in ctx, or "-" when absent.
func RequestIDFrom(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok && requestID != "" {
		return requestID
	}

	return "-"
}

// fields is a decoded JSON request body.
type fields map[string]any

// decodeBody parses a JSON object body. An empty body is an empty object.
// Undecodable bodies are internal failures, not validation failures.
func decodeBody(body []byte) (fields, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return fields{}, nil
	}

	var decoded fields

	err := json.Unmarshal(body, &decoded)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to decode request body: %w", err))
	}

	if decoded == nil {
		return fields{}, nil
	}

	return decoded, nil
}

// requireString returns the named field when it is a non-empty string.
func (f fields) requireString(name string) (string, error) {
	value, ok := f[name].(string)
	if !ok || value == "" {
		return "", apperr.Validation(fmt.Sprintf(errFmtMissingField, name))
	}

	return value, nil
}

// optionalString returns the named field when it is a string, or fallback.
func (f fields) optionalString(name, fallback string) string {
	value, ok := f[name].(string)
	if !ok || value == "" {
		return fallback
	}

	return value
}
