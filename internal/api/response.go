package api

import (
	"encoding/json"
	"net/http"
)

const (
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"

	msgRouteNotFound  = "Route not found"
	msgInternalError  = "Internal server error"
	fallbackErrorBody = `{"error":"Internal server error"}`
)

// Response is a transport-neutral response with a JSON body.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       json.RawMessage   `json:"body"`
}

type errorBody struct {
	Error string `json:"error"`
}

// JSON builds a response with payload encoded as the body.
func JSON(status int, payload any) Response {
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{
			StatusCode: http.StatusInternalServerError,
			Headers:    jsonHeaders(),
			Body:       json.RawMessage(fallbackErrorBody),
		}
	}

	return Response{
		StatusCode: status,
		Headers:    jsonHeaders(),
		Body:       body,
	}
}

// Error builds a response with body {"error": message}.
func Error(status int, message string) Response {
	return JSON(status, errorBody{Error: message})
}

// InternalError is the generic 500 returned for every non-validation failure.
func InternalError() Response {
	return Error(http.StatusInternalServerError, msgInternalError)
}

func jsonHeaders() map[string]string {
	return map[string]string{headerContentType: contentTypeJSON}
}
