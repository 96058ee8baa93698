// Package apperr classifies request failures so the dispatcher can map them
// onto status codes without inspecting provider errors.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the failure category of an Error.
type Kind string

// Failure categories.
const (
	// KindValidation is a missing or malformed request field (HTTP 400).
	KindValidation Kind = "validation"
	// KindNotFound is an unknown route (HTTP 404).
	KindNotFound Kind = "not_found"
	// KindProvider is a failed call into an external capability (HTTP 500).
	KindProvider Kind = "provider"
	// KindInternal is anything else, including undecodable bodies (HTTP 500).
	KindInternal Kind = "internal"
)

// Error is a classified failure. Message is safe to return to callers only
// for validation and not-found errors.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Validation creates a validation error with a caller-facing message.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound creates a not-found error with a caller-facing message.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Provider wraps a failure from the named capability.
func Provider(capability string, cause error) *Error {
	return &Error{Kind: KindProvider, Message: capability + " call failed", Cause: cause}
}

// Internal wraps an unexpected failure.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal failure", Cause: cause}
}

// KindOf returns the kind of err, or KindInternal when err is unclassified.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	return KindInternal
}

// StatusOf returns the HTTP status code for err.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}

	return http.StatusInternalServerError
}
