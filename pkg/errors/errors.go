// Package errors defines the application error model shared by all layers:
// a small set of sentinel errors for errors.Is checks, and an Error type
// that carries a machine-readable code and an HTTP status mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for the error categories the service distinguishes.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConflict      = errors.New("conflict")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUnprocessable = errors.New("unprocessable")
	ErrUnavailable   = errors.New("service unavailable")
	ErrCorrupted     = errors.New("corrupted data")
	ErrInternal      = errors.New("internal error")
)

// Error is a structured application error. The Code is stable and safe to
// expose to API clients; Cause is for internal wrapping only.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// NotFound builds a 404 error for a missing resource.
func NotFound(resource, id string) *Error {
	return &Error{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %q not found", resource, id),
		Status:  http.StatusNotFound,
		Cause:   ErrNotFound,
	}
}

// InvalidInput builds a 400 error.
func InvalidInput(message string) *Error {
	return &Error{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Cause:   ErrInvalidInput,
	}
}

// Conflict builds a 409 error.
func Conflict(message string) *Error {
	return &Error{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Cause:   ErrConflict,
	}
}

// Unauthorized builds a 401 error.
func Unauthorized(message string) *Error {
	return &Error{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Cause:   ErrUnauthorized,
	}
}

// Unprocessable builds a 422 error for a request that is well-formed but
// cannot be fulfilled in the current state (e.g. a checkout whose lines no
// longer clear live inventory).
func Unprocessable(message string) *Error {
	return &Error{
		Code:    "UNPROCESSABLE",
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Cause:   ErrUnprocessable,
	}
}

// Unavailable builds a 503 error for a failing downstream dependency.
func Unavailable(message string) *Error {
	return &Error{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Cause:   ErrUnavailable,
	}
}

// Corrupted builds an error for an unreadable stored value. It is never
// surfaced to API clients; repository callers recover from it.
func Corrupted(slot string, cause error) *Error {
	return &Error{
		Code:    "CORRUPTED_DATA",
		Message: fmt.Sprintf("stored value in %q is unreadable", slot),
		Status:  http.StatusInternalServerError,
		Cause:   fmt.Errorf("%w: %w", ErrCorrupted, cause),
	}
}

// Internal wraps an unexpected error into a 500.
func Internal(cause error) *Error {
	return &Error{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Cause:   cause,
	}
}

// HTTPStatus maps an error to an HTTP status code, falling back to 500.
func HTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnprocessable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
