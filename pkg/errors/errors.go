// Package errors defines the storefront's error kinds and their HTTP status
// mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels identify the kind of failure; every AppError wraps one of them.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrPersistence   = errors.New("persistence failure")
)

// AppError is an error with a client-facing code and message.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Cause returns the text of the underlying failure, or "" when the error
// carries nothing beyond its kind.
func (e *AppError) Cause() string {
	if e.Err == nil || isSentinel(e.Err) {
		return ""
	}
	return e.Err.Error()
}

func newAppError(status int, code, message string, kind error) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: kind}
}

// NotFound reports a missing product, review, order or user.
func NotFound(resource, id string) *AppError {
	return newAppError(http.StatusNotFound, "NOT_FOUND",
		fmt.Sprintf("%s with id %s not found", resource, id), ErrNotFound)
}

// AlreadyExists reports a unique field collision.
func AlreadyExists(resource, field, value string) *AppError {
	return newAppError(http.StatusConflict, "ALREADY_EXISTS",
		fmt.Sprintf("%s with %s %q already exists", resource, field, value), ErrAlreadyExists)
}

// InvalidInput reports a request the service refuses to act on.
func InvalidInput(message string) *AppError {
	return newAppError(http.StatusBadRequest, "INVALID_INPUT", message, ErrInvalidInput)
}

// Forbidden reports an authenticated caller acting outside their rights.
func Forbidden(message string) *AppError {
	return newAppError(http.StatusForbidden, "FORBIDDEN", message, ErrForbidden)
}

// Persistence reports a failed store operation. The cause stays attached so
// that handlers can echo it in the error field of a 500 response.
func Persistence(err error) *AppError {
	return newAppError(http.StatusInternalServerError, "PERSISTENCE_ERROR",
		"a storage error occurred", fmt.Errorf("%w: %w", ErrPersistence, err))
}

// HTTPStatus returns the HTTP status code for err. Unrecognized errors map to
// 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func isSentinel(err error) bool {
	switch err {
	case ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrUnauthorized, ErrForbidden, ErrPersistence:
		return true
	}
	return false
}
