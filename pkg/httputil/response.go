package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/cartflow/storefront/pkg/errors"
	"github.com/cartflow/storefront/pkg/logger"
	"github.com/cartflow/storefront/pkg/validator"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the JSON body written for every failed request. Error holds
// the underlying cause and is only populated for server-side failures.
type ErrorResponse struct {
	Message   string            `json:"message"`
	Code      string            `json:"code"`
	Error     string            `json:"error,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

// MessageResponse is a bare acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a standardized error response based on the error type.
// It prefers the request-scoped logger from context (set by the RequestLogger
// middleware) over the fallback logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	requestID := logger.CorrelationIDFromContext(r.Context())

	resp := ErrorResponse{RequestID: requestID}
	status := apperrors.HTTPStatus(err)

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		resp.Code = appErr.Code
		resp.Message = appErr.Message
		if status >= http.StatusInternalServerError {
			resp.Error = appErr.Cause()
		}
	case errors.Is(err, apperrors.ErrNotFound):
		resp.Code = "NOT_FOUND"
		resp.Message = "resource not found"
	case errors.Is(err, apperrors.ErrAlreadyExists):
		resp.Code = "ALREADY_EXISTS"
		resp.Message = "resource already exists"
	case errors.Is(err, apperrors.ErrInvalidInput):
		resp.Code = "INVALID_INPUT"
		resp.Message = err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		resp.Code = "UNAUTHORIZED"
		resp.Message = "unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		resp.Code = "FORBIDDEN"
		resp.Message = "forbidden"
	default:
		resp.Code = "INTERNAL_ERROR"
		resp.Message = "an internal error occurred"
		resp.Error = err.Error()
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, resp)
}

// WriteMessage writes a 4xx response carrying only a code and message.
func WriteMessage(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// WriteValidationError writes a standardized validation error response.
// It handles ValidationError from the validator package and returns field-level errors.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "request validation failed",
			Fields:  valErr.Fields(),
		})
		return
	}

	WriteMessage(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
}

// DecodeAndValidate reads a size-limited JSON body into dst and validates it.
// On failure it writes a 400 response and returns false, signaling the caller
// to return early.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteMessage(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return false
	}
	if err := validator.Validate(dst); err != nil {
		WriteValidationError(w, err)
		return false
	}
	return true
}

// PathParam returns the named chi URL parameter. If it is empty, a 400 is
// written and false is returned.
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	v := chi.URLParam(r, name)
	if v == "" {
		WriteMessage(w, http.StatusBadRequest, "INVALID_PARAMETER", label+" is required")
		return "", false
	}
	return v, true
}
