// Package apierror provides standardized error response structures for the API
// plus the sentinel errors services use to classify failures. All errors
// returned to clients go through this package so that internal details
// (stack traces, SQL errors) never leak.
package apierror

import (
	"errors"
	"net/http"
)

// Sentinel errors for the service layer. Handlers translate them to HTTP
// statuses via StatusFor; services wrap them with context using fmt.Errorf
// and %w.
var (
	// ErrInvalidInput covers missing or malformed fields, non-positive
	// quantities and bad timestamp formats.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means a referenced product or operator does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the caller lacks the required role.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInsufficientPayment means the amount tendered does not cover the
	// sale total.
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrConflict signals a lost-update detected during a ledger append; the
	// resolve+append sequence is retried a bounded number of times before it
	// surfaces.
	ErrConflict = errors.New("concurrent ledger update")

	// ErrStorage means the durable store failed; fatal to the request.
	ErrStorage = errors.New("storage failure")
)

// StatusFor maps a service error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInsufficientPayment):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}
