package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates the search service connection is not set up.
	ErrNotConfigured = errors.New("search service not configured")

	// ErrRateLimited indicates the search service rejected a request with 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrExportInProgress indicates an export is already running.
	// Only one export runs at a time per process.
	ErrExportInProgress = errors.New("export in progress")

	// ErrUnsupportedFormat indicates an unknown export format.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// TransportError is returned when the search service could not be reached
// or its response could not be read.
type TransportError struct {
	// Op names the failed step ("send", "decode", ...).
	Op string

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// BackendError is returned when the search service answered with a
// non-success status.
type BackendError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Status is the HTTP status text, e.g. "Bad Request".
	Status string

	// Code is the service error code, when the body carried one.
	Code string

	// Message is the service error message, when the body carried one.
	Message string
}

// Error implements error. The service message is preferred over the
// status line.
func (e *BackendError) Error() string {
	if e.Message != "" {
		return "API error: " + e.Message
	}
	status := e.Status
	if status == "" {
		status = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("API error: %d %s", e.StatusCode, status)
}

// Is reports whether the error matches target.
// A 429 response matches ErrRateLimited.
func (e *BackendError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}
