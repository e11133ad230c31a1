// Package search implements the multi-date journey search engine: a
// bounded-concurrency batch executor, layered retry and timeout policies,
// and the four trip-search strategies built on top of them.
package search

import (
	"errors"
	"fmt"
)

// Validation errors, raised before any batching begins. These are never
// retried.
var (
	ErrMissingStation    = errors.New("origin and destination stations are required")
	ErrInvalidDateRange  = errors.New("invalid date range")
	ErrMissingReturnDate = errors.New("return date is required")
	ErrInvalidNights     = errors.New("nights must be at least 1")
	ErrUnknownTripType   = errors.New("unknown trip type")
)

// ErrTimeout marks an operation abandoned by its deadline. The underlying
// operation is not cancelled; its eventual result is discarded.
var ErrTimeout = errors.New("operation timed out")

// NetworkError is an operation-level failure: retries were exhausted or a
// deadline elapsed. It wraps the last underlying cause and a
// human-readable context string.
type NetworkError struct {
	// Context describes the operation that failed.
	Context string

	// Attempts is how many attempts were made (0 for timeouts).
	Attempts int

	// Err is the last underlying error.
	Err error
}

func (e *NetworkError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("%s: failed after %d attempts: %v", e.Context, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Context, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a pre-batching input validation
// failure rather than a transient one.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingStation) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrMissingReturnDate) ||
		errors.Is(err, ErrInvalidNights) ||
		errors.Is(err, ErrUnknownTripType)
}
