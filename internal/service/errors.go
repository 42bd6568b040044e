// Package service provides application-level services orchestrating the
// insight cache, the background job queue, and the generation boundary.
package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrDebtNotFound indicates that the requested debt does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrDebtNotFound = errors.New("debt not found")

	// ErrNotOwned indicates a resource is owned by a different user than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")
)

// InsightServiceError wraps errors from the insight service with context.
type InsightServiceError struct {
	// Operation is the operation that failed (e.g., "get_insights", "refresh")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for InsightServiceError.
func (e *InsightServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("insight service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("insight service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *InsightServiceError) Unwrap() error {
	return e.Err
}

// NewInsightServiceError creates a new InsightServiceError.
// It returns nil if err is nil.
func NewInsightServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &InsightServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
