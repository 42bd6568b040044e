package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// A not-found result is a normal, expected outcome of a lookup, not a
	// storage failure; callers distinguish it from ErrStorageUnavailable.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrStorageUnavailable is returned when the persistence layer itself is
	// unreachable (connection refused, connection dropped, pool exhausted).
	// Unlike the not-found family this is a real failure and is surfaced to
	// callers rather than treated as a miss.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNoJobAvailable is returned by JobQueue.ClaimNext when no claimable
	// job exists. Like ErrNotFound, this is a normal outcome: workers back
	// off and poll again.
	ErrNoJobAvailable = errors.New("no job available to claim")

	// Entity-specific "not found" errors

	// ErrCacheEntryNotFound indicates that no insight cache entry matched the lookup.
	ErrCacheEntryNotFound = fmt.Errorf("%w: cache entry", ErrNotFound)

	// ErrJobNotFound indicates that the requested queue job does not exist.
	ErrJobNotFound = fmt.Errorf("%w: job", ErrNotFound)

	// ErrDebtNotFound indicates that the requested debt does not exist.
	ErrDebtNotFound = fmt.Errorf("%w: debt", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStorageUnavailable checks if the error indicates the persistence layer
// is unreachable rather than a logical miss or constraint violation.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
