package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/debtwise/insight-api/internal/domain"
)

// CacheStore defines the interface for insight cache persistence.
// Entries are append-only: Insert never overwrites, and readers consult
// the most recently generated entry for a user.
// Version: 1.0
type CacheStore interface {
	// GetLatestValid retrieves the most recently generated entry for the
	// user only if it is unexpired, fingerprint-matched, and completed.
	// Returns ErrCacheEntryNotFound otherwise; never mutates state.
	GetLatestValid(ctx context.Context, userID uuid.UUID, fingerprint string) (*domain.CacheEntry, error)

	// GetLatestAny retrieves the most recently generated entry for the
	// user regardless of validity, for status reporting.
	// Returns ErrCacheEntryNotFound if the user has no entries.
	GetLatestAny(ctx context.Context, userID uuid.UUID) (*domain.CacheEntry, error)

	// GetByID retrieves an entry by its unique ID.
	// Returns ErrCacheEntryNotFound if the entry does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CacheEntry, error)

	// Insert appends a new entry. It never updates an existing row; a
	// newer entry for the same user supersedes older ones by GeneratedAt.
	// Returns validation errors from the domain CacheEntry if data is invalid.
	Insert(ctx context.Context, entry *domain.CacheEntry) error

	// Invalidate deletes all entries for the user. Called by the
	// data-mutation hook, never by the read path.
	// Returns the number of entries deleted.
	Invalidate(ctx context.Context, userID uuid.UUID) (int64, error)

	// PurgeExpired deletes entries whose ExpiresAt has passed.
	// Safe to run concurrently with reads and writes since entries are
	// immutable. Returns the number of entries deleted.
	PurgeExpired(ctx context.Context) (int64, error)

	// WithTx returns a new CacheStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) CacheStore
}
