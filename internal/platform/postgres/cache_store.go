package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/debtwise/insight-api/internal/domain"
	"github.com/debtwise/insight-api/internal/platform/logger"
	"github.com/debtwise/insight-api/internal/store"
)

// PostgresCacheStore implements the store.CacheStore interface
// using a PostgreSQL database as the storage backend. Cache entries are
// immutable rows: validity is re-evaluated on every read and superseding
// happens by inserting a newer row, never by updating one.
type PostgresCacheStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCacheStore creates a new PostgreSQL implementation of the CacheStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCacheStore(db store.DBTX, logger *slog.Logger) *PostgresCacheStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCacheStore{
		db:     db,
		logger: logger.With(slog.String("component", "cache_store")),
	}
}

// Ensure PostgresCacheStore implements store.CacheStore interface
var _ store.CacheStore = (*PostgresCacheStore)(nil)

// cacheEntryColumns is the select list shared by all entry reads.
const cacheEntryColumns = `
	id, user_id, debt_analysis, recommendations, metadata, fingerprint,
	generated_at, expires_at, status, processing_time, model_used, error_log
`

// GetLatestValid implements store.CacheStore.GetLatestValid.
// Validity (unexpired, fingerprint match, completed) is enforced in the
// query itself so a stale entry is never returned.
func (s *PostgresCacheStore) GetLatestValid(
	ctx context.Context,
	userID uuid.UUID,
	fingerprint string,
) (*domain.CacheEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + cacheEntryColumns + `
		FROM cache_entries
		WHERE user_id = $1
		  AND fingerprint = $2
		  AND expires_at > $3
		  AND status = $4
		ORDER BY generated_at DESC
		LIMIT 1
	`

	entry, err := s.scanEntry(s.db.QueryRowContext(
		ctx,
		query,
		userID,
		fingerprint,
		time.Now().UTC(),
		domain.CacheEntryStatusCompleted,
	))
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			log.Debug("no valid cache entry",
				slog.String("user_id", userID.String()))
			return nil, store.ErrCacheEntryNotFound
		}
		log.Error("failed to get valid cache entry",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	return entry, nil
}

// GetLatestAny implements store.CacheStore.GetLatestAny.
func (s *PostgresCacheStore) GetLatestAny(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.CacheEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + cacheEntryColumns + `
		FROM cache_entries
		WHERE user_id = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`

	entry, err := s.scanEntry(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrCacheEntryNotFound
		}
		log.Error("failed to get latest cache entry",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	return entry, nil
}

// GetByID implements store.CacheStore.GetByID.
func (s *PostgresCacheStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.CacheEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + cacheEntryColumns + `
		FROM cache_entries
		WHERE id = $1
	`

	entry, err := s.scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrCacheEntryNotFound
		}
		log.Error("failed to get cache entry by ID",
			slog.String("error", err.Error()),
			slog.String("entry_id", id.String()))
		return nil, MapError(err)
	}

	return entry, nil
}

// Insert implements store.CacheStore.Insert.
// It appends a new entry row; existing rows are never touched.
func (s *PostgresCacheStore) Insert(ctx context.Context, entry *domain.CacheEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("cache entry validation failed during insert",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return err
	}

	query := `
		INSERT INTO cache_entries (
			id, user_id, debt_analysis, recommendations, metadata, fingerprint,
			generated_at, expires_at, status, processing_time, model_used, error_log
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.UserID,
		[]byte(entry.Analysis),
		[]byte(entry.Recommendations),
		[]byte(entry.Metadata),
		entry.Fingerprint,
		entry.GeneratedAt,
		entry.ExpiresAt,
		entry.Status,
		entry.ProcessingTime,
		entry.ModelUsed,
		entry.ErrorLog,
	)
	if err != nil {
		log.Error("failed to insert cache entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()),
			slog.String("user_id", entry.UserID.String()))
		return MapError(err)
	}

	log.Info("cache entry inserted",
		slog.String("entry_id", entry.ID.String()),
		slog.String("user_id", entry.UserID.String()),
		slog.String("status", string(entry.Status)))
	return nil
}

// Invalidate implements store.CacheStore.Invalidate.
// Deleting zero rows is not an error: the user may simply have no entries.
func (s *PostgresCacheStore) Invalidate(ctx context.Context, userID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM cache_entries WHERE user_id = $1`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to invalidate cache entries",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, MapError(err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}

	log.Info("cache entries invalidated",
		slog.String("user_id", userID.String()),
		slog.Int64("deleted", deleted))
	return deleted, nil
}

// PurgeExpired implements store.CacheStore.PurgeExpired.
func (s *PostgresCacheStore) PurgeExpired(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM cache_entries WHERE expires_at < $1`

	result, err := s.db.ExecContext(ctx, query, time.Now().UTC())
	if err != nil {
		log.Error("failed to purge expired cache entries",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}

	if deleted > 0 {
		log.Info("purged expired cache entries", slog.Int64("deleted", deleted))
	}
	return deleted, nil
}

// WithTx implements store.CacheStore.WithTx.
func (s *PostgresCacheStore) WithTx(tx *sql.Tx) store.CacheStore {
	return &PostgresCacheStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanEntry scans a single cache entry row.
func (s *PostgresCacheStore) scanEntry(row *sql.Row) (*domain.CacheEntry, error) {
	var entry domain.CacheEntry
	var status string
	var analysis, recommendations, metadata []byte
	var modelUsed, errorLog sql.NullString

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&analysis,
		&recommendations,
		&metadata,
		&entry.Fingerprint,
		&entry.GeneratedAt,
		&entry.ExpiresAt,
		&status,
		&entry.ProcessingTime,
		&modelUsed,
		&errorLog,
	)
	if err != nil {
		return nil, err
	}

	entry.Analysis = analysis
	entry.Recommendations = recommendations
	entry.Metadata = metadata
	entry.Status = domain.CacheEntryStatus(status)
	entry.ModelUsed = modelUsed.String
	entry.ErrorLog = errorLog.String

	return &entry, nil
}
