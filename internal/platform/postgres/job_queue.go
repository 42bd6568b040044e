package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/debtwise/insight-api/internal/domain"
	"github.com/debtwise/insight-api/internal/platform/logger"
	"github.com/debtwise/insight-api/internal/store"
)

// PostgresJobQueue implements the store.JobQueue interface using a
// PostgreSQL table as the durable queue. Claiming relies on
// SELECT ... FOR UPDATE SKIP LOCKED so that concurrent workers lease
// disjoint rows without blocking each other.
//
// Unlike the other stores, the queue holds a *sql.DB rather than a DBTX:
// Enqueue and ClaimNext must open their own transactions to make their
// check-then-write sequences atomic.
type PostgresJobQueue struct {
	db          *sql.DB
	maxAttempts int
	logger      *slog.Logger
}

// NewPostgresJobQueue creates a new PostgreSQL implementation of the JobQueue interface.
// maxAttempts caps how many times an enqueued job may be attempted before
// it fails terminally; values below 1 fall back to the domain default.
// If logger is nil, a default logger will be used.
func NewPostgresJobQueue(db *sql.DB, maxAttempts int, logger *slog.Logger) *PostgresJobQueue {
	if db == nil {
		panic("db cannot be nil")
	}

	if maxAttempts < 1 {
		maxAttempts = domain.DefaultMaxAttempts
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobQueue{
		db:          db,
		maxAttempts: maxAttempts,
		logger:      logger.With(slog.String("component", "job_queue")),
	}
}

// Ensure PostgresJobQueue implements store.JobQueue interface
var _ store.JobQueue = (*PostgresJobQueue)(nil)

// jobColumns is the select list shared by all job reads.
const jobColumns = `
	id, user_id, task_type, status, priority, attempts, max_attempts,
	payload, result, error_log, created_at, updated_at, started_at, completed_at
`

// Enqueue implements store.JobQueue.Enqueue.
// The active-job check and the insert run in one transaction, and the
// partial unique index on active (user_id, task_type) pairs backstops the
// race two concurrent enqueues can still lose: the second insert fails
// with a unique violation and the job that won is returned instead.
func (q *PostgresJobQueue) Enqueue(
	ctx context.Context,
	userID uuid.UUID,
	taskType string,
	priority int,
	payload []byte,
) (*domain.InsightJob, error) {
	log := logger.FromContextOrDefault(ctx, q.logger)

	var job *domain.InsightJob

	err := store.RunInTransaction(ctx, q.db, func(ctx context.Context, tx *sql.Tx) error {
		existing, err := q.getActiveJob(ctx, tx, userID, taskType)
		if err == nil {
			log.Debug("active job already exists, returning it",
				slog.String("user_id", userID.String()),
				slog.String("task_type", taskType),
				slog.String("job_id", existing.ID.String()))
			job = existing
			return nil
		}
		if !errors.Is(err, store.ErrJobNotFound) {
			return err
		}

		created, err := domain.NewInsightJob(userID, taskType, priority, payload)
		if err != nil {
			return err
		}
		created.MaxAttempts = q.maxAttempts

		insert := `
			INSERT INTO job_queue (
				id, user_id, task_type, status, priority, attempts, max_attempts,
				payload, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err = tx.ExecContext(
			ctx,
			insert,
			created.ID,
			created.UserID,
			created.TaskType,
			created.Status,
			created.Priority,
			created.Attempts,
			created.MaxAttempts,
			created.Payload,
			created.CreatedAt,
			created.UpdatedAt,
		)
		if err != nil {
			return MapError(err)
		}

		job = created
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// A concurrent enqueue won the insert race.
			existing, lookupErr := q.getActiveJob(ctx, q.db, userID, taskType)
			if lookupErr == nil {
				log.Debug("concurrent enqueue won, returning its job",
					slog.String("user_id", userID.String()),
					slog.String("task_type", taskType),
					slog.String("job_id", existing.ID.String()))
				return existing, nil
			}
		}
		log.Error("failed to enqueue job",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("task_type", taskType))
		return nil, err
	}

	return job, nil
}

// GetActiveJob implements store.JobQueue.GetActiveJob.
func (q *PostgresJobQueue) GetActiveJob(
	ctx context.Context,
	userID uuid.UUID,
	taskType string,
) (*domain.InsightJob, error) {
	return q.getActiveJob(ctx, q.db, userID, taskType)
}

// GetLatestJob implements store.JobQueue.GetLatestJob.
func (q *PostgresJobQueue) GetLatestJob(
	ctx context.Context,
	userID uuid.UUID,
	taskType string,
) (*domain.InsightJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM job_queue
		WHERE user_id = $1
		  AND task_type = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	job, err := scanJob(q.db.QueryRowContext(ctx, query, userID, taskType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrJobNotFound
		}
		return nil, MapError(err)
	}

	return job, nil
}

// getActiveJob runs the active-job lookup against the given DBTX, which
// lets Enqueue reuse it inside its own transaction.
func (q *PostgresJobQueue) getActiveJob(
	ctx context.Context,
	db store.DBTX,
	userID uuid.UUID,
	taskType string,
) (*domain.InsightJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM job_queue
		WHERE user_id = $1
		  AND task_type = $2
		  AND status IN ($3, $4)
		ORDER BY created_at DESC
		LIMIT 1
	`

	job, err := scanJob(db.QueryRowContext(
		ctx,
		query,
		userID,
		taskType,
		domain.JobStatusQueued,
		domain.JobStatusProcessing,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrJobNotFound
		}
		return nil, MapError(err)
	}

	return job, nil
}

// ClaimNext implements store.JobQueue.ClaimNext.
// The eligible-row select locks the row with FOR UPDATE SKIP LOCKED, so a
// row mid-claim by another worker is skipped rather than waited on, and
// the status update commits in the same transaction. Exactly one claimer
// can win a given row.
func (q *PostgresJobQueue) ClaimNext(ctx context.Context, workerID string) (*domain.InsightJob, error) {
	log := logger.FromContextOrDefault(ctx, q.logger)

	var job *domain.InsightJob

	err := store.RunInTransaction(ctx, q.db, func(ctx context.Context, tx *sql.Tx) error {
		query := `
			SELECT ` + jobColumns + `
			FROM job_queue
			WHERE status = $1
			  AND attempts < max_attempts
			ORDER BY priority ASC, created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		`

		candidate, err := scanJob(tx.QueryRowContext(ctx, query, domain.JobStatusQueued))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrNoJobAvailable
			}
			return MapError(err)
		}

		candidate.MarkStarted()

		update := `
			UPDATE job_queue
			SET status = $1, started_at = $2, updated_at = $3
			WHERE id = $4
		`
		result, err := tx.ExecContext(
			ctx,
			update,
			candidate.Status,
			candidate.StartedAt,
			candidate.UpdatedAt,
			candidate.ID,
		)
		if err != nil {
			return MapError(err)
		}
		if err := CheckRowsAffected(result, "job"); err != nil {
			return err
		}

		job = candidate
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNoJobAvailable) {
			return nil, store.ErrNoJobAvailable
		}
		log.Error("failed to claim next job",
			slog.String("error", err.Error()),
			slog.String("worker_id", workerID))
		return nil, err
	}

	log.Info("job claimed",
		slog.String("job_id", job.ID.String()),
		slog.String("user_id", job.UserID.String()),
		slog.String("worker_id", workerID),
		slog.Int("attempt", job.Attempts+1))
	return job, nil
}

// MarkCompleted implements store.JobQueue.MarkCompleted.
func (q *PostgresJobQueue) MarkCompleted(ctx context.Context, jobID uuid.UUID, result []byte) error {
	log := logger.FromContextOrDefault(ctx, q.logger)

	now := time.Now().UTC()
	query := `
		UPDATE job_queue
		SET status = $1, result = $2, completed_at = $3, updated_at = $3
		WHERE id = $4
	`

	res, err := q.db.ExecContext(ctx, query, domain.JobStatusCompleted, result, now, jobID)
	if err != nil {
		log.Error("failed to mark job completed",
			slog.String("error", err.Error()),
			slog.String("job_id", jobID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(res, "job"); err != nil {
		return store.ErrJobNotFound
	}

	log.Info("job completed", slog.String("job_id", jobID.String()))
	return nil
}

// MarkFailed implements store.JobQueue.MarkFailed.
// The retry-or-terminal decision is made in SQL so that the attempt
// increment and the status transition are a single atomic statement.
func (q *PostgresJobQueue) MarkFailed(ctx context.Context, jobID uuid.UUID, errorMessage string) error {
	log := logger.FromContextOrDefault(ctx, q.logger)

	now := time.Now().UTC()
	query := `
		UPDATE job_queue
		SET attempts   = attempts + 1,
		    error_log  = $1,
		    updated_at = $2,
		    status     = CASE
		        WHEN attempts + 1 < max_attempts THEN $3::text
		        ELSE $4::text
		    END
		WHERE id = $5
	`

	res, err := q.db.ExecContext(
		ctx,
		query,
		errorMessage,
		now,
		domain.JobStatusQueued,
		domain.JobStatusFailed,
		jobID,
	)
	if err != nil {
		log.Error("failed to mark job failed",
			slog.String("error", err.Error()),
			slog.String("job_id", jobID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(res, "job"); err != nil {
		return store.ErrJobNotFound
	}

	log.Warn("job attempt failed",
		slog.String("job_id", jobID.String()),
		slog.String("error_log", errorMessage))
	return nil
}

// ReapStale implements store.JobQueue.ReapStale.
// Jobs stuck in processing past the threshold are presumed abandoned by a
// crashed worker and follow the same retry-or-terminal rule as MarkFailed.
func (q *PostgresJobQueue) ReapStale(ctx context.Context, staleThreshold time.Duration) (int64, error) {
	log := logger.FromContextOrDefault(ctx, q.logger)

	now := time.Now().UTC()
	cutoff := now.Add(-staleThreshold)

	query := `
		UPDATE job_queue
		SET attempts   = attempts + 1,
		    error_log  = 'job exceeded processing time limit',
		    updated_at = $1,
		    started_at = NULL,
		    status     = CASE
		        WHEN attempts + 1 < max_attempts THEN $2::text
		        ELSE $3::text
		    END
		WHERE status = $4
		  AND started_at < $5
	`

	res, err := q.db.ExecContext(
		ctx,
		query,
		now,
		domain.JobStatusQueued,
		domain.JobStatusFailed,
		domain.JobStatusProcessing,
		cutoff,
	)
	if err != nil {
		log.Error("failed to reap stale jobs", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	reaped, err := res.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}

	if reaped > 0 {
		log.Info("reaped stale processing jobs", slog.Int64("count", reaped))
	}
	return reaped, nil
}

// CountByStatus implements store.JobQueue.CountByStatus.
func (q *PostgresJobQueue) CountByStatus(ctx context.Context) (map[domain.JobStatus]int64, error) {
	log := logger.FromContextOrDefault(ctx, q.logger)

	query := `
		SELECT status, COUNT(*)
		FROM job_queue
		GROUP BY status
	`

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to count jobs by status", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	counts := make(map[domain.JobStatus]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, MapError(err)
		}
		counts[domain.JobStatus(status)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return counts, nil
}

// scanJob scans a single job row.
func scanJob(row *sql.Row) (*domain.InsightJob, error) {
	var job domain.InsightJob
	var status string
	var payload, result []byte
	var errorLog sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.TaskType,
		&status,
		&job.Priority,
		&job.Attempts,
		&job.MaxAttempts,
		&payload,
		&result,
		&errorLog,
		&job.CreatedAt,
		&job.UpdatedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Status = domain.JobStatus(status)
	job.Payload = payload
	job.Result = result
	job.ErrorLog = errorLog.String
	if startedAt.Valid {
		t := startedAt.Time
		job.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}

	return &job, nil
}
