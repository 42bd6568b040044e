package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/debtwise/insight-api/internal/domain"
)

// JobQueue defines the interface for the durable background job queue.
// Claiming is lease-based: ClaimNext must guarantee that concurrent
// claimers never both receive the same job.
// Version: 1.0
type JobQueue interface {
	// Enqueue inserts a new queued job for the given user and task type,
	// unless an active (queued or processing) job already exists for that
	// pair, in which case the existing job is returned unchanged. The
	// idempotent outcome is not an error.
	Enqueue(ctx context.Context, userID uuid.UUID, taskType string, priority int, payload []byte) (*domain.InsightJob, error)

	// GetActiveJob retrieves the most recent queued or processing job for
	// the given user and task type.
	// Returns ErrJobNotFound if no active job exists.
	GetActiveJob(ctx context.Context, userID uuid.UUID, taskType string) (*domain.InsightJob, error)

	// GetLatestJob retrieves the most recent job for the given user and
	// task type regardless of status, so terminal failures stay visible
	// after the job leaves the active set.
	// Returns ErrJobNotFound if the user has no jobs of that type.
	GetLatestJob(ctx context.Context, userID uuid.UUID, taskType string) (*domain.InsightJob, error)

	// ClaimNext atomically claims the highest-priority, oldest queued job
	// with attempts remaining, transitions it to processing, and stamps
	// StartedAt. Exactly one concurrent claimer may receive a given job;
	// rows locked by another claimer are skipped, not waited on.
	// Returns ErrNoJobAvailable when the queue has no claimable job.
	ClaimNext(ctx context.Context, workerID string) (*domain.InsightJob, error)

	// MarkCompleted transitions a processing job to completed, storing the
	// result and stamping CompletedAt.
	// Returns ErrJobNotFound if the job does not exist.
	MarkCompleted(ctx context.Context, jobID uuid.UUID, result []byte) error

	// MarkFailed records a failed attempt: the job returns to queued if
	// attempts remain, otherwise it fails terminally.
	// Returns ErrJobNotFound if the job does not exist.
	MarkFailed(ctx context.Context, jobID uuid.UUID, errorMessage string) error

	// ReapStale forcibly fails processing jobs whose StartedAt is older
	// than the threshold, applying the same retry-or-terminal rule as
	// MarkFailed. Returns the number of jobs reaped.
	ReapStale(ctx context.Context, staleThreshold time.Duration) (int64, error)

	// CountByStatus returns the number of jobs per status, for queue
	// health reporting.
	CountByStatus(ctx context.Context) (map[domain.JobStatus]int64, error)
}
