package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current state of a queued insight generation job.
type JobStatus string

// Possible job status values
const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Task type constants
const (
	// TaskTypeInsights is the task type for full insight generation.
	TaskTypeInsights = "insights"
)

// Queue defaults
const (
	// DefaultJobPriority is the priority assigned to routine background work.
	// Lower numbers are claimed first.
	DefaultJobPriority = 5

	// RefreshJobPriority is the elevated priority for user-requested refreshes.
	RefreshJobPriority = 1

	// DefaultMaxAttempts is the number of times a job may be attempted
	// before it fails terminally.
	DefaultMaxAttempts = 3
)

// Common validation errors for InsightJob
var (
	ErrEmptyJobID       = errors.New("job ID cannot be empty")
	ErrEmptyJobUserID   = errors.New("job user ID cannot be empty")
	ErrEmptyJobTaskType = errors.New("job task type cannot be empty")
	ErrInvalidJobStatus = errors.New("invalid job status")
	ErrInvalidAttempts  = errors.New("job max attempts must be positive")
)

// InsightJob is a queued request for background insight generation.
// A job moves queued -> processing -> completed, or back to queued on a
// retryable failure; once attempts are exhausted it fails terminally.
// At most one worker holds a claim on a processing job at a time.
type InsightJob struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	TaskType    string          `json:"task_type"`
	Status      JobStatus       `json:"status"`
	Priority    int             `json:"priority"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorLog    string          `json:"error_log,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// NewInsightJob creates a queued job for the given user and task type.
// Priority values at or below zero fall back to DefaultJobPriority.
// Returns an error if validation fails.
func NewInsightJob(
	userID uuid.UUID,
	taskType string,
	priority int,
	payload json.RawMessage,
) (*InsightJob, error) {
	if priority <= 0 {
		priority = DefaultJobPriority
	}

	now := time.Now().UTC()
	job := &InsightJob{
		ID:          uuid.New(),
		UserID:      userID,
		TaskType:    taskType,
		Status:      JobStatusQueued,
		Priority:    priority,
		Attempts:    0,
		MaxAttempts: DefaultMaxAttempts,
		Payload:     payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the InsightJob has valid data.
// Returns an error if any field fails validation.
func (j *InsightJob) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}

	if j.UserID == uuid.Nil {
		return ErrEmptyJobUserID
	}

	if j.TaskType == "" {
		return ErrEmptyJobTaskType
	}

	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	if j.MaxAttempts <= 0 {
		return ErrInvalidAttempts
	}

	return nil
}

// IsActive reports whether the job is still pending work, i.e. queued or
// currently being processed. Active jobs suppress duplicate enqueues.
func (j *InsightJob) IsActive() bool {
	return j.Status == JobStatusQueued || j.Status == JobStatusProcessing
}

// CanRetry reports whether a failed or queued job has attempts remaining.
func (j *InsightJob) CanRetry() bool {
	return j.Attempts < j.MaxAttempts &&
		(j.Status == JobStatusFailed || j.Status == JobStatusQueued)
}

// MarkStarted transitions the job to processing and stamps StartedAt.
func (j *InsightJob) MarkStarted() {
	now := time.Now().UTC()
	j.Status = JobStatusProcessing
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkCompleted transitions the job to completed, storing the result and
// stamping CompletedAt.
func (j *InsightJob) MarkCompleted(result json.RawMessage) {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.Result = result
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkFailed records a failed attempt. The job returns to queued if
// attempts remain, otherwise it fails terminally.
func (j *InsightJob) MarkFailed(errorMessage string) {
	j.Attempts++
	j.ErrorLog = errorMessage
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now().UTC()

	if j.CanRetry() {
		j.Status = JobStatusQueued
	}
}

// IsStale reports whether a processing job has been running longer than
// the given threshold at the given time, indicating the claiming worker
// likely crashed.
func (j *InsightJob) IsStale(threshold time.Duration, now time.Time) bool {
	if j.Status != JobStatusProcessing || j.StartedAt == nil {
		return false
	}
	return now.Sub(*j.StartedAt) > threshold
}

// ProcessingTime returns the job's processing duration in seconds, or nil
// if the job has not completed.
func (j *InsightJob) ProcessingTime() *float64 {
	if j.StartedAt == nil || j.CompletedAt == nil {
		return nil
	}
	seconds := j.CompletedAt.Sub(*j.StartedAt).Seconds()
	return &seconds
}

// isValidJobStatus checks if the given status is a valid JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusQueued, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}
