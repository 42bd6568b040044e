package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewInsightJob(t *testing.T) {
	t.Parallel() // Enable parallel execution
	userID := uuid.New()
	payload := json.RawMessage(`{"fingerprint": "abc123"}`)

	job, err := NewInsightJob(userID, TaskTypeInsights, 2, payload)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if job.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if job.Status != JobStatusQueued {
		t.Errorf("Expected status %s, got %s", JobStatusQueued, job.Status)
	}

	if job.Priority != 2 {
		t.Errorf("Expected priority 2, got %d", job.Priority)
	}

	if job.Attempts != 0 {
		t.Errorf("Expected 0 attempts, got %d", job.Attempts)
	}

	if job.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("Expected max attempts %d, got %d", DefaultMaxAttempts, job.MaxAttempts)
	}

	// Non-positive priority falls back to the default.
	job, err = NewInsightJob(userID, TaskTypeInsights, 0, payload)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if job.Priority != DefaultJobPriority {
		t.Errorf("Expected default priority %d, got %d", DefaultJobPriority, job.Priority)
	}

	// Test invalid userID
	_, err = NewInsightJob(uuid.Nil, TaskTypeInsights, 1, payload)
	if err != ErrEmptyJobUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyJobUserID, err)
	}

	// Test empty task type
	_, err = NewInsightJob(userID, "", 1, payload)
	if err != ErrEmptyJobTaskType {
		t.Errorf("Expected error %v, got %v", ErrEmptyJobTaskType, err)
	}
}

func TestInsightJobLifecycle(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	job, err := NewInsightJob(userID, TaskTypeInsights, DefaultJobPriority, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !job.IsActive() {
		t.Error("Expected queued job to be active")
	}

	job.MarkStarted()
	if job.Status != JobStatusProcessing {
		t.Errorf("Expected status %s after start, got %s", JobStatusProcessing, job.Status)
	}
	if job.StartedAt == nil {
		t.Fatal("Expected StartedAt to be stamped")
	}
	if !job.IsActive() {
		t.Error("Expected processing job to be active")
	}

	result := json.RawMessage(`{"entry_id": "e1"}`)
	job.MarkCompleted(result)
	if job.Status != JobStatusCompleted {
		t.Errorf("Expected status %s after completion, got %s", JobStatusCompleted, job.Status)
	}
	if job.CompletedAt == nil {
		t.Fatal("Expected CompletedAt to be stamped")
	}
	if job.IsActive() {
		t.Error("Expected completed job not to be active")
	}

	seconds := job.ProcessingTime()
	if seconds == nil {
		t.Fatal("Expected processing time for a completed job")
	}
	if *seconds < 0 {
		t.Errorf("Expected non-negative processing time, got %f", *seconds)
	}
}

func TestInsightJobMarkFailedRetries(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	job, err := NewInsightJob(userID, TaskTypeInsights, DefaultJobPriority, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// First two failures return the job to the queue.
	for i := 1; i < DefaultMaxAttempts; i++ {
		job.MarkStarted()
		job.MarkFailed("generation failed")
		if job.Status != JobStatusQueued {
			t.Fatalf("Expected requeue after attempt %d, got status %s", i, job.Status)
		}
		if job.Attempts != i {
			t.Fatalf("Expected %d attempts, got %d", i, job.Attempts)
		}
		if !job.CanRetry() {
			t.Fatalf("Expected retry to be possible after attempt %d", i)
		}
	}

	// The final failure is terminal.
	job.MarkStarted()
	job.MarkFailed("generation failed")
	if job.Status != JobStatusFailed {
		t.Errorf("Expected terminal failure after %d attempts, got status %s", DefaultMaxAttempts, job.Status)
	}
	if job.CanRetry() {
		t.Error("Expected no retry after attempts are exhausted")
	}
	if job.ErrorLog != "generation failed" {
		t.Errorf("Expected error log to be recorded, got %q", job.ErrorLog)
	}
}

func TestInsightJobIsStale(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	started := now.Add(-2 * time.Hour)

	job := &InsightJob{Status: JobStatusProcessing, StartedAt: &started}
	if !job.IsStale(time.Hour, now) {
		t.Error("Expected job processing for 2 hours to be stale at a 1-hour threshold")
	}
	if job.IsStale(3*time.Hour, now) {
		t.Error("Expected job not to be stale at a 3-hour threshold")
	}

	queued := &InsightJob{Status: JobStatusQueued}
	if queued.IsStale(time.Hour, now) {
		t.Error("Expected queued job never to be stale")
	}

	noStart := &InsightJob{Status: JobStatusProcessing}
	if noStart.IsStale(time.Hour, now) {
		t.Error("Expected processing job without StartedAt not to be stale")
	}
}
