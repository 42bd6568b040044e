package service

import (
	"encoding/json"
	"time"
)

// InsightStatus classifies the state of a user's insights for status
// reporting. The cache-derived states (expired, stale, expired_and_stale)
// take precedence over queue-derived states when both apply.
type InsightStatus string

// Possible insight status values
const (
	// StatusCompleted means a valid cached result is servable right now.
	StatusCompleted InsightStatus = "completed"

	// StatusExpired means a fingerprint-matched entry exists but its TTL
	// has elapsed.
	StatusExpired InsightStatus = "expired"

	// StatusStale means an unexpired entry exists but the user's debt
	// portfolio has changed since it was generated.
	StatusStale InsightStatus = "stale"

	// StatusExpiredAndStale means the latest entry is both past its TTL
	// and fingerprint-mismatched.
	StatusExpiredAndStale InsightStatus = "expired_and_stale"

	// StatusProcessing means a worker currently holds a generation job
	// for the user.
	StatusProcessing InsightStatus = "processing"

	// StatusQueued means a generation job is waiting to be claimed.
	StatusQueued InsightStatus = "queued"

	// StatusNotGenerated means no entry and no active job exist.
	StatusNotGenerated InsightStatus = "not_generated"

	// StatusError means status inspection itself failed.
	StatusError InsightStatus = "error"
)

// Completion estimates for in-flight work.
const (
	// estimatedProcessingTime is the assumed duration of a single
	// generation run.
	estimatedProcessingTime = 90 * time.Second

	// estimatedQueueDelay is the assumed wait before a queued job is
	// claimed.
	estimatedQueueDelay = 30 * time.Second
)

// InsightReport is the consumer-facing result served by the insight
// service, whether from cache, a fresh inline generation, or the degraded
// fallback path.
type InsightReport struct {
	Analysis        json.RawMessage `json:"debt_analysis"`
	Recommendations json.RawMessage `json:"recommendations"`
	Metadata        json.RawMessage `json:"metadata"`
	GeneratedAt     time.Time       `json:"generated_at"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
	ModelUsed       string          `json:"model_used,omitempty"`

	// Degraded marks reports produced by the local fallback rather than
	// the full generator.
	Degraded bool `json:"degraded"`
}

// StatusReport describes the state of a user's insights: whether a result
// is servable, why the latest entry is not, or how far along in-flight
// background work is.
type StatusReport struct {
	Status InsightStatus `json:"status"`
	Cached bool          `json:"cached"`

	// GeneratedAt and ExpiresAt describe the latest cache entry, when one exists.
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`

	// FingerprintMatch reports whether the latest entry still matches the
	// user's current portfolio. Only meaningful when an entry exists.
	FingerprintMatch bool `json:"fingerprint_match,omitempty"`

	// ProcessingTime is the generation duration in seconds of the served entry.
	ProcessingTime *float64 `json:"processing_time,omitempty"`

	// StartedAt, Attempts, and EstimatedCompletion describe an active job.
	StartedAt           *time.Time `json:"started_at,omitempty"`
	Attempts            int        `json:"attempts,omitempty"`
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"`

	CacheExists bool   `json:"cache_exists"`
	Message     string `json:"message,omitempty"`
}

// RefreshReceipt acknowledges a queued refresh request.
type RefreshReceipt struct {
	Status              string    `json:"status"`
	Message             string    `json:"message"`
	EstimatedCompletion time.Time `json:"estimated_completion"`
}
