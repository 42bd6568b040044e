package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// CacheEntryStatus represents the outcome of the generation run that
// produced a cache entry.
type CacheEntryStatus string

// Possible cache entry status values
const (
	CacheEntryStatusCompleted CacheEntryStatus = "completed"
	CacheEntryStatusFailed    CacheEntryStatus = "failed"
)

// DefaultCacheTTL is the time-to-live applied to freshly generated
// insight cache entries.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Common validation errors for CacheEntry
var (
	ErrEmptyCacheEntryID     = errors.New("cache entry ID cannot be empty")
	ErrEmptyCacheEntryUserID = errors.New("cache entry user ID cannot be empty")
	ErrEmptyFingerprint      = errors.New("cache entry fingerprint cannot be empty")
	ErrInvalidCacheStatus    = errors.New("invalid cache entry status")
	ErrZeroExpiry            = errors.New("cache entry expiry cannot be zero")
)

// CacheEntry is a cached insight generation result for a single user.
// Entries are append-only: a new generation run inserts a new entry and
// readers consult only the most recently generated one. The Analysis,
// Recommendations, and Metadata documents are owned by the insight
// generator and treated as opaque here.
type CacheEntry struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"user_id"`
	Analysis        json.RawMessage  `json:"debt_analysis"`
	Recommendations json.RawMessage  `json:"recommendations"`
	Metadata        json.RawMessage  `json:"metadata"`
	Fingerprint     string           `json:"fingerprint"`
	GeneratedAt     time.Time        `json:"generated_at"`
	ExpiresAt       time.Time        `json:"expires_at"`
	Status          CacheEntryStatus `json:"status"`

	// ProcessingTime is the generation duration in seconds.
	ProcessingTime float64 `json:"processing_time"`
	// ModelUsed identifies the generator that produced the entry.
	ModelUsed string `json:"model_used,omitempty"`
	// ErrorLog records generation errors for failed entries.
	ErrorLog string `json:"error_log,omitempty"`
}

// NewCacheEntry creates a completed cache entry for the given user and
// fingerprint, stamping GeneratedAt with the current time and ExpiresAt
// with the given TTL (DefaultCacheTTL if ttl is zero).
// Returns an error if validation fails.
func NewCacheEntry(
	userID uuid.UUID,
	fingerprint string,
	analysis, recommendations, metadata json.RawMessage,
	ttl time.Duration,
) (*CacheEntry, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	now := time.Now().UTC()
	entry := &CacheEntry{
		ID:              uuid.New(),
		UserID:          userID,
		Analysis:        analysis,
		Recommendations: recommendations,
		Metadata:        metadata,
		Fingerprint:     fingerprint,
		GeneratedAt:     now,
		ExpiresAt:       now.Add(ttl),
		Status:          CacheEntryStatusCompleted,
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the CacheEntry has valid data.
// Returns an error if any field fails validation.
func (e *CacheEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyCacheEntryID
	}

	if e.UserID == uuid.Nil {
		return ErrEmptyCacheEntryUserID
	}

	if e.Fingerprint == "" {
		return ErrEmptyFingerprint
	}

	if e.ExpiresAt.IsZero() {
		return ErrZeroExpiry
	}

	if !isValidCacheEntryStatus(e.Status) {
		return ErrInvalidCacheStatus
	}

	return nil
}

// IsExpired reports whether the entry's TTL has elapsed at the given time.
func (e *CacheEntry) IsExpired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// IsValid reports whether the entry may be served for the given portfolio
// fingerprint: it must be unexpired, fingerprint-matched, and the product
// of a successful generation run.
func (e *CacheEntry) IsValid(fingerprint string, now time.Time) bool {
	return !e.IsExpired(now) &&
		e.Fingerprint == fingerprint &&
		e.Status == CacheEntryStatusCompleted
}

// isValidCacheEntryStatus checks if the given status is a valid CacheEntryStatus.
func isValidCacheEntryStatus(status CacheEntryStatus) bool {
	switch status {
	case CacheEntryStatusCompleted, CacheEntryStatusFailed:
		return true
	default:
		return false
	}
}
