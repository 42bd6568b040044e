package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/debtwise/insight-api/internal/domain"
	"github.com/debtwise/insight-api/internal/generation"
	"github.com/debtwise/insight-api/internal/store"
)

// GenerationMode controls how GetInsights handles a cache miss with no
// active background job.
type GenerationMode int

const (
	// ModeInline computes the result synchronously, blocking the caller
	// for the duration of the generation run.
	ModeInline GenerationMode = iota

	// ModeAsync enqueues a background job and returns the degraded
	// fallback immediately.
	ModeAsync
)

// jobPayload is the document stored with a queued generation job. The
// fingerprint is informational only; workers recompute it from the user's
// current debts at processing time.
type jobPayload struct {
	Fingerprint string `json:"fingerprint"`
}

// InsightService is the single entry point consumers use to obtain debt
// insights. It decides whether to serve from cache, serve a degraded
// immediate fallback, compute inline, or enqueue background work.
type InsightService interface {
	// GetInsights returns the user's insight report and whether it was
	// served from cache. Storage read failures and generation failures
	// degrade to the fallback report rather than erroring; the error
	// return is reserved for context cancellation.
	GetInsights(ctx context.Context, userID uuid.UUID, mode GenerationMode) (*InsightReport, bool, error)

	// GetRecommendations returns the recommendations document from the
	// same cache entry as GetInsights, and whether it was served from
	// cache. Users with no debts get an empty list.
	GetRecommendations(ctx context.Context, userID uuid.UUID) (json.RawMessage, bool, error)

	// Status inspects the latest cache entry and any active job to report
	// the state of the user's insights. It never fails: internal errors
	// surface as a report with StatusError.
	Status(ctx context.Context, userID uuid.UUID) *StatusReport

	// Refresh enqueues a regeneration at elevated priority. When force is
	// set the existing cache is invalidated first.
	Refresh(ctx context.Context, userID uuid.UUID, force bool) (*RefreshReceipt, error)

	// InvalidateOnMutation deletes the user's cached insights after a debt
	// mutation. Failures are logged and swallowed: a stale cache is
	// preferable to a failed mutation.
	InvalidateOnMutation(ctx context.Context, userID uuid.UUID)
}

// insightService implements the InsightService interface.
type insightService struct {
	debtStore  store.DebtStore
	cacheStore store.CacheStore
	queue      store.JobQueue
	generator  generation.InsightGenerator
	fallback   FallbackStrategy
	cacheTTL   time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// NewInsightService creates a new InsightService.
// It returns an error if any of the required dependencies are nil.
func NewInsightService(
	debtStore store.DebtStore,
	cacheStore store.CacheStore,
	queue store.JobQueue,
	generator generation.InsightGenerator,
	fallback FallbackStrategy,
	cacheTTL time.Duration,
	logger *slog.Logger,
) (InsightService, error) {
	if debtStore == nil {
		return nil, &InsightServiceError{Operation: "create_service", Message: "debtStore cannot be nil"}
	}
	if cacheStore == nil {
		return nil, &InsightServiceError{Operation: "create_service", Message: "cacheStore cannot be nil"}
	}
	if queue == nil {
		return nil, &InsightServiceError{Operation: "create_service", Message: "queue cannot be nil"}
	}
	if generator == nil {
		return nil, &InsightServiceError{Operation: "create_service", Message: "generator cannot be nil"}
	}
	if fallback == nil {
		fallback = NewBasicAnalysisFallback()
	}
	if cacheTTL <= 0 {
		cacheTTL = domain.DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &insightService{
		debtStore:  debtStore,
		cacheStore: cacheStore,
		queue:      queue,
		generator:  generator,
		fallback:   fallback,
		cacheTTL:   cacheTTL,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.With("component", "insight_service"),
	}, nil
}

// GetInsights serves the user's insights with cache-first semantics:
// valid cache entry, then active-job fallback, then inline compute or
// enqueue depending on mode.
func (s *insightService) GetInsights(
	ctx context.Context,
	userID uuid.UUID,
	mode GenerationMode,
) (*InsightReport, bool, error) {
	debts, err := s.debtStore.ListByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load debts, serving degraded report",
			"error", err,
			"user_id", userID)
		return s.fallback.Summarize(userID, nil), false, nil
	}

	fingerprint := domain.Fingerprint(userID, debts)

	entry, err := s.cacheStore.GetLatestValid(ctx, userID, fingerprint)
	if err == nil {
		s.logger.Info("serving cached insights",
			"user_id", userID,
			"entry_id", entry.ID)
		return reportFromEntry(entry), true, nil
	}
	if !errors.Is(err, store.ErrCacheEntryNotFound) {
		s.logger.Error("cache lookup failed, serving degraded report",
			"error", err,
			"user_id", userID)
		return s.fallback.Summarize(userID, debts), false, nil
	}

	job, err := s.queue.GetActiveJob(ctx, userID, domain.TaskTypeInsights)
	if err == nil {
		s.logger.Info("insights already processing, serving degraded report",
			"user_id", userID,
			"job_id", job.ID,
			"job_status", job.Status)
		return s.fallback.Summarize(userID, debts), false, nil
	}
	if !errors.Is(err, store.ErrJobNotFound) {
		s.logger.Error("queue lookup failed, serving degraded report",
			"error", err,
			"user_id", userID)
		return s.fallback.Summarize(userID, debts), false, nil
	}

	if mode == ModeInline {
		report, err := s.generateAndCache(ctx, userID, debts, fingerprint)
		if err == nil {
			return report, false, nil
		}
		s.logger.Warn("inline generation failed, enqueueing background job",
			"error", err,
			"user_id", userID)
	}

	s.enqueue(ctx, userID, fingerprint, domain.DefaultJobPriority)
	return s.fallback.Summarize(userID, debts), false, nil
}

// GetRecommendations serves recommendations from the shared insight cache.
func (s *insightService) GetRecommendations(
	ctx context.Context,
	userID uuid.UUID,
) (json.RawMessage, bool, error) {
	debts, err := s.debtStore.ListByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load debts for recommendations",
			"error", err,
			"user_id", userID)
		return s.fallback.Summarize(userID, nil).Recommendations, false, nil
	}
	if len(debts) == 0 {
		return json.RawMessage(`[]`), false, nil
	}

	fingerprint := domain.Fingerprint(userID, debts)

	entry, err := s.cacheStore.GetLatestValid(ctx, userID, fingerprint)
	if err == nil && len(entry.Recommendations) > 0 {
		s.logger.Info("serving cached recommendations",
			"user_id", userID,
			"entry_id", entry.ID)
		return entry.Recommendations, true, nil
	}
	if err != nil && !errors.Is(err, store.ErrCacheEntryNotFound) {
		s.logger.Error("cache lookup failed, serving degraded recommendations",
			"error", err,
			"user_id", userID)
		return s.fallback.Summarize(userID, debts).Recommendations, false, nil
	}

	if job, err := s.queue.GetActiveJob(ctx, userID, domain.TaskTypeInsights); err == nil {
		s.logger.Info("insights already processing, serving degraded recommendations",
			"user_id", userID,
			"job_id", job.ID)
		return s.fallback.Summarize(userID, debts).Recommendations, false, nil
	}

	report, err := s.generateAndCache(ctx, userID, debts, fingerprint)
	if err != nil {
		s.logger.Warn("inline generation failed, serving degraded recommendations",
			"error", err,
			"user_id", userID)
		s.enqueue(ctx, userID, fingerprint, domain.DefaultJobPriority)
		return s.fallback.Summarize(userID, debts).Recommendations, false, nil
	}
	return report.Recommendations, false, nil
}

// Status reports the state of the user's insights. Cache-derived states
// take precedence over queue-derived ones: an expired or stale entry is
// reported even while a regeneration job is in flight.
func (s *insightService) Status(ctx context.Context, userID uuid.UUID) *StatusReport {
	debts, err := s.debtStore.ListByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load debts for status",
			"error", err,
			"user_id", userID)
		return &StatusReport{Status: StatusError, Message: err.Error()}
	}

	fingerprint := domain.Fingerprint(userID, debts)

	entry, err := s.cacheStore.GetLatestValid(ctx, userID, fingerprint)
	if err == nil {
		processingTime := entry.ProcessingTime
		return &StatusReport{
			Status:           StatusCompleted,
			Cached:           true,
			GeneratedAt:      &entry.GeneratedAt,
			ExpiresAt:        &entry.ExpiresAt,
			FingerprintMatch: true,
			ProcessingTime:   &processingTime,
			CacheExists:      true,
		}
	}
	if !errors.Is(err, store.ErrCacheEntryNotFound) {
		s.logger.Error("cache lookup failed for status",
			"error", err,
			"user_id", userID)
		return &StatusReport{Status: StatusError, Message: err.Error()}
	}

	latest, err := s.cacheStore.GetLatestAny(ctx, userID)
	cacheExists := err == nil
	if err != nil && !errors.Is(err, store.ErrCacheEntryNotFound) {
		s.logger.Error("cache lookup failed for status",
			"error", err,
			"user_id", userID)
		return &StatusReport{Status: StatusError, Message: err.Error()}
	}

	if cacheExists {
		expired := latest.IsExpired(s.now())
		match := latest.Fingerprint == fingerprint

		var status InsightStatus
		var message string
		switch {
		case expired && match:
			status = StatusExpired
			message = "insights exist but have expired"
		case !expired && !match:
			status = StatusStale
			message = "insights exist but the debt portfolio has changed"
		case expired && !match:
			status = StatusExpiredAndStale
			message = "insights exist but are expired and the debt portfolio has changed"
		}
		if status != "" {
			return &StatusReport{
				Status:           status,
				GeneratedAt:      &latest.GeneratedAt,
				ExpiresAt:        &latest.ExpiresAt,
				FingerprintMatch: match,
				CacheExists:      true,
				Message:          message,
			}
		}
		// Unexpired and matched but not served by GetLatestValid means the
		// latest entry records a failed generation run.
	}

	job, err := s.queue.GetActiveJob(ctx, userID, domain.TaskTypeInsights)
	if err == nil {
		estimated := s.estimateCompletion(job)
		return &StatusReport{
			Status:              InsightStatus(job.Status),
			StartedAt:           job.StartedAt,
			Attempts:            job.Attempts,
			EstimatedCompletion: &estimated,
			CacheExists:         cacheExists,
		}
	}
	if !errors.Is(err, store.ErrJobNotFound) {
		s.logger.Error("queue lookup failed for status",
			"error", err,
			"user_id", userID)
		return &StatusReport{Status: StatusError, Message: err.Error()}
	}

	// No active job: a terminally failed run still has to surface as an
	// error instead of pretending nothing was ever generated.
	lastJob, err := s.queue.GetLatestJob(ctx, userID, domain.TaskTypeInsights)
	if err == nil && lastJob.Status == domain.JobStatusFailed {
		message := lastJob.ErrorLog
		if message == "" {
			message = "insight generation failed"
		}
		return &StatusReport{
			Status:      StatusError,
			Attempts:    lastJob.Attempts,
			CacheExists: cacheExists,
			Message:     message,
		}
	}
	if err != nil && !errors.Is(err, store.ErrJobNotFound) {
		s.logger.Error("queue lookup failed for status",
			"error", err,
			"user_id", userID)
		return &StatusReport{Status: StatusError, Message: err.Error()}
	}

	return &StatusReport{
		Status:      StatusNotGenerated,
		CacheExists: cacheExists,
		Message:     "insights have not been generated for this user",
	}
}

// Refresh queues a regeneration at elevated priority, optionally wiping
// the current cache first.
func (s *insightService) Refresh(
	ctx context.Context,
	userID uuid.UUID,
	force bool,
) (*RefreshReceipt, error) {
	debts, err := s.debtStore.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewInsightServiceError("refresh", "failed to load debts", err)
	}
	fingerprint := domain.Fingerprint(userID, debts)

	if force {
		deleted, err := s.cacheStore.Invalidate(ctx, userID)
		if err != nil {
			return nil, NewInsightServiceError("refresh", "failed to invalidate cache", err)
		}
		s.logger.Info("cache invalidated for forced refresh",
			"user_id", userID,
			"deleted", deleted)
	}

	payload, err := json.Marshal(jobPayload{Fingerprint: fingerprint})
	if err != nil {
		return nil, NewInsightServiceError("refresh", "failed to encode job payload", err)
	}

	job, err := s.queue.Enqueue(ctx, userID, domain.TaskTypeInsights, domain.RefreshJobPriority, payload)
	if err != nil {
		return nil, NewInsightServiceError("refresh", "failed to enqueue refresh job", err)
	}

	s.logger.Info("insight refresh queued",
		"user_id", userID,
		"job_id", job.ID,
		"forced", force)

	return &RefreshReceipt{
		Status:              "refresh_queued",
		Message:             "insight refresh has been queued for processing",
		EstimatedCompletion: s.now().Add(estimatedQueueDelay + estimatedProcessingTime),
	}, nil
}

// InvalidateOnMutation wipes the user's cached insights after their debt
// portfolio changed. Errors are logged, never propagated: the triggering
// mutation must not fail because invalidation failed.
func (s *insightService) InvalidateOnMutation(ctx context.Context, userID uuid.UUID) {
	deleted, err := s.cacheStore.Invalidate(ctx, userID)
	if err != nil {
		s.logger.Error("cache invalidation failed, continuing",
			"error", err,
			"user_id", userID)
		return
	}
	s.logger.Info("cache invalidated after debt mutation",
		"user_id", userID,
		"deleted", deleted)
}

// generateAndCache runs the generator inline and appends the result to the
// cache. The caller falls back on error.
func (s *insightService) generateAndCache(
	ctx context.Context,
	userID uuid.UUID,
	debts []*domain.Debt,
	fingerprint string,
) (*InsightReport, error) {
	start := s.now()
	insights, err := s.generator.GenerateInsights(ctx, userID, debts)
	if err != nil {
		return nil, err
	}

	entry, err := domain.NewCacheEntry(
		userID,
		fingerprint,
		insights.Analysis,
		insights.Recommendations,
		insights.Metadata,
		s.cacheTTL,
	)
	if err != nil {
		return nil, err
	}
	entry.ProcessingTime = s.now().Sub(start).Seconds()
	entry.ModelUsed = insights.ModelUsed

	if err := s.cacheStore.Insert(ctx, entry); err != nil {
		// The result is still good; serve it even if caching failed.
		s.logger.Error("failed to cache generated insights",
			"error", err,
			"user_id", userID,
			"entry_id", entry.ID)
		return reportFromEntry(entry), nil
	}

	s.logger.Info("generated and cached fresh insights",
		"user_id", userID,
		"entry_id", entry.ID,
		"processing_time", entry.ProcessingTime)

	return reportFromEntry(entry), nil
}

// enqueue queues a background generation job, tolerating failure: the
// caller is already committed to serving the fallback.
func (s *insightService) enqueue(ctx context.Context, userID uuid.UUID, fingerprint string, priority int) {
	payload, err := json.Marshal(jobPayload{Fingerprint: fingerprint})
	if err != nil {
		s.logger.Error("failed to encode job payload",
			"error", err,
			"user_id", userID)
		return
	}
	job, err := s.queue.Enqueue(ctx, userID, domain.TaskTypeInsights, priority, payload)
	if err != nil {
		s.logger.Error("failed to enqueue generation job",
			"error", err,
			"user_id", userID)
		return
	}
	s.logger.Info("generation job enqueued",
		"user_id", userID,
		"job_id", job.ID,
		"priority", priority)
}

// estimateCompletion predicts when an active job will finish: a
// processing job is assumed to run estimatedProcessingTime from its
// start, a queued job additionally waits estimatedQueueDelay.
func (s *insightService) estimateCompletion(job *domain.InsightJob) time.Time {
	if job.Status == domain.JobStatusProcessing && job.StartedAt != nil {
		return job.StartedAt.Add(estimatedProcessingTime)
	}
	return s.now().Add(estimatedQueueDelay + estimatedProcessingTime)
}

// reportFromEntry converts a cache entry into the consumer-facing report.
func reportFromEntry(entry *domain.CacheEntry) *InsightReport {
	return &InsightReport{
		Analysis:        entry.Analysis,
		Recommendations: entry.Recommendations,
		Metadata:        entry.Metadata,
		GeneratedAt:     entry.GeneratedAt,
		ExpiresAt:       &entry.ExpiresAt,
		ModelUsed:       entry.ModelUsed,
	}
}
