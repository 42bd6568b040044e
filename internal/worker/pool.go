package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/debtwise/insight-api/internal/domain"
	"github.com/debtwise/insight-api/internal/generation"
	"github.com/debtwise/insight-api/internal/store"
)

// PoolConfig holds configuration options for the worker pool
type PoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int

	// PollInterval is how long a worker sleeps after finding the queue empty
	PollInterval time.Duration

	// StaleThreshold defines how long a job can be in processing state
	// before the maintenance pass presumes its worker crashed
	StaleThreshold time.Duration

	// MaintenanceInterval defines how often stale jobs are reaped and
	// expired cache entries purged
	MaintenanceInterval time.Duration

	// CacheTTL is the time-to-live applied to generated cache entries
	CacheTTL time.Duration
}

// DefaultPoolConfig returns a PoolConfig with reasonable defaults
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		WorkerCount:         2,
		PollInterval:        30 * time.Second,
		StaleThreshold:      time.Hour,
		MaintenanceInterval: 5 * time.Minute,
		CacheTTL:            domain.DefaultCacheTTL,
	}
}

// Pool manages the worker goroutines that process queued insight jobs.
// It handles graceful shutdown and worker lifecycle.
type Pool struct {
	queue     store.JobQueue
	debtStore store.DebtStore
	cache     store.CacheStore
	generator generation.InsightGenerator
	config    PoolConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

// jobResult is the document stored on a completed job.
type jobResult struct {
	EntryID     string  `json:"entry_id"`
	Fingerprint string  `json:"fingerprint"`
	Seconds     float64 `json:"processing_time"`
}

// NewPool creates a new worker pool with the specified configuration.
func NewPool(
	queue store.JobQueue,
	debtStore store.DebtStore,
	cache store.CacheStore,
	generator generation.InsightGenerator,
	config PoolConfig,
	logger *slog.Logger,
) *Pool {
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		config.WorkerCount = 1
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 30 * time.Second
	}
	if config.StaleThreshold <= 0 {
		config.StaleThreshold = time.Hour
	}
	if config.MaintenanceInterval <= 0 {
		config.MaintenanceInterval = 5 * time.Minute
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = domain.DefaultCacheTTL
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		queue:     queue,
		debtStore: debtStore,
		cache:     cache,
		generator: generator,
		config:    config,
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger.With("component", "worker_pool"),
	}
}

// Start launches the worker goroutines and the maintenance monitor.
func (p *Pool) Start() {
	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.wg.Add(1)
	go p.maintenanceMonitor()

	p.logger.Info("worker pool started",
		"worker_count", p.config.WorkerCount,
		"poll_interval", p.config.PollInterval)
}

// Stop signals all workers to exit and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// worker claims and processes jobs until the pool is stopped. Any single
// job failure is recorded on the job and never breaks the loop.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	workerID := fmt.Sprintf("worker-%d", id)
	logger := p.logger.With("worker_id", workerID)
	logger.Debug("starting worker")

	for {
		select {
		case <-p.ctx.Done():
			logger.Debug("stopping worker")
			return
		default:
		}

		job, err := p.queue.ClaimNext(p.ctx, workerID)
		if err != nil {
			if !errors.Is(err, store.ErrNoJobAvailable) && !errors.Is(err, context.Canceled) {
				logger.Error("failed to claim job", "error", err)
			}
			p.sleep(p.config.PollInterval)
			continue
		}

		p.processJob(job, logger)
	}
}

// processJob runs one claimed job to completion or failure. It uses a
// fresh context so a pool shutdown does not strand the job mid-flight.
func (p *Pool) processJob(job *domain.InsightJob, logger *slog.Logger) {
	ctx := context.Background()
	logger = logger.With(
		"job_id", job.ID,
		"user_id", job.UserID,
		"attempt", job.Attempts+1)

	logger.Info("processing insight job")
	start := time.Now().UTC()

	debts, err := p.debtStore.ListByUserID(ctx, job.UserID)
	if err != nil {
		p.failJob(ctx, job, fmt.Sprintf("failed to load debts: %v", err), logger)
		return
	}

	// An empty portfolio has nothing to analyze. The job still completes
	// so it does not burn retries on a state that cannot succeed.
	if len(debts) == 0 {
		logger.Info("no debts found, completing job without analysis")
		result, err := json.Marshal(map[string]string{"message": "no debts found for analysis"})
		if err != nil {
			result = nil
		}
		if err := p.queue.MarkCompleted(ctx, job.ID, result); err != nil {
			logger.Error("failed to mark job completed", "error", err)
		}
		return
	}

	// Fingerprint is always recomputed from current state; the payload's
	// copy may predate later mutations.
	fingerprint := domain.Fingerprint(job.UserID, debts)

	insights, err := p.generator.GenerateInsights(ctx, job.UserID, debts)
	if err != nil {
		p.failJob(ctx, job, fmt.Sprintf("insight generation failed: %v", err), logger)
		return
	}

	entry, err := domain.NewCacheEntry(
		job.UserID,
		fingerprint,
		insights.Analysis,
		insights.Recommendations,
		insights.Metadata,
		p.config.CacheTTL,
	)
	if err != nil {
		p.failJob(ctx, job, fmt.Sprintf("invalid cache entry: %v", err), logger)
		return
	}
	entry.ProcessingTime = time.Since(start).Seconds()
	entry.ModelUsed = insights.ModelUsed

	if err := p.cache.Insert(ctx, entry); err != nil {
		p.failJob(ctx, job, fmt.Sprintf("failed to cache insights: %v", err), logger)
		return
	}

	result, err := json.Marshal(jobResult{
		EntryID:     entry.ID.String(),
		Fingerprint: fingerprint,
		Seconds:     entry.ProcessingTime,
	})
	if err != nil {
		result = nil
	}

	if err := p.queue.MarkCompleted(ctx, job.ID, result); err != nil {
		logger.Error("failed to mark job completed", "error", err)
		return
	}

	logger.Info("insight job completed",
		"entry_id", entry.ID,
		"processing_time", entry.ProcessingTime)
}

// failJob records a failed attempt. The queue decides whether the job is
// requeued or fails terminally.
func (p *Pool) failJob(ctx context.Context, job *domain.InsightJob, message string, logger *slog.Logger) {
	logger.Error("insight job failed", "reason", message)
	if err := p.queue.MarkFailed(ctx, job.ID, message); err != nil {
		logger.Error("failed to mark job failed", "error", err)
	}
}

// sleep waits for d or until the pool is stopped, whichever comes first.
func (p *Pool) sleep(d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-p.ctx.Done():
	case <-timer.C:
	}
}

// maintenanceMonitor periodically reaps jobs stuck in processing and
// purges expired cache entries.
func (p *Pool) maintenanceMonitor() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.MaintenanceInterval)
	defer ticker.Stop()

	logger := p.logger.With("worker_id", "maintenance")
	logger.Debug("starting maintenance monitor",
		"interval", p.config.MaintenanceInterval,
		"stale_threshold", p.config.StaleThreshold)

	for {
		select {
		case <-p.ctx.Done():
			logger.Debug("stopping maintenance monitor")
			return
		case <-ticker.C:
			p.runMaintenance(logger)
		}
	}
}

// runMaintenance executes one maintenance pass.
func (p *Pool) runMaintenance(logger *slog.Logger) {
	ctx := context.Background()

	reaped, err := p.queue.ReapStale(ctx, p.config.StaleThreshold)
	if err != nil {
		logger.Error("failed to reap stale jobs", "error", err)
	} else if reaped > 0 {
		logger.Info("reaped stale jobs", "count", reaped)
	}

	purged, err := p.cache.PurgeExpired(ctx)
	if err != nil {
		logger.Error("failed to purge expired cache entries", "error", err)
	} else if purged > 0 {
		logger.Info("purged expired cache entries", "count", purged)
	}
}
