package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/debtwise/insight-api/internal/api/shared"
	"github.com/debtwise/insight-api/internal/store"
)

// PurgeExpiredResponse reports the outcome of an expired-entry purge.
type PurgeExpiredResponse struct {
	Purged int64 `json:"purged"`
}

// ReapStaleResponse reports the outcome of a stale-job reap.
type ReapStaleResponse struct {
	Reaped int64 `json:"reaped"`
}

// QueueStatsResponse reports job counts per status.
type QueueStatsResponse struct {
	Counts map[string]int64 `json:"counts"`
}

// MaintenanceHandler exposes the maintenance operations that an external
// scheduler may drive in addition to the in-process maintenance monitor.
type MaintenanceHandler struct {
	cacheStore     store.CacheStore
	queue          store.JobQueue
	staleThreshold time.Duration
	logger         *slog.Logger
}

// NewMaintenanceHandler creates a new MaintenanceHandler
func NewMaintenanceHandler(
	cacheStore store.CacheStore,
	queue store.JobQueue,
	staleThreshold time.Duration,
	logger *slog.Logger,
) *MaintenanceHandler {
	if staleThreshold <= 0 {
		staleThreshold = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MaintenanceHandler{
		cacheStore:     cacheStore,
		queue:          queue,
		staleThreshold: staleThreshold,
		logger:         logger.With("component", "maintenance_handler"),
	}
}

// PurgeExpired handles POST /api/maintenance/purge-expired requests
func (h *MaintenanceHandler) PurgeExpired(w http.ResponseWriter, r *http.Request) {
	purged, err := h.cacheStore.PurgeExpired(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to purge expired entries", err)
		return
	}

	h.logger.Info("expired cache entries purged via API", "count", purged)
	shared.RespondWithJSON(w, r, http.StatusOK, PurgeExpiredResponse{Purged: purged})
}

// ReapStale handles POST /api/maintenance/reap-stale requests
func (h *MaintenanceHandler) ReapStale(w http.ResponseWriter, r *http.Request) {
	reaped, err := h.queue.ReapStale(r.Context(), h.staleThreshold)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to reap stale jobs", err)
		return
	}

	h.logger.Info("stale jobs reaped via API", "count", reaped)
	shared.RespondWithJSON(w, r, http.StatusOK, ReapStaleResponse{Reaped: reaped})
}

// QueueStats handles GET /api/maintenance/queue requests
func (h *MaintenanceHandler) QueueStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.queue.CountByStatus(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to read queue stats", err)
		return
	}

	stats := make(map[string]int64, len(counts))
	for status, count := range counts {
		stats[string(status)] = count
	}
	shared.RespondWithJSON(w, r, http.StatusOK, QueueStatsResponse{Counts: stats})
}
