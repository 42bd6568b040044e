package service

import (
	"context"
	"log/slog"

	"github.com/debtwise/insight-api/internal/events"
)

// InvalidationHandler subscribes to debt mutation events and invalidates
// the owning user's cached insights. Registering it on the emitter is the
// only coupling between the write path and the cache.
type InvalidationHandler struct {
	insights InsightService
	logger   *slog.Logger
}

// NewInvalidationHandler creates an InvalidationHandler bound to the given service.
func NewInvalidationHandler(insights InsightService, logger *slog.Logger) *InvalidationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvalidationHandler{
		insights: insights,
		logger:   logger.With("component", "invalidation_handler"),
	}
}

var _ events.EventHandler = (*InvalidationHandler)(nil)

// HandleEvent implements events.EventHandler. It never returns an error:
// invalidation failures are logged inside the service and must not fail
// the mutation that emitted the event.
func (h *InvalidationHandler) HandleEvent(ctx context.Context, event *events.MutationEvent) error {
	h.logger.Debug("handling debt mutation event",
		"event_id", event.ID,
		"user_id", event.UserID,
		"mutation", event.Mutation)
	h.insights.InvalidateOnMutation(ctx, event.UserID)
	return nil
}
