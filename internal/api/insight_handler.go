package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/debtwise/insight-api/internal/api/shared"
	"github.com/debtwise/insight-api/internal/service"
)

// InsightsResponse wraps an insight report with cache provenance.
type InsightsResponse struct {
	Insights  *service.InsightReport `json:"insights"`
	FromCache bool                   `json:"from_cache"`
}

// RecommendationsResponse wraps the recommendations document with cache provenance.
type RecommendationsResponse struct {
	Recommendations json.RawMessage `json:"recommendations"`
	FromCache       bool            `json:"from_cache"`
}

// RefreshRequest represents the request body for a refresh. The body is
// optional; an absent body means force=false.
type RefreshRequest struct {
	Force bool `json:"force"`
}

// InsightHandler handles insight-related HTTP requests
type InsightHandler struct {
	insightService service.InsightService
	logger         *slog.Logger
}

// NewInsightHandler creates a new InsightHandler
func NewInsightHandler(insightService service.InsightService, logger *slog.Logger) *InsightHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightHandler{
		insightService: insightService,
		logger:         logger.With("component", "insight_handler"),
	}
}

// GetInsights handles GET /api/users/{userID}/insights requests.
// The optional ?mode=async query parameter requests background generation
// on a cache miss instead of blocking on the generator.
func (h *InsightHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlePathUUID(w, r, "userID")
	if !ok {
		return
	}

	mode := service.ModeInline
	if r.URL.Query().Get("mode") == "async" {
		mode = service.ModeAsync
	}

	report, fromCache, err := h.insightService.GetInsights(r.Context(), userID, mode)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, InsightsResponse{
		Insights:  report,
		FromCache: fromCache,
	})
}

// GetRecommendations handles GET /api/users/{userID}/recommendations requests.
func (h *InsightHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlePathUUID(w, r, "userID")
	if !ok {
		return
	}

	recommendations, fromCache, err := h.insightService.GetRecommendations(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RecommendationsResponse{
		Recommendations: recommendations,
		FromCache:       fromCache,
	})
}

// GetStatus handles GET /api/users/{userID}/insights/status requests.
func (h *InsightHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlePathUUID(w, r, "userID")
	if !ok {
		return
	}

	report := h.insightService.Status(r.Context(), userID)
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// Refresh handles POST /api/users/{userID}/insights/refresh requests.
// Processing happens asynchronously, so the handler responds 202 Accepted.
func (h *InsightHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlePathUUID(w, r, "userID")
	if !ok {
		return
	}

	var req RefreshRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	receipt, err := h.insightService.Refresh(r.Context(), userID, req.Force)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to queue insight refresh", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, receipt)
}
