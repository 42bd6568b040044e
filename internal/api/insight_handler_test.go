package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/debtwise/insight-api/internal/service"
)

func insightTestRouter(svc service.InsightService) http.Handler {
	handler := NewInsightHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Route("/api/users/{userID}", func(r chi.Router) {
		r.Get("/insights", handler.GetInsights)
		r.Get("/insights/status", handler.GetStatus)
		r.Post("/insights/refresh", handler.Refresh)
		r.Get("/recommendations", handler.GetRecommendations)
	})
	return r
}

func TestGetInsightsHandler(t *testing.T) {
	t.Parallel()
	svc := new(MockInsightService)
	userID := uuid.New()

	report := &service.InsightReport{
		Analysis:        json.RawMessage(`{"total_debt": 17000}`),
		Recommendations: json.RawMessage(`[]`),
		Metadata:        json.RawMessage(`{}`),
		GeneratedAt:     time.Now().UTC(),
		ModelUsed:       "gemini-test",
	}
	svc.On("GetInsights", mock.Anything, userID, service.ModeInline).Return(report, true, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+userID.String()+"/insights", nil)
	rec := httptest.NewRecorder()
	insightTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp InsightsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.FromCache)
	require.NotNil(t, resp.Insights)
	assert.Equal(t, "gemini-test", resp.Insights.ModelUsed)
}

func TestGetInsightsHandlerAsyncMode(t *testing.T) {
	t.Parallel()
	svc := new(MockInsightService)
	userID := uuid.New()

	report := &service.InsightReport{Degraded: true, GeneratedAt: time.Now().UTC()}
	svc.On("GetInsights", mock.Anything, userID, service.ModeAsync).Return(report, false, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+userID.String()+"/insights?mode=async", nil)
	rec := httptest.NewRecorder()
	insightTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetInsightsHandlerInvalidUserID(t *testing.T) {
	t.Parallel()
	svc := new(MockInsightService)

	req := httptest.NewRequest(http.MethodGet, "/api/users/not-a-uuid/insights", nil)
	rec := httptest.NewRecorder()
	insightTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "GetInsights", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetStatusHandler(t *testing.T) {
	t.Parallel()
	svc := new(MockInsightService)
	userID := uuid.New()

	svc.On("Status", mock.Anything, userID).Return(&service.StatusReport{
		Status:      service.StatusNotGenerated,
		CacheExists: false,
		Message:     "insights have not been generated for this user",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+userID.String()+"/insights/status", nil)
	rec := httptest.NewRecorder()
	insightTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report service.StatusReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, service.StatusNotGenerated, report.Status)
}

func TestRefreshHandler(t *testing.T) {
	t.Parallel()
	svc := new(MockInsightService)
	userID := uuid.New()

	receipt := &service.RefreshReceipt{
		Status:              "refresh_queued",
		Message:             "insight refresh has been queued for processing",
		EstimatedCompletion: time.Now().UTC().Add(2 * time.Minute),
	}
	svc.On("Refresh", mock.Anything, userID, true).Return(receipt, nil)

	body := strings.NewReader(`{"force": true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/users/"+userID.String()+"/insights/refresh", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	insightTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var got service.RefreshReceipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "refresh_queued", got.Status)
}

func TestRefreshHandlerEmptyBody(t *testing.T) {
	t.Parallel()
	svc := new(MockInsightService)
	userID := uuid.New()

	receipt := &service.RefreshReceipt{Status: "refresh_queued"}
	svc.On("Refresh", mock.Anything, userID, false).Return(receipt, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/users/"+userID.String()+"/insights/refresh", nil)
	rec := httptest.NewRecorder()
	insightTestRouter(svc).ServeHTTP(rec, req)

	// An absent body means force=false, not a bad request.
	require.Equal(t, http.StatusAccepted, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetRecommendationsHandler(t *testing.T) {
	t.Parallel()
	svc := new(MockInsightService)
	userID := uuid.New()

	recs := json.RawMessage(`[{"title": "Build Emergency Fund"}]`)
	svc.On("GetRecommendations", mock.Anything, userID).Return(recs, false, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+userID.String()+"/recommendations", nil)
	rec := httptest.NewRecorder()
	insightTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecommendationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.FromCache)
	assert.JSONEq(t, string(recs), string(resp.Recommendations))
}
