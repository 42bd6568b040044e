package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/debtwise/insight-api/internal/domain"
	"github.com/debtwise/insight-api/internal/service"
)

func debtTestRouter(svc service.DebtService) http.Handler {
	handler := NewDebtHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Route("/api/users/{userID}/debts", func(r chi.Router) {
		r.Get("/", handler.ListDebts)
		r.Post("/", handler.CreateDebt)
		r.Get("/{debtID}", handler.GetDebt)
		r.Put("/{debtID}", handler.UpdateDebt)
		r.Delete("/{debtID}", handler.DeleteDebt)
	})
	return r
}

func TestListDebtsHandler(t *testing.T) {
	t.Parallel()
	svc := new(MockDebtService)
	userID := uuid.New()

	debt, err := domain.NewDebt(userID, "Visa", "credit_card", 5000, 22.5, 150)
	require.NoError(t, err)
	svc.On("ListDebts", mock.Anything, userID).Return([]*domain.Debt{debt}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+userID.String()+"/debts/", nil)
	rec := httptest.NewRecorder()
	debtTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var debts []DebtResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &debts))
	require.Len(t, debts, 1)
	assert.Equal(t, "Visa", debts[0].Name)
	assert.True(t, debts[0].IsHighPriority)
}

func TestCreateDebtHandler(t *testing.T) {
	t.Parallel()
	svc := new(MockDebtService)
	userID := uuid.New()

	debt, err := domain.NewDebt(userID, "Visa", "credit_card", 5000, 22.5, 150)
	require.NoError(t, err)
	svc.On("CreateDebt", mock.Anything, userID, "Visa", "credit_card", 5000.0, 22.5, 150.0).
		Return(debt, nil)

	body := strings.NewReader(`{
		"name": "Visa",
		"debt_type": "credit_card",
		"current_balance": 5000,
		"interest_rate": 22.5,
		"minimum_payment": 150
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/users/"+userID.String()+"/debts/", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	debtTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created DebtResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, debt.ID.String(), created.ID)
	svc.AssertExpectations(t)
}

func TestCreateDebtHandlerValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"debt_type": "credit_card", "current_balance": 100, "interest_rate": 5, "minimum_payment": 10}`},
		{"negative balance", `{"name": "Visa", "debt_type": "credit_card", "current_balance": -1, "interest_rate": 5, "minimum_payment": 10}`},
		{"interest rate over 100", `{"name": "Visa", "debt_type": "credit_card", "current_balance": 100, "interest_rate": 250, "minimum_payment": 10}`},
		{"malformed JSON", `{"name": "Visa"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := new(MockDebtService)
			userID := uuid.New()

			req := httptest.NewRequest(http.MethodPost, "/api/users/"+userID.String()+"/debts/",
				strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			debtTestRouter(svc).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			svc.AssertNotCalled(t, "CreateDebt",
				mock.Anything, mock.Anything, mock.Anything, mock.Anything,
				mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGetDebtHandlerErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"not found", service.ErrDebtNotFound, http.StatusNotFound},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := new(MockDebtService)
			userID := uuid.New()
			debtID := uuid.New()

			svc.On("GetDebt", mock.Anything, userID, debtID).Return(nil, tc.serviceErr)

			req := httptest.NewRequest(http.MethodGet,
				"/api/users/"+userID.String()+"/debts/"+debtID.String(), nil)
			rec := httptest.NewRecorder()
			debtTestRouter(svc).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestUpdateDebtHandler(t *testing.T) {
	t.Parallel()
	svc := new(MockDebtService)
	userID := uuid.New()
	debtID := uuid.New()

	updated, err := domain.NewDebt(userID, "Visa Platinum", "credit_card", 4200, 19.0, 125)
	require.NoError(t, err)
	updated.ID = debtID

	svc.On("UpdateDebt", mock.Anything, userID, mock.MatchedBy(func(debt *domain.Debt) bool {
		return debt.ID == debtID && debt.Name == "Visa Platinum"
	})).Return(updated, nil)

	body := strings.NewReader(`{
		"name": "Visa Platinum",
		"debt_type": "credit_card",
		"current_balance": 4200,
		"interest_rate": 19.0,
		"minimum_payment": 125
	}`)
	req := httptest.NewRequest(http.MethodPut,
		"/api/users/"+userID.String()+"/debts/"+debtID.String(), body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	debtTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestDeleteDebtHandler(t *testing.T) {
	t.Parallel()
	svc := new(MockDebtService)
	userID := uuid.New()
	debtID := uuid.New()

	svc.On("DeleteDebt", mock.Anything, userID, debtID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete,
		"/api/users/"+userID.String()+"/debts/"+debtID.String(), nil)
	rec := httptest.NewRecorder()
	debtTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestDeleteDebtHandlerInvalidDebtID(t *testing.T) {
	t.Parallel()
	svc := new(MockDebtService)
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodDelete,
		"/api/users/"+userID.String()+"/debts/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	debtTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "DeleteDebt", mock.Anything, mock.Anything, mock.Anything)
}
