package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/debtwise/insight-api/internal/api/shared"
	"github.com/debtwise/insight-api/internal/domain"
	"github.com/debtwise/insight-api/internal/service"
)

// CreateDebtRequest represents the request body for creating a new debt
type CreateDebtRequest struct {
	Name           string  `json:"name"            validate:"required,min=1,max=255"`
	DebtType       string  `json:"debt_type"       validate:"required,min=1,max=64"`
	CurrentBalance float64 `json:"current_balance" validate:"gte=0"`
	InterestRate   float64 `json:"interest_rate"   validate:"gte=0,lte=100"`
	MinimumPayment float64 `json:"minimum_payment" validate:"gte=0"`
}

// UpdateDebtRequest represents the request body for updating a debt
type UpdateDebtRequest struct {
	Name           string  `json:"name"            validate:"required,min=1,max=255"`
	DebtType       string  `json:"debt_type"       validate:"required,min=1,max=64"`
	CurrentBalance float64 `json:"current_balance" validate:"gte=0"`
	InterestRate   float64 `json:"interest_rate"   validate:"gte=0,lte=100"`
	MinimumPayment float64 `json:"minimum_payment" validate:"gte=0"`
}

// DebtResponse represents the response data for a debt
type DebtResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	DebtType       string    `json:"debt_type"`
	CurrentBalance float64   `json:"current_balance"`
	InterestRate   float64   `json:"interest_rate"`
	MinimumPayment float64   `json:"minimum_payment"`
	IsHighPriority bool      `json:"is_high_priority"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DebtHandler handles debt-related HTTP requests
type DebtHandler struct {
	debtService service.DebtService
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewDebtHandler creates a new DebtHandler
func NewDebtHandler(debtService service.DebtService, logger *slog.Logger) *DebtHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DebtHandler{
		debtService: debtService,
		validator:   validator.New(),
		logger:      logger.With("component", "debt_handler"),
	}
}

// ListDebts handles GET /api/users/{userID}/debts requests
func (h *DebtHandler) ListDebts(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlePathUUID(w, r, "userID")
	if !ok {
		return
	}

	debts, err := h.debtService.ListDebts(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]DebtResponse, 0, len(debts))
	for _, debt := range debts {
		responses = append(responses, debtToDTOResponse(debt))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetDebt handles GET /api/users/{userID}/debts/{debtID} requests
func (h *DebtHandler) GetDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlePathUUID(w, r, "userID")
	if !ok {
		return
	}
	debtID, ok := handlePathUUID(w, r, "debtID")
	if !ok {
		return
	}

	debt, err := h.debtService.GetDebt(r.Context(), userID, debtID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, debtToDTOResponse(debt))
}

// CreateDebt handles POST /api/users/{userID}/debts requests
func (h *DebtHandler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlePathUUID(w, r, "userID")
	if !ok {
		return
	}

	var req CreateDebtRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	debt, err := h.debtService.CreateDebt(r.Context(), userID,
		req.Name, req.DebtType, req.CurrentBalance, req.InterestRate, req.MinimumPayment)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to create debt", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, debtToDTOResponse(debt))
}

// UpdateDebt handles PUT /api/users/{userID}/debts/{debtID} requests
func (h *DebtHandler) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlePathUUID(w, r, "userID")
	if !ok {
		return
	}
	debtID, ok := handlePathUUID(w, r, "debtID")
	if !ok {
		return
	}

	var req UpdateDebtRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	debt := &domain.Debt{
		ID:             debtID,
		UserID:         userID,
		Name:           req.Name,
		DebtType:       req.DebtType,
		CurrentBalance: req.CurrentBalance,
		InterestRate:   req.InterestRate,
		MinimumPayment: req.MinimumPayment,
		IsHighPriority: req.InterestRate >= domain.HighPriorityInterestRate,
		UpdatedAt:      time.Now().UTC(),
	}

	updated, err := h.debtService.UpdateDebt(r.Context(), userID, debt)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, debtToDTOResponse(updated))
}

// DeleteDebt handles DELETE /api/users/{userID}/debts/{debtID} requests
func (h *DebtHandler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlePathUUID(w, r, "userID")
	if !ok {
		return
	}
	debtID, ok := handlePathUUID(w, r, "debtID")
	if !ok {
		return
	}

	if err := h.debtService.DeleteDebt(r.Context(), userID, debtID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// debtToDTOResponse converts a domain.Debt to a DebtResponse
func debtToDTOResponse(debt *domain.Debt) DebtResponse {
	return DebtResponse{
		ID:             debt.ID.String(),
		UserID:         debt.UserID.String(),
		Name:           debt.Name,
		DebtType:       debt.DebtType,
		CurrentBalance: debt.CurrentBalance,
		InterestRate:   debt.InterestRate,
		MinimumPayment: debt.MinimumPayment,
		IsHighPriority: debt.IsHighPriority,
		CreatedAt:      debt.CreatedAt,
		UpdatedAt:      debt.UpdatedAt,
	}
}
