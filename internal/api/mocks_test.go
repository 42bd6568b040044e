package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/debtwise/insight-api/internal/domain"
	"github.com/debtwise/insight-api/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockInsightService mocks the service.InsightService interface
type MockInsightService struct {
	mock.Mock
}

func (m *MockInsightService) GetInsights(
	ctx context.Context,
	userID uuid.UUID,
	mode service.GenerationMode,
) (*service.InsightReport, bool, error) {
	args := m.Called(ctx, userID, mode)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*service.InsightReport), args.Bool(1), args.Error(2)
}

func (m *MockInsightService) GetRecommendations(
	ctx context.Context,
	userID uuid.UUID,
) (json.RawMessage, bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(json.RawMessage), args.Bool(1), args.Error(2)
}

func (m *MockInsightService) Status(ctx context.Context, userID uuid.UUID) *service.StatusReport {
	args := m.Called(ctx, userID)
	return args.Get(0).(*service.StatusReport)
}

func (m *MockInsightService) Refresh(
	ctx context.Context,
	userID uuid.UUID,
	force bool,
) (*service.RefreshReceipt, error) {
	args := m.Called(ctx, userID, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RefreshReceipt), args.Error(1)
}

func (m *MockInsightService) InvalidateOnMutation(ctx context.Context, userID uuid.UUID) {
	m.Called(ctx, userID)
}

// MockDebtService mocks the service.DebtService interface
type MockDebtService struct {
	mock.Mock
}

func (m *MockDebtService) ListDebts(ctx context.Context, userID uuid.UUID) ([]*domain.Debt, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Debt), args.Error(1)
}

func (m *MockDebtService) GetDebt(ctx context.Context, userID, debtID uuid.UUID) (*domain.Debt, error) {
	args := m.Called(ctx, userID, debtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockDebtService) CreateDebt(
	ctx context.Context,
	userID uuid.UUID,
	name, debtType string,
	balance, interestRate, minimumPayment float64,
) (*domain.Debt, error) {
	args := m.Called(ctx, userID, name, debtType, balance, interestRate, minimumPayment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockDebtService) UpdateDebt(
	ctx context.Context,
	userID uuid.UUID,
	debt *domain.Debt,
) (*domain.Debt, error) {
	args := m.Called(ctx, userID, debt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockDebtService) DeleteDebt(ctx context.Context, userID, debtID uuid.UUID) error {
	args := m.Called(ctx, userID, debtID)
	return args.Error(0)
}
