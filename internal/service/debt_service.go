package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/debtwise/insight-api/internal/domain"
	"github.com/debtwise/insight-api/internal/events"
	"github.com/debtwise/insight-api/internal/store"
)

// DebtService provides debt CRUD operations. Every successful mutation
// emits a MutationEvent so cached insights for the owner are invalidated
// after the write commits.
type DebtService interface {
	// ListDebts retrieves all debts belonging to the user.
	ListDebts(ctx context.Context, userID uuid.UUID) ([]*domain.Debt, error)

	// GetDebt retrieves a debt owned by the user.
	GetDebt(ctx context.Context, userID, debtID uuid.UUID) (*domain.Debt, error)

	// CreateDebt creates a new debt for the user.
	CreateDebt(ctx context.Context, userID uuid.UUID, name, debtType string,
		balance, interestRate, minimumPayment float64) (*domain.Debt, error)

	// UpdateDebt saves changes to a debt owned by the user.
	UpdateDebt(ctx context.Context, userID uuid.UUID, debt *domain.Debt) (*domain.Debt, error)

	// DeleteDebt removes a debt owned by the user.
	DeleteDebt(ctx context.Context, userID, debtID uuid.UUID) error
}

// debtService implements the DebtService interface.
type debtService struct {
	debtStore store.DebtStore
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewDebtService creates a new DebtService.
// It returns an error if any of the required dependencies are nil.
func NewDebtService(
	debtStore store.DebtStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (DebtService, error) {
	if debtStore == nil {
		return nil, &InsightServiceError{Operation: "create_service", Message: "debtStore cannot be nil"}
	}
	if emitter == nil {
		return nil, &InsightServiceError{Operation: "create_service", Message: "emitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &debtService{
		debtStore: debtStore,
		emitter:   emitter,
		logger:    logger.With("component", "debt_service"),
	}, nil
}

func (s *debtService) ListDebts(ctx context.Context, userID uuid.UUID) ([]*domain.Debt, error) {
	debts, err := s.debtStore.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewInsightServiceError("list_debts", "failed to list debts", err)
	}
	return debts, nil
}

func (s *debtService) GetDebt(ctx context.Context, userID, debtID uuid.UUID) (*domain.Debt, error) {
	debt, err := s.debtStore.GetByID(ctx, debtID)
	if err != nil {
		if errors.Is(err, store.ErrDebtNotFound) {
			return nil, ErrDebtNotFound
		}
		return nil, NewInsightServiceError("get_debt", "failed to retrieve debt", err)
	}
	if debt.UserID != userID {
		return nil, ErrNotOwned
	}
	return debt, nil
}

func (s *debtService) CreateDebt(
	ctx context.Context,
	userID uuid.UUID,
	name, debtType string,
	balance, interestRate, minimumPayment float64,
) (*domain.Debt, error) {
	debt, err := domain.NewDebt(userID, name, debtType, balance, interestRate, minimumPayment)
	if err != nil {
		return nil, NewInsightServiceError("create_debt", "invalid debt data", err)
	}

	if err := s.debtStore.Create(ctx, debt); err != nil {
		return nil, NewInsightServiceError("create_debt", "failed to save debt", err)
	}

	s.logger.Info("debt created",
		"debt_id", debt.ID,
		"user_id", userID)

	s.emitMutation(ctx, userID, events.MutationCreated, debt.ID)
	return debt, nil
}

func (s *debtService) UpdateDebt(
	ctx context.Context,
	userID uuid.UUID,
	debt *domain.Debt,
) (*domain.Debt, error) {
	existing, err := s.GetDebt(ctx, userID, debt.ID)
	if err != nil {
		return nil, err
	}
	debt.UserID = existing.UserID
	debt.CreatedAt = existing.CreatedAt

	if err := s.debtStore.Update(ctx, debt); err != nil {
		if errors.Is(err, store.ErrDebtNotFound) {
			return nil, ErrDebtNotFound
		}
		return nil, NewInsightServiceError("update_debt", "failed to save debt", err)
	}

	s.logger.Info("debt updated",
		"debt_id", debt.ID,
		"user_id", userID)

	s.emitMutation(ctx, userID, events.MutationUpdated, debt.ID)
	return debt, nil
}

func (s *debtService) DeleteDebt(ctx context.Context, userID, debtID uuid.UUID) error {
	if _, err := s.GetDebt(ctx, userID, debtID); err != nil {
		return err
	}

	if err := s.debtStore.Delete(ctx, debtID); err != nil {
		if errors.Is(err, store.ErrDebtNotFound) {
			return ErrDebtNotFound
		}
		return NewInsightServiceError("delete_debt", "failed to delete debt", err)
	}

	s.logger.Info("debt deleted",
		"debt_id", debtID,
		"user_id", userID)

	s.emitMutation(ctx, userID, events.MutationDeleted, debtID)
	return nil
}

// emitMutation publishes a MutationEvent for a committed write. Emission
// failures are logged and swallowed so the mutation itself still succeeds.
func (s *debtService) emitMutation(ctx context.Context, userID uuid.UUID, mutation string, entityID uuid.UUID) {
	event := events.NewMutationEvent(userID, mutation, entityID)
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit mutation event, continuing",
			"error", err,
			"event_id", event.ID,
			"user_id", userID,
			"mutation", mutation)
	}
}
