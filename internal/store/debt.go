package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/debtwise/insight-api/internal/domain"
)

// DebtStore defines the interface for debt data persistence.
// Debts are the inputs to insight generation; any mutation through this
// interface must be followed by a cache invalidation for the owning user.
// Version: 1.0
type DebtStore interface {
	// ListByUserID retrieves all debts belonging to the user, ordered by
	// creation time. Returns an empty slice if the user has no debts.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Debt, error)

	// GetByID retrieves a debt by its unique ID.
	// Returns ErrDebtNotFound if the debt does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Debt, error)

	// Create saves a new debt to the store.
	// Returns validation errors from the domain Debt if data is invalid.
	Create(ctx context.Context, debt *domain.Debt) error

	// Update saves changes to an existing debt.
	// Returns ErrDebtNotFound if the debt does not exist.
	Update(ctx context.Context, debt *domain.Debt) error

	// Delete removes a debt from the store.
	// Returns ErrDebtNotFound if the debt does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new DebtStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) DebtStore
}
