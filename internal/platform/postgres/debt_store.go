package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/debtwise/insight-api/internal/domain"
	"github.com/debtwise/insight-api/internal/platform/logger"
	"github.com/debtwise/insight-api/internal/store"
)

// PostgresDebtStore implements the store.DebtStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDebtStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDebtStore creates a new PostgreSQL implementation of the DebtStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresDebtStore(db store.DBTX, logger *slog.Logger) *PostgresDebtStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDebtStore{
		db:     db,
		logger: logger.With(slog.String("component", "debt_store")),
	}
}

// Ensure PostgresDebtStore implements store.DebtStore interface
var _ store.DebtStore = (*PostgresDebtStore)(nil)

// ListByUserID implements store.DebtStore.ListByUserID.
func (s *PostgresDebtStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Debt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, debt_type, current_balance, interest_rate,
		       minimum_payment, is_high_priority, created_at, updated_at
		FROM debts
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list debts",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var debts []*domain.Debt
	for rows.Next() {
		var debt domain.Debt
		err := rows.Scan(
			&debt.ID,
			&debt.UserID,
			&debt.Name,
			&debt.DebtType,
			&debt.CurrentBalance,
			&debt.InterestRate,
			&debt.MinimumPayment,
			&debt.IsHighPriority,
			&debt.CreatedAt,
			&debt.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan debt row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		debts = append(debts, &debt)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	// Return empty slice instead of nil if no debts found
	if debts == nil {
		debts = []*domain.Debt{}
	}

	return debts, nil
}

// GetByID implements store.DebtStore.GetByID.
func (s *PostgresDebtStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Debt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, debt_type, current_balance, interest_rate,
		       minimum_payment, is_high_priority, created_at, updated_at
		FROM debts
		WHERE id = $1
	`

	var debt domain.Debt
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&debt.ID,
		&debt.UserID,
		&debt.Name,
		&debt.DebtType,
		&debt.CurrentBalance,
		&debt.InterestRate,
		&debt.MinimumPayment,
		&debt.IsHighPriority,
		&debt.CreatedAt,
		&debt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("debt not found", slog.String("debt_id", id.String()))
			return nil, store.ErrDebtNotFound
		}
		log.Error("failed to get debt by ID",
			slog.String("error", err.Error()),
			slog.String("debt_id", id.String()))
		return nil, MapError(err)
	}

	return &debt, nil
}

// Create implements store.DebtStore.Create.
func (s *PostgresDebtStore) Create(ctx context.Context, debt *domain.Debt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := debt.Validate(); err != nil {
		log.Warn("debt validation failed during create",
			slog.String("error", err.Error()),
			slog.String("debt_id", debt.ID.String()))
		return err
	}

	query := `
		INSERT INTO debts (
			id, user_id, name, debt_type, current_balance, interest_rate,
			minimum_payment, is_high_priority, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		debt.ID,
		debt.UserID,
		debt.Name,
		debt.DebtType,
		debt.CurrentBalance,
		debt.InterestRate,
		debt.MinimumPayment,
		debt.IsHighPriority,
		debt.CreatedAt,
		debt.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create debt",
			slog.String("error", err.Error()),
			slog.String("debt_id", debt.ID.String()),
			slog.String("user_id", debt.UserID.String()))
		return MapError(err)
	}

	log.Info("debt created",
		slog.String("debt_id", debt.ID.String()),
		slog.String("user_id", debt.UserID.String()))
	return nil
}

// Update implements store.DebtStore.Update.
func (s *PostgresDebtStore) Update(ctx context.Context, debt *domain.Debt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := debt.Validate(); err != nil {
		log.Warn("debt validation failed during update",
			slog.String("error", err.Error()),
			slog.String("debt_id", debt.ID.String()))
		return err
	}

	query := `
		UPDATE debts
		SET name = $1, debt_type = $2, current_balance = $3, interest_rate = $4,
		    minimum_payment = $5, is_high_priority = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		debt.Name,
		debt.DebtType,
		debt.CurrentBalance,
		debt.InterestRate,
		debt.MinimumPayment,
		debt.IsHighPriority,
		time.Now().UTC(),
		debt.ID,
	)
	if err != nil {
		log.Error("failed to update debt",
			slog.String("error", err.Error()),
			slog.String("debt_id", debt.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "debt"); err != nil {
		log.Debug("debt not found for update",
			slog.String("debt_id", debt.ID.String()))
		return store.ErrDebtNotFound
	}

	log.Info("debt updated", slog.String("debt_id", debt.ID.String()))
	return nil
}

// Delete implements store.DebtStore.Delete.
func (s *PostgresDebtStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM debts WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete debt",
			slog.String("error", err.Error()),
			slog.String("debt_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "debt"); err != nil {
		log.Debug("debt not found for delete", slog.String("debt_id", id.String()))
		return store.ErrDebtNotFound
	}

	log.Info("debt deleted", slog.String("debt_id", id.String()))
	return nil
}

// WithTx implements store.DebtStore.WithTx.
func (s *PostgresDebtStore) WithTx(tx *sql.Tx) store.DebtStore {
	return &PostgresDebtStore{
		db:     tx,
		logger: s.logger,
	}
}
