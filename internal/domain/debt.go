package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Debt
var (
	ErrEmptyDebtID          = errors.New("debt ID cannot be empty")
	ErrEmptyDebtUserID      = errors.New("debt user ID cannot be empty")
	ErrEmptyDebtName        = errors.New("debt name cannot be empty")
	ErrNegativeBalance      = errors.New("debt balance cannot be negative")
	ErrNegativeInterestRate = errors.New("debt interest rate cannot be negative")
	ErrNegativeMinPayment   = errors.New("debt minimum payment cannot be negative")
)

// Debt represents a single liability in a user's portfolio. Its balance,
// interest rate, minimum payment, and type are the inputs that insight
// generation depends on; changing any of them changes the portfolio
// fingerprint and invalidates cached insights.
type Debt struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Name           string    `json:"name"`
	DebtType       string    `json:"debt_type"`
	CurrentBalance float64   `json:"current_balance"`
	InterestRate   float64   `json:"interest_rate"`
	MinimumPayment float64   `json:"minimum_payment"`
	IsHighPriority bool      `json:"is_high_priority"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewDebt creates a new Debt with the given attributes.
// It generates a new UUID for the debt ID and sets the
// creation/update timestamps. Returns an error if validation fails.
func NewDebt(
	userID uuid.UUID,
	name, debtType string,
	balance, interestRate, minimumPayment float64,
) (*Debt, error) {
	debt := &Debt{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           name,
		DebtType:       debtType,
		CurrentBalance: balance,
		InterestRate:   interestRate,
		MinimumPayment: minimumPayment,
		IsHighPriority: interestRate >= HighPriorityInterestRate,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := debt.Validate(); err != nil {
		return nil, err
	}

	return debt, nil
}

// HighPriorityInterestRate is the annual percentage rate at or above which
// a debt is flagged as high priority for payoff ordering.
const HighPriorityInterestRate = 15.0

// Validate checks if the Debt has valid data.
// Returns an error if any field fails validation.
func (d *Debt) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDebtID
	}

	if d.UserID == uuid.Nil {
		return ErrEmptyDebtUserID
	}

	if d.Name == "" {
		return ErrEmptyDebtName
	}

	if d.CurrentBalance < 0 {
		return ErrNegativeBalance
	}

	if d.InterestRate < 0 {
		return ErrNegativeInterestRate
	}

	if d.MinimumPayment < 0 {
		return ErrNegativeMinPayment
	}

	return nil
}
