package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/google/uuid"
)

// debtSignature captures the fields of a debt that influence insight
// generation. Fields not listed here (name, timestamps) do not affect
// the fingerprint.
type debtSignature struct {
	ID             string  `json:"id"`
	Balance        float64 `json:"balance"`
	InterestRate   float64 `json:"interest_rate"`
	MinimumPayment float64 `json:"minimum_payment"`
	DebtType       string  `json:"debt_type"`
}

// portfolioSignature is the canonical serialization hashed into a
// fingerprint.
type portfolioSignature struct {
	UserID string          `json:"user_id"`
	Debts  []debtSignature `json:"debts"`
}

// Fingerprint deterministically derives a content hash from a user's
// current debt portfolio. Debts are reduced to their relevant fields and
// sorted by ID before hashing, so identical portfolios produce identical
// fingerprints regardless of input ordering, and any change to a relevant
// field produces a different fingerprint. The function is pure: no I/O,
// no clock.
func Fingerprint(userID uuid.UUID, debts []*Debt) string {
	signatures := make([]debtSignature, 0, len(debts))
	for _, debt := range debts {
		signatures = append(signatures, debtSignature{
			ID:             debt.ID.String(),
			Balance:        debt.CurrentBalance,
			InterestRate:   debt.InterestRate,
			MinimumPayment: debt.MinimumPayment,
			DebtType:       debt.DebtType,
		})
	}

	sort.Slice(signatures, func(i, j int) bool {
		return signatures[i].ID < signatures[j].ID
	})

	payload, err := json.Marshal(portfolioSignature{
		UserID: userID.String(),
		Debts:  signatures,
	})
	if err != nil {
		// Marshaling a struct of strings and floats cannot fail; guard anyway.
		payload = []byte(userID.String())
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
