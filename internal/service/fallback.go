package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/debtwise/insight-api/internal/domain"
)

// FallbackStrategy produces a cheap, locally computed insight report for
// use when no cached result is servable and the full generator cannot be
// waited on. Implementations must be infallible: a degraded report is
// always better than an error on the read path.
type FallbackStrategy interface {
	// Summarize builds a degraded report from the user's current debts.
	Summarize(userID uuid.UUID, debts []*domain.Debt) *InsightReport
}

// BasicAnalysisFallback is the default FallbackStrategy. It computes
// portfolio aggregates (totals, weighted average interest, high-priority
// count) and a couple of heuristic recommendations without calling any
// external service.
type BasicAnalysisFallback struct {
	now func() time.Time
}

// NewBasicAnalysisFallback creates a BasicAnalysisFallback using the wall clock.
func NewBasicAnalysisFallback() *BasicAnalysisFallback {
	return &BasicAnalysisFallback{now: func() time.Time { return time.Now().UTC() }}
}

var _ FallbackStrategy = (*BasicAnalysisFallback)(nil)

type basicAnalysis struct {
	TotalDebt            float64   `json:"total_debt"`
	DebtCount            int       `json:"debt_count"`
	AverageInterestRate  float64   `json:"average_interest_rate"`
	TotalMinimumPayments float64   `json:"total_minimum_payments"`
	HighPriorityCount    int       `json:"high_priority_count"`
	GeneratedAt          time.Time `json:"generated_at"`
}

type basicRecommendation struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	RecommendationType string    `json:"recommendation_type"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	PotentialSavings   float64   `json:"potential_savings"`
	PriorityScore      int       `json:"priority_score"`
	IsDismissed        bool      `json:"is_dismissed"`
	CreatedAt          time.Time `json:"created_at"`
}

type fallbackMetadata struct {
	ProcessingTime   float64   `json:"processing_time"`
	FallbackUsed     bool      `json:"fallback_used"`
	GeneratedAt      time.Time `json:"generated_at"`
	Cached           bool      `json:"cached"`
	ProcessingStatus string    `json:"processing_status"`
}

// Summarize implements FallbackStrategy.
func (f *BasicAnalysisFallback) Summarize(userID uuid.UUID, debts []*domain.Debt) *InsightReport {
	now := f.now()

	analysis := basicAnalysis{
		DebtCount:   len(debts),
		GeneratedAt: now,
	}
	for _, debt := range debts {
		analysis.TotalDebt += debt.CurrentBalance
		analysis.TotalMinimumPayments += debt.MinimumPayment
		if debt.IsHighPriority {
			analysis.HighPriorityCount++
		}
	}
	if analysis.TotalDebt > 0 {
		var weighted float64
		for _, debt := range debts {
			weighted += debt.CurrentBalance * debt.InterestRate
		}
		analysis.AverageInterestRate = weighted / analysis.TotalDebt
	}

	metadata := fallbackMetadata{
		ProcessingTime:   0,
		FallbackUsed:     true,
		GeneratedAt:      now,
		Cached:           false,
		ProcessingStatus: "basic_analysis",
	}

	return &InsightReport{
		Analysis:        rawJSON(analysis),
		Recommendations: rawJSON(f.recommendations(userID, debts, now)),
		Metadata:        rawJSON(metadata),
		GeneratedAt:     now,
		Degraded:        true,
	}
}

// recommendations builds the heuristic recommendation list: pay down the
// highest-interest debt when its rate is steep, and always suggest an
// emergency fund.
func (f *BasicAnalysisFallback) recommendations(
	userID uuid.UUID,
	debts []*domain.Debt,
	now time.Time,
) []basicRecommendation {
	recs := make([]basicRecommendation, 0, 2)
	if len(debts) == 0 {
		return recs
	}

	highest := debts[0]
	for _, debt := range debts[1:] {
		if debt.InterestRate > highest.InterestRate {
			highest = debt
		}
	}
	if highest.InterestRate > domain.HighPriorityInterestRate {
		recs = append(recs, basicRecommendation{
			ID:                 "basic_rec_1",
			UserID:             userID.String(),
			RecommendationType: "high_interest_priority",
			Title:              fmt.Sprintf("Prioritize %s (High Interest)", highest.Name),
			Description: fmt.Sprintf(
				"Focus on paying off %s with %.1f%% interest rate to save money on interest charges.",
				highest.Name, highest.InterestRate),
			PotentialSavings: highest.CurrentBalance * 0.1,
			PriorityScore:    9,
			CreatedAt:        now,
		})
	}

	recs = append(recs, basicRecommendation{
		ID:                 "basic_rec_2",
		UserID:             userID.String(),
		RecommendationType: "emergency_fund",
		Title:              "Build Emergency Fund",
		Description:        "Create an emergency fund to avoid taking on additional debt during unexpected expenses.",
		PotentialSavings:   10000,
		PriorityScore:      8,
		CreatedAt:          now,
	})

	return recs
}

// rawJSON marshals v, falling back to an empty object on the (unreachable
// for these types) marshal error so the fallback path stays infallible.
func rawJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}
