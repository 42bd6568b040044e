package generation

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/debtwise/insight-api/internal/domain"
)

// Insights is the output of a generation run. Analysis, Recommendations,
// and Metadata are opaque structured documents whose shape is owned by the
// generator; the caching subsystem stores and serves them without
// reinterpretation.
type Insights struct {
	// Analysis is the debt analysis document.
	Analysis json.RawMessage

	// Recommendations is a JSON array of recommendation objects.
	Recommendations json.RawMessage

	// Metadata describes how the result was produced (quality scores,
	// token counts, model internals).
	Metadata json.RawMessage

	// ModelUsed identifies the model or heuristic that produced the result.
	ModelUsed string
}

// InsightGenerator defines the interface for producing debt insights.
// This interface serves as a boundary between the application core and
// external AI/LLM services, following the hexagonal architecture pattern.
type InsightGenerator interface {
	// GenerateInsights produces an analysis of the user's current debt
	// portfolio. The call may be slow and may fail; workers and the
	// inline path handle errors without propagating them to end callers.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can be used for cancellation
	//   - userID: The UUID of the user whose portfolio is analyzed
	//   - debts: The user's current debts at the time of the call
	//
	// Returns:
	//   - The generated Insights document set
	//   - An error if generation fails (see errors.go for specific types)
	GenerateInsights(ctx context.Context, userID uuid.UUID, debts []*domain.Debt) (*Insights, error)
}
