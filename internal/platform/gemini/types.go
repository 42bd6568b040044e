package gemini

import "encoding/json"

// promptData represents the data passed to the prompt template
type promptData struct {
	// UserID identifies the portfolio owner
	UserID string

	// PortfolioJSON is the user's debts serialized as a JSON array
	PortfolioJSON string

	// DebtCount is the number of debts in the portfolio
	DebtCount int
}

// responseSchema represents the expected structure of the Gemini API
// response. The analysis and recommendations documents are passed through
// opaquely; only their presence is validated here.
type responseSchema struct {
	// DebtAnalysis is the structured analysis of the portfolio
	DebtAnalysis json.RawMessage `json:"debt_analysis"`

	// Recommendations is an array of actionable recommendation objects
	Recommendations json.RawMessage `json:"recommendations"`

	// Metadata carries optional model-reported details about the run
	Metadata json.RawMessage `json:"metadata,omitempty"`
}
