package main

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/debtwise/insight-api/internal/domain"
	"github.com/debtwise/insight-api/internal/generation"
	"github.com/debtwise/insight-api/internal/service"
)

// fallbackGenerator satisfies generation.InsightGenerator using the local
// basic-analysis heuristics. It stands in for the Gemini adapter when no
// API key is configured, so development environments run without external
// dependencies.
type fallbackGenerator struct {
	strategy *service.BasicAnalysisFallback
	logger   *slog.Logger
}

func newFallbackGenerator(logger *slog.Logger) *fallbackGenerator {
	return &fallbackGenerator{
		strategy: service.NewBasicAnalysisFallback(),
		logger:   logger.With("component", "fallback_generator"),
	}
}

var _ generation.InsightGenerator = (*fallbackGenerator)(nil)

func (g *fallbackGenerator) GenerateInsights(
	ctx context.Context,
	userID uuid.UUID,
	debts []*domain.Debt,
) (*generation.Insights, error) {
	g.logger.Debug("generating insights locally",
		"user_id", userID,
		"debt_count", len(debts))

	report := g.strategy.Summarize(userID, debts)
	return &generation.Insights{
		Analysis:        report.Analysis,
		Recommendations: report.Recommendations,
		Metadata:        report.Metadata,
		ModelUsed:       "basic_analysis",
	}, nil
}
