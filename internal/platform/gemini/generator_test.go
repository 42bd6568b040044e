package gemini

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"text/template"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debtwise/insight-api/internal/domain"
)

func promptTestGenerator(t *testing.T) *InsightGenerator {
	t.Helper()
	tmpl, err := template.New("prompt").Parse(defaultPromptTemplate)
	require.NoError(t, err)
	return &InsightGenerator{
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		promptTemplate: tmpl,
		model:          "gemini-2.0-flash",
	}
}

func TestCreatePrompt(t *testing.T) {
	t.Parallel()
	g := promptTestGenerator(t)
	userID := uuid.New()

	visa, err := domain.NewDebt(userID, "Visa", "credit_card", 5000, 22.5, 150)
	require.NoError(t, err)
	car, err := domain.NewDebt(userID, "Car Loan", "auto", 12000, 6.5, 300)
	require.NoError(t, err)

	prompt, err := g.createPrompt(context.Background(), userID, []*domain.Debt{visa, car})
	require.NoError(t, err)

	assert.Contains(t, prompt, userID.String())
	assert.Contains(t, prompt, "contains 2 debts")
	assert.Contains(t, prompt, `"Visa"`)
	assert.Contains(t, prompt, `"Car Loan"`)
	assert.Contains(t, prompt, "debt_analysis")
	assert.Contains(t, prompt, "recommendations")
}

func TestCreatePromptRejectsEmptyPortfolio(t *testing.T) {
	t.Parallel()
	g := promptTestGenerator(t)

	_, err := g.createPrompt(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, ErrNoDebts)
}

func TestDefaultPromptTemplateParses(t *testing.T) {
	t.Parallel()
	_, err := template.New("prompt").Parse(defaultPromptTemplate)
	assert.NoError(t, err)
}
