package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"text/template"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/debtwise/insight-api/internal/config"
	"github.com/debtwise/insight-api/internal/domain"
	"github.com/debtwise/insight-api/internal/generation"
)

// ErrNoDebts is returned when insight generation is requested for an
// empty portfolio.
var ErrNoDebts = errors.New("debt portfolio cannot be empty")

// InsightGenerator implements the generation.InsightGenerator interface
// using Google's Gemini API to analyze debt portfolios.
type InsightGenerator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// promptTemplate is the parsed template for creating prompts
	promptTemplate *template.Template

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

var _ generation.InsightGenerator = (*InsightGenerator)(nil)

// NewInsightGenerator creates a new InsightGenerator with the provided
// dependencies. When no prompt template path is configured the embedded
// default template is used.
func NewInsightGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (*InsightGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	templateContent := defaultPromptTemplate
	if cfg.PromptTemplatePath != "" {
		raw, err := os.ReadFile(cfg.PromptTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				generation.ErrInvalidConfig, cfg.PromptTemplatePath, err)
		}
		templateContent = string(raw)
	}

	promptTemplate, err := template.New("insights").Parse(templateContent)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &InsightGenerator{
		logger:         logger.With("component", "gemini_generator"),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// GenerateInsights analyzes the user's current debt portfolio via the
// Gemini API and returns the opaque insight documents.
func (g *InsightGenerator) GenerateInsights(
	ctx context.Context,
	userID uuid.UUID,
	debts []*domain.Debt,
) (*generation.Insights, error) {
	prompt, err := g.createPrompt(ctx, userID, debts)
	if err != nil {
		return nil, err
	}

	response, err := g.callGeminiWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	metadata := response.Metadata
	if len(metadata) == 0 {
		metadata, err = json.Marshal(map[string]any{
			"model":        g.model,
			"generated_at": time.Now().UTC(),
		})
		if err != nil {
			metadata = nil
		}
	}

	return &generation.Insights{
		Analysis:        response.DebtAnalysis,
		Recommendations: response.Recommendations,
		Metadata:        metadata,
		ModelUsed:       g.model,
	}, nil
}

// createPrompt renders the portfolio into the prompt template.
func (g *InsightGenerator) createPrompt(
	ctx context.Context,
	userID uuid.UUID,
	debts []*domain.Debt,
) (string, error) {
	if len(debts) == 0 {
		return "", ErrNoDebts
	}

	portfolio, err := json.MarshalIndent(debts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize portfolio: %w", err)
	}

	data := promptData{
		UserID:        userID.String(),
		PortfolioJSON: string(portfolio),
		DebtCount:     len(debts),
	}

	var promptBuffer bytes.Buffer
	if err := g.promptTemplate.Execute(&promptBuffer, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	g.logger.DebugContext(ctx, "prompt generated",
		"user_id", userID,
		"debt_count", len(debts),
		"prompt_length", promptBuffer.Len())

	return promptBuffer.String(), nil
}

// callGeminiWithRetry makes a call to the Gemini API with exponential
// backoff retry logic. Transient errors are retried up to
// config.MaxRetries times; permanent errors (content blocked, malformed
// response) are returned immediately.
func (g *InsightGenerator) callGeminiWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	baseDelaySeconds := g.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		response, transient, err := g.callGemini(ctx, prompt)
		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful", "attempt", attempt+1)
			return response, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attempt+1,
			"error", err)

		if !transient {
			return nil, err
		}
		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, maxRetries)
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attempt+1,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callGemini performs a single API call and classifies any failure as
// transient (retryable) or permanent.
func (g *InsightGenerator) callGemini(
	ctx context.Context,
	prompt string,
) (response *responseSchema, transient bool, err error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		})
	if err != nil {
		// API transport errors are assumed transient.
		return nil, true, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, false, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, false, fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return nil, false, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, false, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}
	if len(parsed.DebtAnalysis) == 0 {
		return nil, false, fmt.Errorf("%w: missing debt_analysis", generation.ErrInvalidResponse)
	}
	if len(parsed.Recommendations) == 0 {
		return nil, false, fmt.Errorf("%w: missing recommendations", generation.ErrInvalidResponse)
	}

	return &parsed, false, nil
}
