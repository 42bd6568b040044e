package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Database URL has no default and must come from the environment.
	t.Setenv("DEBTWISE_DATABASE_URL", "postgres://localhost:5432/insights?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 3, cfg.Cache.MaxAttempts)
	assert.Equal(t, 2, cfg.Worker.Count)
	assert.Equal(t, 30*time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, time.Hour, cfg.Worker.StaleThreshold)
	assert.Equal(t, 5*time.Minute, cfg.Worker.MaintenanceInterval)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.ModelName)
	assert.Empty(t, cfg.LLM.GeminiAPIKey, "the LLM key is optional")
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("DEBTWISE_DATABASE_URL", "postgres://localhost:5432/insights?sslmode=disable")
	t.Setenv("DEBTWISE_SERVER_PORT", "9090")
	t.Setenv("DEBTWISE_SERVER_LOG_LEVEL", "debug")
	t.Setenv("DEBTWISE_WORKER_COUNT", "8")
	t.Setenv("DEBTWISE_CACHE_TTL", "48h")
	t.Setenv("DEBTWISE_LLM_GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 8, cfg.Worker.Count)
	assert.Equal(t, 48*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "test-key", cfg.LLM.GeminiAPIKey)
}

func TestLoadEnvOnlySettings(t *testing.T) {
	// Settings with no usable built-in default must still be readable
	// from the environment alone, without a config file.
	t.Setenv("DEBTWISE_DATABASE_URL", "postgres://db.internal:5432/insights")
	t.Setenv("DEBTWISE_LLM_GEMINI_API_KEY", "env-only-key")
	t.Setenv("DEBTWISE_LLM_PROMPT_TEMPLATE_PATH", "/etc/debtwise/prompt.tmpl")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://db.internal:5432/insights", cfg.Database.URL)
	assert.Equal(t, "env-only-key", cfg.LLM.GeminiAPIKey)
	assert.Equal(t, "/etc/debtwise/prompt.tmpl", cfg.LLM.PromptTemplatePath)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("DEBTWISE_DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "DEBTWISE_SERVER_PORT", "70000"},
		{"unknown log level", "DEBTWISE_SERVER_LOG_LEVEL", "verbose"},
		{"zero workers", "DEBTWISE_WORKER_COUNT", "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DEBTWISE_DATABASE_URL", "postgres://localhost:5432/insights?sslmode=disable")
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
