package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"    validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker"   validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// CacheConfig controls the insight cache lifecycle.
type CacheConfig struct {
	// TTL is how long a generated insight entry remains servable before
	// it expires regardless of fingerprint match.
	TTL time.Duration `mapstructure:"ttl" validate:"required,min=1m"`

	// MaxAttempts is the number of times a background generation job may
	// be attempted before it fails terminally.
	MaxAttempts int `mapstructure:"max_attempts" validate:"required,gte=1,lte=10"`
}

// WorkerConfig controls the background worker pool.
type WorkerConfig struct {
	// Count is the number of concurrent worker loops draining the queue.
	Count int `mapstructure:"count" validate:"required,gte=1,lte=64"`

	// PollInterval is how long a worker sleeps after an empty claim.
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"required,min=100ms"`

	// StaleThreshold is how long a job may sit in processing before the
	// maintenance pass presumes its worker crashed and reaps it.
	StaleThreshold time.Duration `mapstructure:"stale_threshold" validate:"required,min=1m"`

	// MaintenanceInterval is how often the maintenance pass (stale-job
	// reaping, expired-entry purging) runs.
	MaintenanceInterval time.Duration `mapstructure:"maintenance_interval" validate:"required,min=10s"`
}

// LLMConfig contains all LLM integration related settings.
// The group is optional: without an API key the server runs with the
// local fallback generator only.
type LLMConfig struct {
	GeminiAPIKey       string `mapstructure:"gemini_api_key"`
	ModelName          string `mapstructure:"model_name"`
	PromptTemplatePath string `mapstructure:"prompt_template_path"`
	MaxRetries         int    `mapstructure:"max_retries"        validate:"gte=0,lte=10"`
	RetryDelaySeconds  int    `mapstructure:"retry_delay_seconds" validate:"gte=0,lte=60"`
}
