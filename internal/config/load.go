package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over values from the
// config file; both override the built-in defaults.
//
// Environment variables use the DEBTWISE_ prefix with underscores for
// nesting, e.g. DEBTWISE_SERVER_PORT, DEBTWISE_DATABASE_URL,
// DEBTWISE_WORKER_COUNT.
//
// Returns a populated Config struct or an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file in the working directory
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; env vars and defaults apply.
	}

	v.SetEnvPrefix("DEBTWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every configuration key with its built-in
// default. Viper's AutomaticEnv only resolves env vars for keys it
// already knows about, so even mandatory settings without a usable
// default (the database URL, the Gemini API key) are registered here
// with an empty value to make them reachable via environment variables.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.url", "")

	v.SetDefault("cache.ttl", 7*24*time.Hour)
	v.SetDefault("cache.max_attempts", 3)

	v.SetDefault("worker.count", 2)
	v.SetDefault("worker.poll_interval", 30*time.Second)
	v.SetDefault("worker.stale_threshold", time.Hour)
	v.SetDefault("worker.maintenance_interval", 5*time.Minute)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.prompt_template_path", "")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
}
