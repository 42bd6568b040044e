// Package main implements the entry point for the DebtWise insight API
// server, which serves cached AI debt insights and manages the background
// generation queue.
package main

import (
	"fmt"
	"log"

	"github.com/debtwise/insight-api/internal/config"
	"github.com/debtwise/insight-api/internal/platform/logger"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.run(); err != nil {
		app.logger.Error("Server exited with error", "error", err)
		app.cleanup()
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration, sets up logging, and wires the
// application dependencies.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"worker_count", cfg.Worker.Count,
		"cache_ttl", cfg.Cache.TTL)

	return newApplication(cfg, appLogger)
}
