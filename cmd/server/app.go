package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/debtwise/insight-api/internal/config"
	"github.com/debtwise/insight-api/internal/events"
	"github.com/debtwise/insight-api/internal/generation"
	"github.com/debtwise/insight-api/internal/platform/gemini"
	"github.com/debtwise/insight-api/internal/platform/postgres"
	"github.com/debtwise/insight-api/internal/service"
	"github.com/debtwise/insight-api/internal/worker"
)

// application holds the wired dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	insightService service.InsightService
	debtService    service.DebtService
	maintenance    maintenanceDeps
	workerPool     *worker.Pool
}

// maintenanceDeps carries the stores the maintenance endpoints operate on.
type maintenanceDeps struct {
	cacheStore *postgres.PostgresCacheStore
	queue      *postgres.PostgresJobQueue
}

// newApplication wires stores, services, the event emitter, and the worker
// pool from configuration.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, logger); err != nil {
		closeDatabase(db, logger)
		return nil, err
	}

	debtStore := postgres.NewPostgresDebtStore(db, logger)
	cacheStore := postgres.NewPostgresCacheStore(db, logger)
	queue := postgres.NewPostgresJobQueue(db, cfg.Cache.MaxAttempts, logger)

	generator, err := setupGenerator(cfg, logger)
	if err != nil {
		closeDatabase(db, logger)
		return nil, err
	}

	insightService, err := service.NewInsightService(
		debtStore,
		cacheStore,
		queue,
		generator,
		service.NewBasicAnalysisFallback(),
		cfg.Cache.TTL,
		logger,
	)
	if err != nil {
		closeDatabase(db, logger)
		return nil, fmt.Errorf("failed to create insight service: %w", err)
	}

	// Debt mutations reach the cache only through the event emitter.
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(service.NewInvalidationHandler(insightService, logger))

	debtService, err := service.NewDebtService(debtStore, emitter, logger)
	if err != nil {
		closeDatabase(db, logger)
		return nil, fmt.Errorf("failed to create debt service: %w", err)
	}

	pool := worker.NewPool(queue, debtStore, cacheStore, generator, worker.PoolConfig{
		WorkerCount:         cfg.Worker.Count,
		PollInterval:        cfg.Worker.PollInterval,
		StaleThreshold:      cfg.Worker.StaleThreshold,
		MaintenanceInterval: cfg.Worker.MaintenanceInterval,
		CacheTTL:            cfg.Cache.TTL,
	}, logger)

	return &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		insightService: insightService,
		debtService:    debtService,
		maintenance:    maintenanceDeps{cacheStore: cacheStore, queue: queue},
		workerPool:     pool,
	}, nil
}

// setupGenerator builds the insight generator: the Gemini adapter when an
// API key is configured, the local basic-analysis generator otherwise.
func setupGenerator(cfg *config.Config, logger *slog.Logger) (generation.InsightGenerator, error) {
	if cfg.LLM.GeminiAPIKey == "" {
		logger.Warn("no Gemini API key configured, using local fallback generator")
		return newFallbackGenerator(logger), nil
	}

	generator, err := gemini.NewInsightGenerator(context.Background(), logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini generator: %w", err)
	}
	return generator, nil
}

// run starts the worker pool and the HTTP server, blocking until shutdown.
func (app *application) run() error {
	app.workerPool.Start()
	return app.startHTTPServer(context.Background(), app.setupRouter())
}

// cleanup releases application resources in reverse dependency order.
func (app *application) cleanup() {
	app.workerPool.Stop()
	closeDatabase(app.db, app.logger)
}

func closeDatabase(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("failed to close database connection", "error", err)
	}
}
