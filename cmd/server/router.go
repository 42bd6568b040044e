package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/debtwise/insight-api/internal/api"
	apiMiddleware "github.com/debtwise/insight-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	insightHandler := api.NewInsightHandler(app.insightService, app.logger)
	debtHandler := api.NewDebtHandler(app.debtService, app.logger)
	maintenanceHandler := api.NewMaintenanceHandler(
		app.maintenance.cacheStore,
		app.maintenance.queue,
		app.config.Worker.StaleThreshold,
		app.logger,
	)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users/{userID}", func(r chi.Router) {
			// Insight endpoints
			r.Get("/insights", insightHandler.GetInsights)
			r.Get("/insights/status", insightHandler.GetStatus)
			r.Post("/insights/refresh", insightHandler.Refresh)
			r.Get("/recommendations", insightHandler.GetRecommendations)

			// Debt endpoints
			r.Get("/debts", debtHandler.ListDebts)
			r.Post("/debts", debtHandler.CreateDebt)
			r.Get("/debts/{debtID}", debtHandler.GetDebt)
			r.Put("/debts/{debtID}", debtHandler.UpdateDebt)
			r.Delete("/debts/{debtID}", debtHandler.DeleteDebt)
		})

		// Maintenance endpoints for external schedulers
		r.Route("/maintenance", func(r chi.Router) {
			r.Post("/purge-expired", maintenanceHandler.PurgeExpired)
			r.Post("/reap-stale", maintenanceHandler.ReapStale)
			r.Get("/queue", maintenanceHandler.QueueStats)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
