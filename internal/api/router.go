package api

import (
	"cf_tracker/internal/api/handler"
	"cf_tracker/internal/app/service"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	syncService *service.SyncService,
	statsService *service.StatsService,
	settingsService *service.SettingsService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	// A full-fleet sync runs inline inside the request, so the surface timeout
	// has to cover the whole sequential iteration.
	r.Use(chiMiddleware.Timeout(30 * time.Minute))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		syncHandler := handler.NewSyncHandler(syncService)
		api.Route("/sync", syncHandler.RegisterRoutes)

		statsHandler := handler.NewStatsHandler(statsService)
		api.Route("/students", statsHandler.RegisterRoutes)

		settingsHandler := handler.NewSettingsHandler(settingsService)
		api.Route("/settings", settingsHandler.RegisterRoutes)
	})

	return r
}
