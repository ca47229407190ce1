package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"heli-training/logbook/internal/api"
	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/middleware"
)

// RegisterRoutes builds the HTTP handler of the logbook service.
func RegisterRoutes(deps *api.Dependencies, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/healthCheck", api.HealthCheckHandler(deps.SQL, deps.Services.Cache, deps.Store, upSince))
	r.Handle("/metrics", deps.Metrics.Handler())

	limiter := middleware.NewRateLimiter(deps.Config.RateLimitRPS, deps.Config.RateLimitBurst)
	RegisterAPIRoutes(r, api.NewHandlers(deps), deps.Services.Auth, limiter)

	logging.Info("Router initialized", "cors_origins", deps.Config.CORSOrigins)
	return r
}
