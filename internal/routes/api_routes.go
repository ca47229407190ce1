package routes

import (
	"github.com/go-chi/chi/v5"

	"heli-training/logbook/internal/api"
	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes. Everything but login needs a bearer token.
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, authenticator middleware.Authenticator, limiter *middleware.RateLimiter) {
	staff := middleware.RequireRole(constants.RoleAdmin, constants.RoleInstructor)
	admin := middleware.RequireRole(constants.RoleAdmin)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(limiter.Middleware)

		v1.Post("/auth/login", handlers.Login())

		v1.Group(func(authed chi.Router) {
			authed.Use(middleware.AuthMiddleware(authenticator))

			authed.Post("/auth/logout", handlers.Logout())
			authed.Get("/auth/me", handlers.Me())

			authed.Get("/flights", handlers.ListFlights())
			authed.Get("/flights/{id}", handlers.GetFlight())
			authed.With(staff).Post("/flights", handlers.LogFlight())
			authed.With(admin).Delete("/flights/{id}", handlers.DeleteFlight())
			authed.With(staff).Post("/flights/{id}/validate", handlers.ValidateFlight())
			authed.With(staff).Post("/flights/{id}/reject", handlers.RejectFlight())
			authed.With(admin).Post("/flights/validate-batch", handlers.ValidateBatch())
			authed.With(staff).Get("/validations/pending", handlers.PendingValidations())

			authed.Post("/sync", handlers.TriggerSync())

			authed.Get("/stats", handlers.HourTotals())
			authed.With(staff).Get("/stats/meter", handlers.Meter())
			authed.Get("/progress", handlers.Progress())
			authed.With(staff).Get("/progress/course", handlers.CourseProgress())

			authed.With(admin).Get("/export", handlers.ExportCSV())

			authed.Route("/admin", func(adm chi.Router) {
				adm.Use(admin)
				adm.Get("/logins", handlers.RecentLogins())
				adm.Get("/sync-history", handlers.SyncHistory())
				adm.Get("/jobs/status", handlers.SyncStatus())
			})
		})
	})
}
