package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"call-rewind-go/internal/auth"
	"call-rewind-go/internal/metrics"
)

// NewRouter wires the routes. Auth endpoints and share lookups are public;
// everything under /api/year-review requires a valid session.
func NewRouter(h *Handler, sessions *auth.Sessions, refresher auth.TokenRefresher) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", metrics.Handler())

	r.Get("/auth/login", h.Login)
	r.Get("/auth/callback", h.Callback)
	r.Get("/auth/logout", h.Logout)

	r.Post("/api/share", h.CreateShare)
	r.Get("/api/share/{id}", h.GetShare)

	r.Group(func(protected chi.Router) {
		protected.Use(sessions.Require(refresher))
		protected.Get("/api/year-review", h.YearReview)
		protected.Get("/api/year-review/slides", h.Slides)
		protected.Get("/api/year-review/export", h.Export)
	})

	return r
}
