// Package httpapi exposes the service finder over a small JSON HTTP API.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/randalmurphal/service-finder/internal/search"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Service *search.Service
	Logger  *slog.Logger
}

// NewRouter creates the API router.
func NewRouter(deps *Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	h := &handlers{service: deps.Service, logger: logger}

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", h.search)
		r.Get("/quick-starts", h.quickStarts)
		r.Get("/intents", h.intents)
		r.Get("/health", h.health)
	})

	return r
}
