package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", s.handleHealth)

		// Pin endpoints
		r.Route("/pins", func(r chi.Router) {
			r.Get("/", s.handleListPins)

			r.Route("/{pin}", func(r chi.Router) {
				r.Get("/", s.handleGetPin)
				r.Put("/mux", s.handleSetMux)
				r.Get("/config", s.handleGetConfig)
				r.Put("/config", s.handleSetConfig)
				r.Post("/claim", s.handleClaimPin)
				r.Post("/release", s.handleReleasePin)
			})
		})

		// Pin-state endpoints
		r.Route("/states", func(r chi.Router) {
			r.Get("/", s.handleListStates)
			r.Post("/{name}/apply", s.handleApplyState)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
