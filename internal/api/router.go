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
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Device endpoints
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Post("/", s.handleCreateDevice)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Delete("/", s.handleDeleteDevice)
				r.Get("/state", s.handleGetDeviceState)
				r.Post("/stop", s.handleStopAction)
				r.Put("/override", s.handleSetOverride)
				r.Delete("/override", s.handleClearOverride)
			})
		})

		// Planning cycle endpoints
		r.Route("/cycle", func(r chi.Router) {
			r.Post("/run", s.handleRunCycle)
			r.Get("/schedule", s.handleGetSchedule)
			r.Get("/states", s.handleGetStates)
		})
	})

	// WebSocket state stream
	r.Get(s.wsCfg.Path, s.handleWebSocket)

	return r
}

// handleHealth returns the server health status. The database check is
// included so load balancers see storage failures without a write path.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": s.version,
	}
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			resp["status"] = "degraded"
			resp["database"] = err.Error()
		} else {
			resp["database"] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
