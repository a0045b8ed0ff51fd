/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, echoed in handler logs as request_id
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for a browser calculator
  5. RateLimit:  Simulation routes only (429 when exceeded)

ROUTE GROUPS:
  /api/health, /api/curves  Catalog
  /api/presets/*            Built-in scenarios
  /api/simulations/*        Ad-hoc simulations
  /api/companies/*          Company profiles

SECURITY NOTE:
  No authentication middleware. All endpoints are public; nothing stored
  is sensitive beyond company market assumptions.

SEE ALSO:
  - handlers.go: Handler implementations
  - ratelimit.go: Simulation throttling
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions carries the configurable parts of the middleware stack.
type RouterOptions struct {
	AllowedOrigins []string
	RateLimitRPS   float64 // 0 disables limiting
	RateLimitBurst int
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	limited := RateLimit(opts.RateLimitRPS, opts.RateLimitBurst)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/curves", h.ListCurves)

		// Preset routes
		r.Route("/presets", func(r chi.Router) {
			r.Get("/", h.ListPresets)
			r.Get("/{id}", h.GetPreset)
			r.With(limited).Post("/{id}/simulate", h.SimulatePreset)
		})

		// Simulation routes
		r.Route("/simulations", func(r chi.Router) {
			r.Use(limited)
			r.Post("/", h.Simulate)
			r.Post("/compare", h.Compare)
		})

		// Company routes
		r.Route("/companies", func(r chi.Router) {
			r.Get("/", h.ListCompanies)
			r.Post("/", h.CreateCompany)
			r.Get("/{id}", h.GetCompany)
			r.Delete("/{id}", h.DeleteCompany)
			r.With(limited).Post("/{id}/simulations", h.SimulateCompany)
		})
	})

	return r
}
