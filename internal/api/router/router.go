package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/honeypot-ai/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/honeypot-ai/internal/http/middleware"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Honeypot       *handlers.HoneypotHandler
	MetricsHandler http.Handler
	APIKey         string

	CORSAllowedOrigins []string

	// Per-IP limit on the inbound message endpoint. Zero disables it.
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", cfg.Honeypot.HealthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(httpmiddleware.APIKey(cfg.APIKey))
		inbound := api.With()
		if cfg.RateLimitRPS > 0 {
			inbound = api.With(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		inbound.Post("/honeypot", cfg.Honeypot.HandleMessage)
		api.Get("/sessions/{sessionID}", cfg.Honeypot.GetSession)
		api.Get("/evidence", cfg.Honeypot.ListEvidence)
	})

	return r
}
