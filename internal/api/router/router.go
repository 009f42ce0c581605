package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/apexcrm/leadflow/internal/auth"
	httpmiddleware "github.com/apexcrm/leadflow/internal/http/middleware"
	"github.com/apexcrm/leadflow/internal/leads"
	"github.com/apexcrm/leadflow/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger       *logging.Logger
	LeadsHandler *leads.Handler
	AuthHandler  *auth.Handler

	// Verifier gates the protected API group. Required.
	Verifier httpmiddleware.TokenVerifier

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler

	CORSAllowedOrigins []string

	// PublicRatePerSec and PublicRateBurst throttle the unauthenticated
	// lead capture endpoint. Zero disables throttling.
	PublicRatePerSec float64
	PublicRateBurst  int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints: health, metrics, login, and the lead capture
	// form posted by marketing sites.
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.AuthHandler != nil {
			public.Post("/api/auth/login", cfg.AuthHandler.Login)
		}

		capture := public
		if cfg.PublicRatePerSec > 0 && cfg.PublicRateBurst > 0 {
			capture = public.With(httpmiddleware.RateLimit(cfg.PublicRatePerSec, cfg.PublicRateBurst))
		}
		capture.Post("/api/leads", cfg.LeadsHandler.Create)
	})

	// Everything else requires a bearer token.
	r.Group(func(protected chi.Router) {
		protected.Use(httpmiddleware.BearerAuth(cfg.Verifier))

		if cfg.AuthHandler != nil {
			protected.Post("/api/auth/logout", cfg.AuthHandler.Logout)
		}

		// Registered method-by-method rather than as a mounted
		// subrouter so the public POST /api/leads can share the path.
		protected.Get("/api/leads", cfg.LeadsHandler.List)
		protected.Get("/api/leads/stats", cfg.LeadsHandler.Stats)
		protected.Get("/api/leads/{id}", cfg.LeadsHandler.Get)
		protected.Patch("/api/leads/{id}/status", cfg.LeadsHandler.UpdateStatus)
		protected.Post("/api/leads/{id}/notes", cfg.LeadsHandler.AddNote)
		protected.Patch("/api/leads/{id}/notes/{noteID}", cfg.LeadsHandler.UpdateNote)
		protected.Delete("/api/leads/{id}/notes/{noteID}", cfg.LeadsHandler.DeleteNote)
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
