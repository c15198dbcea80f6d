package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donatrack/donatrack/internal/metrics"
	"github.com/donatrack/donatrack/internal/middleware"
)

// RouterConfig carries everything the HTTP router is assembled from.
type RouterConfig struct {
	Logger   *slog.Logger
	Recorder metrics.Recorder
	Gatherer prometheus.Gatherer

	Auth      *AuthHandler
	Donations *DonationHandler
	Projects  *ProjectHandler
	Health    *HealthHandler

	Verifier  middleware.TokenVerifier
	RateLimit middleware.RateLimitConfig
	Security  middleware.SecurityConfig
	CORS      middleware.CORSConfig

	// TrustProxyHeaders takes the client address from X-Forwarded-For and X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool

	// FrontendDir enables serving the built frontend when non-empty.
	FrontendDir string
}

// NewRouter builds the application router.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.NewNoop()
	}
	if cfg.Security.MaxRequestBodySize <= 0 {
		cfg.Security.MaxRequestBodySize = middleware.DefaultSecurityConfig().MaxRequestBodySize
	}
	if cfg.RateLimit.Logger == nil {
		cfg.RateLimit.Logger = cfg.Logger
	}
	if cfg.RateLimit.Recorder == nil {
		cfg.RateLimit.Recorder = cfg.Recorder
	}

	r := chi.NewRouter()
	h := New()

	if cfg.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Recorder))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))

	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	r.Get("/metrics", NewMetricsHandler(cfg.Gatherer).Metrics)

	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger:   cfg.Logger,
		Verifier: cfg.Verifier,
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.NotFound(h.NotFound)
		r.MethodNotAllowed(h.MethodNotAllowed)

		r.Get("/health", cfg.Health.Health)
		r.With(middleware.RateLimitLogin(cfg.RateLimit)).Post("/login", cfg.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/logout", cfg.Auth.Logout)
			r.Get("/me", cfg.Auth.Me)
			r.Get("/dashboard", cfg.Donations.Dashboard)
			r.Get("/projects", cfg.Projects.List)
			r.Post("/donations", cfg.Donations.Create)
			r.Get("/donations/history", cfg.Donations.History)
			r.Get("/donations/date/{date}", cfg.Donations.ByDate)
		})
	})

	r.MethodNotAllowed(h.MethodNotAllowed)
	if cfg.FrontendDir != "" {
		r.NotFound(NewSPAHandler(cfg.FrontendDir).ServeHTTP)
	} else {
		r.NotFound(h.NotFound)
	}

	return r
}
