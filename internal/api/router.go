package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ss12000-mock/internal/middleware"
)

// RouterConfig selects the middleware of the router. Zero values disable
// the optional parts.
type RouterConfig struct {
	Logger      *slog.Logger
	Registry    *prometheus.Registry
	RateLimit   middleware.RateLimitConfig
	CORSOrigins []string
	Auth        middleware.JWTValidator
	Timeout     time.Duration
}

// NewRouter mounts h under /v1 together with /healthz and /metrics.
// ctx bounds background work of the middleware.
func NewRouter(ctx context.Context, h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)
	if cfg.Registry != nil {
		r.Use(middleware.NewMetrics(cfg.Registry).Handler)
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		if cfg.RateLimit.RequestsPerSecond > 0 {
			r.Use(middleware.RateLimiter(ctx, cfg.RateLimit))
		}
		if cfg.Auth != nil {
			r.Use(middleware.BearerAuth(cfg.Auth))
		}
		if cfg.Timeout > 0 {
			r.Use(chimw.Timeout(cfg.Timeout))
		}

		r.Get("/statistics", h.Statistics)

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(fixedResource("subscriptions"))
			r.Get("/", h.List)
			r.Post("/", h.CreateSubscription)
			r.Post("/lookup", h.Lookup)
			r.Get("/{id}", h.Get)
			r.Patch("/{id}", h.UpdateSubscription)
			r.Delete("/{id}", h.DeleteSubscription)
		})

		r.Get("/{resource}", h.List)
		r.Get("/{resource}/{id}", h.Get)
		r.Post("/{resource}/lookup", h.Lookup)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, Error{Code: http.StatusNotFound, Detail: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, Error{Code: http.StatusMethodNotAllowed, Detail: "method not allowed"})
	})
	return r
}
