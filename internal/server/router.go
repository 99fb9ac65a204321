package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/sevigo/merge-warden/internal/config"
	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/internal/server/handler"
)

// NewRouter creates and configures a new HTTP router with middleware and API routes.
func NewRouter(cfg *config.Config, webhookHandler *handler.WebhookHandler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Configure middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst, logger))
		if cfg.GitHub.Enabled() {
			r.Post("/webhook/github", webhookHandler.Handle(core.PlatformGitHub))
		}
		if cfg.GitLab.Enabled() {
			r.Post("/webhook/gitlab", webhookHandler.Handle(core.PlatformGitLab))
		}
	})

	return r
}

// rateLimit sheds webhook bursts beyond the configured rate. Shed deliveries
// are retried by the platforms.
func rateLimit(limit rate.Limit, burst int, logger *slog.Logger) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.Warn("rate limit exceeded, shedding delivery", "remote", r.RemoteAddr)
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
