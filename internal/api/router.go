package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Nandeesh-nh/lan-chat/internal/api/middleware"
	"github.com/Nandeesh-nh/lan-chat/internal/config"
	"github.com/Nandeesh-nh/lan-chat/internal/handlers"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, rdb *redis.Client, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(64*1024, "/api/upload")) // 64KB max body; uploads cap themselves
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting, only when Redis is configured
	if rdb != nil {
		limiter := middleware.NewRateLimiter(rdb, logger, middleware.RateLimiterConfig{
			Whitelist:        cfg.RateLimitWhitelist,
			AutoBlockEnabled: cfg.AutoBlockEnabled,
		})
		r.Use(limiter.Middleware)
	}

	// CORS - LAN clients connect from arbitrary origins
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		// Public routes (no token needed)
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Get("/messages", h.ListMessages)
		r.Get("/users", h.ListUsers)
		r.Get("/stats", h.Stats)
		r.Get("/download/{filename}", h.Download)

		// Mutating routes; tokens demanded only when REQUIRE_AUTH is set,
		// but a presented token always binds the acting user.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(cfg.JWTSecret, cfg.RequireAuth))

			r.Post("/auth/logout", h.Logout)
			r.Post("/messages", h.PostMessage)
			r.Put("/messages/{id}", h.EditMessage)
			r.Delete("/messages/{id}", h.DeleteMessage)
			r.Post("/messages/mark-delivered", h.MarkDelivered)
			r.Post("/upload", h.Upload)
		})
	})

	return r
}
