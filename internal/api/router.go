package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/ivkov/toolshelf/internal/api/handlers"
	"github.com/ivkov/toolshelf/internal/api/middleware"
	"github.com/ivkov/toolshelf/internal/auth"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	AuthService    auth.Authenticator
	TokenService   *auth.TokenService
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.TokenService)
	toolHandler := handlers.NewToolHandler(cfg.DB)
	categoryHandler := handlers.NewCategoryHandler(cfg.DB)
	roleHandler := handlers.NewRoleHandler(cfg.DB)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/verify-2fa", authHandler.VerifyTwoFactor)

		// Public catalogue reads
		r.Get("/tools", toolHandler.List)
		r.Get("/tools/{id}", toolHandler.Get)
		r.Get("/categories", categoryHandler.List)
		r.Get("/categories/{id}", categoryHandler.Get)
		r.Get("/roles", roleHandler.List)
		r.Get("/roles/{id}", roleHandler.Get)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.TokenService))

			r.Get("/user", authHandler.Me)
			r.Post("/logout", authHandler.Logout)

			r.Post("/tools", toolHandler.Create)
			r.Put("/tools/{id}", toolHandler.Update)
			r.Delete("/tools/{id}", toolHandler.Delete)

			r.Post("/categories", categoryHandler.Create)
			r.Put("/categories/{id}", categoryHandler.Update)
			r.Delete("/categories/{id}", categoryHandler.Delete)

			r.Post("/roles", roleHandler.Create)
			r.Put("/roles/{id}", roleHandler.Update)
			r.Delete("/roles/{id}", roleHandler.Delete)

			// Moderation: only the owner role may change submission status
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("owner"))
				r.Put("/tools/{id}/status", toolHandler.UpdateStatus)
			})
		})
	})

	return &Router{r}
}
