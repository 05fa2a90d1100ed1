// Package rest wires the HTTP surface: routes, middleware chain, and the
// operational endpoints.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"roadmaps-backend/application/services"
	"roadmaps-backend/infrastructure/config"
	"roadmaps-backend/interfaces/http/rest/handlers"
	"roadmaps-backend/interfaces/http/rest/middleware"
	"roadmaps-backend/pkg/auth"
	"roadmaps-backend/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg      *config.Config
	roadmaps *services.RoadmapService
	users    *services.UserService
	authSvc  *services.AuthService
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	roadmaps *services.RoadmapService,
	users *services.UserService,
	authSvc *services.AuthService,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:      cfg,
		roadmaps: roadmaps,
		users:    users,
		authSvc:  authSvc,
		metrics:  metrics,
		logger:   logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() (http.Handler, error) {
	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: rt.cfg.JWTSecret,
		Issuer:    rt.cfg.JWTIssuer,
		Audience:  []string{rt.cfg.JWTAudience},
	})
	if err != nil {
		return nil, err
	}

	var ipLimiter, userLimiter auth.RateLimiter
	if rt.cfg.IPRateLimit > 0 {
		ipLimiter = auth.NewIPRateLimiter(rt.cfg.IPRateLimit)
	}
	if rt.cfg.UserRateLimit > 0 {
		userLimiter = auth.NewUserRateLimiter(rt.cfg.UserRateLimit)
	}
	authn := middleware.NewAuthenticator(validator, ipLimiter, userLimiter)

	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.EnableMetrics {
		router.Use(middleware.Metrics(rt.metrics))
	}
	router.Use(middleware.CircuitBreaker(middleware.DefaultCircuitBreakerConfig("api"), rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Operational endpoints
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.cfg.EnableMetrics {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := handlers.NewAuthHandler(rt.authSvc, rt.logger)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
		})

		roadmapHandler := handlers.NewRoadmapHandler(rt.roadmaps, rt.logger)
		r.Route("/roadmaps", func(r chi.Router) {
			// Public reads
			r.Get("/", roadmapHandler.List)
			r.Get("/slug/{slug}", roadmapHandler.GetBySlug)
			r.Get("/{roadmapID}", roadmapHandler.Get)

			// Admin writes
			r.Group(func(r chi.Router) {
				r.Use(authn.Require, authn.RequireAdmin)
				r.Post("/", roadmapHandler.Create)
				r.Put("/{roadmapID}", roadmapHandler.Replace)
				r.Patch("/{roadmapID}", roadmapHandler.ApplyBatch)
				r.Delete("/{roadmapID}", roadmapHandler.Delete)
				r.Delete("/{roadmapID}/edges", roadmapHandler.DeleteEdges)
			})
		})

		userHandler := handlers.NewUserHandler(rt.users, rt.logger)
		r.Route("/users/me", func(r chi.Router) {
			r.Use(authn.Require)
			r.Get("/", userHandler.Me)
			r.Put("/", userHandler.ReplaceSets)
			r.Post("/favorites/toggle", userHandler.ToggleFavorite)
			r.Post("/seen/toggle", userHandler.ToggleSeen)
		})
	})

	return router, nil
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
