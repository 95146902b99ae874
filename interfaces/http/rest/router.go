// Package rest wires the REST surface: routes, middleware, and the
// health endpoints.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"supplynet-backend/application/services"
	"supplynet-backend/infrastructure/config"
	"supplynet-backend/interfaces/http/rest/handlers"
	"supplynet-backend/interfaces/http/rest/middleware"
	"supplynet-backend/pkg/auth"
	"supplynet-backend/pkg/common"
)

// requestsPerMinutePerIP is the sustained per-client request budget
const requestsPerMinutePerIP = 100

// Router creates and configures the HTTP router
type Router struct {
	cfg         *config.Config
	tuning      *config.Tuning
	finder      *services.PathFinder
	procurement *services.ProcurementService
	jwtService  *auth.JWTService
	registry    *prometheus.Registry
	limiter     *auth.IPRateLimiter
	logger      *zap.Logger
}

// NewRouter creates a router instance
func NewRouter(
	cfg *config.Config,
	tuning *config.Tuning,
	finder *services.PathFinder,
	procurement *services.ProcurementService,
	jwtService *auth.JWTService,
	registry *prometheus.Registry,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:         cfg,
		tuning:      tuning,
		finder:      finder,
		procurement: procurement,
		jwtService:  jwtService,
		registry:    registry,
		limiter:     auth.NewIPRateLimiter(requestsPerMinutePerIP),
		logger:      logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.supplynet.io"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(rt.limiter))
		r.Use(middleware.Authenticate(rt.jwtService, rt.logger))

		pathHandler := handlers.NewPathHandler(rt.finder, rt.procurement, rt.tuning, rt.logger)
		r.Route("/paths", func(r chi.Router) {
			r.Post("/optimal", pathHandler.FindOptimalPath)
			r.Post("/search", pathHandler.SearchPaths)
			r.Post("/validate", pathHandler.ValidatePath)
		})

		purchaseHandler := handlers.NewPurchaseHandler(rt.procurement, rt.tuning, rt.logger)
		r.Route("/purchases", func(r chi.Router) {
			r.Post("/", purchaseHandler.IntelligentPurchase)
			r.Post("/batch", purchaseHandler.BatchPurchase)
			r.Get("/suggestions", purchaseHandler.GetSuggestions)
			r.Post("/simulate", purchaseHandler.SimulatePurchase)
		})

		adminHandler := handlers.NewAdminHandler(rt.procurement, rt.logger)
		r.Post("/network/update", adminHandler.UpdateNetwork)
		r.Post("/cache/warmup", adminHandler.WarmupCache)
		r.Get("/metrics/performance", adminHandler.GetPerformance)
	})

	return router
}

// Close releases router-held resources
func (rt *Router) Close() {
	rt.limiter.Stop()
}

// healthCheck reports liveness with collaborator detail
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := rt.procurement.HealthCheck(r.Context())
	status := http.StatusOK
	if report.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	common.RespondJSON(w, status, report)
}

// readinessCheck reports readiness to serve traffic. The service is ready
// as soon as it can answer searches, even before the first snapshot.
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
