package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Pesokrava/products-ms/internal/config"
	"github.com/Pesokrava/products-ms/internal/delivery/http/handler"
	"github.com/Pesokrava/products-ms/internal/delivery/http/middleware"
	"github.com/Pesokrava/products-ms/internal/delivery/http/response"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether one dependency is usable
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Router holds HTTP handlers and router configuration of the gateway
type Router struct {
	productHandler *handler.ProductHandler
	metrics        http.Handler
	checks         []HealthCheck
	logger         *logger.Logger
	cfg            *config.Config
}

// NewRouter creates a new HTTP router
func NewRouter(
	productHandler *handler.ProductHandler,
	metrics http.Handler,
	cfg *config.Config,
	log *logger.Logger,
	checks ...HealthCheck,
) *Router {
	return &Router{
		productHandler: productHandler,
		metrics:        metrics,
		checks:         checks,
		logger:         log,
		cfg:            cfg,
	}
}

// Setup configures and returns the HTTP router
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logger(rt.logger))
	r.Use(middleware.Timeout(rt.cfg.Gateway.WriteTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Gateway.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler(rt.checks))
	r.Handle("/metrics", rt.metrics)
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Post("/", rt.productHandler.Create)
			r.Get("/", rt.productHandler.List)
			r.Post("/validate", rt.productHandler.Validate)
			r.Get("/{id}", rt.productHandler.GetByID)
			r.Patch("/{id}", rt.productHandler.Update)
			r.Delete("/{id}", rt.productHandler.Delete)
		})
	})

	return r
}

// NewOpsRouter serves the health and metrics endpoints of the microservice
func NewOpsRouter(metrics http.Handler, log *logger.Logger, checks ...HealthCheck) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(log))

	r.Get("/health", healthHandler(checks))
	r.Handle("/metrics", metrics)

	return r
}

// healthHandler runs every check and reports 503 when any fails
func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[c.Name] = err.Error()
				continue
			}
			results[c.Name] = "ok"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}

		response.JSON(w, status, map[string]interface{}{
			"status": state,
			"checks": results,
		})
	}
}
