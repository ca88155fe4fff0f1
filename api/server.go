// ABOUTME: Huma API server configuration and setup
// ABOUTME: Builds the chi router with CORS, logging, rate limiting and metrics middleware

package api

import (
	"net/http"

	"bluehand-admin-api/api/middleware"
	"bluehand-admin-api/core/interfaces"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

const (
	// Title is the OpenAPI title
	Title = "Bluehand Admin API"

	// Version is the API version reported by OpenAPI and /health
	Version = "1.0.0"
)

// MetricsExporter instruments requests and serves the scrape endpoint
type MetricsExporter interface {
	InstrumentHandler(next http.Handler) http.Handler
	Handler() http.Handler
}

// Config holds configuration for the API
type Config struct {
	Logger interfaces.Logger

	// AllowedOrigins for CORS; empty allows any origin
	AllowedOrigins []string

	// RateLimiter is applied per client IP when set
	RateLimiter *middleware.RateLimiter

	// Metrics instruments every request and mounts /metrics when set
	Metrics MetricsExporter
}

// NewAPI creates the router and the Huma API on top of it. The OpenAPI
// document is served at /openapi.json and the docs UI at /docs.
func NewAPI(cfg Config) (huma.API, chi.Router) {
	router := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           300,
	}))

	if cfg.Logger != nil {
		router.Use(middleware.RequestLoggingMiddleware(cfg.Logger))
	}
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.InstrumentHandler)
	}
	if cfg.RateLimiter != nil {
		router.Use(middleware.RateLimitMiddleware(cfg.RateLimiter))
	}

	// chi requires every middleware before the first route
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics.Handler())
	}

	config := huma.DefaultConfig(Title, Version)
	config.Info.Description = "Admin backend for the Bluehand canvas shop: courier integration, response cache and settings"

	return humachi.New(router, config), router
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
