// Package api provides the HTTP API layer for the Bluehand admin backend.
// It uses the Huma framework on a chi router, which gives OpenAPI
// documentation and request validation from struct tags.
//
// # Architecture
//
// - server.go: router, CORS and middleware setup
// - handlers/: courier, shipment, cache, settings and health handlers
// - middleware/: request logging with request IDs and per-IP rate limiting
//
// The OpenAPI document is served at /openapi.json and the docs UI at /docs.
// When a metrics exporter is configured, Prometheus metrics are served at
// /metrics.
//
// # Result objects
//
// AWB generation and tracking answer 200 with a result object even when the
// courier rejects the request, so the console can render the failure inline:
//
//	{
//	    "success": false,
//	    "error": "Invalid county",
//	    "details": "{\"message\":\"Invalid county\"}"
//	}
//
// Every other endpoint maps domain errors to RFC 7807 problem responses.
//
// # Usage Example
//
//	humaAPI, router := api.NewAPI(api.Config{
//	    Logger:         logger,
//	    AllowedOrigins: []string{"https://admin.bluehand.ro"},
//	    RateLimiter:    middleware.NewRateLimiter(100, time.Minute),
//	})
//	handlers.NewShipmentHandler().RegisterRoutes(humaAPI)
//	http.ListenAndServe(":8000", router)
package api
