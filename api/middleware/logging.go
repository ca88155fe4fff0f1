// ABOUTME: Request logging middleware for the admin API
// ABOUTME: Tags every request with an ID and logs status and timing

package middleware

import (
	"context"
	"net/http"
	"time"

	"bluehand-admin-api/core/interfaces"

	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request ID in both directions
	RequestIDHeader = "X-Request-ID"

	slowRequestThreshold = 5 * time.Second
	maxRequestIDLength   = 128
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
		rw.written = true
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

type requestIDKey struct{}

// RequestIDFromContext returns the ID assigned by RequestLoggingMiddleware
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestLoggingMiddleware logs every request. An incoming X-Request-ID is
// reused so calls can be correlated with the admin console.
func RequestLoggingMiddleware(logger interfaces.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = uuid.New().String()
			}
			w.Header().Set(RequestIDHeader, requestID)
			r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			logger.Info("Request started", map[string]interface{}{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
				"remote_ip":  extractIP(r),
				"user_agent": r.UserAgent(),
			})

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			logger.Info("Request completed", map[string]interface{}{
				"request_id":  requestID,
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrapped.statusCode,
				"duration":    duration.String(),
				"duration_ms": duration.Milliseconds(),
			})

			if duration > slowRequestThreshold {
				logger.Warn("Slow request detected", map[string]interface{}{
					"request_id": requestID,
					"method":     r.Method,
					"path":       r.URL.Path,
					"duration":   duration.String(),
				})
			}

			if wrapped.statusCode >= 500 {
				logger.Error("Request failed with server error", map[string]interface{}{
					"request_id": requestID,
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     wrapped.statusCode,
				})
			}
		})
	}
}
