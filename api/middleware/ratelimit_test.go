package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func serveFrom(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/awb", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, 3*time.Second)
	defer rl.Close()

	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("127.0.0.1"))
	assert.True(t, rl.Allow("127.0.0.1"))
	assert.True(t, rl.Allow("127.0.0.1"))
	assert.False(t, rl.Allow("127.0.0.1"))

	assert.True(t, rl.Allow("192.168.1.1"))

	// one token refills every window/limit
	now = now.Add(time.Second)
	assert.True(t, rl.Allow("127.0.0.1"))
	assert.False(t, rl.Allow("127.0.0.1"))
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Close()

	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.Allow("10.0.0.1")
	now = now.Add(2 * time.Minute)
	rl.Allow("10.0.0.2")

	rl.evict()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestRateLimitMiddleware_AllowsRequestsUnderLimit(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)
	defer limiter.Close()
	handler := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	}))

	for i := 0; i < 5; i++ {
		rec := serveFrom(handler, "127.0.0.1:1234")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimitMiddleware_Returns429ForExceededLimit(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	defer limiter.Close()
	handler := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serveFrom(handler, "127.0.0.1:1234").Code)
	}

	rec := serveFrom(handler, "127.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rate limit exceeded")
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// ports differ, the client address does not
	assert.Equal(t, http.StatusTooManyRequests, serveFrom(handler, "127.0.0.1:9999").Code)
	assert.Equal(t, http.StatusOK, serveFrom(handler, "192.168.1.1:5678").Code)
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name       string
		setupReq   func(*http.Request)
		expectedIP string
	}{
		{
			name: "uses first X-Forwarded-For hop",
			setupReq: func(r *http.Request) {
				r.Header.Set("X-Forwarded-For", "203.0.113.1, 198.51.100.2")
				r.RemoteAddr = "10.0.0.1:1234"
			},
			expectedIP: "203.0.113.1",
		},
		{
			name: "uses X-Real-IP header",
			setupReq: func(r *http.Request) {
				r.Header.Set("X-Real-IP", "203.0.113.1")
				r.RemoteAddr = "10.0.0.1:1234"
			},
			expectedIP: "203.0.113.1",
		},
		{
			name:       "strips port from RemoteAddr",
			setupReq:   func(r *http.Request) { r.RemoteAddr = "192.168.1.1:1234" },
			expectedIP: "192.168.1.1",
		},
		{
			name:       "keeps RemoteAddr without port",
			setupReq:   func(r *http.Request) { r.RemoteAddr = "192.168.1.1" },
			expectedIP: "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			tt.setupReq(req)
			assert.Equal(t, tt.expectedIP, extractIP(req))
		})
	}
}
