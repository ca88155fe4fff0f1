// ABOUTME: Prometheus collectors for cache, courier, scheduler and HTTP activity
// ABOUTME: Implements interfaces.Metrics on a private registry exposed at /metrics

package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bluehand"

// Metrics implements interfaces.Metrics
type Metrics struct {
	registry *prometheus.Registry

	cacheEvents     *prometheus.CounterVec
	courierRequests *prometheus.CounterVec
	courierDuration *prometheus.HistogramVec
	jobRuns         *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Response cache events by kind.",
		}, []string{"event"}),
		courierRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "courier",
			Name:      "requests_total",
			Help:      "Requests sent to the courier API.",
		}, []string{"endpoint", "status"}),
		courierDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "courier",
			Name:      "request_duration_seconds",
			Help:      "Duration of courier API requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}, []string{"endpoint"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_runs_total",
			Help:      "Scheduled job runs.",
		}, []string{"job", "success"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_run_duration_seconds",
			Help:      "Duration of scheduled job runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"job"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.cacheEvents,
		m.courierRequests,
		m.courierDuration,
		m.jobRuns,
		m.jobDuration,
		m.httpRequests,
		m.httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// CacheEvent counts a cache event
func (m *Metrics) CacheEvent(event string) {
	m.cacheEvents.WithLabelValues(event).Inc()
}

// CourierRequest records a courier API call. Status 0 means no response.
func (m *Metrics) CourierRequest(endpoint string, statusCode int, d time.Duration) {
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	m.courierRequests.WithLabelValues(endpoint, status).Inc()
	m.courierDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// JobRun records a scheduled job execution
func (m *Metrics) JobRun(job string, err error, d time.Duration) {
	m.jobRuns.WithLabelValues(job, strconv.FormatBool(err == nil)).Inc()
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

// Handler exposes the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// InstrumentHandler records request counts and durations labelled with the
// chi route pattern, so path parameters do not explode cardinality.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
