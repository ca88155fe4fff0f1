// ABOUTME: Dependencies container provides dependency injection for core services
// ABOUTME: Defines the contract for dependencies required by the core business logic

package interfaces

// Dependencies holds all external dependencies required by the core business logic
type Dependencies struct {
	// Storage backs the response cache
	Storage Storage

	// HTTPClient provides HTTP request functionality
	HTTPClient HTTPClient

	// Logger provides structured logging
	Logger Logger

	// Metrics receives counters; nil disables metrics
	Metrics Metrics
}

// LoggerOrNop returns the configured logger or a NopLogger
func (d Dependencies) LoggerOrNop() Logger {
	if d.Logger == nil {
		return NopLogger{}
	}
	return d.Logger
}

// MetricsOrNop returns the configured metrics sink or a NopMetrics
func (d Dependencies) MetricsOrNop() Metrics {
	if d.Metrics == nil {
		return NopMetrics{}
	}
	return d.Metrics
}
