package interfaces

// Logger defines the interface for logging throughout the application.
// This abstraction allows for different logging implementations (logrus, zap, etc.)
// while maintaining a consistent interface.
//
// Example usage:
//
//	logger.Info("AWB generated", map[string]interface{}{
//		"awb":   "2150000123",
//		"order": "BH-1042",
//	})
//
//	logger.Error("Label fetch failed", map[string]interface{}{
//		"awb":   "2150000123",
//		"error": err.Error(),
//	})
type Logger interface {
	// Debug logs a debug level message with optional structured fields.
	Debug(msg string, fields map[string]interface{})

	// Info logs an info level message with optional structured fields.
	Info(msg string, fields map[string]interface{})

	// Warn logs a warning level message with optional structured fields.
	// Warning messages indicate potential issues that don't prevent operation.
	Warn(msg string, fields map[string]interface{})

	// Error logs an error level message with optional structured fields.
	Error(msg string, fields map[string]interface{})
}

// NopLogger discards all log output
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}
