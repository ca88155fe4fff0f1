// ABOUTME: Logger adapter over go.uber.org/zap
// ABOUTME: Selected with LOG_BACKEND=zap

package zap

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger implements interfaces.Logger
type Logger struct{ L *zap.Logger }

// New builds a production zap logger at the given level. Format "text"
// selects the console encoder.
func New(level, format string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, "text") {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{L: l}, nil
}

func (z *Logger) Debug(msg string, f map[string]interface{}) { z.L.Debug(msg, fields(f)...) }
func (z *Logger) Info(msg string, f map[string]interface{})  { z.L.Info(msg, fields(f)...) }
func (z *Logger) Warn(msg string, f map[string]interface{})  { z.L.Warn(msg, fields(f)...) }
func (z *Logger) Error(msg string, f map[string]interface{}) { z.L.Error(msg, fields(f)...) }

// Close flushes buffered entries
func (z *Logger) Close() error {
	err := z.L.Sync()
	// stdout cannot be synced on most terminals
	if err != nil && strings.Contains(err.Error(), "invalid argument") {
		return nil
	}
	return err
}

func fields(f map[string]interface{}) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
