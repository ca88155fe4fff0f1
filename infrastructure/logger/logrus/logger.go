// ABOUTME: Logger adapter over sirupsen/logrus with optional rotated file output
// ABOUTME: Default logging backend for the API process

package logrus

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New
type Options struct {
	Level  string
	Format string

	// File, when set, receives a copy of every line and is rotated by size
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Logger implements interfaces.Logger
type Logger struct {
	E *logrus.Entry

	closer io.Closer
}

// New builds a logrus logger writing to stdout and, optionally, a rotated file
func New(opts Options) *Logger {
	l := logrus.New()
	l.SetLevel(parseLevel(opts.Level))

	if strings.EqualFold(opts.Format, "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	var closer io.Closer
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
			Compress:   true,
		}
		l.SetOutput(io.MultiWriter(os.Stdout, rotator))
		closer = rotator
	} else {
		l.SetOutput(os.Stdout)
	}

	return &Logger{E: logrus.NewEntry(l), closer: closer}
}

// Wrap adapts an existing entry
func Wrap(e *logrus.Entry) *Logger {
	return &Logger{E: e}
}

func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.E.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.E.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.E.WithFields(logrus.Fields(fields)).Warn(msg)
}

func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.E.WithFields(logrus.Fields(fields)).Error(msg)
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func parseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
