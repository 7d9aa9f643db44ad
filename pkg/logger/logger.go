package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger provides structured logging for guidl components
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration
type Config struct {
	Level     slog.Level
	AddSource bool
	// Output defaults to os.Stderr so stdout stays free for command results
	Output io.Writer
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:     slog.LevelInfo,
		AddSource: false,
		Output:    os.Stderr,
	}
}

// New creates a new logger for a specific component
func New(component string, cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Format time as RFC3339
			if a.Key == slog.TimeKey {
				t := a.Value.Time()
				a.Value = slog.StringValue(t.Format(time.RFC3339))
			}
			return a
		},
	}

	handler := slog.NewJSONHandler(out, opts)
	baseLogger := slog.New(handler)

	// Add component name to all log entries
	logger := baseLogger.With(slog.String("component", component))

	return &Logger{
		Logger:    logger,
		component: component,
	}
}

// Discard returns a logger that drops every record
func Discard(component string) *Logger {
	return New(component, &Config{Level: slog.LevelError + 1, Output: io.Discard})
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		Logger:    l.Logger.With(slog.Any(key, value)),
		component: l.component,
	}
}

// ErrorWithCause logs an error with cause and suggested action
func (l *Logger) ErrorWithCause(msg string, err error, cause string, action string) {
	l.Error(msg,
		slog.Any("error", err),
		slog.String("cause", cause),
		slog.String("action", action),
	)
}

// Component returns the logger's component name
func (l *Logger) Component() string {
	return l.component
}

// ParseLevel converts a level name (debug, info, warn, error) to slog.Level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}
