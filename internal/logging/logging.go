// Package logging provides structured logging using Go's slog package.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// ConversionIDKey is the context key for conversion IDs.
	ConversionIDKey ContextKey = "conversion_id"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
	loggerMu      sync.RWMutex
)

func init() {
	// Markup goes to stdout, so logs default to stderr.
	InitLogger(LevelWarn, FormatText)
}

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// ParseLevel parses "debug", "info", "warn" or "error".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// ParseFormat parses "json" or "text".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "text", "":
		return FormatText, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q", s)
	}
}

// InitLogger initializes the global logger with the specified level and
// format, writing to stderr.
func InitLogger(level Level, format Format) {
	InitLoggerTo(os.Stderr, level, format)
}

// InitLoggerTo initializes the global logger writing to w.
func InitLoggerTo(w io.Writer, level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize timestamp format
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	loggerMu.Lock()
	defaultLogger = logger
	loggerMu.Unlock()
	slog.SetDefault(logger)
}

// GetLogger returns the global logger instance.
func GetLogger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// SetLogger replaces the global logger and returns the previous one.
func SetLogger(l *slog.Logger) *slog.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	old := defaultLogger
	defaultLogger = l
	return old
}

// NewConversionID returns a fresh conversion ID.
func NewConversionID() string {
	return uuid.NewString()
}

// WithConversionID adds a conversion ID to the context.
func WithConversionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ConversionIDKey, id)
}

// GetConversionID retrieves the conversion ID from the context.
func GetConversionID(ctx context.Context) string {
	if id, ok := ctx.Value(ConversionIDKey).(string); ok {
		return id
	}
	return ""
}

// LoggerFromContext returns a logger with context values attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()
	if id := GetConversionID(ctx); id != "" {
		logger = logger.With("conversion_id", id)
	}
	return logger
}

// Helper functions for common logging patterns

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

// DebugContext logs a debug message with context.
func DebugContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Debug(msg, args...)
}

// InfoContext logs an info message with context.
func InfoContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Info(msg, args...)
}

// WarnContext logs a warning message with context.
func WarnContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Warn(msg, args...)
}

// ErrorContext logs an error message with context.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Error(msg, args...)
}

// ConversionStarted logs the start of a conversion.
func ConversionStarted(ctx context.Context, from, to string, inputBytes int, args ...any) {
	allArgs := []any{
		"from", from,
		"to", to,
		"input_bytes", inputBytes,
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Info("conversion_started", allArgs...)
}

// ConversionFinished logs a completed conversion.
func ConversionFinished(ctx context.Context, from, to, lossClass string, diagnostics int, duration time.Duration, args ...any) {
	allArgs := []any{
		"from", from,
		"to", to,
		"loss_class", lossClass,
		"diagnostics", diagnostics,
		"duration_ms", duration.Milliseconds(),
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Info("conversion_finished", allArgs...)
}

// ConversionFailed logs a failed conversion.
func ConversionFailed(ctx context.Context, from, to, stage string, err error, args ...any) {
	allArgs := []any{
		"from", from,
		"to", to,
		"stage", stage,
		"error", err.Error(),
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Error("conversion_failed", allArgs...)
}

// Degradation logs one construct degraded for a target format.
func Degradation(ctx context.Context, target, nodeKind, path, reason string, args ...any) {
	allArgs := []any{
		"target", target,
		"node", nodeKind,
		"path", path,
		"reason", reason,
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Debug("degradation", allArgs...)
}

// FormatRegistered logs format registration.
func FormatRegistered(name, version string, args ...any) {
	allArgs := []any{
		"format", name,
		"version", version,
	}
	allArgs = append(allArgs, args...)
	GetLogger().Debug("format_registered", allArgs...)
}

// CacheEvent logs conversion cache hits, misses and writes.
func CacheEvent(ctx context.Context, event, key string, args ...any) {
	allArgs := []any{
		"event", event,
		"key", key,
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Debug("cache_event", allArgs...)
}
