// Package logging holds the process-wide structured logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	loggerMu      sync.RWMutex
)

// Common structured logging keys.
const (
	KeyRunID     = "run_id"
	KeyOperation = "op"
	KeyError     = "error"
	KeyCount     = "count"
	KeyMigration = "migration"
	KeyPath      = "path"
)

type Config struct {
	Level     slog.Level
	JSON      bool
	Output    io.Writer
	AddSource bool
}

func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelWarn,
		Output: os.Stderr,
	}
}

// Init replaces the global logger.
func Init(cfg Config) *slog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	logger := slog.New(handler)
	loggerMu.Lock()
	defaultLogger = logger
	loggerMu.Unlock()
	return logger
}

func Logger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// ParseLevel accepts debug, info, warn and error. Anything else is warn.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

type contextKey int

const loggerKey contextKey = iota

// NewRun tags a context with a fresh run id and returns the matching logger.
func NewRun(ctx context.Context, op string) (context.Context, *slog.Logger) {
	logger := Logger().With(KeyRunID, uuid.NewString(), KeyOperation, op)
	return context.WithValue(ctx, loggerKey, logger), logger
}

// FromContext returns the run logger stored by NewRun, or the global one.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return logger
		}
	}
	return Logger()
}
