// Package logging builds the process-wide structured loggers.
package logging

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/atlasfeed/atlasfeed/internal/config"
)

// New constructs the root slog.Logger from the logging configuration.
func New(cfg config.LoggingConfig) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	return slog.New(handler), nil
}

// Bootstrap returns a JSON logger at the default level, for failures that
// happen before configuration is loaded.
func Bootstrap() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// ForComponent tags every record from the returned logger with the engine
// component it belongs to, so cascade, merge, and report lines can be
// filtered apart in aggregated output.
func ForComponent(logger *slog.Logger, name string) *slog.Logger {
	return logger.With("component", name)
}
