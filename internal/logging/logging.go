// Package logging builds the process logger for the CLI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// Options configures the logger.
type Options struct {
	// Level is one of debug, info, warn, error (case-insensitive).
	Level string
	// File, when set, sends log output to the named file instead of
	// stderr, without color.
	File string
	// NoColor disables ANSI color on terminal output.
	NoColor bool
}

// New builds a *slog.Logger per the options. The returned closer
// releases the log file, if any, and must be called on shutdown.
func New(opts Options) (*slog.Logger, func() error, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	if opts.File != "" {
		f, err := os.Create(opts.File)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
		return slog.New(handler), f.Close, nil
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:   level,
		NoColor: opts.NoColor,
	})
	return slog.New(handler), func() error { return nil }, nil
}

// NewDiscard returns a logger that drops everything, for tests.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (use debug, info, warn, or error)", s)
	}
}
