// ABOUTME: Structured diagnostic logging built on log/slog
// ABOUTME: Parses level and format settings; user-facing output goes through internal/ui instead

package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config captures the settings needed to build a logger.
type Config struct {
	// Level is debug, info, warn or error.
	Level string
	// Format is text or json.
	Format    string
	AddSource bool
}

// ParseLevel converts textual levels into slog levels. CLI runs default to
// warn so diagnostics stay out of normal command output.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "dbg":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// New builds a slog.Logger writing to w, or stderr when w is nil.
func New(w io.Writer, cfg Config) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level), AddSource: cfg.AddSource}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts))
	default:
		return slog.New(slog.NewTextHandler(w, opts))
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
