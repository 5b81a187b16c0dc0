// Package logging builds the slog loggers used by splinter. Output is JSON
// by default so runs can be collected and filtered; a text format is kept
// for interactive use.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log levels accepted by New.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Output formats accepted by New.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Options configure a logger.
type Options struct {
	// Level is one of DEBUG, INFO, WARN or ERROR, case-insensitively.
	// Anything else means INFO.
	Level string
	// Format is "json" or "text". Anything else means JSON.
	Format string
	// Writer defaults to stderr.
	Writer io.Writer
}

// New returns a logger for opts.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	var h slog.Handler
	if strings.EqualFold(opts.Format, FormatText) {
		h = slog.NewTextHandler(w, hopts)
	} else {
		h = slog.NewJSONHandler(w, hopts)
	}
	return slog.New(h)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ValidLevels returns the accepted level names in lower case.
func ValidLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// parseLevel converts a level name to a slog.Level.
// Defaults to INFO if the name is not recognized.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
