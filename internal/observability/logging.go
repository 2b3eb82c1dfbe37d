package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger: a text handler on stderr. Verbose
// lowers the level to Debug, quiet raises it to Error; verbose wins when
// both are set.
func NewLogger(verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo

	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}