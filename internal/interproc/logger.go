package interproc

import (
	"log/slog"
	"os"
)

// logger is this package's own slog handle, defaulting to a no-op level
// unless GUARDRAIL_DEBUG is set — grounded in the teacher's
// internal/interproc/logger.go env-gated verbosity convention (see §4.13).
var logger = newLogger()

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("GUARDRAIL_DEBUG") != "" {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("component", "interproc")
}
