package logger

import (
	"io"
	"log/slog"
)

// NewNope creates a no-op logger that discards all output. internal/worker,
// internal/bootstrap, pkg/db's migration runner, and pkg/health's check
// runner all fall back to it when constructed with a nil logger, so callers
// that don't care about logs (most tests) don't need to pass one.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
