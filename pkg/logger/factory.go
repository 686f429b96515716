package logger

import (
	"log/slog"
	"os"
)

// New creates a JSON-formatted logger with optional context extractors.
func New(extractors ...ContextExtractor) *slog.Logger {
	log := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(NewLogHandlerDecorator(log, extractors...))
}

// Default returns the process-wide logger wired with this repository's
// context extractors: a worker's log lines pick up worker_id/task_id once
// the runtime calls WithWorkerID/WithTaskID, and a request handled under an
// authenticated session picks up session_id once WithSessionID is called.
// Each extractor is a no-op when its WithXxx was never called on the
// context in hand.
func Default() *slog.Logger {
	return New(WorkerIDExtractor, TaskIDExtractor, SessionIDExtractor)
}
