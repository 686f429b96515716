package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	workerIDKey ctxKey = iota
	taskIDKey
	sessionIDKey
)

// WithWorkerID attaches a worker id to ctx so WorkerIDExtractor can surface
// it on every log line emitted through that context, without threading a
// logger through the dispatcher/registry call chain.
func WithWorkerID(ctx context.Context, workerID string) context.Context {
	return context.WithValue(ctx, workerIDKey, workerID)
}

// WithTaskID attaches a claimed task id to ctx for TaskIDExtractor.
func WithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, taskIDKey, taskID)
}

// WithSessionID attaches an authenticated session id to ctx for
// SessionIDExtractor, so request handlers built over pkg/identity can log
// without re-deriving the session on every call site.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WorkerIDExtractor surfaces the worker id attached by WithWorkerID.
func WorkerIDExtractor(ctx context.Context) (slog.Attr, bool) {
	v, ok := ctx.Value(workerIDKey).(string)
	if !ok || v == "" {
		return slog.Attr{}, false
	}
	return slog.String("worker_id", v), true
}

// TaskIDExtractor surfaces the task id attached by WithTaskID.
func TaskIDExtractor(ctx context.Context) (slog.Attr, bool) {
	v, ok := ctx.Value(taskIDKey).(string)
	if !ok || v == "" {
		return slog.Attr{}, false
	}
	return slog.String("task_id", v), true
}

// SessionIDExtractor surfaces the session id attached by WithSessionID.
func SessionIDExtractor(ctx context.Context) (slog.Attr, bool) {
	v, ok := ctx.Value(sessionIDKey).(string)
	if !ok || v == "" {
		return slog.Attr{}, false
	}
	return slog.String("session_id", v), true
}
