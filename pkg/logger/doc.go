// Package logger provides structured logging built on log/slog, with a
// decorator that injects context-scoped attributes into every log line.
//
// The worker Runtime keeps the one *slog.Logger it was constructed with and
// logs through it with a context, instead of deriving a per-task logger or
// having one threaded through each method call; the Dispatcher does not
// log. A worker attaches its id to the execution context with
// WithWorkerID once per slot, and a claimed task's id with WithTaskID once
// per execution; every log line written through that context then carries
// both fields automatically.
//
// # Basic usage
//
//	log := logger.Default()
//	ctx = logger.WithWorkerID(ctx, cfg.WorkerID)
//	log.InfoContext(ctx, "slot started")
//
//	ctx = logger.WithTaskID(ctx, task.ID.String())
//	log.ErrorContext(ctx, "heartbeat failed", "error", err)
//	// {"time":"...","level":"ERROR","msg":"heartbeat failed","error":"...","worker_id":"0","task_id":"..."}
//
// # Context extractors
//
// A ContextExtractor is a function that extracts a log attribute from a
// context:
//
//	type ContextExtractor func(ctx context.Context) (slog.Attr, bool)
//
// Extractors run on every log call, so a value attached mid-request (a
// task id learned only after a claim succeeds) reaches every line logged
// through the derived context from then on; lines already written keep
// the fields they had. Returning false
// skips the attribute for that line instead of emitting an empty one.
//
// # Handler decoration
//
// LogHandlerDecorator wraps any slog.Handler to add this behavior:
//
//	decorated := logger.NewLogHandlerDecorator(jsonHandler, logger.WorkerIDExtractor)
//	log := slog.New(decorated)
//
// New and Default both build on this decorator; NewNope discards output
// entirely for collaborators that accept an optional *slog.Logger and
// receive none.
package logger
