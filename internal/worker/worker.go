// Package worker implements the worker runtime (C8): a long-running process
// that claims tasks from the dispatcher, executes them against registered
// handlers, and reports the outcome, with an independent heartbeat loop so a
// blocking handler cannot starve lease renewal.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/core/pkg/dispatcher"
	"github.com/taskforge/core/pkg/logger"
	"github.com/taskforge/core/pkg/taskqueue"
)

// Config controls a Runtime's concurrency and timing.
type Config struct {
	WorkerID              string
	Concurrency           int
	PollInterval          time.Duration
	DrainTimeout          time.Duration
	CancelGracePeriodMult int
}

func (c Config) withDefaults() Config {
	if c.WorkerID == "" {
		c.WorkerID = "0"
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = 30 * time.Second
	}
	if c.CancelGracePeriodMult <= 0 {
		c.CancelGracePeriodMult = 2
	}
	return c
}

// Runtime runs up to Config.Concurrency concurrent task executions per
// process, each a cooperative executor that may suspend only at I/O points.
type Runtime struct {
	dispatcher *dispatcher.Dispatcher
	registry   *taskqueue.Registry
	cfg        Config
	logger     *slog.Logger

	mu     sync.Mutex
	active map[uuid.UUID]context.CancelFunc
}

// nopeLogger is a small indirection around logger.NewNope so New's logger
// parameter can shadow the package name without losing access to it.
func nopeLogger() *slog.Logger {
	return logger.NewNope()
}

// New builds a worker Runtime. logger may be nil, in which case logs are
// discarded.
func New(d *dispatcher.Dispatcher, registry *taskqueue.Registry, cfg Config, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = nopeLogger()
	}
	return &Runtime{
		dispatcher: d,
		registry:   registry,
		cfg:        cfg.withDefaults(),
		logger:     logger,
		active:     make(map[uuid.UUID]context.CancelFunc),
	}
}

// Run blocks until ctx is cancelled, then drains in-flight executions for up
// to Config.DrainTimeout before releasing any leases still outstanding.
func (r *Runtime) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			r.runSlot(ctx, slot)
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
	}

	select {
	case <-done:
		return nil
	case <-time.After(r.cfg.DrainTimeout):
		r.logger.Warn("drain timeout elapsed, releasing outstanding leases")
		r.releaseActive()
		<-done
		return nil
	}
}

func (r *Runtime) runSlot(ctx context.Context, slot int) {
	logCtx := logger.WithWorkerID(ctx, r.cfg.WorkerID)
	for {
		if ctx.Err() != nil {
			return
		}

		task, err := r.dispatcher.Claim(ctx, r.cfg.WorkerID)
		if err != nil {
			if !errors.Is(err, taskqueue.ErrNoWork) {
				r.logger.ErrorContext(logCtx, "claim failed", "slot", slot, "error", err)
			}
			if !sleepCtx(ctx, r.cfg.PollInterval) {
				return
			}
			continue
		}

		r.execute(ctx, task)
	}
}

// execute drives a single claimed task through heartbeat, handler
// invocation, and outcome recording. It deliberately does not inherit
// cancellation from the slot's polling context: an in-flight execution must
// survive shutdown until drained, not die the instant ctx is cancelled. Its
// own logCtx carries the task and worker id so every line below is
// attributable without re-stating them at each call site.
func (r *Runtime) execute(_ context.Context, task taskqueue.Task) {
	logCtx := logger.WithTaskID(logger.WithWorkerID(context.Background(), r.cfg.WorkerID), task.ID.String())

	handler, ok := r.registry.Lookup(task.TaskType)
	if !ok {
		r.logger.ErrorContext(logCtx, "no locally registered handler for claimed task type, releasing lease", "task_type", task.TaskType)
		if err := r.dispatcher.Release(context.Background(), task.ID, r.cfg.WorkerID); err != nil {
			r.logger.ErrorContext(logCtx, "failed to release lease", "error", err)
		}
		return
	}

	execCtx, cancelExec := context.WithCancel(context.Background())
	defer cancelExec()

	r.addActive(task.ID, cancelExec)
	defer r.removeActive(task.ID)

	handlerDone := make(chan taskqueue.Outcome, 1)
	go func() {
		handlerDone <- handler.Handle(execCtx, task.Payload)
	}()

	heartbeatInterval := r.dispatcher.HeartbeatInterval()
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	var cancelRequested bool
	var graceDeadline time.Time

	for {
		select {
		case outcome := <-handlerDone:
			if _, err := r.dispatcher.RecordOutcome(context.Background(), task, r.cfg.WorkerID, outcome); err != nil {
				r.logger.ErrorContext(logCtx, "failed to record outcome", "error", err)
			}
			return

		case <-ticker.C:
			cr, err := r.dispatcher.Heartbeat(context.Background(), task.ID, r.cfg.WorkerID)
			if errors.Is(err, dispatcher.ErrLeaseLost) {
				r.logger.WarnContext(logCtx, "lease lost mid-execution, abandoning without recording outcome")
				cancelExec()
				return
			}
			if err != nil {
				r.logger.ErrorContext(logCtx, "heartbeat failed", "error", err)
				continue
			}

			if cr && !cancelRequested {
				cancelRequested = true
				cancelExec()
				graceDeadline = time.Now().Add(time.Duration(r.cfg.CancelGracePeriodMult) * heartbeatInterval)
				r.logger.InfoContext(logCtx, "cancellation requested, signalling handler to unwind")
			}

			if cancelRequested && time.Now().After(graceDeadline) {
				r.logger.WarnContext(logCtx, "cancellation grace period elapsed, forcing Cancelled")
				if _, err := r.dispatcher.CancelTask(context.Background(), task.ID, r.cfg.WorkerID); err != nil {
					r.logger.ErrorContext(logCtx, "failed to force-cancel task", "error", err)
				}
				return
			}
		}
	}
}

func (r *Runtime) addActive(id uuid.UUID, cancel context.CancelFunc) {
	r.mu.Lock()
	r.active[id] = cancel
	r.mu.Unlock()
}

func (r *Runtime) removeActive(id uuid.UUID) {
	r.mu.Lock()
	delete(r.active, id)
	r.mu.Unlock()
}

// releaseActive releases the lease of every still-running execution in the
// store so another worker can reclaim the task, then signals that execution
// to unwind. The execute() goroutine that owns each task is responsible for
// its own outcome bookkeeping once its handler actually returns; the
// idempotent lease-guarded WHERE clause makes that a safe no-op after this
// point.
func (r *Runtime) releaseActive() {
	r.mu.Lock()
	ids := make([]uuid.UUID, 0, len(r.active))
	cancels := make([]context.CancelFunc, 0, len(r.active))
	for id, cancel := range r.active {
		ids = append(ids, id)
		cancels = append(cancels, cancel)
	}
	r.mu.Unlock()

	for i, id := range ids {
		if err := r.dispatcher.Release(context.Background(), id, r.cfg.WorkerID); err != nil {
			r.logger.Error("failed to release lease during drain", "task_id", id, "error", err)
		}
		cancels[i]()
	}
}

// sleepCtx sleeps for d or returns early (false) if ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
