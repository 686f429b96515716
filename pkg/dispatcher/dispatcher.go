// Package dispatcher implements the claim protocol (C7): the atomic
// lease of one runnable task to one worker, backed by a relational store
// using SELECT ... FOR UPDATE SKIP LOCKED semantics.
package dispatcher

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/core/pkg/taskqueue"
)

// ClaimStore is the low-level, transaction-shaped contract the
// dispatcher needs from the store. A Postgres implementation lives under
// internal/pgstore; it is the only place raw SQL for the claim
// transaction is written, keeping the protocol itself database-agnostic
// at this layer.
type ClaimStore interface {
	// Claim runs the full 5-step protocol from §4.7 in one transaction.
	// Returns taskqueue.ErrNoWork if no row is immediately lockable.
	Claim(ctx context.Context, workerID string, now time.Time, leaseDuration time.Duration) (taskqueue.Task, error)

	// Heartbeat extends a Running task's lease and reports whether a
	// cancellation has been requested. Returns ErrLeaseLost if the row no
	// longer shows leased-by = workerID.
	Heartbeat(ctx context.Context, taskID uuid.UUID, workerID string, now time.Time, leaseDuration time.Duration) (cancelRequested bool, err error)

	// Complete, Retry, DeadLetter, and Cancel each assert `leased_by = W
	// AND status = Running` in their WHERE clause and report whether the
	// row was actually updated — a false result means the lease was
	// already lost and the call is a no-op, per the idempotence
	// invariant.
	Complete(ctx context.Context, taskID uuid.UUID, workerID string, now time.Time) (bool, error)
	Retry(ctx context.Context, taskID uuid.UUID, workerID string, lastError string, nextEarliestRun time.Time) (bool, error)
	DeadLetter(ctx context.Context, taskID uuid.UUID, workerID string, lastError string, now time.Time) (bool, error)
	Cancel(ctx context.Context, taskID uuid.UUID, workerID string, now time.Time) (bool, error)

	// ReleaseLease returns a Running task to Retrying with
	// next-earliest-run=now, for graceful shutdown drain.
	ReleaseLease(ctx context.Context, taskID uuid.UUID, workerID string, now time.Time) error
}

// ErrLeaseLost signals that a heartbeat or outcome write found the task no
// longer leased by this worker. It is an internal runtime signal per §7
// and is never surfaced to API callers.
var ErrLeaseLost = errors.New("dispatcher: lease lost")

// Dispatcher implements the claim protocol and outcome-recording rules
// against a ClaimStore.
type Dispatcher struct {
	store         ClaimStore
	leaseDuration time.Duration
	backoff       taskqueue.BackoffPolicy
}

// New constructs a Dispatcher. leaseDuration is the configured lease
// constant (default 60s); backoff drives the retry policy (C9).
func New(store ClaimStore, leaseDuration time.Duration, backoff taskqueue.BackoffPolicy) *Dispatcher {
	return &Dispatcher{store: store, leaseDuration: leaseDuration, backoff: backoff}
}

// LeaseDuration returns the configured lease duration. HeartbeatInterval
// is defined as LeaseDuration/3 per §4.7.
func (d *Dispatcher) LeaseDuration() time.Duration { return d.leaseDuration }

// HeartbeatInterval returns LeaseDuration/3.
func (d *Dispatcher) HeartbeatInterval() time.Duration { return d.leaseDuration / 3 }

// Claim attempts to lease the next runnable task for workerID. Returns
// taskqueue.ErrNoWork if nothing is currently claimable.
func (d *Dispatcher) Claim(ctx context.Context, workerID string) (taskqueue.Task, error) {
	return d.store.Claim(ctx, workerID, time.Now().UTC(), d.leaseDuration)
}

// Heartbeat extends the lease on taskID and reports whether cancellation
// has been requested.
func (d *Dispatcher) Heartbeat(ctx context.Context, taskID uuid.UUID, workerID string) (cancelRequested bool, err error) {
	return d.store.Heartbeat(ctx, taskID, workerID, time.Now().UTC(), d.leaseDuration)
}

// RecordOutcome applies the retry/dead-letter policy (C9) for a handler's
// Outcome against a task claimed with the given attempt count. It reports
// whether the write actually took effect (false means the lease was
// already lost).
func (d *Dispatcher) RecordOutcome(ctx context.Context, task taskqueue.Task, workerID string, outcome taskqueue.Outcome) (bool, error) {
	now := time.Now().UTC()

	switch {
	case outcome.IsOk():
		return d.store.Complete(ctx, task.ID, workerID, now)

	case outcome.IsPermanent():
		return d.store.DeadLetter(ctx, task.ID, workerID, errString(outcome.Err()), now)

	default: // transient
		if task.Attempts >= task.MaxAttempts {
			return d.store.DeadLetter(ctx, task.ID, workerID, errString(outcome.Err()), now)
		}
		delay := d.backoff.Delay(task.ID, task.Attempts)
		return d.store.Retry(ctx, task.ID, workerID, errString(outcome.Err()), now.Add(delay))
	}
}

// CancelTask marks a Running task Cancelled, honoring a cooperative
// cancellation request at the next heartbeat boundary.
func (d *Dispatcher) CancelTask(ctx context.Context, taskID uuid.UUID, workerID string) (bool, error) {
	return d.store.Cancel(ctx, taskID, workerID, time.Now().UTC())
}

// Release returns a Running task to Retrying so another worker may claim
// it, for use during graceful shutdown drain.
func (d *Dispatcher) Release(ctx context.Context, taskID uuid.UUID, workerID string) error {
	return d.store.ReleaseLease(ctx, taskID, workerID, time.Now().UTC())
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
