package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskforge/core/pkg/db"
	"github.com/taskforge/core/pkg/dispatcher"
	"github.com/taskforge/core/pkg/taskqueue"
)

// Dispatch implements dispatcher.ClaimStore: the claim protocol's raw SQL
// lives here, isolated from the task store's CRUD operations in tasks.go
// because the claim transaction's locking discipline (SELECT ... FOR
// UPDATE SKIP LOCKED) and its idempotent-outcome WHERE clauses are a
// distinct concern from ordinary task mutation.
type Dispatch struct {
	pool *pgxpool.Pool
}

// NewDispatch wraps pool for use as a dispatcher.ClaimStore.
func NewDispatch(pool *pgxpool.Pool) *Dispatch {
	return &Dispatch{pool: pool}
}

// Claim runs the 5-step protocol from §4.7 in one transaction: select the
// highest-priority, earliest-created claimable row (or an orphaned
// Running row past its lease deadline), lock it with SKIP LOCKED, and
// mark it Running under this worker's lease.
func (d *Dispatch) Claim(ctx context.Context, workerID string, now time.Time, leaseDuration time.Duration) (taskqueue.Task, error) {
	var result taskqueue.Task
	err := db.WithTx(ctx, d.pool, func(tx pgx.Tx) error {
		const selectQ = `
			SELECT ` + taskColumns + `
			FROM tasks
			WHERE (status IN ('pending', 'retrying') AND next_earliest_run <= $1)
			   OR (status = 'running' AND lease_deadline < $1)
			ORDER BY priority DESC, created_at ASC, id ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1`

		row := tx.QueryRow(ctx, selectQ, now)
		t, err := scanTaskRow(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return taskqueue.ErrNoWork
			}
			return err
		}

		deadline := now.Add(leaseDuration)
		const updateQ = `
			UPDATE tasks SET status = 'running', leased_by = $2, lease_deadline = $3,
				attempts = attempts + 1, cancel_requested = FALSE, updated_at = $4
			WHERE id = $1`
		if _, err := tx.Exec(ctx, updateQ, t.ID, workerID, deadline, now); err != nil {
			return err
		}

		t.Status = taskqueue.StatusRunning
		t.LeasedBy = workerID
		t.LeaseDeadline = &deadline
		t.Attempts++
		t.CancelRequested = false
		result = t
		return nil
	})
	if err != nil {
		if errors.Is(err, taskqueue.ErrNoWork) {
			return taskqueue.Task{}, taskqueue.ErrNoWork
		}
		return taskqueue.Task{}, err
	}
	return result, nil
}

func scanTaskRow(row pgx.Row) (taskqueue.Task, error) {
	var t taskqueue.Task
	var status string
	var priority int
	err := row.Scan(&t.ID, &t.TaskType, &t.Payload, &status, &priority, &t.Attempts, &t.MaxAttempts,
		&t.NextEarliestRun, &t.LeaseDeadline, &t.LeasedBy, &t.CancelRequested, &t.CreatorID,
		&t.CreatedAt, &t.UpdatedAt, &t.LastError, &t.CompletedAt, &t.Tags)
	if err != nil {
		return taskqueue.Task{}, err
	}
	t.Status = taskqueue.Status(status)
	t.Priority = taskqueue.Priority(priority)
	return t, nil
}

// Heartbeat extends a Running task's lease and reports whether
// cancellation has been requested. Returns dispatcher.ErrLeaseLost if the
// row is no longer leased by workerID.
func (d *Dispatch) Heartbeat(ctx context.Context, taskID uuid.UUID, workerID string, now time.Time, leaseDuration time.Duration) (bool, error) {
	const q = `
		UPDATE tasks SET lease_deadline = $3
		WHERE id = $1 AND leased_by = $2 AND status = 'running'
		RETURNING cancel_requested`

	var cancelRequested bool
	err := d.pool.QueryRow(ctx, q, taskID, workerID, now.Add(leaseDuration)).Scan(&cancelRequested)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, dispatcher.ErrLeaseLost
		}
		return false, err
	}
	return cancelRequested, nil
}

func (d *Dispatch) Complete(ctx context.Context, taskID uuid.UUID, workerID string, now time.Time) (bool, error) {
	const q = `
		UPDATE tasks SET status = 'completed', completed_at = $3, last_error = '',
			leased_by = '', lease_deadline = NULL, updated_at = $3
		WHERE id = $1 AND leased_by = $2 AND status = 'running'`
	tag, err := d.pool.Exec(ctx, q, taskID, workerID, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (d *Dispatch) Retry(ctx context.Context, taskID uuid.UUID, workerID, lastError string, nextEarliestRun time.Time) (bool, error) {
	const q = `
		UPDATE tasks SET status = 'retrying', last_error = $3, next_earliest_run = $4,
			leased_by = '', lease_deadline = NULL, updated_at = $5
		WHERE id = $1 AND leased_by = $2 AND status = 'running'`
	tag, err := d.pool.Exec(ctx, q, taskID, workerID, lastError, nextEarliestRun, time.Now().UTC())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (d *Dispatch) DeadLetter(ctx context.Context, taskID uuid.UUID, workerID, lastError string, now time.Time) (bool, error) {
	const q = `
		UPDATE tasks SET status = 'dead_letter', last_error = $3, completed_at = $4,
			leased_by = '', lease_deadline = NULL, updated_at = $4
		WHERE id = $1 AND leased_by = $2 AND status = 'running'`
	tag, err := d.pool.Exec(ctx, q, taskID, workerID, lastError, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (d *Dispatch) Cancel(ctx context.Context, taskID uuid.UUID, workerID string, now time.Time) (bool, error) {
	const q = `
		UPDATE tasks SET status = 'cancelled', completed_at = $3,
			leased_by = '', lease_deadline = NULL, updated_at = $3
		WHERE id = $1 AND leased_by = $2 AND status = 'running'`
	tag, err := d.pool.Exec(ctx, q, taskID, workerID, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (d *Dispatch) ReleaseLease(ctx context.Context, taskID uuid.UUID, workerID string, now time.Time) error {
	const q = `
		UPDATE tasks SET status = 'retrying', next_earliest_run = $3,
			leased_by = '', lease_deadline = NULL, updated_at = $3
		WHERE id = $1 AND leased_by = $2 AND status = 'running'`
	_, err := d.pool.Exec(ctx, q, taskID, workerID, now)
	return err
}
