package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskforge/core/pkg/db"
	"github.com/taskforge/core/pkg/taskqueue"
)

func (s *Store) Create(ctx context.Context, t taskqueue.Task) (taskqueue.Task, error) {
	const q = `
		INSERT INTO tasks (id, task_type, payload, status, priority, attempts, max_attempts,
			next_earliest_run, creator_id, created_at, updated_at, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	payload := t.Payload
	if payload == nil {
		payload = json.RawMessage(`{}`)
	}

	_, err := s.pool.Exec(ctx, q, t.ID, t.TaskType, payload, string(t.Status), int(t.Priority),
		t.Attempts, t.MaxAttempts, t.NextEarliestRun, t.CreatorID, t.CreatedAt, t.UpdatedAt, t.Tags)
	if err != nil {
		return taskqueue.Task{}, err
	}
	return t, nil
}

const taskColumns = `id, task_type, payload, status, priority, attempts, max_attempts,
	next_earliest_run, lease_deadline, leased_by, cancel_requested, creator_id,
	created_at, updated_at, last_error, completed_at, tags`

func (s *Store) scanTask(row pgx.Row) (taskqueue.Task, error) {
	var t taskqueue.Task
	var status string
	var priority int
	err := row.Scan(&t.ID, &t.TaskType, &t.Payload, &status, &priority, &t.Attempts, &t.MaxAttempts,
		&t.NextEarliestRun, &t.LeaseDeadline, &t.LeasedBy, &t.CancelRequested, &t.CreatorID,
		&t.CreatedAt, &t.UpdatedAt, &t.LastError, &t.CompletedAt, &t.Tags)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return taskqueue.Task{}, taskqueue.ErrNotFound
		}
		return taskqueue.Task{}, err
	}
	t.Status = taskqueue.Status(status)
	t.Priority = taskqueue.Priority(priority)
	return t, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (taskqueue.Task, error) {
	q := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1`, taskColumns)
	return s.scanTask(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) List(ctx context.Context, filter taskqueue.ListFilter) ([]taskqueue.Task, error) {
	q := fmt.Sprintf(`SELECT %s FROM tasks WHERE 1=1`, taskColumns)
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	var b strings.Builder
	b.WriteString(q)
	if filter.Status != nil {
		b.WriteString(" AND status = " + arg(string(*filter.Status)))
	}
	if filter.TaskType != "" {
		b.WriteString(" AND task_type = " + arg(filter.TaskType))
	}
	if filter.Creator != nil {
		b.WriteString(" AND creator_id = " + arg(*filter.Creator))
	}
	if filter.Tag != "" {
		b.WriteString(" AND " + arg(filter.Tag) + " = ANY(tags)")
	}
	b.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	b.WriteString(" LIMIT " + arg(limit))
	if filter.Offset > 0 {
		b.WriteString(" OFFSET " + arg(filter.Offset))
	}

	rows, err := s.pool.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []taskqueue.Task
	for rows.Next() {
		t, err := s.scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Cancel(ctx context.Context, id uuid.UUID) (taskqueue.Task, error) {
	var result taskqueue.Task
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		t, err := s.scanTask(tx.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1 FOR UPDATE`, taskColumns), id))
		if err != nil {
			return err
		}

		switch t.Status {
		case taskqueue.StatusPending, taskqueue.StatusRetrying:
			now := time.Now().UTC()
			const q = `UPDATE tasks SET status = $2, completed_at = $3, updated_at = $3 WHERE id = $1`
			if _, err := tx.Exec(ctx, q, id, string(taskqueue.StatusCancelled), now); err != nil {
				return err
			}
			t.Status = taskqueue.StatusCancelled
			t.CompletedAt = &now
			result = t
			return nil

		case taskqueue.StatusRunning:
			const q = `UPDATE tasks SET cancel_requested = TRUE, updated_at = $2 WHERE id = $1`
			if _, err := tx.Exec(ctx, q, id, time.Now().UTC()); err != nil {
				return err
			}
			t.CancelRequested = true
			result = t
			return nil

		default:
			return &taskqueue.InvalidStatusTransitionError{From: t.Status, To: taskqueue.StatusCancelled}
		}
	})
	return result, err
}

func (s *Store) Retry(ctx context.Context, id uuid.UUID) (taskqueue.Task, error) {
	var result taskqueue.Task
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		t, err := s.scanTask(tx.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1 FOR UPDATE`, taskColumns), id))
		if err != nil {
			return err
		}
		if t.Status != taskqueue.StatusFailed && t.Status != taskqueue.StatusDeadLetter {
			return &taskqueue.InvalidStatusTransitionError{From: t.Status, To: taskqueue.StatusRetrying}
		}

		maxAttempts := t.MaxAttempts
		if t.Status == taskqueue.StatusDeadLetter {
			maxAttempts = t.Attempts + 1
		}

		now := time.Now().UTC()
		const q = `UPDATE tasks SET status = $2, max_attempts = $3, next_earliest_run = $4, updated_at = $4, completed_at = NULL WHERE id = $1`
		if _, err := tx.Exec(ctx, q, id, string(taskqueue.StatusRetrying), maxAttempts, now); err != nil {
			return err
		}

		t.Status = taskqueue.StatusRetrying
		t.MaxAttempts = maxAttempts
		t.NextEarliestRun = now
		t.CompletedAt = nil
		result = t
		return nil
	})
	return result, err
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		t, err := s.scanTask(tx.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1 FOR UPDATE`, taskColumns), id))
		if err != nil {
			return err
		}
		if !t.Status.IsTerminal() {
			return &taskqueue.InvalidStatusTransitionError{From: t.Status, To: "deleted"}
		}
		_, err = tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
		return err
	})
}

func (s *Store) Stats(ctx context.Context) (taskqueue.Stats, error) {
	const q = `SELECT status, COUNT(*) FROM tasks GROUP BY status`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := taskqueue.Stats{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		stats[taskqueue.Status(status)] = n
	}
	return stats, rows.Err()
}

func (s *Store) DeadLetter(ctx context.Context) ([]taskqueue.Task, error) {
	status := taskqueue.StatusDeadLetter
	return s.List(ctx, taskqueue.ListFilter{Status: &status, Limit: 100})
}
