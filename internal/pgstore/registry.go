package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/taskforge/core/pkg/taskqueue"
)

func (s *Store) UpsertRegistration(ctx context.Context, r taskqueue.Registration) error {
	const q = `
		INSERT INTO task_type_registrations (name, description, registered_at, registered_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			registered_at = EXCLUDED.registered_at,
			registered_by = EXCLUDED.registered_by`
	_, err := s.pool.Exec(ctx, q, r.Name, r.Description, r.RegisteredAt, r.RegisteredBy)
	return err
}

func (s *Store) GetRegistration(ctx context.Context, name string) (taskqueue.Registration, error) {
	const q = `SELECT name, description, registered_at, registered_by FROM task_type_registrations WHERE name = $1`
	var r taskqueue.Registration
	err := s.pool.QueryRow(ctx, q, name).Scan(&r.Name, &r.Description, &r.RegisteredAt, &r.RegisteredBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return taskqueue.Registration{}, taskqueue.ErrNotFound
		}
		return taskqueue.Registration{}, err
	}
	return r, nil
}

func (s *Store) ListRegistrations(ctx context.Context) ([]taskqueue.Registration, error) {
	const q = `SELECT name, description, registered_at, registered_by FROM task_type_registrations ORDER BY name ASC`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []taskqueue.Registration
	for rows.Next() {
		var r taskqueue.Registration
		if err := rows.Scan(&r.Name, &r.Description, &r.RegisteredAt, &r.RegisteredBy); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
