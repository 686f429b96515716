package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskforge/core/pkg/authz"
	"github.com/taskforge/core/pkg/identity"
)

func (s *Store) CreatePrincipal(ctx context.Context, p identity.Principal) (identity.Principal, error) {
	const q = `
		INSERT INTO principals (id, username, email, password_hash, role, active, email_verified, created_at, updated_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.pool.Exec(ctx, q,
		p.ID, p.Username, p.Email, p.PasswordHash, p.Role, p.Active, p.EmailVerified, p.CreatedAt, p.UpdatedAt, p.LastLoginAt)
	if err != nil {
		return identity.Principal{}, err
	}
	return p, nil
}

func (s *Store) GetPrincipalByID(ctx context.Context, id uuid.UUID) (identity.Principal, error) {
	const q = `
		SELECT id, username, email, password_hash, role, active, email_verified, created_at, updated_at, last_login_at
		FROM principals WHERE id = $1`
	return s.scanPrincipal(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) GetPrincipalByUsernameOrEmail(ctx context.Context, identifier string) (identity.Principal, error) {
	const q = `
		SELECT id, username, email, password_hash, role, active, email_verified, created_at, updated_at, last_login_at
		FROM principals WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1)`
	return s.scanPrincipal(s.pool.QueryRow(ctx, q, identifier))
}

func (s *Store) scanPrincipal(row pgx.Row) (identity.Principal, error) {
	var p identity.Principal
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.PasswordHash, &p.Role, &p.Active, &p.EmailVerified, &p.CreatedAt, &p.UpdatedAt, &p.LastLoginAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.Principal{}, identity.ErrNotFound
		}
		return identity.Principal{}, err
	}
	return p, nil
}

func (s *Store) UpdatePrincipal(ctx context.Context, p identity.Principal) (identity.Principal, error) {
	const q = `
		UPDATE principals SET username = $2, email = $3, password_hash = $4, role = $5,
			active = $6, email_verified = $7, updated_at = $8, last_login_at = $9
		WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, p.ID, p.Username, p.Email, p.PasswordHash, p.Role, p.Active, p.EmailVerified, p.UpdatedAt, p.LastLoginAt)
	if err != nil {
		return identity.Principal{}, err
	}
	if tag.RowsAffected() == 0 {
		return identity.Principal{}, identity.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListPrincipals(ctx context.Context) ([]identity.Principal, error) {
	const q = `
		SELECT id, username, email, password_hash, role, active, email_verified, created_at, updated_at, last_login_at
		FROM principals ORDER BY created_at ASC`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []identity.Principal
	for rows.Next() {
		p, err := s.scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CountActiveAdmins(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM principals WHERE role = $1 AND active = TRUE`
	var n int
	if err := s.pool.QueryRow(ctx, q, authz.RoleAdmin).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) DeletePrincipal(ctx context.Context, id uuid.UUID, hard bool) error {
	if hard {
		_, err := s.pool.Exec(ctx, `DELETE FROM principals WHERE id = $1`, id)
		return err
	}
	_, err := s.pool.Exec(ctx, `UPDATE principals SET active = FALSE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC())
	return err
}
