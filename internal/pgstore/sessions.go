package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskforge/core/pkg/identity"
)

func (s *Store) CreateSession(ctx context.Context, sess identity.Session) (identity.Session, error) {
	const q = `INSERT INTO sessions (token, principal_id, issued_at, expires_at) VALUES ($1, $2, $3, $4)`
	_, err := s.pool.Exec(ctx, q, sess.Token, sess.PrincipalID, sess.IssuedAt, sess.ExpiresAt)
	if err != nil {
		return identity.Session{}, err
	}
	return sess, nil
}

func (s *Store) GetSession(ctx context.Context, token string) (identity.Session, error) {
	const q = `SELECT token, principal_id, issued_at, expires_at FROM sessions WHERE token = $1`
	var sess identity.Session
	err := s.pool.QueryRow(ctx, q, token).Scan(&sess.Token, &sess.PrincipalID, &sess.IssuedAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.Session{}, identity.ErrNotFound
		}
		return identity.Session{}, err
	}
	return sess, nil
}

func (s *Store) ExtendSession(ctx context.Context, token string, expiresAt time.Time) (identity.Session, error) {
	const q = `UPDATE sessions SET expires_at = $2 WHERE token = $1 RETURNING token, principal_id, issued_at, expires_at`
	var sess identity.Session
	err := s.pool.QueryRow(ctx, q, token, expiresAt).Scan(&sess.Token, &sess.PrincipalID, &sess.IssuedAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.Session{}, identity.ErrNotFound
		}
		return identity.Session{}, err
	}
	return sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

func (s *Store) DeleteSessionsByPrincipal(ctx context.Context, principalID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE principal_id = $1`, principalID)
	return err
}
