package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence contract the identity core requires. A Postgres
// implementation lives under internal/pgstore.
type Store interface {
	CreatePrincipal(ctx context.Context, p Principal) (Principal, error)
	GetPrincipalByID(ctx context.Context, id uuid.UUID) (Principal, error)
	GetPrincipalByUsernameOrEmail(ctx context.Context, identifier string) (Principal, error)
	UpdatePrincipal(ctx context.Context, p Principal) (Principal, error)
	ListPrincipals(ctx context.Context) ([]Principal, error)
	CountActiveAdmins(ctx context.Context) (int, error)
	DeletePrincipal(ctx context.Context, id uuid.UUID, hard bool) error

	CreateSession(ctx context.Context, s Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	ExtendSession(ctx context.Context, token string, expiresAt time.Time) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteSessionsByPrincipal(ctx context.Context, principalID uuid.UUID) error
}
