// Package identity implements the session-based authentication and
// role-assignment core: principals, sessions, and the operations that
// create, authenticate, and manage them.
package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/core/pkg/authz"
)

// Principal is a registered user of the system.
type Principal struct {
	ID            uuid.UUID
	Username      string
	Email         string
	PasswordHash  string
	Role          authz.Role
	Active        bool
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLoginAt   *time.Time
}

// Session is an opaque bearer-token session bound to a principal.
type Session struct {
	Token       string
	PrincipalID uuid.UUID
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Valid reports whether the session has not expired as of now.
func (s Session) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
