package identity

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/core/pkg/authz"
	"github.com/taskforge/core/pkg/vault"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)

// emailPattern is a pragmatic RFC-5322-compatible check, not a full
// grammar: local@domain with at least one dot in the domain part.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Option configures a Service.
type Option func(*Service)

// WithSessionTTL overrides the default session lifetime.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) { s.sessionTTL = d }
}

// WithHashParams overrides the Argon2id cost parameters used for new
// password hashes.
func WithHashParams(p vault.Params) Option {
	return func(s *Service) { s.hashParams = p }
}

// Service implements the identity & session core (C3) described by the
// register/authenticate/lookup/refresh/revoke/set-role/set-active
// operations. It holds no database connection directly; all persistence
// goes through Store.
type Service struct {
	store      Store
	sessionTTL time.Duration
	hashParams vault.Params
}

// NewService constructs a Service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		sessionTTL: 24 * time.Hour,
		hashParams: vault.DefaultParams(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates and creates a new Principal with role=User.
func (s *Service) Register(ctx context.Context, username, email, password string) (Principal, error) {
	if !usernamePattern.MatchString(username) {
		return Principal{}, &ValidationError{Field: "username", Reason: "must be 3-64 characters of letters, digits, underscore, or dash"}
	}
	if !emailPattern.MatchString(email) {
		return Principal{}, &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if len(password) < 8 {
		return Principal{}, &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}

	existing, err := s.store.GetPrincipalByUsernameOrEmail(ctx, strings.ToLower(username))
	if err == nil {
		if strings.EqualFold(existing.Username, username) {
			return Principal{}, ErrDuplicateUsername
		}
		return Principal{}, ErrDuplicateEmail
	}

	existing, err = s.store.GetPrincipalByUsernameOrEmail(ctx, strings.ToLower(email))
	if err == nil {
		if strings.EqualFold(existing.Email, email) {
			return Principal{}, ErrDuplicateEmail
		}
		return Principal{}, ErrDuplicateUsername
	}

	hash, err := vault.Hash(password, s.hashParams)
	if err != nil {
		return Principal{}, fmt.Errorf("identity: hash password: %w", err)
	}

	now := time.Now().UTC()
	p := Principal{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         authz.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return s.store.CreatePrincipal(ctx, p)
}

// Authenticate verifies identifier (username or email) and password,
// issuing a new Session on success.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (Session, error) {
	p, err := s.store.GetPrincipalByUsernameOrEmail(ctx, identifier)
	if err != nil {
		// Run a dummy verify to keep the failure path's timing close to the
		// success path, so a caller cannot distinguish "no such user" from
		// "wrong password" by latency.
		_, _ = vault.Verify(password, dummyHash)
		return Session{}, ErrInvalidCredentials
	}
	if !p.Active {
		return Session{}, ErrInvalidCredentials
	}

	ok, err := vault.Verify(password, p.PasswordHash)
	if err != nil || !ok {
		return Session{}, ErrInvalidCredentials
	}

	token, err := vault.NewToken()
	if err != nil {
		return Session{}, fmt.Errorf("identity: generate session token: %w", err)
	}

	now := time.Now().UTC()
	session, err := s.store.CreateSession(ctx, Session{
		Token:       token,
		PrincipalID: p.ID,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.sessionTTL),
	})
	if err != nil {
		return Session{}, err
	}

	p.LastLoginAt = &now
	p.UpdatedAt = now
	if _, err := s.store.UpdatePrincipal(ctx, p); err != nil {
		return Session{}, err
	}

	return session, nil
}

// dummyHash is a fixed, well-formed Argon2id hash used only to equalize
// the cost of a failed lookup with the cost of a failed password check.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=2$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Lookup returns the Principal owning a valid session token.
func (s *Service) Lookup(ctx context.Context, token string) (Principal, error) {
	session, err := s.store.GetSession(ctx, token)
	if err != nil {
		return Principal{}, ErrInvalidSession
	}
	if !session.Valid(time.Now().UTC()) {
		return Principal{}, ErrInvalidSession
	}

	p, err := s.store.GetPrincipalByID(ctx, session.PrincipalID)
	if err != nil || !p.Active {
		return Principal{}, ErrInvalidSession
	}
	return p, nil
}

// Refresh extends a session's expiry by the configured TTL.
func (s *Service) Refresh(ctx context.Context, token string) (Session, error) {
	session, err := s.store.GetSession(ctx, token)
	if err != nil || !session.Valid(time.Now().UTC()) {
		return Session{}, ErrInvalidSession
	}
	return s.store.ExtendSession(ctx, token, time.Now().UTC().Add(s.sessionTTL))
}

// Revoke terminates a single session.
func (s *Service) Revoke(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// RevokeAll terminates every session belonging to a principal in one
// transactional step.
func (s *Service) RevokeAll(ctx context.Context, principalID uuid.UUID) error {
	return s.store.DeleteSessionsByPrincipal(ctx, principalID)
}

// SetRole changes target's role. Only an Admin caller may call this, and
// an Admin may not demote themselves if doing so would leave zero Admins.
func (s *Service) SetRole(ctx context.Context, caller authz.Caller, target uuid.UUID, newRole authz.Role) (Principal, error) {
	if caller.Role != authz.RoleAdmin {
		return Principal{}, authz.ErrForbidden
	}

	p, err := s.store.GetPrincipalByID(ctx, target)
	if err != nil {
		return Principal{}, ErrNotFound
	}

	if p.ID == caller.ID && p.Role == authz.RoleAdmin && newRole != authz.RoleAdmin {
		count, err := s.store.CountActiveAdmins(ctx)
		if err != nil {
			return Principal{}, err
		}
		if count <= 1 {
			return Principal{}, ErrLastAdmin
		}
	}

	p.Role = newRole
	p.UpdatedAt = time.Now().UTC()
	return s.store.UpdatePrincipal(ctx, p)
}

// Get returns a principal by id, for the HTTP collaborator's "get user"
// operation.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Principal, error) {
	return s.store.GetPrincipalByID(ctx, id)
}

// List returns every principal, for the HTTP collaborator's "list users"
// operation.
func (s *Service) List(ctx context.Context) ([]Principal, error) {
	return s.store.ListPrincipals(ctx)
}

// ChangePassword verifies the caller's current password before replacing
// it, so a stolen session token alone cannot rotate credentials.
func (s *Service) ChangePassword(ctx context.Context, principalID uuid.UUID, currentPassword, newPassword string) error {
	p, err := s.store.GetPrincipalByID(ctx, principalID)
	if err != nil {
		return ErrNotFound
	}

	ok, err := vault.Verify(currentPassword, p.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}
	if len(newPassword) < 8 {
		return &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}

	hash, err := vault.Hash(newPassword, s.hashParams)
	if err != nil {
		return fmt.Errorf("identity: hash password: %w", err)
	}

	p.PasswordHash = hash
	p.UpdatedAt = time.Now().UTC()
	_, err = s.store.UpdatePrincipal(ctx, p)
	return err
}

// ResetPassword is an administrative credential reset: unlike
// ChangePassword it does not require knowledge of the prior password,
// matching the HTTP collaborator's admin-initiated "reset password"
// operation. Only an Admin caller may invoke it.
func (s *Service) ResetPassword(ctx context.Context, caller authz.Caller, target uuid.UUID, newPassword string) error {
	if caller.Role != authz.RoleAdmin {
		return authz.ErrForbidden
	}
	p, err := s.store.GetPrincipalByID(ctx, target)
	if err != nil {
		return ErrNotFound
	}
	if len(newPassword) < 8 {
		return &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}

	hash, err := vault.Hash(newPassword, s.hashParams)
	if err != nil {
		return fmt.Errorf("identity: hash password: %w", err)
	}

	p.PasswordHash = hash
	p.UpdatedAt = time.Now().UTC()
	_, err = s.store.UpdatePrincipal(ctx, p)
	return err
}

// UpdateProfile changes a principal's own username/email, re-validating
// format and uniqueness exactly as Register does.
func (s *Service) UpdateProfile(ctx context.Context, principalID uuid.UUID, username, email string) (Principal, error) {
	if !usernamePattern.MatchString(username) {
		return Principal{}, &ValidationError{Field: "username", Reason: "must be 3-64 characters of letters, digits, underscore, or dash"}
	}
	if !emailPattern.MatchString(email) {
		return Principal{}, &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}

	p, err := s.store.GetPrincipalByID(ctx, principalID)
	if err != nil {
		return Principal{}, ErrNotFound
	}

	if existing, err := s.store.GetPrincipalByUsernameOrEmail(ctx, strings.ToLower(username)); err == nil && existing.ID != principalID {
		return Principal{}, ErrDuplicateUsername
	}
	if existing, err := s.store.GetPrincipalByUsernameOrEmail(ctx, strings.ToLower(email)); err == nil && existing.ID != principalID {
		return Principal{}, ErrDuplicateEmail
	}

	p.Username = username
	p.Email = email
	p.UpdatedAt = time.Now().UTC()
	return s.store.UpdatePrincipal(ctx, p)
}

// Delete soft-deletes target (deactivates it) unless hard is true, in
// which case the row is permanently removed. Gated by the same
// role-pair rule as SetActive: an Admin target can never be reached this
// way, so it must first be demoted via SetRole, where the last-Admin
// protection already lives.
func (s *Service) Delete(ctx context.Context, caller authz.Caller, target uuid.UUID, hard bool) error {
	p, err := s.store.GetPrincipalByID(ctx, target)
	if err != nil {
		return ErrNotFound
	}
	if err := authz.CanSetActive(caller, p.Role); err != nil {
		return err
	}
	if hard && caller.Role != authz.RoleAdmin {
		return authz.ErrForbidden
	}
	return s.store.DeletePrincipal(ctx, target, hard)
}

// SetActive activates or deactivates target. Moderator+ may deactivate a
// User; only Admin may deactivate a Moderator; no one may deactivate an
// Admin, because authz.CanSetActive refuses every Admin target (so the
// last-Admin count check below is never reached).
func (s *Service) SetActive(ctx context.Context, caller authz.Caller, target uuid.UUID, active bool) (Principal, error) {
	p, err := s.store.GetPrincipalByID(ctx, target)
	if err != nil {
		return Principal{}, ErrNotFound
	}

	if !active {
		if err := authz.CanSetActive(caller, p.Role); err != nil {
			return Principal{}, err
		}
		if p.Role == authz.RoleAdmin {
			count, err := s.store.CountActiveAdmins(ctx)
			if err != nil {
				return Principal{}, err
			}
			if count <= 1 {
				return Principal{}, ErrLastAdmin
			}
		}
	} else if !caller.Role.AtLeast(authz.RoleModerator) {
		return Principal{}, authz.ErrForbidden
	}

	p.Active = active
	p.UpdatedAt = time.Now().UTC()
	return s.store.UpdatePrincipal(ctx, p)
}
