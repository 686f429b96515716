// Package bootstrap implements the startup admin-provisioning step (C10):
// when no Admin principal exists yet, create one from configuration so a
// fresh deployment always has a way in.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/core/pkg/authz"
	"github.com/taskforge/core/pkg/identity"
	"github.com/taskforge/core/pkg/logger"
	"github.com/taskforge/core/pkg/vault"
)

// Config carries the bootstrap inputs sourced from environment
// configuration.
type Config struct {
	Username   string
	Email      string
	Password   string
	HashParams vault.Params
}

func (c Config) withDefaults() Config {
	if c.Username == "" {
		c.Username = "admin"
	}
	if c.Email == "" {
		c.Email = "admin@localhost"
	}
	return c
}

// nopeLogger is a small indirection around logger.NewNope so
// EnsureInitialAdmin's logger parameter can shadow the package name without
// losing access to it.
func nopeLogger() *slog.Logger {
	return logger.NewNope()
}

// EnsureInitialAdmin creates the configured admin principal when no active
// Admin exists and no principal already holds the configured username; an
// existing principal with that username is left untouched. An empty
// Password disables bootstrap entirely (no admin is provisioned). Safe to
// call on every process start: once an active Admin exists, subsequent
// calls are no-ops, making the operation idempotent across restarts.
func EnsureInitialAdmin(ctx context.Context, store identity.Store, cfg Config, logger *slog.Logger) error {
	if logger == nil {
		logger = nopeLogger()
	}
	if cfg.Password == "" {
		logger.Debug("no initial admin password configured, skipping bootstrap")
		return nil
	}
	cfg = cfg.withDefaults()

	count, err := store.CountActiveAdmins(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: count active admins: %w", err)
	}
	if count > 0 {
		logger.Debug("an active admin already exists, skipping bootstrap")
		return nil
	}

	if _, err := store.GetPrincipalByUsernameOrEmail(ctx, cfg.Username); err == nil {
		logger.Info("bootstrap principal already exists but is not an active admin, leaving it untouched", "username", cfg.Username)
		return nil
	} else if err != identity.ErrNotFound {
		return fmt.Errorf("bootstrap: look up existing principal: %w", err)
	}

	hashParams := cfg.HashParams
	if hashParams == (vault.Params{}) {
		hashParams = vault.DefaultParams()
	}
	hash, err := vault.Hash(cfg.Password, hashParams)
	if err != nil {
		return fmt.Errorf("bootstrap: hash initial admin password: %w", err)
	}

	now := time.Now().UTC()
	p := identity.Principal{
		ID:            uuid.New(),
		Username:      cfg.Username,
		Email:         cfg.Email,
		PasswordHash:  hash,
		Role:          authz.RoleAdmin,
		Active:        true,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := store.CreatePrincipal(ctx, p); err != nil {
		return fmt.Errorf("bootstrap: create initial admin: %w", err)
	}

	logger.Info("created initial admin principal", "username", cfg.Username)
	return nil
}
