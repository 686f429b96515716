// Package pgstore implements the Store contracts required by pkg/identity,
// pkg/taskqueue, and pkg/dispatcher over PostgreSQL using pgx.
package pgstore

import (
	"embed"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var Migrations embed.FS

// Store owns a pooled connection and implements the user-facing persistence
// contracts: identity.Store, taskqueue.Store, and taskqueue.RegistryStore.
// The lease-guarded dispatcher.ClaimStore protocol lives on the separate
// Dispatch type, since Go forbids two methods of the same name (e.g. a
// user-facing Cancel and a worker-facing Cancel) on one type.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an already-open, already-migrated pool. The caller retains
// ownership of pool and is responsible for closing it.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
