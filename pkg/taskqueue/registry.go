package taskqueue

import (
	"context"
	"sync"
	"time"

	"github.com/taskforge/core/pkg/cache"
)

// Registration is a persisted task-type descriptor.
type Registration struct {
	Name         string
	Description  string
	RegisteredAt time.Time
	RegisteredBy string
}

// RegistryStore is the persistence contract for task-type registrations.
type RegistryStore interface {
	UpsertRegistration(ctx context.Context, r Registration) error
	GetRegistration(ctx context.Context, name string) (Registration, error)
	ListRegistrations(ctx context.Context) ([]Registration, error)
}

// Registry is the task registry (C5): a persisted mapping from task-type
// name to descriptor, plus the local handler table a worker process uses
// to dispatch to Go functions. Registry entries survive worker restarts
// because they live in RegistryStore; the handler table does not, since
// handler code cannot be persisted and must be re-registered on startup.
type Registry struct {
	store RegistryStore

	mu       sync.RWMutex
	handlers map[string]Handler

	existsCache cache.Cache[bool]
}

// NewRegistry constructs a Registry backed by store. existsCache is
// optional; pass nil to skip the per-worker presence cache described for
// the dispatcher's registry-gate check.
func NewRegistry(store RegistryStore, existsCache cache.Cache[bool]) *Registry {
	return &Registry{
		store:       store,
		handlers:    make(map[string]Handler),
		existsCache: existsCache,
	}
}

// Register records a handler for task-type name, both persisting its
// descriptor and making it locally dispatchable by this worker process.
// Calling Register twice with the same name is a no-op at the store layer
// (idempotent upsert); the local handler is always replaced, since
// handler code is the authoritative source of truth per task-type.
func (r *Registry) Register(ctx context.Context, workerID, name string, handler Handler) error {
	r.mu.Lock()
	r.handlers[name] = handler
	r.mu.Unlock()

	return r.store.UpsertRegistration(ctx, Registration{
		Name:         name,
		Description:  handler.Describe(),
		RegisteredAt: time.Now().UTC(),
		RegisteredBy: workerID,
	})
}

// Lookup returns the locally-registered handler for name, for use by the
// worker runtime's execute step. It does not consult the store: a worker
// can only invoke handlers it has itself registered at startup.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// ListTypes returns every registered task-type descriptor, for the
// list-types operation (public, no authentication required).
func (r *Registry) ListTypes(ctx context.Context) ([]Registration, error) {
	return r.store.ListRegistrations(ctx)
}

// existsCacheTTL bounds how long a positive presence result is trusted
// before Create must re-confirm it against the store.
const existsCacheTTL = 30 * time.Second

// Exists reports whether name is a registered task type. Only a positive
// result is cached (via cache.GetOrSetTruthy): a registration that lands
// between checks is visible on the very next call instead of being
// mistaken for UnknownTaskType until a cached miss expires.
func (r *Registry) Exists(ctx context.Context, name string) (bool, error) {
	if r.existsCache == nil {
		_, err := r.store.GetRegistration(ctx, name)
		return err == nil, nil
	}

	return cache.GetOrSetTruthy(ctx, r.existsCache, name, func(ctx context.Context) (bool, time.Duration, error) {
		_, err := r.store.GetRegistration(ctx, name)
		return err == nil, existsCacheTTL, nil
	})
}
