package taskqueue_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/core/pkg/cache"
	"github.com/taskforge/core/pkg/taskqueue"
)

type memRegistryStore struct {
	mu     sync.Mutex
	byName map[string]taskqueue.Registration
}

func newMemRegistryStore() *memRegistryStore {
	return &memRegistryStore{byName: make(map[string]taskqueue.Registration)}
}

func (m *memRegistryStore) UpsertRegistration(_ context.Context, r taskqueue.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byName[r.Name] = r
	return nil
}

func (m *memRegistryStore) GetRegistration(_ context.Context, name string) (taskqueue.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byName[name]
	if !ok {
		return taskqueue.Registration{}, taskqueue.ErrNotFound
	}
	return r, nil
}

func (m *memRegistryStore) ListRegistrations(_ context.Context) ([]taskqueue.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]taskqueue.Registration, 0, len(m.byName))
	for _, r := range m.byName {
		out = append(out, r)
	}
	return out, nil
}

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemRegistryStore()
	reg := taskqueue.NewRegistry(store, nil)

	handler := taskqueue.NewHandler("echoes its payload", func(_ context.Context, _ map[string]any) taskqueue.Outcome {
		return taskqueue.Ok()
	})

	require.NoError(t, reg.Register(ctx, "worker-0", "echo", handler))
	require.NoError(t, reg.Register(ctx, "worker-0", "echo", handler))

	types, err := reg.ListTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 1)

	got, ok := reg.Lookup("echo")
	require.True(t, ok)
	assert.Equal(t, handler.Describe(), got.Describe())
}

func TestRegistry_ExistsGatesUnknownTypes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemRegistryStore()
	reg := taskqueue.NewRegistry(store, nil)

	ok, err := reg.Exists(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, ok)

	handler := taskqueue.NewHandler("noop", func(_ context.Context, _ map[string]any) taskqueue.Outcome {
		return taskqueue.Ok()
	})
	require.NoError(t, reg.Register(ctx, "worker-0", "ghost", handler))

	ok, err = reg.Exists(ctx, "ghost")
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestRegistry_ExistsDoesNotCacheNegatives guards against a registration
// landing just after a cached miss being spuriously rejected as unknown
// for the remainder of the cache TTL.
func TestRegistry_ExistsDoesNotCacheNegatives(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemRegistryStore()
	existsCache := cache.NewMemory[bool]()
	defer existsCache.Close()
	reg := taskqueue.NewRegistry(store, existsCache)

	ok, err := reg.Exists(ctx, "late-comer")
	require.NoError(t, err)
	assert.False(t, ok)

	handler := taskqueue.NewHandler("noop", func(_ context.Context, _ map[string]any) taskqueue.Outcome {
		return taskqueue.Ok()
	})
	require.NoError(t, reg.Register(ctx, "worker-0", "late-comer", handler))

	ok, err = reg.Exists(ctx, "late-comer")
	require.NoError(t, err)
	assert.True(t, ok, "a registration after a cached miss must be visible immediately, not after the cache TTL")
}
