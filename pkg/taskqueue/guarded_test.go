package taskqueue_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/core/pkg/authz"
	"github.com/taskforge/core/pkg/taskqueue"
)

func newGuarded(t *testing.T) (*taskqueue.Guarded, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	reg := taskqueue.NewRegistry(newMemRegistryStore(), nil)
	handler := taskqueue.NewHandler("echo", func(_ context.Context, _ map[string]any) taskqueue.Outcome {
		return taskqueue.Ok()
	})
	require.NoError(t, reg.Register(ctx, "worker-0", "echo", handler))
	svc := taskqueue.NewService(newMemTaskStore(), reg)
	return taskqueue.NewGuarded(svc), uuid.New()
}

func TestGuarded_OwnerCanReadOwnTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, owner := newGuarded(t)

	caller := authz.Caller{ID: owner, Role: authz.RoleUser, Authenticated: true}
	created, err := g.Create(ctx, caller, "echo", nil, taskqueue.PriorityNormal)
	require.NoError(t, err)

	got, err := g.Get(ctx, caller, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestGuarded_OtherUserForbidden(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, owner := newGuarded(t)

	ownerCaller := authz.Caller{ID: owner, Role: authz.RoleUser, Authenticated: true}
	created, err := g.Create(ctx, ownerCaller, "echo", nil, taskqueue.PriorityNormal)
	require.NoError(t, err)

	other := authz.Caller{ID: uuid.New(), Role: authz.RoleUser, Authenticated: true}
	_, err = g.Get(ctx, other, created.ID)
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestGuarded_ModeratorCanReadAnyTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, owner := newGuarded(t)

	ownerCaller := authz.Caller{ID: owner, Role: authz.RoleUser, Authenticated: true}
	created, err := g.Create(ctx, ownerCaller, "echo", nil, taskqueue.PriorityNormal)
	require.NoError(t, err)

	mod := authz.Caller{ID: uuid.New(), Role: authz.RoleModerator, Authenticated: true}
	got, err := g.Get(ctx, mod, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestGuarded_PromotedUserGainsAccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, owner := newGuarded(t)

	ownerCaller := authz.Caller{ID: owner, Role: authz.RoleUser, Authenticated: true}
	created, err := g.Create(ctx, ownerCaller, "echo", nil, taskqueue.PriorityNormal)
	require.NoError(t, err)

	u2 := authz.Caller{ID: uuid.New(), Role: authz.RoleUser, Authenticated: true}
	_, err = g.Get(ctx, u2, created.ID)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	u2Promoted := authz.Caller{ID: u2.ID, Role: authz.RoleModerator, Authenticated: true}
	_, err = g.Get(ctx, u2Promoted, created.ID)
	assert.NoError(t, err)
}

func TestGuarded_ListScopesUserToOwnTasks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, owner := newGuarded(t)

	ownerCaller := authz.Caller{ID: owner, Role: authz.RoleUser, Authenticated: true}
	_, err := g.Create(ctx, ownerCaller, "echo", nil, taskqueue.PriorityNormal)
	require.NoError(t, err)

	other := authz.Caller{ID: uuid.New(), Role: authz.RoleUser, Authenticated: true}
	_, err = g.Create(ctx, other, "echo", nil, taskqueue.PriorityNormal)
	require.NoError(t, err)

	list, err := g.List(ctx, ownerCaller, taskqueue.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, owner, list[0].CreatorID)

	// A crafted filter naming another creator cannot widen visibility.
	list, err = g.List(ctx, ownerCaller, taskqueue.ListFilter{Creator: &other.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, owner, list[0].CreatorID)
}

func TestGuarded_DeadLetterRequiresModerator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, owner := newGuarded(t)

	caller := authz.Caller{ID: owner, Role: authz.RoleUser, Authenticated: true}
	_, err := g.DeadLetter(ctx, caller)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	mod := authz.Caller{ID: owner, Role: authz.RoleModerator, Authenticated: true}
	_, err = g.DeadLetter(ctx, mod)
	assert.NoError(t, err)
}

func TestGuarded_ListTypesIsPublic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, _ := newGuarded(t)

	types, err := g.ListTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 1)
}

func TestGuarded_UnauthenticatedCannotCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, _ := newGuarded(t)

	_, err := g.Create(ctx, authz.Caller{}, "echo", nil, taskqueue.PriorityNormal)
	assert.ErrorIs(t, err, authz.ErrUnauthenticated)
}
