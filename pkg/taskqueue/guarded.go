package taskqueue

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/taskforge/core/pkg/authz"
)

// Guarded wraps a Service with the authorization policy (C4) from §4.4,
// consulting the caller's role and resolved ownership before every
// task-mutating operation. This is the "all task-mutating API operations
// go through C4" path described in §2's control-flow summary; it is the
// seam the out-of-scope HTTP collaborator is expected to call through
// instead of touching Service directly.
type Guarded struct {
	svc *Service
}

// NewGuarded wraps svc with authorization checks.
func NewGuarded(svc *Service) *Guarded {
	return &Guarded{svc: svc}
}

// Create authorizes and creates a task owned by caller.
func (g *Guarded) Create(ctx context.Context, caller authz.Caller, taskType string, payload json.RawMessage, priority Priority, opts ...EnqueueOption) (Task, error) {
	if err := authz.Allow(caller, authz.ActionCreateTask, authz.Resource{}); err != nil {
		return Task{}, err
	}
	return g.svc.Create(ctx, caller.ID, taskType, payload, priority, opts...)
}

// Get authorizes and returns a task, enforcing the ownership rule from
// §4.4: a User may only read their own tasks, Moderator and Admin may
// read any.
func (g *Guarded) Get(ctx context.Context, caller authz.Caller, id uuid.UUID) (Task, error) {
	t, err := g.svc.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if err := authz.Allow(caller, authz.ActionReadTask, authz.Resource{OwnerID: t.CreatorID}); err != nil {
		return Task{}, err
	}
	return t, nil
}

// List authorizes and returns tasks matching filter. A User-role caller is
// force-scoped to their own tasks regardless of the filter's Creator field,
// so visibility can never widen by a crafted filter; Moderator and Admin
// see the filter as given.
func (g *Guarded) List(ctx context.Context, caller authz.Caller, filter ListFilter) ([]Task, error) {
	if err := authz.Allow(caller, authz.ActionListTasks, authz.Resource{OwnerID: caller.ID}); err != nil {
		return nil, err
	}
	if !caller.Role.AtLeast(authz.RoleModerator) {
		filter.Creator = &caller.ID
	}
	return g.svc.List(ctx, filter)
}

// Cancel authorizes and cancels a task.
func (g *Guarded) Cancel(ctx context.Context, caller authz.Caller, id uuid.UUID) (Task, error) {
	t, err := g.svc.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if err := authz.Allow(caller, authz.ActionCancelTask, authz.Resource{OwnerID: t.CreatorID}); err != nil {
		return Task{}, err
	}
	return g.svc.Cancel(ctx, id)
}

// Retry authorizes and retries a Failed or DeadLetter task.
func (g *Guarded) Retry(ctx context.Context, caller authz.Caller, id uuid.UUID) (Task, error) {
	t, err := g.svc.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if err := authz.Allow(caller, authz.ActionRetryTask, authz.Resource{OwnerID: t.CreatorID}); err != nil {
		return Task{}, err
	}
	return g.svc.Retry(ctx, id)
}

// Delete authorizes and deletes a task in a terminal status.
func (g *Guarded) Delete(ctx context.Context, caller authz.Caller, id uuid.UUID) error {
	t, err := g.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Allow(caller, authz.ActionDeleteTask, authz.Resource{OwnerID: t.CreatorID}); err != nil {
		return err
	}
	return g.svc.Delete(ctx, id)
}

// Stats and DeadLetter are Moderator+ administrative views over the whole
// queue; a User has no narrower "my stats" equivalent in §4.4, so both
// require at least Moderator.
func (g *Guarded) Stats(ctx context.Context, caller authz.Caller) (Stats, error) {
	if err := authz.Allow(caller, authz.ActionListTasks, authz.Resource{OwnerID: caller.ID}); err != nil {
		return nil, err
	}
	if !caller.Role.AtLeast(authz.RoleModerator) {
		return nil, authz.ErrForbidden
	}
	return g.svc.Stats(ctx)
}

// DeadLetter lists every dead-lettered task; Moderator+ only.
func (g *Guarded) DeadLetter(ctx context.Context, caller authz.Caller) ([]Task, error) {
	if !caller.Authenticated {
		return nil, authz.ErrUnauthenticated
	}
	if !caller.Role.AtLeast(authz.RoleModerator) {
		return nil, authz.ErrForbidden
	}
	return g.svc.DeadLetter(ctx)
}

// ListTypes is public per §4.4: no authorization required, not even
// anonymous-caller rejection.
func (g *Guarded) ListTypes(ctx context.Context) ([]Registration, error) {
	return g.svc.ListTypes(ctx)
}
