// Package authz implements the role-hierarchy and ownership authorization
// policy gating every task operation. It is a pure function over a caller,
// a resource, and an action — no I/O, no store access.
package authz

import "github.com/google/uuid"

// Role is a principal's position in the role hierarchy. Roles are ordered:
// RoleUser < RoleModerator < RoleAdmin.
type Role int

const (
	RoleUser Role = iota
	RoleModerator
	RoleAdmin
)

// String implements fmt.Stringer.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleModerator:
		return "moderator"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// AtLeast reports whether r is at or above min in the hierarchy.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// Action identifies an operation being authorized.
type Action int

const (
	ActionCreateTask Action = iota
	ActionReadTask
	ActionListTasks
	ActionCancelTask
	ActionRetryTask
	ActionDeleteTask
	ActionRegisterTaskType
	ActionListTaskTypes
	ActionSetRole
	ActionSetActive
)

// Caller is the authenticated (or anonymous) principal attempting an action.
// A zero-value Caller with Authenticated=false represents an anonymous
// request.
type Caller struct {
	ID            uuid.UUID
	Role          Role
	Authenticated bool
}

// Resource describes the task being acted on, when the action is
// task-scoped. OwnerID is the zero UUID for actions that are not
// task-scoped (e.g. ActionSetRole).
type Resource struct {
	OwnerID uuid.UUID
}

// Allow reports whether caller may perform action on resource. It never
// performs I/O; ownership is resolved by the caller from the task store
// before invoking Allow.
func Allow(caller Caller, action Action, resource Resource) error {
	switch action {
	case ActionListTaskTypes:
		// Listing registered task types is public, per §4.4.
		return nil
	}

	if !caller.Authenticated {
		return ErrUnauthenticated
	}

	switch action {
	case ActionCreateTask:
		// Every authenticated role may create a task; ownership is fixed
		// to the caller at creation, so there is no resource check here.
		return nil

	case ActionRegisterTaskType:
		return nil

	case ActionReadTask, ActionListTasks, ActionCancelTask, ActionRetryTask, ActionDeleteTask:
		if caller.Role.AtLeast(RoleModerator) {
			return nil
		}
		if resource.OwnerID == caller.ID {
			return nil
		}
		return ErrForbidden

	case ActionSetRole:
		if caller.Role == RoleAdmin {
			return nil
		}
		return ErrForbidden

	case ActionSetActive:
		if caller.Role.AtLeast(RoleModerator) {
			return nil
		}
		return ErrForbidden

	default:
		return ErrForbidden
	}
}

// CanSetActive additionally encodes the role-pair restriction from §4.4:
// Moderators may deactivate Users but not other Moderators or Admins;
// only Admins may deactivate a Moderator. An Admin target is refused for
// every caller, Admins included, so no Admin (the last one or any other)
// can be deactivated or deleted through this check; the target must first
// be demoted via SetRole.
func CanSetActive(caller Caller, targetRole Role) error {
	if err := Allow(caller, ActionSetActive, Resource{}); err != nil {
		return err
	}
	if targetRole == RoleAdmin {
		return ErrForbidden
	}
	if targetRole == RoleModerator && caller.Role != RoleAdmin {
		return ErrForbidden
	}
	return nil
}
