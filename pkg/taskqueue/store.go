package taskqueue

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows a List call. Zero values mean "no filter on this
// field". Limit is clamped to 100 by implementations.
type ListFilter struct {
	Status   *Status
	TaskType string
	Creator  *uuid.UUID
	Tag      string
	Limit    int
	Offset   int
}

// Stats reports task counts grouped by status.
type Stats map[Status]int

// Store is the persistence contract for the task store (C6). Every
// mutation is a single transaction; status transitions are validated
// against CanTransition.
type Store interface {
	Create(ctx context.Context, t Task) (Task, error)
	Get(ctx context.Context, id uuid.UUID) (Task, error)
	List(ctx context.Context, filter ListFilter) ([]Task, error)
	Cancel(ctx context.Context, id uuid.UUID) (Task, error)
	Retry(ctx context.Context, id uuid.UUID) (Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (Stats, error)
	DeadLetter(ctx context.Context) ([]Task, error)
}

// EnqueueOption customizes Create beyond its required arguments.
type EnqueueOption func(*Task)

// WithMaxAttempts overrides the policy default max-attempts for a single
// task.
func WithMaxAttempts(n int) EnqueueOption {
	return func(t *Task) { t.MaxAttempts = n }
}

// WithTags attaches a tag set used for grouping and filtered stats.
func WithTags(tags ...string) EnqueueOption {
	return func(t *Task) { t.Tags = tags }
}
