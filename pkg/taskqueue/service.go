package taskqueue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Service implements the task store operations (C6) layered over Store,
// enforcing the registry gate on Create and carrying the default
// max-attempts policy.
type Service struct {
	store              Store
	registry           *Registry
	defaultMaxAttempts int
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithDefaultMaxAttempts overrides the default max-attempts applied to
// tasks created without an explicit override (spec default: 5).
func WithDefaultMaxAttempts(n int) ServiceOption {
	return func(s *Service) { s.defaultMaxAttempts = n }
}

// NewService constructs a Service.
func NewService(store Store, registry *Registry, opts ...ServiceOption) *Service {
	s := &Service{store: store, registry: registry, defaultMaxAttempts: 5}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates taskType against the registry and persists a new
// Pending task.
func (s *Service) Create(ctx context.Context, creator uuid.UUID, taskType string, payload json.RawMessage, priority Priority, opts ...EnqueueOption) (Task, error) {
	ok, err := s.registry.Exists(ctx, taskType)
	if err != nil {
		return Task{}, err
	}
	if !ok {
		return Task{}, ErrUnknownTaskType
	}

	now := time.Now().UTC()
	t := Task{
		ID:              uuid.New(),
		TaskType:        taskType,
		Payload:         payload,
		Status:          StatusPending,
		Priority:        priority,
		Attempts:        0,
		MaxAttempts:     s.defaultMaxAttempts,
		NextEarliestRun: now,
		CreatorID:       creator,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, opt := range opts {
		opt(&t)
	}

	return s.store.Create(ctx, t)
}

// Get returns a task by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Task, error) {
	return s.store.Get(ctx, id)
}

// List returns tasks matching filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Task, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.store.List(ctx, filter)
}

// Cancel requests cancellation of a task. From Pending/Retrying it takes
// effect immediately; from Running it is recorded and honored
// cooperatively at the next heartbeat.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (Task, error) {
	return s.store.Cancel(ctx, id)
}

// Retry resets a Failed or DeadLetter task back to Retrying, bumping
// max-attempts when coming from DeadLetter so the task gets one more
// attempt beyond what exhausted it.
func (s *Service) Retry(ctx context.Context, id uuid.UUID) (Task, error) {
	return s.store.Retry(ctx, id)
}

// Delete removes a task in a terminal status (Completed, Cancelled,
// DeadLetter, or Failed).
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !t.Status.IsTerminal() {
		return &InvalidStatusTransitionError{From: t.Status, To: "deleted"}
	}
	return s.store.Delete(ctx, id)
}

// Stats returns task counts per status.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.store.Stats(ctx)
}

// DeadLetter returns every task currently in the dead-letter queue.
func (s *Service) DeadLetter(ctx context.Context) ([]Task, error) {
	return s.store.DeadLetter(ctx)
}

// ListTypes returns every registered task-type descriptor.
func (s *Service) ListTypes(ctx context.Context) ([]Registration, error) {
	return s.registry.ListTypes(ctx)
}
