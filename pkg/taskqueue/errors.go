package taskqueue

import "errors"

var (
	// ErrUnknownTaskType is returned by Create when task-type is not
	// present in the registry at call time.
	ErrUnknownTaskType = errors.New("taskqueue: unknown task type")

	// ErrNotFound is returned when a task id does not resolve to a row.
	ErrNotFound = errors.New("taskqueue: task not found")

	// ErrNoWork is returned by the dispatcher when no claimable task
	// exists at the time of the attempt.
	ErrNoWork = errors.New("taskqueue: no work available")
)

// InvalidStatusTransitionError reports an attempt to move a task between
// two statuses that are not connected by a permitted edge.
type InvalidStatusTransitionError struct {
	From, To Status
}

func (e *InvalidStatusTransitionError) Error() string {
	return "taskqueue: invalid status transition from " + string(e.From) + " to " + string(e.To)
}

// ValidationError reports a single field-level validation failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "taskqueue: invalid " + e.Field + ": " + e.Reason
}
