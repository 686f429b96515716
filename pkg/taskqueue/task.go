// Package taskqueue implements the task registry (C5), task store (C6),
// and retry/dead-letter policy (C9) shared by the dispatcher and worker
// runtime.
package taskqueue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is a task's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusRunning    Status = "running"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusRetrying   Status = "retrying"
	StatusDeadLetter Status = "dead_letter"
)

// IsTerminal reports whether a task in status s is eligible for delete(id)
// per §3: Completed, Cancelled, DeadLetter, and Failed all end a task's
// lifecycle even though Failed and DeadLetter can still be reopened by an
// explicit retry(id).
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusDeadLetter, StatusFailed:
		return true
	default:
		return false
	}
}

// Priority is advisory ordering only; it never preempts a running task.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

// ParsePriority converts a lowercase string into a Priority, defaulting to
// PriorityNormal on an empty string.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "", "normal":
		return PriorityNormal, nil
	case "low":
		return PriorityLow, nil
	case "high":
		return PriorityHigh, nil
	default:
		return 0, &ValidationError{Field: "priority", Reason: "must be one of low, normal, high"}
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "normal"
	}
}

// Task is a unit of work dispatched to at most one worker at a time.
type Task struct {
	ID              uuid.UUID
	TaskType        string
	Payload         json.RawMessage
	Status          Status
	Priority        Priority
	Attempts        int
	MaxAttempts     int
	NextEarliestRun time.Time
	LeaseDeadline   *time.Time
	LeasedBy        string
	CancelRequested bool
	CreatorID       uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastError       string
	CompletedAt     *time.Time
	Tags            []string
}

// allowedTransitions enumerates every permitted status transition per §3.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusRunning:   true,
		StatusCancelled: true,
	},
	StatusRunning: {
		StatusCompleted:  true,
		StatusRetrying:   true,
		StatusDeadLetter: true,
		StatusCancelled:  true,
		StatusFailed:     true, // administrative force-fail outside the handler outcome taxonomy
		StatusRunning:    true, // reclaim: lease renewed, still Running
	},
	StatusRetrying: {
		StatusRunning:   true,
		StatusCancelled: true,
	},
	StatusFailed: {
		StatusRetrying: true, // manual retry()
	},
	StatusDeadLetter: {
		StatusRetrying: true, // manual retry()
	},
}

// CanTransition reports whether from -> to is a permitted status
// transition.
func CanTransition(from, to Status) bool {
	if from == to {
		return from == StatusRunning
	}
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}
