package domain

import (
	"slices"
	"strings"
)

// Status is the workflow state of a task and the join key between tasks and columns.
type Status string

// Canonical board statuses.
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

var validStatuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone}

// Statuses returns the canonical statuses in workflow order.
func Statuses() []Status {
	return slices.Clone(validStatuses)
}

// NormalizeStatus canonicalizes user-facing status spellings.
func NormalizeStatus(raw string) Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	switch s {
	case "to-do", "todo", "backlog":
		return StatusTodo
	case "in-progress", "progress", "doing", "inprogress":
		return StatusInProgress
	case "review", "in-review":
		return StatusReview
	case "done", "complete", "completed":
		return StatusDone
	default:
		return Status(s)
	}
}

// Valid reports whether the status is one of the canonical values.
func (s Status) Valid() bool {
	return slices.Contains(validStatuses, s)
}

// Label returns the display label for the status.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusReview:
		return "Review"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Priority is the optional urgency of a task. The empty value means unset.
type Priority string

// Supported priorities.
const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Priorities returns the settable priorities from lowest to highest.
func Priorities() []Priority {
	return slices.Clone(validPriorities)
}

// NormalizePriority lower-cases and trims a raw priority value.
func NormalizePriority(raw string) Priority {
	return Priority(strings.ToLower(strings.TrimSpace(raw)))
}

// Valid reports whether the priority is unset or one of the supported values.
func (p Priority) Valid() bool {
	return p == PriorityNone || slices.Contains(validPriorities, p)
}

// Label returns the display label for the priority.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityUrgent:
		return "Urgent"
	default:
		return ""
	}
}
