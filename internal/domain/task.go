package domain

import (
	"slices"
	"strings"
	"time"
)

// CopySuffix is appended to the title of a duplicated task.
const CopySuffix = " (Copy)"

// Task is one card on the board.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Assignee    string
	Tags        []string
	CreatedAt   time.Time
	DueAt       *time.Time
}

// TaskInput holds the caller-supplied fields of a new task. ID and creation
// time are assigned by the board.
type TaskInput struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Assignee    string
	Tags        []string
	DueAt       *time.Time
}

// TaskPatch lists the fields an update replaces. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	Assignee    *string
	Tags        *[]string
	DueAt       *time.Time
	ClearDueAt  bool
}

// NewTask validates in and builds a task stamped with now.
func NewTask(id string, in TaskInput, now time.Time) (Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Task{}, ErrInvalidID
	}
	task := Task{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
		Priority:    NormalizePriority(string(in.Priority)),
		Assignee:    strings.TrimSpace(in.Assignee),
		Tags:        normalizeTags(in.Tags),
		CreatedAt:   now.UTC(),
		DueAt:       normalizeDueAt(in.DueAt),
	}
	if err := task.validate(); err != nil {
		return Task{}, err
	}
	return task, nil
}

// Apply merges patch into a copy of t and validates the result.
func (t Task) Apply(patch TaskPatch) (Task, error) {
	out := t.Clone()
	if patch.Title != nil {
		out.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		out.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		out.Status = *patch.Status
	}
	if patch.Priority != nil {
		out.Priority = NormalizePriority(string(*patch.Priority))
	}
	if patch.Assignee != nil {
		out.Assignee = strings.TrimSpace(*patch.Assignee)
	}
	if patch.Tags != nil {
		out.Tags = normalizeTags(*patch.Tags)
	}
	switch {
	case patch.ClearDueAt:
		out.DueAt = nil
	case patch.DueAt != nil:
		out.DueAt = normalizeDueAt(patch.DueAt)
	}
	if err := out.validate(); err != nil {
		return Task{}, err
	}
	return out, nil
}

// Clone returns a deep copy so board snapshots never share slices or pointers.
func (t Task) Clone() Task {
	out := t
	if t.Tags != nil {
		out.Tags = slices.Clone(t.Tags)
	}
	if t.DueAt != nil {
		due := *t.DueAt
		out.DueAt = &due
	}
	return out
}

// IsOverdue reports whether the due date is in the past and not on now's calendar day.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueAt == nil {
		return false
	}
	due := t.DueAt.In(now.Location())
	if sameDay(due, now) {
		return false
	}
	return due.Before(now)
}

// AssigneeInitials returns up to two upper-case initials of the assignee.
func (t Task) AssigneeInitials() string {
	initials := make([]rune, 0, 2)
	for _, part := range strings.Fields(t.Assignee) {
		initials = append(initials, []rune(part)[0])
		if len(initials) == 2 {
			break
		}
	}
	return strings.ToUpper(string(initials))
}

func (t Task) validate() error {
	if t.Title == "" {
		return ErrInvalidTitle
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func normalizeDueAt(dueAt *time.Time) *time.Time {
	if dueAt == nil {
		return nil
	}
	ts := dueAt.UTC().Truncate(time.Second)
	return &ts
}

// normalizeTags trims tags and drops blanks and repeats, keeping first-seen order.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, raw := range tags {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
