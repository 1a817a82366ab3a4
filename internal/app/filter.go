package app

import (
	"strings"

	"github.com/hylla/swimlane/internal/domain"
)

// PriorityFilter narrows the visible tasks to one priority, or to all of them.
type PriorityFilter string

// PriorityAll shows every task regardless of priority.
const PriorityAll PriorityFilter = "all"

// PriorityFilters returns the filter cycle order used by the board view.
func PriorityFilters() []PriorityFilter {
	out := []PriorityFilter{PriorityAll}
	for _, priority := range domain.Priorities() {
		out = append(out, PriorityFilter(priority))
	}
	return out
}

// ParsePriorityFilter accepts "all" (or blank) and the known priorities.
func ParsePriorityFilter(raw string) (PriorityFilter, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" || raw == string(PriorityAll) {
		return PriorityAll, nil
	}
	priority := domain.NormalizePriority(raw)
	if priority == domain.PriorityNone || !priority.Valid() {
		return "", ErrInvalidPriorityFilter
	}
	return PriorityFilter(priority), nil
}

// Matches reports whether a task of priority passes the filter.
func (f PriorityFilter) Matches(priority domain.Priority) bool {
	if f == "" || f == PriorityAll {
		return true
	}
	return domain.Priority(f) == priority
}

// Next returns the filter after f in cycle order.
func (f PriorityFilter) Next() PriorityFilter {
	filters := PriorityFilters()
	for idx, candidate := range filters {
		if candidate == f {
			return filters[(idx+1)%len(filters)]
		}
	}
	return PriorityAll
}

// Label returns display text.
func (f PriorityFilter) Label() string {
	if f == "" || f == PriorityAll {
		return "All priorities"
	}
	return domain.Priority(f).Label()
}

// MatchesQuery reports whether query occurs, ignoring case, in the task's
// title, description or assignee. The query is used as typed, spaces
// included; only the empty query matches everything.
func MatchesQuery(task domain.Task, query string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	for _, field := range []string{task.Title, task.Description, task.Assignee} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// FilterTasks returns the subset of tasks passing both the query and the
// priority filter. The input map is not modified.
func FilterTasks(tasks map[string]domain.Task, query string, priority PriorityFilter) map[string]domain.Task {
	out := make(map[string]domain.Task, len(tasks))
	for id, task := range tasks {
		if !priority.Matches(task.Priority) || !MatchesQuery(task, query) {
			continue
		}
		out[id] = task.Clone()
	}
	return out
}
