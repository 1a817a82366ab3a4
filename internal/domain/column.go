package domain

import (
	"slices"
	"strings"
)

// A column is flagged as filling up at nearWIPNumerator/nearWIPDenominator of its limit.
const (
	nearWIPNumerator   = 4
	nearWIPDenominator = 5
)

// Column is a status bucket holding an ordered sequence of task ids.
type Column struct {
	ID       string
	Title    string
	Status   Status
	TaskIDs  []string
	WIPLimit int
}

// NewColumn constructs an empty column.
func NewColumn(id, title string, status Status, wipLimit int) (Column, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	if !status.Valid() {
		return Column{}, ErrInvalidStatus
	}
	if wipLimit < 0 {
		return Column{}, ErrInvalidWIPLimit
	}
	if title == "" {
		title = status.Label()
	}
	return Column{
		ID:       id,
		Title:    title,
		Status:   status,
		WIPLimit: wipLimit,
	}, nil
}

// Clone returns a copy that does not share the task id sequence.
func (c Column) Clone() Column {
	out := c
	out.TaskIDs = slices.Clone(c.TaskIDs)
	return out
}

// IndexOf returns the position of taskID in the sequence, or -1.
func (c Column) IndexOf(taskID string) int {
	return slices.Index(c.TaskIDs, taskID)
}

// Contains reports whether taskID is in the sequence.
func (c Column) Contains(taskID string) bool {
	return c.IndexOf(taskID) >= 0
}

// HasWIPLimit reports whether the column carries a maximum task count.
func (c Column) HasWIPLimit() bool {
	return c.WIPLimit > 0
}

// WIPProgress returns count as a percentage of the WIP limit, capped at 100.
// Columns without a limit report 0.
func (c Column) WIPProgress(count int) float64 {
	if !c.HasWIPLimit() {
		return 0
	}
	return min(float64(count)*100/float64(c.WIPLimit), 100)
}

// NearWIPLimit reports whether count is at or above 80% of the WIP limit.
func (c Column) NearWIPLimit(count int) bool {
	if !c.HasWIPLimit() {
		return false
	}
	return count*nearWIPDenominator >= c.WIPLimit*nearWIPNumerator
}

// AtWIPLimit reports whether count has reached the WIP limit.
func (c Column) AtWIPLimit(count int) bool {
	if !c.HasWIPLimit() {
		return false
	}
	return count >= c.WIPLimit
}

// CanAddTask reports whether the add-task affordance should be enabled.
// The limit is advisory: moves into a full column are still allowed.
func (c Column) CanAddTask(count int) bool {
	return !c.AtWIPLimit(count)
}
