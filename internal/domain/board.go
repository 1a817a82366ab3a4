package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Board is the columns plus the task mapping. It is a value: every command
// returns the next board and leaves the receiver untouched, so no caller can
// observe a half-applied change.
type Board struct {
	columns []Column
	tasks   map[string]Task
}

// NewBoard validates the initial columns and tasks and builds a consistent board.
// Sequence ids with no task record and tasks held by no column are dropped.
func NewBoard(columns []Column, tasks map[string]Task) (Board, error) {
	b := Board{
		columns: make([]Column, 0, len(columns)),
		tasks:   make(map[string]Task, len(tasks)),
	}

	seenColumn := map[string]struct{}{}
	seenStatus := map[Status]struct{}{}
	for idx, raw := range columns {
		column, err := NewColumn(raw.ID, raw.Title, raw.Status, raw.WIPLimit)
		if err != nil {
			return Board{}, fmt.Errorf("columns[%d]: %w", idx, err)
		}
		if _, ok := seenColumn[column.ID]; ok {
			return Board{}, fmt.Errorf("columns[%d] %q: %w", idx, column.ID, ErrDuplicateID)
		}
		if _, ok := seenStatus[column.Status]; ok {
			return Board{}, fmt.Errorf("columns[%d] %q: %w", idx, column.Status, ErrDuplicateStatus)
		}
		seenColumn[column.ID] = struct{}{}
		seenStatus[column.Status] = struct{}{}
		column.TaskIDs = slices.Clone(raw.TaskIDs)
		b.columns = append(b.columns, column)
	}

	for key, task := range tasks {
		if strings.TrimSpace(key) == "" || key != task.ID {
			return Board{}, fmt.Errorf("task %q keyed as %q: %w", task.ID, key, ErrInvalidID)
		}
		if err := task.validate(); err != nil {
			return Board{}, fmt.Errorf("task %q: %w", key, err)
		}
	}

	placed := map[string]struct{}{}
	for cIdx := range b.columns {
		column := &b.columns[cIdx]
		kept := make([]string, 0, len(column.TaskIDs))
		for _, id := range column.TaskIDs {
			if _, ok := placed[id]; ok {
				return Board{}, fmt.Errorf("column %q task %q: %w", column.ID, id, ErrDuplicateID)
			}
			task, ok := tasks[id]
			if !ok {
				continue
			}
			if task.Status != column.Status {
				return Board{}, fmt.Errorf("column %q task %q has status %q: %w", column.ID, id, task.Status, ErrStatusMismatch)
			}
			placed[id] = struct{}{}
			kept = append(kept, id)
			b.tasks[id] = task.Clone()
		}
		column.TaskIDs = kept
	}
	return b, nil
}

// Columns returns a copy of the columns in board order.
func (b Board) Columns() []Column {
	out := make([]Column, 0, len(b.columns))
	for _, column := range b.columns {
		out = append(out, column.Clone())
	}
	return out
}

// Column returns the column with the given id.
func (b Board) Column(id string) (Column, bool) {
	idx := b.columnIndex(id)
	if idx < 0 {
		return Column{}, false
	}
	return b.columns[idx].Clone(), true
}

// ColumnByStatus returns the column holding tasks of status.
func (b Board) ColumnByStatus(status Status) (Column, bool) {
	idx := b.columnIndexByStatus(status)
	if idx < 0 {
		return Column{}, false
	}
	return b.columns[idx].Clone(), true
}

// Tasks returns a copy of the task mapping.
func (b Board) Tasks() map[string]Task {
	out := make(map[string]Task, len(b.tasks))
	for id, task := range b.tasks {
		out[id] = task.Clone()
	}
	return out
}

// Task returns the task with the given id.
func (b Board) Task(id string) (Task, bool) {
	task, ok := b.tasks[id]
	if !ok {
		return Task{}, false
	}
	return task.Clone(), true
}

// TaskIDs returns every task id, sorted.
func (b Board) TaskIDs() []string {
	return slices.Sorted(maps.Keys(b.tasks))
}

// TaskCount returns the number of tasks on the board.
func (b Board) TaskCount() int {
	return len(b.tasks)
}

// ColumnTasks returns the tasks of a column in sequence order.
func (b Board) ColumnTasks(columnID string) ([]Task, error) {
	idx := b.columnIndex(columnID)
	if idx < 0 {
		return nil, ErrColumnNotFound
	}
	out := make([]Task, 0, len(b.columns[idx].TaskIDs))
	for _, id := range b.columns[idx].TaskIDs {
		if task, ok := b.tasks[id]; ok {
			out = append(out, task.Clone())
		}
	}
	return out, nil
}

// AddTask builds a task from in and appends it to the column matching its status.
func (b Board) AddTask(id string, in TaskInput, now time.Time) (Board, Task, error) {
	task, err := NewTask(id, in, now)
	if err != nil {
		return b, Task{}, err
	}
	if _, exists := b.tasks[task.ID]; exists {
		return b, Task{}, ErrDuplicateID
	}
	cIdx := b.columnIndexByStatus(task.Status)
	if cIdx < 0 {
		return b, Task{}, fmt.Errorf("status %q: %w", task.Status, ErrColumnNotFound)
	}

	next := b.clone()
	next.tasks[task.ID] = task
	next.columns[cIdx].TaskIDs = append(slices.Clone(next.columns[cIdx].TaskIDs), task.ID)
	return next, task.Clone(), nil
}

// UpdateTask merges patch into the task. A status change moves the id to the
// end of the column for the new status.
func (b Board) UpdateTask(id string, patch TaskPatch) (Board, Task, error) {
	current, ok := b.tasks[id]
	if !ok {
		return b, Task{}, ErrTaskNotFound
	}
	updated, err := current.Apply(patch)
	if err != nil {
		return b, Task{}, err
	}

	next := b.clone()
	if updated.Status != current.Status {
		toIdx := next.columnIndexByStatus(updated.Status)
		if toIdx < 0 {
			return b, Task{}, fmt.Errorf("status %q: %w", updated.Status, ErrColumnNotFound)
		}
		for cIdx := range next.columns {
			if next.columns[cIdx].Contains(id) {
				next.columns[cIdx].TaskIDs = removeID(next.columns[cIdx].TaskIDs, id)
			}
		}
		next.columns[toIdx].TaskIDs = append(slices.Clone(next.columns[toIdx].TaskIDs), id)
	}
	next.tasks[id] = updated
	return next, updated.Clone(), nil
}

// DeleteTask removes the task and its id from every column. It reports
// whether anything was removed; deleting an absent id is a no-op.
func (b Board) DeleteTask(id string) (Board, bool) {
	if _, ok := b.tasks[id]; !ok {
		return b, false
	}
	next := b.clone()
	delete(next.tasks, id)
	for cIdx := range next.columns {
		if next.columns[cIdx].Contains(id) {
			next.columns[cIdx].TaskIDs = removeID(next.columns[cIdx].TaskIDs, id)
		}
	}
	return next, true
}

// BulkDelete deletes every id present on the board and returns the ids removed.
// Unknown ids are skipped.
func (b Board) BulkDelete(ids []string) (Board, []string) {
	next := b
	removed := make([]string, 0, len(ids))
	for _, id := range ids {
		var ok bool
		next, ok = next.DeleteTask(id)
		if ok {
			removed = append(removed, id)
		}
	}
	return next, removed
}

// DuplicateTask clones the task under newID with a copy-suffixed title and
// appends it to the end of the original's column.
func (b Board) DuplicateTask(id, newID string, now time.Time) (Board, Task, error) {
	original, ok := b.tasks[id]
	if !ok {
		return b, Task{}, ErrTaskNotFound
	}
	newID = strings.TrimSpace(newID)
	if newID == "" {
		return b, Task{}, ErrInvalidID
	}
	if _, exists := b.tasks[newID]; exists {
		return b, Task{}, ErrDuplicateID
	}
	cIdx := b.columnContaining(id)
	if cIdx < 0 {
		return b, Task{}, ErrColumnNotFound
	}

	clone := original.Clone()
	clone.ID = newID
	clone.Title = original.Title + CopySuffix
	clone.CreatedAt = now.UTC()

	next := b.clone()
	next.tasks[newID] = clone
	next.columns[cIdx].TaskIDs = append(slices.Clone(next.columns[cIdx].TaskIDs), newID)
	return next, clone.Clone(), nil
}

// MoveTask relocates taskID from one column to a position in another (or the
// same) column. The source index is taken from the task's actual position, so
// fromIndex only needs to be a hint. Within one column, toIndex is read against
// the sequence after removal. Across columns, toIndex is read against the
// untouched destination and the task takes the destination's status. WIP
// limits are not enforced here.
func (b Board) MoveTask(taskID, fromColumnID, toColumnID string, toIndex int) (Board, Task, error) {
	fromIdx := b.columnIndex(fromColumnID)
	toIdx := b.columnIndex(toColumnID)
	if fromIdx < 0 || toIdx < 0 {
		return b, Task{}, ErrColumnNotFound
	}
	task, ok := b.tasks[taskID]
	if !ok {
		return b, Task{}, ErrTaskNotFound
	}
	if toIndex < 0 {
		return b, Task{}, ErrInvalidPosition
	}
	position := b.columns[fromIdx].IndexOf(taskID)
	if position < 0 {
		return b, Task{}, ErrTaskNotInColumn
	}

	next := b.clone()
	if fromIdx == toIdx {
		next.columns[fromIdx].TaskIDs = reorderIDs(next.columns[fromIdx].TaskIDs, position, toIndex)
		return next, task.Clone(), nil
	}

	source, dest := transferIDs(next.columns[fromIdx].TaskIDs, next.columns[toIdx].TaskIDs, position, toIndex)
	next.columns[fromIdx].TaskIDs = source
	next.columns[toIdx].TaskIDs = dest
	task = task.Clone()
	task.Status = next.columns[toIdx].Status
	next.tasks[taskID] = task
	return next, task.Clone(), nil
}

// Validate checks the board invariants: every task sits in exactly one
// column, that column's status matches the task, and no sequence holds an
// unknown or repeated id.
func (b Board) Validate() error {
	placed := make(map[string]string, len(b.tasks))
	for _, column := range b.columns {
		for _, id := range column.TaskIDs {
			if other, ok := placed[id]; ok {
				return fmt.Errorf("task %q in %q and %q: %w", id, other, column.ID, ErrDuplicateID)
			}
			task, ok := b.tasks[id]
			if !ok {
				return fmt.Errorf("column %q task %q: %w", column.ID, id, ErrTaskNotFound)
			}
			if task.Status != column.Status {
				return fmt.Errorf("column %q task %q: %w", column.ID, id, ErrStatusMismatch)
			}
			placed[id] = column.ID
		}
	}
	for id := range b.tasks {
		if _, ok := placed[id]; !ok {
			return fmt.Errorf("task %q: %w", id, ErrTaskNotInColumn)
		}
	}
	return nil
}

// clone copies the column slice and task map. Sequences and task values are
// shared until replaced; they are never modified in place.
func (b Board) clone() Board {
	tasks := maps.Clone(b.tasks)
	if tasks == nil {
		tasks = map[string]Task{}
	}
	return Board{
		columns: slices.Clone(b.columns),
		tasks:   tasks,
	}
}

func (b Board) columnIndex(id string) int {
	return slices.IndexFunc(b.columns, func(c Column) bool { return c.ID == id })
}

func (b Board) columnIndexByStatus(status Status) int {
	return slices.IndexFunc(b.columns, func(c Column) bool { return c.Status == status })
}

func (b Board) columnContaining(taskID string) int {
	return slices.IndexFunc(b.columns, func(c Column) bool { return c.Contains(taskID) })
}
