package app

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hylla/swimlane/internal/domain"
)

// IDGenerator returns unique identifiers for new tasks.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes engine debug logs to logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithFilter sets the initial search query and priority filter.
func WithFilter(query string, priority PriorityFilter) Option {
	return func(e *Engine) {
		e.query = query
		if priority != "" {
			e.priority = priority
		}
	}
}

// Engine owns the board and the transient view state around it: the
// selection, the active filter and the drag in progress. Every command swaps
// in a complete next board or leaves the current one untouched.
//
// Engine is not safe for concurrent use.
type Engine struct {
	board     domain.Board
	selection Selection
	query     string
	priority  PriorityFilter
	drag      DragState
	idGen     IDGenerator
	clock     Clock
	logger    *log.Logger
}

// NewEngine constructs an engine over board.
func NewEngine(board domain.Board, idGen IDGenerator, clock Clock, opts ...Option) *Engine {
	if idGen == nil {
		idGen = uuid.NewString
	}
	if clock == nil {
		clock = time.Now
	}
	e := &Engine{
		board:     board,
		selection: NewSelection(),
		priority:  PriorityAll,
		idGen:     idGen,
		clock:     clock,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Board returns the current board value.
func (e *Engine) Board() domain.Board {
	return e.board
}

// Selection returns a copy of the current selection.
func (e *Engine) Selection() Selection {
	return e.selection.Clone()
}

// Drag returns the current drag state.
func (e *Engine) Drag() DragState {
	return e.drag
}

// Now returns the engine clock reading.
func (e *Engine) Now() time.Time {
	return e.clock()
}

// AddTask creates a task and appends it to the column matching its status.
func (e *Engine) AddTask(in domain.TaskInput) (domain.Task, error) {
	next, task, err := e.board.AddTask(e.idGen(), in, e.clock())
	if err != nil {
		e.logger.Debug("add task rejected", "status", in.Status, "err", err)
		return domain.Task{}, err
	}
	e.board = next
	e.logger.Debug("task added", "task_id", task.ID, "status", task.Status)
	return task, nil
}

// UpdateTask merges patch into the task with id.
func (e *Engine) UpdateTask(id string, patch domain.TaskPatch) (domain.Task, error) {
	next, task, err := e.board.UpdateTask(id, patch)
	if err != nil {
		e.logger.Debug("update task rejected", "task_id", id, "err", err)
		return domain.Task{}, err
	}
	e.board = next
	e.logger.Debug("task updated", "task_id", id, "status", task.Status)
	return task, nil
}

// DeleteTask removes the task from the board and the selection. It reports
// whether a task was removed.
func (e *Engine) DeleteTask(id string) bool {
	next, removed := e.board.DeleteTask(id)
	if !removed {
		return false
	}
	e.board = next
	e.forget(id)
	e.logger.Debug("task deleted", "task_id", id)
	return true
}

// DuplicateTask copies the task into a new task at the end of the same column.
func (e *Engine) DuplicateTask(id string) (domain.Task, error) {
	next, task, err := e.board.DuplicateTask(id, e.idGen(), e.clock())
	if err != nil {
		e.logger.Debug("duplicate task rejected", "task_id", id, "err", err)
		return domain.Task{}, err
	}
	e.board = next
	e.logger.Debug("task duplicated", "task_id", id, "copy_id", task.ID)
	return task, nil
}

// BulkDelete deletes every known id and returns how many were removed.
func (e *Engine) BulkDelete(ids []string) int {
	next, removed := e.board.BulkDelete(ids)
	e.board = next
	e.forget(ids...)
	e.logger.Debug("bulk delete", "requested", len(ids), "removed", len(removed))
	return len(removed)
}

// MoveTask moves taskID from one column to toIndex in another or the same
// column. fromIndex is checked against the task's actual position; a stale
// value is logged and ignored.
func (e *Engine) MoveTask(taskID, fromColumnID, toColumnID string, fromIndex, toIndex int) (domain.Task, error) {
	if column, ok := e.board.Column(fromColumnID); ok {
		if actual := column.IndexOf(taskID); actual >= 0 && actual != fromIndex {
			e.logger.Debug("stale move index", "task_id", taskID, "from_index", fromIndex, "actual", actual)
		}
	}
	next, task, err := e.board.MoveTask(taskID, fromColumnID, toColumnID, toIndex)
	if err != nil {
		e.logger.Debug("move task rejected", "task_id", taskID, "from", fromColumnID, "to", toColumnID, "err", err)
		return domain.Task{}, err
	}
	e.board = next
	e.logger.Debug("task moved", "task_id", taskID, "from", fromColumnID, "to", toColumnID, "index", toIndex)
	return task, nil
}

// SetSearchQuery replaces the search query. It is matched as given.
func (e *Engine) SetSearchQuery(query string) {
	e.query = query
}

// SearchQuery returns the active search query.
func (e *Engine) SearchQuery() string {
	return e.query
}

// SetPriorityFilter replaces the priority filter.
func (e *Engine) SetPriorityFilter(filter PriorityFilter) error {
	parsed, err := ParsePriorityFilter(string(filter))
	if err != nil {
		return fmt.Errorf("priority filter %q: %w", filter, err)
	}
	e.priority = parsed
	return nil
}

// PriorityFilter returns the active priority filter.
func (e *Engine) PriorityFilter() PriorityFilter {
	return e.priority
}

// FilteredTasks returns the tasks passing the active query and priority filter.
func (e *Engine) FilteredTasks() map[string]domain.Task {
	return FilterTasks(e.board.Tasks(), e.query, e.priority)
}

// VisibleColumnTaskIDs returns the column sequence restricted to tasks that
// pass the active filter, in sequence order.
func (e *Engine) VisibleColumnTaskIDs(columnID string) ([]string, error) {
	tasks, err := e.VisibleColumnTasks(columnID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out, nil
}

// VisibleColumnTasks returns the filtered tasks of a column in sequence order.
func (e *Engine) VisibleColumnTasks(columnID string) ([]domain.Task, error) {
	tasks, err := e.board.ColumnTasks(columnID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if e.priority.Matches(task.Priority) && MatchesQuery(task, e.query) {
			out = append(out, task)
		}
	}
	return out, nil
}

// ColumnStats summarizes the visible tasks of a column.
func (e *Engine) ColumnStats(columnID string) (domain.ColumnStats, error) {
	column, ok := e.board.Column(columnID)
	if !ok {
		return domain.ColumnStats{}, domain.ErrColumnNotFound
	}
	tasks, err := e.VisibleColumnTasks(columnID)
	if err != nil {
		return domain.ColumnStats{}, err
	}
	return domain.StatsFor(column, tasks, e.clock()), nil
}

// ToggleSelection flips the selection of id and reports whether it is now selected.
func (e *Engine) ToggleSelection(id string) bool {
	return e.selection.Toggle(id)
}

// SelectAll selects every task on the board, including tasks hidden by the
// active filter.
func (e *Engine) SelectAll() {
	e.selection.SelectAll(e.board.TaskIDs())
}

// ClearSelection empties the selection.
func (e *Engine) ClearSelection() {
	e.selection.Clear()
}

// DeleteSelected bulk deletes the selected tasks and returns how many were removed.
func (e *Engine) DeleteSelected() int {
	return e.BulkDelete(e.selection.IDs())
}

// StartDrag picks up taskID from columnID. It does nothing while a drag is
// already active or when the task is not in that column.
func (e *Engine) StartDrag(taskID, columnID string) {
	if e.drag.Active() {
		return
	}
	column, ok := e.board.Column(columnID)
	if !ok {
		return
	}
	index := column.IndexOf(taskID)
	if index < 0 {
		return
	}
	e.drag = e.drag.Start(taskID, columnID, index)
	e.logger.Debug("drag started", "task_id", taskID, "column", columnID, "index", index)
}

// HoverDrag records the current drop target.
func (e *Engine) HoverDrag(columnID string, index int) {
	e.drag = e.drag.Hover(columnID, index)
}

// DropDrag completes the drag by moving the task to columnID at index. The
// drag returns to idle whether or not the move succeeds.
func (e *Engine) DropDrag(columnID string, index int) (domain.Task, error) {
	intent, idle, ok := e.drag.Drop(columnID, index)
	e.drag = idle
	if !ok {
		return domain.Task{}, ErrNotDragging
	}
	fromIndex := -1
	if column, found := e.board.Column(intent.FromColumnID); found {
		fromIndex = column.IndexOf(intent.TaskID)
	}
	return e.MoveTask(intent.TaskID, intent.FromColumnID, intent.ToColumnID, fromIndex, intent.ToIndex)
}

// CancelDrag abandons the drag without moving anything.
func (e *Engine) CancelDrag() {
	if e.drag.Active() {
		e.logger.Debug("drag cancelled", "task_id", e.drag.TaskID)
	}
	e.drag = e.drag.Cancel()
}

// forget drops deleted ids from the selection and cancels a drag of any of them.
func (e *Engine) forget(ids ...string) {
	e.selection.Remove(ids...)
	for _, id := range ids {
		if e.drag.Active() && e.drag.TaskID == id {
			e.drag = e.drag.Cancel()
		}
	}
}
