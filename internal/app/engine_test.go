package app

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hylla/swimlane/internal/domain"
)

var engineNow = time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)

// newTestEngine builds an engine over todo/progress/done columns holding
// a,b,c,d in todo and e in progress, with sequential ids for new tasks.
func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	columns := []domain.Column{
		{ID: "todo", Title: "To Do", Status: domain.StatusTodo, TaskIDs: []string{"a", "b", "c", "d"}},
		{ID: "progress", Title: "In Progress", Status: domain.StatusInProgress, TaskIDs: []string{"e"}, WIPLimit: 1},
		{ID: "done", Title: "Done", Status: domain.StatusDone},
	}
	tasks := map[string]domain.Task{}
	for _, id := range []string{"a", "b", "c", "d"} {
		tasks[id] = domain.Task{ID: id, Title: "Task " + id, Status: domain.StatusTodo}
	}
	tasks["e"] = domain.Task{ID: "e", Title: "Task e", Status: domain.StatusInProgress, Priority: domain.PriorityHigh, Assignee: "Sarah Chen"}
	board, err := domain.NewBoard(columns, tasks)
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	next := 0
	idGen := func() string {
		next++
		return fmt.Sprintf("n%d", next)
	}
	return NewEngine(board, idGen, func() time.Time { return engineNow }, opts...)
}

func sequence(t *testing.T, e *Engine, columnID string) []string {
	t.Helper()
	column, ok := e.Board().Column(columnID)
	if !ok {
		t.Fatalf("column %q missing", columnID)
	}
	return column.TaskIDs
}

func TestEngineAddTaskAppendsToStatusColumn(t *testing.T) {
	e := newTestEngine(t)
	task, err := e.AddTask(domain.TaskInput{Title: " Ship it ", Status: domain.StatusDone, Priority: domain.PriorityLow})
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if task.ID != "n1" || task.Title != "Ship it" || !task.CreatedAt.Equal(engineNow) {
		t.Fatalf("unexpected task %#v", task)
	}
	if got := sequence(t, e, "done"); !slices.Equal(got, []string{"n1"}) {
		t.Fatalf("unexpected done sequence %v", got)
	}
}

func TestEngineAddTaskRejectsWithoutMutation(t *testing.T) {
	e := newTestEngine(t)
	cases := []struct {
		name string
		in   domain.TaskInput
		want error
	}{
		{name: "blank title", in: domain.TaskInput{Title: "  ", Status: domain.StatusTodo}, want: domain.ErrInvalidTitle},
		{name: "unknown status", in: domain.TaskInput{Title: "x", Status: "later"}, want: domain.ErrInvalidStatus},
		{name: "bad priority", in: domain.TaskInput{Title: "x", Status: domain.StatusTodo, Priority: "asap"}, want: domain.ErrInvalidPriority},
		{name: "no column for status", in: domain.TaskInput{Title: "x", Status: domain.StatusReview}, want: domain.ErrColumnNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := e.Board()
			if _, err := e.AddTask(tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if e.Board().TaskCount() != before.TaskCount() {
				t.Fatalf("task count changed %d -> %d", before.TaskCount(), e.Board().TaskCount())
			}
		})
	}
}

func TestEngineUpdateTaskStatusMovesToEnd(t *testing.T) {
	e := newTestEngine(t)
	status := domain.StatusInProgress
	task, err := e.UpdateTask("b", domain.TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if task.Status != domain.StatusInProgress {
		t.Fatalf("unexpected status %q", task.Status)
	}
	if got := sequence(t, e, "todo"); !slices.Equal(got, []string{"a", "c", "d"}) {
		t.Fatalf("unexpected todo sequence %v", got)
	}
	if got := sequence(t, e, "progress"); !slices.Equal(got, []string{"e", "b"}) {
		t.Fatalf("unexpected progress sequence %v", got)
	}

	if _, err := e.UpdateTask("missing", domain.TaskPatch{}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	review := domain.StatusReview
	if _, err := e.UpdateTask("a", domain.TaskPatch{Status: &review}); !errors.Is(err, domain.ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
	if task, _ := e.Board().Task("a"); task.Status != domain.StatusTodo {
		t.Fatalf("expected failed update to leave status, got %q", task.Status)
	}
}

func TestEngineDeleteTaskPrunesSelectionAndDrag(t *testing.T) {
	e := newTestEngine(t)
	e.ToggleSelection("a")
	e.ToggleSelection("b")
	e.StartDrag("a", "todo")

	if !e.DeleteTask("a") {
		t.Fatal("expected DeleteTask(a) to remove a task")
	}
	if e.DeleteTask("a") {
		t.Fatal("expected second DeleteTask(a) to be a no-op")
	}
	if e.Selection().Contains("a") || !e.Selection().Contains("b") {
		t.Fatalf("unexpected selection %v", e.Selection().IDs())
	}
	if e.Drag().Active() {
		t.Fatal("expected drag of deleted task to be cancelled")
	}
	if got := sequence(t, e, "todo"); !slices.Equal(got, []string{"b", "c", "d"}) {
		t.Fatalf("unexpected todo sequence %v", got)
	}
}

func TestEngineDuplicateTask(t *testing.T) {
	e := newTestEngine(t)
	dup, err := e.DuplicateTask("e")
	if err != nil {
		t.Fatalf("DuplicateTask() error = %v", err)
	}
	if dup.ID != "n1" || dup.Title != "Task e (Copy)" || dup.Assignee != "Sarah Chen" || dup.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected duplicate %#v", dup)
	}
	if got := sequence(t, e, "progress"); !slices.Equal(got, []string{"e", "n1"}) {
		t.Fatalf("unexpected progress sequence %v", got)
	}
	if _, err := e.DuplicateTask("missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestEngineBulkDelete(t *testing.T) {
	e := newTestEngine(t)
	e.SelectAll()
	if got := e.BulkDelete([]string{"a", "missing", "e", "a"}); got != 2 {
		t.Fatalf("BulkDelete() = %d, want 2", got)
	}
	if e.Selection().Contains("a") || e.Selection().Contains("e") || e.Selection().Len() != 3 {
		t.Fatalf("unexpected selection %v", e.Selection().IDs())
	}
	if got := e.BulkDelete(nil); got != 0 {
		t.Fatalf("BulkDelete(nil) = %d, want 0", got)
	}
}

func TestEngineMoveTaskToleratesStaleFromIndex(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	e := newTestEngine(t, WithLogger(logger))

	// c sits at index 2; the caller claims 0.
	if _, err := e.MoveTask("c", "todo", "todo", 0, 0); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	if got := sequence(t, e, "todo"); !slices.Equal(got, []string{"c", "a", "b", "d"}) {
		t.Fatalf("unexpected todo sequence %v", got)
	}
	if !strings.Contains(buf.String(), "stale move index") {
		t.Fatalf("expected stale index debug log, got %q", buf.String())
	}
}

func TestEngineMoveTaskAcrossColumnsIgnoresWIP(t *testing.T) {
	e := newTestEngine(t)
	task, err := e.MoveTask("a", "todo", "progress", 0, 0)
	if err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	if task.Status != domain.StatusInProgress {
		t.Fatalf("unexpected status %q", task.Status)
	}
	if got := sequence(t, e, "progress"); !slices.Equal(got, []string{"a", "e"}) {
		t.Fatalf("unexpected progress sequence %v", got)
	}
	stats, err := e.ColumnStats("progress")
	if err != nil {
		t.Fatalf("ColumnStats() error = %v", err)
	}
	if !stats.AtWIPLimit || stats.CanAddTask || stats.WIPProgress != 100 {
		t.Fatalf("unexpected progress stats %#v", stats)
	}
}

func TestEngineMoveTaskErrors(t *testing.T) {
	e := newTestEngine(t)
	cases := []struct {
		name             string
		taskID, from, to string
		toIndex          int
		want             error
	}{
		{name: "missing source", taskID: "a", from: "nope", to: "done", want: domain.ErrColumnNotFound},
		{name: "missing destination", taskID: "a", from: "todo", to: "nope", want: domain.ErrColumnNotFound},
		{name: "missing task", taskID: "zz", from: "todo", to: "done", want: domain.ErrTaskNotFound},
		{name: "wrong source", taskID: "e", from: "todo", to: "done", want: domain.ErrTaskNotInColumn},
		{name: "negative index", taskID: "a", from: "todo", to: "done", toIndex: -1, want: domain.ErrInvalidPosition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := e.Board()
			if _, err := e.MoveTask(tc.taskID, tc.from, tc.to, 0, tc.toIndex); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !slices.Equal(sequence(t, e, "todo"), mustColumn(t, before, "todo").TaskIDs) {
				t.Fatal("expected failed move to leave the board untouched")
			}
		})
	}
}

func TestEngineFilteredView(t *testing.T) {
	e := newTestEngine(t, WithFilter("", PriorityAll))
	if got := len(e.FilteredTasks()); got != 5 {
		t.Fatalf("expected all 5 tasks unfiltered, got %d", got)
	}

	e.SetSearchQuery("  SARAH ")
	if e.SearchQuery() != "  SARAH " {
		t.Fatalf("expected query kept as typed, got %q", e.SearchQuery())
	}

	e.SetSearchQuery("SARAH")
	filtered := e.FilteredTasks()
	if len(filtered) != 1 {
		t.Fatalf("expected assignee match only, got %v", filtered)
	}
	if _, ok := filtered["e"]; !ok {
		t.Fatalf("expected task e in filtered view, got %v", filtered)
	}

	e.SetSearchQuery("task")
	if err := e.SetPriorityFilter("high"); err != nil {
		t.Fatalf("SetPriorityFilter() error = %v", err)
	}
	ids, err := e.VisibleColumnTaskIDs("todo")
	if err != nil {
		t.Fatalf("VisibleColumnTaskIDs() error = %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no high-priority todo tasks, got %v", ids)
	}
	stats, err := e.ColumnStats("todo")
	if err != nil {
		t.Fatalf("ColumnStats() error = %v", err)
	}
	if stats.Total != 0 {
		t.Fatalf("expected filtered total 0, got %#v", stats)
	}

	if err := e.SetPriorityFilter("asap"); !errors.Is(err, ErrInvalidPriorityFilter) {
		t.Fatalf("expected ErrInvalidPriorityFilter, got %v", err)
	}
	if e.PriorityFilter() != PriorityFilter(domain.PriorityHigh) {
		t.Fatalf("expected failed set to keep filter, got %q", e.PriorityFilter())
	}
	if _, err := e.VisibleColumnTaskIDs("nope"); !errors.Is(err, domain.ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
}

func TestEngineWIPFlagsIgnoreFilter(t *testing.T) {
	e := newTestEngine(t)
	e.SetSearchQuery("nothing matches this")
	stats, err := e.ColumnStats("progress")
	if err != nil {
		t.Fatalf("ColumnStats() error = %v", err)
	}
	if stats.Total != 0 {
		t.Fatalf("expected filtered total 0, got %#v", stats)
	}
	if !stats.AtWIPLimit || stats.CanAddTask || stats.WIPProgress != 100 {
		t.Fatalf("expected WIP flags from the full column, got %#v", stats)
	}
}

func TestEngineSelectAllIgnoresFilter(t *testing.T) {
	e := newTestEngine(t)
	e.SetSearchQuery("Task e")
	e.SelectAll()
	if got := e.Selection().IDs(); !slices.Equal(got, []string{"a", "b", "c", "d", "e"}) {
		t.Fatalf("unexpected selection %v", got)
	}
	if got := e.DeleteSelected(); got != 5 {
		t.Fatalf("DeleteSelected() = %d, want 5", got)
	}
	if e.Board().TaskCount() != 0 || e.Selection().Len() != 0 {
		t.Fatal("expected board and selection to be empty")
	}
}

func TestEngineSelectionToggleAndClear(t *testing.T) {
	e := newTestEngine(t)
	if !e.ToggleSelection("a") {
		t.Fatal("expected first toggle to select")
	}
	if e.ToggleSelection("a") {
		t.Fatal("expected second toggle to deselect")
	}
	e.ToggleSelection("b")
	e.ClearSelection()
	if e.Selection().Len() != 0 {
		t.Fatalf("expected empty selection, got %v", e.Selection().IDs())
	}

	snapshot := e.Selection()
	snapshot.Toggle("c")
	if e.Selection().Contains("c") {
		t.Fatal("expected Selection() to return a copy")
	}
}

func TestEngineDragLifecycle(t *testing.T) {
	e := newTestEngine(t)
	e.HoverDrag("done", 0)
	if e.Drag().Active() {
		t.Fatal("expected hover while idle to do nothing")
	}
	if _, err := e.DropDrag("done", 0); !errors.Is(err, ErrNotDragging) {
		t.Fatalf("expected ErrNotDragging, got %v", err)
	}

	e.StartDrag("b", "todo")
	e.StartDrag("c", "todo")
	drag := e.Drag()
	if !drag.Active() || drag.TaskID != "b" || drag.OverIndex != 1 {
		t.Fatalf("unexpected drag %#v", drag)
	}
	e.HoverDrag("progress", 0)
	e.HoverDrag("done", 0)
	if e.Drag().OverColumnID != "done" {
		t.Fatalf("expected last hover to win, got %#v", e.Drag())
	}
	task, err := e.DropDrag("done", 0)
	if err != nil {
		t.Fatalf("DropDrag() error = %v", err)
	}
	if task.Status != domain.StatusDone || e.Drag().Active() {
		t.Fatalf("unexpected drop result task=%#v drag=%#v", task, e.Drag())
	}
	if got := sequence(t, e, "done"); !slices.Equal(got, []string{"b"}) {
		t.Fatalf("unexpected done sequence %v", got)
	}
}

func TestEngineDropResetsDragOnFailure(t *testing.T) {
	e := newTestEngine(t)
	e.StartDrag("a", "todo")
	if _, err := e.DropDrag("nope", 0); !errors.Is(err, domain.ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
	if e.Drag().Active() {
		t.Fatal("expected failed drop to return to idle")
	}

	e.StartDrag("a", "todo")
	e.HoverDrag("done", 0)
	e.CancelDrag()
	if e.Drag().Active() || e.Drag() != (DragState{}) {
		t.Fatalf("expected cancel to clear drag, got %#v", e.Drag())
	}
	if got := sequence(t, e, "todo"); !slices.Equal(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("expected cancel to leave board untouched, got %v", got)
	}

	e.StartDrag("e", "todo")
	if e.Drag().Active() {
		t.Fatal("expected drag of a task outside the column to be ignored")
	}
}

func mustColumn(t *testing.T, b domain.Board, id string) domain.Column {
	t.Helper()
	column, ok := b.Column(id)
	if !ok {
		t.Fatalf("column %q missing", id)
	}
	return column
}
