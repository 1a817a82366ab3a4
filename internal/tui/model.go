package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/swimlane/internal/app"
	"github.com/hylla/swimlane/internal/domain"
)

// BoardEngine is the board state the model drives. *app.Engine satisfies it.
type BoardEngine interface {
	Board() domain.Board
	Selection() app.Selection
	Drag() app.DragState
	Now() time.Time
	AddTask(domain.TaskInput) (domain.Task, error)
	UpdateTask(string, domain.TaskPatch) (domain.Task, error)
	DeleteTask(string) bool
	DuplicateTask(string) (domain.Task, error)
	DeleteSelected() int
	MoveTask(taskID, fromColumnID, toColumnID string, fromIndex, toIndex int) (domain.Task, error)
	SetSearchQuery(string)
	SearchQuery() string
	SetPriorityFilter(app.PriorityFilter) error
	PriorityFilter() app.PriorityFilter
	VisibleColumnTasks(string) ([]domain.Task, error)
	ColumnStats(string) (domain.ColumnStats, error)
	ToggleSelection(string) bool
	SelectAll()
	ClearSelection()
	StartDrag(taskID, columnID string)
	HoverDrag(columnID string, index int)
	DropDrag(columnID string, index int) (domain.Task, error)
	CancelDrag()
}

// inputMode represents a selectable mode.
type inputMode int

const (
	modeNone inputMode = iota
	modeSearch
	modeAddTask
	modeEditTask
	modeTaskInfo
	modeConfirm
)

// confirmKind identifies the action waiting on a confirmation.
type confirmKind int

const (
	confirmDelete confirmKind = iota
	confirmBulkDelete
)

// confirmAction is a destructive action waiting for y/n.
type confirmAction struct {
	kind    confirmKind
	taskIDs []string
	label   string
}

// Model is the bubbletea model for the board.
type Model struct {
	engine BoardEngine

	ready  bool
	width  int
	height int
	status string

	help            help.Model
	keys            keyMap
	taskFields      TaskFieldConfig
	confirm         ConfirmConfig
	showWIPWarnings bool

	selectedColumn int
	selectedTask   int

	mode          inputMode
	searchInput   textinput.Model
	searchPrev    string
	formInputs    []textinput.Model
	formFocus     int
	editingTaskID string
	pending       confirmAction
	infoTaskID    string

	// mouseDrag marks a drag started by a mouse press rather than the keyboard.
	mouseDrag bool

	markdown        *markdownRenderer
	copyToClipboard func(string) error
}

// NewModel constructs the board model over engine.
func NewModel(engine BoardEngine, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	searchInput := newModalInput("/ ", "title, description, assignee", "", 120)
	m := Model{
		engine:          engine,
		status:          "ready",
		help:            h,
		keys:            newKeyMap(),
		taskFields:      DefaultTaskFieldConfig(),
		confirm:         ConfirmConfig{BulkDelete: true},
		showWIPWarnings: true,
		searchInput:     searchInput,
		markdown:        &markdownRenderer{},
		copyToClipboard: clipboard.WriteAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init returns no startup command; the engine is already loaded.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		if m.engine.Drag().Active() {
			return m.handleDragKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		return m, nil
	}
}

func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		if m.help.ShowAll {
			m.status = "help"
		} else {
			m.status = "ready"
		}
		return m, nil
	case msg.String() == "esc":
		return m.handleEscape()
	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < len(m.columns())-1 {
			m.selectedColumn++
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		if m.selectedTask < len(m.currentColumnTasks())-1 {
			m.selectedTask++
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
		return m, nil
	case key.Matches(msg, m.keys.firstTask):
		m.selectedTask = 0
		return m, nil
	case key.Matches(msg, m.keys.lastTask):
		m.selectedTask = max(0, len(m.currentColumnTasks())-1)
		return m, nil
	case key.Matches(msg, m.keys.multiSelect):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		count := m.engine.Selection().Len()
		if m.engine.ToggleSelection(task.ID) {
			m.status = fmt.Sprintf("selected %q (%d total)", truncate(task.Title, 28), count+1)
		} else {
			m.status = fmt.Sprintf("unselected %q (%d total)", truncate(task.Title, 28), count-1)
		}
		return m, nil
	case key.Matches(msg, m.keys.selectAll):
		m.engine.SelectAll()
		m.status = fmt.Sprintf("selected all %d tasks", m.engine.Selection().Len())
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		column, ok := m.currentColumn()
		if !ok {
			m.status = "no column"
			return m, nil
		}
		if stats, err := m.engine.ColumnStats(column.ID); err == nil && !stats.CanAddTask {
			m.status = fmt.Sprintf("%s is at its WIP limit (%d)", column.Title, column.WIPLimit)
			return m, nil
		}
		m.help.ShowAll = false
		return m, m.startTaskForm(nil, column.Status)
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.help.ShowAll = false
		return m, m.startTaskForm(&task, task.Status)
	case key.Matches(msg, m.keys.taskInfo):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.help.ShowAll = false
		m.mode = modeTaskInfo
		m.infoTaskID = task.ID
		m.status = "task info"
		return m, nil
	case key.Matches(msg, m.keys.duplicateTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		dup, err := m.engine.DuplicateTask(task.ID)
		if err != nil {
			m.status = "duplicate failed: " + err.Error()
			return m, nil
		}
		m.focusTaskByID(dup.ID)
		m.status = fmt.Sprintf("duplicated %q", truncate(task.Title, 28))
		return m, nil
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		action := confirmAction{kind: confirmDelete, taskIDs: []string{task.ID}, label: fmt.Sprintf("delete %q?", truncate(task.Title, 32))}
		if m.confirm.Delete {
			return m.openConfirm(action)
		}
		return m.applyConfirmedAction(action)
	case key.Matches(msg, m.keys.bulkDelete):
		ids := m.engine.Selection().IDs()
		if len(ids) == 0 {
			m.status = "no tasks selected"
			return m, nil
		}
		action := confirmAction{kind: confirmBulkDelete, taskIDs: ids, label: fmt.Sprintf("delete %d selected tasks?", len(ids))}
		if m.confirm.BulkDelete {
			return m.openConfirm(action)
		}
		return m.applyConfirmedAction(action)
	case key.Matches(msg, m.keys.pickUp):
		return m.pickUpSelectedTask()
	case key.Matches(msg, m.keys.moveTaskLeft):
		return m.moveSelectedTaskAcross(-1)
	case key.Matches(msg, m.keys.moveTaskRight):
		return m.moveSelectedTaskAcross(1)
	case key.Matches(msg, m.keys.moveTaskUp):
		return m.reorderSelectedTask(-1)
	case key.Matches(msg, m.keys.moveTaskDown):
		return m.reorderSelectedTask(1)
	case key.Matches(msg, m.keys.search):
		m.help.ShowAll = false
		return m, m.startSearchMode()
	case key.Matches(msg, m.keys.cycleFilter):
		next := m.engine.PriorityFilter().Next()
		if err := m.engine.SetPriorityFilter(next); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.clampSelections()
		m.status = "filter: " + strings.ToLower(next.Label())
		return m, nil
	case key.Matches(msg, m.keys.yank):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		if err := m.copyToClipboard(taskSummary(task)); err != nil {
			m.status = "copy failed: " + err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("copied %q", truncate(task.Title, 28))
		return m, nil
	default:
		return m, nil
	}
}

// handleEscape unwinds one layer of transient state per press.
func (m Model) handleEscape() (tea.Model, tea.Cmd) {
	if m.help.ShowAll {
		m.help.ShowAll = false
		m.status = "ready"
		return m, nil
	}
	if count := m.engine.Selection().Len(); count > 0 {
		m.engine.ClearSelection()
		m.status = fmt.Sprintf("cleared %d selected tasks", count)
		return m, nil
	}
	if m.engine.SearchQuery() != "" || m.engine.PriorityFilter() != app.PriorityAll {
		m.engine.SetSearchQuery("")
		_ = m.engine.SetPriorityFilter(app.PriorityAll)
		m.clampSelections()
		m.status = "filters cleared"
		return m, nil
	}
	return m, nil
}

// handleDragKey handles keys while a task is picked up. Navigation moves the
// drop target; the focused slot may sit one past the last card to append.
func (m Model) handleDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.engine.CancelDrag()
		return m, tea.Quit
	case msg.String() == "esc":
		m.engine.CancelDrag()
		m.mouseDrag = false
		m.clampSelections()
		m.status = "drag cancelled"
		return m, nil
	case key.Matches(msg, m.keys.pickUp), msg.String() == "enter":
		return m.dropDrag()
	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
		}
	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < len(m.columns())-1 {
			m.selectedColumn++
		}
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
	case key.Matches(msg, m.keys.moveDown):
		m.selectedTask++
	case key.Matches(msg, m.keys.firstTask):
		m.selectedTask = 0
	case key.Matches(msg, m.keys.lastTask):
		m.selectedTask = len(m.currentColumnTasks())
	default:
		m.status = "drop with m or enter, esc cancels"
		return m, nil
	}
	m.selectedTask = clamp(m.selectedTask, 0, len(m.currentColumnTasks()))
	m.syncDragHover()
	return m, nil
}

// pickUpSelectedTask starts a keyboard drag of the focused task.
func (m Model) pickUpSelectedTask() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskInCurrentColumn()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	column, _ := m.currentColumn()
	m.engine.StartDrag(task.ID, column.ID)
	if !m.engine.Drag().Active() {
		m.status = "cannot pick up task"
		return m, nil
	}
	m.mouseDrag = false
	m.syncDragHover()
	m.status = fmt.Sprintf("dragging %q: move with h/j/k/l, m or enter drops, esc cancels", truncate(task.Title, 24))
	return m, nil
}

// syncDragHover points the drag target at the focused slot.
func (m *Model) syncDragHover() {
	column, ok := m.currentColumn()
	if !ok {
		return
	}
	m.engine.HoverDrag(column.ID, dropIndex(column, m.currentColumnTasks(), m.selectedTask))
}

// dropDrag completes the drag at its current target.
func (m Model) dropDrag() (tea.Model, tea.Cmd) {
	drag := m.engine.Drag()
	m.mouseDrag = false
	task, err := m.engine.DropDrag(drag.OverColumnID, drag.OverIndex)
	if err != nil {
		m.clampSelections()
		m.status = "move failed: " + err.Error()
		return m, nil
	}
	m.focusTaskByID(task.ID)
	m.status = m.movedStatus(task, drag.OverColumnID)
	return m, nil
}

// dropIndex maps a visible slot to a position in the full column sequence.
// Slots past the last visible card append.
func dropIndex(column domain.Column, visible []domain.Task, slot int) int {
	if slot >= 0 && slot < len(visible) {
		if idx := column.IndexOf(visible[slot].ID); idx >= 0 {
			return idx
		}
	}
	return len(column.TaskIDs)
}

// moveSelectedTaskAcross moves the focused task to the end of the adjacent column.
func (m Model) moveSelectedTaskAcross(delta int) (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskInCurrentColumn()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	columns := m.columns()
	targetIdx := m.selectedColumn + delta
	if targetIdx < 0 || targetIdx >= len(columns) {
		m.status = "no column in that direction"
		return m, nil
	}
	from, target := columns[m.selectedColumn], columns[targetIdx]
	moved, err := m.engine.MoveTask(task.ID, from.ID, target.ID, from.IndexOf(task.ID), len(target.TaskIDs))
	if err != nil {
		m.status = "move failed: " + err.Error()
		return m, nil
	}
	m.focusTaskByID(moved.ID)
	m.status = m.movedStatus(moved, target.ID)
	return m, nil
}

// reorderSelectedTask swaps the focused task with its visible neighbour.
func (m Model) reorderSelectedTask(delta int) (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskInCurrentColumn()
	if !ok {
		m.status = "no task selected"
		return m, nil
	}
	tasks := m.currentColumnTasks()
	neighbour := m.selectedTask + delta
	if neighbour < 0 || neighbour >= len(tasks) {
		return m, nil
	}
	column, _ := m.currentColumn()
	moved, err := m.engine.MoveTask(task.ID, column.ID, column.ID, column.IndexOf(task.ID), column.IndexOf(tasks[neighbour].ID))
	if err != nil {
		m.status = "reorder failed: " + err.Error()
		return m, nil
	}
	m.focusTaskByID(moved.ID)
	m.status = fmt.Sprintf("reordered %q", truncate(moved.Title, 28))
	return m, nil
}

// movedStatus describes a completed move and flags an exceeded WIP limit.
func (m Model) movedStatus(task domain.Task, columnID string) string {
	column, ok := m.engine.Board().Column(columnID)
	if !ok {
		return fmt.Sprintf("moved %q", truncate(task.Title, 28))
	}
	status := fmt.Sprintf("moved %q to %s", truncate(task.Title, 28), column.Title)
	if column.HasWIPLimit() && len(column.TaskIDs) > column.WIPLimit {
		status += fmt.Sprintf(" (over WIP limit %d/%d)", len(column.TaskIDs), column.WIPLimit)
	}
	return status
}

func (m Model) openConfirm(action confirmAction) (tea.Model, tea.Cmd) {
	m.mode = modeConfirm
	m.pending = action
	m.status = "confirm " + action.label
	return m, nil
}

// applyConfirmedAction runs a delete after confirmation or directly.
func (m Model) applyConfirmedAction(action confirmAction) (tea.Model, tea.Cmd) {
	m.mode = modeNone
	m.pending = confirmAction{}
	switch action.kind {
	case confirmBulkDelete:
		removed := m.engine.DeleteSelected()
		m.status = fmt.Sprintf("deleted %d tasks", removed)
	default:
		removed := 0
		for _, id := range action.taskIDs {
			if m.engine.DeleteTask(id) {
				removed++
			}
		}
		if removed == 0 {
			m.status = "task already deleted"
		} else {
			m.status = "task deleted"
		}
	}
	m.clampSelections()
	return m, nil
}

func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeAddTask, modeEditTask:
		return m.handleTaskFormKey(msg)
	case modeTaskInfo:
		switch {
		case msg.String() == "esc", msg.String() == "enter", key.Matches(msg, m.keys.taskInfo):
			m.mode = modeNone
			m.infoTaskID = ""
			m.status = "ready"
		case key.Matches(msg, m.keys.yank):
			if task, ok := m.engine.Board().Task(m.infoTaskID); ok {
				if err := m.copyToClipboard(taskSummary(task)); err != nil {
					m.status = "copy failed: " + err.Error()
				} else {
					m.status = fmt.Sprintf("copied %q", truncate(task.Title, 28))
				}
			}
		}
		return m, nil
	case modeConfirm:
		switch msg.String() {
		case "y", "enter":
			return m.applyConfirmedAction(m.pending)
		case "n", "esc":
			m.mode = modeNone
			m.pending = confirmAction{}
			m.status = "cancelled"
		}
		return m, nil
	default:
		m.mode = modeNone
		return m, nil
	}
}

func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// startSearchMode opens the live search prompt seeded with the active query.
func (m *Model) startSearchMode() tea.Cmd {
	m.mode = modeSearch
	m.searchPrev = m.engine.SearchQuery()
	m.searchInput.SetValue(m.searchPrev)
	m.searchInput.CursorEnd()
	m.status = "search"
	return m.searchInput.Focus()
}

// handleSearchKey filters as the user types. Enter keeps the query; esc
// restores the one active before the prompt opened.
func (m Model) handleSearchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.engine.SetSearchQuery(m.searchPrev)
		m.searchInput.Blur()
		m.mode = modeNone
		m.clampSelections()
		m.status = "search cancelled"
		return m, nil
	case "enter":
		m.searchInput.Blur()
		m.mode = modeNone
		if query := m.engine.SearchQuery(); query != "" {
			m.status = "search: " + query
		} else {
			m.status = "search cleared"
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.engine.SetSearchQuery(m.searchInput.Value())
	m.clampSelections()
	return m, cmd
}

// columns returns the board columns in display order.
func (m Model) columns() []domain.Column {
	return m.engine.Board().Columns()
}

func (m Model) currentColumn() (domain.Column, bool) {
	columns := m.columns()
	if len(columns) == 0 {
		return domain.Column{}, false
	}
	return columns[clamp(m.selectedColumn, 0, len(columns)-1)], true
}

// currentColumnTasks returns the visible tasks of the focused column.
func (m Model) currentColumnTasks() []domain.Task {
	column, ok := m.currentColumn()
	if !ok {
		return nil
	}
	tasks, err := m.engine.VisibleColumnTasks(column.ID)
	if err != nil {
		return nil
	}
	return tasks
}

func (m Model) selectedTaskInCurrentColumn() (domain.Task, bool) {
	tasks := m.currentColumnTasks()
	if m.selectedTask < 0 || m.selectedTask >= len(tasks) {
		return domain.Task{}, false
	}
	return tasks[m.selectedTask], true
}

// clampSelections keeps focus inside the visible board.
func (m *Model) clampSelections() {
	columns := m.columns()
	if len(columns) == 0 {
		m.selectedColumn = 0
		m.selectedTask = 0
		return
	}
	m.selectedColumn = clamp(m.selectedColumn, 0, len(columns)-1)
	limit := len(m.currentColumnTasks()) - 1
	if m.engine.Drag().Active() {
		limit++
	}
	m.selectedTask = clamp(m.selectedTask, 0, max(0, limit))
}

// focusTaskByID moves focus to taskID when it is visible.
func (m *Model) focusTaskByID(taskID string) {
	for colIdx, column := range m.columns() {
		tasks, err := m.engine.VisibleColumnTasks(column.ID)
		if err != nil {
			continue
		}
		for taskIdx, task := range tasks {
			if task.ID == taskID {
				m.selectedColumn = colIdx
				m.selectedTask = taskIdx
				return
			}
		}
	}
	m.clampSelections()
}

// taskSummary is the plain-text form copied to the clipboard.
func taskSummary(task domain.Task) string {
	parts := []string{fmt.Sprintf("[%s] %s", task.Status.Label(), task.Title)}
	if task.Priority != domain.PriorityNone {
		parts = append(parts, "priority: "+strings.ToLower(task.Priority.Label()))
	}
	if task.Assignee != "" {
		parts = append(parts, "assignee: "+task.Assignee)
	}
	if task.DueAt != nil {
		parts = append(parts, "due: "+formatDueValue(task.DueAt))
	}
	if len(task.Tags) > 0 {
		parts = append(parts, "tags: "+strings.Join(task.Tags, ", "))
	}
	summary := strings.Join(parts, " | ")
	if task.Description != "" {
		summary += "\n\n" + task.Description
	}
	return summary
}
