package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/hylla/swimlane/internal/domain"
)

// task-form field indexes in display order.
const (
	taskFieldTitle = iota
	taskFieldDescription
	taskFieldStatus
	taskFieldPriority
	taskFieldAssignee
	taskFieldTags
	taskFieldDue
)

var taskFormLabels = []string{"title", "description", "status", "priority", "assignee", "tags", "due"}

// startTaskForm opens the add form, or the edit form when task is non-nil.
func (m *Model) startTaskForm(task *domain.Task, status domain.Status) tea.Cmd {
	m.formFocus = 0
	m.formInputs = []textinput.Model{
		newModalInput("", "task title (required)", "", 120),
		newModalInput("", "short description", "", 240),
		newModalInput("", "todo | in-progress | review | done", string(status), 24),
		newModalInput("", "low | medium | high | urgent", "", 16),
		newModalInput("", "name", "", 80),
		newModalInput("", "csv tags", "", 160),
		newModalInput("", "YYYY-MM-DD[THH:MM] or -", "", 32),
	}
	if task != nil {
		m.formInputs[taskFieldTitle].SetValue(task.Title)
		m.formInputs[taskFieldDescription].SetValue(task.Description)
		m.formInputs[taskFieldPriority].SetValue(string(task.Priority))
		m.formInputs[taskFieldAssignee].SetValue(task.Assignee)
		if len(task.Tags) > 0 {
			m.formInputs[taskFieldTags].SetValue(strings.Join(task.Tags, ","))
		}
		if task.DueAt != nil {
			m.formInputs[taskFieldDue].SetValue(formatDueValue(task.DueAt))
		}
		m.mode = modeEditTask
		m.editingTaskID = task.ID
		m.status = "edit task"
	} else {
		m.mode = modeAddTask
		m.editingTaskID = ""
		m.status = "new task"
	}
	return m.focusTaskFormField(0)
}

func (m *Model) focusTaskFormField(idx int) tea.Cmd {
	if len(m.formInputs) == 0 {
		return nil
	}
	idx = clamp(idx, 0, len(m.formInputs)-1)
	m.formFocus = idx
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	return m.formInputs[idx].Focus()
}

func (m Model) handleTaskFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.formInputs = nil
		m.editingTaskID = ""
		m.status = "cancelled"
		return m, nil
	case "tab", "down":
		return m, m.focusTaskFormField((m.formFocus + 1) % len(m.formInputs))
	case "shift+tab", "up":
		return m, m.focusTaskFormField((m.formFocus + len(m.formInputs) - 1) % len(m.formInputs))
	case "enter":
		return m.submitTaskForm()
	}
	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	return m, cmd
}

func (m Model) taskFormValues() map[string]string {
	out := make(map[string]string, len(taskFormLabels))
	for i, label := range taskFormLabels {
		if i < len(m.formInputs) {
			out[label] = strings.TrimSpace(m.formInputs[i].Value())
		}
	}
	return out
}

// submitTaskForm validates the form and creates or updates the task. Invalid
// input keeps the form open with the reason in the status line.
func (m Model) submitTaskForm() (tea.Model, tea.Cmd) {
	vals := m.taskFormValues()
	if vals["title"] == "" {
		m.status = "title required"
		return m, m.focusTaskFormField(taskFieldTitle)
	}
	status := domain.NormalizeStatus(vals["status"])
	if !status.Valid() {
		m.status = fmt.Sprintf("unknown status %q", vals["status"])
		return m, m.focusTaskFormField(taskFieldStatus)
	}
	priority := domain.NormalizePriority(vals["priority"])
	if !priority.Valid() {
		m.status = fmt.Sprintf("unknown priority %q", vals["priority"])
		return m, m.focusTaskFormField(taskFieldPriority)
	}
	tags := parseTagsInput(vals["tags"])

	if m.mode == modeAddTask {
		due, err := parseDueInput(vals["due"], nil)
		if err != nil {
			m.status = err.Error()
			return m, m.focusTaskFormField(taskFieldDue)
		}
		task, err := m.engine.AddTask(domain.TaskInput{
			Title:       vals["title"],
			Description: vals["description"],
			Status:      status,
			Priority:    priority,
			Assignee:    vals["assignee"],
			Tags:        tags,
			DueAt:       due,
		})
		if err != nil {
			m.status = "create failed: " + taskErrorText(err)
			return m, nil
		}
		m.closeTaskForm()
		m.focusTaskByID(task.ID)
		m.status = fmt.Sprintf("created %q", truncate(task.Title, 28))
		return m, nil
	}

	current, ok := m.engine.Board().Task(m.editingTaskID)
	if !ok {
		m.closeTaskForm()
		m.status = "task no longer exists"
		return m, nil
	}
	due, err := parseDueInput(vals["due"], current.DueAt)
	if err != nil {
		m.status = err.Error()
		return m, m.focusTaskFormField(taskFieldDue)
	}
	title, description, assignee := vals["title"], vals["description"], vals["assignee"]
	patch := domain.TaskPatch{
		Title:       &title,
		Description: &description,
		Status:      &status,
		Priority:    &priority,
		Assignee:    &assignee,
		Tags:        &tags,
		DueAt:       due,
		ClearDueAt:  due == nil,
	}
	task, err := m.engine.UpdateTask(current.ID, patch)
	if err != nil {
		m.status = "update failed: " + taskErrorText(err)
		return m, nil
	}
	m.closeTaskForm()
	m.focusTaskByID(task.ID)
	m.status = fmt.Sprintf("updated %q", truncate(task.Title, 28))
	return m, nil
}

func (m *Model) closeTaskForm() {
	m.mode = modeNone
	m.formInputs = nil
	m.formFocus = 0
	m.editingTaskID = ""
}

// taskErrorText turns domain errors into form feedback.
func taskErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrColumnNotFound):
		return "no column for that status"
	default:
		return err.Error()
	}
}

// parseDueInput parses a due date. Blank keeps current; "-" clears.
func parseDueInput(raw string, current *time.Time) (*time.Time, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return current, nil
	}
	if text == "-" {
		return nil, nil
	}
	layouts := []string{
		"2006-01-02",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		time.RFC3339,
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, text)
		if err == nil {
			ts := parsed.UTC()
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("due date must be YYYY-MM-DD, YYYY-MM-DDTHH:MM, RFC3339, or -")
}

// formatDueValue formats due datetime values for compact display and editing.
func formatDueValue(dueAt *time.Time) string {
	if dueAt == nil {
		return "-"
	}
	due := dueAt.UTC()
	if due.Hour() == 0 && due.Minute() == 0 {
		return due.Format("2006-01-02")
	}
	return due.Format("2006-01-02 15:04")
}

// parseTagsInput splits a comma separated tag list. A lone "-" clears tags.
func parseTagsInput(raw string) []string {
	text := strings.TrimSpace(raw)
	if text == "" || text == "-" {
		return nil
	}
	out := make([]string, 0, strings.Count(text, ",")+1)
	for _, part := range strings.Split(text, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
