package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/swimlane/internal/app"
	"github.com/hylla/swimlane/internal/domain"
)

var (
	accentColor  = lipgloss.Color("62")
	mutedColor   = lipgloss.Color("241")
	dimColor     = lipgloss.Color("239")
	warningColor = lipgloss.Color("203")
	cautionColor = lipgloss.Color("214")
)

// View renders the board.
func (m Model) View() tea.View {
	if !m.ready {
		v := tea.NewView("loading...")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dimColor)

	header := titleStyle.Render("swimlane") + statusStyle.Render(fmt.Sprintf("  %d tasks", m.engine.Board().TaskCount()))
	if query := m.engine.SearchQuery(); query != "" {
		header += statusStyle.Render("  search: " + query)
	}
	if filter := m.engine.PriorityFilter(); filter != app.PriorityAll {
		header += statusStyle.Render("  priority: " + strings.ToLower(filter.Label()))
	}
	if count := m.engine.Selection().Len(); count > 0 {
		header += statusStyle.Render(fmt.Sprintf("  selected: %d", count))
	}
	if drag := m.engine.Drag(); drag.Active() {
		header += lipgloss.NewStyle().Foreground(accentColor).Render("  " + drag.Phase.String())
	}

	sections := []string{header, "", m.renderBoard()}
	if m.mode == modeSearch {
		sections = append(sections, m.searchInput.View())
	}
	if count := m.engine.Selection().Len(); count > 0 {
		sections = append(sections, statusStyle.Render(fmt.Sprintf("%d tasks selected • %s toggle • %s delete • esc clear", count, m.keys.multiSelect.Help().Key, m.keys.bulkDelete.Help().Key)))
	}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(mutedColor).
		BorderTop(true).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine

	overlay := m.renderModeOverlay(m.width - 8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(m.width - 8)
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}

	view := tea.NewView(fullContent)
	view.MouseMode = tea.MouseModeCellMotion
	view.AltScreen = true
	return view
}

// renderBoard renders every column side by side.
func (m Model) renderBoard() string {
	columns := m.columns()
	if len(columns) == 0 {
		return lipgloss.NewStyle().Foreground(mutedColor).Render("no columns configured")
	}
	colWidth := m.columnWidth()
	views := make([]string, 0, len(columns))
	for colIdx, column := range columns {
		views = append(views, m.renderColumn(colIdx, column, colWidth))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// renderColumn renders one column: a title line, an info line, then cards.
// Every card occupies cardRows() lines starting with a gap line, which turns
// into the drop marker when the drag hovers that slot.
func (m Model) renderColumn(colIdx int, column domain.Column, colWidth int) string {
	tasks, _ := m.engine.VisibleColumnTasks(column.ID)
	stats, _ := m.engine.ColumnStats(column.ID)
	selection := m.engine.Selection()
	drag := m.engine.Drag()
	focused := colIdx == m.selectedColumn

	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	selectedTaskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	selectedMultiTaskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true).Underline(true)
	multiSelectedTaskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("237")).Bold(true)
	draggedStyle := lipgloss.NewStyle().Foreground(dimColor).Italic(true)
	itemSubStyle := lipgloss.NewStyle().Foreground(mutedColor)
	dropStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	held := len(column.TaskIDs)
	colHeader := fmt.Sprintf("%s (%d)", column.Title, held)
	if column.HasWIPLimit() {
		colHeader = fmt.Sprintf("%s (%d/%d)", column.Title, held, column.WIPLimit)
	}
	if len(tasks) != held {
		colHeader += fmt.Sprintf(" · %d shown", len(tasks))
	}
	headerLines := []string{colTitle.Render(truncate(colHeader, colWidth-7)), m.columnInfoLine(column, stats, colWidth-7)}

	rows := m.cardRows()
	textWidth := max(1, colWidth-10)
	hoverSlot := -1
	if drag.Active() && drag.OverColumnID == column.ID && focused {
		hoverSlot = m.selectedTask
	}
	dropMarker := dropStyle.Render(truncate("▸ drop here", textWidth+3))

	taskLines := make([]string, 0, (len(tasks)+1)*rows)
	if len(tasks) == 0 && hoverSlot < 0 {
		taskLines = append(taskLines, "", emptyStyle.Render("(empty)"))
	}
	for taskIdx, task := range tasks {
		selected := focused && taskIdx == m.selectedTask && !drag.Active()
		multiSelected := selection.Contains(task.ID)
		dragged := drag.Active() && drag.TaskID == task.ID

		prefix := "   "
		switch {
		case dragged:
			prefix = "≡  "
		case selected && multiSelected:
			prefix = "│* "
		case selected:
			prefix = "│  "
		case multiSelected:
			prefix = " * "
		}
		title := prefix + truncate(task.Title, textWidth)
		switch {
		case dragged:
			title = draggedStyle.Render(title)
		case selected && multiSelected:
			title = selectedMultiTaskStyle.Render(title)
		case selected:
			title = selectedTaskStyle.Render(title)
		case multiSelected:
			title = multiSelectedTaskStyle.Render(title)
		}

		gap := ""
		if taskIdx == hoverSlot {
			gap = dropMarker
		}
		subPrefix := "   "
		if selected {
			subPrefix = "│  "
		}
		taskLines = append(taskLines, gap, title, subPrefix+itemSubStyle.Render(truncate(m.cardMeta(task), textWidth)))
		if m.taskFields.ShowDescription {
			description := strings.SplitN(task.Description, "\n", 2)[0]
			taskLines = append(taskLines, subPrefix+itemSubStyle.Render(truncate(description, textWidth)))
		}
	}
	if hoverSlot >= len(tasks) {
		taskLines = append(taskLines, dropMarker)
	}

	innerHeight := max(1, m.columnHeight()-4)
	taskWindowHeight := max(1, innerHeight-len(headerLines))
	if focused {
		top := m.scrollTop(len(tasks)) * rows
		if top > 0 && top < len(taskLines) {
			taskLines = taskLines[top:]
		}
	}
	if len(taskLines) > taskWindowHeight {
		taskLines = taskLines[:taskWindowHeight]
	}

	lines := append(append([]string{}, headerLines...), taskLines...)
	content := fitLines(strings.Join(lines, "\n"), innerHeight)
	return m.columnStyle(colWidth, focused).Render(content)
}

// columnInfoLine shows the WIP warning when one applies, else priority and
// overdue counts for the visible tasks.
func (m Model) columnInfoLine(column domain.Column, stats domain.ColumnStats, colWidth int) string {
	held := len(column.TaskIDs)
	if m.showWIPWarnings && column.HasWIPLimit() {
		switch {
		case held > column.WIPLimit:
			return lipgloss.NewStyle().Bold(true).Foreground(warningColor).Render(truncate(fmt.Sprintf("WIP limit exceeded: %d/%d", held, column.WIPLimit), colWidth))
		case stats.AtWIPLimit:
			return lipgloss.NewStyle().Bold(true).Foreground(warningColor).Render(truncate("WIP limit reached", colWidth))
		case stats.NearWIPLimit:
			return lipgloss.NewStyle().Foreground(cautionColor).Render(truncate(fmt.Sprintf("near WIP limit (%.0f%%)", stats.WIPProgress), colWidth))
		}
	}
	parts := make([]string, 0, 3)
	if stats.Urgent > 0 {
		parts = append(parts, fmt.Sprintf("%d urgent", stats.Urgent))
	}
	if stats.HighPriority > 0 {
		parts = append(parts, fmt.Sprintf("%d high", stats.HighPriority))
	}
	if stats.Overdue > 0 {
		parts = append(parts, fmt.Sprintf("%d overdue", stats.Overdue))
	}
	return lipgloss.NewStyle().Foreground(mutedColor).Render(truncate(strings.Join(parts, " • "), colWidth))
}

// cardMeta returns the secondary card line for the configured fields.
func (m Model) cardMeta(task domain.Task) string {
	parts := make([]string, 0, 4)
	if m.taskFields.ShowPriority && task.Priority != domain.PriorityNone {
		parts = append(parts, strings.ToLower(task.Priority.Label()))
	}
	if m.taskFields.ShowDueDate && task.DueAt != nil {
		due := "due " + formatDueValue(task.DueAt)
		if task.IsOverdue(m.engine.Now()) {
			due = "!" + due
		}
		parts = append(parts, due)
	}
	if m.taskFields.ShowAssignee {
		if initials := task.AssigneeInitials(); initials != "" {
			parts = append(parts, "@"+initials)
		}
	}
	if m.taskFields.ShowTags {
		if tags := summarizeTags(task.Tags, 2); tags != "" {
			parts = append(parts, tags)
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) columnStyle(colWidth int, focused bool) lipgloss.Style {
	border := dimColor
	if focused {
		border = accentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2).
		MarginRight(1).
		Width(colWidth)
}

// renderModeOverlay renders the modal for the active input mode.
func (m Model) renderModeOverlay(maxWidth int) string {
	width := clamp(maxWidth, 40, 72)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	hintStyle := lipgloss.NewStyle().Foreground(mutedColor)
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Width(width)

	switch m.mode {
	case modeAddTask, modeEditTask:
		title := "New Task"
		if m.mode == modeEditTask {
			title = "Edit Task"
		}
		lines := []string{titleStyle.Render(title), ""}
		for i, label := range taskFormLabels {
			if i >= len(m.formInputs) {
				break
			}
			marker := "  "
			if i == m.formFocus {
				marker = "> "
			}
			lines = append(lines, fmt.Sprintf("%s%-12s %s", marker, label+":", m.formInputs[i].View()))
		}
		lines = append(lines, "", hintStyle.Render("tab/shift+tab move • enter save • esc cancel"))
		return style.Render(strings.Join(lines, "\n"))
	case modeTaskInfo:
		task, ok := m.engine.Board().Task(m.infoTaskID)
		if !ok {
			return ""
		}
		column, _ := m.engine.Board().ColumnByStatus(task.Status)
		body := m.markdown.render(taskMarkdown(task, column, m.engine.Now()), width-4)
		lines := []string{body, "", hintStyle.Render("esc close • y copy")}
		return style.Render(strings.Join(lines, "\n"))
	case modeConfirm:
		lines := []string{titleStyle.Render("Confirm"), "", m.pending.label, "", hintStyle.Render("y confirm • n cancel")}
		return style.BorderForeground(warningColor).Render(strings.Join(lines, "\n"))
	default:
		return ""
	}
}

// renderHelpOverlay renders the full key reference.
func (m Model) renderHelpOverlay(maxWidth int) string {
	width := clamp(maxWidth, 56, 100)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)

	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("swimlane help")
	workflow := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Workflows"),
		"1. n add task  •  enter edit  •  i info  •  c duplicate  •  y copy",
		"2. m pick up, h/j/k/l choose a slot, m or enter drop, esc cancel",
		"3. [ ] move across columns  •  K/J reorder within a column",
		"4. x select  •  ctrl+a select all  •  del delete selected",
		"5. / search as you type  •  f cycle priority filter  •  esc clears",
	}
	lines := []string{
		title,
		"",
		hb.View(m.keys),
		"",
		lipgloss.NewStyle().Foreground(mutedColor).Render(strings.Join(workflow, "\n")),
		lipgloss.NewStyle().Foreground(mutedColor).Render("press ? or esc to close"),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// summarizeTags renders up to maxTags tags and a count of the rest.
func summarizeTags(tags []string, maxTags int) string {
	if len(tags) == 0 {
		return ""
	}
	maxTags = max(1, maxTags)
	visible := tags
	extra := 0
	if len(tags) > maxTags {
		visible = tags[:maxTags]
		extra = len(tags) - maxTags
	}
	joined := "#" + strings.Join(visible, ",#")
	if extra > 0 {
		joined += fmt.Sprintf("+%d", extra)
	}
	return joined
}
