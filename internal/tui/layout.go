package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// Rows above the first card: the board header and spacer, then the column
// border, padding, title and info lines.
const (
	boardTop        = 2
	columnChromeTop = 4
)

// columnWidth returns the inner width shared by all columns.
func (m Model) columnWidth() int {
	count := len(m.columns())
	if count == 0 {
		return 24
	}
	w := 28
	if m.width > 0 {
		// border (2), horizontal padding (4), margin-right (1)
		const colOverhead = 7
		if candidate := (m.width - count*colOverhead) / count; candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, 24, 42)
}

// columnHeight returns the outer column height.
func (m Model) columnHeight() int {
	headerLines := boardTop
	footerLines := 4
	return max(14, m.height-headerLines-footerLines)
}

// cardRows is the number of lines each card occupies, gap line included.
func (m Model) cardRows() int {
	if m.taskFields.ShowDescription {
		return 4
	}
	return 3
}

// scrollTop returns the first card shown in the focused column.
func (m Model) scrollTop(count int) int {
	window := max(1, m.columnHeight()-4-2)
	visibleCards := max(1, window/m.cardRows())
	return clamp(m.selectedTask-visibleCards+1, 0, max(0, count))
}

// columnAt maps a screen x coordinate to a column index, or -1.
func (m Model) columnAt(x int) int {
	columns := m.columns()
	pitch := lipgloss.Width(m.columnStyle(m.columnWidth(), false).Render(""))
	if pitch <= 0 || x < 0 {
		return -1
	}
	idx := x / pitch
	if idx >= len(columns) {
		return -1
	}
	return idx
}

// slotAt maps a screen y coordinate to a card slot in column colIdx. Rows
// above the first card return -1.
func (m Model) slotAt(colIdx, y, count int) int {
	row := y - boardTop - columnChromeTop
	if row < 0 {
		return -1
	}
	slot := row / m.cardRows()
	if colIdx == m.selectedColumn {
		slot += m.scrollTop(count)
	}
	return slot
}

func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone || m.engine.Drag().Active() {
		return m, nil
	}
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.selectedTask > 0 {
			m.selectedTask--
		}
	case tea.MouseWheelDown:
		if m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
	}
	return m, nil
}

// handleMouseClick focuses the clicked card and picks it up.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone || m.engine.Drag().Active() || msg.Button != tea.MouseLeft {
		return m, nil
	}
	colIdx := m.columnAt(msg.X)
	if colIdx < 0 {
		return m, nil
	}
	m.selectedColumn = colIdx
	tasks := m.currentColumnTasks()
	slot := m.slotAt(colIdx, msg.Y, len(tasks))
	if slot < 0 || slot >= len(tasks) {
		m.clampSelections()
		return m, nil
	}
	m.selectedTask = slot
	column, _ := m.currentColumn()
	m.engine.StartDrag(tasks[slot].ID, column.ID)
	m.mouseDrag = m.engine.Drag().Active()
	return m, nil
}

// dropColumnAt maps a pointer position to the column it can drop into, or
// -1 when the position is outside every column box.
func (m Model) dropColumnAt(x, y int) int {
	if y < boardTop || y >= boardTop+m.columnHeight() {
		return -1
	}
	return m.columnAt(x)
}

// handleMouseMotion moves the drop target of a mouse drag.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.mouseDrag || !m.engine.Drag().Active() {
		return m, nil
	}
	colIdx := m.dropColumnAt(msg.X, msg.Y)
	if colIdx < 0 {
		m.status = "outside the board: release cancels the drag"
		return m, nil
	}
	m.selectedColumn = colIdx
	count := len(m.currentColumnTasks())
	m.selectedTask = clamp(m.slotAt(colIdx, msg.Y, count), 0, count)
	m.syncDragHover()
	m.status = "dragging"
	return m, nil
}

// handleMouseRelease drops a mouse drag at the release position. Releasing
// outside every column cancels; releasing over the origin is a plain click.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.mouseDrag {
		return m, nil
	}
	m.mouseDrag = false
	drag := m.engine.Drag()
	if !drag.Active() {
		return m, nil
	}
	colIdx := m.dropColumnAt(msg.X, msg.Y)
	if colIdx < 0 {
		m.engine.CancelDrag()
		m.focusTaskByID(drag.TaskID)
		m.status = "drag cancelled"
		return m, nil
	}
	m.selectedColumn = colIdx
	count := len(m.currentColumnTasks())
	m.selectedTask = clamp(m.slotAt(colIdx, msg.Y, count), 0, count)
	m.syncDragHover()
	drag = m.engine.Drag()
	if from, ok := m.engine.Board().Column(drag.FromColumnID); ok && drag.OverColumnID == from.ID && drag.OverIndex == from.IndexOf(drag.TaskID) {
		m.engine.CancelDrag()
		m.focusTaskByID(drag.TaskID)
		if m.status == "dragging" {
			m.status = "ready"
		}
		return m, nil
	}
	return m.dropDrag()
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay over base on a width by height canvas.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))
	canvas.Compose(lipgloss.NewLayer(centered).X(0).Y(0).Z(10))
	return canvas.Render()
}

// truncate cuts s to max terminal cells, wide runes counted twice.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	return runewidth.Truncate(s, max, "…")
}
