package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/hylla/swimlane/internal/domain"
)

// markdownRenderer renders markdown for terminal views and recreates the renderer when wrap width changes.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// render converts markdown input into ANSI-styled terminal text with the requested wrap width.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := max(width, 24)
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}

// taskMarkdown builds the task info document.
func taskMarkdown(task domain.Task, column domain.Column, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", task.Title)
	if task.Description != "" {
		b.WriteString(task.Description)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "- **Column:** %s\n", column.Title)
	fmt.Fprintf(&b, "- **Status:** %s\n", task.Status.Label())
	if task.Priority != domain.PriorityNone {
		fmt.Fprintf(&b, "- **Priority:** %s\n", task.Priority.Label())
	}
	if task.Assignee != "" {
		fmt.Fprintf(&b, "- **Assignee:** %s\n", task.Assignee)
	}
	if len(task.Tags) > 0 {
		fmt.Fprintf(&b, "- **Tags:** `%s`\n", strings.Join(task.Tags, "`, `"))
	}
	if task.DueAt != nil {
		due := formatDueValue(task.DueAt)
		if task.IsOverdue(now) {
			due += " (overdue)"
		}
		fmt.Fprintf(&b, "- **Due:** %s\n", due)
	}
	fmt.Fprintf(&b, "- **Created:** %s\n", task.CreatedAt.UTC().Format("2006-01-02 15:04"))
	return b.String()
}
