package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hylla/swimlane/internal/app"
	"github.com/hylla/swimlane/internal/domain"
)

// summaryRow is one rendered column line of the summary table.
type summaryRow struct {
	column string
	status domain.Status
	stats  domain.ColumnStats
	limit  int
	held   int
}

// summaryRows collects per-column stats under the engine's current filter.
func summaryRows(engine *app.Engine) ([]summaryRow, error) {
	columns := engine.Board().Columns()
	rows := make([]summaryRow, 0, len(columns))
	for _, column := range columns {
		stats, err := engine.ColumnStats(column.ID)
		if err != nil {
			return nil, fmt.Errorf("column %q stats: %w", column.ID, err)
		}
		rows = append(rows, summaryRow{
			column: column.Title,
			status: column.Status,
			stats:  stats,
			limit:  column.WIPLimit,
			held:   len(column.TaskIDs),
		})
	}
	return rows, nil
}

func wipCell(r summaryRow) string {
	if r.limit <= 0 {
		return strconv.Itoa(r.held)
	}
	cell := fmt.Sprintf("%d/%d", r.held, r.limit)
	switch {
	case r.held > r.limit:
		return cell + " over"
	case r.stats.AtWIPLimit:
		return cell + " full"
	case r.stats.NearWIPLimit:
		return cell + " near"
	}
	return cell
}

func writeSummary(w io.Writer, engine *app.Engine) error {
	rows, err := summaryRows(engine)
	if err != nil {
		return err
	}

	warn := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("Column", "Status", "Tasks", "WIP", "Urgent", "High", "Overdue").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
			}
			if col == 3 && row >= 0 && row < len(rows) && rows[row].stats.AtWIPLimit {
				return warn.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	total := 0
	for _, r := range rows {
		total += r.stats.Total
		t.Row(
			r.column,
			string(r.status),
			strconv.Itoa(r.stats.Total),
			wipCell(r),
			strconv.Itoa(r.stats.Urgent),
			strconv.Itoa(r.stats.HighPriority),
			strconv.Itoa(r.stats.Overdue),
		)
	}

	filter := "none"
	if q := engine.SearchQuery(); q != "" || engine.PriorityFilter() != app.PriorityAll {
		filter = fmt.Sprintf("query=%q priority=%s", q, engine.PriorityFilter())
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%d tasks shown, %d on board, filter: %s\n", total, engine.Board().TaskCount(), filter)
	return err
}
