package domain

import "time"

// ColumnStats summarizes the tasks shown in one column.
type ColumnStats struct {
	Total        int
	HighPriority int
	Urgent       int
	Overdue      int
	WIPProgress  float64
	NearWIPLimit bool
	AtWIPLimit   bool
	CanAddTask   bool
}

// StatsFor computes stats for column. Counts cover tasks, which callers may
// have filtered; WIP flags always use the full sequence length.
func StatsFor(column Column, tasks []Task, now time.Time) ColumnStats {
	stats := ColumnStats{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Priority {
		case PriorityHigh:
			stats.HighPriority++
		case PriorityUrgent:
			stats.Urgent++
		}
		if task.IsOverdue(now) {
			stats.Overdue++
		}
	}
	held := len(column.TaskIDs)
	stats.WIPProgress = column.WIPProgress(held)
	stats.NearWIPLimit = column.NearWIPLimit(held)
	stats.AtWIPLimit = column.AtWIPLimit(held)
	stats.CanAddTask = column.CanAddTask(held)
	return stats
}
