package app

import (
	"fmt"
	"time"

	"github.com/hylla/swimlane/internal/domain"
)

// DefaultColumns returns the four workflow columns used when no layout is configured.
func DefaultColumns() []domain.Column {
	return []domain.Column{
		{ID: "col-1", Title: "To Do", Status: domain.StatusTodo, WIPLimit: 10},
		{ID: "col-2", Title: "In Progress", Status: domain.StatusInProgress, WIPLimit: 5},
		{ID: "col-3", Title: "Review", Status: domain.StatusReview, WIPLimit: 3},
		{ID: "col-4", Title: "Done", Status: domain.StatusDone},
	}
}

// EmptyBoard builds a board with columns and no tasks.
func EmptyBoard(columns []domain.Column) (domain.Board, error) {
	return domain.NewBoard(columns, nil)
}

// SampleBoard builds a demo board over columns. Sample tasks whose status has
// no column are skipped.
func SampleBoard(columns []domain.Column, now time.Time) (domain.Board, error) {
	board, err := EmptyBoard(columns)
	if err != nil {
		return domain.Board{}, err
	}
	for idx, in := range sampleTasks(now) {
		if _, ok := board.ColumnByStatus(in.Status); !ok {
			continue
		}
		created := now.Add(time.Duration(idx-10) * time.Hour)
		next, _, err := board.AddTask(fmt.Sprintf("task-%d", idx+1), in, created)
		if err != nil {
			return domain.Board{}, fmt.Errorf("sample task %d: %w", idx+1, err)
		}
		board = next
	}
	return board, nil
}

func sampleTasks(now time.Time) []domain.TaskInput {
	day := 24 * time.Hour
	due := func(offset time.Duration) *time.Time {
		at := now.Add(offset)
		return &at
	}
	return []domain.TaskInput{
		{
			Title:       "Critical bug fix",
			Description: "Fix the production bug affecting **checkout** for logged-in users.",
			Status:      domain.StatusTodo,
			Priority:    domain.PriorityUrgent,
			Assignee:    "Sarah Chen",
			Tags:        []string{"bug", "urgent"},
			DueAt:       due(day),
		},
		{
			Title:       "Design onboarding flow",
			Description: "Sketch the first-run screens and review them with product.",
			Status:      domain.StatusTodo,
			Priority:    domain.PriorityMedium,
			Assignee:    "Maria Garcia",
			Tags:        []string{"design", "ux"},
			DueAt:       due(5 * day),
		},
		{
			Title:    "Update dependencies",
			Status:   domain.StatusTodo,
			Priority: domain.PriorityLow,
			Tags:     []string{"maintenance"},
		},
		{
			Title:       "Security patch",
			Description: "Apply the latest security updates to the API gateway.",
			Status:      domain.StatusInProgress,
			Priority:    domain.PriorityUrgent,
			Assignee:    "Alex Johnson",
			Tags:        []string{"security", "urgent"},
			DueAt:       due(-2 * day),
		},
		{
			Title:       "Search endpoint",
			Description: "Add `GET /search` with pagination.",
			Status:      domain.StatusInProgress,
			Priority:    domain.PriorityHigh,
			Assignee:    "Priya Patel",
			Tags:        []string{"api", "backend"},
			DueAt:       due(3 * day),
		},
		{
			Title:       "Performance optimization",
			Description: "Optimize the slow report queries.",
			Status:      domain.StatusReview,
			Priority:    domain.PriorityHigh,
			Assignee:    "Maria Garcia",
			Tags:        []string{"performance"},
		},
		{
			Title:       "Write release notes",
			Description: "Summarize changes for the next minor release.",
			Status:      domain.StatusReview,
			Priority:    domain.PriorityMedium,
			Assignee:    "Tom Baker",
			Tags:        []string{"docs"},
		},
		{
			Title:       "Set up CI pipeline",
			Description: "Run the test suite and build on every push.",
			Status:      domain.StatusDone,
			Priority:    domain.PriorityMedium,
			Assignee:    "Alex Johnson",
			Tags:        []string{"devops"},
		},
		{
			Title:    "Project kickoff",
			Status:   domain.StatusDone,
			Priority: domain.PriorityLow,
		},
	}
}
