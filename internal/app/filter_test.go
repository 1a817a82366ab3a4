package app

import (
	"errors"
	"testing"

	"github.com/hylla/swimlane/internal/domain"
)

func TestFilterTasks(t *testing.T) {
	tasks := map[string]domain.Task{
		"t1": {ID: "t1", Title: "Fix login bug", Priority: domain.PriorityHigh},
		"t2": {ID: "t2", Title: "Write docs", Description: "Explain the LOGIN flow", Priority: domain.PriorityLow},
		"t3": {ID: "t3", Title: "Plan sprint", Assignee: "Logan Reyes", Priority: domain.PriorityHigh},
		"t4": {ID: "t4", Title: "Triage", Priority: domain.PriorityNone},
	}
	cases := []struct {
		name     string
		query    string
		priority PriorityFilter
		want     []string
	}{
		{name: "no filter", query: "", priority: PriorityAll, want: []string{"t1", "t2", "t3", "t4"}},
		{name: "space is a literal", query: " ", priority: "", want: []string{"t1", "t2", "t3"}},
		{name: "padded query keeps padding", query: " bug", priority: PriorityAll, want: []string{"t1"}},
		{name: "title description assignee", query: "LOG", priority: PriorityAll, want: []string{"t1", "t2", "t3"}},
		{name: "priority only", query: "", priority: "high", want: []string{"t1", "t3"}},
		{name: "query and priority", query: "login", priority: "high", want: []string{"t1"}},
		{name: "no match", query: "deploy", priority: PriorityAll, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterTasks(tasks, tc.query, tc.priority)
			if len(got) != len(tc.want) {
				t.Fatalf("FilterTasks() returned %d tasks, want %d: %v", len(got), len(tc.want), got)
			}
			for _, id := range tc.want {
				if _, ok := got[id]; !ok {
					t.Fatalf("expected %q in result %v", id, got)
				}
			}
		})
	}
	if len(tasks) != 4 {
		t.Fatal("expected FilterTasks to leave its input alone")
	}
}

func TestParsePriorityFilter(t *testing.T) {
	cases := map[string]PriorityFilter{
		"":        PriorityAll,
		"ALL":     PriorityAll,
		" urgent": PriorityFilter(domain.PriorityUrgent),
		"Low":     PriorityFilter(domain.PriorityLow),
	}
	for raw, want := range cases {
		got, err := ParsePriorityFilter(raw)
		if err != nil {
			t.Fatalf("ParsePriorityFilter(%q) error = %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParsePriorityFilter(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := ParsePriorityFilter("critical"); !errors.Is(err, ErrInvalidPriorityFilter) {
		t.Fatalf("expected ErrInvalidPriorityFilter, got %v", err)
	}
}

func TestPriorityFilterCycle(t *testing.T) {
	filter := PriorityAll
	seen := []PriorityFilter{filter}
	for range len(PriorityFilters()) - 1 {
		filter = filter.Next()
		seen = append(seen, filter)
	}
	if seen[1] != PriorityFilter(domain.PriorityLow) || seen[len(seen)-1] != PriorityFilter(domain.PriorityUrgent) {
		t.Fatalf("unexpected cycle %v", seen)
	}
	if filter.Next() != PriorityAll {
		t.Fatalf("expected cycle to wrap to all, got %q", filter.Next())
	}
	if PriorityAll.Label() != "All priorities" || PriorityFilter("high").Label() != "High" {
		t.Fatal("unexpected filter labels")
	}
}
