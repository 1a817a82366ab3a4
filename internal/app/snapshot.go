package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hylla/swimlane/internal/domain"
)

// SnapshotVersion identifies the board snapshot format.
const SnapshotVersion = "swimlane.snapshot.v1"

// Snapshot is the portable JSON form of a board. It seeds a board at startup
// and is what `swimlane export` writes.
type Snapshot struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Columns    []SnapshotColumn `json:"columns"`
	Tasks      []SnapshotTask   `json:"tasks"`
}

// SnapshotColumn is one column with its ordered task ids.
type SnapshotColumn struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Status   domain.Status `json:"status"`
	WIPLimit int           `json:"wip_limit,omitempty"`
	TaskIDs  []string      `json:"task_ids"`
}

// SnapshotTask is one task record.
type SnapshotTask struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Status      domain.Status   `json:"status"`
	Priority    domain.Priority `json:"priority,omitempty"`
	Assignee    string          `json:"assignee,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	DueAt       *time.Time      `json:"due_at,omitempty"`
}

// ExportSnapshot captures board. Tasks are listed column by column in
// sequence order.
func ExportSnapshot(board domain.Board, now time.Time) Snapshot {
	columns := board.Columns()
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: now.UTC(),
		Columns:    make([]SnapshotColumn, 0, len(columns)),
		Tasks:      make([]SnapshotTask, 0, board.TaskCount()),
	}
	for _, column := range columns {
		snap.Columns = append(snap.Columns, SnapshotColumn{
			ID:       column.ID,
			Title:    column.Title,
			Status:   column.Status,
			WIPLimit: column.WIPLimit,
			TaskIDs:  column.TaskIDs,
		})
		tasks, _ := board.ColumnTasks(column.ID)
		for _, task := range tasks {
			snap.Tasks = append(snap.Tasks, snapshotTaskFromDomain(task))
		}
	}
	return snap
}

// DecodeSnapshot reads a JSON snapshot, checks it against the snapshot
// schema, then applies the semantic checks of Validate.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	if err := validateSnapshotDocument(raw); err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Encode writes the snapshot as indented JSON.
func (s Snapshot) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// Validate checks the fields a board cannot be built without. Ids must be
// stored trimmed so task records and column sequences agree.
func (s Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}
	if len(s.Columns) == 0 {
		return errors.New("snapshot has no columns")
	}
	for i, c := range s.Columns {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("columns[%d].id is required", i)
		}
		if c.WIPLimit < 0 {
			return fmt.Errorf("columns[%d].wip_limit must be >= 0", i)
		}
		for j, id := range c.TaskIDs {
			if id != strings.TrimSpace(id) {
				return fmt.Errorf("columns[%d].task_ids[%d] %q has surrounding whitespace", i, j, id)
			}
		}
	}
	taskIDs := map[string]struct{}{}
	for i, t := range s.Tasks {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("tasks[%d].id is required", i)
		}
		if t.ID != strings.TrimSpace(t.ID) {
			return fmt.Errorf("tasks[%d].id %q has surrounding whitespace", i, t.ID)
		}
		if _, exists := taskIDs[t.ID]; exists {
			return fmt.Errorf("duplicate task id: %q", t.ID)
		}
		taskIDs[t.ID] = struct{}{}
	}
	return nil
}

// Board builds a validated board from the snapshot. Status spellings are
// normalized; tasks missing a creation time are stamped with now.
func (s Snapshot) Board(now time.Time) (domain.Board, error) {
	if err := s.Validate(); err != nil {
		return domain.Board{}, err
	}
	columns := make([]domain.Column, 0, len(s.Columns))
	for _, c := range s.Columns {
		columns = append(columns, domain.Column{
			ID:       c.ID,
			Title:    c.Title,
			Status:   domain.NormalizeStatus(string(c.Status)),
			WIPLimit: c.WIPLimit,
			TaskIDs:  c.TaskIDs,
		})
	}
	tasks := make(map[string]domain.Task, len(s.Tasks))
	for i, t := range s.Tasks {
		createdAt := t.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		task, err := domain.NewTask(t.ID, domain.TaskInput{
			Title:       t.Title,
			Description: t.Description,
			Status:      domain.NormalizeStatus(string(t.Status)),
			Priority:    t.Priority,
			Assignee:    t.Assignee,
			Tags:        t.Tags,
			DueAt:       t.DueAt,
		}, createdAt)
		if err != nil {
			return domain.Board{}, fmt.Errorf("tasks[%d] %q: %w", i, t.ID, err)
		}
		tasks[task.ID] = task
	}
	board, err := domain.NewBoard(columns, tasks)
	if err != nil {
		return domain.Board{}, fmt.Errorf("build board: %w", err)
	}
	return board, nil
}

// snapshotTaskFromDomain converts a task into its snapshot form.
func snapshotTaskFromDomain(t domain.Task) SnapshotTask {
	return SnapshotTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Assignee:    t.Assignee,
		Tags:        t.Tags,
		CreatedAt:   t.CreatedAt,
		DueAt:       t.DueAt,
	}
}
