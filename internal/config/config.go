package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hylla/swimlane/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Board      BoardConfig      `toml:"board"`
	TaskFields TaskFieldsConfig `toml:"task_fields"`
	Filter     FilterConfig     `toml:"filter"`
	Logging    LoggingConfig    `toml:"logging"`
	Confirm    ConfirmConfig    `toml:"confirm"`
	Keys       KeyConfig        `toml:"keys"`
}

type BoardConfig struct {
	SeedPath        string         `toml:"seed_path"`
	Columns         []ColumnConfig `toml:"columns"`
	SampleTasks     bool           `toml:"sample_tasks"`
	ShowWIPWarnings bool           `toml:"show_wip_warnings"`
}

type ColumnConfig struct {
	ID       string `toml:"id"`
	Title    string `toml:"title"`
	Status   string `toml:"status"`
	WIPLimit int    `toml:"wip_limit"`
}

type TaskFieldsConfig struct {
	ShowPriority    bool `toml:"show_priority"`
	ShowDueDate     bool `toml:"show_due_date"`
	ShowTags        bool `toml:"show_tags"`
	ShowAssignee    bool `toml:"show_assignee"`
	ShowDescription bool `toml:"show_description"`
}

type FilterConfig struct {
	DefaultPriority string `toml:"default_priority"`
	DefaultQuery    string `toml:"default_query"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type ConfirmConfig struct {
	Delete     bool `toml:"delete"`
	BulkDelete bool `toml:"bulk_delete"`
}

type KeyConfig struct {
	MultiSelect string `toml:"multi_select"`
	PickUp      string `toml:"pick_up"`
	Duplicate   string `toml:"duplicate"`
	Yank        string `toml:"yank"`
	CycleFilter string `toml:"cycle_filter"`
}

var knownPriorityFilters = []string{"", "all", "low", "medium", "high", "urgent"}

func defaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{ID: "col-1", Title: "To Do", Status: string(domain.StatusTodo), WIPLimit: 10},
		{ID: "col-2", Title: "In Progress", Status: string(domain.StatusInProgress), WIPLimit: 5},
		{ID: "col-3", Title: "Review", Status: string(domain.StatusReview), WIPLimit: 3},
		{ID: "col-4", Title: "Done", Status: string(domain.StatusDone), WIPLimit: 0},
	}
}

func Default(seedPath string) Config {
	return Config{
		Board: BoardConfig{
			SeedPath:        seedPath,
			Columns:         defaultColumns(),
			SampleTasks:     true,
			ShowWIPWarnings: true,
		},
		TaskFields: TaskFieldsConfig{
			ShowPriority:    true,
			ShowDueDate:     true,
			ShowTags:        true,
			ShowAssignee:    true,
			ShowDescription: false,
		},
		Filter: FilterConfig{
			DefaultPriority: "all",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".swimlane/log",
			},
		},
		Confirm: ConfirmConfig{
			Delete:     false,
			BulkDelete: true,
		},
		Keys: KeyConfig{
			MultiSelect: "x",
			PickUp:      "m",
			Duplicate:   "c",
			Yank:        "y",
			CycleFilter: "f",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	// A configured column list replaces the default layout instead of extending it.
	cfg.Board.Columns = nil
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	if len(cfg.Board.Columns) == 0 {
		cfg.Board.Columns = slices.Clone(defaults.Board.Columns)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.Board.Columns) == 0 {
		return errors.New("board.columns must include at least one column")
	}
	seenID := map[string]struct{}{}
	seenStatus := map[domain.Status]struct{}{}
	for idx, column := range c.Board.Columns {
		id := strings.TrimSpace(column.ID)
		if id == "" {
			return fmt.Errorf("board.columns[%d].id is required", idx)
		}
		status := domain.NormalizeStatus(column.Status)
		if !status.Valid() {
			return fmt.Errorf("board.columns[%d].status is unknown: %q", idx, column.Status)
		}
		if column.WIPLimit < 0 {
			return fmt.Errorf("board.columns[%d].wip_limit must be >= 0", idx)
		}
		if _, ok := seenID[id]; ok {
			return fmt.Errorf("board.columns[%d].id is duplicated: %s", idx, id)
		}
		if _, ok := seenStatus[status]; ok {
			return fmt.Errorf("board.columns[%d].status is duplicated: %s", idx, status)
		}
		seenID[id] = struct{}{}
		seenStatus[status] = struct{}{}
	}

	if !slices.Contains(knownPriorityFilters, strings.TrimSpace(strings.ToLower(c.Filter.DefaultPriority))) {
		return fmt.Errorf("invalid filter.default_priority: %q", c.Filter.DefaultPriority)
	}

	if err := c.Keys.validate(); err != nil {
		return err
	}

	if _, err := log.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when enabled")
	}

	return nil
}

func (k KeyConfig) validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"multi_select", k.MultiSelect},
		{"pick_up", k.PickUp},
		{"duplicate", k.Duplicate},
		{"yank", k.Yank},
		{"cycle_filter", k.CycleFilter},
	}
	seen := map[string]string{}
	for _, field := range fields {
		value := strings.TrimSpace(field.value)
		if value == "" {
			continue
		}
		if prev, ok := seen[value]; ok {
			return fmt.Errorf("keys.%s duplicates keys.%s: %q", field.name, prev, value)
		}
		seen[value] = field.name
	}
	return nil
}

// BoardColumns converts the configured layout into empty domain columns.
func (c Config) BoardColumns() []domain.Column {
	out := make([]domain.Column, 0, len(c.Board.Columns))
	for _, column := range c.Board.Columns {
		out = append(out, domain.Column{
			ID:       strings.TrimSpace(column.ID),
			Title:    strings.TrimSpace(column.Title),
			Status:   domain.NormalizeStatus(column.Status),
			WIPLimit: column.WIPLimit,
		})
	}
	return out
}

// LogLevel returns the parsed logging level, falling back to info.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(strings.TrimSpace(c.Logging.Level))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
