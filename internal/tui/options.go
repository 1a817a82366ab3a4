package tui

// TaskFieldConfig selects the optional fields rendered on cards.
type TaskFieldConfig struct {
	ShowPriority    bool
	ShowDueDate     bool
	ShowTags        bool
	ShowAssignee    bool
	ShowDescription bool
}

// ConfirmConfig selects which destructive actions ask first.
type ConfirmConfig struct {
	Delete     bool
	BulkDelete bool
}

// KeyConfig overrides the rebindable keys. Blank fields keep defaults.
type KeyConfig struct {
	MultiSelect string
	PickUp      string
	Duplicate   string
	Yank        string
	CycleFilter string
}

type Option func(*Model)

func DefaultTaskFieldConfig() TaskFieldConfig {
	return TaskFieldConfig{
		ShowPriority:    true,
		ShowDueDate:     true,
		ShowTags:        true,
		ShowAssignee:    true,
		ShowDescription: false,
	}
}

func WithTaskFieldConfig(cfg TaskFieldConfig) Option {
	return func(m *Model) {
		m.taskFields = cfg
	}
}

func WithConfirmConfig(cfg ConfirmConfig) Option {
	return func(m *Model) {
		m.confirm = cfg
	}
}

func WithWIPWarnings(enabled bool) Option {
	return func(m *Model) {
		m.showWIPWarnings = enabled
	}
}

func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

// WithClipboard replaces the function used to copy task summaries.
func WithClipboard(copyFn func(string) error) Option {
	return func(m *Model) {
		if copyFn != nil {
			m.copyToClipboard = copyFn
		}
	}
}
