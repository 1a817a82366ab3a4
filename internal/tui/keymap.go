package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap holds the board key bindings.
type keyMap struct {
	quit          key.Binding
	toggleHelp    key.Binding
	moveLeft      key.Binding
	moveRight     key.Binding
	moveUp        key.Binding
	moveDown      key.Binding
	firstTask     key.Binding
	lastTask      key.Binding
	addTask       key.Binding
	editTask      key.Binding
	taskInfo      key.Binding
	duplicateTask key.Binding
	deleteTask    key.Binding
	bulkDelete    key.Binding
	multiSelect   key.Binding
	selectAll     key.Binding
	pickUp        key.Binding
	moveTaskLeft  key.Binding
	moveTaskRight key.Binding
	moveTaskUp    key.Binding
	moveTaskDown  key.Binding
	search        key.Binding
	cycleFilter   key.Binding
	yank          key.Binding
}

// newKeyMap returns the default bindings.
func newKeyMap() keyMap {
	return keyMap{
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		firstTask:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "first task")),
		lastTask:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "last task")),
		addTask:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		editTask:      key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit task")),
		taskInfo:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "task info")),
		duplicateTask: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "duplicate")),
		deleteTask:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		bulkDelete:    key.NewBinding(key.WithKeys("delete", "backspace"), key.WithHelp("del", "delete selected")),
		multiSelect:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "select")),
		selectAll:     key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "select all")),
		pickUp:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "pick up/drop")),
		moveTaskLeft:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move task left")),
		moveTaskRight: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move task right")),
		moveTaskUp:    key.NewBinding(key.WithKeys("K", "shift+k"), key.WithHelp("K", "move task up")),
		moveTaskDown:  key.NewBinding(key.WithKeys("J", "shift+j"), key.WithHelp("J", "move task down")),
		search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		cycleFilter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "priority filter")),
		yank:          key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy task")),
	}
}

// applyConfig replaces the configurable bindings. Blank values keep defaults.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.multiSelect, cfg.MultiSelect, "x", "select")
	configureBinding(&k.pickUp, cfg.PickUp, "m", "pick up/drop")
	configureBinding(&k.duplicateTask, cfg.Duplicate, "c", "duplicate")
	configureBinding(&k.yank, cfg.Yank, "y", "copy task")
	configureBinding(&k.cycleFilter, cfg.CycleFilter, "f", "priority filter")
}

// configureBinding points b at the parsed keys for raw.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, helpKey := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(helpKey, desc)
}

// parseBindingKeys turns a configured key into matcher keys and help text.
// Single upper-case runes also match their shift+ form.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	value := strings.TrimSpace(raw)
	if value == "" {
		if raw == " " {
			value = "space"
		} else {
			value = fallback
		}
	}
	if value == "space" {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(value) == 1 {
		r, _ := utf8.DecodeRuneInString(value)
		if unicode.IsUpper(r) {
			return []string{value, "shift+" + string(unicode.ToLower(r))}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}

// ShortHelp returns the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.editTask, k.pickUp, k.multiSelect, k.search, k.cycleFilter, k.toggleHelp, k.quit,
	}
}

// FullHelp returns every binding grouped for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addTask, k.editTask, k.taskInfo, k.duplicateTask, k.deleteTask, k.yank, k.search, k.cycleFilter, k.toggleHelp, k.quit},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.firstTask, k.lastTask},
		{k.pickUp, k.moveTaskLeft, k.moveTaskRight, k.moveTaskUp, k.moveTaskDown},
		{k.multiSelect, k.selectAll, k.bulkDelete},
	}
}
