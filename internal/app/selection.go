package app

import (
	"maps"
	"slices"
)

// Selection is the set of task ids marked for bulk actions.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection builds a selection holding ids.
func NewSelection(ids ...string) Selection {
	s := Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Toggle adds id when absent and removes it when present. It reports whether
// id is selected afterwards.
func (s *Selection) Toggle(id string) bool {
	if s.ids == nil {
		s.ids = map[string]struct{}{}
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// SelectAll replaces the selection with ids.
func (s *Selection) SelectAll(ids []string) {
	s.ids = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = map[string]struct{}{}
}

// Remove drops ids from the selection. Unknown ids are ignored.
func (s *Selection) Remove(ids ...string) {
	for _, id := range ids {
		delete(s.ids, id)
	}
}

// Contains reports whether id is selected.
func (s Selection) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selected ids, sorted.
func (s Selection) IDs() []string {
	return slices.Sorted(maps.Keys(s.ids))
}

// Len returns the number of selected ids.
func (s Selection) Len() int {
	return len(s.ids)
}

// Clone returns a copy that does not share storage with s.
func (s Selection) Clone() Selection {
	return Selection{ids: maps.Clone(s.ids)}
}
