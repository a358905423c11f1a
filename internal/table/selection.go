package table

import (
	"slices"
)

// SelectionManager tracks selected row ids against the displayed subset.
type SelectionManager struct {
	selected  map[string]struct{}
	selectAll bool
}

// NewSelectionManager creates an empty selection.
func NewSelectionManager() *SelectionManager {
	return &SelectionManager{selected: make(map[string]struct{})}
}

// Toggle flips id. A selected id can always be deselected; only ids in
// displayed can be added.
func (s *SelectionManager) Toggle(id string, displayed []string) bool {
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		s.selectAll = false
		return true
	}
	if !slices.Contains(displayed, id) {
		return false
	}
	s.selected[id] = struct{}{}
	s.selectAll = s.coversAll(displayed)
	return true
}

// SelectAll selects exactly the displayed ids, or clears everything.
func (s *SelectionManager) SelectAll(checked bool, displayed []string) {
	s.selected = make(map[string]struct{}, len(displayed))
	s.selectAll = false
	if !checked {
		return
	}
	for _, id := range displayed {
		s.selected[id] = struct{}{}
	}
	s.selectAll = len(displayed) > 0
}

// IsSelected reports whether id is selected.
func (s *SelectionManager) IsSelected(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// AllSelected reports the select-all flag as of the last mutation.
func (s *SelectionManager) AllSelected() bool {
	return s.selectAll
}

// Len returns the number of selected ids.
func (s *SelectionManager) Len() int {
	return len(s.selected)
}

// IDs returns the selected ids in sorted order.
func (s *SelectionManager) IDs() []string {
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Reset clears the selection.
func (s *SelectionManager) Reset() {
	s.selected = make(map[string]struct{})
	s.selectAll = false
}

func (s *SelectionManager) coversAll(displayed []string) bool {
	if len(displayed) == 0 {
		return false
	}
	for _, id := range displayed {
		if _, ok := s.selected[id]; !ok {
			return false
		}
	}
	return true
}
