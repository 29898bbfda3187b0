// Package browse tracks which result rows are selected, pinned, and
// expanded. All state is keyed by the derived row key, so it survives
// re-sorting and re-filtering as long as the underlying record keeps its
// identifying fields.
package browse

import "sort"

// Selection holds the three interacting pieces of row state: the keyboard
// cursor, the sticky pinned detail row, and the set of expanded rows.
type Selection struct {
	Selected string
	Pinned   string
	expanded map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{expanded: map[string]struct{}{}}
}

// Restore rebuilds a Selection from persisted view-state.
func Restore(pinned string, expanded []string) *Selection {
	s := NewSelection()
	s.Pinned = pinned
	for _, key := range expanded {
		s.expanded[key] = struct{}{}
	}
	return s
}

// IsExpanded reports whether the row's inline detail is visible.
func (s *Selection) IsExpanded(key string) bool {
	_, ok := s.expanded[key]
	return ok
}

// ExpandedKeys returns the expanded set in sorted order for persistence.
func (s *Selection) ExpandedKeys() []string {
	keys := make([]string, 0, len(s.expanded))
	for key := range s.expanded {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ToggleExpand flips a row's inline detail. Collapsing a pinned row clears
// the pin in the same action — a pinned row is always expanded, so hiding
// its detail necessarily un-pins it.
func (s *Selection) ToggleExpand(key string) {
	if key == "" {
		return
	}
	if s.Pinned == key {
		s.Pinned = ""
		delete(s.expanded, key)
		return
	}
	if _, ok := s.expanded[key]; ok {
		delete(s.expanded, key)
	} else {
		s.expanded[key] = struct{}{}
	}
}

// TogglePin pins the row, marking it expanded and moving the keyboard
// cursor to it. Pinning the already-pinned row only clears the pin; the
// row's expansion stays as last set.
func (s *Selection) TogglePin(key string) {
	if key == "" {
		return
	}
	if s.Pinned == key {
		s.Pinned = ""
		return
	}
	s.Pinned = key
	s.expanded[key] = struct{}{}
	s.Selected = key
}

// SyncFull reconciles against the full (unfiltered) record set: a pin whose
// record disappeared entirely is cleared. Filtered-out rows keep their pin.
func (s *Selection) SyncFull(allKeys []string) {
	if s.Pinned == "" {
		return
	}
	for _, key := range allKeys {
		if key == s.Pinned {
			return
		}
	}
	s.Pinned = ""
}

// SyncVisible reconciles the cursor against the current filtered view: an
// empty view clears the selection, and a selection pointing at a hidden row
// snaps to the first visible one.
func (s *Selection) SyncVisible(visibleKeys []string) {
	if len(visibleKeys) == 0 {
		s.Selected = ""
		return
	}
	for _, key := range visibleKeys {
		if key == s.Selected {
			return
		}
	}
	s.Selected = visibleKeys[0]
}

// moveBy shifts the cursor within the visible rows, clamped at both ends.
func (s *Selection) moveBy(delta int, visibleKeys []string) {
	if len(visibleKeys) == 0 {
		s.Selected = ""
		return
	}
	idx := 0
	for i, key := range visibleKeys {
		if key == s.Selected {
			idx = i + delta
			break
		}
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(visibleKeys) {
		idx = len(visibleKeys) - 1
	}
	s.Selected = visibleKeys[idx]
}
