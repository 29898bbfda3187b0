package browse

// Key is one decoded keyboard event.
type Key struct {
	Name string // "up", "down", "enter", or a literal character
	Ctrl bool
	Alt  bool
	Meta bool
}

// Action is a request the key handler cannot satisfy itself and hands back
// to the surrounding UI.
type Action int

const (
	ActionNone Action = iota
	ActionFocusSearch
	ActionToggleEvidence
)

// Dedicated non-navigation keys.
const (
	keyFocusSearch    = "/"
	keyToggleEvidence = "e"
)

// HandleKey applies the keyboard contract: Up/Down move the cursor within
// the visible rows (clamped, no wraparound), Enter toggles the pin on the
// selected row, "/" focuses search, "e" toggles evidence visibility.
// Events arriving while a text-entry element has focus, and any
// Ctrl/Alt/Meta chord, are ignored so browser-style shortcuts pass through.
func (s *Selection) HandleKey(k Key, visibleKeys []string, inTextEntry bool) Action {
	if inTextEntry || k.Ctrl || k.Alt || k.Meta {
		return ActionNone
	}

	switch k.Name {
	case "down":
		s.moveBy(1, visibleKeys)
	case "up":
		s.moveBy(-1, visibleKeys)
	case "enter":
		if s.Selected != "" {
			s.TogglePin(s.Selected)
		}
	case keyFocusSearch:
		return ActionFocusSearch
	case keyToggleEvidence:
		return ActionToggleEvidence
	}
	return ActionNone
}
