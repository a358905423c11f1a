package ui

import "github.com/charmbracelet/bubbles/key"

// GState represents the state for "gg" navigation.
type GState int

const (
	GStateIdle GState = iota
	GStateFirstG
)

// KeyMap defines all keybindings for nav mode.
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	Top           key.Binding
	Bottom        key.Binding
	HalfPageDown  key.Binding
	HalfPageUp    key.Binding
	Quit          key.Binding
	Help          key.Binding
	Opportunities key.Binding
	Proposals     key.Binding
	NextColumn    key.Binding
	PrevColumn    key.Binding
	ColumnJump    key.Binding
	Sort          key.Binding
	HideColumn    key.Binding
	ShowColumns   key.Binding
	MoveLeft      key.Binding
	MoveRight     key.Binding
	Narrow        key.Binding
	Widen         key.Binding
	ToggleRow     key.Binding
	SelectAll     key.Binding
	Filters       key.Binding
	ClearFilters  key.Binding
	Views         key.Binding
	Refresh       key.Binding
	Undo          key.Binding
	Redo          key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "½ page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "½ page up"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Opportunities: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "opportunities"),
		),
		Proposals: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "proposals"),
		),
		NextColumn: key.NewBinding(
			key.WithKeys("tab", "l", "right"),
			key.WithHelp("tab", "next col"),
		),
		PrevColumn: key.NewBinding(
			key.WithKeys("shift+tab", "h", "left"),
			key.WithHelp("shift+tab", "prev col"),
		),
		ColumnJump: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "jump col"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort"),
		),
		HideColumn: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "hide col"),
		),
		ShowColumns: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "show cols"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("<"),
			key.WithHelp("<", "move col left"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys(">"),
			key.WithHelp(">", "move col right"),
		),
		Narrow: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "narrow col"),
		),
		Widen: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "widen col"),
		),
		ToggleRow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select row"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "select all"),
		),
		Filters: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filters"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filters"),
		),
		Views: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "views"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo"),
		),
		Redo: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "redo"),
		),
	}
}

// FilterKeyMap defines keybindings while the filter bar is focused.
type FilterKeyMap struct {
	Prev     key.Binding
	Next     key.Binding
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Apply    key.Binding
	Toggle   key.Binding
	ClearAll key.Binding
	Close    key.Binding
}

// DefaultFilterKeyMap returns the default filter bar keybindings.
func DefaultFilterKeyMap() FilterKeyMap {
	return FilterKeyMap{
		Prev: key.NewBinding(
			key.WithKeys("h", "left", "shift+tab"),
			key.WithHelp("h/←", "prev filter"),
		),
		Next: key.NewBinding(
			key.WithKeys("l", "right", "tab"),
			key.WithHelp("l/→", "next filter"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear all"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "f"),
			key.WithHelp("esc", "close"),
		),
	}
}

// ViewsKeyMap defines keybindings inside the saved views panel.
type ViewsKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Load   key.Binding
	Save   key.Binding
	Delete key.Binding
	Close  key.Binding
}

// DefaultViewsKeyMap returns the default views panel keybindings.
func DefaultViewsKeyMap() ViewsKeyMap {
	return ViewsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Load: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "load"),
		),
		Save: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "save current"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "v"),
			key.WithHelp("esc", "close"),
		),
	}
}
