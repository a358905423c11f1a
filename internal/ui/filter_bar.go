package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pipeline/internal/table"
)

// filterTarget is the part of a table the filter bar drives.
type filterTarget interface {
	PageType() string
	Filters() []table.Filter
	SetFilterValue(id string, v table.FilterValue) error
	ClearAllFilters()
	HasActiveFilters() bool
	FilterDisplayValue(id string) string
	Popovers() *table.PopoverRegistry
}

// FilterBar renders a table's filters as chips and edits them through
// dropdown popovers. Popovers share the table's registry, so opening one
// closes any other.
type FilterBar struct {
	target  filterTarget
	keys    FilterKeyMap
	focused bool
	index   int
	cursor  int
	editing bool
	input   textinput.Model

	// onOpen runs when a popover opens, e.g. to load its options.
	onOpen func(filterID string) tea.Cmd
}

// NewFilterBar creates a filter bar over target.
func NewFilterBar(target filterTarget, onOpen func(filterID string) tea.Cmd) *FilterBar {
	ti := textinput.New()
	ti.Prompt = "search: "
	ti.CharLimit = 80
	return &FilterBar{target: target, keys: DefaultFilterKeyMap(), input: ti, onOpen: onOpen}
}

// Focused reports whether the bar takes key input.
func (b *FilterBar) Focused() bool { return b.focused }

// Focus gives the bar key input.
func (b *FilterBar) Focus() {
	b.focused = true
	b.index = min(b.index, max(len(b.target.Filters())-1, 0))
}

// Blur releases key input and closes the bar's popover.
func (b *FilterBar) Blur() {
	b.focused = false
	b.editing = false
	b.input.Blur()
	b.target.Popovers().Close(b.openID())
}

func (b *FilterBar) popoverID(filterID string) string {
	return b.target.PageType() + ":" + filterID
}

func (b *FilterBar) current() (table.Filter, bool) {
	filters := b.target.Filters()
	if b.index < 0 || b.index >= len(filters) {
		return table.Filter{}, false
	}
	return filters[b.index], true
}

// openID returns the popover id of the focused filter if it is open.
func (b *FilterBar) openID() string {
	f, ok := b.current()
	if !ok {
		return ""
	}
	id := b.popoverID(f.ID)
	if !b.target.Popovers().IsOpen(id) {
		return ""
	}
	return id
}

// Update handles a key while focused.
func (b *FilterBar) Update(msg tea.KeyMsg) (tea.Cmd, error) {
	if b.editing {
		return b.updateSearch(msg)
	}
	if b.openID() != "" {
		return b.updatePopover(msg)
	}

	filters := b.target.Filters()
	switch {
	case key.Matches(msg, b.keys.Prev):
		if b.index > 0 {
			b.index--
		}
	case key.Matches(msg, b.keys.Next):
		if b.index < len(filters)-1 {
			b.index++
		}
	case key.Matches(msg, b.keys.Open):
		return b.open()
	case key.Matches(msg, b.keys.ClearAll):
		b.target.ClearAllFilters()
	case key.Matches(msg, b.keys.Close):
		b.Blur()
	}
	return nil, nil
}

func (b *FilterBar) open() (tea.Cmd, error) {
	f, ok := b.current()
	if !ok {
		return nil, nil
	}
	b.target.Popovers().Open(b.popoverID(f.ID))
	if f.Type == table.FilterSearch {
		b.editing = true
		b.input.SetValue(f.Value.String())
		b.input.CursorEnd()
		return b.input.Focus(), nil
	}
	b.cursor = 0
	if b.onOpen != nil {
		return b.onOpen(f.ID), nil
	}
	return nil, nil
}

func (b *FilterBar) updateSearch(msg tea.KeyMsg) (tea.Cmd, error) {
	f, _ := b.current()
	switch {
	case key.Matches(msg, b.keys.Apply):
		b.editing = false
		b.input.Blur()
		b.target.Popovers().Close(b.popoverID(f.ID))
		return nil, b.target.SetFilterValue(f.ID, table.Text(strings.TrimSpace(b.input.Value())))
	case msg.Type == tea.KeyEsc:
		b.editing = false
		b.input.Blur()
		b.target.Popovers().Close(b.popoverID(f.ID))
		return nil, nil
	}
	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return cmd, nil
}

func (b *FilterBar) updatePopover(msg tea.KeyMsg) (tea.Cmd, error) {
	f, _ := b.current()
	switch {
	case key.Matches(msg, b.keys.Down):
		if b.cursor < len(f.Options)-1 {
			b.cursor++
		}
	case key.Matches(msg, b.keys.Up):
		if b.cursor > 0 {
			b.cursor--
		}
	case key.Matches(msg, b.keys.Close):
		b.target.Popovers().Close(b.popoverID(f.ID))
	case key.Matches(msg, b.keys.Apply), key.Matches(msg, b.keys.Toggle):
		if b.cursor >= len(f.Options) {
			return nil, nil
		}
		choice := f.Options[b.cursor].Value
		if f.Type == table.FilterMultiSelect {
			values := f.Value.Values()
			if i := slices.Index(values, choice); i >= 0 {
				values = slices.Delete(values, i, i+1)
			} else {
				values = append(values, choice)
			}
			return nil, b.target.SetFilterValue(f.ID, table.List(values...))
		}
		b.target.Popovers().Close(b.popoverID(f.ID))
		return nil, b.target.SetFilterValue(f.ID, table.Text(choice))
	}
	return nil, nil
}

// View renders the chips and, below them, the open popover.
func (b *FilterBar) View(width int) string {
	filters := b.target.Filters()
	chips := make([]string, 0, len(filters)+1)
	for i, f := range filters {
		value := b.target.FilterDisplayValue(f.ID)
		if !f.IsActive() {
			value = "any"
		}
		text := f.Label + ": " + value
		style := ChipStyle
		switch {
		case b.focused && i == b.index:
			style = FocusedChipStyle
		case f.IsActive():
			style = ActiveChipStyle
		}
		chips = append(chips, style.Render(text))
	}
	if b.target.HasActiveFilters() {
		chips = append(chips, HelpDescStyle.Render("x clear all"))
	}
	bar := lipgloss.NewStyle().Width(width).Padding(0, 1).Render(strings.Join(chips, " "))

	f, ok := b.current()
	if !ok || !b.target.Popovers().IsOpen(b.popoverID(f.ID)) {
		return bar
	}
	if f.Type == table.FilterSearch {
		return lipgloss.JoinVertical(lipgloss.Left, bar, PopoverStyle.Render(b.input.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, bar, PopoverStyle.Render(b.renderOptions(f)))
}

func (b *FilterBar) renderOptions(f table.Filter) string {
	if len(f.Options) == 0 {
		return HelpDescStyle.Render("Loading options...")
	}
	chosen := f.Value.Values()
	lines := make([]string, 0, len(f.Options))
	for i, opt := range f.Options {
		mark := "  "
		if slices.Contains(chosen, opt.Value) || (!f.IsActive() && opt.Value == table.AllValue) {
			mark = "✓ "
		}
		line := mark + opt.Label
		if i == b.cursor {
			line = SelectedRowStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
