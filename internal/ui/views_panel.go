package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pipeline/internal/model"
	"pipeline/internal/table"
	"pipeline/internal/util"
	"pipeline/internal/views"
)

// viewTarget is the part of a table the views panel reads and replaces.
type viewTarget interface {
	PageType() string
	Snapshot() table.ViewState
}

// ViewsPanel lists, saves, loads and deletes the saved views of the current
// page type.
type ViewsPanel struct {
	store  *views.Store
	tokens *table.Tokens
	keys   ViewsKeyMap

	open     bool
	naming   bool
	input    textinput.Model
	cursor   int
	pageType string
	views    []views.View
}

// NewViewsPanel creates a closed panel over store.
func NewViewsPanel(store *views.Store) *ViewsPanel {
	ti := textinput.New()
	ti.Placeholder = "My Pipeline"
	ti.Prompt = "name: "
	ti.CharLimit = 60
	return &ViewsPanel{store: store, tokens: table.NewTokens(), keys: DefaultViewsKeyMap(), input: ti}
}

// IsOpen reports whether the panel takes key input.
func (p *ViewsPanel) IsOpen() bool { return p.open }

// Open shows the views of pageType and refreshes them.
func (p *ViewsPanel) Open(pageType string) tea.Cmd {
	p.open = true
	p.naming = false
	if p.pageType != pageType {
		p.views = nil
		p.cursor = 0
	}
	p.pageType = pageType
	return p.Refresh()
}

// Close hides the panel.
func (p *ViewsPanel) Close() {
	p.open = false
	p.naming = false
	p.input.Blur()
}

// Refresh lists the views again. Only the newest refresh is applied.
func (p *ViewsPanel) Refresh() tea.Cmd {
	if p.pageType == "" {
		return nil
	}
	tok := p.tokens.Issue("views:" + p.pageType)
	return listViewsCmd(p.store, p.pageType, tok)
}

// Listed installs a refresh result. Stale or foreign results are dropped.
func (p *ViewsPanel) Listed(msg model.ViewsListedMsg) bool {
	if msg.PageType != p.pageType || !p.tokens.Accept("views:"+msg.PageType, msg.Token) {
		return false
	}
	p.views = msg.Views
	p.cursor = min(p.cursor, max(len(p.views)-1, 0))
	return true
}

// Views returns the listed views.
func (p *ViewsPanel) Views() []views.View { return p.views }

// Update handles a key while open.
func (p *ViewsPanel) Update(msg tea.KeyMsg, target viewTarget) tea.Cmd {
	if p.naming {
		switch msg.String() {
		case "enter":
			name := strings.TrimSpace(p.input.Value())
			p.naming = false
			p.input.Blur()
			if name == "" {
				return nil
			}
			return saveViewCmd(p.store, name, target.PageType(), target.Snapshot())
		case "esc":
			p.naming = false
			p.input.Blur()
			return nil
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, p.keys.Down):
		if p.cursor < len(p.views)-1 {
			p.cursor++
		}
	case key.Matches(msg, p.keys.Save):
		p.naming = true
		p.input.SetValue("")
		if v, ok := p.selected(); ok {
			p.input.SetValue(v.Name)
			p.input.CursorEnd()
		}
		return p.input.Focus()
	case key.Matches(msg, p.keys.Load):
		if v, ok := p.selected(); ok {
			return loadViewCmd(p.store, v.PageType, v.ID)
		}
	case key.Matches(msg, p.keys.Delete):
		if v, ok := p.selected(); ok {
			return deleteViewCmd(p.store, v.PageType, v.ID)
		}
	case key.Matches(msg, p.keys.Close):
		p.Close()
	}
	return nil
}

func (p *ViewsPanel) selected() (views.View, bool) {
	if p.cursor < 0 || p.cursor >= len(p.views) {
		return views.View{}, false
	}
	return p.views[p.cursor], true
}

// View renders the panel.
func (p *ViewsPanel) View(width int) string {
	var lines []string
	lines = append(lines, LabelStyle.Render("Saved views · "+p.pageType))
	if len(p.views) == 0 {
		lines = append(lines, HelpDescStyle.Render("No saved views yet. Press n to save the current layout."))
	}
	for i, v := range p.views {
		summary := describeView(v)
		line := fmt.Sprintf("%-24s %s", util.TruncateString(v.Name, 24), HelpDescStyle.Render(summary))
		if i == p.cursor {
			line = SelectedRowStyle.Render(fmt.Sprintf("%-24s %s", util.TruncateString(v.Name, 24), summary))
		}
		lines = append(lines, line)
	}
	if p.naming {
		lines = append(lines, "", p.input.View())
	}
	lines = append(lines, "", helpKey("enter", "load")+"  "+helpKey("n", "save")+"  "+helpKey("d", "delete")+"  "+helpKey("esc", "close"))
	return PopoverStyle.Width(min(width-2, 80)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func describeView(v views.View) string {
	var parts []string
	if v.Sort.Active() {
		parts = append(parts, fmt.Sprintf("sort %s %s", v.Sort.Key, v.Sort.Direction))
	}
	active := 0
	for _, f := range v.Filters {
		if f.IsActive() {
			active++
		}
	}
	if active > 0 {
		parts = append(parts, fmt.Sprintf("%d filters", active))
	}
	parts = append(parts, "updated "+util.FormatDateHuman(v.UpdatedAt.Local().Format("2006-01-02")))
	return strings.Join(parts, " · ")
}

// Commands

func listViewsCmd(store *views.Store, pageType string, tok table.Token) tea.Cmd {
	return func() tea.Msg {
		list, err := store.ListViews(context.Background(), pageType)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.ViewsListedMsg{PageType: pageType, Token: tok, Views: list}
	}
}

func saveViewCmd(store *views.Store, name, pageType string, state table.ViewState) tea.Cmd {
	return func() tea.Msg {
		v, prev, err := store.SaveView(context.Background(), name, pageType, state)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.ViewSavedMsg{View: v, Previous: prev}
	}
}

func loadViewCmd(store *views.Store, pageType, id string) tea.Cmd {
	return func() tea.Msg {
		v, err := store.LoadView(context.Background(), pageType, id)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.ViewLoadedMsg{View: v}
	}
}

func deleteViewCmd(store *views.Store, pageType, id string) tea.Cmd {
	return func() tea.Msg {
		v, err := store.DeleteView(context.Background(), pageType, id)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.ViewDeletedMsg{Deleted: v}
	}
}
