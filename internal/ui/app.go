package ui

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pipeline/internal/db"
	"pipeline/internal/model"
	"pipeline/internal/table"
	"pipeline/internal/views"
)

// Options configures the root model.
type Options struct {
	PageSize  int
	PrefsPath string
}

// Model is the root Bubble Tea model.
type Model struct {
	db     *sql.DB
	store  *views.Store
	owners *db.OwnerOptions
	screen model.Screen
	gState GState

	width  int
	height int

	error       string
	info        string
	showingHelp bool
	columnJump  bool

	// Screen models
	opportunities      *TableScreen[model.Opportunity]
	proposals          *TableScreen[model.Proposal]
	opportunityFilters *FilterBar
	proposalFilters    *FilterBar
	viewsPanel         *ViewsPanel
	popovers           *table.PopoverRegistry

	keys      KeyMap
	prefsPath string
	prefs     UIPreferences
	undoStack []undoAction
	redoStack []undoAction
}

// New creates a new root model.
func New(database *sql.DB, store *views.Store, opts Options) (Model, error) {
	popovers := table.NewPopoverRegistry()
	opportunities, err := NewOpportunitiesScreen(database, opts.PageSize, popovers)
	if err != nil {
		return Model{}, err
	}
	proposals, err := NewProposalsScreen(database, opts.PageSize, popovers)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		db:            database,
		store:         store,
		owners:        db.NewOwnerOptions(database),
		screen:        model.ScreenOpportunities,
		gState:        GStateIdle,
		opportunities: opportunities,
		proposals:     proposals,
		viewsPanel:    NewViewsPanel(store),
		popovers:      popovers,
		keys:          DefaultKeyMap(),
		prefsPath:     opts.PrefsPath,
		prefs:         loadUIPreferences(opts.PrefsPath),
	}
	owners := m.owners
	oppTable := opportunities.Table()
	m.opportunityFilters = NewFilterBar(oppTable, func(filterID string) tea.Cmd {
		if filterID != "owner" {
			return nil
		}
		return loadOwnerOptionsCmd(owners, PageOpportunities, oppTable.IssueOptionsToken(filterID))
	})
	m.proposalFilters = NewFilterBar(proposals.Table(), nil)
	if m.prefs.Screen == PageProposals {
		m.screen = model.ScreenProposals
	}
	return m, nil
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.opportunities.Refresh(), m.proposals.Refresh()}
	for _, pageType := range []string{PageOpportunities, PageProposals} {
		if id := m.prefs.LastView[pageType]; id != "" {
			cmds = append(cmds, loadViewCmd(m.store, pageType, id))
		}
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Handle ctrl+c globally
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.viewsPanel.IsOpen() {
			return m, m.viewsPanel.Update(msg, m.currentTarget())
		}

		if bar := m.currentFilterBar(); bar.Focused() {
			cmd, err := bar.Update(msg)
			m.setError(err)
			return m, tea.Batch(cmd, m.currentTable().Cmds())
		}

		if m.columnJump {
			if msg.String() == "esc" {
				m.columnJump = false
				m.info = ""
				return m, nil
			}
			if n, err := strconv.Atoi(msg.String()); err == nil {
				if m.currentTable().JumpToColumn(n) {
					m.columnJump = false
					m.info = fmt.Sprintf("Jumped to column %d", n)
					return m, nil
				}
				m.info = fmt.Sprintf("Column %d unavailable", n)
				return m, nil
			}
		}

		// Handle help toggle
		if key.Matches(msg, m.keys.Help) {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
			}
			return m, nil
		}

		return m.handleNavMode(msg)

	case model.ErrorMsg:
		m.setError(msg.Err)
		return m, nil

	case model.OpportunitiesLoadedMsg:
		m.installRows(m.opportunities.Load(msg.Token, msg.Rows))
		return m, nil

	case model.ProposalsLoadedMsg:
		m.installRows(m.proposals.Load(msg.Token, msg.Rows))
		return m, nil

	case model.OwnerOptionsLoadedMsg:
		if msg.PageType == PageOpportunities {
			m.setError(m.opportunities.Table().SetFilterOptions("owner", msg.Options, msg.Token))
		}
		return m, nil

	case model.WindowCommitMsg:
		if t := m.tableFor(msg.PageType); t != nil {
			t.Commit()
		}
		return m, nil

	case model.ViewsListedMsg:
		m.viewsPanel.Listed(msg)
		return m, nil

	case model.ViewSavedMsg:
		m.pushUndoAction(m.buildViewSaveAction(msg))
		m.info = fmt.Sprintf("View %q saved (u to undo)", msg.View.Name)
		m.error = ""
		m.rememberView(msg.View.PageType, msg.View.ID)
		return m, m.viewsPanel.Refresh()

	case model.ViewLoadedMsg:
		return m, m.applyView(msg.View)

	case model.ViewDeletedMsg:
		m.pushUndoAction(m.buildViewDeleteAction(msg.Deleted))
		m.info = fmt.Sprintf("View %q deleted (u to undo)", msg.Deleted.Name)
		if m.prefs.LastView[msg.Deleted.PageType] == msg.Deleted.ID {
			m.rememberView(msg.Deleted.PageType, "")
		}
		return m, m.viewsPanel.Refresh()

	case undoAppliedMsg:
		return m, m.applyUndoResult(msg)
	}

	return m, nil
}

func (m *Model) installRows(err error) {
	if err == nil {
		m.error = ""
		return
	}
	m.setError(err)
}

// setError shows err in the status line. Stale responses are dropped since
// a newer fetch is in flight.
func (m *Model) setError(err error) {
	if err == nil || table.CodeOf(err) == table.CodeStaleResponse {
		return
	}
	m.error = err.Error()
}

func (m *Model) applyView(v views.View) tea.Cmd {
	screen := m.tableFor(v.PageType)
	if screen == nil {
		return nil
	}
	if err := screen.ApplyView(v.State()); err != nil {
		m.error = fmt.Sprintf("view %q: %v", v.Name, err)
		return nil
	}
	m.error = ""
	m.info = fmt.Sprintf("Loaded view %q", v.Name)
	m.rememberView(v.PageType, v.ID)
	return screen.Cmds()
}

func (m *Model) rememberView(pageType, id string) {
	if id == "" {
		delete(m.prefs.LastView, pageType)
	} else {
		m.prefs.LastView[pageType] = id
	}
	m.persistPrefs()
}

func (m *Model) persistPrefs() {
	m.prefs.Screen = m.pageType()
	if err := saveUIPreferences(m.prefsPath, m.prefs); err != nil {
		log.Printf("failed to save ui prefs: %v", err)
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	header := renderHeader([]string{screenTitle(m.screen)}, m.width)
	tabs := renderTabs(m.screen, m.width)
	filters := m.currentFilterBar().View(m.width)
	mode := model.ModeNav
	if m.currentFilterBar().Focused() || m.viewsPanel.IsOpen() {
		mode = model.ModeInsert
	}
	footer := RenderHelp(m.screen, mode, m.width)

	parts := []string{header, tabs, filters}
	if m.error != "" {
		parts = append(parts, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		parts = append(parts, SuccessStyle.Width(m.width).Render(m.info))
	}
	if m.viewsPanel.IsOpen() {
		parts = append(parts, m.viewsPanel.View(m.width))
	}

	used := 0
	for _, p := range parts {
		used += lipgloss.Height(p)
	}
	contentHeight := max(m.height-used-lipgloss.Height(footer), 3)
	content := m.currentTable().View(m.width, contentHeight)
	content = lipgloss.NewStyle().Width(m.width).Height(contentHeight).MaxHeight(contentHeight).Render(content)

	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func screenTitle(screen model.Screen) string {
	if screen == model.ScreenProposals {
		return "Proposals"
	}
	return "Opportunities"
}

func renderTabs(screen model.Screen, width int) string {
	tabs := []struct {
		name   string
		screen model.Screen
	}{
		{"Opportunities", model.ScreenOpportunities},
		{"Proposals", model.ScreenProposals},
	}

	var tabStrings []string
	for _, tab := range tabs {
		tabStyle := lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorMuted)

		if screen == tab.screen {
			tabStyle = tabStyle.
				Foreground(ColorText).
				Bold(true).
				Underline(true)
		}

		tabStrings = append(tabStrings, tabStyle.Render(tab.name))
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Left, tabStrings...)
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		Render(tabBar)
}

func renderHeader(breadcrumbParts []string, width int) string {
	title := HeaderStyle.Render("pipeline")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb
	right := BreadcrumbStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return TitleStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.currentTable()

	// Handle "gg" state machine
	if key.Matches(msg, m.keys.Top) {
		if m.gState == GStateIdle {
			m.gState = GStateFirstG
			return m, nil
		}
		m.gState = GStateIdle
		return m, t.JumpToTop()
	}
	m.gState = GStateIdle

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		return m, t.MoveDown()
	case key.Matches(msg, m.keys.Up):
		return m, t.MoveUp()
	case key.Matches(msg, m.keys.Bottom):
		return m, t.JumpToBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		return m, t.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		return m, t.HalfPageUp()
	case key.Matches(msg, m.keys.Opportunities):
		return m.switchScreen(model.ScreenOpportunities)
	case key.Matches(msg, m.keys.Proposals):
		return m.switchScreen(model.ScreenProposals)
	case key.Matches(msg, m.keys.NextColumn):
		t.NextColumn()
	case key.Matches(msg, m.keys.PrevColumn):
		t.PrevColumn()
	case key.Matches(msg, m.keys.ColumnJump):
		m.columnJump = true
		m.info = "Jump to column: press 1-9 (esc to cancel)"
	case key.Matches(msg, m.keys.Sort):
		m.info = t.CycleSortActiveColumn()
	case key.Matches(msg, m.keys.HideColumn):
		if t.HideActiveColumn() {
			m.info = "Column hidden"
		} else {
			m.info = "Cannot hide last visible column"
		}
	case key.Matches(msg, m.keys.ShowColumns):
		t.ShowAllColumns()
		m.info = "All columns shown"
	case key.Matches(msg, m.keys.MoveLeft):
		if t.MoveActiveColumn(-1) {
			m.info = "Column moved left"
		}
	case key.Matches(msg, m.keys.MoveRight):
		if t.MoveActiveColumn(1) {
			m.info = "Column moved right"
		}
	case key.Matches(msg, m.keys.Narrow):
		if !t.ResizeActiveColumn(-1) {
			m.info = "Column is at its minimum width"
		}
	case key.Matches(msg, m.keys.Widen):
		t.ResizeActiveColumn(1)
	case key.Matches(msg, m.keys.ToggleRow):
		t.ToggleSelected()
	case key.Matches(msg, m.keys.SelectAll):
		t.ToggleSelectAll()
	case key.Matches(msg, m.keys.Filters):
		m.currentFilterBar().Focus()
	case key.Matches(msg, m.keys.ClearFilters):
		m.currentFilterTarget().ClearAllFilters()
		m.info = "Filters cleared"
		return m, t.Cmds()
	case key.Matches(msg, m.keys.Views):
		return m, m.viewsPanel.Open(m.pageType())
	case key.Matches(msg, m.keys.Refresh):
		return m, t.Refresh()
	case key.Matches(msg, m.keys.Undo):
		if len(m.undoStack) == 0 {
			m.info = "Nothing to undo"
			return m, nil
		}
		return m, m.undoCmd()
	case key.Matches(msg, m.keys.Redo):
		if len(m.redoStack) == 0 {
			m.info = "Nothing to redo"
			return m, nil
		}
		return m, m.redoCmd()
	}
	return m, nil
}

func (m Model) switchScreen(screen model.Screen) (tea.Model, tea.Cmd) {
	if m.screen == screen {
		return m, nil
	}
	m.currentFilterBar().Blur()
	m.popovers.CloseAll()
	m.screen = screen
	m.columnJump = false
	m.info = ""
	m.persistPrefs()
	return m, nil
}

func (m *Model) pageType() string {
	if m.screen == model.ScreenProposals {
		return PageProposals
	}
	return PageOpportunities
}

func (m *Model) currentTable() tableController {
	if m.screen == model.ScreenProposals {
		return m.proposals
	}
	return m.opportunities
}

func (m *Model) tableFor(pageType string) tableController {
	switch pageType {
	case PageOpportunities:
		return m.opportunities
	case PageProposals:
		return m.proposals
	}
	return nil
}

func (m *Model) currentFilterBar() *FilterBar {
	if m.screen == model.ScreenProposals {
		return m.proposalFilters
	}
	return m.opportunityFilters
}

func (m *Model) currentFilterTarget() filterTarget {
	if m.screen == model.ScreenProposals {
		return m.proposals.Table()
	}
	return m.opportunities.Table()
}

func (m *Model) currentTarget() viewTarget {
	if m.screen == model.ScreenProposals {
		return m.proposals.Table()
	}
	return m.opportunities.Table()
}
