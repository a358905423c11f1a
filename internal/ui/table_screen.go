package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pipeline/internal/model"
	"pipeline/internal/table"
	"pipeline/internal/util"
)

const (
	// pixelsPerCell converts stored column widths to terminal cells.
	pixelsPerCell = 8
	resizeStep    = 2 * pixelsPerCell
	// loadThreshold is how many rows from the end of the window the cursor
	// must be to count as near the sentinel.
	loadThreshold = 3
	commitDelay   = 40 * time.Millisecond
)

// CellFunc renders the cell of row for column id, at most width cells wide.
type CellFunc[T any] func(row T, id string, width int) string

// FetchFunc turns a fetch request into the command that answers it.
type FetchFunc func(req table.FetchRequest) tea.Cmd

// TableScreen renders a table.Table and maps keys onto it.
type TableScreen[T any] struct {
	noun  string
	empty string
	tbl   *table.Table[T]
	cell  CellFunc[T]
	rowID func(T) string

	cursor int
	offset int
	active int

	viewportHeight int
	loaded         bool

	pending []tea.Cmd
}

// NewTableScreen creates a screen over a new table built from cfg. Fetch
// requests raised by the table are queued and returned by Cmds.
func NewTableScreen[T any](noun, empty string, cfg table.Config[T], cell CellFunc[T], fetch FetchFunc) (*TableScreen[T], error) {
	tbl, err := table.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s table: %w", noun, err)
	}
	s := &TableScreen[T]{noun: noun, empty: empty, tbl: tbl, cell: cell, rowID: cfg.RowID}
	tbl.OnFetch(func(req table.FetchRequest) {
		s.pending = append(s.pending, fetch(req))
	})
	tbl.OnChange(s.clampCursor)
	return s, nil
}

// Table returns the underlying table.
func (s *TableScreen[T]) Table() *table.Table[T] { return s.tbl }

// Cmds drains the queued fetch commands.
func (s *TableScreen[T]) Cmds() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

// Refresh asks for the collection again.
func (s *TableScreen[T]) Refresh() tea.Cmd {
	s.tbl.Refetch()
	return s.Cmds()
}

// Load installs rows fetched under tok.
func (s *TableScreen[T]) Load(tok table.Token, rows []T) error {
	if err := s.tbl.SetRowsFor(tok, rows); err != nil {
		return err
	}
	s.loaded = true
	s.cursor, s.offset = 0, 0
	return nil
}

// ApplyView applies a saved view and homes the cursor.
func (s *TableScreen[T]) ApplyView(state table.ViewState) error {
	if err := s.tbl.ApplyView(state); err != nil {
		return err
	}
	s.cursor, s.offset, s.active = 0, 0, 0
	return nil
}

// Commit lands a pending page.
func (s *TableScreen[T]) Commit() bool {
	return s.tbl.CommitLoad()
}

func (s *TableScreen[T]) clampCursor() {
	n := len(s.tbl.DisplayedIDs())
	if n == 0 {
		s.cursor, s.offset = 0, 0
		return
	}
	s.cursor = min(max(s.cursor, 0), n-1)
	if s.offset > s.cursor {
		s.offset = s.cursor
	}
	if visible := len(s.tbl.VisibleColumns()); s.active >= visible {
		s.active = visible - 1
	}
}

func (s *TableScreen[T]) activeColumn() table.Column {
	visible := s.tbl.VisibleColumns()
	return visible[min(s.active, len(visible)-1)]
}

// Column navigation and layout

func (s *TableScreen[T]) NextColumn() {
	s.active = (s.active + 1) % len(s.tbl.VisibleColumns())
}

func (s *TableScreen[T]) PrevColumn() {
	n := len(s.tbl.VisibleColumns())
	s.active = (s.active - 1 + n) % n
}

func (s *TableScreen[T]) JumpToColumn(number int) bool {
	if number < 1 || number > len(s.tbl.VisibleColumns()) {
		return false
	}
	s.active = number - 1
	return true
}

func (s *TableScreen[T]) CycleSortActiveColumn() string {
	col := s.activeColumn()
	cfg := s.tbl.RequestSort(col.ID)
	switch cfg.Direction {
	case table.Ascending:
		return fmt.Sprintf("Sorted %s ascending", strings.ToUpper(col.Label))
	case table.Descending:
		return fmt.Sprintf("Sorted %s descending", strings.ToUpper(col.Label))
	default:
		return "Sorting cleared"
	}
}

func (s *TableScreen[T]) HideActiveColumn() bool {
	if !s.tbl.HideColumn(s.activeColumn().ID) {
		return false
	}
	s.clampCursor()
	return true
}

func (s *TableScreen[T]) ShowAllColumns() {
	s.tbl.ShowAllColumns()
}

// MoveActiveColumn drags the active column onto its visible neighbour.
func (s *TableScreen[T]) MoveActiveColumn(delta int) bool {
	visible := s.tbl.VisibleColumns()
	target := s.active + delta
	if target < 0 || target >= len(visible) {
		return false
	}
	if !s.tbl.DragStart(visible[s.active].ID) {
		return false
	}
	if !s.tbl.DragEnd(visible[target].ID) {
		s.tbl.DragCancel()
		return false
	}
	s.active = target
	return true
}

func (s *TableScreen[T]) ResizeActiveColumn(delta int) bool {
	col := s.activeColumn()
	return s.tbl.ResizeColumn(col.ID, col.Width+delta*resizeStep)
}

// Selection

func (s *TableScreen[T]) ToggleSelected() bool {
	ids := s.tbl.DisplayedIDs()
	if len(ids) == 0 {
		return false
	}
	return s.tbl.ToggleRow(ids[s.cursor])
}

func (s *TableScreen[T]) ToggleSelectAll() {
	s.tbl.SelectAll(!s.tbl.AllSelected())
}

// Cursor movement. Each returns the command that lands a page when the move
// brought the cursor near the end of the window.

func (s *TableScreen[T]) MoveDown() tea.Cmd {
	if s.cursor < len(s.tbl.DisplayedIDs())-1 {
		s.cursor++
		if s.cursor >= s.offset+s.viewport() {
			s.offset++
		}
	}
	return s.observe()
}

func (s *TableScreen[T]) MoveUp() tea.Cmd {
	if s.cursor > 0 {
		s.cursor--
		if s.cursor < s.offset {
			s.offset--
		}
	}
	return s.observe()
}

func (s *TableScreen[T]) JumpToTop() tea.Cmd {
	s.cursor = 0
	s.offset = 0
	return s.observe()
}

func (s *TableScreen[T]) JumpToBottom() tea.Cmd {
	n := len(s.tbl.DisplayedIDs())
	if n == 0 {
		return nil
	}
	s.cursor = n - 1
	if vh := s.viewport(); s.cursor >= vh {
		s.offset = s.cursor - vh + 1
	}
	return s.observe()
}

func (s *TableScreen[T]) HalfPageDown() tea.Cmd {
	n := len(s.tbl.DisplayedIDs())
	if n == 0 {
		return nil
	}
	s.cursor = min(s.cursor+s.viewport()/2, n-1)
	if vh := s.viewport(); s.cursor >= s.offset+vh {
		s.offset = s.cursor - vh + 1
	}
	return s.observe()
}

func (s *TableScreen[T]) HalfPageUp() tea.Cmd {
	s.cursor = max(s.cursor-s.viewport()/2, 0)
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	return s.observe()
}

func (s *TableScreen[T]) viewport() int {
	if s.viewportHeight <= 0 {
		return 10
	}
	return s.viewportHeight
}

// observe feeds the cursor position to the proximity trigger.
func (s *TableScreen[T]) observe() tea.Cmd {
	near := len(s.tbl.DisplayedIDs())-s.cursor <= loadThreshold
	if !s.tbl.ObserveProximity(near) {
		return nil
	}
	pageType := s.tbl.PageType()
	return tea.Tick(commitDelay, func(time.Time) tea.Msg {
		return model.WindowCommitMsg{PageType: pageType}
	})
}

func (s *TableScreen[T]) TableMeta() string {
	col := strings.ToUpper(s.activeColumn().Label)
	parts := []string{fmt.Sprintf("col %s", col)}
	if cfg := s.tbl.Sort(); cfg.Active() {
		parts = append(parts, fmt.Sprintf("sort %s %s", strings.ToUpper(cfg.Key), cfg.Direction))
	}
	if n := len(s.tbl.SelectedIDs()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	return strings.Join(parts, "  ·  ")
}

// View renders the table.
func (s *TableScreen[T]) View(width, height int) string {
	props := s.tbl.Props()
	if len(props.Displayed) == 0 {
		msg := "Loading..."
		if s.loaded {
			msg = s.empty
		}
		return EmptyStateStyle.Width(width).Height(height).Render(msg)
	}

	widths := []int{3}
	headers := []string{"[ ]"}
	if props.AllSelected {
		headers[0] = "[x]"
	}
	for i, col := range props.Columns {
		label := formatHeaderLabel(col.Label)
		if i == s.active {
			label = renderActiveHeaderLabel(label)
		}
		if props.Sort.Key == col.ID {
			if props.Sort.Direction == table.Descending {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		widths = append(widths, max(col.Width/pixelsPerCell, lipgloss.Width(label)+1))
		headers = append(headers, label)
	}
	sepTotal := (len(widths) - 1) * tableSeparatorWidth()
	total := sepTotal
	for _, w := range widths {
		total += w
	}
	if extra := width - total - 2; extra > 0 {
		widths[len(widths)-1] += extra
	}

	header := renderTableRow(headers, widths, TableHeaderStyle.UnsetPadding())
	divider := renderTableDivider(widths)

	visibleHeight := max(height-4, 1)
	s.viewportHeight = visibleHeight
	selected := make(map[string]bool, len(props.Selected))
	for _, id := range props.Selected {
		selected[id] = true
	}

	var rows []string
	for i := s.offset; i < len(props.Displayed) && i < s.offset+visibleHeight; i++ {
		row := props.Displayed[i]
		style := NormalRowStyle
		mark := "[ ]"
		if selected[s.rowID(row)] {
			style = CheckedRowStyle
			mark = "[x]"
		}
		if i == s.cursor {
			style = SelectedRowStyle
		}
		cells := []string{mark}
		for j, col := range props.Columns {
			cells = append(cells, s.cell(row, col.ID, widths[j+1]))
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	status := fmt.Sprintf("%s %s", util.FormatCount(len(props.Displayed), props.Total), s.noun)
	if props.HasMore {
		status += "  ·  scroll for more"
	}
	if props.Loading {
		status += "  ·  loading..."
	}
	if meta := s.TableMeta(); meta != "" {
		status += "  ·  " + meta
	}

	content := lipgloss.JoinVertical(lipgloss.Left, header, divider, strings.Join(rows, "\n"))
	statusLine := StatusBarStyle.Render(status)
	spacer := lipgloss.NewStyle().Height(max(0, height-lipgloss.Height(content)-lipgloss.Height(statusLine))).Render("")
	return lipgloss.JoinVertical(lipgloss.Left, content, spacer, statusLine)
}
