package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"pipeline/internal/table"
)

// tableController is the key-driven surface shared by every table screen.
type tableController interface {
	NextColumn()
	PrevColumn()
	JumpToColumn(number int) bool
	CycleSortActiveColumn() string
	HideActiveColumn() bool
	ShowAllColumns()
	MoveActiveColumn(delta int) bool
	ResizeActiveColumn(delta int) bool
	ToggleSelected() bool
	ToggleSelectAll()
	MoveDown() tea.Cmd
	MoveUp() tea.Cmd
	JumpToTop() tea.Cmd
	JumpToBottom() tea.Cmd
	HalfPageDown() tea.Cmd
	HalfPageUp() tea.Cmd
	Refresh() tea.Cmd
	Cmds() tea.Cmd
	Commit() bool
	ApplyView(state table.ViewState) error
	TableMeta() string
	View(width, height int) string
}
