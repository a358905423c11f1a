package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"pipeline/internal/model"
	"pipeline/internal/table"
)

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, b *FilterBar, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, err := b.Update(keyPress(k))
		require.NoError(t, err)
	}
}

func filterValue(tbl *table.Table[model.Opportunity], id string) table.FilterValue {
	for _, f := range tbl.Filters() {
		if f.ID == id {
			return f.Value
		}
	}
	return table.FilterValue{}
}

func TestFilterBar_SingleSelectPicksAndCloses(t *testing.T) {
	s, log := loadedScreen(t, 10)
	tbl := s.Table()
	bar := NewFilterBar(tbl, nil)
	bar.Focus()

	press(t, bar, "l", "enter")
	require.True(t, tbl.Popovers().IsOpen("opportunities:stage"))

	press(t, bar, "j", "j", "enter")
	require.Equal(t, "qualified", filterValue(tbl, "stage").String())
	require.False(t, tbl.Popovers().IsOpen("opportunities:stage"))
	require.Len(t, log.reqs, 2)
	require.Equal(t, "Qualified", tbl.FilterDisplayValue("stage"))

	press(t, bar, "x")
	require.False(t, tbl.HasActiveFilters())
	require.Len(t, log.reqs, 3)

	press(t, bar, "esc")
	require.False(t, bar.Focused())
}

func TestFilterBar_MultiSelectToggles(t *testing.T) {
	s, _ := loadedScreen(t, 10)
	tbl := s.Table()
	opened := ""
	bar := NewFilterBar(tbl, func(id string) tea.Cmd {
		opened = id
		return nil
	})
	bar.Focus()

	tok := tbl.IssueOptionsToken("owner")
	require.NoError(t, tbl.SetFilterOptions("owner", []table.Option{
		{Value: model.OwnerKey(1), Label: "Ada Lovelace"},
		{Value: model.OwnerKey(2), Label: "Grace Hopper"},
	}, tok))

	press(t, bar, "l", "l", "enter")
	require.Equal(t, "owner", opened)

	press(t, bar, " ", "j", " ")
	require.Equal(t, []string{"owner:1", "owner:2"}, filterValue(tbl, "owner").Values())
	require.True(t, tbl.Popovers().IsOpen("opportunities:owner"), "multi-select stays open")
	require.Contains(t, bar.View(120), "✓ Grace Hopper")

	press(t, bar, "k", " ")
	require.Equal(t, []string{"owner:2"}, filterValue(tbl, "owner").Values())
	require.Equal(t, "Grace Hopper", tbl.FilterDisplayValue("owner"))
}

func TestFilterBar_SearchEditsThroughInput(t *testing.T) {
	s, log := loadedScreen(t, 10)
	tbl := s.Table()
	bar := NewFilterBar(tbl, nil)
	bar.Focus()

	press(t, bar, "enter", "acme f", "enter")
	require.Equal(t, "acme f", filterValue(tbl, "q").String(), "letters that are bar keys are typed into the input")
	require.Len(t, log.reqs, 2)

	press(t, bar, "enter", "xyz", "esc")
	require.Equal(t, "acme f", filterValue(tbl, "q").String(), "esc abandons the edit")
	require.True(t, bar.Focused())
}

func TestFilterBar_OnePopoverAcrossBars(t *testing.T) {
	popovers := table.NewPopoverRegistry()
	opps, err := NewOpportunitiesScreen(nil, 20, popovers)
	require.NoError(t, err)
	props, err := NewProposalsScreen(nil, 20, popovers)
	require.NoError(t, err)

	oppBar := NewFilterBar(opps.Table(), nil)
	propBar := NewFilterBar(props.Table(), nil)
	oppBar.Focus()
	propBar.Focus()

	press(t, oppBar, "l", "enter")
	require.True(t, popovers.IsOpen("opportunities:stage"))

	press(t, propBar, "l", "enter")
	require.True(t, popovers.IsOpen("proposals:status"))
	require.False(t, popovers.IsOpen("opportunities:stage"))
}
