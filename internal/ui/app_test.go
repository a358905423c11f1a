package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"pipeline/internal/db"
	"pipeline/internal/model"
	"pipeline/internal/table"
	"pipeline/internal/views"
)

func newTestModel(t *testing.T) (Model, *views.Store) {
	t.Helper()
	dir := t.TempDir()
	database, err := db.Open(filepath.Join(dir, "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.SeedDemo(context.Background(), database, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))

	store, err := views.NewStore(views.NewMemoryPersister())
	require.NoError(t, err)

	m, err := New(database, store, Options{PageSize: 20, PrefsPath: filepath.Join(dir, "ui_prefs.json")})
	require.NoError(t, err)
	m, _ = update(m, tea.WindowSizeMsg{Width: 160, Height: 40})
	return run(t, m, m.Init()), store
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// run executes cmd and feeds what it produces back into m until nothing is
// left to do.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = run(t, m, c)
		}
		return m
	}
	m, next := update(m, msg)
	return run(t, m, next)
}

// typeKeys sends keys without running the commands they return.
func typeKeys(m Model, keys ...string) Model {
	for _, k := range keys {
		m, _ = update(m, keyPress(k))
	}
	return m
}

func pressAndRun(t *testing.T, m Model, k string) Model {
	t.Helper()
	m, cmd := update(m, keyPress(k))
	return run(t, m, cmd)
}

func TestModel_LoadsBothScreens(t *testing.T) {
	m, _ := newTestModel(t)

	require.Equal(t, db.SeedCount, m.opportunities.Table().Len())
	require.Len(t, m.opportunities.Table().DisplayedIDs(), 20)
	require.Equal(t, 38, m.proposals.Table().Len())
	require.Empty(t, m.error)

	m = typeKeys(m, "p")
	require.Equal(t, model.ScreenProposals, m.screen)
	require.Contains(t, m.View(), "20 of 38 proposals")

	m = typeKeys(m, "o")
	require.Contains(t, m.View(), "20 of 64 opportunities")
}

func TestModel_StaleRowsAreIgnored(t *testing.T) {
	m, _ := newTestModel(t)

	require.NoError(t, m.opportunities.Table().SetFilterValue("stage", table.Text("won")))
	stale := m.opportunities.Cmds()
	fresh := m.opportunities.Refresh()

	m = run(t, m, fresh)
	require.Equal(t, 12, m.opportunities.Table().Len())
	m = run(t, m, stale)
	require.Equal(t, 12, m.opportunities.Table().Len())
	require.Empty(t, m.error)
}

func TestModel_SavedViewRoundTrip(t *testing.T) {
	m, store := newTestModel(t)
	opps := m.opportunities.Table()

	m = typeKeys(m, "s")
	require.Equal(t, table.SortConfig{Key: "name", Direction: table.Ascending}, opps.Sort())

	// Stage filter: all, lead, qualified, proposal, won.
	m = typeKeys(m, "f", "l", "enter", "j", "j", "j", "j")
	m = pressAndRun(t, m, "enter")
	m = typeKeys(m, "esc")
	require.Equal(t, 12, opps.Len())

	m = pressAndRun(t, m, "v")
	m = typeKeys(m, "n", "Won deals")
	m = pressAndRun(t, m, "enter")
	require.Len(t, m.undoStack, 1)
	require.Len(t, m.viewsPanel.Views(), 1)
	saved := m.viewsPanel.Views()[0]
	require.Equal(t, saved.ID, m.prefs.LastView[PageOpportunities])
	m = typeKeys(m, "esc")

	m = pressAndRun(t, m, "x")
	m = typeKeys(m, "s", "s")
	require.Equal(t, db.SeedCount, opps.Len())
	require.False(t, opps.Sort().Active())

	m = run(t, m, loadViewCmd(store, PageOpportunities, saved.ID))
	require.Equal(t, 12, opps.Len())
	require.Equal(t, table.SortConfig{Key: "name", Direction: table.Ascending}, opps.Sort())
	require.Equal(t, "won", filterValue(opps, "stage").String())
	require.Contains(t, m.info, "Won deals")

	m = pressAndRun(t, m, "u")
	list, err := store.ListViews(context.Background(), PageOpportunities)
	require.NoError(t, err)
	require.Empty(t, list, "undo removes the new view")

	m = pressAndRun(t, m, "ctrl+r")
	list, err = store.ListViews(context.Background(), PageOpportunities)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, saved.ID, list[0].ID)
	require.Contains(t, m.info, "Redid")
}

func TestModel_RejectedViewLeavesTableAlone(t *testing.T) {
	m, _ := newTestModel(t)
	before := m.opportunities.Table().Snapshot()

	bad := views.View{
		ID:       "broken",
		Name:     "Broken",
		PageType: PageOpportunities,
		Columns:  []table.Column{{ID: "name", Label: "Name", Width: 240}},
	}
	m, cmd := update(m, model.ViewLoadedMsg{View: bad})
	require.Nil(t, cmd)
	require.Contains(t, m.error, "Broken")
	require.Equal(t, before, m.opportunities.Table().Snapshot())
}

func TestModel_ClearingSortRestoresIDOrder(t *testing.T) {
	m, _ := newTestModel(t)
	opps := m.opportunities.Table()
	defaultOrder := []string{"opp:1", "opp:2", "opp:3"}
	require.Equal(t, defaultOrder, opps.DisplayedIDs()[:3])

	opps.RequestSort("amount")
	opps.RequestSort("amount")
	require.Equal(t, table.Descending, opps.Sort().Direction)
	m = run(t, m, m.opportunities.Refresh())
	require.NotEqual(t, defaultOrder, opps.DisplayedIDs()[:3])

	opps.RequestSort("amount")
	require.False(t, opps.Sort().Active())
	require.Equal(t, defaultOrder, opps.DisplayedIDs()[:3])
}

func TestModel_StaleErrorsAreDropped(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = update(m, model.ErrorMsg{Err: table.NewError(table.CodeStaleResponse, "late page")})
	require.Empty(t, m.error)

	m, _ = update(m, model.ErrorMsg{Err: fmt.Errorf("fetch: %w", table.NewError(table.CodeStaleResponse, "late page"))})
	require.Empty(t, m.error, "wrapped stale errors are dropped too")

	m, _ = update(m, model.ErrorMsg{Err: errors.New("database is locked")})
	require.Equal(t, "database is locked", m.error)
}
