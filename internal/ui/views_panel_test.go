package ui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"pipeline/internal/model"
	"pipeline/internal/views"
)

func TestViewsPanel_OnlyNewestListingApplies(t *testing.T) {
	store, err := views.NewStore(views.NewMemoryPersister())
	require.NoError(t, err)
	s, _ := loadedScreen(t, 5)

	panel := NewViewsPanel(store)
	first := panel.Open(PageOpportunities)().(model.ViewsListedMsg)
	require.Empty(t, first.Views)

	_, _, err = store.SaveView(context.Background(), "My Pipeline", PageOpportunities, s.Table().Snapshot())
	require.NoError(t, err)
	second := panel.Refresh()().(model.ViewsListedMsg)

	require.True(t, panel.Listed(second))
	require.False(t, panel.Listed(first), "an older listing never replaces a newer one")
	require.Len(t, panel.Views(), 1)

	foreign := second
	foreign.PageType = PageProposals
	require.False(t, panel.Listed(foreign))
}

func TestViewsPanel_SaveLoadDelete(t *testing.T) {
	store, err := views.NewStore(views.NewMemoryPersister())
	require.NoError(t, err)
	s, _ := loadedScreen(t, 5)

	panel := NewViewsPanel(store)
	require.True(t, panel.Listed(panel.Open(PageOpportunities)().(model.ViewsListedMsg)))
	require.Contains(t, panel.View(100), "No saved views yet")

	panel.Update(keyPress("n"), s.Table())
	panel.Update(keyPress("Won deals"), s.Table())
	saved, ok := panel.Update(keyPress("enter"), s.Table())().(model.ViewSavedMsg)
	require.True(t, ok)
	require.Equal(t, "Won deals", saved.View.Name)
	require.Nil(t, saved.Previous)

	require.True(t, panel.Listed(panel.Refresh()().(model.ViewsListedMsg)))
	require.Contains(t, panel.View(100), "Won deals")

	loaded, ok := panel.Update(keyPress("enter"), s.Table())().(model.ViewLoadedMsg)
	require.True(t, ok)
	require.Equal(t, saved.View.ID, loaded.View.ID)

	deleted, ok := panel.Update(keyPress("d"), s.Table())().(model.ViewDeletedMsg)
	require.True(t, ok)
	require.Equal(t, saved.View.ID, deleted.Deleted.ID)

	panel.Update(keyPress("esc"), s.Table())
	require.False(t, panel.IsOpen())
}
