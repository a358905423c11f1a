package table_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pipeline/internal/table"
)

func loadPage(w *table.Window) bool {
	if !w.LoadMore() {
		return false
	}
	return w.Commit()
}

func TestWindow_LoadsInPages(t *testing.T) {
	w := table.NewWindow(20)
	w.SetTotal(47)

	var seen []int
	for range 3 {
		require.True(t, loadPage(w))
		seen = append(seen, w.Displayed())
	}
	require.Equal(t, []int{20, 40, 47}, seen)
	require.False(t, w.HasMore())
	require.Equal(t, table.WindowExhausted, w.State())

	require.False(t, loadPage(w), "a fourth load is a no-op")
	require.Equal(t, 47, w.Displayed())
}

func TestWindow_LoadMoreIsNotReentrant(t *testing.T) {
	w := table.NewWindow(20)
	w.Reset(100)

	require.True(t, w.LoadMore())
	require.False(t, w.LoadMore(), "second call while loading is ignored")
	require.True(t, w.IsLoading())

	require.True(t, w.Commit())
	require.False(t, w.Commit(), "nothing left to commit")
	require.Equal(t, 40, w.Displayed())
	require.Equal(t, table.WindowIdle, w.State())
}

func TestWindow_Reset(t *testing.T) {
	w := table.NewWindow(20)
	w.Reset(100)
	loadPage(w)
	w.LoadMore()

	w.Reset(100)
	require.Equal(t, 20, w.Displayed())
	require.False(t, w.IsLoading())

	w.Reset(7)
	require.Equal(t, 7, w.Displayed())
	require.False(t, w.HasMore())
	require.Equal(t, table.WindowExhausted, w.State())

	w.Reset(0)
	require.Zero(t, w.Displayed())
	require.Equal(t, table.WindowIdle, w.State())
}

func TestWindow_SetTotalGrowsWithoutReset(t *testing.T) {
	w := table.NewWindow(10)
	w.Reset(10)
	require.Equal(t, table.WindowExhausted, w.State())

	w.SetTotal(25)
	require.Equal(t, 10, w.Displayed(), "growing the collection keeps the window")
	require.True(t, w.HasMore())
	require.Equal(t, table.WindowIdle, w.State())

	w.SetTotal(4)
	require.Equal(t, 4, w.Displayed())
}

func TestWindow_DefaultPageSize(t *testing.T) {
	require.Equal(t, table.DefaultPageSize, table.NewWindow(0).PageSize())
}

func TestProximityTrigger_OneLoadPerCrossing(t *testing.T) {
	w := table.NewWindow(10)
	w.Reset(50)
	var trig table.ProximityTrigger

	require.True(t, trig.Observe(true, w))
	require.False(t, trig.Observe(true, w), "staying near does not fire again")
	w.Commit()
	require.Equal(t, 20, w.Displayed())

	require.False(t, trig.Observe(true, w))
	require.False(t, trig.Observe(false, w))
	require.True(t, trig.Observe(true, w), "a new crossing fires")
}
