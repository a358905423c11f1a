package table_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"pipeline/internal/table"
)

func pipelineFilters() []table.Filter {
	return []table.Filter{
		{ID: "q", Label: "Search", Type: table.FilterSearch},
		{ID: "stage", Label: "Stage", Type: table.FilterSingleSelect, Options: []table.Option{
			{Value: "all", Label: "All stages"},
			{Value: "qualified", Label: "Qualified"},
			{Value: "won", Label: "Closed won"},
		}},
		{ID: "owner", Label: "Owner", Type: table.FilterMultiSelect, Options: []table.Option{
			{Value: "owner:1", Label: "Ada"},
			{Value: "owner:2", Label: "Grace"},
		}},
	}
}

func newFilterState(t *testing.T) *table.FilterState {
	t.Helper()
	s, err := table.NewFilterState(pipelineFilters()...)
	require.NoError(t, err)
	return s
}

func TestFilterState_StartsInactive(t *testing.T) {
	s := newFilterState(t)
	require.False(t, s.HasActiveFilters())

	stage, ok := s.Filter("stage")
	require.True(t, ok)
	require.Equal(t, "all", stage.Value.String())
}

func TestFilterState_SetFilterValueTypeChecks(t *testing.T) {
	s := newFilterState(t)

	err := s.SetFilterValue("owner", table.Text("owner:1"))
	require.True(t, errors.Is(err, table.ErrValidation))

	err = s.SetFilterValue("stage", table.List("won"))
	require.True(t, errors.Is(err, table.ErrValidation))

	err = s.SetFilterValue("q", table.List("acme"))
	require.True(t, errors.Is(err, table.ErrValidation))

	err = s.SetFilterValue("missing", table.Text("x"))
	require.True(t, errors.Is(err, table.ErrNotFound))

	require.False(t, s.HasActiveFilters(), "rejected values must not apply")

	require.NoError(t, s.SetFilterValue("owner", table.List("owner:1", "owner:2")))
	require.NoError(t, s.SetFilterValue("q", table.Text("acme")))
	require.True(t, s.HasActiveFilters())
	require.Len(t, s.Active(), 2)
}

func TestFilterState_SentinelsAreInactive(t *testing.T) {
	s := newFilterState(t)
	require.NoError(t, s.SetFilterValue("stage", table.Text("all")))
	require.NoError(t, s.SetFilterValue("q", table.Text("   ")))
	require.NoError(t, s.SetFilterValue("owner", table.List()))
	require.False(t, s.HasActiveFilters())
}

func TestFilterState_AllIsLiteralSearchText(t *testing.T) {
	s := newFilterState(t)
	notified := 0
	s.Subscribe(func([]table.Filter) { notified++ })

	require.NoError(t, s.SetFilterValue("q", table.Text("all")))
	require.True(t, s.HasActiveFilters())
	require.Equal(t, 1, notified)
	require.Len(t, s.Active(), 1)
	require.Equal(t, "all", s.DisplayValue("q"))

	require.NoError(t, s.SetFilterValue("owner", table.List(table.AllValue)))
	require.Len(t, s.Active(), 1, "all stays a sentinel for selects")
}

func TestFilterState_ClearAllNotifiesOnce(t *testing.T) {
	s := newFilterState(t)
	require.NoError(t, s.SetFilterValue("q", table.Text("acme")))
	require.NoError(t, s.SetFilterValue("stage", table.Text("won")))
	require.NoError(t, s.SetFilterValue("owner", table.List("owner:2")))

	notified := 0
	s.Subscribe(func([]table.Filter) { notified++ })

	s.ClearAllFilters()
	require.False(t, s.HasActiveFilters())
	require.Equal(t, 1, notified)

	s.ClearAllFilters()
	require.Equal(t, 2, notified, "an explicit clear always notifies")
}

func TestFilterState_SetSameValueIsSilent(t *testing.T) {
	s := newFilterState(t)
	notified := 0
	s.Subscribe(func([]table.Filter) { notified++ })

	require.NoError(t, s.SetFilterValue("q", table.Text("acme")))
	require.NoError(t, s.SetFilterValue("q", table.Text("acme")))
	require.Equal(t, 1, notified)
}

func TestFilterState_DisplayValue(t *testing.T) {
	s := newFilterState(t)

	require.NoError(t, s.SetFilterValue("stage", table.Text("won")))
	require.Equal(t, "Closed won", s.DisplayValue("stage"))

	require.NoError(t, s.SetFilterValue("owner", table.List("owner:2", "2", "owner:9")))
	require.Equal(t, "Grace, Grace, owner:9", s.DisplayValue("owner"),
		"prefixed and bare ids resolve, unknown values fall back to the raw value")

	require.NoError(t, s.SetFilterValue("stage", table.Text("lost")))
	require.Equal(t, "lost", s.DisplayValue("stage"))

	require.Empty(t, s.DisplayValue("q"))
	require.Empty(t, s.DisplayValue("missing"))
}

func TestFilterState_ReplaceAllIsAtomic(t *testing.T) {
	s := newFilterState(t)
	require.NoError(t, s.SetFilterValue("q", table.Text("acme")))

	notified := 0
	s.Subscribe(func([]table.Filter) { notified++ })

	err := s.ReplaceAll([]table.Filter{
		{ID: "stage", Value: table.Text("won")},
		{ID: "owner", Value: table.Text("owner:1")},
	})
	require.True(t, errors.Is(err, table.ErrValidation))
	require.Zero(t, notified)
	q, _ := s.Filter("q")
	require.Equal(t, "acme", q.Value.String(), "rejected replacement keeps prior values")

	require.NoError(t, s.ReplaceAll([]table.Filter{{ID: "stage", Value: table.Text("won")}}))
	require.Equal(t, 1, notified)
	q, _ = s.Filter("q")
	require.Equal(t, "", q.Value.String(), "filters missing from the replacement are cleared")
	require.Equal(t, "Closed won", s.DisplayValue("stage"))
}

func TestFilterState_StaleOptionsDiscarded(t *testing.T) {
	s := newFilterState(t)

	first := s.IssueOptionsToken("owner")
	second := s.IssueOptionsToken("owner")

	require.NoError(t, s.SetOptions("owner", []table.Option{{Value: "owner:3", Label: "Linus"}}, second))

	err := s.SetOptions("owner", []table.Option{{Value: "owner:4", Label: "Ken"}}, first)
	require.True(t, errors.Is(err, table.ErrStaleResponse))

	f, _ := s.Filter("owner")
	require.Equal(t, []table.Option{{Value: "owner:3", Label: "Linus"}}, f.Options)
}

func TestNewFilterState_RejectsBadDefinitions(t *testing.T) {
	_, err := table.NewFilterState(table.Filter{ID: "a", Type: table.FilterSearch}, table.Filter{ID: "a", Type: table.FilterSearch})
	require.Error(t, err)

	_, err = table.NewFilterState(table.Filter{ID: "a", Type: "range"})
	require.Error(t, err)

	_, err = table.NewFilterState(table.Filter{ID: "a", Type: table.FilterMultiSelect, Value: table.Text("x")})
	require.Error(t, err)
}

func TestFilterValue_JSON(t *testing.T) {
	var f table.Filter
	require.NoError(t, json.Unmarshal([]byte(`{"id":"owner","type":"multi-select","value":["owner:1"]}`), &f))
	require.True(t, f.Value.IsList())
	require.Equal(t, []string{"owner:1"}, f.Value.Values())

	require.NoError(t, json.Unmarshal([]byte(`{"id":"q","type":"search","value":"acme"}`), &f))
	require.False(t, f.Value.IsList())
	require.Equal(t, "acme", f.Value.String())

	data, err := json.Marshal(table.List())
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(data))
}
