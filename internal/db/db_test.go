package db_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pipeline/internal/db"
	"pipeline/internal/model"
	"pipeline/internal/table"
	"pipeline/internal/views"
)

func openSeeded(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	ctx := context.Background()
	empty, err := db.IsEmpty(ctx, database)
	require.NoError(t, err)
	require.True(t, empty)

	require.NoError(t, db.SeedDemo(ctx, database, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))

	empty, err = db.IsEmpty(ctx, database)
	require.NoError(t, err)
	require.False(t, empty)
	return database
}

func TestListOpportunities_Filters(t *testing.T) {
	database := openSeeded(t)
	ctx := context.Background()

	all, err := db.ListOpportunities(ctx, database, db.OpportunityQuery{})
	require.NoError(t, err)
	require.Len(t, all, db.SeedCount)

	tests := []struct {
		name  string
		query db.OpportunityQuery
		want  int
	}{
		{"search by account", db.OpportunityQuery{Search: "acme"}, 6},
		{"stage", db.OpportunityQuery{Stage: "won"}, 12},
		{"all stages", db.OpportunityQuery{Stage: table.AllValue}, db.SeedCount},
		{"owners", db.OpportunityQuery{OwnerIDs: []int64{1, 2}}, 26},
		{"no match", db.OpportunityQuery{Search: "nothing like this"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := db.ListOpportunities(ctx, database, tt.query)
			require.NoError(t, err)
			require.Len(t, rows, tt.want)
		})
	}
}

func TestListOpportunities_IDOrder(t *testing.T) {
	database := openSeeded(t)
	rows, err := db.ListOpportunities(context.Background(), database, db.OpportunityQuery{Stage: "won"})
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	for i := 1; i < len(rows); i++ {
		require.Less(t, rows[i-1].ID, rows[i].ID, "rows come back in id order; sorting is the table's job")
	}
}

func TestListOpportunities_SearchIsLiteral(t *testing.T) {
	database := openSeeded(t)
	ctx := context.Background()

	_, err := db.InsertOpportunity(ctx, database, model.NewOpportunity{
		Name:    "100% Growth_Plan",
		Account: "Literal Co",
		Stage:   "lead",
		OwnerID: 1,
	})
	require.NoError(t, err)

	for _, search := range []string{"%", "_", "h_P", `0%`} {
		rows, err := db.ListOpportunities(ctx, database, db.OpportunityQuery{Search: search})
		require.NoError(t, err)
		require.Len(t, rows, 1, "search %q", search)
		require.Equal(t, "100% Growth_Plan", rows[0].Name)
	}

	rows, err := db.ListOpportunities(ctx, database, db.OpportunityQuery{Search: `\`})
	require.NoError(t, err)
	require.Empty(t, rows)

	proposals, err := db.ListProposals(ctx, database, db.ProposalQuery{Search: "_"})
	require.NoError(t, err)
	require.Empty(t, proposals, "no seeded proposal has an underscore")

	owners, err := db.ListOwners(ctx, database, "%")
	require.NoError(t, err)
	require.Empty(t, owners)
}

func TestOpportunityQueryFrom(t *testing.T) {
	q := db.OpportunityQueryFrom(table.FetchRequest{
		Filters: []table.Filter{
			{ID: "q", Type: table.FilterSearch, Value: table.Text(" acme ")},
			{ID: "stage", Type: table.FilterSingleSelect, Value: table.Text(table.AllValue)},
			{ID: "owner", Type: table.FilterMultiSelect, Value: table.List("owner:3", "7", "bogus")},
		},
		Sort: table.SortConfig{Key: "name", Direction: table.Ascending},
	})
	require.Equal(t, db.OpportunityQuery{Search: "acme", OwnerIDs: []int64{3, 7}}, q)

	q = db.OpportunityQueryFrom(table.FetchRequest{
		Filters: []table.Filter{{ID: "q", Type: table.FilterSearch, Value: table.Text("all")}},
	})
	require.Equal(t, "all", q.Search, "all is only a sentinel for selects")
}

func TestListProposals(t *testing.T) {
	database := openSeeded(t)
	ctx := context.Background()

	all, err := db.ListProposals(ctx, database, db.ProposalQuery{Status: table.AllValue})
	require.NoError(t, err)
	require.Len(t, all, 38)

	sent, err := db.ListProposals(ctx, database, db.ProposalQuery{Status: "sent"})
	require.NoError(t, err)
	require.Len(t, sent, 10)
	for _, p := range sent {
		require.NotEmpty(t, p.SentOn)
		require.NotEmpty(t, p.OwnerName)
	}
}

func TestOwnerOptions(t *testing.T) {
	database := openSeeded(t)
	ctx := context.Background()

	owners, err := db.ListOwners(ctx, database, "")
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", owners[0].Name)

	src := db.NewOwnerOptions(database)
	var wg sync.WaitGroup
	results := make([][]table.Option, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			opts, err := src.Options(ctx, "Lov")
			require.NoError(t, err)
			results[i] = opts
		}()
	}
	wg.Wait()
	for _, opts := range results {
		require.Equal(t, []table.Option{{Value: model.OwnerKey(1), Label: "Ada Lovelace"}}, opts)
	}
}

func TestViewPersister_WithStore(t *testing.T) {
	database := openSeeded(t)
	ctx := context.Background()

	store, err := views.NewStore(db.NewViewPersister(database))
	require.NoError(t, err)

	state := table.ViewState{
		Columns: []table.Column{
			{ID: "stage", Label: "Stage", Order: 0, Width: 120},
			{ID: "amount", Label: "Amount", Order: 1, Width: 100, Hidden: true},
			{ID: "name", Label: "Name", Order: 2, Width: 200},
		},
		Sort:    table.SortConfig{Key: "amount", Direction: table.Descending},
		Filters: []table.Filter{{ID: "owner", Type: table.FilterMultiSelect, Value: table.List("owner:1")}},
	}
	saved, _, err := store.SaveView(ctx, "My Pipeline", "opportunities", state)
	require.NoError(t, err)

	fresh, err := views.NewStore(db.NewViewPersister(database))
	require.NoError(t, err)
	loaded, err := fresh.LoadView(ctx, "opportunities", saved.ID)
	require.NoError(t, err)
	require.Equal(t, state.Columns, loaded.Columns)
	require.Equal(t, state.Sort, loaded.Sort)
	require.Equal(t, []string{"owner:1"}, loaded.Filters[0].Value.Values())
	require.True(t, saved.CreatedAt.Equal(loaded.CreatedAt))

	_, err = fresh.DeleteView(ctx, "opportunities", saved.ID)
	require.NoError(t, err)
	list, err := db.NewViewPersister(database).Get(ctx, "opportunities")
	require.NoError(t, err)
	require.Empty(t, list)

	_, err = fresh.LoadView(ctx, "opportunities", saved.ID)
	require.True(t, errors.Is(err, table.ErrNotFound))
}

func TestViewPersister_CorruptRow(t *testing.T) {
	database := openSeeded(t)
	ctx := context.Background()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := database.ExecContext(ctx,
		"INSERT INTO saved_views (page_type, id, name, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		"opportunities", "bad", "Bad", "{not json", now, now)
	require.NoError(t, err)

	_, err = db.NewViewPersister(database).Get(ctx, "opportunities")
	require.True(t, errors.Is(err, table.ErrValidation))
	require.Equal(t, table.CodeValidation, table.CodeOf(err))
	require.Contains(t, err.Error(), `"bad"`)
}
