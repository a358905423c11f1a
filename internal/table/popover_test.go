package table_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pipeline/internal/table"
)

func TestPopoverRegistry_OneOpenAtATime(t *testing.T) {
	r := table.NewPopoverRegistry()

	require.Empty(t, r.Open("stage"))
	require.True(t, r.IsOpen("stage"))

	require.Equal(t, "stage", r.Open("owner"), "opening another closes the first")
	require.False(t, r.IsOpen("stage"))
	require.Equal(t, "owner", r.Active())

	require.False(t, r.Close("stage"))
	require.True(t, r.Close("owner"))
	require.Empty(t, r.Active())

	require.True(t, r.Toggle("stage"))
	require.False(t, r.Toggle("stage"))
	require.Empty(t, r.Active())

	r.Open("owner")
	r.CloseAll()
	require.False(t, r.IsOpen("owner"))
}

func TestTokens_OnlyNewestAccepted(t *testing.T) {
	tokens := table.NewTokens()

	a := tokens.Issue("views")
	b := tokens.Issue("views")
	other := tokens.Issue("options:owner")

	require.False(t, tokens.Accept("views", a))
	require.True(t, tokens.Accept("views", b))
	require.True(t, tokens.Accept("options:owner", other))
	require.False(t, tokens.Accept("options:owner", b))
	require.False(t, tokens.Accept("unknown", b))
}
