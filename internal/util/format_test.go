package util_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pipeline/internal/util"
)

func ptr(v float64) *float64 { return &v }

func TestFormatCurrency(t *testing.T) {
	require.Equal(t, "—", util.FormatCurrency(nil))
	require.Equal(t, "$0", util.FormatCurrency(ptr(0)))
	require.Equal(t, "$12,346", util.FormatCurrency(ptr(12345.6)))
	require.Equal(t, "-$1,000", util.FormatCurrency(ptr(-1000)))
}

func TestFormatCount(t *testing.T) {
	require.Equal(t, "20 of 47", util.FormatCount(20, 47))
	require.Equal(t, "1,000 of 12,500", util.FormatCount(1000, 12500))
}

func TestFormatDateRelative(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)
	tests := map[string]string{
		"":           "—",
		"2024-06-10": "Today",
		"2024-06-09": "Yesterday",
		"2024-06-11": "Tomorrow",
		"2024-06-07": "3d ago",
		"2024-06-14": "in 4d",
		"2024-01-15": "Jan 15",
		"2023-01-15": "Jan 15 '23",
		"not a date": "not a date",
	}
	for in, want := range tests {
		require.Equal(t, want, util.FormatDateRelative(in, now), in)
	}
}

func TestTruncateString(t *testing.T) {
	require.Equal(t, "Acme", util.TruncateString("Acme", 10))
	require.Equal(t, "Wayne E...", util.TruncateString("Wayne Enterprises", 10))
	require.Equal(t, "Wa", util.TruncateString("Wayne", 2))
}

func TestFormatDate(t *testing.T) {
	require.Equal(t, "Jun 01, 2024", util.FormatDate("2024-06-01"))
	require.Equal(t, "—", util.FormatDate(" "))
}
