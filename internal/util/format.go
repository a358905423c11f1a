package util

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatDate formats a date string (YYYY-MM-DD) for display.
func FormatDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return "—"
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Jan 02, 2006")
}

// FormatDateHuman formats a date relative to today.
func FormatDateHuman(date string) string {
	return FormatDateRelative(date, time.Now())
}

// FormatDateRelative formats a date relative to now:
// "Today", "Yesterday", "Tomorrow", "3d ago", "in 3d", "Jan 15", "Jan 15 '24".
func FormatDateRelative(date string, now time.Time) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return "—"
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dateDay := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int(today.Sub(dateDay).Hours() / 24)

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days == -1:
		return "Tomorrow"
	case days > 1 && days < 7:
		return fmt.Sprintf("%dd ago", days)
	case days < -1 && days > -7:
		return fmt.Sprintf("in %dd", -days)
	case t.Year() == now.Year():
		return t.Format("Jan 02")
	default:
		return t.Format("Jan 02 '06")
	}
}

// FormatCurrency formats an amount as whole dollars, e.g. "$12,345", or "—"
// if nil.
func FormatCurrency(amount *float64) string {
	if amount == nil {
		return "—"
	}
	v := int64(math.Round(*amount))
	if v < 0 {
		return "-$" + humanize.Comma(-v)
	}
	return "$" + humanize.Comma(v)
}

// FormatCount formats the loader position, e.g. "20 of 1,047".
func FormatCount(shown, total int) string {
	return humanize.Comma(int64(shown)) + " of " + humanize.Comma(int64(total))
}

// TitleCase upper-cases the first letter of s.
func TitleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:max(maxLen, 0)])
	}
	return string(runes[:maxLen-3]) + "..."
}
