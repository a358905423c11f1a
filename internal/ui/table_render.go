package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const tableSeparator = " "

func tableSeparatorWidth() int {
	return lipgloss.Width(tableSeparator)
}

func formatHeaderLabel(label string) string {
	return strings.ToUpper(label)
}

func renderActiveHeaderLabel(label string) string {
	return lipgloss.NewStyle().Underline(true).Render(label)
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		parts = append(parts, style.Width(widths[i]).MaxWidth(widths[i]).MaxHeight(1).Render(cell))
	}
	return strings.Join(parts, style.Render(tableSeparator))
}

func renderTableDivider(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	return BreadcrumbStyle.Render(strings.Join(parts, strings.Repeat("─", tableSeparatorWidth())))
}
