package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pipeline/internal/model"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, width int) string {
	if mode == model.ModeInsert {
		return renderInsertHelp(width)
	}

	switch screen {
	case model.ScreenOpportunities:
		return renderOpportunitiesHelp(width)
	case model.ScreenProposals:
		return renderProposalsHelp(width)
	default:
		return renderDefaultHelp(width)
	}
}

func renderOpportunitiesHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("tab", "next col"),
		helpKey("s", "sort"),
		helpKey("f", "filters"),
		helpKey("v", "views"),
		helpKey("space", "select"),
		helpKey("p", "proposals"),
		helpKey("?", "help"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func renderProposalsHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("tab", "next col"),
		helpKey("s", "sort"),
		helpKey("f", "filters"),
		helpKey("v", "views"),
		helpKey("space", "select"),
		helpKey("o", "opportunities"),
		helpKey("?", "help"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func renderInsertHelp(width int) string {
	keys := []string{
		helpKey("h/l", "move"),
		helpKey("enter", "open/apply"),
		helpKey("space", "toggle"),
		helpKey("x", "clear all"),
		helpKey("esc", "close"),
	}
	return renderHelpLine(keys, width)
}

func renderDefaultHelp(width int) string {
	keys := []string{
		helpKey("?", "help"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Navigation"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"gg", "Jump to top"},
			{"G", "Jump to bottom (loads the next page)"},
			{"ctrl+d", "Half page down"},
			{"ctrl+u", "Half page up"},
			{"o / p", "Opportunities / proposals"},
			{"r", "Refresh"},
			{"u / ctrl+r", "Undo / redo view changes"},
			{"q", "Quit"},
			{"?", "Toggle help"},
		}),
		titleSection("Columns"),
		helpSection([]helpItem{
			{"tab / shift+tab", "Cycle active column"},
			{"/ then 1-9", "Jump to column"},
			{"s", "Cycle sort: asc, desc, none"},
			{"c / C", "Hide active column / show all"},
			{"< / >", "Move column left / right"},
			{"- / +", "Narrow / widen column"},
		}),
		titleSection("Selection"),
		helpSection([]helpItem{
			{"space", "Toggle row"},
			{"A", "Toggle all loaded rows"},
		}),
		titleSection("Filters"),
		helpSection([]helpItem{
			{"f", "Focus filter bar"},
			{"h / l", "Previous / next filter"},
			{"enter", "Open filter, pick option"},
			{"space", "Toggle option (multi-select)"},
			{"x", "Clear all filters"},
			{"esc", "Close"},
		}),
		titleSection("Saved Views"),
		helpSection([]helpItem{
			{"v", "Open views for this page"},
			{"enter", "Load selected view"},
			{"n", "Save current layout as a view"},
			{"d", "Delete selected view"},
			{"esc", "Close"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
