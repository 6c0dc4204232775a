package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// View represents the current view state of the application.
type View int

const (
	ViewMenu View = iota
	ViewSearchInput
	ViewSearchResults
	ViewDetail
	ViewVersions
	ViewCacheStats
	ViewSettings
)

// String returns the string representation of a View.
func (v View) String() string {
	switch v {
	case ViewMenu:
		return "Menu"
	case ViewSearchInput:
		return "SearchInput"
	case ViewSearchResults:
		return "SearchResults"
	case ViewDetail:
		return "Detail"
	case ViewVersions:
		return "Versions"
	case ViewCacheStats:
		return "CacheStats"
	case ViewSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

// BorderStyleNames lists the border styles for cycling in settings.
var BorderStyleNames = []string{"none", "rounded", "thick", "double", "block"}

// ListDensityNames lists the list densities for cycling in settings.
var ListDensityNames = []string{"compact", "normal", "relaxed"}

// BorderHeightOverhead is the number of rows a border and its padding take.
const BorderHeightOverhead = 4

const helpFilterActive = "↑↓: Navigate  Enter: Detail  Esc: Clear filter"

// HasBorder reports whether the border style draws a border.
func HasBorder(style string) bool {
	switch style {
	case "rounded", "thick", "double", "block":
		return true
	}
	return false
}

func borderFor(style string) lipgloss.Border {
	switch style {
	case "thick":
		return lipgloss.ThickBorder()
	case "double":
		return lipgloss.DoubleBorder()
	case "block":
		return lipgloss.BlockBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}

// renderView lays content out in the terminal, inside a border when the
// style has one.
func renderView(content string, styles Styles, width, height int, borderStyle string) string {
	if !HasBorder(borderStyle) {
		return lipgloss.NewStyle().Width(width).Height(height).Padding(1, 2).Render(content)
	}

	box := styles.Border.
		Border(borderFor(borderStyle)).
		Width(max(width-4, 0)).
		Height(max(height-BorderHeightOverhead, 0)).
		Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// centerContent places a block in the upper third of the screen, centred
// horizontally as a whole and left-aligned inside.
func centerContent(content string, width, height int) string {
	lines := strings.Split(content, "\n")

	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, lipgloss.Width(line))
	}

	topPadding := max((height-len(lines))/3, 0)
	leftPadding := max((width-maxWidth)/2, 0)

	centered := make([]string, len(lines))
	for i, line := range lines {
		centered[i] = strings.Repeat(" ", leftPadding) + line
	}

	result := strings.Repeat("\n", topPadding) + strings.Join(centered, "\n")
	return lipgloss.NewStyle().Width(width).Height(height).Render(result)
}

// listLayout returns the rows reserved around a list and the rows each item
// takes for a density.
func listLayout(density string) (reserved, perItem int) {
	switch density {
	case "compact":
		return 10, 1
	case "relaxed":
		return 12, 2
	default:
		return 12, 1
	}
}

// calcListRange returns the [start, end) window of a list that keeps the
// cursor visible within height rows.
func calcListRange(cursor, totalItems, height int, density string) (int, int) {
	reserved, perItem := listLayout(density)
	visible := max((height-reserved)/perItem, 1)

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := min(start+visible, totalItems)
	return start, end
}

// truncateName shortens s to maxWidth display cells, adding "..." when cut.
func truncateName(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// renderListItem returns the cursor prefix and the styled name for row i.
func renderListItem(i, cursor int, name string, styles Styles, selType string, animFrame int) (string, string) {
	if i != cursor {
		return "  ", name
	}
	if selType != "" && selType != "none" {
		return "> ", renderSelectionAnim(name, selType, animFrame)
	}
	return "> ", styles.ListItemFocus.Render(name)
}

// writeLoadingView writes the common loading layout.
func writeLoadingView(b *strings.Builder, styles Styles, title, message string) {
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n\n")
	b.WriteString(styles.Loading.Render(message))
}

// writeErrorView writes the common error layout.
func writeErrorView(b *strings.Builder, styles Styles, title, errMsg, help string) {
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n\n")
	b.WriteString(styles.Error.Render(fmt.Sprintf("Error: %s", errMsg)))
	b.WriteString("\n\n")
	b.WriteString(styles.Help.Render(help))
}

func newFilterInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.CharLimit = 50
	ti.Width = 30
	ti.Prompt = ""
	return ti
}
