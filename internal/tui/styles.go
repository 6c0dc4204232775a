package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/secondturn-games/second-turn-games-sub000/internal/langmatch"
)

// Palette. Each color has a light and a dark terminal variant.
var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#8B5CF6"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	ColorAccent    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	ColorError     = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	ColorMuted     = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	ColorBorder    = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"}
	colorOnPrimary = lipgloss.Color("#FFFFFF")
)

// Styles holds the lipgloss styles shared by every view.
type Styles struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	MenuItem      lipgloss.Style
	MenuItemFocus lipgloss.Style
	ListItemFocus lipgloss.Style
	Help          lipgloss.Style
	Error         lipgloss.Style
	Loading       lipgloss.Style
	Border        lipgloss.Style
	Badge         lipgloss.Style
	Rating        lipgloss.Style
	Rank          lipgloss.Style
	Players       lipgloss.Style
	Time          lipgloss.Style
	Label         lipgloss.Style

	MatchExact   lipgloss.Style
	MatchPartial lipgloss.Style
	MatchNone    lipgloss.Style
}

func fg(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// DefaultStyles builds the application styles from the palette.
func DefaultStyles() Styles {
	indent := lipgloss.NewStyle().PaddingLeft(2)

	return Styles{
		Title:         fg(ColorPrimary).Bold(true).MarginBottom(1),
		Subtitle:      fg(ColorMuted).Italic(true),
		MenuItem:      indent,
		MenuItemFocus: indent.Foreground(ColorPrimary).Bold(true),
		ListItemFocus: fg(ColorSecondary).Bold(true),
		Help:          fg(ColorMuted).MarginTop(1),
		Error:         fg(ColorError).Bold(true),
		Loading:       fg(ColorAccent).Italic(true),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1),
		Badge:   fg(colorOnPrimary).Background(ColorPrimary).Padding(0, 1),
		Rating:  fg(ColorAccent),
		Rank:    fg(ColorSecondary),
		Players: fg(ColorPrimary),
		Time:    fg(ColorMuted),
		Label:   fg(ColorMuted).Width(12),

		MatchExact:   fg(ColorSecondary).Bold(true),
		MatchPartial: fg(ColorAccent),
		MatchNone:    fg(ColorMuted),
	}
}

func (s Styles) matchStyle(kind langmatch.MatchKind) lipgloss.Style {
	switch kind {
	case langmatch.MatchExact:
		return s.MatchExact
	case langmatch.MatchPartial:
		return s.MatchPartial
	}
	return s.MatchNone
}
