package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/secondturn-games/second-turn-games-sub000/internal/config"
	"github.com/secondturn-games/second-turn-games-sub000/internal/langmatch"
)

type versionsModel struct {
	config    *config.Config
	styles    Styles
	keys      KeyMap
	gameID    string
	gameName  string
	loaded    bool
	versions  []langmatch.LanguageMatchedVersion
	filter    filterState[langmatch.LanguageMatchedVersion]
	wantsBack bool
}

// versionsResultMsg carries the language-matched versions of a game.
type versionsResultMsg struct {
	gameID   string
	versions []langmatch.LanguageMatchedVersion
}

func newVersionsModel(gameID, gameName string, cfg *config.Config, styles Styles, keys KeyMap) versionsModel {
	return versionsModel{
		config:   cfg,
		styles:   styles,
		keys:     keys,
		gameID:   gameID,
		gameName: gameName,
		filter: filterState[langmatch.LanguageMatchedVersion]{
			getName: versionFilterText,
			getID:   func(v langmatch.LanguageMatchedVersion) string { return v.ID },
		},
	}
}

// versionFilterText matches the version name, its languages and the
// suggestion.
func versionFilterText(v langmatch.LanguageMatchedVersion) string {
	return strings.Join(append([]string{v.Name, v.SuggestedAlternateName}, v.Languages...), " ")
}

// loadVersions reads from the details cache only, so it never blocks on
// the network.
func loadVersions(svc Backend, gameID string) tea.Cmd {
	return func() tea.Msg {
		return versionsResultMsg{gameID: gameID, versions: svc.GetLanguageMatchedVersions(gameID)}
	}
}

func (m versionsModel) Update(msg tea.Msg) (versionsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case versionsResultMsg:
		if msg.gameID == m.gameID {
			m.loaded = true
			m.filter.setItems(msg.versions)
		}
		return m, nil

	case tea.KeyMsg:
		if m.filter.active {
			_, _, cmd := m.filter.updateFilter(msg, m.keys)
			return m, cmd
		}
		switch {
		case key.Matches(msg, m.keys.Up):
			m.filter.moveCursorUp()
		case key.Matches(msg, m.keys.Down):
			m.filter.moveCursorDown()
		case key.Matches(msg, m.keys.Filter):
			return m, m.filter.startFilter()
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Escape):
			m.wantsBack = true
		}
	}
	return m, nil
}

func (m versionsModel) selectedVersion() (langmatch.LanguageMatchedVersion, bool) {
	items := m.filter.displayItems()
	if m.filter.cursor < 0 || m.filter.cursor >= len(items) {
		return langmatch.LanguageMatchedVersion{}, false
	}
	return items[m.filter.cursor], true
}

func (m versionsModel) View(width, height int, selType string, animFrame int) string {
	var b strings.Builder

	if !m.loaded {
		writeLoadingView(&b, m.styles, "Versions", "Matching languages...")
		return renderView(b.String(), m.styles, width, height, m.config.Interface.BorderStyle)
	}

	b.WriteString(m.styles.Title.Render("Versions"))
	b.WriteString(" ")
	b.WriteString(m.styles.Subtitle.Render(m.gameName))
	if m.filter.active {
		b.WriteString("  Filter: ")
		b.WriteString(m.filter.input.View())
	}
	b.WriteString("\n")

	items := m.filter.displayItems()
	if len(items) == 0 {
		b.WriteString(m.styles.Subtitle.Render("No versions listed for this game."))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Help.Render("b: Back"))
		return renderView(b.String(), m.styles, width, height, m.config.Interface.BorderStyle)
	}

	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("%d/%d versions", min(m.filter.cursor+1, len(items)), len(items))))
	b.WriteString("\n\n")

	// The detail panel below the list takes about eight rows.
	listHeight := height - 8
	if HasBorder(m.config.Interface.BorderStyle) {
		listHeight -= BorderHeightOverhead
	}
	start, end := calcListRange(m.filter.cursor, len(items), listHeight, m.config.Interface.ListDensity)
	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(i, items[i], selType, animFrame))
		b.WriteString("\n")
		if m.config.Interface.ListDensity == "relaxed" {
			b.WriteString("\n")
		}
	}

	if v, ok := m.selectedVersion(); ok {
		b.WriteString("\n")
		for _, line := range m.detailLines(v) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.filter.active {
		b.WriteString(m.styles.Help.Render("↑↓: Navigate  Esc: Clear filter"))
	} else {
		b.WriteString(m.styles.Help.Render("j/k ↑↓: Navigate  /: Filter  b: Back"))
	}

	return renderView(b.String(), m.styles, width, height, m.config.Interface.BorderStyle)
}

func (m versionsModel) renderRow(i int, v langmatch.LanguageMatchedVersion, selType string, animFrame int) string {
	lang := v.PrimaryLanguage
	if lang == "" {
		lang = "?"
	}
	if v.IsMultilingual {
		lang = fmt.Sprintf("%s +%d", lang, v.LanguageCount-1)
	}

	name := truncateName(v.Name, m.config.Display.ListWidth-30)
	prefix, styled := renderListItem(i, m.filter.cursor, name, m.styles, selType, animFrame)
	match := m.styles.matchStyle(v.LanguageMatch).Render(fmt.Sprintf("%-7s %3.0f%%", v.LanguageMatch, v.Confidence*100))
	return fmt.Sprintf("%s%s [%s] %s", prefix, styled, lang, match)
}

func (m versionsModel) detailLines(v langmatch.LanguageMatchedVersion) []string {
	label := m.styles.Label.Render
	width := max(m.config.Display.DetailWidth-13, 20)

	suggested := v.SuggestedAlternateName
	if suggested == "" {
		suggested = "(none)"
	}

	lines := []string{
		fmt.Sprintf("%s %s", label("Suggested"), m.styles.matchStyle(v.LanguageMatch).Render(suggested)),
		fmt.Sprintf("%s %s", label("Reasoning"), truncateName(v.Reasoning, width)),
	}
	if len(v.Languages) > 0 {
		lines = append(lines, fmt.Sprintf("%s %s", label("Languages"), truncateName(strings.Join(v.Languages, ", "), width)))
	}
	if len(v.Publishers) > 0 {
		lines = append(lines, fmt.Sprintf("%s %s", label("Publisher"), truncateName(strings.Join(v.Publishers, ", "), width)))
	}
	if v.YearPublished > 0 {
		lines = append(lines, fmt.Sprintf("%s %d", label("Year"), v.YearPublished))
	}
	if v.ProductCode != "" {
		lines = append(lines, fmt.Sprintf("%s %s", label("Product"), v.ProductCode))
	}
	if v.Dimensions != nil && v.Dimensions.HasDimensions {
		lines = append(lines, fmt.Sprintf("%s %s", label("Size"), v.Dimensions.Metric))
	}
	if v.WeightInfo != nil && v.WeightInfo.Metric != "" {
		lines = append(lines, fmt.Sprintf("%s %s", label("Weight"), v.WeightInfo.Metric))
	}
	return lines
}
