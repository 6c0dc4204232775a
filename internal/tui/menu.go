package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type menuItem struct {
	label string
	key   string
	view  View
}

type menuModel struct {
	cursor   int
	items    []menuItem
	styles   Styles
	keys     KeyMap
	hasToken bool
	selected *View
}

func newMenuModel(styles Styles, keys KeyMap, hasToken bool) menuModel {
	return menuModel{
		items: []menuItem{
			{label: "Search Games", key: "1", view: ViewSearchInput},
			{label: "Cache Stats", key: "2", view: ViewCacheStats},
			{label: "Settings", key: "3", view: ViewSettings},
		},
		styles:   styles,
		keys:     keys,
		hasToken: hasToken,
	}
}

func (m menuModel) Update(msg tea.Msg) (menuModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	var view View
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.Enter):
		view = m.items[m.cursor].view
	case key.Matches(keyMsg, m.keys.Search):
		view = ViewSearchInput
	case key.Matches(keyMsg, m.keys.Stats):
		view = ViewCacheStats
	case key.Matches(keyMsg, m.keys.Settings):
		view = ViewSettings
	default:
		return m, nil
	}
	m.selected = &view
	return m, nil
}

func (m menuModel) View(width, height int) string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("BGG TUI"))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("BoardGameGeek search, details and language-matched versions"))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		style := m.styles.MenuItem
		if i == m.cursor {
			cursor = "> "
			style = m.styles.MenuItemFocus
		}
		b.WriteString(fmt.Sprintf("%s[%s] %s\n", cursor, item.key, style.Render(item.label)))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  [q] %s\n", m.styles.MenuItem.Render("Quit")))

	if !m.hasToken {
		b.WriteString("\n")
		b.WriteString(m.styles.Subtitle.Render("No API token set. Requests may be throttled; add one in Settings."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("j/k: Navigate  Enter: Select  ?: Help  q: Quit"))

	return centerContent(b.String(), width, height)
}
