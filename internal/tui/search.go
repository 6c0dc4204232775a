package tui

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
	"github.com/secondturn-games/second-turn-games-sub000/internal/config"
)

type searchState int

const minSearchLen = 2

const (
	searchStateInput searchState = iota
	searchStateLoading
	searchStateResults
	searchStateError
)

// gameTypeFilters is the cycle order of the type toggle.
var gameTypeFilters = []bgg.FilterGameType{bgg.FilterAll, bgg.FilterBaseGame, bgg.FilterExpansion}

type searchModel struct {
	state    searchState
	config   *config.Config
	styles   Styles
	keys     KeyMap
	input    textinput.Model
	query    string
	gameType bgg.FilterGameType
	errMsg   string
	selected *string // game ID chosen for the detail view

	filter filterState[bgg.SearchResult]

	wantsBack bool
	wantsMenu bool
}

// searchResultMsg is sent when search results are received.
type searchResultMsg struct {
	query    string
	gameType bgg.FilterGameType
	results  []bgg.SearchResult
	err      error
}

func newSearchModel(cfg *config.Config, styles Styles, keys KeyMap) searchModel {
	ti := textinput.New()
	ti.Placeholder = "Enter game name..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.Focus()

	return searchModel{
		state:    searchStateInput,
		config:   cfg,
		styles:   styles,
		keys:     keys,
		input:    ti,
		gameType: bgg.FilterGameType(cfg.Interface.DefaultFilter),
		filter: filterState[bgg.SearchResult]{
			getName: func(r bgg.SearchResult) string { return r.Name },
			getID:   func(r bgg.SearchResult) string { return r.ID },
		},
	}
}

func doSearch(svc Backend, query string, gameType bgg.FilterGameType) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		results, err := svc.Search(ctx, query, bgg.Filters{GameType: gameType})
		return searchResultMsg{query: query, gameType: gameType, results: results, err: err}
	}
}

// nextGameType returns the filter after current in the toggle cycle.
func nextGameType(current bgg.FilterGameType) bgg.FilterGameType {
	for i, t := range gameTypeFilters {
		if t == current {
			return gameTypeFilters[(i+1)%len(gameTypeFilters)]
		}
	}
	return bgg.FilterAll
}

func gameTypeLabel(t bgg.FilterGameType) string {
	switch t {
	case bgg.FilterBaseGame:
		return "base games"
	case bgg.FilterExpansion:
		return "expansions"
	default:
		return "all"
	}
}

func (m searchModel) Update(msg tea.Msg, svc Backend) (searchModel, tea.Cmd) {
	var cmd tea.Cmd

	switch m.state {
	case searchStateInput:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, m.keys.Enter):
				query := strings.TrimSpace(m.input.Value())
				if utf8.RuneCountInString(query) >= minSearchLen {
					m.query = query
					m.state = searchStateLoading
					return m, doSearch(svc, query, m.gameType)
				}
			case msg.Type == tea.KeyTab:
				m.gameType = nextGameType(m.gameType)
				return m, nil
			case key.Matches(msg, m.keys.Escape):
				m.wantsMenu = true
				return m, nil
			}
		}
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case searchStateLoading:
		if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Escape) {
			m.wantsMenu = true
			return m, nil
		}
		if msg, ok := msg.(searchResultMsg); ok {
			if msg.query != m.query || msg.gameType != m.gameType {
				return m, nil
			}
			if msg.err != nil {
				m.state = searchStateError
				m.errMsg = msg.err.Error()
				return m, nil
			}
			m.state = searchStateResults
			m.filter.setItems(msg.results)
		}
		return m, nil

	case searchStateResults:
		if m.filter.active {
			result, _, cmd := m.filter.updateFilter(msg, m.keys)
			if result == filterSelected {
				m.selected = m.filter.selectedID()
			}
			return m, cmd
		}

		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, m.keys.Up):
				m.filter.moveCursorUp()
			case key.Matches(msg, m.keys.Down):
				m.filter.moveCursorDown()
			case key.Matches(msg, m.keys.Enter):
				m.selected = m.filter.selectedID()
			case key.Matches(msg, m.keys.Filter):
				return m, m.filter.startFilter()
			case key.Matches(msg, m.keys.TypeFilter):
				m.gameType = nextGameType(m.gameType)
				m.state = searchStateLoading
				return m, doSearch(svc, m.query, m.gameType)
			case key.Matches(msg, m.keys.Search):
				m.state = searchStateInput
				m.input.SetValue("")
				m.input.Focus()
				m.filter.setItems(nil)
				return m, textinput.Blink
			case key.Matches(msg, m.keys.Back):
				m.wantsBack = true
			case key.Matches(msg, m.keys.Escape):
				m.wantsMenu = true
			}
		}
		return m, nil

	case searchStateError:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, m.keys.Refresh):
				m.state = searchStateLoading
				m.errMsg = ""
				return m, doSearch(svc, m.query, m.gameType)
			case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Search):
				m.state = searchStateInput
				m.input.Focus()
				m.errMsg = ""
				return m, textinput.Blink
			case key.Matches(msg, m.keys.Back):
				m.wantsBack = true
			case key.Matches(msg, m.keys.Escape):
				m.wantsMenu = true
			}
		}
		return m, nil
	}

	return m, nil
}

func (m searchModel) View(width, height int, selType string, animFrame int) string {
	var b strings.Builder

	switch m.state {
	case searchStateInput:
		b.WriteString(m.styles.Title.Render("Search Games"))
		b.WriteString("\n\n")
		b.WriteString("Enter game name:\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("Type: %s", m.styles.Badge.Render(gameTypeLabel(m.gameType))))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Help.Render(fmt.Sprintf("Enter: Search (%d+ chars)  Tab: Game type  Esc: Menu", minSearchLen)))

	case searchStateLoading:
		writeLoadingView(&b, m.styles, "Search Games", fmt.Sprintf("Searching %q (%s)...", m.query, gameTypeLabel(m.gameType)))

	case searchStateResults:
		b.WriteString(m.styles.Title.Render("Search Results"))
		b.WriteString(" ")
		b.WriteString(m.styles.Badge.Render(gameTypeLabel(m.gameType)))
		if m.filter.active {
			b.WriteString("  Filter: ")
			b.WriteString(m.filter.input.View())
		}
		b.WriteString("\n")

		displayItems := m.filter.displayItems()

		b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("%d/%d games for %q", min(m.filter.cursor+1, len(displayItems)), len(displayItems), m.query)))
		b.WriteString("\n\n")

		if len(displayItems) == 0 {
			b.WriteString(m.styles.Subtitle.Render("No results found."))
			b.WriteString("\n")
		} else {
			listHeight := height
			if HasBorder(m.config.Interface.BorderStyle) {
				listHeight -= BorderHeightOverhead
			}
			start, end := calcListRange(m.filter.cursor, len(displayItems), listHeight, m.config.Interface.ListDensity)

			for i := start; i < end; i++ {
				b.WriteString(m.renderResult(i, displayItems[i], selType, animFrame))
				b.WriteString("\n")
				if m.config.Interface.ListDensity == "relaxed" {
					b.WriteString("\n")
				}
			}
		}

		b.WriteString("\n")
		if m.filter.active {
			b.WriteString(m.styles.Help.Render(helpFilterActive))
		} else {
			b.WriteString(m.styles.Help.Render("j/k ↑↓: Navigate  Enter: Detail  /: Filter  t: Game type  s: New Search  ?: Help  b: Back  Esc: Menu"))
		}

	case searchStateError:
		writeErrorView(&b, m.styles, "Search Games", m.errMsg, "r: Retry  Enter: Edit search  b: Back  Esc: Menu")
	}

	return renderView(b.String(), m.styles, width, height, m.config.Interface.BorderStyle)
}

func (m searchModel) renderResult(i int, r bgg.SearchResult, selType string, animFrame int) string {
	year := "N/A"
	if r.YearPublished > 0 {
		year = fmt.Sprintf("%d", r.YearPublished)
	}

	var tags []string
	if r.IsExpansion {
		tags = append(tags, "[Expansion]")
	}
	if r.Rank > 0 {
		tags = append(tags, m.styles.Rank.Render(fmt.Sprintf("#%d", r.Rank)))
	}
	if r.BayesAverage > 0 {
		tags = append(tags, m.styles.Rating.Render(fmt.Sprintf("%.1f", r.BayesAverage)))
	}

	name := truncateName(r.Name, m.config.Display.ListWidth-20)
	prefix, styled := renderListItem(i, m.filter.cursor, name, m.styles, selType, animFrame)
	line := fmt.Sprintf("%s%s (%s)", prefix, styled, year)
	if len(tags) > 0 {
		line += " " + strings.Join(tags, " ")
	}
	return line
}
