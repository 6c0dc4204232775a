package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
	"github.com/secondturn-games/second-turn-games-sub000/internal/cache"
	"github.com/secondturn-games/second-turn-games-sub000/internal/config"
	"github.com/secondturn-games/second-turn-games-sub000/internal/langmatch"
)

// requestTimeout bounds a single search or details load. It leaves room for
// the client's own pacing between upstream calls.
const requestTimeout = 45 * time.Second

// Backend is the set of service operations the TUI drives.
type Backend interface {
	Search(ctx context.Context, query string, filters bgg.Filters) ([]bgg.SearchResult, error)
	GetGameDetails(ctx context.Context, id string) (*bgg.GameDetails, error)
	GetLanguageMatchedVersions(id string) []langmatch.LanguageMatchedVersion
	GetCacheStats() cache.Stats
	ClearCache(ctx context.Context)
}

// Model is the main application model.
type Model struct {
	config *config.Config
	svc    Backend
	keys   KeyMap
	styles Styles

	currentView View

	width  int
	height int

	menu     menuModel
	search   searchModel
	detail   detailModel
	versions versionsModel
	stats    statsModel
	settings settingsModel

	// previousView is where the detail view returns to.
	previousView View

	showHelp bool

	transition transitionState
	animFrame  int
	ticking    bool
}

// New creates a new application model.
func New(cfg *config.Config, svc Backend) Model {
	styles := DefaultStyles()
	keys := DefaultKeyMap()

	return Model{
		config:      cfg,
		svc:         svc,
		keys:        keys,
		styles:      styles,
		currentView: ViewMenu,
		menu:        newMenuModel(styles, keys, cfg.HasToken()),
		search:      newSearchModel(cfg, styles, keys),
		stats:       newStatsModel(cfg, styles, keys),
		settings:    newSettingsModel(cfg, styles, keys),
		ticking:     selectionAnimated(cfg),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.ticking {
		return animTickCmd()
	}
	return nil
}

func selectionAnimated(cfg *config.Config) bool {
	s := cfg.Interface.Selection
	return s != "" && s != "none"
}

// typing reports whether key presses belong to a text input.
func (m Model) typing() bool {
	switch m.currentView {
	case ViewSearchInput:
		return true
	case ViewSearchResults:
		return m.search.filter.active
	case ViewVersions:
		return m.versions.filter.active
	case ViewSettings:
		return m.settings.editing
	}
	return false
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail, _ = m.detail.Update(msg)
		return m, nil

	case animTickMsg:
		m.animFrame++
		m.transition.advance()
		if m.transition.active || selectionAnimated(m.config) {
			return m, animTickCmd()
		}
		m.ticking = false
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if !m.typing() && key.Matches(msg, m.keys.Help) {
			m.showHelp = true
			return m, nil
		}
	}

	switch m.currentView {
	case ViewMenu:
		return m.updateMenu(msg)
	case ViewSearchInput, ViewSearchResults:
		return m.updateSearch(msg)
	case ViewDetail:
		return m.updateDetail(msg)
	case ViewVersions:
		return m.updateVersions(msg)
	case ViewCacheStats:
		return m.updateStats(msg)
	case ViewSettings:
		return m.updateSettings(msg)
	}

	return m, nil
}

// switchTo changes the current view, starting the configured transition
// and the animation ticker when it is idle.
func (m *Model) switchTo(view View) tea.Cmd {
	if view == m.currentView {
		return nil
	}
	m.currentView = view
	m.transition = startTransition(m.config.Interface.Transition)
	if m.transition.active && !m.ticking {
		m.ticking = true
		return animTickCmd()
	}
	return nil
}

func (m Model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)

	if m.menu.selected == nil {
		return m, cmd
	}
	view := *m.menu.selected
	m.menu.selected = nil

	switch view {
	case ViewSearchInput:
		m.search = newSearchModel(m.config, m.styles, m.keys)
		switchCmd := m.switchTo(ViewSearchInput)
		return m, tea.Batch(switchCmd, textinput.Blink)
	case ViewCacheStats:
		m.stats = newStatsModel(m.config, m.styles, m.keys)
		switchCmd := m.switchTo(ViewCacheStats)
		return m, tea.Batch(switchCmd, loadStats(m.svc))
	case ViewSettings:
		m.settings = newSettingsModel(m.config, m.styles, m.keys)
		cmd = m.switchTo(ViewSettings)
		return m, cmd
	}
	return m, cmd
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg, m.svc)

	// Moving between input and results is the same screen; only the view
	// tag changes.
	if m.search.state == searchStateInput {
		m.currentView = ViewSearchInput
	} else {
		m.currentView = ViewSearchResults
	}

	if m.search.wantsBack || m.search.wantsMenu {
		m.search.wantsBack = false
		m.search.wantsMenu = false
		cmd = m.switchTo(ViewMenu)
		return m, cmd
	}

	if m.search.selected != nil {
		gameID := *m.search.selected
		m.search.selected = nil
		m.previousView = m.currentView
		m.detail = newDetailModel(gameID, m.config, m.styles, m.keys, m.height)
		switchCmd := m.switchTo(ViewDetail)
		return m, tea.Batch(switchCmd, loadGame(m.svc, gameID))
	}

	return m, cmd
}

func (m Model) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)

	if m.detail.wantsBack {
		m.detail.wantsBack = false
		cmd = m.switchTo(m.previousView)
		return m, cmd
	}

	if m.detail.wantsVersion {
		m.detail.wantsVersion = false
		m.versions = newVersionsModel(m.detail.gameID, m.detail.game.Name, m.config, m.styles, m.keys)
		switchCmd := m.switchTo(ViewVersions)
		return m, tea.Batch(switchCmd, loadVersions(m.svc, m.detail.gameID))
	}

	return m, cmd
}

func (m Model) updateVersions(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.versions, cmd = m.versions.Update(msg)

	if m.versions.wantsBack {
		m.versions.wantsBack = false
		cmd = m.switchTo(ViewDetail)
		return m, cmd
	}
	return m, cmd
}

func (m Model) updateStats(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.stats, cmd = m.stats.Update(msg, m.svc)

	if m.stats.wantsBack {
		m.stats.wantsBack = false
		cmd = m.switchTo(ViewMenu)
		return m, cmd
	}
	return m, cmd
}

func (m Model) updateSettings(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.settings, cmd = m.settings.Update(msg)

	var cmds []tea.Cmd
	cmds = append(cmds, cmd)
	if selectionAnimated(m.config) && !m.ticking {
		m.ticking = true
		cmds = append(cmds, animTickCmd())
	}

	if m.settings.wantsBack || m.settings.wantsMenu {
		m.settings.wantsBack = false
		m.settings.wantsMenu = false
		m.menu.hasToken = m.config.HasToken()
		cmds = append(cmds, m.switchTo(ViewMenu))
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return renderTransition(m.renderCurrent(), m.transition)
}

func (m Model) renderCurrent() string {
	selType := m.config.Interface.Selection

	switch m.currentView {
	case ViewMenu:
		return m.menu.View(m.width, m.height)
	case ViewSearchInput, ViewSearchResults:
		return m.search.View(m.width, m.height, selType, m.animFrame)
	case ViewDetail:
		return m.detail.View(m.width, m.height)
	case ViewVersions:
		return m.versions.View(m.width, m.height, selType, m.animFrame)
	case ViewCacheStats:
		return m.stats.View(m.width, m.height)
	case ViewSettings:
		return m.settings.View(m.width, m.height)
	}
	return ""
}

// renderHelpOverlay renders a centered keybindings overlay.
func (m Model) renderHelpOverlay() string {
	groups := m.keys.FullHelp()

	// Two columns: groups[0]+groups[1], groups[2]+groups[3].
	var rows []string
	for i := 0; i < len(groups); i += 2 {
		left := groups[i]
		var right []key.Binding
		if i+1 < len(groups) {
			right = groups[i+1]
		}

		for j := range max(len(left), len(right)) {
			var lKey, lDesc, rKey, rDesc string
			if j < len(left) {
				lKey, lDesc = left[j].Help().Key, left[j].Help().Desc
			}
			if j < len(right) {
				rKey, rDesc = right[j].Help().Key, right[j].Help().Desc
			}
			rows = append(rows, fmt.Sprintf("  %-10s %-16s %-10s %s", lKey, lDesc, rKey, rDesc))
		}
		rows = append(rows, "")
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Render("Keybindings")
	footer := lipgloss.NewStyle().Foreground(ColorMuted).Render("Press any key to close")

	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(44, lipgloss.Center, title))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString(lipgloss.PlaceHorizontal(44, lipgloss.Center, footer))

	content := m.styles.Border.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
