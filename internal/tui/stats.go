package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/secondturn-games/second-turn-games-sub000/internal/cache"
	"github.com/secondturn-games/second-turn-games-sub000/internal/config"
)

type statsModel struct {
	config    *config.Config
	styles    Styles
	keys      KeyMap
	stats     cache.Stats
	loaded    bool
	cleared   bool
	wantsBack bool
}

// statsMsg carries a cache stats snapshot. cleared is set when the
// snapshot follows a ClearCache.
type statsMsg struct {
	stats   cache.Stats
	cleared bool
}

func newStatsModel(cfg *config.Config, styles Styles, keys KeyMap) statsModel {
	return statsModel{config: cfg, styles: styles, keys: keys}
}

func loadStats(svc Backend) tea.Cmd {
	return func() tea.Msg {
		return statsMsg{stats: svc.GetCacheStats()}
	}
}

func clearCache(svc Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		svc.ClearCache(ctx)
		return statsMsg{stats: svc.GetCacheStats(), cleared: true}
	}
}

func (m statsModel) Update(msg tea.Msg, svc Backend) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		m.stats = msg.stats
		m.loaded = true
		m.cleared = msg.cleared
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Refresh):
			m.cleared = false
			return m, loadStats(svc)
		case key.Matches(msg, m.keys.ClearCache):
			return m, clearCache(svc)
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Escape):
			m.wantsBack = true
		}
	}
	return m, nil
}

func (m statsModel) View(width, height int) string {
	var b strings.Builder

	if !m.loaded {
		writeLoadingView(&b, m.styles, "Cache Stats", "Loading...")
		return renderView(b.String(), m.styles, width, height, m.config.Interface.BorderStyle)
	}

	label := m.styles.Label.Render
	s := m.stats

	b.WriteString(m.styles.Title.Render("Cache Stats"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %d\n", label("Entries"), s.Size))
	b.WriteString(fmt.Sprintf("%s %d\n", label("  Search"), s.SearchEntries))
	b.WriteString(fmt.Sprintf("%s %d\n", label("  Details"), s.DetailsEntries))
	b.WriteString(fmt.Sprintf("%s %d\n", label("  Metadata"), s.MetadataEntries))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %d\n", label("Lookups"), s.TotalQueries))
	b.WriteString(fmt.Sprintf("%s %d\n", label("Hits"), s.CacheHits))
	b.WriteString(fmt.Sprintf("%s %s\n", label("Hit rate"), m.styles.Rating.Render(fmt.Sprintf("%.1f%%", s.HitRate*100))))

	if m.cleared {
		b.WriteString("\n")
		b.WriteString(m.styles.Rank.Render("Cache cleared."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("r: Refresh  c: Clear cache  b: Back"))

	return renderView(b.String(), m.styles, width, height, m.config.Interface.BorderStyle)
}
