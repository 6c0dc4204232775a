package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
	"github.com/secondturn-games/second-turn-games-sub000/internal/cache"
	"github.com/secondturn-games/second-turn-games-sub000/internal/config"
	"github.com/secondturn-games/second-turn-games-sub000/internal/langmatch"
)

// fakeBackend is an in-memory Backend. Unset fields return empty results.
type fakeBackend struct {
	results     []bgg.SearchResult
	searchErr   error
	lastQuery   string
	lastFilters bgg.Filters
	details     map[string]*bgg.GameDetails
	versions    []langmatch.LanguageMatchedVersion
	stats       cache.Stats
	clears      int
}

func (f *fakeBackend) Search(_ context.Context, query string, filters bgg.Filters) ([]bgg.SearchResult, error) {
	f.lastQuery = query
	f.lastFilters = filters
	return f.results, f.searchErr
}

func (f *fakeBackend) GetGameDetails(_ context.Context, id string) (*bgg.GameDetails, error) {
	return f.details[id], nil
}

func (f *fakeBackend) GetLanguageMatchedVersions(string) []langmatch.LanguageMatchedVersion {
	return f.versions
}

func (f *fakeBackend) GetCacheStats() cache.Stats {
	return f.stats
}

func (f *fakeBackend) ClearCache(context.Context) {
	f.clears++
	f.stats = cache.Stats{}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Interface.Transition = "none"
	cfg.Interface.Selection = "none"
	cfg.Interface.BorderStyle = "none"
	return cfg
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model
}

func TestModel_MenuNavigation(t *testing.T) {
	m := New(testConfig(), &fakeBackend{})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	if m.Init() != nil {
		t.Error("Init should not tick without a selection animation")
	}

	m = update(t, m, runes("1"))
	if m.currentView != ViewSearchInput {
		t.Fatalf("view = %s, want SearchInput", m.currentView)
	}

	// '?' is text while the search input is focused.
	m = update(t, m, runes("?"))
	if m.showHelp {
		t.Error("help opened while typing a query")
	}
	if m.search.input.Value() != "?" {
		t.Errorf("input = %q, want ?", m.search.input.Value())
	}

	m = update(t, m, keyEsc)
	if m.currentView != ViewMenu {
		t.Fatalf("view = %s, want Menu", m.currentView)
	}

	m = update(t, m, runes("3"))
	if m.currentView != ViewSettings {
		t.Fatalf("view = %s, want Settings", m.currentView)
	}
	m = update(t, m, runes("b"))
	if m.currentView != ViewMenu {
		t.Fatalf("view = %s, want Menu", m.currentView)
	}

	m = update(t, m, runes("2"))
	if m.currentView != ViewCacheStats {
		t.Fatalf("view = %s, want CacheStats", m.currentView)
	}
}

func TestModel_HelpOverlay(t *testing.T) {
	m := New(testConfig(), &fakeBackend{})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m = update(t, m, runes("?"))
	if !m.showHelp {
		t.Fatal("? should open help on the menu")
	}
	if !strings.Contains(m.View(), "Keybindings") {
		t.Error("help overlay not rendered")
	}

	m = update(t, m, runes("x"))
	if m.showHelp || m.currentView != ViewMenu {
		t.Errorf("any key should close help: showHelp=%v view=%s", m.showHelp, m.currentView)
	}
}

func TestModel_SearchToDetailToVersions(t *testing.T) {
	fb := &fakeBackend{
		results: []bgg.SearchResult{{ID: "13", Name: "Catan", YearPublished: 1995}},
		details: map[string]*bgg.GameDetails{"13": {ID: "13", Name: "Catan"}},
		versions: []langmatch.LanguageMatchedVersion{{
			GameVersion:   bgg.GameVersion{ID: "v1", Name: "German edition", PrimaryLanguage: "German"},
			LanguageMatch: langmatch.MatchExact,
			Confidence:    0.9,
		}},
	}
	m := New(testConfig(), fb)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = update(t, m, runes("1"))

	m.search.input.SetValue("catan")
	m = update(t, m, keyEnter)
	if m.currentView != ViewSearchResults {
		t.Fatalf("view = %s, want SearchResults", m.currentView)
	}
	m = update(t, m, doSearch(fb, "catan", m.search.gameType)())

	m = update(t, m, keyEnter)
	if m.currentView != ViewDetail || m.detail.gameID != "13" {
		t.Fatalf("view = %s id=%q, want Detail for 13", m.currentView, m.detail.gameID)
	}
	m = update(t, m, loadGame(fb, "13")())

	m = update(t, m, runes("v"))
	if m.currentView != ViewVersions {
		t.Fatalf("view = %s, want Versions", m.currentView)
	}
	m = update(t, m, loadVersions(fb, "13")())
	if !strings.Contains(m.View(), "German edition") {
		t.Error("versions view should list the version")
	}

	m = update(t, m, runes("b"))
	if m.currentView != ViewDetail {
		t.Fatalf("view = %s, want Detail", m.currentView)
	}
	m = update(t, m, runes("b"))
	if m.currentView != ViewSearchResults {
		t.Fatalf("view = %s, want SearchResults", m.currentView)
	}
}

func TestModel_TransitionTicks(t *testing.T) {
	cfg := testConfig()
	cfg.Interface.Transition = "fade"
	m := New(cfg, &fakeBackend{})

	next, cmd := m.Update(runes("3"))
	m = next.(Model)
	if !m.transition.active || !m.ticking {
		t.Fatal("switching views should start the transition")
	}
	if cmd == nil {
		t.Fatal("expected a tick command")
	}

	for range transitionFrames {
		m = update(t, m, animTickMsg{})
	}
	if m.transition.active || m.ticking {
		t.Errorf("transition should finish: active=%v ticking=%v", m.transition.active, m.ticking)
	}
}
