package tui

import (
	"strings"
	"testing"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
	"github.com/secondturn-games/second-turn-games-sub000/internal/cache"
	"github.com/secondturn-games/second-turn-games-sub000/internal/langmatch"
)

func testVersions() []langmatch.LanguageMatchedVersion {
	return []langmatch.LanguageMatchedVersion{
		{
			GameVersion: bgg.GameVersion{
				ID: "101", Name: "Japanese edition", PrimaryLanguage: "Japanese",
				Languages: []string{"Japanese"}, ProductCode: "HJ-001",
				Dimensions: &bgg.Dimensions{Metric: "29.6 × 29.6 × 7.1 cm", HasDimensions: true},
			},
			SuggestedAlternateName: "カタン",
			LanguageMatch:          langmatch.MatchExact,
			Confidence:             0.9,
			Reasoning:              "Japanese script matches the Japanese version",
		},
		{
			GameVersion: bgg.GameVersion{
				ID: "102", Name: "Multilingual edition", PrimaryLanguage: "English",
				Languages: []string{"English", "French", "German"}, IsMultilingual: true, LanguageCount: 3,
			},
			SuggestedAlternateName: "Catan",
			LanguageMatch:          langmatch.MatchNone,
			Confidence:             0.1,
			Reasoning:              "no alternate name fits; using the primary name",
		},
	}
}

func TestVersionsModel_LoadAndRender(t *testing.T) {
	fb := &fakeBackend{versions: testVersions()}
	m := newVersionsModel("13", "Catan", testConfig(), DefaultStyles(), DefaultKeyMap())

	if !strings.Contains(m.View(100, 40, "none", 0), "Matching languages") {
		t.Error("expected the loading view before results")
	}

	m, _ = m.Update(versionsResultMsg{gameID: "99"})
	if m.loaded {
		t.Fatal("results for another game must be ignored")
	}

	m, _ = m.Update(loadVersions(fb, "13")())
	if !m.loaded {
		t.Fatal("versions not loaded")
	}

	view := m.View(120, 40, "none", 0)
	for _, want := range []string{"Japanese edition", "exact", "90%", "カタン", "HJ-001", "29.6 × 29.6 × 7.1 cm"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = m.Update(keyDown)
	v, ok := m.selectedVersion()
	if !ok || v.ID != "102" {
		t.Fatalf("selected = %v, want 102", v.ID)
	}
	if row := m.renderRow(1, v, "none", 0); !strings.Contains(row, "English +2") {
		t.Errorf("row = %q, want multilingual marker", row)
	}
}

func TestVersionsModel_FilterByLanguage(t *testing.T) {
	m := newVersionsModel("13", "Catan", testConfig(), DefaultStyles(), DefaultKeyMap())
	m, _ = m.Update(versionsResultMsg{gameID: "13", versions: testVersions()})

	m, _ = m.Update(runes("/"))
	if !m.filter.active {
		t.Fatal("/ should start filtering")
	}
	m, _ = m.Update(runes("french"))
	items := m.filter.displayItems()
	if len(items) != 1 || items[0].ID != "102" {
		t.Errorf("filtered = %d items, want only the multilingual edition", len(items))
	}
}

func TestVersionsModel_Empty(t *testing.T) {
	m := newVersionsModel("13", "Catan", testConfig(), DefaultStyles(), DefaultKeyMap())
	m, _ = m.Update(versionsResultMsg{gameID: "13", versions: []langmatch.LanguageMatchedVersion{}})

	if !strings.Contains(m.View(100, 40, "none", 0), "No versions listed") {
		t.Error("expected the empty message")
	}
	m, _ = m.Update(keyEsc)
	if !m.wantsBack {
		t.Error("Esc should go back to the game")
	}
}

func TestStatsModel(t *testing.T) {
	fb := &fakeBackend{stats: cache.Stats{Size: 3, SearchEntries: 1, DetailsEntries: 2, TotalQueries: 4, CacheHits: 1, HitRate: 0.25}}
	m := newStatsModel(testConfig(), DefaultStyles(), DefaultKeyMap())

	m, _ = m.Update(loadStats(fb)(), fb)
	view := m.View(100, 40)
	if !strings.Contains(view, "25.0%") {
		t.Errorf("view missing hit rate: %q", view)
	}

	m, cmd := m.Update(runes("c"), fb)
	if cmd == nil {
		t.Fatal("c should clear the cache")
	}
	m, _ = m.Update(cmd(), fb)
	if fb.clears != 1 {
		t.Errorf("clears = %d, want 1", fb.clears)
	}
	if !m.cleared || m.stats.Size != 0 {
		t.Errorf("cleared=%v size=%d, want cleared empty stats", m.cleared, m.stats.Size)
	}
	if !strings.Contains(m.View(100, 40), "Cache cleared.") {
		t.Error("view should confirm the clear")
	}

	m, _ = m.Update(runes("b"), fb)
	if !m.wantsBack {
		t.Error("b should go back")
	}
}
