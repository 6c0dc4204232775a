package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestTruncateName(t *testing.T) {
	cases := map[string]struct {
		in   string
		max  int
		want string
	}{
		"fits":       {"Azul", 10, "Azul"},
		"exact":      {"Agricola", 8, "Agricola"},
		"cut":        {"Twilight Imperium", 10, "Twiligh..."},
		"empty":      {"", 10, ""},
		"no limit":   {"Terraforming Mars", 0, "Terraforming Mars"},
		"wide fits":  {"カタン", 10, "カタン"},
		"wide cut":   {"カタンの開拓者たち", 10, "カタン..."},
		"hangul cut": {"카탄 확장판 세트", 9, "카탄 ..."},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := truncateName(tc.in, tc.max)
			if got != tc.want {
				t.Errorf("truncateName(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
			}
			if tc.max > 0 && runewidth.StringWidth(got) > tc.max {
				t.Errorf("%q is wider than %d cells", got, tc.max)
			}
		})
	}
}

func TestCalcListRange(t *testing.T) {
	cases := []struct {
		cursor, total, height int
		density               string
		start, end            int
	}{
		{0, 50, 30, "normal", 0, 18},
		{20, 50, 30, "normal", 3, 21},
		{2, 5, 30, "normal", 0, 5},
		{0, 50, 20, "compact", 0, 10},
		{0, 50, 30, "relaxed", 0, 9},
		{4, 50, 5, "normal", 4, 5},
	}

	for _, tc := range cases {
		start, end := calcListRange(tc.cursor, tc.total, tc.height, tc.density)
		if start != tc.start || end != tc.end {
			t.Errorf("calcListRange(%d, %d, %d, %q) = [%d, %d), want [%d, %d)",
				tc.cursor, tc.total, tc.height, tc.density, start, end, tc.start, tc.end)
		}
		if tc.cursor < start || tc.cursor >= end {
			t.Errorf("cursor %d outside window [%d, %d)", tc.cursor, start, end)
		}
	}
}

func TestRenderListItem(t *testing.T) {
	styles := DefaultStyles()

	prefix, name := renderListItem(1, 3, "Brass: Birmingham", styles, "none", 0)
	if prefix != "  " || name != "Brass: Birmingham" {
		t.Errorf("unselected row = (%q, %q)", prefix, name)
	}

	prefix, name = renderListItem(3, 3, "Brass: Birmingham", styles, "none", 0)
	if prefix != "> " || !strings.Contains(name, "Brass: Birmingham") {
		t.Errorf("selected row = (%q, %q)", prefix, name)
	}

	_, name = renderListItem(0, 0, "Root", styles, "wave", 3)
	if stripAnsi(name) != "Root" {
		t.Errorf("animated row text = %q, want Root", stripAnsi(name))
	}
}

func TestStatusViews(t *testing.T) {
	styles := DefaultStyles()

	var loading strings.Builder
	writeLoadingView(&loading, styles, "Search Results", "Searching BGG...")

	var failed strings.Builder
	writeErrorView(&failed, styles, "Search Results", "rate limited", "r: Retry")

	for out, wants := range map[string][]string{
		loading.String(): {"Search Results", "Searching BGG..."},
		failed.String():  {"Search Results", "Error: rate limited", "r: Retry"},
	} {
		for _, want := range wants {
			if !strings.Contains(out, want) {
				t.Errorf("%q missing %q", out, want)
			}
		}
	}
}

func TestViewString(t *testing.T) {
	if ViewVersions.String() != "Versions" || ViewCacheStats.String() != "CacheStats" {
		t.Errorf("unexpected names: %s, %s", ViewVersions, ViewCacheStats)
	}
	if View(99).String() != "Unknown" {
		t.Errorf("View(99) = %s, want Unknown", View(99))
	}
}

func TestHasBorder(t *testing.T) {
	for _, name := range BorderStyleNames {
		if got, want := HasBorder(name), name != "none"; got != want {
			t.Errorf("HasBorder(%q) = %v, want %v", name, got, want)
		}
	}
	if HasBorder("") {
		t.Error("empty border style should draw no border")
	}
}
