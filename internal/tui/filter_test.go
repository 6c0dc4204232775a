package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type filterItem struct {
	name string
	id   string
}

func newTestFilter() filterState[filterItem] {
	f := filterState[filterItem]{
		getName: func(i filterItem) string { return i.name },
		getID:   func(i filterItem) string { return i.id },
	}
	f.setItems([]filterItem{
		{name: "Alpha", id: "1"},
		{name: "Beta", id: "2"},
		{name: "Gamma", id: "3"},
	})
	return f
}

func typeRunes(f *filterState[filterItem], keys KeyMap, s string) {
	for _, r := range s {
		f.updateFilter(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}, keys)
	}
}

func TestUpdateFilter_CursorMovedBehavior(t *testing.T) {
	keys := DefaultKeyMap()
	f := newTestFilter()
	f.startFilter()

	result, cursorMoved, _ := f.updateFilter(tea.KeyMsg{Type: tea.KeyDown}, keys)
	if result != filterNone {
		t.Errorf("expected filterNone, got %d", result)
	}
	if !cursorMoved {
		t.Error("expected cursorMoved=true for down key")
	}
	if f.cursor != 1 {
		t.Errorf("expected cursor=1, got %d", f.cursor)
	}

	result, cursorMoved, _ = f.updateFilter(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}, keys)
	if result != filterNone {
		t.Errorf("expected filterNone, got %d", result)
	}
	if cursorMoved {
		t.Error("expected cursorMoved=false for character input")
	}
}

func TestUpdateFilter_NarrowsCaseInsensitively(t *testing.T) {
	keys := DefaultKeyMap()
	f := newTestFilter()
	f.startFilter()

	typeRunes(&f, keys, "MM")
	items := f.displayItems()
	if len(items) != 1 || items[0].name != "Gamma" {
		t.Fatalf("displayItems() = %v, want [Gamma]", items)
	}

	result, _, _ := f.updateFilter(tea.KeyMsg{Type: tea.KeyEnter}, keys)
	if result != filterSelected {
		t.Errorf("Enter result = %d, want filterSelected", result)
	}
	if id := f.selectedID(); id == nil || *id != "3" {
		t.Errorf("selectedID() = %v, want 3", id)
	}
}

func TestUpdateFilter_NoMatchesAndEscape(t *testing.T) {
	keys := DefaultKeyMap()
	f := newTestFilter()
	f.startFilter()

	typeRunes(&f, keys, "zzz")
	if got := f.displayItems(); len(got) != 0 {
		t.Fatalf("displayItems() = %v, want empty", got)
	}
	if f.selectedID() != nil {
		t.Error("selectedID() should be nil with no matches")
	}

	result, _, _ := f.updateFilter(tea.KeyMsg{Type: tea.KeyEsc}, keys)
	if result != filterExited {
		t.Errorf("Esc result = %d, want filterExited", result)
	}
	if f.active || len(f.displayItems()) != 3 {
		t.Errorf("after Esc: active=%v items=%d, want inactive with 3 items", f.active, len(f.displayItems()))
	}
}

func TestFilterCursorBounds(t *testing.T) {
	f := newTestFilter()

	f.moveCursorUp()
	if f.cursor != 0 {
		t.Errorf("cursor = %d, want 0", f.cursor)
	}
	for range 5 {
		f.moveCursorDown()
	}
	if f.cursor != 2 {
		t.Errorf("cursor = %d, want 2", f.cursor)
	}

	f.setItems(nil)
	if f.cursor != 0 || f.selectedID() != nil {
		t.Error("setItems should reset the cursor")
	}
}
