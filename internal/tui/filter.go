package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// filterState narrows a list as the user types. The cursor indexes
// displayItems.
type filterState[T any] struct {
	items    []T
	filtered []T // nil outside filter mode
	active   bool
	input    textinput.Model
	cursor   int
	getName  func(T) string
	getID    func(T) string
}

type filterResult int

const (
	filterNone filterResult = iota
	filterSelected
	filterExited
)

func (f *filterState[T]) setItems(items []T) {
	f.items = items
	f.active = false
	f.filtered = nil
	f.cursor = 0
}

func (f *filterState[T]) startFilter() tea.Cmd {
	f.active = true
	f.input = newFilterInput()
	f.input.Focus()
	f.filtered = slices.Clone(f.items)
	if f.filtered == nil {
		f.filtered = []T{}
	}
	f.cursor = 0
	return textinput.Blink
}

func (f *filterState[T]) clearFilter() {
	f.active = false
	f.filtered = nil
	f.input.SetValue("")
	f.cursor = 0
}

func (f *filterState[T]) displayItems() []T {
	if f.filtered != nil {
		return f.filtered
	}
	return f.items
}

// selectedID returns the ID under the cursor, or nil for an empty list.
func (f *filterState[T]) selectedID() *string {
	items := f.displayItems()
	if f.cursor < 0 || f.cursor >= len(items) {
		return nil
	}
	id := f.getID(items[f.cursor])
	return &id
}

func (f *filterState[T]) moveCursorUp() {
	f.cursor = max(f.cursor-1, 0)
}

func (f *filterState[T]) moveCursorDown() {
	f.cursor = max(min(f.cursor+1, len(f.displayItems())-1), 0)
}

// apply recomputes filtered from the input, matching names
// case-insensitively.
func (f *filterState[T]) apply() {
	query := strings.ToLower(f.input.Value())
	f.filtered = []T{}
	for _, item := range f.items {
		if strings.Contains(strings.ToLower(f.getName(item)), query) {
			f.filtered = append(f.filtered, item)
		}
	}
	f.cursor = max(min(f.cursor, len(f.filtered)-1), 0)
}

// updateFilter handles a message while filtering. The bool reports a
// cursor-only move, which callers may use to skip expensive work.
func (f *filterState[T]) updateFilter(msg tea.Msg, keys KeyMap) (filterResult, bool, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Escape):
			f.clearFilter()
			return filterExited, false, nil
		case key.Matches(msg, keys.Enter):
			return filterSelected, false, nil
		case msg.Type == tea.KeyUp:
			f.moveCursorUp()
			return filterNone, true, nil
		case msg.Type == tea.KeyDown:
			f.moveCursorDown()
			return filterNone, true, nil
		}
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	f.apply()
	return filterNone, false, cmd
}
