package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the application.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Enter      key.Binding
	Back       key.Binding
	Escape     key.Binding
	Quit       key.Binding
	Help       key.Binding
	Search     key.Binding
	Stats      key.Binding
	Settings   key.Binding
	Versions   key.Binding
	Open       key.Binding
	Refresh    key.Binding
	ClearCache key.Binding
	Filter     key.Binding
	TypeFilter key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         bind("k/up", "up", "up", "k"),
		Down:       bind("j/down", "down", "down", "j"),
		Enter:      bind("enter", "select", "enter"),
		Back:       bind("b", "back", "backspace", "b"),
		Escape:     bind("esc", "menu", "esc"),
		Quit:       bind("q", "quit", "q", "ctrl+c"),
		Help:       bind("?", "help", "?"),
		Search:     bind("1/s", "search", "1", "s"),
		Stats:      bind("2", "cache stats", "2"),
		Settings:   bind("3", "settings", "3"),
		Versions:   bind("v", "versions", "v"),
		Open:       bind("o", "open in browser", "o"),
		Refresh:    bind("r", "refresh", "r"),
		ClearCache: bind("c", "clear cache", "c"),
		Filter:     bind("/", "filter", "/"),
		TypeFilter: bind("t", "game type", "t"),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Back, k.Quit}
}

// FullHelp implements help.KeyMap. Groups render in pairs as two columns.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Back},
		{k.Search, k.Stats, k.Settings, k.Escape},
		{k.Filter, k.TypeFilter, k.Versions, k.Open},
		{k.Refresh, k.ClearCache, k.Help, k.Quit},
	}
}
