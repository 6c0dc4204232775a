package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/secondturn-games/second-turn-games-sub000/internal/config"
)

func newTestSettings(t *testing.T) (settingsModel, *config.Config, *int) {
	t.Helper()
	cfg := config.DefaultConfig()
	m := newSettingsModel(cfg, DefaultStyles(), DefaultKeyMap())
	saves := 0
	m.save = func() error {
		saves++
		return nil
	}
	return m, cfg, &saves
}

func press(m settingsModel, msgs ...tea.KeyMsg) settingsModel {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSettingsItems(t *testing.T) {
	m, _, _ := newTestSettings(t)

	if m.itemCount() != 9 {
		t.Errorf("itemCount() = %d, want 9", m.itemCount())
	}
	for i, item := range m.items {
		if item.getValue == nil {
			t.Errorf("item %d (%q) has no getValue", i, item.label)
		}
		if item.kind == settingCycle && item.onEnter == nil {
			t.Errorf("cycle item %q has no onEnter", item.label)
		}
	}
}

func TestSettingsCycleSaves(t *testing.T) {
	m, cfg, saves := newTestSettings(t)
	before := cfg.Interface.Transition

	m = press(m, keyEnter)

	if cfg.Interface.Transition != cycleValue(before, TransitionNames) {
		t.Errorf("Transition = %q, want next after %q", cfg.Interface.Transition, before)
	}
	if *saves != 1 {
		t.Errorf("saves = %d, want 1", *saves)
	}
}

func TestSettingsDefaultFilterCycle(t *testing.T) {
	m, cfg, _ := newTestSettings(t)
	cfg.Interface.DefaultFilter = ""

	m = press(m, keyDown, keyDown, keyDown, keyDown, keyEnter)
	if cfg.Interface.DefaultFilter != "base-game" {
		t.Errorf("DefaultFilter = %q, want base-game", cfg.Interface.DefaultFilter)
	}
	if got := m.items[4].getValue(); got != "base games" {
		t.Errorf("display = %q, want base games", got)
	}
}

func TestSettingsWidthEdit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"valid", "120", 120},
		{"too small", "5", 80},
		{"too large", "999", 80},
		{"not a number", "abc", 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cfg, _ := newTestSettings(t)
			cfg.Display.ListWidth = 80

			// List Width is the sixth item.
			m = press(m, keyDown, keyDown, keyDown, keyDown, keyDown, keyEnter)
			if !m.editing || m.editingField != editFieldListWidth {
				t.Fatalf("editing=%v field=%d, want list width edit", m.editing, m.editingField)
			}
			m.listWidthInput.SetValue(tt.input)
			m = press(m, keyEnter)

			if m.editing {
				t.Error("Enter should leave edit mode")
			}
			if cfg.Display.ListWidth != tt.want {
				t.Errorf("ListWidth = %d, want %d", cfg.Display.ListWidth, tt.want)
			}
		})
	}
}

func TestSettingsTokenEdit(t *testing.T) {
	m, cfg, _ := newTestSettings(t)
	cfg.API.Token = ""

	m.cursor = 7
	m = press(m, keyEnter, runes("secret-token-1234"), keyEnter)
	if cfg.API.Token != "secret-token-1234" {
		t.Errorf("Token = %q", cfg.API.Token)
	}

	// Escape discards the edit.
	m = press(m, keyEnter, runes("other"), keyEsc)
	if cfg.API.Token != "secret-token-1234" {
		t.Errorf("Token after Esc = %q", cfg.API.Token)
	}
	if m.editing {
		t.Error("Esc should leave edit mode")
	}
}

func TestSettingsSaveError(t *testing.T) {
	m, _, _ := newTestSettings(t)
	m.save = func() error { return errors.New("read-only file system") }

	m = press(m, keyEnter)
	if m.saveErr != "read-only file system" {
		t.Errorf("saveErr = %q", m.saveErr)
	}
}

func TestSettingsBack(t *testing.T) {
	m, _, _ := newTestSettings(t)
	if m = press(m, runes("b")); !m.wantsBack {
		t.Error("b should request back")
	}
	m, _, _ = newTestSettings(t)
	if m = press(m, keyEsc); !m.wantsMenu {
		t.Error("Esc should request the menu")
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", ""},
		{"abcd", "****"},
		{"abcdefgh", "********"},
		{"abcd1234wxyz", "abcd****wxyz"},
	}
	for _, tt := range tests {
		if got := maskToken(tt.token); got != tt.want {
			t.Errorf("maskToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestCycleValue(t *testing.T) {
	names := []string{"a", "b", "c"}

	tests := []struct {
		current string
		want    string
	}{
		{"a", "b"},
		{"b", "c"},
		{"c", "a"},
		{"unknown", "a"},
	}

	for _, tt := range tests {
		if got := cycleValue(tt.current, names); got != tt.want {
			t.Errorf("cycleValue(%q, %v) = %q, want %q", tt.current, names, got, tt.want)
		}
	}
}
