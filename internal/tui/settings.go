package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
	"github.com/secondturn-games/second-turn-games-sub000/internal/config"
)

// editField identifies which text input field is being edited.
type editField int

const (
	editFieldToken editField = iota
	editFieldListWidth
	editFieldDetailWidth
)

const (
	minDisplayWidth = 20
	maxDisplayWidth = 200
)

// settingItemKind describes the interaction type for a settings item.
type settingItemKind int

const (
	settingText  settingItemKind = iota // Enter opens text input
	settingCycle                        // Enter cycles to next value
	settingInfo                         // read-only display item
)

// defaultFilterNames are the stored values of the search type filter.
var defaultFilterNames = []string{"", "base-game", "expansion"}

// settingItem describes a single settings menu entry.
type settingItem struct {
	label     string
	section   string // section header (shown before this item if non-empty)
	kind      settingItemKind
	editField editField     // for settingText: which input to activate
	getValue  func() string // current display value
	onEnter   func()        // for settingCycle
}

type settingsModel struct {
	cursor           int
	styles           Styles
	keys             KeyMap
	config           *config.Config
	save             func() error
	saveErr          string
	editing          bool
	editingField     editField
	tokenInput       textinput.Model
	listWidthInput   textinput.Model
	detailWidthInput textinput.Model
	wantsBack        bool
	wantsMenu        bool
	items            []settingItem
}

func newSettingsModel(cfg *config.Config, styles Styles, keys KeyMap) settingsModel {
	ti := textinput.New()
	ti.Placeholder = "Enter API token"
	ti.CharLimit = 256
	ti.EchoMode = textinput.EchoPassword

	lwi := textinput.New()
	lwi.Placeholder = "Enter width (20-200)"
	lwi.CharLimit = 3

	dwi := textinput.New()
	dwi.Placeholder = "Enter width (20-200)"
	dwi.CharLimit = 3

	m := settingsModel{
		styles:           styles,
		keys:             keys,
		config:           cfg,
		save:             cfg.Save,
		tokenInput:       ti,
		listWidthInput:   lwi,
		detailWidthInput: dwi,
	}
	m.items = m.buildItems()
	return m
}

func (m *settingsModel) blurAllInputs() {
	m.tokenInput.Blur()
	m.listWidthInput.Blur()
	m.detailWidthInput.Blur()
}

func (m *settingsModel) buildItems() []settingItem {
	cfg := m.config
	cycle := func(label, section string, field *string, names []string) settingItem {
		return settingItem{
			label: label, section: section, kind: settingCycle,
			getValue: func() string { return *field },
			onEnter:  func() { *field = cycleValue(*field, names) },
		}
	}

	filter := cycle("Default Filter", "", &cfg.Interface.DefaultFilter, defaultFilterNames)
	filter.getValue = func() string { return gameTypeLabel(bgg.FilterGameType(cfg.Interface.DefaultFilter)) }

	return []settingItem{
		cycle("Transition", "Interface", &cfg.Interface.Transition, TransitionNames),
		cycle("Selection", "", &cfg.Interface.Selection, SelectionNames),
		cycle("List Density", "", &cfg.Interface.ListDensity, ListDensityNames),
		cycle("Border Style", "", &cfg.Interface.BorderStyle, BorderStyleNames),
		filter,
		{
			label: "List Width", section: "Display", kind: settingText,
			editField: editFieldListWidth,
			getValue:  func() string { return strconv.Itoa(cfg.Display.ListWidth) },
		},
		{
			label: "Detail Width", kind: settingText,
			editField: editFieldDetailWidth,
			getValue:  func() string { return strconv.Itoa(cfg.Display.DetailWidth) },
		},
		{
			label: "Token", section: "API", kind: settingText,
			editField: editFieldToken,
			getValue: func() string {
				if cfg.API.Token != "" {
					return maskToken(cfg.API.Token)
				}
				return "(not set)"
			},
		},
		{
			section: "Config File", kind: settingInfo,
			getValue: func() string {
				if p, err := config.ConfigPath(); err == nil {
					return p
				}
				return "(unknown)"
			},
		},
	}
}

func (m settingsModel) itemCount() int {
	return len(m.items)
}

func (m *settingsModel) textInputForField(field editField) *textinput.Model {
	switch field {
	case editFieldToken:
		return &m.tokenInput
	case editFieldListWidth:
		return &m.listWidthInput
	default:
		return &m.detailWidthInput
	}
}

// saveEditField applies the active text input. Widths outside 20-200 are
// ignored.
func (m *settingsModel) saveEditField() {
	switch m.editingField {
	case editFieldToken:
		if val := strings.TrimSpace(m.tokenInput.Value()); val != "" {
			m.config.API.Token = val
		}
	case editFieldListWidth:
		if v, ok := parseWidth(m.listWidthInput.Value()); ok {
			m.config.Display.ListWidth = v
		}
	case editFieldDetailWidth:
		if v, ok := parseWidth(m.detailWidthInput.Value()); ok {
			m.config.Display.DetailWidth = v
		}
	}
	m.persist()
}

func (m *settingsModel) persist() {
	m.saveErr = ""
	if err := m.save(); err != nil {
		m.saveErr = err.Error()
	}
}

func parseWidth(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < minDisplayWidth || v > maxDisplayWidth {
		return 0, false
	}
	return v, true
}

func (m *settingsModel) startEditing(item settingItem) tea.Cmd {
	m.editing = true
	m.editingField = item.editField
	input := m.textInputForField(item.editField)
	if item.editField == editFieldToken {
		input.SetValue("")
	} else {
		input.SetValue(item.getValue())
	}
	input.Focus()
	return textinput.Blink
}

func (m settingsModel) Update(msg tea.Msg) (settingsModel, tea.Cmd) {
	var cmd tea.Cmd

	if m.editing {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, m.keys.Enter):
				m.saveEditField()
				m.editing = false
				m.blurAllInputs()
				return m, nil
			case key.Matches(msg, m.keys.Escape):
				m.editing = false
				m.blurAllInputs()
				return m, nil
			}
		}

		input := m.textInputForField(m.editingField)
		*input, cmd = input.Update(msg)
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < m.itemCount()-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Enter):
			item := m.items[m.cursor]
			switch item.kind {
			case settingText:
				return m, m.startEditing(item)
			case settingCycle:
				item.onEnter()
				m.persist()
			}
		case key.Matches(msg, m.keys.Back):
			m.wantsBack = true
		case key.Matches(msg, m.keys.Escape):
			m.wantsMenu = true
		}
	}

	return m, nil
}

func (m settingsModel) View(width, height int) string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	// Labels are padded to the widest one in their section.
	sectionWidth := make(map[string]int)
	section := ""
	for _, item := range m.items {
		if item.section != "" {
			section = item.section
		}
		sectionWidth[section] = max(sectionWidth[section], len(item.label))
	}

	section = ""
	for i, item := range m.items {
		if item.section != "" {
			section = item.section
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(m.styles.Subtitle.Render(item.section))
			b.WriteString("\n")
		}

		cursor := "  "
		style := m.styles.MenuItem
		if i == m.cursor {
			cursor = "> "
			style = m.styles.MenuItemFocus
		}
		label := fmt.Sprintf("%-*s", sectionWidth[section], item.label)

		if item.kind == settingText && m.editing && m.editingField == item.editField {
			input := m.textInputForField(item.editField)
			b.WriteString(fmt.Sprintf("%s%s: %s\n", cursor, label, input.View()))
			continue
		}

		switch {
		case item.kind == settingCycle:
			b.WriteString(fmt.Sprintf("%s%s: [%s]\n", cursor, style.Render(label), item.getValue()))
		case item.label == "":
			b.WriteString(fmt.Sprintf("%s%s\n", cursor, style.Render(item.getValue())))
		default:
			b.WriteString(fmt.Sprintf("%s%s: %s\n", cursor, style.Render(label), item.getValue()))
		}
	}

	if m.saveErr != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render("Save failed: " + m.saveErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.editing && m.editingField == editFieldToken:
		b.WriteString(m.styles.Help.Render("Enter: Save (used from next start)  Esc: Cancel"))
	case m.editing:
		b.WriteString(m.styles.Help.Render("Enter: Save  Esc: Cancel"))
	default:
		b.WriteString(m.styles.Help.Render("j/k ↑↓: Navigate  Enter: Edit/Cycle  b: Back  Esc: Menu"))
	}

	return renderView(b.String(), m.styles, width, height, m.config.Interface.BorderStyle)
}

// maskToken keeps the first and last four characters of long tokens.
func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

// cycleValue returns the next value in names after current.
// If current is not found, it falls back to names[0].
func cycleValue(current string, names []string) string {
	for i, n := range names {
		if n == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}
