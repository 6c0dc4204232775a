package tui

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Animation tick interval (~15 fps).
const animTickInterval = 66 * time.Millisecond

// transitionFrames is the length of a view transition in ticks.
const transitionFrames = 12

type animTickMsg time.Time

func animTickCmd() tea.Cmd {
	return tea.Tick(animTickInterval, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

var (
	waveColors  = []lipgloss.Color{"#FF6B6B", "#FFE66D", "#4ECDC4", "#45B7D1", "#96CEB4"}
	glitchChars = []rune("@#$%&*!?░▒▓█")
)

// TransitionNames lists the view transitions for cycling in settings.
var TransitionNames = []string{"none", "fade", "glitch", "sweep"}

// SelectionNames lists the selection animations for cycling in settings.
var SelectionNames = []string{"none", "wave", "blink", "glitch"}

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// stripAnsi removes ANSI colour sequences from a string.
func stripAnsi(str string) string {
	return ansiRegex.ReplaceAllString(str, "")
}

// transitionState holds an in-flight view transition.
type transitionState struct {
	active bool
	name   string
	frame  int
}

func startTransition(name string) transitionState {
	if name == "" || name == "none" {
		return transitionState{}
	}
	return transitionState{active: true, name: name}
}

// advance moves the transition one frame and reports whether it is still
// running.
func (t *transitionState) advance() bool {
	if !t.active {
		return false
	}
	t.frame++
	if t.frame >= transitionFrames {
		*t = transitionState{}
	}
	return t.active
}

func (t transitionState) progress() float64 {
	return float64(t.frame) / float64(transitionFrames)
}

// renderTransition applies the active transition to a rendered view.
func renderTransition(content string, t transitionState) string {
	if !t.active {
		return content
	}
	switch t.name {
	case "fade":
		return renderTransitionFade(content, t.progress())
	case "glitch":
		return renderTransitionGlitch(content, t.progress(), t.frame)
	case "sweep":
		return renderTransitionSweep(content, t.progress())
	}
	return content
}

// renderTransitionFade maps progress onto the ANSI256 grey ramp.
func renderTransitionFade(content string, progress float64) string {
	grey := min(232+int(progress*23), 255)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("%d", grey)))

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = style.Render(stripAnsi(line))
	}
	return strings.Join(lines, "\n")
}

// renderTransitionGlitch replaces characters with noise, less of it as
// progress approaches 1.
func renderTransitionGlitch(content string, progress float64, frame int) string {
	threshold := 0.4 * (1 - progress)
	style := lipgloss.NewStyle().Foreground(ColorAccent)

	lines := strings.Split(content, "\n")
	for li, line := range lines {
		var b strings.Builder
		for ci, ch := range stripAnsi(line) {
			n := noise(li, ci, frame)
			if ch != ' ' && n < threshold {
				b.WriteString(style.Render(string(glitchChars[int(n*1000)%len(glitchChars)])))
			} else {
				b.WriteRune(ch)
			}
		}
		lines[li] = b.String()
	}
	return strings.Join(lines, "\n")
}

func easeOutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

// renderTransitionSweep reveals content column by column from the left.
func renderTransitionSweep(content string, progress float64) string {
	if progress >= 1 {
		return content
	}
	lines := strings.Split(content, "\n")
	plain := make([]string, len(lines))
	maxWidth := 0
	for i, line := range lines {
		plain[i] = stripAnsi(line)
		maxWidth = max(maxWidth, runewidth.StringWidth(plain[i]))
	}
	if maxWidth == 0 {
		return content
	}

	sweepCol := int(easeOutQuad(progress) * float64(maxWidth))
	edge := lipgloss.NewStyle().Foreground(ColorAccent).Render("▌")

	for i, line := range plain {
		var b strings.Builder
		col := 0
		for _, ch := range line {
			w := runewidth.RuneWidth(ch)
			switch {
			case col+w <= sweepCol:
				b.WriteRune(ch)
			case col == sweepCol && sweepCol > 0:
				b.WriteString(edge)
				b.WriteString(strings.Repeat(" ", max(w-1, 0)))
			default:
				b.WriteString(strings.Repeat(" ", w))
			}
			col += w
		}
		if col <= sweepCol && col < maxWidth && sweepCol > 0 {
			b.WriteString(edge)
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

// renderSelectionAnim renders the focused list item with a selection
// animation. Unknown types and "none" return text unchanged.
func renderSelectionAnim(text string, selType string, frame int) string {
	switch selType {
	case "wave":
		return renderSelectionWave(text, frame)
	case "blink":
		return renderSelectionBlink(text, frame)
	case "glitch":
		return renderSelectionGlitch(text, frame)
	}
	return text
}

func renderSelectionWave(text string, frame int) string {
	var b strings.Builder
	for i, ch := range []rune(text) {
		wave := math.Sin(float64(frame)*0.25 + float64(i)*0.3)
		idx := int((wave+1)/2*float64(len(waveColors)-1)) % len(waveColors)
		b.WriteString(lipgloss.NewStyle().Foreground(waveColors[idx]).Bold(true).Render(string(ch)))
	}
	return b.String()
}

func renderSelectionBlink(text string, frame int) string {
	color := lipgloss.Color("#F8F8F2")
	if (frame/10)%2 == 1 {
		color = lipgloss.Color("#44475A")
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(text)
}

// renderSelectionGlitch swaps roughly 8% of the characters for noise.
func renderSelectionGlitch(text string, frame int) string {
	bold := lipgloss.NewStyle().Bold(true)
	accent := bold.Foreground(ColorAccent)

	var b strings.Builder
	for i, ch := range []rune(text) {
		n := noise(0, i, frame)
		if ch != ' ' && n < 0.08 {
			b.WriteString(accent.Render(string(glitchChars[int(n*1000)%len(glitchChars)])))
		} else {
			b.WriteString(bold.Render(string(ch)))
		}
	}
	return b.String()
}

// noise returns a deterministic value in [0, 1) for a cell and frame.
func noise(line, col, frame int) float64 {
	h := uint32(line*7919+col*6271+frame*104729) * 2654435761
	h ^= h >> 15
	return float64(h%1000) / 1000
}
