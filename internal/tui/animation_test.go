package tui

import (
	"strings"
	"testing"
)

func TestStripAnsi(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no ansi", "hello world", "hello world"},
		{"with color", "\x1b[31mred\x1b[0m", "red"},
		{"multiple sequences", "\x1b[1;32mbold green\x1b[0m normal", "bold green normal"},
		{"empty string", "", ""},
		{"only ansi", "\x1b[0m", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripAnsi(tt.input); got != tt.want {
				t.Errorf("stripAnsi(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRenderSelectionAnim(t *testing.T) {
	text := "Catan: Seafarers"

	for _, selType := range []string{"", "none", "unknown"} {
		if got := renderSelectionAnim(text, selType, 3); got != text {
			t.Errorf("renderSelectionAnim(%q) = %q, want text unchanged", selType, got)
		}
	}

	for _, selType := range []string{"wave", "blink"} {
		got := stripAnsi(renderSelectionAnim(text, selType, 7))
		if got != text {
			t.Errorf("stripped %s output = %q, want %q", selType, got, text)
		}
	}

	glitched := []rune(stripAnsi(renderSelectionAnim(text, "glitch", 7)))
	if len(glitched) != len([]rune(text)) {
		t.Errorf("glitch changed rune count: got %d, want %d", len(glitched), len([]rune(text)))
	}
}

func TestTransitionLifecycle(t *testing.T) {
	if tr := startTransition("none"); tr.active {
		t.Fatal("none transition should be inactive")
	}

	tr := startTransition("fade")
	if !tr.active {
		t.Fatal("fade transition should be active")
	}
	steps := 0
	for tr.advance() {
		steps++
	}
	if steps != transitionFrames-1 {
		t.Errorf("transition ran %d steps, want %d", steps, transitionFrames-1)
	}
	if got := renderTransition("content", tr); got != "content" {
		t.Errorf("finished transition rendered %q, want content unchanged", got)
	}
}

func TestRenderTransitionSweep(t *testing.T) {
	content := "abcdef\nxy"

	start := renderTransitionSweep(content, 0)
	if strings.TrimSpace(stripAnsi(start)) != "" {
		t.Errorf("sweep at 0 should be blank, got %q", stripAnsi(start))
	}

	done := renderTransitionSweep(content, 1)
	if got := stripAnsi(done); got != content {
		t.Errorf("sweep at 1 = %q, want %q", got, content)
	}
}

func TestRenderTransitionFadeKeepsText(t *testing.T) {
	got := stripAnsi(renderTransitionFade("line one\nline two", 0.5))
	if got != "line one\nline two" {
		t.Errorf("fade text = %q", got)
	}
}

func TestNoiseRange(t *testing.T) {
	for line := range 5 {
		for col := range 50 {
			if n := noise(line, col, 3); n < 0 || n >= 1 {
				t.Fatalf("noise(%d, %d, 3) = %v, out of range", line, col, n)
			}
		}
	}
	if noise(1, 2, 3) != noise(1, 2, 3) {
		t.Error("noise is not deterministic")
	}
}
