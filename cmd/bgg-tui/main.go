package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/secondturn-games/second-turn-games-sub000/internal/app"
	"github.com/secondturn-games/second-turn-games-sub000/internal/config"
	"github.com/secondturn-games/second-turn-games-sub000/internal/logging"
	"github.com/secondturn-games/second-turn-games-sub000/internal/tui"
	"github.com/secondturn-games/second-turn-games-sub000/internal/version"
)

func main() {
	if len(os.Args) == 2 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Println("bgg-tui " + version.Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The screen belongs to the UI, so logs go to BGG_TUI_LOG or nowhere.
	logger := logging.Discard()
	if path := os.Getenv("BGG_TUI_LOG"); path != "" {
		f, err := tea.LogToFile(path, "bgg-tui")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logger = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, f)
		slog.SetDefault(logger)
	}

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(tui.New(cfg, a.Service), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
