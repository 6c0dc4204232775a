package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
	"github.com/secondturn-games/second-turn-games-sub000/internal/config"
)

type detailState int

const (
	detailStateLoading detailState = iota
	detailStateResults
	detailStateError
)

// detailChromeLines is the number of rows around the description: title,
// info block, help and padding.
const detailChromeLines = 22

var errGameNotFound = errors.New("game not found on BoardGameGeek")

type detailModel struct {
	state        detailState
	config       *config.Config
	styles       Styles
	keys         KeyMap
	gameID       string
	game         *bgg.GameDetails
	errMsg       string
	scroll       int
	descLines    []string // pre-wrapped description lines
	viewHeight   int
	wantsBack    bool
	wantsVersion bool
}

// detailResultMsg is sent when game details are received.
type detailResultMsg struct {
	gameID string
	game   *bgg.GameDetails
	err    error
}

func newDetailModel(gameID string, cfg *config.Config, styles Styles, keys KeyMap, viewHeight int) detailModel {
	return detailModel{
		state:      detailStateLoading,
		config:     cfg,
		styles:     styles,
		keys:       keys,
		gameID:     gameID,
		viewHeight: viewHeight,
	}
}

func loadGame(svc Backend, gameID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		game, err := svc.GetGameDetails(ctx, gameID)
		if err == nil && game == nil {
			err = errGameNotFound
		}
		return detailResultMsg{gameID: gameID, game: game, err: err}
	}
}

// visibleLines returns how many description lines fit under the header.
func (m detailModel) visibleLines() int {
	return max(m.viewHeight-detailChromeLines, 1)
}

func (m detailModel) maxScroll() int {
	return max(len(m.descLines)-m.visibleLines(), 0)
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.viewHeight = msg.Height
		m.scroll = min(m.scroll, m.maxScroll())
		return m, nil
	}

	switch m.state {
	case detailStateLoading:
		switch msg := msg.(type) {
		case detailResultMsg:
			if msg.gameID != m.gameID {
				return m, nil
			}
			if msg.err != nil {
				m.state = detailStateError
				m.errMsg = msg.err.Error()
				return m, nil
			}

			m.state = detailStateResults
			m.game = msg.game
			m.scroll = 0

			desc := msg.game.Description
			if strings.TrimSpace(desc) == "" {
				desc = "No description available."
			}
			m.descLines = htmlToText(desc, m.config.Display.DetailWidth)
		case tea.KeyMsg:
			if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Escape) {
				m.wantsBack = true
			}
		}
		return m, nil

	case detailStateResults:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, m.keys.Up):
				if m.scroll > 0 {
					m.scroll--
				}
			case key.Matches(msg, m.keys.Down):
				if m.scroll < m.maxScroll() {
					m.scroll++
				}
			case key.Matches(msg, m.keys.Open):
				openBrowser(gameURL(m.game))
			case key.Matches(msg, m.keys.Versions):
				m.wantsVersion = true
			case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Escape):
				m.wantsBack = true
			}
		}
		return m, nil

	case detailStateError:
		if msg, ok := msg.(tea.KeyMsg); ok {
			if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Escape) {
				m.wantsBack = true
			}
		}
		return m, nil
	}

	return m, nil
}

func (m detailModel) View(width, height int) string {
	var b strings.Builder

	switch m.state {
	case detailStateLoading:
		writeLoadingView(&b, m.styles, "Game Details", "Loading...")

	case detailStateResults:
		game := m.game

		b.WriteString(m.styles.Title.Render(game.Name))
		if game.IsExpansion {
			b.WriteString(" ")
			b.WriteString(m.styles.Badge.Render("Expansion"))
		}
		b.WriteString("\n\n")

		for _, line := range m.infoLines() {
			b.WriteString(line)
			b.WriteString("\n")
		}

		b.WriteString("\n")
		b.WriteString(m.styles.Subtitle.Render("Description"))
		b.WriteString("\n")

		end := min(m.scroll+m.visibleLines(), len(m.descLines))
		for i := m.scroll; i < end; i++ {
			b.WriteString(m.descLines[i])
			b.WriteString("\n")
		}

		if m.maxScroll() > 0 {
			b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("(%d/%d)", m.scroll+1, m.maxScroll()+1)))
			b.WriteString("\n")
		}

		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render(fmt.Sprintf("j/k: Scroll  v: Versions (%d)  o: Open BGG  b: Back", len(game.Versions))))

	case detailStateError:
		writeErrorView(&b, m.styles, "Game Details", m.errMsg, "b: Back")
	}

	return renderView(b.String(), m.styles, width, height, m.config.Interface.BorderStyle)
}

func (m detailModel) infoLines() []string {
	game := m.game
	label := m.styles.Label.Render

	year := "N/A"
	if game.YearPublished > 0 {
		year = fmt.Sprintf("%d", game.YearPublished)
	}

	ratingStr := "N/A"
	if game.Rating > 0 {
		ratingStr = fmt.Sprintf("%.2f (%d votes)", game.Rating, game.UsersRated)
	}

	rankStr := "Not Ranked"
	if game.Rank > 0 {
		rankStr = fmt.Sprintf("#%d", game.Rank)
	}

	playersStr := fmt.Sprintf("%d-%d", game.MinPlayers, game.MaxPlayers)
	if game.MinPlayers == game.MaxPlayers {
		playersStr = fmt.Sprintf("%d", game.MinPlayers)
	}

	timeStr := fmt.Sprintf("%d min", game.PlayingTime)
	if game.MinPlayTime != game.MaxPlayTime {
		timeStr = fmt.Sprintf("%d-%d min", game.MinPlayTime, game.MaxPlayTime)
	}

	weightStr := "N/A"
	if game.Weight > 0 {
		weightStr = fmt.Sprintf("%.2f / 5", game.Weight)
	}

	lines := []string{
		fmt.Sprintf("%s %s", label("Year"), year),
		fmt.Sprintf("%s %s", label("Rating"), m.styles.Rating.Render(ratingStr)),
		fmt.Sprintf("%s %s", label("Rank"), m.styles.Rank.Render(rankStr)),
		fmt.Sprintf("%s %s", label("Players"), m.styles.Players.Render(playersStr)),
		fmt.Sprintf("%s %s", label("Time"), m.styles.Time.Render(timeStr)),
		fmt.Sprintf("%s %s", label("Weight"), weightStr),
	}
	if game.MinAge > 0 {
		lines = append(lines, fmt.Sprintf("%s %d+", label("Age"), game.MinAge))
	}

	width := max(m.config.Display.DetailWidth-13, 20)
	joined := func(name string, values []string) {
		if len(values) > 0 {
			lines = append(lines, fmt.Sprintf("%s %s", label(name), runewidth.Truncate(strings.Join(values, ", "), width, "...")))
		}
	}
	joined("Designer", game.Designers)
	joined("Publisher", game.Publishers)
	joined("Categories", game.Categories)
	joined("Mechanics", game.Mechanics)
	joined("Also known", game.AlternateNames)

	return lines
}

// gameURL returns the BoardGameGeek page of a game.
func gameURL(game *bgg.GameDetails) string {
	kind := "boardgame"
	if game.IsExpansion {
		kind = "boardgameexpansion"
	}
	return fmt.Sprintf("https://boardgamegeek.com/%s/%s", kind, game.ID)
}

// wrapText wraps text to the specified display width. Lines that start
// with a "│ " quote prefix keep it on every wrapped line.
func wrapText(text string, width int) []string {
	var lines []string

	for _, para := range strings.Split(text, "\n") {
		prefix := ""
		for strings.HasPrefix(para[len(prefix):], "│ ") {
			prefix += "│ "
		}

		words := strings.Fields(para[len(prefix):])
		if len(words) == 0 {
			lines = append(lines, strings.TrimRight(para, " "))
			continue
		}

		currentLine := prefix + words[0]
		for _, word := range words[1:] {
			if runewidth.StringWidth(currentLine)+1+runewidth.StringWidth(word) <= width {
				currentLine += " " + word
			} else {
				lines = append(lines, currentLine)
				currentLine = prefix + word
			}
		}
		lines = append(lines, currentLine)
	}

	return lines
}

// openBrowser opens the specified URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}

	_ = cmd.Start()
}
