package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"karolbroda.com/kantabile/internal/artwork"
	"karolbroda.com/kantabile/internal/library"
)

const visibleRows = 12

// BrowserModel is the song picker shown before playback. Enter selects a
// song, q or ctrl+c leaves the browser.
type BrowserModel struct {
	songs   []library.Song
	cursor  int
	offset  int
	chosen  int
	quit    bool
	width   int
	palette *artwork.Palette

	titleStyle    lipgloss.Style
	cursorStyle   lipgloss.Style
	itemStyle     lipgloss.Style
	noLyricsStyle lipgloss.Style
	helpStyle     lipgloss.Style
}

func NewBrowserModel(songs []library.Song, palette *artwork.Palette) BrowserModel {
	if palette == nil {
		palette = artwork.DefaultPalette()
	}

	return BrowserModel{
		songs:   songs,
		chosen:  -1,
		palette: palette,

		titleStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(palette.Accent)),
		cursorStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(palette.Primary)),
		itemStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Secondary)),
		noLyricsStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Dim)),
		helpStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Dim)).Faint(true),
	}
}

// Chosen reports the picked song, nil when the user quit without choosing.
func (m BrowserModel) Chosen() *library.Song {
	if m.chosen < 0 || m.chosen >= len(m.songs) {
		return nil
	}
	return &m.songs[m.chosen]
}

func (m BrowserModel) Init() tea.Cmd {
	return nil
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quit = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
			return m, nil

		case "down", "j":
			if m.cursor < len(m.songs)-1 {
				m.cursor++
			}
			if m.cursor >= m.offset+visibleRows {
				m.offset = m.cursor - visibleRows + 1
			}
			return m, nil

		case "home", "g":
			m.cursor = 0
			m.offset = 0
			return m, nil

		case "end", "G":
			if len(m.songs) > 0 {
				m.cursor = len(m.songs) - 1
				m.offset = m.cursor - visibleRows + 1
				if m.offset < 0 {
					m.offset = 0
				}
			}
			return m, nil

		case "enter", " ":
			if len(m.songs) > 0 {
				m.chosen = m.cursor
			}
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m BrowserModel) View() string {
	if m.quit || m.chosen >= 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.titleStyle.Render("kantabile"))
	b.WriteString("\n")
	b.WriteString(m.helpStyle.Render(fmt.Sprintf("%d songs in library", len(m.songs))))
	b.WriteString("\n\n")

	if len(m.songs) == 0 {
		b.WriteString(m.noLyricsStyle.Render("  no songs found, check your music directory"))
		b.WriteString("\n")
	}

	end := m.offset + visibleRows
	if end > len(m.songs) {
		end = len(m.songs)
	}

	for i := m.offset; i < end; i++ {
		song := m.songs[i]

		mark := "✗"
		if song.HasLyrics() {
			mark = "✓"
		}

		label := fmt.Sprintf("%s %s - %s", mark, song.Artist, song.Title)

		if i == m.cursor {
			b.WriteString(m.cursorStyle.Render("  ▸ " + label))
		} else if song.HasLyrics() {
			b.WriteString(m.itemStyle.Render("    " + label))
		} else {
			b.WriteString(m.noLyricsStyle.Render("    " + label))
		}
		b.WriteString("\n")
	}

	if end < len(m.songs) {
		b.WriteString(m.helpStyle.Render(fmt.Sprintf("\n  ... %d more", len(m.songs)-end)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.helpStyle.Render("  ↑/↓ move · enter play · q quit"))
	b.WriteString("\n")

	return b.String()
}
