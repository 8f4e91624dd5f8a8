package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"karolbroda.com/kantabile/internal/artwork"
	"karolbroda.com/kantabile/internal/library"
	"karolbroda.com/kantabile/internal/ui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "browse the music library and pick a song",
	Long:  `scans the music directory, shows an interactive picker, and plays the chosen song. after a song finishes the picker comes back.`,
	RunE:  runBrowser,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowser(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	for {
		songs, err := library.Scan(cfg.MusicDir, cfg.LyricsDir)
		if err != nil {
			return fmt.Errorf("failed to scan library: %w", err)
		}

		model := ui.NewBrowserModel(songs, artwork.DefaultPalette())

		p := tea.NewProgram(model, tea.WithAltScreen())
		finalModel, err := p.Run()
		if err != nil {
			return fmt.Errorf("error running bubble tea: %w", err)
		}

		browser, ok := finalModel.(ui.BrowserModel)
		if !ok {
			return fmt.Errorf("unexpected model type from picker")
		}

		chosen := browser.Chosen()
		if chosen == nil {
			return nil
		}

		ctx, cancel := signalContext()
		err = runKaraoke(ctx, cfg, chosen)
		cancel()
		if err != nil {
			return err
		}

		// rescan so freshly fetched lyrics show up next round
	}
}
