package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"karolbroda.com/kantabile/internal/config"
)

var (
	// global flags
	musicDir   string
	lyricsDir  string
	syncOffset float64
	lrclibURL  string
	noArt      bool
)

var rootCmd = &cobra.Command{
	Use:   "kantabile",
	Short: "terminal karaoke player with synced lyrics",
	Long: `kantabile plays local audio files and displays their lyrics in sync,
karaoke style, straight in the terminal.

when run without a subcommand, it opens the interactive song browser.`,
	Version: "1.0.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		// default behavior: open the song browser
		return runBrowser(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&musicDir, "music-dir", "m", "", "directory with audio files")
	rootCmd.PersistentFlags().StringVarP(&lyricsDir, "lyrics-dir", "l", "", "directory with .lrc files (defaults to the music dir)")
	rootCmd.PersistentFlags().Float64VarP(&syncOffset, "sync-offset", "s", 0, "shift lyrics timing in seconds")
	rootCmd.PersistentFlags().StringVar(&lrclibURL, "lrclib-url", "", "custom lrclib search api url")
	rootCmd.PersistentFlags().BoolVar(&noArt, "no-art", false, "skip album art and palette extraction")
}

// loadConfig merges environment config with command line flag overrides.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()

	if musicDir != "" {
		cfg.MusicDir = musicDir
	}
	if lyricsDir != "" {
		cfg.LyricsDir = lyricsDir
	}
	if lrclibURL != "" {
		cfg.LrclibURL = lrclibURL
	}
	if cmd.Flags().Changed("sync-offset") {
		cfg.SyncOffset = syncOffset
	}

	return cfg
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
