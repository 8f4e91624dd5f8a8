package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"karolbroda.com/kantabile/internal/lrc"
	"karolbroda.com/kantabile/internal/lyrics"
)

var fetchOutput string

var fetchCmd = &cobra.Command{
	Use:   "fetch <artist> <title>",
	Short: "fetch synced lyrics from lrclib",
	Long:  `searches lrclib.net for synced lyrics and writes them to an .lrc file ready for playback.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		artist := args[0]
		title := args[1]

		cfg := loadConfig(cmd)

		fmt.Printf("searching for: %s - %s\n", artist, title)

		params := &lyrics.TrackParams{
			Title:  title,
			Artist: artist,
		}

		result, err := lyrics.Fetch(context.Background(), cfg.LrclibURL, params)
		if err != nil {
			return fmt.Errorf("lyrics not found: %w", err)
		}

		if result.Instrumental {
			return fmt.Errorf("%s - %s is marked instrumental, nothing to save", result.ArtistName, result.TrackName)
		}
		if result.SyncedLyrics == "" {
			return fmt.Errorf("only plain lyrics available for %s - %s, cannot sync", result.ArtistName, result.TrackName)
		}

		outputPath := fetchOutput
		if outputPath == "" {
			outputPath = fmt.Sprintf("%s - %s_synced.lrc", artist, title)
		}

		// round-trip through the parser so the file comes out normalized
		timeline := lrc.Parse(result.SyncedLyrics)
		if timeline.Empty() {
			return fmt.Errorf("lrclib returned synced lyrics with no parseable lines")
		}

		err = os.WriteFile(outputPath, []byte(timeline.Marshal()), 0644)
		if err != nil {
			return fmt.Errorf("failed to write lyrics file: %w", err)
		}

		fmt.Printf("found:  %s - %s", result.ArtistName, result.TrackName)
		if result.AlbumName != "" {
			fmt.Printf(" (%s)", result.AlbumName)
		}
		fmt.Println()
		fmt.Printf("lines:  %d\n", timeline.Len())
		fmt.Printf("wrote   %s\n", outputPath)

		if !strings.HasSuffix(outputPath, ".lrc") {
			fmt.Fprintln(os.Stderr, "warning: output file has no .lrc extension, the library scan will not pick it up")
		}

		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "output .lrc path (default \"<artist> - <title>_synced.lrc\")")
	rootCmd.AddCommand(fetchCmd)
}
