package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"karolbroda.com/kantabile/internal/artwork"
	"karolbroda.com/kantabile/internal/audio"
	"karolbroda.com/kantabile/internal/config"
	"karolbroda.com/kantabile/internal/karaoke"
	"karolbroda.com/kantabile/internal/library"
	"karolbroda.com/kantabile/internal/lrc"
	"karolbroda.com/kantabile/internal/render"
)

var (
	playTitle  string
	playArtist string
)

var playCmd = &cobra.Command{
	Use:   "play <audio-file> [lyrics-file]",
	Short: "play one song with synced lyrics",
	Long: `plays a single audio file. when no lyrics file is given, kantabile looks
for a matching .lrc next to the audio file; with none found the song plays
audio-only.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)

		audioPath := args[0]
		if !audio.IsSupported(audioPath) {
			return fmt.Errorf("unsupported audio format: %s", filepath.Ext(audioPath))
		}

		base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))

		lyricsPath := ""
		if len(args) == 2 {
			lyricsPath = args[1]
		} else {
			lyricsPath = library.FindLyrics(filepath.Dir(audioPath), base)
		}

		song := &library.Song{
			AudioPath:  audioPath,
			LyricsPath: lyricsPath,
			Filename:   filepath.Base(audioPath),
		}
		song.Artist, song.Title = library.SplitArtistTitle(base)
		if song.Artist == "" {
			song.Artist = "Unknown Artist"
		}
		if playTitle != "" {
			song.Title = playTitle
		}
		if playArtist != "" {
			song.Artist = playArtist
		}

		ctx, cancel := signalContext()
		defer cancel()

		return runKaraoke(ctx, cfg, song)
	},
}

func init() {
	playCmd.Flags().StringVar(&playTitle, "title", "", "override the display title")
	playCmd.Flags().StringVar(&playArtist, "artist", "", "override the display artist")
	rootCmd.AddCommand(playCmd)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// runKaraoke plays one song end to end: lyrics load, audio start, sync loop,
// summary screen. Cancelling ctx stops playback cleanly.
func runKaraoke(ctx context.Context, cfg *config.Config, song *library.Song) error {
	timeline := &lrc.Timeline{}
	if song.HasLyrics() {
		raw, err := os.ReadFile(song.LyricsPath)
		if err != nil {
			return fmt.Errorf("failed to read lyrics file: %w", err)
		}
		timeline = lrc.Parse(string(raw))
	}
	if cfg.SyncOffset != 0 {
		timeline = timeline.Shift(cfg.SyncOffset)
	}

	player, err := audio.Open(song.AudioPath)
	if err != nil {
		return fmt.Errorf("failed to open audio: %w", err)
	}
	defer player.Close()

	// leave the terminal colors sane however we exit
	defer fmt.Fprint(os.Stdout, "\033[0m")

	palette := artwork.DefaultPalette()
	var art []string
	if !noArt {
		palette, art = artwork.ForSong(song.AudioPath, 40, 10)
	}

	renderer := render.New(render.Config{
		Out:          os.Stdout,
		Styles:       render.NewStyles(palette),
		Title:        song.Title,
		Artist:       song.Artist,
		DurationSecs: timeline.Duration(),
		Volume:       player.Volume,
		Art:          art,
	})

	session, err := karaoke.NewSession(karaoke.Config{
		Timeline: timeline,
		Playing:  player.IsPlaying,
		OnFrame:  renderer.Frame,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	if timeline.Empty() {
		renderer.AudioOnly()
	}

	if err := player.Play(); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	defer player.Stop()

	err = session.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// interrupted: stop quietly, the summary is for finished songs
			fmt.Fprintln(os.Stdout, "\nstopped")
			return nil
		}
		return fmt.Errorf("playback failed: %w", err)
	}

	if session.State() == karaoke.StateFinished {
		renderer.Summary(session.Elapsed(), session.LinesShown(), session.TotalLines())
	}

	return nil
}
