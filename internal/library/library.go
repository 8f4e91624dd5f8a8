package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"

	"karolbroda.com/kantabile/internal/audio"
)

// Song is one playable entry: an audio file plus, when one was found, a
// matching lyrics file.
type Song struct {
	AudioPath  string
	LyricsPath string
	Filename   string
	Artist     string
	Title      string
}

func (s *Song) HasLyrics() bool {
	return s != nil && s.LyricsPath != ""
}

// lyricsSuffixes are the filename variants tried after an exact match, in
// order. They mirror the names the fetch and adjust tools produce.
var lyricsSuffixes = []string{"", "_synced", "_early", "_adjusted", "_complete"}

// Scan lists the playable songs in musicDir, pairing each with a lyrics file
// from lyricsDir. An empty lyricsDir means lyrics live next to the audio.
// Songs come back sorted by lowercased title; a song without lyrics is a
// normal entry, not an error.
func Scan(musicDir string, lyricsDir string) ([]Song, error) {
	if musicDir == "" {
		return nil, fmt.Errorf("empty music directory")
	}
	if lyricsDir == "" {
		lyricsDir = musicDir
	}

	entries, err := os.ReadDir(musicDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read music directory: %w", err)
	}

	var songs []Song

	for _, entry := range entries {
		if entry.IsDir() || !audio.IsSupported(entry.Name()) {
			continue
		}

		audioPath := filepath.Join(musicDir, entry.Name())
		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))

		artist, title := SplitArtistTitle(base)
		if artist == "" {
			artist, title = tagFallback(audioPath, title)
		}

		songs = append(songs, Song{
			AudioPath:  audioPath,
			LyricsPath: FindLyrics(lyricsDir, base),
			Filename:   entry.Name(),
			Artist:     artist,
			Title:      title,
		})
	}

	sort.SliceStable(songs, func(i, j int) bool {
		return strings.ToLower(songs[i].Title) < strings.ToLower(songs[j].Title)
	})

	return songs, nil
}

// FindLyrics returns the path of the first lyrics file matching base in dir,
// or "" when none exists.
func FindLyrics(dir string, base string) string {
	for _, suffix := range lyricsSuffixes {
		path := filepath.Join(dir, base+suffix+".lrc")
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// SplitArtistTitle applies the "Artist - Title" filename convention. When the
// separator is absent the whole name is the title and artist comes back empty
// for the caller to fill from tags.
func SplitArtistTitle(name string) (artist string, title string) {
	before, after, found := strings.Cut(name, " - ")
	if !found {
		return "", strings.TrimSpace(name)
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}

// tagFallback reads embedded metadata when the filename carries no artist.
func tagFallback(path string, fallbackTitle string) (string, string) {
	artist := "Unknown Artist"
	title := fallbackTitle

	f, err := os.Open(path)
	if err != nil {
		return artist, title
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return artist, title
	}

	if m.Artist() != "" {
		artist = m.Artist()
	}
	if m.Title() != "" {
		title = m.Title()
	}

	return artist, title
}
