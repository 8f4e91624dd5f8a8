package config

import (
	"os"
	"strconv"
)

const (
	DefaultLrclibSearchURL = "https://lrclib.net/api/search"
	HTTPTimeoutSeconds     = 15
)

type Config struct {
	MusicDir   string
	LyricsDir  string
	LrclibURL  string
	SyncOffset float64
}

// Load reads configuration from the environment. An empty LyricsDir means
// lyrics live next to the audio files.
func Load() *Config {
	syncOffset, err := strconv.ParseFloat(getEnvOrDefault("KANTABILE_SYNC_OFFSET", "0"), 64)
	if err != nil {
		syncOffset = 0
	}

	return &Config{
		MusicDir:   getEnvOrDefault("KANTABILE_MUSIC_DIR", "."),
		LyricsDir:  os.Getenv("KANTABILE_LYRICS_DIR"),
		LrclibURL:  getEnvOrDefault("KANTABILE_LRCLIB_URL", DefaultLrclibSearchURL),
		SyncOffset: syncOffset,
	}
}

func getEnvOrDefault(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
