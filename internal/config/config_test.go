package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KANTABILE_MUSIC_DIR", "")
	t.Setenv("KANTABILE_LYRICS_DIR", "")
	t.Setenv("KANTABILE_LRCLIB_URL", "")
	t.Setenv("KANTABILE_SYNC_OFFSET", "")

	cfg := Load()

	if cfg.MusicDir != "." {
		t.Errorf("MusicDir = %q, want .", cfg.MusicDir)
	}
	if cfg.LyricsDir != "" {
		t.Errorf("LyricsDir = %q, want empty", cfg.LyricsDir)
	}
	if cfg.LrclibURL != DefaultLrclibSearchURL {
		t.Errorf("LrclibURL = %q, want default", cfg.LrclibURL)
	}
	if cfg.SyncOffset != 0 {
		t.Errorf("SyncOffset = %v, want 0", cfg.SyncOffset)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("KANTABILE_MUSIC_DIR", "/music")
	t.Setenv("KANTABILE_LYRICS_DIR", "/lyrics")
	t.Setenv("KANTABILE_LRCLIB_URL", "http://localhost:9999/api/search")
	t.Setenv("KANTABILE_SYNC_OFFSET", "-1.5")

	cfg := Load()

	if cfg.MusicDir != "/music" {
		t.Errorf("MusicDir = %q", cfg.MusicDir)
	}
	if cfg.LyricsDir != "/lyrics" {
		t.Errorf("LyricsDir = %q", cfg.LyricsDir)
	}
	if cfg.LrclibURL != "http://localhost:9999/api/search" {
		t.Errorf("LrclibURL = %q", cfg.LrclibURL)
	}
	if cfg.SyncOffset != -1.5 {
		t.Errorf("SyncOffset = %v, want -1.5", cfg.SyncOffset)
	}
}

func TestLoadBadOffsetFallsBackToZero(t *testing.T) {
	t.Setenv("KANTABILE_SYNC_OFFSET", "not a number")

	if cfg := Load(); cfg.SyncOffset != 0 {
		t.Errorf("SyncOffset = %v, want 0", cfg.SyncOffset)
	}
}
