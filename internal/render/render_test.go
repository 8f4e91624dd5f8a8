package render

import (
	"bytes"
	"strings"
	"testing"

	"karolbroda.com/kantabile/internal/karaoke"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{5.9, "0:05"},
		{62.5, "1:02"},
		{600, "10:00"},
		{-1, "0:00"},
	}

	for _, tt := range tests {
		if got := FormatTime(tt.seconds); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func testRenderer(buf *bytes.Buffer) *Renderer {
	return New(Config{
		Out:          buf,
		Styles:       NewStyles(nil),
		Title:        "Test Song",
		Artist:       "Test Artist",
		DurationSecs: 100,
	})
}

func TestFrameShowsLyrics(t *testing.T) {
	var buf bytes.Buffer
	r := testRenderer(&buf)

	r.Frame(karaoke.Frame{
		Elapsed:     42,
		Previous:    []string{"old line"},
		Current:     "the big chorus",
		HasCurrent:  true,
		NewLine:     true,
		Upcoming:    "next verse",
		UpcomingIn:  3.2,
		HasUpcoming: true,
		Progress:    0.5,
		LinesShown:  4,
		TotalLines:  20,
	})

	out := buf.String()
	for _, want := range []string{
		"Test Song",
		"Test Artist",
		"old line",
		"the big chorus",
		"next verse",
		"line 4/20",
		"0:42",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("frame output missing %q", want)
		}
	}
}

func TestAudioOnlyScreen(t *testing.T) {
	var buf bytes.Buffer
	r := testRenderer(&buf)

	r.AudioOnly()

	if !strings.Contains(buf.String(), "audio only") {
		t.Errorf("audio-only screen missing notice")
	}
}

func TestSummaryScreen(t *testing.T) {
	var buf bytes.Buffer
	r := testRenderer(&buf)

	r.Summary(125, 30, 30)

	out := buf.String()
	if !strings.Contains(out, "2:05") {
		t.Errorf("summary missing elapsed time, got:\n%s", out)
	}
	if !strings.Contains(out, "30/30") {
		t.Errorf("summary missing line count")
	}
}
