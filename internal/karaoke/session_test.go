package karaoke

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"karolbroda.com/kantabile/internal/lrc"
)

// fakeClock drives a session deterministically: every Sleep call advances
// the clock by exactly the slept duration.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) sleep(d time.Duration) {
	c.t = c.t.Add(d)
}

func (c *fakeClock) elapsed(start time.Time) float64 {
	return c.t.Sub(start).Seconds()
}

func newTestSession(t *testing.T, timeline *lrc.Timeline, stopAfter float64, interval time.Duration, onFrame func(Frame)) (*Session, *fakeClock) {
	t.Helper()

	clock := &fakeClock{t: time.Unix(1000, 0)}
	start := clock.t

	s, err := NewSession(Config{
		Timeline: timeline,
		Playing:  func() bool { return clock.elapsed(start) < stopAfter },
		OnFrame:  onFrame,
		Now:      clock.now,
		Sleep:    clock.sleep,
		Interval: interval,
	})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s, clock
}

func TestNewSessionRequiresPredicate(t *testing.T) {
	_, err := NewSession(Config{Timeline: &lrc.Timeline{}})
	if err == nil {
		t.Fatal("NewSession with nil predicate should fail")
	}
}

func TestSessionEndToEnd(t *testing.T) {
	timeline := lrc.Parse("[00:00.50]alpha\n[00:01.00]beta\n[00:02.50]gamma")

	var frames []Frame
	s, _ := newTestSession(t, timeline, 3.0, 250*time.Millisecond, func(f Frame) {
		frames = append(frames, f)
	})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if s.State() != StateFinished {
		t.Errorf("State() = %v, want StateFinished", s.State())
	}
	if s.LinesShown() != 3 {
		t.Errorf("LinesShown() = %d, want 3", s.LinesShown())
	}
	if s.TotalLines() != 3 {
		t.Errorf("TotalLines() = %d, want 3", s.TotalLines())
	}

	// advance frames at 0.5 and 1.0, refreshes at 1.5 and 2.0,
	// then the last advance at 2.5
	wantCurrent := []string{"alpha", "beta", "beta", "beta", "gamma"}
	wantNewLine := []bool{true, true, false, false, true}

	if len(frames) != len(wantCurrent) {
		t.Fatalf("got %d frames, want %d", len(frames), len(wantCurrent))
	}

	for i, f := range frames {
		if !f.HasCurrent || f.Current != wantCurrent[i] {
			t.Errorf("frame %d Current = %q (has=%v), want %q", i, f.Current, f.HasCurrent, wantCurrent[i])
		}
		if f.NewLine != wantNewLine[i] {
			t.Errorf("frame %d NewLine = %v, want %v", i, f.NewLine, wantNewLine[i])
		}
	}

	// on an advance the fresh line lives only in the current slot
	if len(frames[1].Previous) != 1 || frames[1].Previous[0] != "alpha" {
		t.Errorf("advance frame Previous = %v, want [alpha]", frames[1].Previous)
	}

	// on a refresh the current line is part of the context too
	if len(frames[2].Previous) != 2 || frames[2].Previous[1] != "beta" {
		t.Errorf("refresh frame Previous = %v, want [alpha beta]", frames[2].Previous)
	}

	// refresh frame at 1.5 previews gamma due in 1.0s
	f := frames[2]
	if !f.HasUpcoming || f.Upcoming != "gamma" {
		t.Errorf("refresh frame Upcoming = %q (has=%v), want gamma", f.Upcoming, f.HasUpcoming)
	}
	if math.Abs(f.UpcomingIn-1.0) > 1e-9 {
		t.Errorf("UpcomingIn = %v, want 1.0", f.UpcomingIn)
	}

	// progress uses the padded duration
	wantProgress := 2.5 / (2.5 + progressTail)
	if math.Abs(frames[4].Progress-wantProgress) > 1e-9 {
		t.Errorf("final Progress = %v, want %v", frames[4].Progress, wantProgress)
	}
}

func TestSessionOneAdvancePerTick(t *testing.T) {
	// both lines already due at the first tick
	timeline := lrc.Parse("[00:00.00]one\n[00:00.00]two")

	var frames []Frame
	s, _ := newTestSession(t, timeline, 0.6, 250*time.Millisecond, func(f Frame) {
		frames = append(frames, f)
	})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Current != "one" || frames[1].Current != "two" {
		t.Errorf("catch-up order = %q, %q", frames[0].Current, frames[1].Current)
	}
	if !frames[0].NewLine || !frames[1].NewLine {
		t.Errorf("catch-up frames should both be advances")
	}
	if frames[0].LinesShown != 1 || frames[1].LinesShown != 2 {
		t.Errorf("LinesShown sequence = %d, %d", frames[0].LinesShown, frames[1].LinesShown)
	}
}

func TestSessionRefreshWithoutLines(t *testing.T) {
	// single line far in the future: only periodic refreshes fire
	timeline := lrc.Parse("[00:08.00]someday")

	var frames []Frame
	s, _ := newTestSession(t, timeline, 2.1, 250*time.Millisecond, func(f Frame) {
		frames = append(frames, f)
	})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(frames) != 4 {
		t.Fatalf("got %d frames, want 4 refreshes", len(frames))
	}

	lastIn := math.Inf(1)
	for i, f := range frames {
		if f.HasCurrent {
			t.Errorf("frame %d has a current line before any triggered", i)
		}
		if f.NewLine {
			t.Errorf("frame %d flagged as advance", i)
		}
		if !f.HasUpcoming || f.Upcoming != "someday" {
			t.Errorf("frame %d missing upcoming preview", i)
		}
		if f.UpcomingIn >= lastIn {
			t.Errorf("frame %d UpcomingIn = %v, not decreasing", i, f.UpcomingIn)
		}
		lastIn = f.UpcomingIn
	}
}

func TestSessionUpcomingWindow(t *testing.T) {
	// line due beyond the preview window: no hint until it comes in range
	timeline := lrc.Parse("[00:30.00]far away")

	var frames []Frame
	s, _ := newTestSession(t, timeline, 1.1, 250*time.Millisecond, func(f Frame) {
		frames = append(frames, f)
	})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i, f := range frames {
		if f.HasUpcoming {
			t.Errorf("frame %d previews a line %vs out", i, f.UpcomingIn)
		}
	}
}

func TestSessionAudioOnly(t *testing.T) {
	var frames []Frame
	s, _ := newTestSession(t, &lrc.Timeline{}, 1.0, 250*time.Millisecond, func(f Frame) {
		frames = append(frames, f)
	})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(frames) != 0 {
		t.Errorf("audio-only session emitted %d frames", len(frames))
	}
	if s.State() != StateFinished {
		t.Errorf("State() = %v, want StateFinished", s.State())
	}
	if s.Elapsed() <= 0 {
		t.Errorf("Elapsed() = %v, want > 0", s.Elapsed())
	}
}

func TestSessionCancellation(t *testing.T) {
	timeline := lrc.Parse("[00:01.00]line")

	s, _ := newTestSession(t, timeline, 1000, 250*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	// a cancelled session never reaches the finished state, so callers can
	// tell an interrupted song from a completed one
	if s.State() == StateFinished {
		t.Errorf("State() = StateFinished after cancellation")
	}
}

func TestSessionCancelledMidSong(t *testing.T) {
	timeline := lrc.Parse("[00:00.00]one\n[00:10.00]two")

	ctx, cancel := context.WithCancel(context.Background())

	clock := &fakeClock{t: time.Unix(1000, 0)}
	start := clock.t

	s, err := NewSession(Config{
		Timeline: timeline,
		Playing:  func() bool { return true },
		Now:      clock.now,
		Sleep: func(d time.Duration) {
			clock.sleep(d)
			if clock.elapsed(start) >= 0.5 {
				cancel()
			}
		},
		Interval: 250 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	if s.State() == StateFinished {
		t.Errorf("State() = StateFinished, want an interrupted session to stay unfinished")
	}
	if s.LinesShown() != 1 {
		t.Errorf("LinesShown() = %d, want 1", s.LinesShown())
	}
}

func TestSessionCannotRestart(t *testing.T) {
	s, _ := newTestSession(t, &lrc.Timeline{}, 0.1, 50*time.Millisecond, nil)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("second Run should fail")
	}
}

func TestSessionNilTimelineDefaults(t *testing.T) {
	s, err := NewSession(Config{
		Playing: func() bool { return false },
	})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if s.TotalLines() != 0 {
		t.Errorf("TotalLines() = %d, want 0", s.TotalLines())
	}
}
