package karaoke

import (
	"context"
	"errors"
	"time"

	"karolbroda.com/kantabile/internal/lrc"
)

const (
	// TickInterval is how often the loop samples the clock and the
	// playback predicate.
	TickInterval = 50 * time.Millisecond

	// refreshSeconds forces a frame emission even when no line triggered,
	// so progress and the upcoming preview stay live.
	refreshSeconds = 0.5

	// previewWindowSeconds bounds the "coming up" hint.
	previewWindowSeconds = 10.0

	// historyContext is how many surfaced lines a frame carries as context.
	historyContext = 3

	// progressTail pads the track duration so the bar never pins to 100%
	// while the outro is still playing.
	progressTail = 10.0
)

type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateFinished
)

// Frame is one snapshot of what the screen should show. It is a plain value;
// the session keeps no reference to it after emission.
type Frame struct {
	Elapsed float64

	Previous   []string
	Current    string
	HasCurrent bool

	// NewLine marks a frame triggered by a line advance rather than a
	// periodic refresh.
	NewLine bool

	Upcoming    string
	UpcomingIn  float64
	HasUpcoming bool

	Progress   float64
	LinesShown int
	TotalLines int
}

// Config wires a session to its collaborators. Playing is the external audio
// subsystem's "still playing" predicate and is only ever read. Now and Sleep
// are injectable for tests and default to the real clock.
type Config struct {
	Timeline *lrc.Timeline
	Playing  func() bool
	OnFrame  func(Frame)

	Now      func() time.Time
	Sleep    func(time.Duration)
	Interval time.Duration
}

// Session advances a monotonic cursor through a timeline against a live
// playback clock. Single-threaded: Run owns all mutable state and the
// accessors are meant for use after it returns.
type Session struct {
	timeline *lrc.Timeline
	playing  func() bool
	onFrame  func(Frame)
	now      func() time.Time
	sleep    func(time.Duration)
	interval time.Duration

	state    State
	index    int
	history  []string
	start    time.Time
	lastEmit float64
	elapsed  float64
}

func NewSession(cfg Config) (*Session, error) {
	if cfg.Playing == nil {
		return nil, errors.New("nil playing predicate")
	}

	s := &Session{
		timeline: cfg.Timeline,
		playing:  cfg.Playing,
		onFrame:  cfg.OnFrame,
		now:      cfg.Now,
		sleep:    cfg.Sleep,
		interval: cfg.Interval,
	}

	if s.timeline == nil {
		s.timeline = &lrc.Timeline{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.sleep == nil {
		s.sleep = time.Sleep
	}
	if s.interval <= 0 {
		s.interval = TickInterval
	}

	return s, nil
}

// Run blocks until the predicate reports audio has stopped or ctx is
// cancelled. On cancellation it returns ctx.Err() at the next tick boundary;
// stopping the audio itself is the caller's job.
func (s *Session) Run(ctx context.Context) error {
	if s.state != StateNotStarted {
		return errors.New("session already started")
	}

	s.state = StateRunning
	s.start = s.now()

	if s.timeline.Empty() {
		return s.waitForAudio(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !s.playing() {
			s.state = StateFinished
			return nil
		}

		elapsed := s.now().Sub(s.start).Seconds()
		s.elapsed = elapsed

		// at most one line surfaces per tick: a backlog of elapsed
		// trigger times catches up over subsequent ticks.
		advance := s.index < s.timeline.Len() && elapsed >= s.timeline.At(s.index).Time
		if advance {
			s.history = append(s.history, s.timeline.At(s.index).Text)
			s.index++
		}

		if advance || elapsed-s.lastEmit >= refreshSeconds {
			s.lastEmit = elapsed
			if s.onFrame != nil {
				s.onFrame(s.frame(elapsed, advance))
			}
		}

		s.sleep(s.interval)
	}
}

// waitForAudio is the audio-only degraded mode: no frames, the loop is gated
// purely on the playback predicate.
func (s *Session) waitForAudio(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !s.playing() {
			s.state = StateFinished
			return nil
		}

		s.elapsed = s.now().Sub(s.start).Seconds()
		s.sleep(s.interval)
	}
}

func (s *Session) frame(elapsed float64, newLine bool) Frame {
	f := Frame{
		Elapsed:    elapsed,
		NewLine:    newLine,
		LinesShown: len(s.history),
		TotalLines: s.timeline.Len(),
	}

	if len(s.history) > 0 {
		f.Current = s.history[len(s.history)-1]
		f.HasCurrent = true

		// a just-triggered line is shown as current only; on a periodic
		// refresh it stays visible in the history context as well.
		hist := s.history
		if newLine {
			hist = hist[:len(hist)-1]
		}
		if len(hist) > historyContext {
			hist = hist[len(hist)-historyContext:]
		}
		f.Previous = append([]string(nil), hist...)
	}

	if s.index < s.timeline.Len() {
		until := s.timeline.At(s.index).Time - elapsed
		if until > 0 && until < previewWindowSeconds {
			f.Upcoming = s.timeline.At(s.index).Text
			f.UpcomingIn = until
			f.HasUpcoming = true
		}
	}

	progress := elapsed / (s.timeline.Duration() + progressTail)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	f.Progress = progress

	return f
}

func (s *Session) State() State { return s.state }

// Elapsed is the playback time sampled on the last tick.
func (s *Session) Elapsed() float64 { return s.elapsed }

func (s *Session) LinesShown() int { return len(s.history) }

func (s *Session) TotalLines() int { return s.timeline.Len() }
