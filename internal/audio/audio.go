package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// mixerRate is the sample rate the speaker is initialized with once per
// process; tracks at other rates are resampled on the fly.
const mixerRate = beep.SampleRate(44100)

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(mixerRate, mixerRate.N(100*time.Millisecond))
	})
	return speakerErr
}

// Extensions lists the audio file extensions Open can decode.
var Extensions = []string{".mp3", ".wav", ".flac", ".ogg"}

func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Player plays a single decoded track through the shared speaker. It exposes
// exactly the surface the sync loop needs: Play, Stop, IsPlaying and a
// readable volume.
type Player struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	volume   *effects.Volume

	done     chan struct{}
	doneOnce sync.Once
}

// Open decodes the file by extension. The returned player owns the file
// handle; Close releases it.
func Open(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported audio format %q", ext)
	}

	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	var src beep.Streamer = streamer
	if format.SampleRate != mixerRate {
		src = beep.Resample(4, format.SampleRate, mixerRate, streamer)
	}

	return &Player{
		streamer: streamer,
		format:   format,
		volume:   &effects.Volume{Streamer: src, Base: 2},
		done:     make(chan struct{}),
	}, nil
}

// Play starts playback on the shared speaker and returns immediately.
func (p *Player) Play() error {
	if err := initSpeaker(); err != nil {
		return fmt.Errorf("failed to init speaker: %w", err)
	}

	speaker.Play(beep.Seq(p.volume, beep.Callback(p.markDone)))
	return nil
}

func (p *Player) markDone() {
	p.doneOnce.Do(func() { close(p.done) })
}

// IsPlaying reports whether the track is still streaming. Safe to call from
// the sync loop every tick.
func (p *Player) IsPlaying() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Stop silences the speaker and marks the track finished.
func (p *Player) Stop() {
	speaker.Clear()
	p.markDone()
}

// Volume returns the current linear gain, 1.0 at the default setting.
func (p *Player) Volume() float64 {
	speaker.Lock()
	defer speaker.Unlock()
	return math.Pow(p.volume.Base, p.volume.Volume)
}

// Duration is the decoded track length in seconds, 0 when unknown.
func (p *Player) Duration() float64 {
	n := p.streamer.Len()
	if n <= 0 {
		return 0
	}
	return float64(n) / float64(p.format.SampleRate)
}

func (p *Player) Close() error {
	return p.streamer.Close()
}
