package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"

	"karolbroda.com/kantabile/internal/artwork"
	"karolbroda.com/kantabile/internal/karaoke"
)

const (
	ruleWidth = 70
	barWidth  = 50
)

// Styles bundles the lipgloss styles for one playback screen. It is built
// from an explicit palette and carries no process-wide state.
type Styles struct {
	Header   lipgloss.Style
	Meta     lipgloss.Style
	History  lipgloss.Style
	Current  lipgloss.Style
	Rule     lipgloss.Style
	Upcoming lipgloss.Style
	Bar      lipgloss.Style
	Accent   lipgloss.Style
}

func NewStyles(p *artwork.Palette) Styles {
	if p == nil {
		p = artwork.DefaultPalette()
	}
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Accent)),
		Meta:     lipgloss.NewStyle().Foreground(lipgloss.Color(p.Dim)),
		History:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Dim)).Faint(true),
		Current:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Primary)),
		Rule:     lipgloss.NewStyle().Foreground(lipgloss.Color(p.Secondary)),
		Upcoming: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Dim)).Italic(true),
		Bar:      lipgloss.NewStyle().Foreground(lipgloss.Color(p.Primary)),
		Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Secondary)),
	}
}

// Config wires a renderer to one playback session.
type Config struct {
	Out    io.Writer
	Styles Styles
	Title  string
	Artist string

	// DurationSecs is the timeline duration, used only for the estimated
	// total in the time readout.
	DurationSecs float64

	// Volume reads the audio subsystem's current linear gain. Optional.
	Volume func() float64

	// Art is optional pre-rendered album art shown under the header.
	Art []string
}

// Renderer turns karaoke frames into a full-screen terminal display. It holds
// only per-session values; every frame repaints the whole screen.
type Renderer struct {
	cfg Config
}

func New(cfg Config) *Renderer {
	return &Renderer{cfg: cfg}
}

func (r *Renderer) print(format string, args ...any) {
	fmt.Fprintf(r.cfg.Out, format, args...)
}

func (r *Renderer) clear() {
	r.print("\033[H\033[2J")
}

// Frame repaints the screen for one engine snapshot.
func (r *Renderer) Frame(f karaoke.Frame) {
	s := r.cfg.Styles

	r.clear()
	r.print("\n%s\n", s.Header.Render(strings.Repeat("=", ruleWidth)))
	r.print("%s\n", s.Header.Render(fmt.Sprintf("  now playing: %s", r.cfg.Title)))
	r.print("%s\n", s.Header.Render(strings.Repeat("=", ruleWidth)))
	r.print("%s\n\n", s.Meta.Render(fmt.Sprintf("  by %s", r.cfg.Artist)))

	for _, line := range r.cfg.Art {
		r.print("  %s\n", line)
	}
	if len(r.cfg.Art) > 0 {
		r.print("\n")
	}

	for _, prev := range f.Previous {
		r.print("%s\n", s.History.Render("  "+prev))
	}
	if len(f.Previous) > 0 {
		r.print("\n")
	}

	if f.HasCurrent {
		if f.NewLine {
			rule := s.Rule.Render("  " + strings.Repeat("━", ruleWidth-4))
			r.print("%s\n", rule)
			r.print("  %s  %s  %s\n", s.Rule.Render("♪"), s.Current.Render(f.Current), s.Rule.Render("♪"))
			r.print("%s\n\n", rule)
		} else {
			r.print("%s\n\n", s.Current.Render("  "+f.Current))
		}
	}

	if f.HasUpcoming {
		hint := fmt.Sprintf("  coming up in %.1fs: %s", f.UpcomingIn, f.Upcoming)
		r.print("%s\n\n", s.Upcoming.Render(hint))
	}

	filled := int(float64(barWidth) * f.Progress)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	r.print("\n  %s\n", s.Bar.Render(bar))

	total := r.cfg.DurationSecs + 10
	r.print("%s\n", s.Accent.Render(fmt.Sprintf("  %s / ~%s", FormatTime(f.Elapsed), FormatTime(total))))
	r.print("%s\n", s.Meta.Render(fmt.Sprintf("  line %d/%d", f.LinesShown, f.TotalLines)))

	if r.cfg.Volume != nil {
		r.print("\n%s\n", s.Meta.Render(fmt.Sprintf("  volume: %d%%", int(r.cfg.Volume()*100))))
	}
	r.print("%s\n", s.Meta.Render("  ctrl+c to stop"))
}

// AudioOnly paints the static screen for a session with no lyrics.
func (r *Renderer) AudioOnly() {
	s := r.cfg.Styles

	r.clear()
	r.print("\n%s\n", s.Header.Render(strings.Repeat("=", ruleWidth)))
	r.print("%s\n", s.Header.Render(fmt.Sprintf("  now playing: %s", r.cfg.Title)))
	r.print("%s\n", s.Header.Render(strings.Repeat("=", ruleWidth)))
	r.print("%s\n\n", s.Meta.Render(fmt.Sprintf("  by %s", r.cfg.Artist)))
	r.print("%s\n", s.Upcoming.Render("  audio only - no lyrics available"))
	r.print("%s\n", s.Meta.Render("  ctrl+c to stop"))
}

// Summary paints the end-of-session screen.
func (r *Renderer) Summary(elapsed float64, linesShown int, totalLines int) {
	s := r.cfg.Styles

	r.clear()
	banner := figure.NewFigure("sing!", "", true)
	r.print("%s\n", s.Accent.Render(banner.String()))
	r.print("%s\n\n", s.Header.Render("  song finished, thanks for singing!"))

	r.print("  song:   %s\n", r.cfg.Title)
	r.print("  artist: %s\n", r.cfg.Artist)
	if totalLines > 0 {
		r.print("  lines:  %d/%d\n", linesShown, totalLines)
	}
	r.print("  time:   %s\n\n", FormatTime(elapsed))
}

// FormatTime renders seconds as M:SS.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		return "0:00"
	}
	whole := int(seconds)
	return fmt.Sprintf("%d:%02d", whole/60, whole%60)
}
