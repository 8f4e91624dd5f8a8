package lrc

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Line is a single timed lyric: seconds from track start plus display text.
type Line struct {
	Time float64
	Text string
}

func (l Line) String() string {
	return "[" + FormatTimestamp(l.Time) + "]" + l.Text
}

// Timeline is an immutable sequence of lines sorted ascending by time.
// Duplicate timestamps keep their original file order.
type Timeline struct {
	lines []Line
}

// Parse builds a timeline from raw LRC text. It never fails: blank lines,
// metadata tags and malformed timestamps are dropped silently, and a result
// with zero lines is the valid "no lyrics" state, not an error.
func Parse(raw string) *Timeline {
	if raw == "" {
		return &Timeline{}
	}

	rows := strings.Split(raw, "\n")
	lines := make([]Line, 0, len(rows))

	for _, row := range rows {
		trimmed := strings.TrimSpace(row)
		if trimmed == "" {
			continue
		}

		timePart, text := splitTimedLine(trimmed)
		if timePart == "" || text == "" {
			continue
		}

		seconds, err := parseTimestamp(timePart)
		if err != nil {
			continue
		}

		lines = append(lines, Line{Time: seconds, Text: text})
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Time < lines[j].Time
	})

	return &Timeline{lines: lines}
}

func (t *Timeline) Len() int {
	if t == nil {
		return 0
	}
	return len(t.lines)
}

func (t *Timeline) Empty() bool {
	return t.Len() == 0
}

func (t *Timeline) At(i int) Line {
	return t.lines[i]
}

// Lines returns a copy so callers cannot break the sort invariant.
func (t *Timeline) Lines() []Line {
	if t == nil {
		return nil
	}
	out := make([]Line, len(t.lines))
	copy(out, t.lines)
	return out
}

// Duration is the timestamp of the last line, 0 for an empty timeline.
func (t *Timeline) Duration() float64 {
	if t.Len() == 0 {
		return 0
	}
	return t.lines[len(t.lines)-1].Time
}

// Shift returns a new timeline with every timestamp moved by offset seconds.
// Positive offsets delay lyrics, negative ones advance them.
func (t *Timeline) Shift(offset float64) *Timeline {
	if t == nil {
		return &Timeline{}
	}
	shifted := make([]Line, len(t.lines))
	for i, line := range t.lines {
		shifted[i] = Line{Time: line.Time + offset, Text: line.Text}
	}
	return &Timeline{lines: shifted}
}

// Marshal re-emits the timeline as LRC text, one [MM:SS.CC]text row per line.
// Parsing the result yields an equal timeline (times at centisecond precision).
func (t *Timeline) Marshal() string {
	if t.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for _, line := range t.lines {
		b.WriteString(line.String())
		b.WriteString("\n")
	}
	return b.String()
}

// FormatTimestamp renders seconds as MM:SS.CC. Negative values clamp to zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	centis := int(math.Round(seconds * 100))
	return fmt.Sprintf("%02d:%02d.%02d", centis/6000, (centis%6000)/100, centis%100)
}

// ShiftLRC rewrites only the timestamped rows of a raw LRC document, leaving
// metadata and blank rows byte-for-byte untouched. It returns the adjusted
// document and the number of timestamps rewritten.
func ShiftLRC(raw string, offset float64) (string, int) {
	rows := strings.Split(raw, "\n")
	adjusted := 0

	for i, row := range rows {
		start := strings.Index(row, "[")
		if start < 0 {
			continue
		}
		end := strings.Index(row[start:], "]")
		if end < 0 {
			continue
		}
		end += start

		seconds, err := parseTimestamp(row[start+1 : end])
		if err != nil {
			continue
		}

		rows[i] = row[:start] + "[" + FormatTimestamp(seconds+offset) + "]" + row[end+1:]
		adjusted++
	}

	return strings.Join(rows, "\n"), adjusted
}

// splitTimedLine locates the first [...] segment anywhere in the row and
// returns its contents plus the trimmed trailing text.
func splitTimedLine(row string) (string, string) {
	start := strings.Index(row, "[")
	if start < 0 {
		return "", ""
	}

	end := strings.Index(row[start:], "]")
	if end < 0 {
		return "", ""
	}
	end += start

	timePart := row[start+1 : end]
	textPart := strings.TrimSpace(row[end+1:])
	if timePart == "" || textPart == "" {
		return "", ""
	}

	return timePart, textPart
}

// parseTimestamp reads <minutes>:<seconds>[.<centiseconds>], all unsigned
// integers. Missing centiseconds default to zero.
func parseTimestamp(raw string) (float64, error) {
	minutePart, rest, found := strings.Cut(raw, ":")
	if !found {
		return 0, errors.New("missing minute separator")
	}

	secondPart, centiPart, hasCentis := strings.Cut(rest, ".")

	minutes, err := parseUint(minutePart)
	if err != nil {
		return 0, err
	}
	seconds, err := parseUint(secondPart)
	if err != nil {
		return 0, err
	}

	centis := uint64(0)
	if hasCentis {
		centis, err = parseUint(centiPart)
		if err != nil {
			return 0, err
		}
	}

	return float64(minutes)*60 + float64(seconds) + float64(centis)/100.0, nil
}

func parseUint(s string) (uint64, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("failed to parse number %q: %w", s, err)
	}
	return value, nil
}
