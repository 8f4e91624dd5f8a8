package artwork

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"strings"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/charmbracelet/lipgloss"
	"github.com/dhowden/tag"
	"github.com/nfnt/resize"
)

// Palette holds the display colors for one song, extracted from its album
// art or falling back to the defaults.
type Palette struct {
	Primary   string
	Secondary string
	Accent    string
	Dim       string
}

func DefaultPalette() *Palette {
	return &Palette{
		Primary:   "#50FA7B",
		Secondary: "#8BE9FD",
		Accent:    "#BD93F9",
		Dim:       "#6272A4",
	}
}

// FromFile decodes the album art embedded in an audio file's tags.
func FromFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	pic := m.Picture()
	if pic == nil {
		return nil, errors.New("no embedded artwork")
	}

	img, _, err := image.Decode(bytes.NewReader(pic.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}

	return img, nil
}

// ForSong extracts the display palette and terminal art for a song's embedded
// artwork. A song without usable art gets the default palette and no art lines.
func ForSong(audioPath string, artWidth int, artHeight int) (*Palette, []string) {
	img, err := FromFile(audioPath)
	if err != nil {
		return DefaultPalette(), nil
	}
	return ExtractPalette(img), RenderHalfBlockArt(img, artWidth, artHeight)
}

type scoredColor struct {
	hex        string
	saturation float64
	brightness float64
	score      float64
}

// ExtractPalette picks the three most display-worthy prominent colors:
// saturated, neither washed out nor near-black.
func ExtractPalette(img image.Image) *Palette {
	if img == nil {
		return DefaultPalette()
	}

	items, err := prominentcolor.KmeansWithAll(5, img, prominentcolor.ArgumentDefault, prominentcolor.DefaultSize, nil)
	if err != nil || len(items) < 3 {
		return DefaultPalette()
	}

	scored := make([]scoredColor, 0, len(items))
	for _, item := range items {
		r := float64(item.Color.R) / 255.0
		g := float64(item.Color.G) / 255.0
		b := float64(item.Color.B) / 255.0

		brightest := math.Max(math.Max(r, g), b)
		darkest := math.Min(math.Min(r, g), b)

		var sat float64
		if brightest > 0 {
			sat = (brightest - darkest) / brightest
		}

		scored = append(scored, scoredColor{
			hex:        boostColor(item.Color.R, item.Color.G, item.Color.B, brightest),
			saturation: sat,
			brightness: brightest,
			score:      sat * (1.0 - math.Abs(brightest-0.6)),
		})
	}

	palette := DefaultPalette()
	picked := make(map[string]bool)

	pick := func(minSat float64, minBright float64) (string, bool) {
		best := -1
		for i, c := range scored {
			if picked[c.hex] || c.saturation < minSat || c.brightness < minBright {
				continue
			}
			if best < 0 || c.score > scored[best].score {
				best = i
			}
		}
		if best < 0 {
			return "", false
		}
		picked[scored[best].hex] = true
		return scored[best].hex, true
	}

	if hex, ok := pick(0.2, 0.3); ok {
		palette.Primary = hex
	}
	if hex, ok := pick(0.15, 0.3); ok {
		palette.Secondary = hex
	}
	if hex, ok := pick(0.1, 0.25); ok {
		palette.Accent = hex
	}

	return palette
}

// boostColor lifts very dark colors and softens blown-out ones so they stay
// readable on a terminal background.
func boostColor(r, g, b uint32, brightness float64) string {
	if brightness > 0 && brightness < 0.4 {
		factor := math.Min(0.4/brightness, 2.5)
		r = uint32(math.Min(255, float64(r)*factor))
		g = uint32(math.Min(255, float64(g)*factor))
		b = uint32(math.Min(255, float64(b)*factor))
	}

	if brightness > 0.85 {
		avg := float64(r+g+b) / 3
		r = uint32(avg + (float64(r)-avg)*0.7)
		g = uint32(avg + (float64(g)-avg)*0.7)
		b = uint32(avg + (float64(b)-avg)*0.7)
	}

	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// RenderHalfBlockArt draws the image as colored half-block characters, two
// pixels per terminal row.
func RenderHalfBlockArt(img image.Image, targetWidth int, targetHeight int) []string {
	if img == nil || targetWidth < 4 || targetHeight < 2 {
		return nil
	}

	resized := resize.Resize(uint(targetWidth), uint(targetHeight*2), img, resize.Lanczos3)
	bounds := resized.Bounds()

	lines := make([]string, targetHeight)

	for y := 0; y < targetHeight; y++ {
		var line strings.Builder

		for x := 0; x < bounds.Dx(); x++ {
			top := hexAt(resized, bounds.Min.X+x, bounds.Min.Y+y*2)
			bottom := top
			if y*2+1 < bounds.Dy() {
				bottom = hexAt(resized, bounds.Min.X+x, bounds.Min.Y+y*2+1)
			}

			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom))
			line.WriteString(style.Render("▀"))
		}

		lines[y] = line.String()
	}

	return lines
}

func hexAt(img image.Image, x int, y int) string {
	r, g, b, _ := img.At(x, y).RGBA()
	return fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8)
}
