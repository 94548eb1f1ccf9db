package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/gogpu/gg"
)

// ParseColor parses "#rgb", "#rgba", "#rrggbb" or "#rrggbbaa".
func ParseColor(hex string) (color.NRGBA, error) {
	digits := strings.TrimPrefix(hex, "#")
	switch len(digits) {
	case 3, 4, 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("parse colour %q: want 3, 4, 6 or 8 hex digits", hex)
	}
	for _, r := range digits {
		if !unicode.Is(unicode.ASCII_Hex_Digit, r) {
			return color.NRGBA{}, fmt.Errorf("parse colour %q: invalid digit %q", hex, r)
		}
	}
	// gg.Hex does not report errors, so the input is checked above.
	return toNRGBA(gg.Hex(digits)), nil
}

// WithOpacity returns c with its alpha replaced by opacity (0..1).
func WithOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = unit8(opacity)
	return c
}

// Hex formats c as "#rrggbb", dropping alpha.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// CSS formats c as a canvas fillStyle/strokeStyle string.
func CSS(c color.NRGBA) string {
	a := strconv.FormatFloat(float64(c.A)/255, 'g', 3, 64)
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, a)
}

// Palette returns the colour for the n-th automatically coloured trail.
// The first trail gets the classic deep red; later ones step around the
// hue circle by the golden angle so neighbours stay distinct.
func Palette(n int) string {
	if n <= 0 {
		return "#7d2027"
	}
	hue := 355 + float64(n)*137.508
	return Hex(toNRGBA(gg.HSL(hue, 0.6, 0.31)))
}

func toNRGBA(c gg.RGBA) color.NRGBA {
	return color.NRGBA{R: unit8(c.R), G: unit8(c.G), B: unit8(c.B), A: unit8(c.A)}
}

func unit8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
