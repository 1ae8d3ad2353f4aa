package palette

import (
	"fmt"
	"image/color"
	"strconv"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// LabelColor describes the color assigned to a label in several formats,
// together with the text color that stays readable on top of it.
type LabelColor struct {
	Label     string   `json:"label"`
	Hex       string   `json:"hex"`
	RGB       RGBColor `json:"rgb"`
	HSL       HSLColor `json:"hsl"`
	Luminance float64  `json:"luminance"`
	TextHex   string   `json:"text_hex"`
}

// Describe returns the full color description for label.
func Describe(label string) *LabelColor {
	c := ColorFor(label)
	return &LabelColor{
		Label:     label,
		Hex:       Hex(c),
		RGB:       RGBColor{R: c.R, G: c.G, B: c.B},
		HSL:       rgbToHSL(c.R, c.G, c.B),
		Luminance: float64(int(Luminance(c)*100+0.5)) / 100,
		TextHex:   Hex(ContrastingTextColor(c)),
	}
}

// Hex formats c as "#RRGGBB". Alpha is dropped.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHex parses a hex color string like "#FF0000" or "#FF000080".
// The leading '#' is optional; six-digit colors are opaque.
func ParseHex(hex string) (color.NRGBA, error) {
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}

	switch len(hex) {
	case 6:
		return color.NRGBA{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 0xff}, nil
	case 8:
		return color.NRGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length %d", len(hex))
	}
}

// rgbToHSL converts 8-bit RGB values to HSL color space.
func rgbToHSL(r, g, b uint8) HSLColor {
	rf := float64(r) / 255.0
	gf := float64(g) / 255.0
	bf := float64(b) / 255.0

	hi := max(rf, gf, bf)
	lo := min(rf, gf, bf)
	l := (hi + lo) / 2.0

	if hi == lo {
		return HSLColor{H: 0, S: 0, L: int(l * 100)}
	}

	var s float64
	if l < 0.5 {
		s = (hi - lo) / (hi + lo)
	} else {
		s = (hi - lo) / (2.0 - hi - lo)
	}

	var h float64
	switch hi {
	case rf:
		h = (gf - bf) / (hi - lo)
		if gf < bf {
			h += 6
		}
	case gf:
		h = 2.0 + (bf-rf)/(hi-lo)
	case bf:
		h = 4.0 + (rf-gf)/(hi-lo)
	}
	h *= 60

	return HSLColor{
		H: int(h),
		S: int(s * 100),
		L: int(l * 100),
	}
}
