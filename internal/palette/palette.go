package palette

import (
	"image/color"
	"strings"
	"sync"
	"unicode/utf16"
)

// Palette is the fixed set of label colors, indexed by label hash.
var Palette = [15]color.NRGBA{
	{R: 0x4e, G: 0x79, B: 0xa7, A: 0xff}, // blue
	{R: 0xf2, G: 0x8e, B: 0x2b, A: 0xff}, // orange
	{R: 0xe1, G: 0x57, B: 0x59, A: 0xff}, // red
	{R: 0x76, G: 0xb7, B: 0xb2, A: 0xff}, // teal
	{R: 0x59, G: 0xa1, B: 0x4f, A: 0xff}, // green
	{R: 0xed, G: 0xc9, B: 0x48, A: 0xff}, // yellow
	{R: 0xb0, G: 0x7a, B: 0xa1, A: 0xff}, // purple
	{R: 0xff, G: 0x9d, B: 0xa7, A: 0xff}, // pink
	{R: 0x9c, G: 0x75, B: 0x5f, A: 0xff}, // brown
	{R: 0xba, G: 0xb0, B: 0xac, A: 0xff}, // warm gray
	{R: 0x1f, G: 0x3a, B: 0x93, A: 0xff}, // navy
	{R: 0x8c, G: 0xd1, B: 0x7d, A: 0xff}, // light green
	{R: 0xd3, G: 0x72, B: 0x95, A: 0xff}, // rose
	{R: 0x49, G: 0x98, B: 0x94, A: 0xff}, // dark teal
	{R: 0x86, G: 0xbc, B: 0xb6, A: 0xff}, // sea green
}

const (
	redIndex   = 2
	greenIndex = 4
)

var (
	// Green is the palette entry used for truthy labels.
	Green = Palette[greenIndex]

	// Red is the palette entry used for falsy labels.
	Red = Palette[redIndex]

	// ErrorColor is returned for labels that cannot be colored (the empty label).
	ErrorColor = color.NRGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff}

	// Black and White are the two text colors ContrastingTextColor chooses from.
	Black = color.NRGBA{A: 0xff}
	White = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// HashLabel computes the 32-bit polynomial rolling hash of s.
//
// The hash walks UTF-16 code units and updates h = (h << 5) - h + unit with
// int32 wraparound, so labels hash identically to the browser-side viewer.
func HashLabel(s string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(unit)
	}
	return h
}

// ColorFor returns the display color for label.
func ColorFor(label string) color.NRGBA {
	if label == "" {
		return ErrorColor
	}
	switch strings.ToLower(label) {
	case "1", "true", "t", "yes":
		return Green
	case "0", "false", "f", "no":
		return Red
	}
	h := int64(HashLabel(label))
	if h < 0 {
		h = -h
	}
	return Palette[h%int64(len(Palette))]
}

// Luminance returns the BT.601 perceptual luminance of c in the 0-255 range.
func Luminance(c color.NRGBA) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// ContrastingTextColor returns black for bright backgrounds and white for dark ones.
func ContrastingTextColor(c color.NRGBA) color.NRGBA {
	if Luminance(c) > 125 {
		return Black
	}
	return White
}

// Lighten mixes c toward white by amount (0 = unchanged, 1 = white).
// Alpha is preserved.
func Lighten(c color.NRGBA, amount float64) color.NRGBA {
	if amount <= 0 {
		return c
	}
	if amount > 1 {
		amount = 1
	}
	mix := func(v uint8) uint8 {
		return uint8(float64(v) + (255-float64(v))*amount + 0.5)
	}
	return color.NRGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: c.A}
}

// WithAlpha returns c with its alpha channel replaced.
func WithAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}

// DefaultRegistrySize bounds the labels a NewRegistry remembers.
const DefaultRegistrySize = 4096

// Registry memoizes ColorFor for a working set of labels. Once full, the
// oldest label is forgotten first.
//
// A zero Registry is not usable; create one with NewRegistry. Concurrent
// writers may race to fill the same label, which is harmless because the
// computed value is always identical.
type Registry struct {
	mu        sync.RWMutex
	colors    map[string]color.NRGBA
	order     []string
	maxLabels int
}

// NewRegistry creates an empty registry holding at most DefaultRegistrySize
// labels.
func NewRegistry() *Registry {
	return NewRegistrySize(DefaultRegistrySize)
}

// NewRegistrySize creates a registry holding at most maxLabels labels. A
// non-positive maxLabels means unbounded.
func NewRegistrySize(maxLabels int) *Registry {
	return &Registry{colors: make(map[string]color.NRGBA), maxLabels: maxLabels}
}

// ColorFor returns the memoized color for label.
func (r *Registry) ColorFor(label string) color.NRGBA {
	r.mu.RLock()
	c, ok := r.colors[label]
	r.mu.RUnlock()
	if ok {
		return c
	}

	c = ColorFor(label)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.colors[label]; ok {
		return c
	}
	if r.maxLabels > 0 {
		for len(r.order) >= r.maxLabels {
			delete(r.colors, r.order[0])
			r.order = r.order[1:]
		}
	}
	r.colors[label] = c
	r.order = append(r.order, label)
	return c
}

// Len reports how many labels have been memoized.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.colors)
}
