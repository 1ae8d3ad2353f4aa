package colormap

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

// MaxShades is the largest colormap Generate builds.
const MaxShades = 4096

// ErrInvalidShades is returned when shades is outside [2, MaxShades].
var ErrInvalidShades = errors.New("colormap: shades must be in [2, 4096]")

// UnknownColormapError reports a gradient name that is not registered.
type UnknownColormapError struct {
	Name string
}

func (e *UnknownColormapError) Error() string {
	return fmt.Sprintf("colormap: unknown colormap %q", e.Name)
}

// Colormap is an immutable ramp of colors indexed 0..Len()-1.
type Colormap struct {
	Name   string
	Alpha  float64
	Colors []color.NRGBA
}

// Len returns the number of shades.
func (m *Colormap) Len() int {
	return len(m.Colors)
}

// At returns the color at index i, clamped into the valid range.
func (m *Colormap) At(i int) color.NRGBA {
	if i < 0 {
		i = 0
	}
	if i >= len(m.Colors) {
		i = len(m.Colors) - 1
	}
	return m.Colors[i]
}

// Key identifies a generated colormap.
type Key struct {
	Name   string
	Shades int
	Alpha  float64
}

// Generator produces colormaps and memoizes them in an injected Cache.
type Generator struct {
	cache Cache
}

// NewGenerator creates a generator backed by cache. A nil cache disables
// memoization.
func NewGenerator(cache Cache) *Generator {
	return &Generator{cache: cache}
}

// Generate returns the colormap for name with the given number of shades.
//
// alpha is optional; nil means fully opaque. Values outside [0,1] are clamped.
// Repeated calls with equal arguments return identical ramps, and when the
// generator has a cache, the same *Colormap.
//
// # Errors
//
//   - *UnknownColormapError if name is not registered
//   - ErrInvalidShades if shades < 2 or shades > MaxShades
func (g *Generator) Generate(name string, shades int, alpha *float64) (*Colormap, error) {
	a := 1.0
	if alpha != nil {
		a = math.Max(0, math.Min(1, *alpha))
	}
	key := Key{Name: name, Shades: shades, Alpha: a}

	if g != nil && g.cache != nil {
		if m, ok := g.cache.Get(key); ok {
			return m, nil
		}
	}

	m, err := build(key)
	if err != nil {
		return nil, err
	}

	if g != nil && g.cache != nil {
		g.cache.Put(key, m)
	}
	return m, nil
}

// Generate builds a colormap without memoization.
func Generate(name string, shades int, alpha *float64) (*Colormap, error) {
	return (*Generator)(nil).Generate(name, shades, alpha)
}

func build(key Key) (*Colormap, error) {
	points, ok := parsed[key.Name]
	if !ok {
		return nil, &UnknownColormapError{Name: key.Name}
	}
	if key.Shades < 2 || key.Shades > MaxShades {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShades, key.Shades)
	}

	a8 := uint8(key.Alpha*255 + 0.5)
	colors := make([]color.NRGBA, key.Shades)
	for i := range colors {
		t := float64(i) / float64(key.Shades-1)
		r, g, b := sample(points, t).Clamped().RGB255()
		colors[i] = color.NRGBA{R: r, G: g, B: b, A: a8}
	}

	return &Colormap{Name: key.Name, Alpha: key.Alpha, Colors: colors}, nil
}
