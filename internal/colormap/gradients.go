package colormap

import (
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// stop is a gradient control point.
type stop struct {
	pos float64
	hex string
}

// gradients holds the registered gradient definitions by name.
var gradients = map[string][]stop{
	"viridis": {
		{0, "#440154"}, {0.13, "#472c7a"}, {0.25, "#3b518b"}, {0.38, "#2c718e"}, {0.5, "#21908d"},
		{0.63, "#27ad81"}, {0.75, "#5cc863"}, {0.88, "#aadc32"}, {1, "#fde725"},
	},
	"inferno": {
		{0, "#000004"}, {0.13, "#1f0c48"}, {0.25, "#550f6d"}, {0.38, "#88226a"}, {0.5, "#a83655"},
		{0.63, "#e35933"}, {0.75, "#f9950a"}, {0.88, "#f8c932"}, {1, "#fcffa4"},
	},
	"magma": {
		{0, "#000004"}, {0.13, "#1c1044"}, {0.25, "#4f127b"}, {0.38, "#812581"}, {0.5, "#b5367a"},
		{0.63, "#e55964"}, {0.75, "#fb8761"}, {0.88, "#fec287"}, {1, "#fbfcbf"},
	},
	"plasma": {
		{0, "#0d0887"}, {0.13, "#46039f"}, {0.25, "#7201a8"}, {0.38, "#9c179e"}, {0.5, "#bd3786"},
		{0.63, "#d8576b"}, {0.75, "#ed7953"}, {0.88, "#fb9f3a"}, {1, "#f0f921"},
	},
	"jet": {
		{0, "#000083"}, {0.125, "#003caa"}, {0.375, "#05ffff"}, {0.625, "#ffff00"}, {0.875, "#fa0000"},
		{1, "#800000"},
	},
	"hot": {
		{0, "#000000"}, {0.3, "#e60000"}, {0.6, "#ffd200"}, {1, "#ffffff"},
	},
	"cool": {
		{0, "#00ffff"}, {1, "#ff00ff"},
	},
	"greys": {
		{0, "#000000"}, {1, "#ffffff"},
	},
	"bluered": {
		{0, "#0000ff"}, {1, "#ff0000"},
	},
	"rainbow": {
		{0, "#96005a"}, {0.125, "#0000c8"}, {0.25, "#0019ff"}, {0.375, "#0098ff"}, {0.5, "#2cff96"},
		{0.625, "#97ff00"}, {0.75, "#ffea00"}, {0.875, "#ff6f00"}, {1, "#ff0000"},
	},
}

// controlPoint is a parsed stop.
type controlPoint struct {
	pos   float64
	color colorful.Color
}

// parsed caches the parsed control points; built once at init.
var parsed = func() map[string][]controlPoint {
	out := make(map[string][]controlPoint, len(gradients))
	for name, stops := range gradients {
		points := make([]controlPoint, len(stops))
		for i, s := range stops {
			c, err := colorful.Hex(s.hex)
			if err != nil {
				panic("colormap: bad control point " + s.hex + " in " + name)
			}
			points[i] = controlPoint{pos: s.pos, color: c}
		}
		out[name] = points
	}
	return out
}()

// Names returns the registered gradient names in sorted order.
func Names() []string {
	names := make([]string, 0, len(gradients))
	for name := range gradients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is a registered gradient.
func Has(name string) bool {
	_, ok := gradients[name]
	return ok
}

// sample returns the interpolated color at t in [0,1].
func sample(points []controlPoint, t float64) colorful.Color {
	if t <= points[0].pos {
		return points[0].color
	}
	last := points[len(points)-1]
	if t >= last.pos {
		return last.color
	}
	for i := 1; i < len(points); i++ {
		hi := points[i]
		if t > hi.pos {
			continue
		}
		lo := points[i-1]
		span := hi.pos - lo.pos
		if span <= 0 {
			return hi.color
		}
		return lo.color.BlendRgb(hi.color, (t-lo.pos)/span)
	}
	return last.color
}
