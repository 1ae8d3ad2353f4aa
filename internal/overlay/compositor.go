package overlay

import (
	"image"
	"image/color"
	"strconv"

	"github.com/ironsheep/image-overlay-mcp/internal/annotation"
	"github.com/ironsheep/image-overlay-mcp/internal/colormap"
	"github.com/ironsheep/image-overlay-mcp/internal/palette"
	"github.com/ironsheep/image-overlay-mcp/internal/tags"
)

// Compositor turns decoded mask pixels into RGBA scratch buffers in mask
// coordinates.
type Compositor struct {
	opts      Options
	colors    *palette.Registry
	colormaps *colormap.Generator
}

// NewCompositor creates a compositor. Nil registries fall back to
// unmemoized lookups.
func NewCompositor(opts Options, colors *palette.Registry, colormaps *colormap.Generator) *Compositor {
	return &Compositor{opts: opts, colors: colors, colormaps: colormaps}
}

// classStyle is the resolved appearance of one mask value.
type classStyle struct {
	visible bool
	px      [4]uint8 // premultiplied RGBA
}

// Segmentation colors each pixel by its class label.
//
// Without a class map, a value's decimal string is its label and value 0 is
// background. With a class map, values missing from it are background.
// Background and classes failing the visibility test stay transparent.
func (c *Compositor) Segmentation(m *annotation.Mask, pixels []int64, layer string, vis tags.Visibility) *image.RGBA {
	styles := make(map[int64]classStyle)
	resolve := func(v int64) classStyle {
		if s, ok := styles[v]; ok {
			return s
		}
		s := c.classStyle(m, v, layer, vis)
		styles[v] = s
		return s
	}

	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range pixels {
		s := resolve(v)
		if !s.visible {
			continue
		}
		copy(img.Pix[i*4:i*4+4], s.px[:])
	}
	return img
}

func (c *Compositor) classStyle(m *annotation.Mask, v int64, layer string, vis tags.Visibility) classStyle {
	var label string
	if m.ClassMap != nil {
		l, ok := m.ClassMap[v]
		if !ok {
			return classStyle{}
		}
		label = l
	} else {
		if v == 0 {
			return classStyle{}
		}
		label = strconv.FormatInt(v, 10)
	}

	if tags.IsHidden(vis.Hidden, layer, label) {
		return classStyle{}
	}
	if score, ok := m.PerClassScores[label]; ok && !vis.PassesScore(&score) {
		return classStyle{}
	}

	col := c.colorFor(label)
	col.A = c.opts.SegmentationAlpha
	return classStyle{visible: true, px: premultiply(col)}
}

// Metric colors each pixel through the mask's colormap, falling back to the
// default colormap and level count. Value 0 means no measurement and is
// drawn black.
func (c *Compositor) Metric(m *annotation.Mask, pixels []int64) (*image.RGBA, error) {
	name := m.Colormap
	if name == "" {
		name = c.opts.DefaultColormap
	}
	levels := m.ColorLevels
	if levels <= 0 {
		levels = c.opts.ColorLevels
	}
	alpha := c.opts.MetricColormapAlpha
	cmap, err := c.colormaps.Generate(name, levels, &alpha)
	if err != nil {
		return nil, err
	}

	zero := premultiply(color.NRGBA{A: c.opts.MetricZeroAlpha})
	lut := make([][4]uint8, cmap.Len())
	for i := range lut {
		col := cmap.At(i)
		col.A = c.opts.MetricValueAlpha
		lut[i] = premultiply(col)
	}

	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	last := int64(len(lut) - 1)
	for i, v := range pixels {
		px := zero
		if v != 0 {
			px = lut[min(max(v, 0), last)]
		}
		copy(img.Pix[i*4:i*4+4], px[:])
	}
	return img, nil
}

func (c *Compositor) colorFor(label string) color.NRGBA {
	if c.colors == nil {
		return palette.ColorFor(label)
	}
	return c.colors.ColorFor(label)
}

func premultiply(c color.NRGBA) [4]uint8 {
	p := color.RGBAModel.Convert(c).(color.RGBA)
	return [4]uint8{p.R, p.G, p.B, p.A}
}
