package overlay

import (
	"fmt"
	"image/color"
	"math"

	"github.com/ironsheep/image-overlay-mcp/internal/annotation"
	"github.com/ironsheep/image-overlay-mcp/internal/palette"
)

// vectorRenderer draws the non-mask annotation variants at a fixed scale.
type vectorRenderer struct {
	canvas *Canvas
	opts   Options
	colors *palette.Registry
	scale  float64
}

func (r *vectorRenderer) colorFor(label string) color.NRGBA {
	if r.colors == nil {
		return palette.ColorFor(label)
	}
	return r.colors.ColorFor(label)
}

// draw renders a and returns the errors of any shapes it could not draw.
// Shapes after a failed one are still attempted.
func (r *vectorRenderer) draw(a annotation.Annotation) []error {
	s := r.scale
	col := r.colorFor(a.Base().Label)
	var errs []error
	keep := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	switch v := a.(type) {
	case *annotation.Regions:
		fill := palette.WithAlpha(col, uint8(math.Round(r.opts.RegionFillAlpha*255)))
		stroke := palette.ContrastingTextColor(col)
		for _, poly := range v.Polygons {
			pts := make([]float64, len(poly))
			for i, p := range poly {
				pts[i] = p * s
			}
			keep(r.canvas.FillPolygon(pts, fill, stroke, 1))
		}

	case *annotation.Boxes:
		for i, b := range v.Boxes {
			x1, y1, x2, y2 := b[0]*s, b[1]*s, b[2]*s, b[3]*s
			keep(r.canvas.StrokeRect(x1, y1, x2, y2, col, r.opts.StrokeWidth))
			if i == 0 {
				keep(r.canvas.Badge(math.Min(x1, x2), math.Min(y1, y2), BadgeText(v.Label, v.Score), col, palette.ContrastingTextColor(col)))
			}
		}

	case *annotation.Lines:
		for _, l := range v.Lines {
			keep(r.canvas.StrokeLine(l[0]*s, l[1]*s, l[2]*s, l[3]*s, col, r.opts.StrokeWidth))
		}

	case *annotation.Markers:
		contrast := palette.ContrastingTextColor(col)
		for _, m := range v.Markers {
			x, y := m.X*s, m.Y*s
			switch m.Shape {
			case annotation.ShapeCircle:
				keep(r.canvas.FillCircle(x, y, m.Size, col))
				keep(r.canvas.StrokeCircle(x, y, m.Size, contrast, m.BorderWidth))
			case annotation.ShapeRaindrop:
				keep(r.canvas.Raindrop(x, y, m.Size, col, palette.Lighten(col, 0.5), contrast, m.BorderWidth))
			default:
				keep(&annotation.UnknownShapeError{Shape: m.Shape.String()})
			}
		}

	default:
		keep(fmt.Errorf("%s annotations are not vector shapes", a.Kind()))
	}
	return errs
}

// BadgeText formats the label shown above a box: "label: 0.400" with the
// score truncated to three decimals, or just the label without a score.
func BadgeText(label string, score *float64) string {
	if score == nil {
		return label
	}
	truncated := math.Floor(*score*1000+1e-9) / 1000
	return fmt.Sprintf("%s: %.3f", label, truncated)
}
