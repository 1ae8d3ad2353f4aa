package overlay

import (
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

var badgeFont = sync.OnceValues(func() (*text.FontSource, error) {
	return text.NewFontSource(goregular.TTF)
})

// badgePadding is the gap between badge text and its background edge.
const badgePadding = 2.0

// Canvas draws vector shapes onto a surface. All coordinates are in surface
// pixels. A canvas belongs to one render and is not safe for concurrent use.
type Canvas struct {
	surface *Surface
	dc      *gg.Context
	face    text.Face
	closed  bool
}

func newCanvas(s *Surface, fontSize float64) *Canvas {
	c := &Canvas{surface: s, dc: gg.NewContextForImage(s.img)}
	if src, err := badgeFont(); err == nil && fontSize > 0 {
		c.face = src.Face(fontSize)
		c.dc.SetFont(c.face)
	}
	return c
}

func (c *Canvas) setColor(col color.NRGBA) {
	c.dc.SetRGBA(float64(col.R)/255, float64(col.G)/255, float64(col.B)/255, float64(col.A)/255)
}

// FillPolygon fills the closed polygon given as flat x, y pairs and outlines
// it with stroke at strokeWidth. A zero strokeWidth skips the outline.
func (c *Canvas) FillPolygon(points []float64, fill, stroke color.NRGBA, strokeWidth float64) error {
	if len(points) < 6 {
		return nil
	}
	trace := func() {
		c.dc.MoveTo(points[0], points[1])
		for i := 2; i+1 < len(points); i += 2 {
			c.dc.LineTo(points[i], points[i+1])
		}
		c.dc.ClosePath()
	}

	trace()
	c.setColor(fill)
	if err := c.dc.Fill(); err != nil {
		return err
	}
	if strokeWidth <= 0 {
		return nil
	}
	trace()
	c.setColor(stroke)
	c.dc.SetLineWidth(strokeWidth)
	return c.dc.Stroke()
}

// StrokeRect outlines the rectangle with corners (x1, y1) and (x2, y2).
func (c *Canvas) StrokeRect(x1, y1, x2, y2 float64, col color.NRGBA, width float64) error {
	x, y := math.Min(x1, x2), math.Min(y1, y2)
	c.dc.DrawRectangle(x, y, math.Abs(x2-x1), math.Abs(y2-y1))
	c.setColor(col)
	c.dc.SetLineWidth(width)
	return c.dc.Stroke()
}

// StrokeLine draws a segment.
func (c *Canvas) StrokeLine(x1, y1, x2, y2 float64, col color.NRGBA, width float64) error {
	c.dc.DrawLine(x1, y1, x2, y2)
	c.setColor(col)
	c.dc.SetLineWidth(width)
	return c.dc.Stroke()
}

// FillCircle fills a disc of radius r.
func (c *Canvas) FillCircle(x, y, r float64, col color.NRGBA) error {
	if r <= 0 {
		return nil
	}
	c.dc.DrawCircle(x, y, r)
	c.setColor(col)
	return c.dc.Fill()
}

// StrokeCircle outlines a circle of radius r.
func (c *Canvas) StrokeCircle(x, y, r float64, col color.NRGBA, width float64) error {
	if r <= 0 || width <= 0 {
		return nil
	}
	c.dc.DrawCircle(x, y, r)
	c.setColor(col)
	c.dc.SetLineWidth(width)
	return c.dc.Stroke()
}

// Raindrop draws a teardrop marker whose tip sits at (x, y) and whose round
// head of radius r sits above it. The head carries a highlight disc; when
// borderWidth is positive the outline is stroked in border.
func (c *Canvas) Raindrop(x, y, r float64, fill, highlight, border color.NRGBA, borderWidth float64) error {
	if r <= 0 {
		return nil
	}
	cx, cy := x, y-2*r
	trace := func() {
		c.dc.MoveTo(x, y)
		c.dc.CubicTo(x, y-0.6*r, cx-r, cy+0.9*r, cx-r, cy)
		c.dc.DrawArc(cx, cy, r, math.Pi, 2*math.Pi)
		c.dc.CubicTo(cx+r, cy+0.9*r, x, y-0.6*r, x, y)
		c.dc.ClosePath()
	}

	trace()
	c.setColor(fill)
	if err := c.dc.Fill(); err != nil {
		return err
	}
	if err := c.FillCircle(cx-0.25*r, cy-0.3*r, 0.35*r, highlight); err != nil {
		return err
	}
	if borderWidth <= 0 {
		return nil
	}
	trace()
	c.setColor(border)
	c.dc.SetLineWidth(borderWidth)
	return c.dc.Stroke()
}

// Badge draws label on a solid background whose bottom-left corner is at
// (x, y). When that would leave the top of the surface, the badge is placed
// inside the corner instead.
func (c *Canvas) Badge(x, y float64, label string, bg, fg color.NRGBA) error {
	if c.face == nil || label == "" {
		return nil
	}
	m := c.face.Metrics()
	w := c.face.Advance(label) + 2*badgePadding
	h := m.Ascent + m.Descent + 2*badgePadding

	top := y - h
	if top < 0 {
		top = y
	}
	c.dc.DrawRectangle(x, top, w, h)
	c.setColor(bg)
	if err := c.dc.Fill(); err != nil {
		return err
	}
	c.setColor(fg)
	c.dc.DrawString(label, x+badgePadding, top+badgePadding+m.Ascent)
	return nil
}

// Close commits the drawn pixels to the surface. It is safe to call more
// than once.
func (c *Canvas) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	out := c.dc.Image()
	draw.Draw(c.surface.img, c.surface.img.Bounds(), out, out.Bounds().Min, draw.Src)
	return c.dc.Close()
}
