package overlay

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Surface is the render target: an RGBA pixel buffer owned by one render.
type Surface struct {
	img     *image.RGBA
	vectors bool
}

// NewSurface creates a transparent surface of the given size.
func NewSurface(width, height int) *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))}
}

// NewSurfaceFrom creates a surface holding a copy of img, translated so its
// top-left pixel is at (0, 0).
func NewSurfaceFrom(img image.Image) *Surface {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Surface{img: dst}
}

// Image returns the surface pixels. The image is live: it reflects later
// drawing on the surface.
func (s *Surface) Image() *image.RGBA { return s.img }

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.img.Bounds().Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.img.Bounds().Dy() }

// Empty reports whether the surface has no pixels.
func (s *Surface) Empty() bool { return s.img.Bounds().Empty() }

// Blit scales src into dst with nearest-neighbor sampling and composites it
// over the surface.
func (s *Surface) Blit(src *image.RGBA, dst image.Rectangle) error {
	if s.vectors {
		return ErrPhaseViolation
	}
	xdraw.NearestNeighbor.Scale(s.img, dst, src, src.Bounds(), xdraw.Over, nil)
	return nil
}

// Vectors ends the compositing phase and returns a canvas for vector shapes.
// The canvas must be closed to commit its pixels to the surface.
func (s *Surface) Vectors(fontSize float64) *Canvas {
	s.vectors = true
	return newCanvas(s, fontSize)
}
