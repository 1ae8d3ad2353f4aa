package imaging

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// BackgroundOptions controls how a source image is prepared as an overlay
// background.
type BackgroundOptions struct {
	// Dim darkens the image by this fraction in [0,1].
	Dim float64
	// Grayscale removes color so annotation colors are easier to read.
	Grayscale bool
}

// Validate checks that Dim is within [0,1].
func (o BackgroundOptions) Validate() error {
	if o.Dim < 0 || o.Dim > 1 {
		return fmt.Errorf("dim %v outside [0,1]", o.Dim)
	}
	return nil
}

// PrepareBackground returns a new RGBA image of exactly width×height holding
// img resampled with a Lanczos filter, then desaturated and dimmed as opts
// ask. A zero width or height keeps the natural size on that axis.
func PrepareBackground(img image.Image, width, height int, opts BackgroundOptions) (*image.RGBA, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("image has zero dimensions")
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}
	if width == 0 {
		width = b.Dx()
	}
	if height == 0 {
		height = b.Dy()
	}

	out := img
	if width != b.Dx() || height != b.Dy() {
		out = imaging.Resize(img, width, height, imaging.Lanczos)
	}
	if opts.Grayscale {
		out = effect.Grayscale(out)
	}
	if opts.Dim > 0 {
		out = adjust.Brightness(out, -opts.Dim)
	}
	return toRGBA(out), nil
}

// toRGBA copies img into a fresh RGBA image anchored at the origin.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
