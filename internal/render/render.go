// Package render runs the full overlay pipeline for one source image: load,
// fit to the target size, prepare the background, and draw the annotation
// document over it.
package render

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/image-overlay-mcp/internal/annotation"
	"github.com/ironsheep/image-overlay-mcp/internal/imaging"
	"github.com/ironsheep/image-overlay-mcp/internal/overlay"
	"github.com/ironsheep/image-overlay-mcp/internal/tags"
)

// Request describes one render.
type Request struct {
	ImagePath string
	Document  *annotation.Document

	// Width and Height bound the output size. The image keeps its aspect
	// ratio; zero leaves an axis unconstrained.
	Width, Height int

	Visibility tags.Visibility
	Background imaging.BackgroundOptions
}

func (req Request) validate() error {
	if err := req.Background.Validate(); err != nil {
		return fmt.Errorf("%w: %v", overlay.ErrInvalidArgument, err)
	}
	return nil
}

// Result is a finished render.
type Result struct {
	*overlay.RenderResult
	Scale  float64
	Width  int
	Height int
}

// Image returns the rendered pixels.
func (r *Result) Image() *image.RGBA { return r.Surface.Image() }

// Renderer runs requests against a shared image cache and engine.
type Renderer struct {
	images *imaging.ImageCache
	engine *overlay.Engine
}

// New creates a renderer.
func New(images *imaging.ImageCache, engine *overlay.Engine) *Renderer {
	return &Renderer{images: images, engine: engine}
}

// Images returns the source image cache.
func (r *Renderer) Images() *imaging.ImageCache { return r.images }

// Engine returns the overlay engine.
func (r *Renderer) Engine() *overlay.Engine { return r.engine }

// Render loads req.ImagePath and renders req over it.
func (r *Renderer) Render(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	img, err := r.images.Load(req.ImagePath)
	if err != nil {
		return nil, err
	}
	return r.RenderImage(ctx, img, req)
}

// RenderImage renders req over an already decoded image; req.ImagePath is
// ignored. Invalid request options return an error wrapping
// overlay.ErrInvalidArgument.
func (r *Renderer) RenderImage(ctx context.Context, img image.Image, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	scale, err := overlay.FitScale(b.Dx(), b.Dy(), req.Width, req.Height)
	if err != nil {
		return nil, err
	}
	w := max(int(math.Round(float64(b.Dx())*scale)), 1)
	h := max(int(math.Round(float64(b.Dy())*scale)), 1)

	bg, err := imaging.PrepareBackground(img, w, h, req.Background)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare background: %w", err)
	}

	res, err := r.engine.Render(ctx, overlay.NewSurfaceFrom(bg), req.Document, req.Visibility, scale)
	if err != nil {
		return nil, err
	}
	return &Result{RenderResult: res, Scale: scale, Width: w, Height: h}, nil
}
