package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/image-overlay-mcp/internal/annotation"
	"github.com/ironsheep/image-overlay-mcp/internal/imaging"
	"github.com/ironsheep/image-overlay-mcp/internal/overlay"
	"github.com/ironsheep/image-overlay-mcp/internal/tags"
)

func newRenderer() *Renderer {
	return New(imaging.NewImageCache(), overlay.NewEngine(overlay.DefaultOptions()))
}

func grayImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func TestRenderImage_FitsTarget(t *testing.T) {
	doc := &annotation.Document{Layers: []annotation.Layer{{
		Name: "det",
		Annotations: []annotation.Annotation{&annotation.Boxes{
			Info:  annotation.Info{ID: "b", Label: "car"},
			Boxes: [][4]float64{{10, 10, 90, 40}},
		}},
	}}}

	res, err := newRenderer().RenderImage(context.Background(), grayImage(200, 100), Request{Document: doc, Width: 100})
	if err != nil {
		t.Fatalf("RenderImage failed: %v", err)
	}
	if res.Scale != 0.5 {
		t.Errorf("Scale: got %v, want 0.5", res.Scale)
	}
	if res.Image().Bounds() != image.Rect(0, 0, 100, 50) {
		t.Errorf("bounds: got %v", res.Image().Bounds())
	}
	if res.Drawn.Boxes != 1 || res.State != overlay.StateDone {
		t.Errorf("result: state %v, drawn %+v", res.State, res.Drawn)
	}
	// The box's right edge at x=90 lands at x=45 after scaling.
	if got := res.Image().RGBAAt(45, 15); got == (color.RGBA{128, 128, 128, 255}) {
		t.Error("scaled box edge should be drawn")
	}
}

func TestRender_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if err := png.Encode(f, grayImage(20, 10)); err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	f.Close()

	r := newRenderer()
	res, err := r.Render(context.Background(), Request{
		ImagePath:  path,
		Document:   &annotation.Document{},
		Visibility: tags.Visibility{ScoreThreshold: 0.2},
		Background: imaging.BackgroundOptions{Dim: 0.5},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if res.Width != 20 || res.Height != 10 || res.Scale != 1 {
		t.Errorf("size: got %dx%d at %v", res.Width, res.Height, res.Scale)
	}
	if got := res.Image().RGBAAt(5, 5); got.R >= 128 {
		t.Errorf("background should be dimmed, got %v", got)
	}
	if r.Images().Len() != 1 {
		t.Error("source image should be cached")
	}
}

func TestRender_Errors(t *testing.T) {
	r := newRenderer()
	ctx := context.Background()

	if _, err := r.Render(ctx, Request{ImagePath: "/nonexistent.png"}); err == nil {
		t.Error("expected error for missing image")
	}
	if _, err := r.RenderImage(ctx, grayImage(4, 4), Request{Width: -1}); !errors.Is(err, overlay.ErrInvalidArgument) {
		t.Errorf("negative width: got %v", err)
	}
	if _, err := r.RenderImage(ctx, grayImage(4, 4), Request{Background: imaging.BackgroundOptions{Dim: 3}}); !errors.Is(err, overlay.ErrInvalidArgument) {
		t.Errorf("dim outside [0,1]: got %v", err)
	}
	if _, err := r.Render(ctx, Request{ImagePath: "/nonexistent.png", Background: imaging.BackgroundOptions{Dim: -0.5}}); !overlay.IsInvalidArgument(err) {
		t.Errorf("dim checked before loading: got %v", err)
	}
	if _, err := r.RenderImage(ctx, grayImage(4, 4), Request{Visibility: tags.Visibility{ScoreThreshold: -1}}); !errors.Is(err, overlay.ErrInvalidArgument) {
		t.Errorf("bad threshold: got %v", err)
	}
}
