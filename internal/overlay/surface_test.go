package overlay

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/image-overlay-mcp/internal/palette"
)

func TestNewSurfaceFrom_CopiesAndTranslates(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 20, 14, 23))
	src.SetNRGBA(10, 20, color.NRGBA{R: 9, G: 8, B: 7, A: 255})

	s := NewSurfaceFrom(src)
	if s.Width() != 4 || s.Height() != 3 {
		t.Fatalf("size: got %dx%d, want 4x3", s.Width(), s.Height())
	}
	if got := s.Image().RGBAAt(0, 0); got != (color.RGBA{9, 8, 7, 255}) {
		t.Errorf("pixel (0,0): got %v", got)
	}

	s.Image().SetRGBA(1, 1, color.RGBA{A: 255})
	if src.NRGBAAt(11, 21).A != 0 {
		t.Error("surface should own a copy of the source pixels")
	}
}

func TestNewSurface(t *testing.T) {
	if !NewSurface(0, 5).Empty() {
		t.Error("zero-width surface should be empty")
	}
	if !NewSurface(-3, 5).Empty() {
		t.Error("negative size should clamp to empty")
	}
	if NewSurface(2, 2).Empty() {
		t.Error("2x2 surface should not be empty")
	}
}

func TestSurface_BlitScalesAndComposites(t *testing.T) {
	s := whiteSurface(4, 4)
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	// (1,0) and the bottom row stay transparent.
	src.SetRGBA(0, 1, color.RGBA{B: 255, A: 255})

	if err := s.Blit(src, image.Rect(0, 0, 4, 4)); err != nil {
		t.Fatalf("Blit failed: %v", err)
	}

	img := s.Image()
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, color.RGBA{255, 0, 0, 255}},
		{1, 1, color.RGBA{255, 0, 0, 255}},
		{3, 0, white},
		{0, 3, color.RGBA{0, 0, 255, 255}},
		{3, 3, white},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d): got %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestSurface_BlitAfterVectorsFails(t *testing.T) {
	s := whiteSurface(4, 4)
	c := s.Vectors(0)
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	err := s.Blit(image.NewRGBA(image.Rect(0, 0, 1, 1)), image.Rect(0, 0, 4, 4))
	if !errors.Is(err, ErrPhaseViolation) {
		t.Errorf("expected ErrPhaseViolation, got %v", err)
	}
}

func TestCanvas_CommitsOnClose(t *testing.T) {
	s := whiteSurface(10, 10)
	c := s.Vectors(12)
	red := color.NRGBA{R: 255, A: 255}
	if err := c.FillCircle(5, 5, 4, red); err != nil {
		t.Fatalf("FillCircle failed: %v", err)
	}
	if got := s.Image().RGBAAt(5, 5); got != white {
		t.Errorf("pixels should not change before Close, got %v", got)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if got := s.Image().RGBAAt(5, 5); !near(got, color.RGBA{255, 0, 0, 255}, 2) {
		t.Errorf("center after Close: got %v", got)
	}
	if got := s.Image().RGBAAt(0, 9); got != white {
		t.Errorf("corner should be untouched, got %v", got)
	}
}

func TestCanvas_Raindrop(t *testing.T) {
	s := whiteSurface(20, 20)
	c := s.Vectors(0)
	fill := palette.ColorFor("poi")
	if err := c.Raindrop(10, 18, 4, fill, palette.Lighten(fill, 0.5), palette.ContrastingTextColor(fill), 1); err != nil {
		t.Fatalf("Raindrop failed: %v", err)
	}
	c.Close()

	img := s.Image()
	// The head is centered 2r above the tip.
	if got := img.RGBAAt(10, 12); got == white {
		t.Error("raindrop body should cover (10,12)")
	}
	if got := img.RGBAAt(10, 2); got != white {
		t.Errorf("above the head should be untouched, got %v", got)
	}
	if got := img.RGBAAt(2, 18); got != white {
		t.Errorf("beside the tip should be untouched, got %v", got)
	}
}

func TestCanvas_BadgeWithoutFont(t *testing.T) {
	s := whiteSurface(10, 10)
	c := s.Vectors(0)
	if err := c.Badge(0, 5, "x", color.NRGBA{A: 255}, color.NRGBA{R: 255, G: 255, B: 255, A: 255}); err != nil {
		t.Fatalf("Badge failed: %v", err)
	}
	c.Close()
	if got := s.Image().RGBAAt(1, 2); got != white {
		t.Errorf("badge with font size 0 should draw nothing, got %v", got)
	}
}

func TestBadgeText(t *testing.T) {
	tests := []struct {
		label string
		score *float64
		want  string
	}{
		{"cat", nil, "cat"},
		{"label", ptr(0.4), "label: 0.400"},
		{"cat", ptr(0.98765), "cat: 0.987"},
		{"cat", ptr(1), "cat: 1.000"},
		{"cat", ptr(0.0005), "cat: 0.000"},
	}
	for _, tt := range tests {
		if got := BadgeText(tt.label, tt.score); got != tt.want {
			t.Errorf("BadgeText(%q, %v) = %q, want %q", tt.label, tt.score, got, tt.want)
		}
	}
}
