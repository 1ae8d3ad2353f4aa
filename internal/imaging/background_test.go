package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestPrepareBackground_Resize(t *testing.T) {
	src := solidImage(40, 20, color.RGBA{200, 100, 50, 255})

	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{"natural size", 0, 0, 40, 20},
		{"downscale", 20, 10, 20, 10},
		{"upscale", 80, 40, 80, 40},
		{"width only", 10, 0, 10, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := PrepareBackground(src, tt.width, tt.height, BackgroundOptions{})
			if err != nil {
				t.Fatalf("PrepareBackground failed: %v", err)
			}
			if out.Bounds() != image.Rect(0, 0, tt.wantW, tt.wantH) {
				t.Errorf("bounds: got %v", out.Bounds())
			}
			got := out.RGBAAt(out.Bounds().Dx()/2, out.Bounds().Dy()/2)
			if absDiff(got.R, 200) > 2 || absDiff(got.G, 100) > 2 || absDiff(got.B, 50) > 2 {
				t.Errorf("center pixel: got %v", got)
			}
		})
	}
}

func TestPrepareBackground_DoesNotAliasInput(t *testing.T) {
	src := solidImage(4, 4, color.White)
	out, err := PrepareBackground(src, 0, 0, BackgroundOptions{})
	if err != nil {
		t.Fatalf("PrepareBackground failed: %v", err)
	}
	out.SetRGBA(0, 0, color.RGBA{A: 255})
	if src.RGBAAt(0, 0) != (color.RGBA{255, 255, 255, 255}) {
		t.Error("source image was modified")
	}
}

func TestPrepareBackground_Grayscale(t *testing.T) {
	src := solidImage(4, 4, color.RGBA{255, 0, 0, 255})
	out, err := PrepareBackground(src, 0, 0, BackgroundOptions{Grayscale: true})
	if err != nil {
		t.Fatalf("PrepareBackground failed: %v", err)
	}
	got := out.RGBAAt(1, 1)
	if got.R != got.G || got.G != got.B {
		t.Errorf("pixel should be gray, got %v", got)
	}
	if got.A != 255 {
		t.Errorf("alpha: got %d, want 255", got.A)
	}
}

func TestPrepareBackground_Dim(t *testing.T) {
	src := solidImage(4, 4, color.White)

	out, err := PrepareBackground(src, 0, 0, BackgroundOptions{Dim: 0.5})
	if err != nil {
		t.Fatalf("PrepareBackground failed: %v", err)
	}
	got := out.RGBAAt(2, 2)
	if got.R >= 255 || got.R < 100 || got.R > 160 {
		t.Errorf("dimmed white: got %v, want about half brightness", got)
	}

	out, err = PrepareBackground(src, 0, 0, BackgroundOptions{Dim: 1})
	if err != nil {
		t.Fatalf("PrepareBackground failed: %v", err)
	}
	if got := out.RGBAAt(2, 2); got.R > 2 || got.G > 2 || got.B > 2 {
		t.Errorf("fully dimmed: got %v, want black", got)
	}
}

func TestPrepareBackground_Errors(t *testing.T) {
	src := solidImage(4, 4, color.White)
	tests := []struct {
		name string
		img  image.Image
		w, h int
		opts BackgroundOptions
	}{
		{"negative dim", src, 0, 0, BackgroundOptions{Dim: -0.1}},
		{"dim above one", src, 0, 0, BackgroundOptions{Dim: 1.5}},
		{"negative width", src, -1, 4, BackgroundOptions{}},
		{"empty image", image.NewRGBA(image.Rect(0, 0, 0, 0)), 4, 4, BackgroundOptions{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PrepareBackground(tt.img, tt.w, tt.h, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEncodePNGBase64(t *testing.T) {
	src := solidImage(6, 3, color.RGBA{10, 20, 30, 255})
	enc, err := EncodePNGBase64(src)
	if err != nil {
		t.Fatalf("EncodePNGBase64 failed: %v", err)
	}
	if enc.Width != 6 || enc.Height != 3 || enc.MimeType != "image/png" {
		t.Errorf("metadata: got %+v", enc)
	}

	data, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid PNG: %v", err)
	}
	r, g, b, _ := decoded.At(2, 1).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Errorf("decoded pixel: got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
