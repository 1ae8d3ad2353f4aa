package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ironsheep/image-overlay-mcp/internal/maskcache"
	"github.com/ironsheep/image-overlay-mcp/internal/overlay"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Render.SegmentationAlpha != 255 || cfg.Render.MetricValueAlpha != 200 || cfg.Render.MetricZeroAlpha != 255 {
		t.Errorf("mask alphas: got %+v", cfg.Render)
	}
	if cfg.Colormap.Default != "viridis" || cfg.Colormap.Levels != 255 {
		t.Errorf("colormap: got %+v", cfg.Colormap)
	}
	if cfg.Cache.Backend != "memory" || cfg.Cache.Redis.Addr != "localhost:6379" || cfg.Cache.Redis.TTL != 24*time.Hour {
		t.Errorf("cache: got %+v", cfg.Cache)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level: got %q", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if got := cfg.OverlayOptions(); got != overlay.DefaultOptions() {
		t.Errorf("OverlayOptions: got %+v, want %+v", got, overlay.DefaultOptions())
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
render:
  stroke_width: 5
  metric_value_alpha: 128
  max_mask_pixels: 1000
colormap:
  default: magma
cache:
  backend: none
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Render.StrokeWidth != 5 || cfg.Render.MetricValueAlpha != 128 {
		t.Errorf("render: got %+v", cfg.Render)
	}
	if cfg.OverlayOptions().MaxMaskPixels != 1000 {
		t.Errorf("max mask pixels: got %d, want 1000", cfg.OverlayOptions().MaxMaskPixels)
	}
	if cfg.Render.SegmentationAlpha != 255 {
		t.Errorf("unset keys should keep defaults, got %d", cfg.Render.SegmentationAlpha)
	}
	if cfg.Colormap.Default != "magma" || cfg.Cache.Backend != "none" || cfg.Log.Level != "debug" {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("IMAGE_OVERLAY_RENDER_STROKE_WIDTH", "7")
	t.Setenv("IMAGE_OVERLAY_COLORMAP_DEFAULT", "jet")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Render.StrokeWidth != 7 {
		t.Errorf("stroke width: got %v, want 7", cfg.Render.StrokeWidth)
	}
	if cfg.Colormap.Default != "jet" {
		t.Errorf("colormap: got %q, want jet", cfg.Colormap.Default)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid yaml", "render: [unclosed"},
		{"alpha out of range", "render:\n  segmentation_alpha: 300\n"},
		{"fill alpha out of range", "render:\n  region_fill_alpha: 2\n"},
		{"zero stroke", "render:\n  stroke_width: 0\n"},
		{"too few levels", "colormap:\n  levels: 1\n"},
		{"too many levels", "colormap:\n  levels: 100000\n"},
		{"zero mask pixel limit", "render:\n  max_mask_pixels: 0\n"},
		{"unknown backend", "cache:\n  backend: memcached\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNew_MissingFileFallsBack(t *testing.T) {
	cfg, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if cfg.Render.StrokeWidth != 3 {
		t.Errorf("expected defaults, got %+v", cfg.Render)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load should fail for a missing file")
	}
	if _, err := New(writeConfig(t, "render: [unclosed")); err == nil {
		t.Error("New should report parse errors")
	}
}

func TestMaskCache(t *testing.T) {
	cfg := Default()

	if _, ok := cfg.MaskCache().(*maskcache.Memory); !ok {
		t.Errorf("memory backend: got %T", cfg.MaskCache())
	}

	cfg.Cache.Backend = "none"
	if _, ok := cfg.MaskCache().(maskcache.Null); !ok {
		t.Errorf("none backend: got %T", cfg.MaskCache())
	}

	cfg.Cache.Backend = "redis"
	c := cfg.MaskCache()
	defer c.Close()
	if _, ok := c.(*maskcache.Redis); !ok {
		t.Errorf("redis backend: got %T", c)
	}
}
