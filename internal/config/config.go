// Package config loads server and renderer settings with viper.
//
// Settings come from, in increasing priority: built-in defaults, an optional
// YAML file, and IMAGE_OVERLAY_* environment variables (dots become
// underscores, so render.stroke_width is IMAGE_OVERLAY_RENDER_STROKE_WIDTH).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ironsheep/image-overlay-mcp/internal/colormap"
	"github.com/ironsheep/image-overlay-mcp/internal/maskcache"
	"github.com/ironsheep/image-overlay-mcp/internal/overlay"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "IMAGE_OVERLAY"

type Config struct {
	Render   RenderConfig   `mapstructure:"render"`
	Colormap ColormapConfig `mapstructure:"colormap"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
}

type RenderConfig struct {
	SegmentationAlpha   int     `mapstructure:"segmentation_alpha"`
	MetricValueAlpha    int     `mapstructure:"metric_value_alpha"`
	MetricZeroAlpha     int     `mapstructure:"metric_zero_alpha"`
	MetricColormapAlpha float64 `mapstructure:"metric_colormap_alpha"`
	RegionFillAlpha     float64 `mapstructure:"region_fill_alpha"`
	StrokeWidth         float64 `mapstructure:"stroke_width"`
	BadgeFontSize       float64 `mapstructure:"badge_font_size"`
	DecodeWorkers       int     `mapstructure:"decode_workers"`
	MaxMaskPixels       int64   `mapstructure:"max_mask_pixels"`
}

type ColormapConfig struct {
	Default string `mapstructure:"default"`
	Levels  int    `mapstructure:"levels"`
}

type CacheConfig struct {
	Backend    string      `mapstructure:"backend"` // memory, redis or none
	MaxEntries int         `mapstructure:"max_entries"`
	Redis      RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads the YAML file at path over the defaults. An empty path loads
// defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// New loads path, falling back to defaults when the file does not exist.
// Any other read or validation error is returned.
func New(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Load("")
	}
	return cfg, err
}

// Default returns the built-in configuration, ignoring files and the
// environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	o := overlay.DefaultOptions()
	v.SetDefault("render.segmentation_alpha", int(o.SegmentationAlpha))
	v.SetDefault("render.metric_value_alpha", int(o.MetricValueAlpha))
	v.SetDefault("render.metric_zero_alpha", int(o.MetricZeroAlpha))
	v.SetDefault("render.metric_colormap_alpha", o.MetricColormapAlpha)
	v.SetDefault("render.region_fill_alpha", o.RegionFillAlpha)
	v.SetDefault("render.stroke_width", o.StrokeWidth)
	v.SetDefault("render.badge_font_size", o.BadgeFontSize)
	v.SetDefault("render.decode_workers", o.DecodeWorkers)
	v.SetDefault("render.max_mask_pixels", o.MaxMaskPixels)

	v.SetDefault("colormap.default", o.DefaultColormap)
	v.SetDefault("colormap.levels", o.ColorLevels)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_entries", 64)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.ttl", 24*time.Hour)

	v.SetDefault("log.level", "info")
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	r := c.Render
	for name, a := range map[string]int{
		"render.segmentation_alpha": r.SegmentationAlpha,
		"render.metric_value_alpha": r.MetricValueAlpha,
		"render.metric_zero_alpha":  r.MetricZeroAlpha,
	} {
		if a < 0 || a > 255 {
			return fmt.Errorf("%s: %d outside [0,255]", name, a)
		}
	}
	for name, a := range map[string]float64{
		"render.metric_colormap_alpha": r.MetricColormapAlpha,
		"render.region_fill_alpha":     r.RegionFillAlpha,
	} {
		if a < 0 || a > 1 {
			return fmt.Errorf("%s: %v outside [0,1]", name, a)
		}
	}
	if r.StrokeWidth <= 0 {
		return fmt.Errorf("render.stroke_width must be positive, got %v", r.StrokeWidth)
	}
	if r.BadgeFontSize < 0 {
		return fmt.Errorf("render.badge_font_size must not be negative, got %v", r.BadgeFontSize)
	}
	if r.MaxMaskPixels <= 0 {
		return fmt.Errorf("render.max_mask_pixels must be positive, got %d", r.MaxMaskPixels)
	}
	if c.Colormap.Levels < 2 || c.Colormap.Levels > colormap.MaxShades {
		return fmt.Errorf("colormap.levels must be in [2,%d], got %d", colormap.MaxShades, c.Colormap.Levels)
	}
	switch c.Cache.Backend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	return nil
}

// OverlayOptions converts the render settings to engine options.
func (c *Config) OverlayOptions() overlay.Options {
	r := c.Render
	return overlay.Options{
		SegmentationAlpha:   uint8(r.SegmentationAlpha),
		MetricValueAlpha:    uint8(r.MetricValueAlpha),
		MetricZeroAlpha:     uint8(r.MetricZeroAlpha),
		MetricColormapAlpha: r.MetricColormapAlpha,
		RegionFillAlpha:     r.RegionFillAlpha,
		StrokeWidth:         r.StrokeWidth,
		BadgeFontSize:       r.BadgeFontSize,
		DefaultColormap:     c.Colormap.Default,
		ColorLevels:         c.Colormap.Levels,
		DecodeWorkers:       r.DecodeWorkers,
		MaxMaskPixels:       r.MaxMaskPixels,
	}
}

// MaskCache builds the configured decoded-mask cache.
func (c *Config) MaskCache() maskcache.Cache {
	switch c.Cache.Backend {
	case "redis":
		return maskcache.NewRedis(maskcache.RedisOptions{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
			TTL:      c.Cache.Redis.TTL,
		})
	case "none":
		return maskcache.NewNull()
	default:
		return maskcache.NewMemory(c.Cache.MaxEntries)
	}
}
