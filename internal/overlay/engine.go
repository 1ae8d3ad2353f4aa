package overlay

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-overlay-mcp/internal/annotation"
	"github.com/ironsheep/image-overlay-mcp/internal/colormap"
	"github.com/ironsheep/image-overlay-mcp/internal/logging"
	"github.com/ironsheep/image-overlay-mcp/internal/maskcache"
	"github.com/ironsheep/image-overlay-mcp/internal/palette"
	"github.com/ironsheep/image-overlay-mcp/internal/rle"
	"github.com/ironsheep/image-overlay-mcp/internal/tags"
)

// Options holds the tunable rendering constants.
type Options struct {
	SegmentationAlpha   uint8   // flat alpha of segmentation class pixels
	MetricValueAlpha    uint8   // alpha of metric pixels with a value
	MetricZeroAlpha     uint8   // alpha of metric pixels with value 0
	MetricColormapAlpha float64 // alpha the metric colormap is generated with
	RegionFillAlpha     float64 // polygon fill opacity in [0,1]
	StrokeWidth         float64 // box and line stroke width in pixels
	BadgeFontSize       float64 // box badge font size in points; 0 disables badges
	DefaultColormap     string  // used when a metric mask names none
	ColorLevels         int     // used when a metric mask sets no level count
	DecodeWorkers       int     // parallel mask decoders; <= 0 means 1
	MaxMaskPixels       int64   // largest mask width*height decoded; <= 0 means rle.DefaultMaxPixels
}

// DefaultOptions returns the stock rendering constants.
func DefaultOptions() Options {
	return Options{
		SegmentationAlpha:   255,
		MetricValueAlpha:    200,
		MetricZeroAlpha:     255,
		MetricColormapAlpha: 0.5,
		RegionFillAlpha:     0.35,
		StrokeWidth:         3,
		BadgeFontSize:       12,
		DefaultColormap:     "viridis",
		ColorLevels:         255,
		DecodeWorkers:       4,
		MaxMaskPixels:       rle.DefaultMaxPixels,
	}
}

// State is the phase a render is in, or the way it finished.
type State int

const (
	StateIdle State = iota
	StateCompositing
	StateDrawingVectors
	StateDone
	StatePartial // finished, with at least one annotation skipped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCompositing:
		return "compositing"
	case StateDrawingVectors:
		return "drawing_vectors"
	case StateDone:
		return "done"
	case StatePartial:
		return "partial"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stats counts what a render drew.
type Stats struct {
	Masks   int
	Regions int
	Boxes   int
	Lines   int
	Markers int
	Hidden  int // annotations filtered out by tag or score
}

// RenderResult is the outcome of a render.
type RenderResult struct {
	RenderID string
	Surface  *Surface
	Skipped  []annotation.ID
	Issues   []Issue
	State    State
	Drawn    Stats
	Elapsed  time.Duration
}

// issue records a problem with an annotation that was still drawn.
func (r *RenderResult) issue(id annotation.ID, layer string, err error) {
	r.Issues = append(r.Issues, Issue{ID: id, Layer: layer, Err: err})
}

// skip records an issue and, once per id, the skipped annotation.
func (r *RenderResult) skip(id annotation.ID, layer string, err error) {
	r.issue(id, layer, err)
	for _, s := range r.Skipped {
		if s == id {
			return
		}
	}
	r.Skipped = append(r.Skipped, id)
}

// Engine renders annotation documents. It is safe for concurrent use by
// independent renders, each with its own surface.
type Engine struct {
	opts      Options
	logger    *log.Logger
	masks     maskcache.Cache
	colormaps *colormap.Generator
	colors    *palette.Registry
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger. Without one, the logger carried by the render
// context is used.
func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithMaskCache sets the decoded-mask cache.
func WithMaskCache(c maskcache.Cache) EngineOption {
	return func(e *Engine) { e.masks = c }
}

// WithColormaps sets the colormap generator.
func WithColormaps(g *colormap.Generator) EngineOption {
	return func(e *Engine) { e.colormaps = g }
}

// WithPalette sets the label color registry.
func WithPalette(r *palette.Registry) EngineOption {
	return func(e *Engine) { e.colors = r }
}

// NewEngine creates an engine. Unset dependencies default to a null mask
// cache, an in-memory colormap cache and a fresh color registry.
func NewEngine(opts Options, deps ...EngineOption) *Engine {
	e := &Engine{opts: opts}
	for _, d := range deps {
		d(e)
	}
	if e.masks == nil {
		e.masks = maskcache.NewNull()
	}
	if e.colormaps == nil {
		e.colormaps = colormap.NewGenerator(colormap.NewMemoryCache())
	}
	if e.colors == nil {
		e.colors = palette.NewRegistry()
	}
	return e
}

// Options returns the engine's rendering constants.
func (e *Engine) Options() Options { return e.opts }

// maskJob is one visible mask awaiting compositing.
type maskJob struct {
	layer  string
	mask   *annotation.Mask
	pixels []int64
	err    error
}

// Render draws doc onto surface, multiplying every annotation coordinate by
// scale. All masks are composited before any vector shape is drawn.
//
// ctx carries the logger and bounds mask cache I/O; it does not cancel
// drawing.
//
// # Errors
//
// Returns an error wrapping ErrInvalidArgument when surface is nil or has
// no pixels, scale is not a positive finite number, or the threshold is
// outside [0,1]. Every other problem is reported in the result.
func (e *Engine) Render(ctx context.Context, surface *Surface, doc *annotation.Document, vis tags.Visibility, scale float64) (*RenderResult, error) {
	if surface == nil || surface.Empty() {
		return nil, fmt.Errorf("%w: surface has zero dimensions", ErrInvalidArgument)
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: image scale %v must be positive", ErrInvalidArgument, scale)
	}
	if err := vis.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if doc == nil {
		doc = &annotation.Document{}
	}

	start := time.Now()
	res := &RenderResult{RenderID: uuid.NewString(), Surface: surface, State: StateIdle}
	logger := e.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	logger = logger.With("render_id", res.RenderID)

	for _, d := range doc.Diagnostics {
		if !d.Dropped {
			logger.Warn("shape dropped while parsing", "layer", d.Layer, "annotation", d.ID, "err", d.Err)
			res.issue(d.ID, d.Layer, d.Err)
			continue
		}
		logger.Warn("annotation dropped while parsing", "layer", d.Layer, "annotation", d.ID, "err", d.Err)
		res.skip(d.ID, d.Layer, d.Err)
	}

	jobs := e.collectMasks(doc, vis, res)
	e.decodeMasks(ctx, logger, jobs)

	res.State = StateCompositing
	comp := NewCompositor(e.opts, e.colors, e.colormaps)
	for _, j := range jobs {
		drawn, err := e.composite(comp, surface, j, vis, scale)
		if err != nil {
			logger.Warn("mask skipped", "layer", j.layer, "annotation", j.mask.ID, "err", err)
			res.skip(j.mask.ID, j.layer, err)
			continue
		}
		if drawn {
			res.Drawn.Masks++
		}
	}

	res.State = StateDrawingVectors
	canvas := surface.Vectors(e.opts.BadgeFontSize)
	vr := &vectorRenderer{canvas: canvas, opts: e.opts, colors: e.colors, scale: scale}
	for _, layer := range doc.Layers {
		for _, a := range layer.Annotations {
			if a.Kind() == annotation.KindMask {
				continue
			}
			info := a.Base()
			if !vis.Drawn(layer.Name, info.Label, info.Score) {
				res.Drawn.Hidden++
				continue
			}
			errs := vr.draw(a)
			for _, err := range errs {
				logger.Warn("shape skipped", "layer", layer.Name, "annotation", info.ID, "err", err)
				res.skip(info.ID, layer.Name, err)
			}
			if len(errs) == 0 {
				res.Drawn.count(a.Kind())
			}
		}
	}
	if err := canvas.Close(); err != nil {
		logger.Warn("canvas close failed", "err", err)
	}

	res.State = StateDone
	if len(res.Skipped) > 0 {
		res.State = StatePartial
	}
	res.Elapsed = time.Since(start)
	logger.Debug("render finished",
		"state", res.State,
		"masks", res.Drawn.Masks,
		"vectors", res.Drawn.Regions+res.Drawn.Boxes+res.Drawn.Lines+res.Drawn.Markers,
		"hidden", res.Drawn.Hidden,
		"skipped", len(res.Skipped),
		"elapsed", res.Elapsed.Round(time.Millisecond))
	return res, nil
}

func (s *Stats) count(k annotation.Kind) {
	switch k {
	case annotation.KindRegions:
		s.Regions++
	case annotation.KindBoxes:
		s.Boxes++
	case annotation.KindLines:
		s.Lines++
	case annotation.KindMarkers:
		s.Markers++
	case annotation.KindMask:
		s.Masks++
	}
}

// collectMasks returns the visible masks of doc in draw order.
func (e *Engine) collectMasks(doc *annotation.Document, vis tags.Visibility, res *RenderResult) []*maskJob {
	var jobs []*maskJob
	for _, layer := range doc.Layers {
		for _, a := range layer.Annotations {
			m, ok := a.(*annotation.Mask)
			if !ok {
				continue
			}
			if !vis.Drawn(layer.Name, m.Label, m.Score) {
				res.Drawn.Hidden++
				continue
			}
			jobs = append(jobs, &maskJob{layer: layer.Name, mask: m})
		}
	}
	return jobs
}

// decodeMasks fills in the pixels of every job, in parallel. It returns only
// after every job is decoded or has failed.
func (e *Engine) decodeMasks(ctx context.Context, logger *log.Logger, jobs []*maskJob) {
	var g errgroup.Group
	g.SetLimit(max(e.opts.DecodeWorkers, 1))
	for _, j := range jobs {
		g.Go(func() error {
			j.pixels, j.err = e.decodeMask(ctx, logger, j.mask)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Engine) decodeMask(ctx context.Context, logger *log.Logger, m *annotation.Mask) ([]int64, error) {
	want, err := rle.PixelCount(m.Width, m.Height, e.opts.MaxMaskPixels)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mask: %w", err)
	}
	if m.Format == annotation.FormatRaw {
		return m.PixelsLimit(e.opts.MaxMaskPixels)
	}

	key := m.ContentKey()
	px, ok, err := e.masks.Get(ctx, key)
	if err != nil {
		logger.Debug("mask cache read failed", "key", key, "err", err)
	}
	if ok && int64(len(px)) == want {
		return px, nil
	}

	px, err = m.PixelsLimit(e.opts.MaxMaskPixels)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mask: %w", err)
	}
	if err := e.masks.Set(ctx, key, px); err != nil {
		logger.Debug("mask cache write failed", "key", key, "err", err)
	}
	return px, nil
}

// composite draws one decoded mask. It reports false for an empty mask,
// which has nothing to draw.
func (e *Engine) composite(comp *Compositor, surface *Surface, j *maskJob, vis tags.Visibility, scale float64) (bool, error) {
	if j.err != nil {
		return false, j.err
	}
	if j.mask.Width == 0 || j.mask.Height == 0 {
		return false, nil
	}

	var scratch *image.RGBA
	switch j.mask.MaskKind {
	case annotation.MaskSegmentation:
		scratch = comp.Segmentation(j.mask, j.pixels, j.layer, vis)
	case annotation.MaskMetric:
		var err error
		if scratch, err = comp.Metric(j.mask, j.pixels); err != nil {
			return false, err
		}
	default:
		return false, &annotation.UnknownKindError{Kind: "mask/" + j.mask.MaskKind.String()}
	}

	dst := image.Rect(0, 0,
		int(math.Round(float64(j.mask.Width)*scale)),
		int(math.Round(float64(j.mask.Height)*scale)))
	if err := surface.Blit(scratch, dst); err != nil {
		return false, err
	}
	return true, nil
}

// FitScale returns the scale that maps an image of natural size onto the
// target size while preserving aspect ratio. A zero target dimension is
// unconstrained; both zero means 1.
func FitScale(naturalW, naturalH, targetW, targetH int) (float64, error) {
	if naturalW <= 0 || naturalH <= 0 {
		return 0, fmt.Errorf("%w: natural size %dx%d", ErrInvalidArgument, naturalW, naturalH)
	}
	if targetW < 0 || targetH < 0 {
		return 0, fmt.Errorf("%w: target size %dx%d", ErrInvalidArgument, targetW, targetH)
	}
	sx := float64(targetW) / float64(naturalW)
	sy := float64(targetH) / float64(naturalH)
	switch {
	case targetW == 0 && targetH == 0:
		return 1, nil
	case targetW == 0:
		return sy, nil
	case targetH == 0:
		return sx, nil
	default:
		return math.Min(sx, sy), nil
	}
}

// IsInvalidArgument reports whether err came from argument validation.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
