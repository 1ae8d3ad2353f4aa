// Package overlay composites annotation documents onto an image surface.
//
// A render runs in two phases over one exclusively owned [Surface]:
//
//  1. Compositing: every visible mask across all layers is decoded,
//     colorized into a scratch buffer and blitted, scaled, onto the surface.
//  2. Vector drawing: regions, boxes, lines and markers across all layers
//     are drawn through a [Canvas] obtained from Surface.Vectors.
//
// The surface refuses mask blits once the vector phase has begun, so masks
// can never occlude vector shapes.
//
// # Visibility
//
// An annotation is drawn when its "layer: label" tag is not hidden and it
// has no score or a score above the threshold. Segmentation masks apply the
// same rule per class, using per_class_scores when present.
//
// # Failure handling
//
// Only an invalid surface, scale or threshold fails [Engine.Render], with
// [ErrInvalidArgument]. Per-annotation problems (malformed run-length data,
// unknown colormaps, unknown marker shapes) skip the offending item, are
// recorded in [RenderResult], and the render continues.
//
// # Example
//
//	eng := overlay.NewEngine(overlay.DefaultOptions(),
//	    overlay.WithMaskCache(maskcache.NewMemory(64)))
//	surface := overlay.NewSurfaceFrom(background)
//	res, err := eng.Render(ctx, surface, doc, tags.Visibility{ScoreThreshold: 0.5}, scale)
//	if err != nil {
//	    return err
//	}
//	png.Encode(w, res.Surface.Image())
package overlay
