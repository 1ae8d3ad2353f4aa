// Package annotation defines the annotation document rendered by the overlay
// engine and decodes it from JSON.
//
// A Document is an ordered list of layers. Each layer holds annotations of
// five kinds:
//
//   - Regions: closed polygons, filled
//   - Boxes: axis-aligned rectangles with a label badge
//   - Lines: open segments
//   - Markers: circle or raindrop point markers
//   - Mask: segmentation or metric pixel masks, raw or run-length encoded
//
// Annotation is a closed set; every variant in this package implements it and
// no other type can.
//
// # JSON Format
//
//	{
//	  "layers": [
//	    {
//	      "name": "detector",
//	      "annotations": [
//	        {"type": "boxes", "label": "cat", "score": 0.91, "boxes": [[10, 20, 110, 90]]},
//	        {"type": "mask", "kind": "segmentation", "width": 4, "height": 2,
//	         "format": "rle", "data": [0, 3, 1, 5], "class_map": {"1": "cat"}}
//	      ]
//	    }
//	  ]
//	}
//
// Box and line coordinates are [x1, y1, x2, y2]. Polygons are flat
// [x0, y0, x1, y1, ...] lists. Optional fields (score, class_map, colormap,
// color_levels, per_class_scores) may be omitted.
//
// # Diagnostics
//
// Parse never fails on a single bad annotation. Unknown annotation types,
// unknown marker shapes and malformed coordinate lists are dropped and
// recorded in Document.Diagnostics, so the renderer can report them as skipped
// while drawing the rest of the document.
package annotation
