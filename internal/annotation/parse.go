package annotation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type rawDocument struct {
	Layers []rawLayer `json:"layers"`
}

type rawLayer struct {
	Name        string            `json:"name"`
	Annotations []json.RawMessage `json:"annotations"`
}

type rawAnnotation struct {
	ID    string   `json:"id"`
	Type  string   `json:"type"`
	Label string   `json:"label"`
	Score *float64 `json:"score"`

	Points  [][]float64 `json:"points"`
	Boxes   [][]float64 `json:"boxes"`
	Lines   [][]float64 `json:"lines"`
	Markers []rawMarker `json:"markers"`

	Kind           string             `json:"kind"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	Format         string             `json:"format"`
	Data           []int64            `json:"data"`
	ClassMap       map[string]string  `json:"class_map"`
	PerClassScores map[string]float64 `json:"per_class_scores"`
	Colormap       string             `json:"colormap"`
	ColorLevels    int                `json:"color_levels"`
}

type rawMarker struct {
	Shape       string  `json:"shape"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Size        float64 `json:"size"`
	BorderWidth float64 `json:"border_width"`
}

// ParseReader decodes a document from r. See Parse.
func ParseReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotations: %w", err)
	}
	return Parse(data)
}

// Parse decodes an annotation document from JSON.
//
// Only structurally invalid JSON fails the call. Individual annotations that
// cannot be decoded are dropped and recorded in Document.Diagnostics; markers
// with unknown shapes are dropped while their siblings are kept.
func Parse(data []byte) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse annotations: %w", err)
	}

	doc := &Document{Layers: make([]Layer, 0, len(raw.Layers))}
	for li, rl := range raw.Layers {
		name := rl.Name
		if name == "" {
			name = DefaultLayerName
		}
		layer := Layer{Name: name, Annotations: make([]Annotation, 0, len(rl.Annotations))}

		for ai, msg := range rl.Annotations {
			id := ID(fmt.Sprintf("%d/%d", li, ai))

			var ra rawAnnotation
			if err := json.Unmarshal(msg, &ra); err != nil {
				doc.Diagnostics = append(doc.Diagnostics, Diagnostic{ID: id, Layer: name, Err: &MalformedAnnotationError{Reason: err.Error()}, Dropped: true})
				continue
			}
			if ra.ID != "" {
				id = ID(ra.ID)
			}

			a, diags := ra.convert(Info{ID: id, Label: ra.Label, Score: ra.Score})
			for _, err := range diags {
				doc.Diagnostics = append(doc.Diagnostics, Diagnostic{ID: id, Layer: name, Err: err, Dropped: a == nil})
			}
			if a != nil {
				layer.Annotations = append(layer.Annotations, a)
			}
		}
		doc.Layers = append(doc.Layers, layer)
	}
	return doc, nil
}

// convert builds the typed annotation. A nil annotation means the whole
// annotation was dropped; errs may be non-empty either way.
func (ra *rawAnnotation) convert(info Info) (Annotation, []error) {
	switch strings.ToLower(ra.Type) {
	case "regions", "polygons":
		polys := make([][]float64, 0, len(ra.Points))
		for i, p := range ra.Points {
			if len(p)%2 != 0 {
				return nil, []error{&MalformedAnnotationError{Reason: fmt.Sprintf("polygon %d has odd coordinate count %d", i, len(p))}}
			}
			polys = append(polys, p)
		}
		return &Regions{Info: info, Polygons: polys}, nil

	case "boxes":
		boxes, err := quads(ra.Boxes, "box")
		if err != nil {
			return nil, []error{err}
		}
		return &Boxes{Info: info, Boxes: boxes}, nil

	case "lines":
		lines, err := quads(ra.Lines, "line")
		if err != nil {
			return nil, []error{err}
		}
		return &Lines{Info: info, Lines: lines}, nil

	case "markers":
		var errs []error
		markers := make([]Marker, 0, len(ra.Markers))
		for _, rm := range ra.Markers {
			shape, err := ParseMarkerShape(rm.Shape)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			markers = append(markers, Marker{Shape: shape, X: rm.X, Y: rm.Y, Size: rm.Size, BorderWidth: rm.BorderWidth})
		}
		return &Markers{Info: info, Markers: markers}, errs

	case "mask":
		m, err := ra.mask(info)
		if err != nil {
			return nil, []error{err}
		}
		return m, nil

	default:
		return nil, []error{&UnknownKindError{Kind: ra.Type}}
	}
}

func (ra *rawAnnotation) mask(info Info) (*Mask, error) {
	m := &Mask{
		Info:           info,
		Width:          ra.Width,
		Height:         ra.Height,
		Data:           ra.Data,
		PerClassScores: ra.PerClassScores,
		Colormap:       ra.Colormap,
		ColorLevels:    ra.ColorLevels,
	}

	switch strings.ToLower(ra.Kind) {
	case "", "segmentation":
		m.MaskKind = MaskSegmentation
	case "metric":
		m.MaskKind = MaskMetric
	default:
		return nil, &UnknownKindError{Kind: "mask/" + ra.Kind}
	}

	switch strings.ToLower(ra.Format) {
	case "", "raw":
		m.Format = FormatRaw
	case "rle":
		m.Format = FormatRLE
	default:
		return nil, &MalformedAnnotationError{Reason: fmt.Sprintf("unknown mask format %q", ra.Format)}
	}

	if ra.ClassMap != nil {
		m.ClassMap = make(map[int64]string, len(ra.ClassMap))
		for k, label := range ra.ClassMap {
			idx, err := strconv.ParseInt(k, 10, 64)
			if err != nil {
				return nil, &MalformedAnnotationError{Reason: fmt.Sprintf("class_map key %q is not an integer", k)}
			}
			m.ClassMap[idx] = label
		}
	}
	return m, nil
}

func quads(in [][]float64, what string) ([][4]float64, error) {
	out := make([][4]float64, 0, len(in))
	for i, q := range in {
		if len(q) != 4 {
			return nil, &MalformedAnnotationError{Reason: fmt.Sprintf("%s %d has %d coordinates, want 4", what, i, len(q))}
		}
		out = append(out, [4]float64{q[0], q[1], q[2], q[3]})
	}
	return out, nil
}
