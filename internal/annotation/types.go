package annotation

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/ironsheep/image-overlay-mcp/internal/rle"
)

// DefaultLayerName is used for layers that arrive without a name.
const DefaultLayerName = "(uncategorized)"

// ID identifies an annotation within a document.
type ID string

// Document is an ordered list of annotation layers.
type Document struct {
	Layers      []Layer
	Diagnostics []Diagnostic
}

// Layer is a named group of annotations, such as one model output head.
type Layer struct {
	Name        string
	Annotations []Annotation
}

// Diagnostic records an annotation or shape dropped while parsing.
type Diagnostic struct {
	ID    ID
	Layer string
	Err   error

	// Dropped is set when the whole annotation was discarded. When false,
	// only part of it (a marker) was, and the rest is still in the layer.
	Dropped bool
}

// Kind names an annotation variant.
type Kind int

const (
	KindRegions Kind = iota + 1
	KindBoxes
	KindLines
	KindMarkers
	KindMask
)

func (k Kind) String() string {
	switch k {
	case KindRegions:
		return "regions"
	case KindBoxes:
		return "boxes"
	case KindLines:
		return "lines"
	case KindMarkers:
		return "markers"
	case KindMask:
		return "mask"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Annotation is implemented by *Regions, *Boxes, *Lines, *Markers and *Mask.
type Annotation interface {
	Base() Info
	Kind() Kind
	isAnnotation()
}

// Info holds the fields shared by every annotation variant.
type Info struct {
	ID    ID
	Label string
	Score *float64
}

// Base returns the shared annotation fields.
func (i Info) Base() Info { return i }

// Regions is a set of closed polygons. Each polygon is a flat list of
// x, y pairs.
type Regions struct {
	Info
	Polygons [][]float64
}

// Boxes is a set of rectangles given as [x1, y1, x2, y2].
type Boxes struct {
	Info
	Boxes [][4]float64
}

// Lines is a set of segments given as [x1, y1, x2, y2].
type Lines struct {
	Info
	Lines [][4]float64
}

// Markers is a set of point markers.
type Markers struct {
	Info
	Markers []Marker
}

// Marker is a single point marker.
type Marker struct {
	Shape       MarkerShape
	X, Y        float64
	Size        float64
	BorderWidth float64
}

// MarkerShape selects how a marker is drawn.
type MarkerShape int

const (
	ShapeCircle MarkerShape = iota + 1
	ShapeRaindrop
)

func (s MarkerShape) String() string {
	switch s {
	case ShapeCircle:
		return "circle"
	case ShapeRaindrop:
		return "raindrop"
	default:
		return fmt.Sprintf("MarkerShape(%d)", int(s))
	}
}

// ParseMarkerShape converts a shape name to a MarkerShape.
func ParseMarkerShape(name string) (MarkerShape, error) {
	switch name {
	case "circle":
		return ShapeCircle, nil
	case "raindrop":
		return ShapeRaindrop, nil
	default:
		return 0, &UnknownShapeError{Shape: name}
	}
}

// MaskKind selects the mask compositing algorithm.
type MaskKind int

const (
	MaskSegmentation MaskKind = iota + 1
	MaskMetric
)

func (k MaskKind) String() string {
	switch k {
	case MaskSegmentation:
		return "segmentation"
	case MaskMetric:
		return "metric"
	default:
		return fmt.Sprintf("MaskKind(%d)", int(k))
	}
}

// MaskFormat says whether Mask.Data is dense or run-length encoded.
type MaskFormat int

const (
	FormatRaw MaskFormat = iota + 1
	FormatRLE
)

func (f MaskFormat) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatRLE:
		return "rle"
	default:
		return fmt.Sprintf("MaskFormat(%d)", int(f))
	}
}

// Mask is a per-pixel mask in source image coordinates.
//
// Segmentation masks map pixel values to labels through ClassMap; metric masks
// index a colormap of ColorLevels shades.
type Mask struct {
	Info
	MaskKind       MaskKind
	Width, Height  int
	Format         MaskFormat
	Data           []int64
	ClassMap       map[int64]string
	PerClassScores map[string]float64
	Colormap       string
	ColorLevels    int
}

func (*Regions) Kind() Kind { return KindRegions }
func (*Boxes) Kind() Kind   { return KindBoxes }
func (*Lines) Kind() Kind   { return KindLines }
func (*Markers) Kind() Kind { return KindMarkers }
func (*Mask) Kind() Kind    { return KindMask }

func (*Regions) isAnnotation() {}
func (*Boxes) isAnnotation()   {}
func (*Lines) isAnnotation()   {}
func (*Markers) isAnnotation() {}
func (*Mask) isAnnotation()    {}

// Pixels returns the dense per-pixel values of the mask, bounded by
// rle.DefaultMaxPixels. See PixelsLimit.
func (m *Mask) Pixels() ([]int64, error) {
	return m.PixelsLimit(rle.DefaultMaxPixels)
}

// PixelsLimit returns the dense per-pixel values of the mask.
//
// Raw data is returned as-is after a length check, so already-decoded data is
// never decoded twice. Masks larger than limit pixels (non-positive means
// rle.DefaultMaxPixels) and malformed data yield *rle.MalformedEncodingError.
func (m *Mask) PixelsLimit(limit int64) ([]int64, error) {
	switch m.Format {
	case FormatRaw:
		want, err := rle.PixelCount(m.Width, m.Height, limit)
		if err != nil {
			return nil, err
		}
		if int64(len(m.Data)) != want {
			return nil, &rle.MalformedEncodingError{Reason: "raw data length mismatch", Want: want, Got: int64(len(m.Data))}
		}
		return m.Data, nil
	case FormatRLE:
		return rle.DecodeLimit(m.Data, m.Width, m.Height, limit)
	default:
		return nil, &rle.MalformedEncodingError{Reason: "unknown mask format " + m.Format.String()}
	}
}

// ContentKey returns a stable hash of the mask's pixel content, suitable as a
// decoded-mask cache key. Masks with equal format, dimensions and data share
// a key regardless of label or layer.
func (m *Mask) ContentKey() string {
	h := sha256.New()
	var buf [binary.MaxVarintLen64]byte
	for _, v := range []int64{int64(m.Format), int64(m.Width), int64(m.Height), int64(len(m.Data))} {
		h.Write(buf[:binary.PutVarint(buf[:], v)])
	}
	for _, v := range m.Data {
		h.Write(buf[:binary.PutVarint(buf[:], v)])
	}
	return "mask:" + hex.EncodeToString(h.Sum(nil))
}
