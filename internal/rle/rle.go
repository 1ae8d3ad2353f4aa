// Package rle converts between run-length encoded mask data and dense
// per-pixel arrays.
//
// An encoding is a flat sequence of (value, count) pairs:
//
//	[5, 3, 7, 2] -> [5, 5, 5, 7, 7]
//
// Values expand in row-major order. A valid encoding for a width×height mask
// has counts summing to exactly width*height.
package rle

import (
	"fmt"
)

// MalformedEncodingError reports an encoding that cannot describe the
// requested mask.
type MalformedEncodingError struct {
	Reason string
	Want   int64 // expected pixel count, when known
	Got    int64 // pixel count the encoding describes, when known
}

func (e *MalformedEncodingError) Error() string {
	if e.Want != 0 || e.Got != 0 {
		return fmt.Sprintf("rle: malformed encoding: %s (want %d pixels, got %d)", e.Reason, e.Want, e.Got)
	}
	return "rle: malformed encoding: " + e.Reason
}

// Run is one (value, count) pair.
type Run struct {
	Value int64
	Count int64
}

// Runs splits a flat encoding into pairs.
func Runs(encoding []int64) ([]Run, error) {
	if len(encoding)%2 != 0 {
		return nil, &MalformedEncodingError{Reason: fmt.Sprintf("odd length %d", len(encoding))}
	}
	runs := make([]Run, 0, len(encoding)/2)
	for i := 0; i < len(encoding); i += 2 {
		if encoding[i+1] < 0 {
			return nil, &MalformedEncodingError{Reason: fmt.Sprintf("negative run length %d at pair %d", encoding[i+1], i/2)}
		}
		runs = append(runs, Run{Value: encoding[i], Count: encoding[i+1]})
	}
	return runs, nil
}

// DefaultMaxPixels bounds the dense size Decode allocates: a 4096×4096 mask.
const DefaultMaxPixels = 1 << 24

// PixelCount returns width*height, rejecting negative dimensions and masks
// larger than limit pixels. A non-positive limit means DefaultMaxPixels.
// The product is checked without overflowing.
func PixelCount(width, height int, limit int64) (int64, error) {
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	if width < 0 || height < 0 {
		return 0, &MalformedEncodingError{Reason: fmt.Sprintf("invalid dimensions %dx%d", width, height)}
	}
	if width == 0 || height == 0 {
		return 0, nil
	}
	if int64(width) > limit/int64(height) {
		return 0, &MalformedEncodingError{Reason: fmt.Sprintf("dimensions %dx%d exceed the %d pixel limit", width, height, limit)}
	}
	return int64(width) * int64(height), nil
}

// Decode expands encoding into a dense array of width*height values, with
// the size bounded by DefaultMaxPixels. See DecodeLimit.
func Decode(encoding []int64, width, height int) ([]int64, error) {
	return DecodeLimit(encoding, width, height, DefaultMaxPixels)
}

// DecodeLimit expands encoding into a dense array of width*height values.
//
// # Errors
//
// Returns *MalformedEncodingError when:
//   - width or height is negative
//   - width*height exceeds limit (non-positive means DefaultMaxPixels)
//   - the encoding has an odd number of elements
//   - any run length is negative
//   - the run lengths do not sum to width*height
func DecodeLimit(encoding []int64, width, height int, limit int64) ([]int64, error) {
	want, err := PixelCount(width, height, limit)
	if err != nil {
		return nil, err
	}
	runs, err := Runs(encoding)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, r := range runs {
		if r.Count > want-total {
			return nil, &MalformedEncodingError{Reason: "run lengths exceed mask size", Want: want}
		}
		total += r.Count
	}
	if total != want {
		return nil, &MalformedEncodingError{Reason: "run lengths do not cover mask", Want: want, Got: total}
	}

	out := make([]int64, want)
	pos := int64(0)
	for _, r := range runs {
		end := pos + r.Count
		for i := pos; i < end; i++ {
			out[i] = r.Value
		}
		pos = end
	}
	return out, nil
}

// Encode compresses values into a flat (value, count) encoding. Adjacent
// equal values always merge, so the output never contains zero-length runs.
func Encode(values []int64) []int64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]int64, 0, 16)
	cur, n := values[0], int64(1)
	for _, v := range values[1:] {
		if v == cur {
			n++
			continue
		}
		out = append(out, cur, n)
		cur, n = v, 1
	}
	return append(out, cur, n)
}
