// Package palette assigns display colors to annotation labels.
//
// Every label string maps to one entry of a fixed 15-color palette through a
// polynomial rolling hash, so the same label is drawn in the same color across
// layers, renders and processes. Boolean-like labels bypass the hash:
//
//   - "1", "true", "t", "yes" (any case) are drawn in the palette green
//   - "0", "false", "f", "no" (any case) are drawn in the palette red
//
// The empty label maps to ErrorColor.
//
// # Text Contrast
//
// ContrastingTextColor picks black or white text for a given background using
// the ITU-R BT.601 perceptual luminance 0.299*R + 0.587*G + 0.114*B. Backgrounds
// brighter than 125 get black text.
//
// # Thread Safety
//
// All functions are pure. Registry memoizes ColorFor behind a read-mostly lock
// and is safe for concurrent use.
package palette
