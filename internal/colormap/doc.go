// Package colormap builds fixed-size color ramps from named gradients.
//
// A gradient is a list of control points, each a position in [0,1] and a
// color. Generate samples a gradient at evenly spaced positions and linearly
// interpolates in RGB space between the two surrounding control points,
// producing a Colormap of exactly the requested number of shades.
//
// Colormaps are immutable after creation and are memoized by Generator under
// the key (name, shades, alpha). The memo cache is injected, so tests and
// independent renderers can hold isolated instances.
package colormap
