// Package imaging loads source images and prepares them for annotation
// overlays.
//
// It covers the pixel work around a render that is not overlay drawing
// itself: decoding images from disk with a stat-checked cache, fitting a
// background to the target size, optionally desaturating and dimming it so
// annotations stand out, and encoding the finished surface as PNG.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Annotation coordinates
// use the same orientation in the source image's natural pixel space.
//
// # Thread Safety
//
// [ImageCache] is safe for concurrent use. The other functions are
// stateless and never modify their input images.
//
// # Performance Considerations
//
// Decoded images stay cached until evicted or until the file on disk
// changes. Large images consume significant memory; long-running servers
// should call Evict or Clear when a batch of images is done.
package imaging
