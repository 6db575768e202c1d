// Package imaging handles page rasters for the note colorizer.
//
// A page arrives as an image file written by an external rasterizer. This
// package decodes it into a Raster (a flat, top-left origin RGBA buffer that
// the detection pipeline indexes directly), caches decoded pages, shrinks
// pages for coarse analysis, and turns detections back into pictures: crops
// of individual systems and colored overlays of the final note-heads.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner.
// Rectangles use image.Rectangle semantics: Min is inclusive, Max exclusive.
//
// # Thread Safety
//
// PageCache is safe for concurrent use. Rasters returned from the cache are
// shared and must not be modified; every helper in this package that produces
// pixels allocates a new buffer.
package imaging
