// Package imaging provides image loading, decoding, and preprocessing
// for the parking analysis pipeline.
//
// All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward.
//
// The package covers three concerns:
//
//   - Loading and decoding: images arrive either as files on disk
//     (batch CLI) or as uploaded bytes (HTTP API). Both paths decode
//     to a standard image.Image; PNG, JPEG, and GIF are supported.
//
//   - Enhancement: frames captured at night or under heavy shade have
//     low mean luminance. Enhance brightens and stretches contrast on
//     such frames so the line detector sees usable paint edges.
//     Well-lit frames pass through untouched.
//
//   - Edge extraction: EdgeMask runs Canny edge detection and returns
//     a binary mask. The line detector consumes this mask directly;
//     no encoded image is produced at this layer.
//
// # Thread Safety
//
// All operations are stateless and can be called concurrently on
// different images.
package imaging
