// Package render draws the annotated analysis overlay: detected line
// segments, spot outlines colored by synthesis origin, translucent
// occupancy fills, and numbered spot badges.
//
// Rendering works on a copy; the input image is never modified. The
// overlay is a debugging and presentation aid and has no effect on the
// analysis itself.
package render
