package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBox reports a degenerate bounding box (x2 <= x1 or y2 <= y1).
// Malformed geometry is rejected before any synthesis or matching runs;
// empty inputs are not an error.
var ErrInvalidBox = errors.New("invalid bounding box")

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Box represents an axis-aligned rectangular bounding box in pixel
// coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner
//   - (X2, Y2) is the bottom-right corner
//
// A well-formed box has X1 < X2 and Y1 < Y2.
type Box struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Validate returns ErrInvalidBox when the box is degenerate.
func (b Box) Validate() error {
	if b.X2 <= b.X1 || b.Y2 <= b.Y1 {
		return fmt.Errorf("%w: (%d,%d)-(%d,%d)", ErrInvalidBox, b.X1, b.Y1, b.X2, b.Y2)
	}
	return nil
}

// Width returns the horizontal extent in pixels.
func (b Box) Width() int { return b.X2 - b.X1 }

// Height returns the vertical extent in pixels.
func (b Box) Height() int { return b.Y2 - b.Y1 }

// Area returns the box area in square pixels. Degenerate boxes have
// zero area.
func (b Box) Area() int {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Center returns the center point of the box.
func (b Box) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// AspectRatio returns width/height with the height floored at 1 to
// avoid division by zero.
func (b Box) AspectRatio() float64 {
	h := b.Height()
	if h < 1 {
		h = 1
	}
	return float64(b.Width()) / float64(h)
}

// Clip constrains the box to the image bounds [0,width] x [0,height].
// The result may be degenerate when the box lies entirely outside.
func (b Box) Clip(width, height int) Box {
	return Box{
		X1: clampInt(b.X1, 0, width),
		Y1: clampInt(b.Y1, 0, height),
		X2: clampInt(b.X2, 0, width),
		Y2: clampInt(b.Y2, 0, height),
	}
}

// Contains reports whether the point lies inside the box (edges
// inclusive).
func (b Box) Contains(p Point) bool {
	return p.X >= b.X1 && p.X <= b.X2 && p.Y >= b.Y1 && p.Y <= b.Y2
}

// Expand grows the box by dx pixels on each horizontal edge and dy
// pixels on each vertical edge.
func (b Box) Expand(dx, dy int) Box {
	return Box{X1: b.X1 - dx, Y1: b.Y1 - dy, X2: b.X2 + dx, Y2: b.Y2 + dy}
}

// Intersection returns the overlapping region of two boxes. The result
// is degenerate when the boxes are disjoint.
func (b Box) Intersection(other Box) Box {
	return Box{
		X1: maxInt(b.X1, other.X1),
		Y1: maxInt(b.Y1, other.Y1),
		X2: minInt(b.X2, other.X2),
		Y2: minInt(b.Y2, other.Y2),
	}
}

// Overlap returns the intersection-over-union ratio of two boxes.
//
// The ratio is symmetric, 1.0 for identical boxes, and 0.0 for
// disjoint or degenerate boxes.
func Overlap(a, b Box) float64 {
	inter := a.Intersection(b).Area()
	if inter == 0 {
		return 0
	}
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
