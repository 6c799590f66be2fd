package detection

import (
	"math"

	"parkvision/internal/geometry"
)

// Angle bands for line classification, in degrees. Lines angled
// strictly between the bands belong to neither class and take no part
// in spot synthesis.
const (
	horizontalMaxAngle = 25.0
	verticalLowAngle   = 65.0
	verticalHighAngle  = 115.0
)

// LineSegment represents a detected line segment with derived
// orientation attributes. Immutable once produced.
type LineSegment struct {
	Start        geometry.Point `json:"start"`
	End          geometry.Point `json:"end"`
	Length       float64        `json:"length"`
	AngleDegrees float64        `json:"angle_degrees"`
	IsHorizontal bool           `json:"is_horizontal"`
	IsVertical   bool           `json:"is_vertical"`
}

// NewLineSegment builds a segment from two endpoints, computing its
// length, angle, and orientation class.
func NewLineSegment(start, end geometry.Point) LineSegment {
	dx := float64(end.X - start.X)
	dy := float64(end.Y - start.Y)
	length := math.Sqrt(dx*dx + dy*dy)
	angle := math.Atan2(dy, dx) * 180 / math.Pi
	abs := math.Abs(angle)

	return LineSegment{
		Start:        start,
		End:          end,
		Length:       math.Round(length*10) / 10,
		AngleDegrees: math.Round(angle*10) / 10,
		IsHorizontal: abs < horizontalMaxAngle || abs > 180-horizontalMaxAngle,
		IsVertical:   abs > verticalLowAngle && abs < verticalHighAngle,
	}
}

// ClassifyLines recomputes the derived attributes of each segment from
// its endpoints. Pure: the input slice is not modified.
func ClassifyLines(segments []LineSegment) []LineSegment {
	out := make([]LineSegment, len(segments))
	for i, s := range segments {
		out[i] = NewLineSegment(s.Start, s.End)
	}
	return out
}

// MeanX returns the mean x of the segment endpoints. Used to order
// vertical divider lines left to right.
func (l LineSegment) MeanX() float64 {
	return float64(l.Start.X+l.End.X) / 2
}

// MeanY returns the mean y of the segment endpoints.
func (l LineSegment) MeanY() float64 {
	return float64(l.Start.Y+l.End.Y) / 2
}

// SpanY returns the vertical extent of the segment as (top, bottom).
func (l LineSegment) SpanY() (int, int) {
	if l.Start.Y <= l.End.Y {
		return l.Start.Y, l.End.Y
	}
	return l.End.Y, l.Start.Y
}

// SpanX returns the horizontal extent of the segment as (left, right).
func (l LineSegment) SpanX() (int, int) {
	if l.Start.X <= l.End.X {
		return l.Start.X, l.End.X
	}
	return l.End.X, l.Start.X
}
