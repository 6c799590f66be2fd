package spots

import (
	"parkvision/internal/geometry"
)

// SpotType tags a parking spot with the strategy that produced it.
type SpotType string

const (
	// TypeVerticalDivider marks a spot between two adjacent vertical
	// painted lines.
	TypeVerticalDivider SpotType = "vertical_divider"

	// TypeHorizontalRow marks a whole-row spot between two adjacent
	// horizontal painted lines.
	TypeHorizontalRow SpotType = "horizontal_row"

	// TypeRowEstimated marks a spot inferred from vehicle row layout.
	TypeRowEstimated SpotType = "row_estimated"

	// TypeGrid marks a spot from the uniform grid baseline.
	TypeGrid SpotType = "grid"

	// TypeEstimatedFromCar marks a per-vehicle estimated spot.
	TypeEstimatedFromCar SpotType = "estimated_from_car"

	// TypeEstimatedEmpty marks an extrapolated empty spot at a row end.
	TypeEstimatedEmpty SpotType = "estimated_empty"
)

// ParkingSpot is a candidate parking-bay rectangle. Created by exactly
// one synthesizer and never mutated afterwards; occupancy is a derived
// view produced by the matcher.
type ParkingSpot struct {
	Box  geometry.Box `json:"box"`
	Type SpotType     `json:"type"`

	// SourceLines holds the indices of the line segments that produced
	// a line-derived spot. Empty for vehicle- and grid-derived spots.
	SourceLines []int `json:"source_lines,omitempty"`
}

// Area returns the spot area in square pixels.
func (s ParkingSpot) Area() int { return s.Box.Area() }

// priority ranks spot types for overlap suppression. Line-derived
// spots outrank estimated ones; vertical dividers are the most
// precise evidence and outrank whole-row boundaries.
func (t SpotType) priority() int {
	switch t {
	case TypeVerticalDivider:
		return 3
	case TypeHorizontalRow:
		return 2
	default:
		return 1
	}
}
