package spots

import (
	"parkvision/internal/geometry"
)

// Grid baseline parameters. Conservative on purpose: a tiling that
// would produce implausibly small cells is rejected outright.
const (
	gridCellWidth   = 120
	gridCellHeight  = 100
	gridMinPerRow   = 4
	gridMaxPerRow   = 12
	gridMinRows     = 2
	gridMaxRows     = 4
	gridMinCellW    = 50
	gridMinCellH    = 40
	gridMarginMax   = 10
	gridMarginDivis = 20
)

// SynthesizeGridSpots tiles the frame with a uniform grid of spots.
//
// This is a naive baseline and never runs in the default pipeline; it
// exists for callers that want a layout-free estimate. Returns nil
// when the computed cell size is implausibly small for a parking bay.
func SynthesizeGridSpots(width, height int) []ParkingSpot {
	perRow := clampInt(width/gridCellWidth, gridMinPerRow, gridMaxPerRow)
	rows := clampInt(height/gridCellHeight, gridMinRows, gridMaxRows)

	cellW := width / perRow
	cellH := height / rows
	if cellW < gridMinCellW || cellH < gridMinCellH {
		return nil
	}

	margin := minInt(gridMarginMax, minInt(cellW, cellH)/gridMarginDivis)

	spots := make([]ParkingSpot, 0, perRow*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < perRow; col++ {
			box := geometry.Box{
				X1: col*cellW + margin,
				Y1: row*cellH + margin,
				X2: (col+1)*cellW - margin,
				Y2: (row+1)*cellH - margin,
			}.Clip(width, height)

			// Drop cells the margin shrank below plausible bay size
			if box.Width() <= gridMinCellW || box.Height() <= gridMinCellH {
				continue
			}
			spots = append(spots, ParkingSpot{Box: box, Type: TypeGrid})
		}
	}
	return spots
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
