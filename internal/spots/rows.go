package spots

import (
	"math"
	"sort"

	"parkvision/internal/detection"
	"parkvision/internal/geometry"
)

// Vehicle-layout estimation parameters. Slot dimensions are clamped to
// plausible pixel ranges; the spacing guard replaces degenerate
// adjacent-center spacings (stacked detections) before tiling.
const (
	rowYTolerance = 60.0

	slotWidthMin      = 55.0
	slotWidthMax      = 140.0
	slotHeightMin     = 80.0
	slotHeightMax     = 160.0
	slotSpacingFactor = 0.95
	slotWidthFactor   = 1.25
	slotHeightFactor  = 1.35
	degenerateSpacing = 30.0
	fallbackSpacing   = 60.0
	minClippedSlotW   = 45
	minClippedSlotH   = 60

	singleWidthFactor  = 1.15
	singleWidthMin     = 50.0
	singleWidthMax     = 130.0
	singleHeightFactor = 1.25
	singleHeightMin    = 70.0
	singleHeightMax    = 160.0
	singleOffsetFactor = 0.6

	// Local dedup threshold, distinct from the merge and filter
	// thresholds (tuned independently upstream).
	rowDedupOverlap = 0.7
)

// RowStats reports how one vehicle-layout synthesis run went.
type RowStats struct {
	Rows            int `json:"rows"`
	SingleCarRows   int `json:"single_car_rows"`
	SlotsTiled      int `json:"slots_tiled"`
	RejectedClipped int `json:"rejected_clipped"`
	DedupDropped    int `json:"dedup_dropped"`
}

type rowVehicle struct {
	cx, cy float64
	w, h   float64
}

// SynthesizeRowSpots estimates spot rectangles purely from vehicle
// layout. Vehicles are grouped into rows by vertical proximity; each
// row's median spacing and vehicle size drive a uniform slot tiling
// that extends half a spacing past the outermost vehicles, so an empty
// bay at a row end still gets a slot. Rows with a single vehicle get
// two neighbor slots beside it.
//
// Always computed as the secondary spot source; an empty vehicle list
// yields an empty result.
func SynthesizeRowSpots(vehicles []detection.VehicleDetection, width, height int) ([]ParkingSpot, RowStats) {
	var stats RowStats
	if len(vehicles) == 0 {
		return nil, stats
	}

	cars := make([]rowVehicle, 0, len(vehicles))
	for _, v := range vehicles {
		c := v.Box.Center()
		cars = append(cars, rowVehicle{
			cx: float64(c.X),
			cy: float64(c.Y),
			w:  float64(v.Box.Width()),
			h:  float64(v.Box.Height()),
		})
	}

	// Rows first (by y), then position within the row
	sort.SliceStable(cars, func(i, j int) bool {
		if cars[i].cy != cars[j].cy {
			return cars[i].cy < cars[j].cy
		}
		return cars[i].cx < cars[j].cx
	})

	// A vehicle joins the current row while its center stays within
	// tolerance of the row's running mean y.
	var rows [][]rowVehicle
	var row []rowVehicle
	for _, c := range cars {
		if len(row) == 0 {
			row = append(row, c)
			continue
		}
		var sum float64
		for _, rc := range row {
			sum += rc.cy
		}
		if math.Abs(c.cy-sum/float64(len(row))) <= rowYTolerance {
			row = append(row, c)
		} else {
			rows = append(rows, row)
			row = []rowVehicle{c}
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	stats.Rows = len(rows)

	var out []ParkingSpot
	for _, r := range rows {
		if len(r) < 2 {
			stats.SingleCarRows++
			out = append(out, singleCarNeighbors(r[0], width, height)...)
			continue
		}
		out = append(out, tileRow(r, width, height, &stats)...)
	}

	// Local dedup: largest first, drop heavy overlaps
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Area() > out[j].Area()
	})
	kept := make([]ParkingSpot, 0, len(out))
	for _, s := range out {
		dup := false
		for _, k := range kept {
			if geometry.Overlap(s.Box, k.Box) > rowDedupOverlap {
				dup = true
				break
			}
		}
		if dup {
			stats.DedupDropped++
			continue
		}
		kept = append(kept, s)
	}
	return kept, stats
}

// singleCarNeighbors emits one estimated slot on each side of a lone
// vehicle, clipped to the image.
func singleCarNeighbors(c rowVehicle, width, height int) []ParkingSpot {
	estW := clampFloat(c.w*singleWidthFactor, singleWidthMin, singleWidthMax)
	estH := clampFloat(c.h*singleHeightFactor, singleHeightMin, singleHeightMax)

	spots := make([]ParkingSpot, 0, 2)
	for _, offset := range []float64{-1, 1} {
		x1 := c.cx + offset*(estW*singleOffsetFactor) - estW/2
		y1 := c.cy - estH/2
		box := geometry.Box{
			X1: int(math.Round(x1)),
			Y1: int(math.Round(y1)),
			X2: int(math.Round(x1 + estW)),
			Y2: int(math.Round(y1 + estH)),
		}.Clip(width, height)
		spots = append(spots, ParkingSpot{Box: box, Type: TypeRowEstimated})
	}
	return spots
}

// tileRow tiles one multi-vehicle row with uniformly spaced slots
// derived from the row's median statistics.
func tileRow(r []rowVehicle, width, height int, stats *RowStats) []ParkingSpot {
	sort.SliceStable(r, func(i, j int) bool { return r[i].cx < r[j].cx })

	spacings := make([]float64, 0, len(r)-1)
	widths := make([]float64, 0, len(r))
	heights := make([]float64, 0, len(r))
	var ySum float64
	for i, c := range r {
		if i > 0 {
			spacings = append(spacings, c.cx-r[i-1].cx)
		}
		widths = append(widths, c.w)
		heights = append(heights, c.h)
		ySum += c.cy
	}

	// Medians resist outliers from partially detected vehicles.
	spacing := median(spacings)
	carW := median(widths)
	carH := median(heights)
	rowY := ySum / float64(len(r))

	slotW := clampFloat(math.Min(spacing*slotSpacingFactor, carW*slotWidthFactor), slotWidthMin, slotWidthMax)
	slotH := clampFloat(carH*slotHeightFactor, slotHeightMin, slotHeightMax)

	// Extend half a spacing past the outermost centers so end bays are
	// covered even when empty.
	leftBound := r[0].cx - spacing/2
	rightBound := r[len(r)-1].cx + spacing/2
	totalLength := math.Max(0, rightBound-leftBound)

	if spacing < degenerateSpacing {
		spacing = math.Max(fallbackSpacing, slotW)
	}

	slotCount := len(r)
	if n := int(math.Round(totalLength / spacing)); n > slotCount {
		slotCount = n
	}

	spots := make([]ParkingSpot, 0, slotCount)
	for i := 0; i < slotCount; i++ {
		cx := leftBound + (float64(i)+0.5)*spacing
		box := geometry.Box{
			X1: int(math.Round(cx - slotW/2)),
			Y1: int(math.Round(rowY - slotH/2)),
			X2: int(math.Round(cx + slotW/2)),
			Y2: int(math.Round(rowY + slotH/2)),
		}.Clip(width, height)

		if box.Width() < minClippedSlotW || box.Height() < minClippedSlotH {
			stats.RejectedClipped++
			continue
		}
		stats.SlotsTiled++
		spots = append(spots, ParkingSpot{Box: box, Type: TypeRowEstimated})
	}
	return spots
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func clampFloat(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
