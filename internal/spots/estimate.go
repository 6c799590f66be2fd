package spots

import (
	"math"
	"sort"

	"parkvision/internal/detection"
	"parkvision/internal/geometry"
)

// Per-vehicle estimation parameters. This strategy places one spot on
// each parked vehicle plus extrapolated empty spots at row ends, using
// mean (not median) row statistics.
const (
	estimateRowTolerance  = 50.0
	estimateSpacingFactor = 0.9
	estimateWidthFactor   = 1.2
	estimateSpotHeight    = 120.0
	defaultSpacing        = 100.0
	defaultCarWidth       = 80.0
)

// EstimatePerVehicleSpots places an estimated spot over every vehicle
// in a multi-vehicle row, plus an extrapolated empty spot before the
// first and after the last vehicle when a full spacing of room exists.
//
// Rows with fewer than two vehicles are skipped: spacing cannot be
// estimated from a single vehicle. Intended for frames where neither
// line-derived nor tiled-row synthesis produced anything but vehicles
// are clearly parked.
func EstimatePerVehicleSpots(vehicles []detection.VehicleDetection, width, height int) []ParkingSpot {
	if len(vehicles) == 0 {
		return nil
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
	sort.SliceStable(cars, func(i, j int) bool {
		if cars[i].cy != cars[j].cy {
			return cars[i].cy < cars[j].cy
		}
		return cars[i].cx < cars[j].cx
	})

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
		if math.Abs(c.cy-sum/float64(len(row))) < estimateRowTolerance {
			row = append(row, c)
		} else {
			rows = append(rows, row)
			row = []rowVehicle{c}
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	var spots []ParkingSpot
	for _, r := range rows {
		if len(r) < 2 {
			continue
		}
		sort.SliceStable(r, func(i, j int) bool { return r[i].cx < r[j].cx })

		spacing := defaultSpacing
		if len(r) > 1 {
			var sum float64
			for i := 1; i < len(r); i++ {
				sum += r[i].cx - r[i-1].cx
			}
			spacing = sum / float64(len(r)-1)
		}
		var wSum float64
		for _, c := range r {
			wSum += c.w
		}
		carW := defaultCarWidth
		if len(r) > 0 {
			carW = wSum / float64(len(r))
		}

		spotW := math.Min(spacing*estimateSpacingFactor, carW*estimateWidthFactor)

		for _, c := range r {
			spots = append(spots, estimateSpot(c.cx, c.cy, spotW, TypeEstimatedFromCar, width, height))
		}

		// Extrapolate one empty bay past each end of the row when a
		// full spacing of room exists.
		first, last := r[0], r[len(r)-1]
		if first.cx > spacing {
			spots = append(spots, estimateSpot(first.cx-spacing, first.cy, spotW, TypeEstimatedEmpty, width, height))
		}
		if last.cx < float64(width)-spacing {
			spots = append(spots, estimateSpot(last.cx+spacing, last.cy, spotW, TypeEstimatedEmpty, width, height))
		}
	}
	return spots
}

func estimateSpot(cx, cy, spotW float64, t SpotType, width, height int) ParkingSpot {
	box := geometry.Box{
		X1: int(math.Round(cx - spotW/2)),
		Y1: int(math.Round(cy - estimateSpotHeight/2)),
		X2: int(math.Round(cx + spotW/2)),
		Y2: int(math.Round(cy + estimateSpotHeight/2)),
	}.Clip(width, height)
	return ParkingSpot{Box: box, Type: t}
}
