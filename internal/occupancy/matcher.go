package occupancy

import (
	"math"

	"parkvision/internal/detection"
	"parkvision/internal/geometry"
	"parkvision/internal/spots"
)

// Eligibility thresholds. A vehicle can claim a spot through any of
// the three criteria; the extended-box buffers absorb the x jitter of
// angled parking and the smaller y jitter of overhang.
const (
	minMatchOverlap   = 0.05
	extendedBufferX   = 20
	extendedBufferY   = 10
	maxCenterDistance = 60.0

	confidenceSlope = 2.0
	confidenceBase  = 0.3
)

// Spot detection methods reported in the summary.
const (
	MethodComputerVision = "computer_vision"
	MethodManualCount    = "manual_count"
)

// OccupiedSpot pairs a spot with the vehicle that occupies it.
// VehicleIndex refers to the caller's vehicle slice.
type OccupiedSpot struct {
	Spot         spots.ParkingSpot `json:"spot"`
	VehicleIndex int               `json:"vehicle_index"`
	Overlap      float64           `json:"overlap"`
	Confidence   float64           `json:"confidence"`
}

// Summary is the lot-level occupancy result.
type Summary struct {
	TotalSpots        int    `json:"total_spots"`
	OccupiedSpots     int    `json:"occupied_spots"`
	FreeSpots         int    `json:"free_spots"`
	UnmatchedVehicles int    `json:"unmatched_vehicles"`
	Method            string `json:"method"`
}

// MatchVehiclesToSpots assigns vehicles to spots one to one.
//
// For each spot, every still-unassigned vehicle is tested for
// eligibility: box overlap above the minimum, or vehicle center inside
// the spot box extended by the x/y buffers, or vehicle center within
// the distance limit of the spot center. Among eligible vehicles the
// one with the highest overlap wins; the first seen breaks ties, so a
// vehicle with zero box overlap can still claim a spot it is centered
// in. Unmatched is the number of vehicles no spot claimed.
func MatchVehiclesToSpots(vehicles []detection.VehicleDetection, parkingSpots []spots.ParkingSpot) (occupied []OccupiedSpot, free []spots.ParkingSpot, unmatched int) {
	used := make([]bool, len(vehicles))

	for _, spot := range parkingSpots {
		bestIdx := -1
		bestOverlap := 0.0
		extended := spot.Box.Expand(extendedBufferX, extendedBufferY)
		spotCenter := spot.Box.Center()

		for j, v := range vehicles {
			if used[j] {
				continue
			}
			center := v.Box.Center()
			overlap := geometry.Overlap(spot.Box, v.Box)

			eligible := overlap > minMatchOverlap ||
				extended.Contains(center) ||
				geometry.Distance(spotCenter, center) < maxCenterDistance
			if !eligible {
				continue
			}
			if bestIdx == -1 || overlap > bestOverlap {
				bestIdx = j
				bestOverlap = overlap
			}
		}

		if bestIdx == -1 {
			free = append(free, spot)
			continue
		}
		used[bestIdx] = true
		occupied = append(occupied, OccupiedSpot{
			Spot:         spot,
			VehicleIndex: bestIdx,
			Overlap:      bestOverlap,
			Confidence:   math.Min(1.0, bestOverlap*confidenceSlope+confidenceBase),
		})
	}

	for _, u := range used {
		if !u {
			unmatched++
		}
	}
	return occupied, free, unmatched
}

// Summarize builds the lot-level summary from a match result. When no
// spots were synthesized it falls back to counting vehicles against
// the manual total: every vehicle occupies a slot, and the total grows
// to fit if more vehicles than slots were seen.
func Summarize(occupied []OccupiedSpot, free []spots.ParkingSpot, vehicleCount, unmatched, manualTotal int) Summary {
	total := len(occupied) + len(free)
	if total > 0 {
		return Summary{
			TotalSpots:        total,
			OccupiedSpots:     len(occupied),
			FreeSpots:         len(free),
			UnmatchedVehicles: unmatched,
			Method:            MethodComputerVision,
		}
	}

	totalSlots := manualTotal
	if vehicleCount > totalSlots {
		totalSlots = vehicleCount
	}
	return Summary{
		TotalSpots:    totalSlots,
		OccupiedSpots: vehicleCount,
		FreeSpots:     totalSlots - vehicleCount,
		Method:        MethodManualCount,
	}
}
