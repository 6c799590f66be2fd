package occupancy

import (
	"testing"

	"parkvision/internal/detection"
	"parkvision/internal/geometry"
	"parkvision/internal/spots"
)

func spot(x, y, w, h int) spots.ParkingSpot {
	return spots.ParkingSpot{
		Box:  geometry.Box{X1: x, Y1: y, X2: x + w, Y2: y + h},
		Type: spots.TypeVerticalDivider,
	}
}

func car(x, y, w, h int) detection.VehicleDetection {
	return detection.VehicleDetection{
		Box:        geometry.Box{X1: x, Y1: y, X2: x + w, Y2: y + h},
		Confidence: 0.9,
		ClassID:    2,
		Label:      "car",
	}
}

func TestMatchDirectOverlap(t *testing.T) {
	parkingSpots := []spots.ParkingSpot{spot(100, 100, 80, 120)}
	vehicles := []detection.VehicleDetection{car(105, 110, 70, 100)}

	occupied, free, unmatched := MatchVehiclesToSpots(vehicles, parkingSpots)
	if len(occupied) != 1 || len(free) != 0 {
		t.Fatalf("got %d occupied, %d free; want 1, 0", len(occupied), len(free))
	}
	if unmatched != 0 {
		t.Errorf("unmatched = %d, want 0", unmatched)
	}

	m := occupied[0]
	if m.VehicleIndex != 0 {
		t.Errorf("vehicle index = %d, want 0", m.VehicleIndex)
	}
	if m.Overlap <= 0.5 {
		t.Errorf("overlap = %.2f, want > 0.5", m.Overlap)
	}
	if m.Confidence != 1.0 {
		t.Errorf("confidence = %.2f, want capped at 1.0", m.Confidence)
	}
}

func TestMatchOneToOne(t *testing.T) {
	// Two spots, one car parked across the first: the car must claim
	// exactly one spot.
	parkingSpots := []spots.ParkingSpot{
		spot(100, 100, 80, 120),
		spot(180, 100, 80, 120),
	}
	vehicles := []detection.VehicleDetection{car(110, 110, 70, 100)}

	occupied, free, unmatched := MatchVehiclesToSpots(vehicles, parkingSpots)
	if len(occupied) != 1 {
		t.Fatalf("got %d occupied spots for one car", len(occupied))
	}
	if len(free) != 1 {
		t.Errorf("got %d free spots, want 1", len(free))
	}
	if unmatched != 0 {
		t.Errorf("unmatched = %d, want 0", unmatched)
	}
}

func TestMatchHighestOverlapWins(t *testing.T) {
	parkingSpots := []spots.ParkingSpot{spot(100, 100, 80, 120)}
	vehicles := []detection.VehicleDetection{
		car(160, 110, 70, 100), // grazes the spot
		car(105, 110, 70, 100), // sits in it
	}

	occupied, _, unmatched := MatchVehiclesToSpots(vehicles, parkingSpots)
	if len(occupied) != 1 {
		t.Fatalf("got %d occupied, want 1", len(occupied))
	}
	if occupied[0].VehicleIndex != 1 {
		t.Errorf("matched vehicle %d, want the better-overlapping 1", occupied[0].VehicleIndex)
	}
	if unmatched != 1 {
		t.Errorf("unmatched = %d, want 1", unmatched)
	}
}

func TestMatchCenterInsideExtendedBox(t *testing.T) {
	// The car box does not intersect the spot box, but its center lies
	// within the extended spot area, so it still occupies the spot.
	parkingSpots := []spots.ParkingSpot{spot(100, 100, 60, 100)}
	vehicles := []detection.VehicleDetection{car(162, 130, 30, 40)} // center (177, 150)

	occupied, free, _ := MatchVehiclesToSpots(vehicles, parkingSpots)
	if len(occupied) != 1 || len(free) != 0 {
		t.Fatalf("got %d occupied, %d free; want 1, 0", len(occupied), len(free))
	}
	if occupied[0].Overlap != 0 {
		t.Errorf("overlap = %.2f, want 0", occupied[0].Overlap)
	}
	// Zero overlap still yields the baseline confidence.
	if occupied[0].Confidence != 0.3 {
		t.Errorf("confidence = %.2f, want 0.3", occupied[0].Confidence)
	}
}

func TestMatchCenterDistance(t *testing.T) {
	// Far outside the extended box vertically would fail; use a small
	// car whose center is within 60px of the spot center.
	parkingSpots := []spots.ParkingSpot{spot(100, 100, 60, 100)}
	// Spot center (130, 150); car center (170, 180): distance 50.
	vehicles := []detection.VehicleDetection{car(165, 175, 10, 10)}

	occupied, _, _ := MatchVehiclesToSpots(vehicles, parkingSpots)
	if len(occupied) != 1 {
		t.Fatalf("got %d occupied, want 1", len(occupied))
	}
}

func TestMatchIneligibleVehicleIgnored(t *testing.T) {
	parkingSpots := []spots.ParkingSpot{spot(100, 100, 60, 100)}
	vehicles := []detection.VehicleDetection{car(500, 400, 70, 100)}

	occupied, free, unmatched := MatchVehiclesToSpots(vehicles, parkingSpots)
	if len(occupied) != 0 {
		t.Errorf("got %d occupied, want 0", len(occupied))
	}
	if len(free) != 1 {
		t.Errorf("got %d free, want 1", len(free))
	}
	if unmatched != 1 {
		t.Errorf("unmatched = %d, want 1", unmatched)
	}
}

func TestMatchPartitionsSpots(t *testing.T) {
	parkingSpots := []spots.ParkingSpot{
		spot(100, 100, 80, 120),
		spot(200, 100, 80, 120),
		spot(300, 100, 80, 120),
	}
	vehicles := []detection.VehicleDetection{
		car(205, 110, 70, 100),
	}

	occupied, free, _ := MatchVehiclesToSpots(vehicles, parkingSpots)
	if len(occupied)+len(free) != len(parkingSpots) {
		t.Errorf("occupied %d + free %d != %d spots", len(occupied), len(free), len(parkingSpots))
	}
}

func TestMatchEmptyInputs(t *testing.T) {
	occupied, free, unmatched := MatchVehiclesToSpots(nil, nil)
	if len(occupied) != 0 || len(free) != 0 || unmatched != 0 {
		t.Errorf("empty inputs: occupied %d, free %d, unmatched %d", len(occupied), len(free), unmatched)
	}
}

func TestSummarizeComputerVision(t *testing.T) {
	occupied := []OccupiedSpot{{Spot: spot(0, 0, 60, 100)}}
	free := []spots.ParkingSpot{spot(100, 0, 60, 100), spot(200, 0, 60, 100)}

	s := Summarize(occupied, free, 2, 1, 20)
	if s.Method != MethodComputerVision {
		t.Errorf("method = %s, want computer_vision", s.Method)
	}
	if s.TotalSpots != 3 || s.OccupiedSpots != 1 || s.FreeSpots != 2 {
		t.Errorf("summary = %+v, want 3 total, 1 occupied, 2 free", s)
	}
	if s.UnmatchedVehicles != 1 {
		t.Errorf("unmatched = %d, want 1", s.UnmatchedVehicles)
	}
}

func TestSummarizeManualFallback(t *testing.T) {
	s := Summarize(nil, nil, 7, 0, 20)
	if s.Method != MethodManualCount {
		t.Errorf("method = %s, want manual_count", s.Method)
	}
	if s.TotalSpots != 20 || s.OccupiedSpots != 7 || s.FreeSpots != 13 {
		t.Errorf("summary = %+v, want 20 total, 7 occupied, 13 free", s)
	}
}

func TestSummarizeManualFallbackOverflow(t *testing.T) {
	// More cars than the manual total: the total grows, free never
	// goes negative.
	s := Summarize(nil, nil, 25, 0, 20)
	if s.TotalSpots != 25 || s.FreeSpots != 0 {
		t.Errorf("summary = %+v, want 25 total, 0 free", s)
	}
}
