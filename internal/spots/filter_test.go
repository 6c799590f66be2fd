package spots

import (
	"testing"

	"parkvision/internal/geometry"
)

func spotAt(x, y, w, h int, t SpotType) ParkingSpot {
	return ParkingSpot{
		Box:  geometry.Box{X1: x, Y1: y, X2: x + w, Y2: y + h},
		Type: t,
	}
}

func TestMergeSkipsConflictingSecondary(t *testing.T) {
	primary := []ParkingSpot{spotAt(100, 100, 60, 100, TypeVerticalDivider)}
	secondary := []ParkingSpot{
		spotAt(105, 105, 60, 100, TypeRowEstimated), // heavy overlap with primary
		spotAt(300, 100, 60, 100, TypeRowEstimated), // clear
	}

	merged := MergeSpots(primary, secondary, MergeOverlapThreshold)
	if len(merged) != 2 {
		t.Fatalf("got %d merged spots, want 2", len(merged))
	}
	if merged[0].Type != TypeVerticalDivider {
		t.Error("primary spot must come first")
	}
	if merged[1].Box.X1 != 300 {
		t.Errorf("kept secondary at x=%d, want the non-conflicting one at 300", merged[1].Box.X1)
	}
}

func TestMergeChecksAgainstEarlierSecondaries(t *testing.T) {
	// No primaries; the second secondary duplicates the first and must
	// be dropped against the growing merged list.
	secondary := []ParkingSpot{
		spotAt(100, 100, 60, 100, TypeRowEstimated),
		spotAt(102, 102, 60, 100, TypeRowEstimated),
	}
	merged := MergeSpots(nil, secondary, MergeOverlapThreshold)
	if len(merged) != 1 {
		t.Errorf("got %d merged spots, want 1", len(merged))
	}
}

func TestMergeEmptyInputs(t *testing.T) {
	if merged := MergeSpots(nil, nil, MergeOverlapThreshold); merged != nil {
		t.Errorf("got %v from empty inputs, want nil", merged)
	}
}

func TestFilterRejectsImplausibleSizes(t *testing.T) {
	in := []ParkingSpot{
		spotAt(0, 0, 60, 100, TypeRowEstimated),    // plausible
		spotAt(200, 0, 5, 100, TypeRowEstimated),   // too thin
		spotAt(300, 0, 300, 300, TypeRowEstimated), // area 90000, too large
	}
	out, stats := FilterSpots(in)
	if len(out) != 1 {
		t.Fatalf("got %d spots, want 1", len(out))
	}
	if stats.RejectedSize != 2 {
		t.Errorf("rejected_size = %d, want 2", stats.RejectedSize)
	}
}

func TestFilterThinDividerSurvives(t *testing.T) {
	// 15x80 passes the divider bounds but not the generic bounds.
	divider := spotAt(100, 100, 15, 80, TypeVerticalDivider)
	generic := spotAt(300, 100, 15, 80, TypeRowEstimated)

	out, _ := FilterSpots([]ParkingSpot{divider, generic})
	if len(out) != 1 {
		t.Fatalf("got %d spots, want 1", len(out))
	}
	if out[0].Type != TypeVerticalDivider {
		t.Errorf("survivor type = %s, want vertical_divider", out[0].Type)
	}
}

func TestFilterNeverEmptiesNonEmptyInput(t *testing.T) {
	// Both spots fail the size pass; the original list must come back.
	in := []ParkingSpot{
		spotAt(0, 0, 5, 5, TypeRowEstimated),
		spotAt(50, 50, 8, 8, TypeRowEstimated),
	}
	out, stats := FilterSpots(in)
	if len(out) != len(in) {
		t.Fatalf("got %d spots, want the original %d back", len(out), len(in))
	}
	if !stats.SizePassBypass {
		t.Error("size_pass_bypass not reported")
	}
}

func TestFilterOverlapSuppression(t *testing.T) {
	big := spotAt(100, 100, 80, 120, TypeRowEstimated)
	dup := spotAt(104, 104, 80, 120, TypeRowEstimated)
	far := spotAt(400, 100, 80, 120, TypeRowEstimated)

	out, stats := FilterSpots([]ParkingSpot{dup, big, far})
	if len(out) != 2 {
		t.Fatalf("got %d spots, want 2", len(out))
	}
	if stats.RejectedOverlap != 1 {
		t.Errorf("rejected_overlap = %d, want 1", stats.RejectedOverlap)
	}
}

func TestFilterPriorityOrdering(t *testing.T) {
	// A line-derived spot beats a larger vehicle-derived one at the
	// same location.
	divider := spotAt(100, 100, 60, 100, TypeVerticalDivider)
	estimated := spotAt(95, 95, 80, 120, TypeRowEstimated)

	out, _ := FilterSpots([]ParkingSpot{estimated, divider})
	if len(out) == 0 {
		t.Fatal("no spots survived")
	}
	if out[0].Type != TypeVerticalDivider {
		t.Errorf("first spot type = %s, want vertical_divider", out[0].Type)
	}
}

func TestFilterCap(t *testing.T) {
	var in []ParkingSpot
	for i := 0; i < 40; i++ {
		in = append(in, spotAt(i*100, (i/8)*200, 60, 100, TypeRowEstimated))
	}
	out, stats := FilterSpots(in)
	if len(out) != maxFinalSpots {
		t.Errorf("got %d spots, want the cap %d", len(out), maxFinalSpots)
	}
	if stats.Capped != 10 {
		t.Errorf("capped = %d, want 10", stats.Capped)
	}
}

func TestFilterIdempotent(t *testing.T) {
	in := []ParkingSpot{
		spotAt(100, 100, 60, 100, TypeVerticalDivider),
		spotAt(104, 104, 80, 120, TypeRowEstimated),
		spotAt(400, 100, 80, 120, TypeRowEstimated),
		spotAt(400, 300, 5, 5, TypeGrid),
	}
	once, _ := FilterSpots(in)
	twice, _ := FilterSpots(once)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed the count: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Box != twice[i].Box || once[i].Type != twice[i].Type {
			t.Errorf("spot %d changed on the second pass", i)
		}
	}
}

func TestFilterSingleSpotPassthrough(t *testing.T) {
	in := []ParkingSpot{spotAt(0, 0, 3, 3, TypeGrid)}
	out, _ := FilterSpots(in)
	if len(out) != 1 {
		t.Errorf("single-spot input must pass through, got %d", len(out))
	}
}
