package pipeline

import (
	"errors"
	"testing"

	"parkvision/internal/detection"
	"parkvision/internal/geometry"
	"parkvision/internal/occupancy"
	"parkvision/internal/spots"
)

func verticalLine(x, y1, y2 int) detection.LineSegment {
	return detection.NewLineSegment(geometry.Point{X: x, Y: y1}, geometry.Point{X: x, Y: y2})
}

func car(cx, cy, w, h int) detection.VehicleDetection {
	return detection.VehicleDetection{
		Box: geometry.Box{
			X1: cx - w/2, Y1: cy - h/2,
			X2: cx + w/2, Y2: cy + h/2,
		},
		Confidence: 0.8,
		ClassID:    2,
		Label:      "car",
	}
}

func TestAnalyzeLineBasedLot(t *testing.T) {
	// Four divider lines form three bays; one car parked in the middle
	// bay.
	in := Input{
		Width:  640,
		Height: 480,
		Lines: []detection.LineSegment{
			verticalLine(100, 50, 250),
			verticalLine(180, 50, 250),
			verticalLine(260, 50, 250),
			verticalLine(340, 50, 250),
		},
		Vehicles: []detection.VehicleDetection{car(220, 150, 70, 110)},
	}

	report, err := Analyze(in)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Summary.Method != occupancy.MethodComputerVision {
		t.Errorf("method = %s, want computer_vision", report.Summary.Method)
	}
	if len(report.Spots) < 3 {
		t.Fatalf("got %d spots, want at least the 3 divider bays", len(report.Spots))
	}
	if len(report.Occupied) != 1 {
		t.Errorf("got %d occupied spots, want 1", len(report.Occupied))
	}
	if len(report.Occupied)+len(report.Free) != len(report.Spots) {
		t.Errorf("occupied %d + free %d != %d spots",
			len(report.Occupied), len(report.Free), len(report.Spots))
	}
	if report.ID == "" {
		t.Error("report has no id")
	}
	if report.MeanConfidence != 0.8 {
		t.Errorf("mean confidence = %v, want 0.8", report.MeanConfidence)
	}
	if report.Stages.Divider.VerticalLines != 4 {
		t.Errorf("divider stats saw %d vertical lines, want 4", report.Stages.Divider.VerticalLines)
	}
}

func TestAnalyzeVehicleOnlyLot(t *testing.T) {
	// No lines at all: spots must come from vehicle layout.
	in := Input{
		Width:  640,
		Height: 480,
		Vehicles: []detection.VehicleDetection{
			car(100, 200, 80, 80),
			car(200, 200, 80, 80),
			car(300, 200, 80, 80),
		},
	}

	report, err := Analyze(in)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Summary.Method != occupancy.MethodComputerVision {
		t.Errorf("method = %s, want computer_vision", report.Summary.Method)
	}
	if len(report.Spots) == 0 {
		t.Fatal("no spots synthesized from vehicle layout")
	}
	for _, s := range report.Spots {
		if s.Type == spots.TypeVerticalDivider || s.Type == spots.TypeHorizontalRow {
			t.Errorf("line-derived spot type %s without any lines", s.Type)
		}
	}
}

func TestAnalyzeEmptySceneFallsBackToManualCount(t *testing.T) {
	report, err := Analyze(Input{Width: 640, Height: 480, ManualTotal: 12})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Summary.Method != occupancy.MethodManualCount {
		t.Errorf("method = %s, want manual_count", report.Summary.Method)
	}
	if report.Summary.TotalSpots != 12 || report.Summary.FreeSpots != 12 {
		t.Errorf("summary = %+v, want 12 total, 12 free", report.Summary)
	}
	if report.MeanConfidence != 0 {
		t.Errorf("mean confidence = %v, want 0 with no vehicles", report.MeanConfidence)
	}
}

func TestAnalyzeDefaultManualTotal(t *testing.T) {
	report, err := Analyze(Input{Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Summary.TotalSpots != DefaultManualTotal {
		t.Errorf("total = %d, want the default %d", report.Summary.TotalSpots, DefaultManualTotal)
	}
}

func TestAnalyzeRejectsDegenerateVehicleBox(t *testing.T) {
	in := Input{
		Width:  640,
		Height: 480,
		Vehicles: []detection.VehicleDetection{{
			Box:        geometry.Box{X1: 100, Y1: 100, X2: 100, Y2: 200},
			Confidence: 0.9,
			ClassID:    2,
		}},
	}
	_, err := Analyze(in)
	if !errors.Is(err, geometry.ErrInvalidBox) {
		t.Errorf("err = %v, want ErrInvalidBox", err)
	}
}

func TestAnalyzeRejectsBadDimensions(t *testing.T) {
	if _, err := Analyze(Input{Width: 0, Height: 480}); err == nil {
		t.Error("zero width accepted")
	}
}

func TestAnalyzeDeterministicSpots(t *testing.T) {
	in := Input{
		Width:  640,
		Height: 480,
		Lines: []detection.LineSegment{
			verticalLine(100, 50, 250),
			verticalLine(180, 50, 250),
			verticalLine(260, 50, 250),
		},
		Vehicles: []detection.VehicleDetection{car(140, 150, 70, 110)},
	}

	a, err := Analyze(in)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	b, err := Analyze(in)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(a.Spots) != len(b.Spots) {
		t.Fatalf("spot counts differ across runs: %d vs %d", len(a.Spots), len(b.Spots))
	}
	for i := range a.Spots {
		if a.Spots[i].Box != b.Spots[i].Box {
			t.Errorf("spot %d differs across runs", i)
		}
	}
	if a.ID == b.ID {
		t.Error("report ids must be unique per run")
	}
}
