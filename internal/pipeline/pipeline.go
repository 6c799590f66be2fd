package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"parkvision/internal/detection"
	"parkvision/internal/occupancy"
	"parkvision/internal/spots"
)

// DefaultManualTotal is the lot capacity assumed when the caller does
// not supply one and no spots could be synthesized.
const DefaultManualTotal = 20

// Input carries everything one analysis needs.
type Input struct {
	Width       int
	Height      int
	Lines       []detection.LineSegment
	Vehicles    []detection.VehicleDetection
	ManualTotal int
}

// StageStats collects the per-stage rejection counters.
type StageStats struct {
	Divider spots.DividerStats `json:"divider"`
	Row     spots.RowStats     `json:"row"`
	Filter  spots.FilterStats  `json:"filter"`
}

// Report is the complete result of one analysis run.
type Report struct {
	ID          string                       `json:"id"`
	Timestamp   time.Time                    `json:"timestamp"`
	ImageWidth  int                          `json:"image_width"`
	ImageHeight int                          `json:"image_height"`
	Lines       []detection.LineSegment      `json:"lines"`
	Vehicles    []detection.VehicleDetection `json:"vehicles"`
	Spots       []spots.ParkingSpot          `json:"spots"`
	Occupied    []occupancy.OccupiedSpot     `json:"occupied"`
	Free        []spots.ParkingSpot          `json:"free"`
	Summary     occupancy.Summary            `json:"summary"`
	// MeanConfidence averages the detector confidences of all
	// vehicles, 0 when none were detected.
	MeanConfidence float64    `json:"mean_confidence"`
	Stages         StageStats `json:"stages"`
}

// Analyze runs line-derived and vehicle-derived spot synthesis, merges
// and filters the candidates, matches vehicles to the surviving spots,
// and summarizes the lot.
//
// Spot sources combine in a fixed preference order: line-derived spots
// are primary, vehicle-layout spots secondary. Per-vehicle estimation
// runs only when both main sources came up empty, and the manual-count
// fallback only when even that produced nothing.
func Analyze(in Input) (*Report, error) {
	if in.Width <= 0 || in.Height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", in.Width, in.Height)
	}
	if err := detection.ValidateVehicles(in.Vehicles); err != nil {
		return nil, err
	}
	manualTotal := in.ManualTotal
	if manualTotal <= 0 {
		manualTotal = DefaultManualTotal
	}

	var stages StageStats

	dividerSpots, dividerStats := spots.SynthesizeDividerSpots(in.Lines, in.Width, in.Height)
	stages.Divider = dividerStats

	rowSpots, rowStats := spots.SynthesizeRowSpots(in.Vehicles, in.Width, in.Height)
	stages.Row = rowStats

	var finalSpots []spots.ParkingSpot
	if len(dividerSpots) > 0 || len(rowSpots) > 0 {
		merged := spots.MergeSpots(dividerSpots, rowSpots, spots.MergeOverlapThreshold)
		finalSpots, stages.Filter = spots.FilterSpots(merged)
	} else {
		finalSpots = spots.EstimatePerVehicleSpots(in.Vehicles, in.Width, in.Height)
	}

	occupied, free, unmatched := occupancy.MatchVehiclesToSpots(in.Vehicles, finalSpots)
	summary := occupancy.Summarize(occupied, free, len(in.Vehicles), unmatched, manualTotal)

	var confSum float64
	for _, v := range in.Vehicles {
		confSum += v.Confidence
	}
	meanConf := 0.0
	if len(in.Vehicles) > 0 {
		meanConf = confSum / float64(len(in.Vehicles))
	}

	report := &Report{
		ID:             uuid.NewString(),
		Timestamp:      time.Now().UTC(),
		ImageWidth:     in.Width,
		ImageHeight:    in.Height,
		Lines:          in.Lines,
		Vehicles:       in.Vehicles,
		Spots:          finalSpots,
		Occupied:       occupied,
		Free:           free,
		Summary:        summary,
		MeanConfidence: meanConf,
		Stages:         stages,
	}

	log.Debug().
		Str("report_id", report.ID).
		Int("lines", len(in.Lines)).
		Int("vehicles", len(in.Vehicles)).
		Int("spots", len(finalSpots)).
		Int("occupied", len(occupied)).
		Int("free", len(free)).
		Str("method", summary.Method).
		Msg("analysis complete")

	return report, nil
}
