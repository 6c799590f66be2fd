package detection

import (
	"fmt"
	"sort"

	"parkvision/internal/geometry"
)

// Detector output gates. Detections below the confidence floor or
// smaller than the relative-area floor are discarded as noise.
const (
	minVehicleConfidence = 0.1
	minVehicleAreaRatio  = 0.0001
	nmsOverlapThreshold  = 0.3
)

// vehicleClasses maps detector class identifiers to the single
// semantic label the pipeline works with. COCO class 2 is "car";
// class 67 is frequently confused with cars in overhead footage and
// is folded into the same label.
var vehicleClasses = map[int]string{
	2:  "car",
	67: "car",
}

// VehicleDetection is a vehicle bounding box produced by the external
// object detector. Immutable.
type VehicleDetection struct {
	Box        geometry.Box `json:"box"`
	Confidence float64      `json:"confidence"`
	ClassID    int          `json:"class_id"`
	Label      string       `json:"label"`
}

// ValidateVehicles rejects malformed detections before they reach the
// core. A degenerate bounding box is a validation error; an empty
// detection list is not.
func ValidateVehicles(vehicles []VehicleDetection) error {
	for i, v := range vehicles {
		if err := v.Box.Validate(); err != nil {
			return fmt.Errorf("vehicle %d: %w", i, err)
		}
	}
	return nil
}

// FilterVehicles keeps detections that map to a known vehicle class,
// meet the confidence floor, and cover at least the minimum fraction
// of the image. The label is resolved from the class identifier.
func FilterVehicles(vehicles []VehicleDetection, imageWidth, imageHeight int) []VehicleDetection {
	imageArea := float64(imageWidth * imageHeight)
	kept := make([]VehicleDetection, 0, len(vehicles))

	for _, v := range vehicles {
		label, ok := vehicleClasses[v.ClassID]
		if !ok && v.Label == "" {
			continue
		}
		if v.Confidence < minVehicleConfidence {
			continue
		}
		if imageArea > 0 && float64(v.Box.Area())/imageArea <= minVehicleAreaRatio {
			continue
		}
		if ok {
			v.Label = label
		}
		kept = append(kept, v)
	}
	return kept
}

// SuppressOverlapping applies non-maximum suppression: detections are
// ordered by confidence descending, and any detection overlapping an
// already-kept one above the IoU threshold is dropped. Duplicate boxes
// around the same vehicle are a common detector artifact in oblique
// parking footage.
func SuppressOverlapping(vehicles []VehicleDetection) []VehicleDetection {
	if len(vehicles) <= 1 {
		return vehicles
	}

	ordered := make([]VehicleDetection, len(vehicles))
	copy(ordered, vehicles)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})

	kept := make([]VehicleDetection, 0, len(ordered))
	for _, v := range ordered {
		duplicate := false
		for _, k := range kept {
			if geometry.Overlap(v.Box, k.Box) > nmsOverlapThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, v)
		}
	}
	return kept
}
