// Package detection extracts the pipeline's two raw inputs from a
// parking-lot frame: painted line segments and vehicle bounding boxes.
//
// # Line Segments
//
// DetectWhiteLines isolates bright paint with a luminance threshold,
// cleans the mask morphologically, and runs a Hough transform over the
// Canny edges of the result. Each returned LineSegment carries its
// endpoints plus derived length, angle, and an orientation class:
//
//   - horizontal: |angle| < 25° or |angle| > 155°
//   - vertical:   65° < |angle| < 115°
//   - neither:    everything between the bands
//
// Unclassified segments are kept in the output (callers may want them
// for rendering) but take no part in spot synthesis. ClassifyLines
// applies the same derivation to externally supplied segments.
//
// # Vehicle Detections
//
// VehicleDetection records come from an external object detector and
// pass through three gates before the core sees them: ValidateVehicles
// rejects degenerate boxes as a hard input error, FilterVehicles drops
// unknown classes and low-confidence or tiny detections, and
// SuppressOverlapping removes duplicate boxes around the same vehicle.
//
// All functions are pure; no detector state survives a call.
package detection
