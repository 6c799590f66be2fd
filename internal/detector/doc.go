// Package detector obtains vehicle detections for a frame. The
// analysis itself never runs a model; detections come from an external
// inference service over HTTP, or are supplied by the caller directly.
package detector
