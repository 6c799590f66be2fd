// Package pipeline runs one full lot analysis over already-extracted
// inputs: classified line segments and vehicle detections in, a single
// report record out.
//
// The pipeline is pure with respect to its inputs. It does no image
// decoding, no network calls, and no storage; callers own all of that.
// Running the same inputs twice yields the same spots, matches, and
// counters (only the report id and timestamp differ), which is what
// makes the stage counters trustworthy for debugging.
package pipeline
