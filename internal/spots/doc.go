// Package spots synthesizes candidate parking-spot rectangles from
// line and vehicle evidence, merges the candidate sets, and filters
// the result down to a plausible, non-overlapping spot list.
//
// Three synthesis strategies exist:
//
//   - Divider-based (SynthesizeDividerSpots): builds spots between
//     adjacent parallel painted lines. Vertical dividers are preferred
//     when at least 3 vertical lines exist; otherwise horizontal row
//     boundaries are used when at least 2 exist. This is the primary
//     source.
//
//   - Vehicle-layout (SynthesizeRowSpots): groups vehicles into rows
//     by vertical proximity, estimates slot size and spacing from the
//     median row statistics, and tiles the row span with slots. Always
//     computed and merged as the secondary source, so bays the paint
//     detector missed are still covered where vehicles are parked.
//
//   - Grid (SynthesizeGridSpots): naive uniform tiling of the frame.
//     Never part of the default pipeline; exposed for callers that
//     want a baseline.
//
// MergeSpots combines primary and secondary sets, preferring the
// primary on overlap. FilterSpots applies type-aware plausibility
// bounds, priority-ordered overlap suppression, and a hard cap.
//
// All threshold rejections are normal control flow and are reported
// through the stats structs, never as errors.
package spots
