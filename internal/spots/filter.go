package spots

import (
	"sort"

	"parkvision/internal/geometry"
)

// Merge, suppression, and size limits. The three overlap thresholds
// (merge 0.5, filter 0.4, row dedup 0.7) are deliberately separate
// constants; they were tuned independently and must stay independently
// adjustable.
const (
	MergeOverlapThreshold  = 0.5
	filterOverlapThreshold = 0.4
	maxSpotArea            = 50000
	maxFinalSpots          = 30
)

// typeBounds holds the plausibility bounds applied to one spot type.
// Area bounds are strict; width, height, and aspect bounds inclusive.
type typeBounds struct {
	minArea int
	minW    int
	minH    int
	arLow   float64
	arHigh  float64
}

// boundsFor returns the plausibility bounds for a spot type. Vertical
// dividers may legitimately be thin and tall; everything else follows
// the generic bay prior.
func boundsFor(t SpotType) typeBounds {
	switch t {
	case TypeVerticalDivider:
		return typeBounds{minArea: 800, minW: 10, minH: 40, arLow: 0.10, arHigh: 8.0}
	case TypeHorizontalRow:
		return typeBounds{minArea: 1500, minW: 50, minH: 40, arLow: 0.4, arHigh: 6.0}
	default:
		return typeBounds{minArea: 1500, minW: 25, minH: 40, arLow: 0.4, arHigh: 4.0}
	}
}

// FilterStats reports what one filter pass removed.
type FilterStats struct {
	Input           int  `json:"input"`
	RejectedSize    int  `json:"rejected_size"`
	RejectedOverlap int  `json:"rejected_overlap"`
	Capped          int  `json:"capped"`
	SizePassBypass  bool `json:"size_pass_bypass"`
}

// MergeSpots combines a primary (line-derived) and secondary
// (vehicle-derived) spot set. Each secondary spot is added only when
// it does not overlap anything already in the merged list above the
// threshold; earlier-added secondary spots count too.
func MergeSpots(primary, secondary []ParkingSpot, overlapThreshold float64) []ParkingSpot {
	if len(primary) == 0 && len(secondary) == 0 {
		return nil
	}

	merged := make([]ParkingSpot, 0, len(primary)+len(secondary))
	merged = append(merged, primary...)

	for _, s := range secondary {
		conflict := false
		for _, m := range merged {
			if geometry.Overlap(s.Box, m.Box) > overlapThreshold {
				conflict = true
				break
			}
		}
		if !conflict {
			merged = append(merged, s)
		}
	}
	return merged
}

// FilterSpots removes implausible and overlapping spots.
//
// Passes, in order:
//
//  1. Type-aware size bounds. If this pass would remove every spot of
//     a non-empty input, the original list is used instead: a frame
//     that produced candidates never silently degrades to zero spots.
//  2. Sort by (type priority, area) descending.
//  3. Greedy overlap suppression at the filter threshold.
//  4. Cap at the maximum spot count.
//
// The function is idempotent: filtering a filtered list returns it
// unchanged.
func FilterSpots(in []ParkingSpot) ([]ParkingSpot, FilterStats) {
	stats := FilterStats{Input: len(in)}
	if len(in) <= 1 {
		return in, stats
	}

	sizeFiltered := make([]ParkingSpot, 0, len(in))
	for _, s := range in {
		b := boundsFor(s.Type)
		area := s.Area()
		ar := s.Box.AspectRatio()
		ok := area > b.minArea && area < maxSpotArea &&
			s.Box.Width() >= b.minW && s.Box.Height() >= b.minH &&
			ar >= b.arLow && ar <= b.arHigh
		if ok {
			sizeFiltered = append(sizeFiltered, s)
		} else {
			stats.RejectedSize++
		}
	}
	// Never silently degrade a frame that produced candidates to zero
	// spots: hand the original list back instead.
	if len(sizeFiltered) == 0 {
		stats.SizePassBypass = true
		return in, stats
	}

	sort.SliceStable(sizeFiltered, func(i, j int) bool {
		pi, pj := sizeFiltered[i].Type.priority(), sizeFiltered[j].Type.priority()
		if pi != pj {
			return pi > pj
		}
		return sizeFiltered[i].Area() > sizeFiltered[j].Area()
	})

	final := make([]ParkingSpot, 0, len(sizeFiltered))
	for _, s := range sizeFiltered {
		conflict := false
		for _, kept := range final {
			if geometry.Overlap(s.Box, kept.Box) > filterOverlapThreshold {
				conflict = true
				break
			}
		}
		if conflict {
			stats.RejectedOverlap++
			continue
		}
		final = append(final, s)
	}

	if len(final) > maxFinalSpots {
		stats.Capped = len(final) - maxFinalSpots
		final = final[:maxFinalSpots]
	}
	return final, stats
}
