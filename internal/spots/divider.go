package spots

import (
	"math"
	"sort"

	"parkvision/internal/detection"
	"parkvision/internal/geometry"
)

// Divider-pair acceptance bounds, in pixels. Width and height bounds
// encode a prior on plausible bay dimensions for typical overhead or
// oblique camera framing; the overlap minimums stop pairs of unrelated
// far-apart lines from forming spots.
const (
	minDividerWidth    = 25.0
	maxDividerWidth    = 150.0
	minDividerOverlapY = 50
	dividerMarginMax   = 4.0
	dividerMarginRatio = 0.08
	minShrunkWidth     = 20.0

	minRowGapHeight = 40.0
	maxRowGapHeight = 150.0
	minRowOverlapX  = 100

	minVerticalLines   = 3
	minHorizontalLines = 2
)

// DividerStats counts candidate pairs considered and rejected by each
// strategy of one synthesis run.
type DividerStats struct {
	VerticalLines   int `json:"vertical_lines"`
	HorizontalLines int `json:"horizontal_lines"`
	PairsConsidered int `json:"pairs_considered"`
	RejectedWidth   int `json:"rejected_width"`
	RejectedOverlap int `json:"rejected_overlap"`
}

// indexedLine pairs a segment with its index in the caller's line
// list, so emitted spots can reference their source lines.
type indexedLine struct {
	idx int
	seg detection.LineSegment
}

// SynthesizeDividerSpots builds spots between adjacent parallel line
// pairs.
//
// Strategy priority: when at least 3 vertical lines exist the vertical
// divider strategy runs (at least 2 bays); otherwise, when at least 2
// horizontal lines exist, the horizontal row strategy runs; otherwise
// no spots are produced. Only one strategy runs per call.
func SynthesizeDividerSpots(lines []detection.LineSegment, width, height int) ([]ParkingSpot, DividerStats) {
	var stats DividerStats

	var vertical, horizontal []indexedLine
	for i, l := range lines {
		if l.IsVertical {
			vertical = append(vertical, indexedLine{i, l})
		} else if l.IsHorizontal {
			horizontal = append(horizontal, indexedLine{i, l})
		}
	}
	stats.VerticalLines = len(vertical)
	stats.HorizontalLines = len(horizontal)

	if len(vertical) >= minVerticalLines {
		return verticalDividerSpots(vertical, width, height, &stats), stats
	}
	if len(horizontal) >= minHorizontalLines {
		return horizontalRowSpots(horizontal, width, height, &stats), stats
	}
	return nil, stats
}

func verticalDividerSpots(vertical []indexedLine, width, height int, stats *DividerStats) []ParkingSpot {
	// Left to right by mean x
	sort.SliceStable(vertical, func(i, j int) bool {
		return vertical[i].seg.MeanX() < vertical[j].seg.MeanX()
	})

	spots := make([]ParkingSpot, 0, len(vertical)-1)
	for i := 0; i < len(vertical)-1; i++ {
		left := vertical[i]
		right := vertical[i+1]
		stats.PairsConsidered++

		lx := left.seg.MeanX()
		rx := right.seg.MeanX()
		spotWidth := rx - lx
		if spotWidth < minDividerWidth || spotWidth > maxDividerWidth {
			stats.RejectedWidth++
			continue
		}

		// Spot spans only the y range where both lines exist
		lTop, lBottom := left.seg.SpanY()
		rTop, rBottom := right.seg.SpanY()
		yTop := maxInt(lTop, rTop)
		yBottom := minInt(lBottom, rBottom)
		if yBottom-yTop <= minDividerOverlapY {
			stats.RejectedOverlap++
			continue
		}

		// Shrink inward so the spot sits between the paint, not on it,
		// unless that would leave too little width.
		margin := math.Min(dividerMarginMax, spotWidth*dividerMarginRatio)
		x1 := lx + margin
		x2 := rx - margin
		if x2-x1 <= minShrunkWidth {
			x1 = lx
			x2 = rx
		}

		box := geometry.Box{
			X1: int(math.Round(x1)),
			Y1: yTop,
			X2: int(math.Round(x2)),
			Y2: yBottom,
		}.Clip(width, height)

		spots = append(spots, ParkingSpot{
			Box:         box,
			Type:        TypeVerticalDivider,
			SourceLines: []int{left.idx, right.idx},
		})
	}
	return spots
}

func horizontalRowSpots(horizontal []indexedLine, width, height int, stats *DividerStats) []ParkingSpot {
	// Top to bottom by mean y
	sort.SliceStable(horizontal, func(i, j int) bool {
		return horizontal[i].seg.MeanY() < horizontal[j].seg.MeanY()
	})

	spots := make([]ParkingSpot, 0, len(horizontal)-1)
	for i := 0; i < len(horizontal)-1; i++ {
		top := horizontal[i]
		bottom := horizontal[i+1]
		stats.PairsConsidered++

		ty := top.seg.MeanY()
		by := bottom.seg.MeanY()
		rowHeight := by - ty
		if rowHeight < minRowGapHeight || rowHeight > maxRowGapHeight {
			stats.RejectedWidth++
			continue
		}

		// The row spans only where both boundary lines exist
		tLeft, tRight := top.seg.SpanX()
		bLeft, bRight := bottom.seg.SpanX()
		xLeft := maxInt(tLeft, bLeft)
		xRight := minInt(tRight, bRight)
		if xRight-xLeft <= minRowOverlapX {
			stats.RejectedOverlap++
			continue
		}

		// One spot per adjacent pair covering the whole row; the row
		// is not subdivided into individual bays.
		box := geometry.Box{
			X1: xLeft,
			Y1: int(math.Round(ty)),
			X2: xRight,
			Y2: int(math.Round(by)),
		}.Clip(width, height)

		spots = append(spots, ParkingSpot{
			Box:         box,
			Type:        TypeHorizontalRow,
			SourceLines: []int{top.idx, bottom.idx},
		})
	}
	return spots
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
