package detection

import (
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"

	"parkvision/internal/geometry"
	"parkvision/internal/imaging"
)

// White-line extraction parameters. The threshold targets painted
// lane markings, which sit near the top of the luminance range even
// on faded asphalt.
const (
	whiteThreshold     = 170
	morphRadius        = 1.0
	smoothRadius       = 1.0
	edgeThresholdLow   = 30
	edgeThresholdHigh  = 120
	houghVoteThreshold = 40
	minLinePoints      = 25
	minKeptLength      = 15.0
	maxDetectedLines   = 50
)

// DetectWhiteLines finds painted line segments in a parking-lot image.
//
// The extraction chain isolates bright paint before any geometry runs:
//
//  1. Grayscale conversion
//  2. Luminance threshold at 170 to keep only near-white pixels
//  3. Morphological close then open to seal gaps and drop speckle
//  4. Gaussian smoothing
//  5. Canny edge detection (30/120)
//  6. Hough transform over the edge mask, extracting one segment per
//     accumulator peak
//
// Segments shorter than 15 pixels are discarded. At most 50 segments
// are returned, strongest peaks first, classified by orientation.
func DetectWhiteLines(img image.Image) []LineSegment {
	gray := effect.Grayscale(img)
	mask := segment.Threshold(gray, whiteThreshold)

	// Close seals small gaps in painted lines, open removes speckle.
	closed := effect.Erode(effect.Dilate(mask, morphRadius), morphRadius)
	opened := effect.Dilate(effect.Erode(closed, morphRadius), morphRadius)
	smoothed := blur.Gaussian(opened, smoothRadius)

	edges := imaging.EdgeMask(smoothed, edgeThresholdLow, edgeThresholdHigh)

	bounds := img.Bounds()
	return houghSegments(edges, bounds.Dx(), bounds.Dy())
}

// houghSegments extracts line segments from a binary edge mask using a
// Hough transform. Each accumulator peak above the vote threshold
// yields at most one segment, traced between the extreme edge pixels
// lying on the peak's line.
func houghSegments(edges [][]bool, width, height int) []LineSegment {
	maxDist := int(math.Sqrt(float64(width*width + height*height)))
	numAngles := 180
	accumulator := make([][]int, maxDist*2)
	for i := range accumulator {
		accumulator[i] = make([]int, numAngles)
	}

	// Vote in Hough space
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !edges[y][x] {
				continue
			}
			for theta := 0; theta < numAngles; theta++ {
				angle := float64(theta) * math.Pi / 180.0
				rho := float64(x)*math.Cos(angle) + float64(y)*math.Sin(angle)
				rhoIdx := int(rho) + maxDist
				if rhoIdx >= 0 && rhoIdx < maxDist*2 {
					accumulator[rhoIdx][theta]++
				}
			}
		}
	}

	// Find peaks in accumulator
	type peak struct {
		rho   int
		theta int
		votes int
	}
	peaks := make([]peak, 0)

	for rhoIdx := 0; rhoIdx < maxDist*2; rhoIdx++ {
		for theta := 0; theta < numAngles; theta++ {
			if accumulator[rhoIdx][theta] < houghVoteThreshold {
				continue
			}
			// Check if local maximum
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr := rhoIdx + dr
					nt := (theta + dt + numAngles) % numAngles
					if nr >= 0 && nr < maxDist*2 {
						if accumulator[nr][nt] > accumulator[rhoIdx][theta] {
							isMax = false
						}
					}
				}
			}
			if isMax {
				peaks = append(peaks, peak{
					rho:   rhoIdx - maxDist,
					theta: theta,
					votes: accumulator[rhoIdx][theta],
				})
			}
		}
	}

	sort.Slice(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})

	// Convert peaks to line segments
	lines := make([]LineSegment, 0)

	for _, pk := range peaks {
		if len(lines) >= maxDetectedLines {
			break
		}

		angle := float64(pk.theta) * math.Pi / 180.0
		rho := float64(pk.rho)
		cosA := math.Cos(angle)
		sinA := math.Sin(angle)

		// Collect edge pixels lying on this line (within tolerance)
		linePoints := make([]geometry.Point, 0)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if !edges[y][x] {
					continue
				}
				dist := math.Abs(float64(x)*cosA + float64(y)*sinA - rho)
				if dist < 2.0 {
					linePoints = append(linePoints, geometry.Point{X: x, Y: y})
				}
			}
		}

		if len(linePoints) < minLinePoints {
			continue
		}

		// Endpoints are the extreme projections along the line direction
		var start, end geometry.Point
		minProj := math.MaxFloat64
		maxProj := -math.MaxFloat64
		for _, p := range linePoints {
			d := float64(p.X)*sinA - float64(p.Y)*cosA
			if d < minProj {
				minProj = d
				start = p
			}
			if d > maxProj {
				maxProj = d
				end = p
			}
		}

		seg := NewLineSegment(start, end)
		if seg.Length <= minKeptLength {
			continue
		}
		lines = append(lines, seg)
	}

	return lines
}
