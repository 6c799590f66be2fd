package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"parkvision/internal/detection"
	"parkvision/internal/geometry"
	"parkvision/internal/occupancy"
	"parkvision/internal/spots"
)

// JPEGQuality is the encoding quality of the returned overlay.
const JPEGQuality = 85

// fillBlend is how far an occupancy fill pulls a pixel toward the
// status color. Low enough that the underlying scene stays readable.
const fillBlend = 0.35

var (
	lineColor     = mustHex("#00ffff")
	occupiedColor = mustHex("#dc1414")
	freeColor     = mustHex("#14b414")
	badgeFg       = color.RGBA{255, 255, 255, 255}
	badgeBg       = color.RGBA{0, 0, 0, 180}
)

// spotColors maps each synthesis origin to its outline color.
var spotColors = map[spots.SpotType]colorful.Color{
	spots.TypeVerticalDivider:  mustHex("#00a0ff"),
	spots.TypeHorizontalRow:    mustHex("#ffa500"),
	spots.TypeRowEstimated:     mustHex("#ffe119"),
	spots.TypeEstimatedFromCar: mustHex("#b46ae6"),
	spots.TypeEstimatedEmpty:   mustHex("#9370db"),
	spots.TypeGrid:             mustHex("#969696"),
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("render: bad color constant %q: %v", s, err))
	}
	return c
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}
}

// Overlay draws lines, spot fills, outlines, and badges onto a copy of
// the image. Occupied spots fill red, free spots green; each spot gets
// a 1-based number badge in its top-left corner.
func Overlay(img image.Image, lines []detection.LineSegment, occupied []occupancy.OccupiedSpot, free []spots.ParkingSpot) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	// Fills first so outlines and badges stay crisp on top.
	for _, o := range occupied {
		fillBox(out, o.Spot.Box, occupiedColor)
	}
	for _, s := range free {
		fillBox(out, s.Box, freeColor)
	}

	for _, l := range lines {
		drawSegment(out, l.Start, l.End, toRGBA(lineColor))
	}

	n := 1
	for _, o := range occupied {
		drawSpot(out, o.Spot, n)
		n++
	}
	for _, s := range free {
		drawSpot(out, s, n)
		n++
	}
	return out
}

// EncodeJPEG encodes the overlay as a base64 JPEG data URL, the form
// API clients embed directly in an <img> tag.
func EncodeJPEG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("encoding overlay: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func drawSpot(img *image.RGBA, s spots.ParkingSpot, number int) {
	c, ok := spotColors[s.Type]
	if !ok {
		c = spotColors[spots.TypeGrid]
	}
	outlineBox(img, s.Box, toRGBA(c), 2)
	drawLabel(img, s.Box.X1+4, s.Box.Y1+4, strconv.Itoa(number), badgeFg, badgeBg)
}

// fillBox blends the box interior toward the status color.
func fillBox(img *image.RGBA, b geometry.Box, c colorful.Color) {
	bounds := img.Bounds()
	for y := b.Y1; y < b.Y2; y++ {
		for x := b.X1; x < b.X2; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
				continue
			}
			base, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			img.Set(x, y, toRGBA(base.BlendRgb(c, fillBlend)))
		}
	}
}

func outlineBox(img *image.RGBA, b geometry.Box, c color.RGBA, thickness int) {
	for t := 0; t < thickness; t++ {
		for x := b.X1; x <= b.X2; x++ {
			setPixel(img, x, b.Y1+t, c)
			setPixel(img, x, b.Y2-t, c)
		}
		for y := b.Y1; y <= b.Y2; y++ {
			setPixel(img, b.X1+t, y, c)
			setPixel(img, b.X2-t, y, c)
		}
	}
}

// drawSegment draws a 1px line between two points (Bresenham).
func drawSegment(img *image.RGBA, a, b geometry.Point, c color.RGBA) {
	dx := absInt(b.X - a.X)
	dy := -absInt(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy

	x, y := a.X, a.Y
	for {
		setPixel(img, x, y, c)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	bounds := img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		img.Set(x, y, c)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawLabel draws a short numeric label with a filled background using
// a small built-in 3x5 digit font.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			setPixel(img, x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					setPixel(img, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
