package detection

import (
	"image"
	"image/color"
	"testing"
)

// asphaltImage creates a dark gray frame, roughly the tone of asphalt.
func asphaltImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{60, 60, 60, 255})
		}
	}
	return img
}

// paintVertical draws a bright vertical stripe like a painted divider.
func paintVertical(img *image.RGBA, x, y1, y2, thickness int) {
	for t := 0; t < thickness; t++ {
		for y := y1; y < y2; y++ {
			img.Set(x+t, y, color.RGBA{235, 235, 235, 255})
		}
	}
}

// paintHorizontal draws a bright horizontal stripe.
func paintHorizontal(img *image.RGBA, y, x1, x2, thickness int) {
	for t := 0; t < thickness; t++ {
		for x := x1; x < x2; x++ {
			img.Set(x, y+t, color.RGBA{235, 235, 235, 255})
		}
	}
}

func TestDetectWhiteLines_VerticalDividers(t *testing.T) {
	img := asphaltImage(300, 250)
	paintVertical(img, 80, 20, 220, 3)
	paintVertical(img, 160, 20, 220, 3)

	lines := DetectWhiteLines(img)
	if len(lines) == 0 {
		t.Fatal("no lines detected on two painted dividers")
	}

	vertical := 0
	for _, l := range lines {
		if l.IsVertical {
			vertical++
		}
	}
	if vertical == 0 {
		t.Errorf("detected %d lines but none vertical", len(lines))
	}
	t.Logf("detected %d lines, %d vertical", len(lines), vertical)
}

func TestDetectWhiteLines_HorizontalRow(t *testing.T) {
	img := asphaltImage(320, 200)
	paintHorizontal(img, 60, 10, 310, 3)

	lines := DetectWhiteLines(img)
	horizontal := 0
	for _, l := range lines {
		if l.IsHorizontal {
			horizontal++
		}
	}
	if horizontal == 0 {
		t.Errorf("detected %d lines but none horizontal", len(lines))
	}
}

func TestDetectWhiteLines_BlankAsphalt(t *testing.T) {
	img := asphaltImage(200, 200)
	lines := DetectWhiteLines(img)
	if len(lines) != 0 {
		t.Errorf("blank asphalt produced %d lines", len(lines))
	}
}

func TestDetectWhiteLines_IgnoresDarkMarks(t *testing.T) {
	// Dark tire marks are below the white threshold and must not
	// produce segments.
	img := asphaltImage(200, 200)
	for y := 20; y < 180; y++ {
		img.Set(100, y, color.RGBA{20, 20, 20, 255})
	}

	lines := DetectWhiteLines(img)
	if len(lines) != 0 {
		t.Errorf("dark mark produced %d lines", len(lines))
	}
}

func TestDetectWhiteLines_CapsOutput(t *testing.T) {
	img := asphaltImage(500, 500)
	for i := 0; i < 60; i++ {
		y := i * 8
		if y+2 < 500 {
			paintHorizontal(img, y, 0, 500, 2)
		}
	}

	lines := DetectWhiteLines(img)
	if len(lines) > 50 {
		t.Errorf("got %d lines, cap is 50", len(lines))
	}
}
