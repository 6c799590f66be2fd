package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Luminance threshold below which a frame is treated as low-light.
const lowLightThreshold = 100.0

// MeanLuminance returns the average grayscale value of the image in
// the range [0,255], using ITU-R BT.601 luminance weights.
func MeanLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return 0
	}

	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			sum += float64(r>>8)*0.299 + float64(g>>8)*0.587 + float64(b>>8)*0.114
		}
	}
	return sum / float64(width*height)
}

// Enhance brightens and stretches contrast on low-light frames so
// painted lines stay detectable. Frames with mean luminance at or
// above the low-light threshold are returned unchanged.
//
// The second return value reports whether enhancement was applied.
func Enhance(img image.Image) (image.Image, bool) {
	if MeanLuminance(img) >= lowLightThreshold {
		return img, false
	}
	out := imaging.AdjustBrightness(img, 25)
	out = imaging.AdjustContrast(out, 20)
	return out, true
}

// FitWidth scales the image down to maxWidth pixels wide, preserving
// aspect ratio. Images already narrower are returned unchanged.
// Used to keep rendered overlays at a manageable payload size.
func FitWidth(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
}
