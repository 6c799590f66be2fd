// Command segment runs line-only parking segmentation over one image
// or a directory of images, without any vehicle detection. For each
// input it writes an annotated <stem>_segmented.jpg and a
// <stem>_segmentation.json with the detected lines and spots.
package main

import (
	"encoding/json"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"parkvision/internal/detection"
	"parkvision/internal/imaging"
	"parkvision/internal/render"
	"parkvision/internal/spots"
)

type segmentationOutput struct {
	Image     string                  `json:"image"`
	ImageSize imageSize               `json:"image_size"`
	Lines     []detection.LineSegment `json:"lines"`
	Spots     []spots.ParkingSpot     `json:"spots"`
	Counts    segmentationCounts      `json:"counts"`
	Stats     spots.DividerStats      `json:"stats"`
}

type imageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type segmentationCounts struct {
	Lines           int `json:"lines"`
	VerticalLines   int `json:"vertical_lines"`
	HorizontalLines int `json:"horizontal_lines"`
	Spots           int `json:"spots"`
}

func main() {
	var (
		imagePath = pflag.String("image", "", "single image to segment")
		dirPath   = pflag.String("dir", "", "directory of images to segment")
		pattern   = pflag.String("glob", "*.jpg", "filename pattern used with --dir")
		outDir    = pflag.String("out", "", "output directory (default: alongside input)")
	)
	pflag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if (*imagePath == "") == (*dirPath == "") {
		logger.Fatal().Msg("exactly one of --image or --dir is required")
	}

	var inputs []string
	if *imagePath != "" {
		inputs = []string{*imagePath}
	} else {
		matches, err := filepath.Glob(filepath.Join(*dirPath, *pattern))
		if err != nil {
			logger.Fatal().Err(err).Msg("bad --glob pattern")
		}
		if len(matches) == 0 {
			logger.Fatal().Str("dir", *dirPath).Str("glob", *pattern).Msg("no images matched")
		}
		inputs = matches
	}

	failures := 0
	for _, path := range inputs {
		if err := segmentOne(path, *outDir, logger); err != nil {
			logger.Error().Err(err).Str("image", path).Msg("segmentation failed")
			failures++
		}
	}
	if failures > 0 {
		os.Exit(1)
	}
}

func segmentOne(path, outDir string, logger zerolog.Logger) error {
	img, err := imaging.Load(path)
	if err != nil {
		return err
	}
	width, height := imaging.Dimensions(img)

	enhanced, _ := imaging.Enhance(img)
	lines := detection.DetectWhiteLines(enhanced)

	candidates, stats := spots.SynthesizeDividerSpots(lines, width, height)
	final, _ := spots.FilterSpots(candidates)

	logger.Info().
		Str("image", filepath.Base(path)).
		Int("lines", len(lines)).
		Int("vertical", stats.VerticalLines).
		Int("horizontal", stats.HorizontalLines).
		Int("spots", len(final)).
		Msg("segmented")

	overlay := render.Overlay(enhanced, lines, nil, final)

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(path)
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	jpgPath := filepath.Join(dir, stem+"_segmented.jpg")
	f, err := os.Create(jpgPath)
	if err != nil {
		return fmt.Errorf("writing overlay: %w", err)
	}
	if err := jpeg.Encode(f, overlay, &jpeg.Options{Quality: render.JPEGQuality}); err != nil {
		f.Close()
		return fmt.Errorf("encoding overlay: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	out := segmentationOutput{
		Image:     filepath.Base(path),
		ImageSize: imageSize{Width: width, Height: height},
		Lines:     lines,
		Spots:     final,
		Counts: segmentationCounts{
			Lines:           len(lines),
			VerticalLines:   stats.VerticalLines,
			HorizontalLines: stats.HorizontalLines,
			Spots:           len(final),
		},
		Stats: stats,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	jsonPath := filepath.Join(dir, stem+"_segmentation.json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}
