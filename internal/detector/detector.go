package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"time"

	"parkvision/internal/detection"
	"parkvision/internal/geometry"
)

// ErrNoDetections reports that the inference service responded but
// found nothing. Distinct from a validation failure; callers usually
// treat it as an empty vehicle list.
var ErrNoDetections = errors.New("no detections returned")

// Detector produces vehicle detections for an encoded image.
type Detector interface {
	Detect(ctx context.Context, imageData []byte, width, height int) ([]detection.VehicleDetection, error)
}

// rawDetection is the inference service's wire format: a class id, a
// confidence, and an [x1, y1, x2, y2] box.
type rawDetection struct {
	ClassID    int        `json:"class_id"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox"`
}

type inferenceResponse struct {
	Detections []rawDetection `json:"detections"`
}

// HTTPDetector calls a YOLO-style inference service that accepts a
// multipart image upload and returns JSON detections.
type HTTPDetector struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPDetector builds a detector client for the given service base
// URL, e.g. "http://inference:8500".
func NewHTTPDetector(baseURL string) *HTTPDetector {
	return &HTTPDetector{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Detect uploads the image and converts the service's raw detections
// into validated, class-filtered, NMS-suppressed vehicle records.
func (d *HTTPDetector) Detect(ctx context.Context, imageData []byte, width, height int) ([]detection.VehicleDetection, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/infer", &body)
	if err != nil {
		return nil, fmt.Errorf("creating inference request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling inference service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference service error %d: %s", resp.StatusCode, msg)
	}

	var parsed inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding inference response: %w", err)
	}
	if len(parsed.Detections) == 0 {
		return nil, ErrNoDetections
	}

	return fromRaw(parsed.Detections, width, height)
}

// fromRaw converts wire-format detections into vehicle records,
// applying the class, confidence, and area gates plus overlap
// suppression.
func fromRaw(raw []rawDetection, width, height int) ([]detection.VehicleDetection, error) {
	vehicles := make([]detection.VehicleDetection, 0, len(raw))
	for _, r := range raw {
		vehicles = append(vehicles, detection.VehicleDetection{
			Box:        boxFromCoords(r.BBox),
			Confidence: r.Confidence,
			ClassID:    r.ClassID,
		})
	}
	if err := detection.ValidateVehicles(vehicles); err != nil {
		return nil, err
	}
	kept := detection.FilterVehicles(vehicles, width, height)
	return detection.SuppressOverlapping(kept), nil
}

func boxFromCoords(c [4]float64) geometry.Box {
	return geometry.Box{
		X1: int(math.Round(c[0])),
		Y1: int(math.Round(c[1])),
		X2: int(math.Round(c[2])),
		Y2: int(math.Round(c[3])),
	}
}

// ParseDetections decodes a caller-supplied detections JSON array, the
// same wire format the inference service uses. Lets API clients run
// their own model and submit results with the image.
func ParseDetections(data []byte, width, height int) ([]detection.VehicleDetection, error) {
	var raw []rawDetection
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing detections payload: %w", err)
	}
	return fromRaw(raw, width, height)
}

// Static returns a Detector that always yields the given vehicles.
// Useful for tests and offline replays.
func Static(vehicles []detection.VehicleDetection) Detector {
	return staticDetector(vehicles)
}

type staticDetector []detection.VehicleDetection

func (s staticDetector) Detect(_ context.Context, _ []byte, _, _ int) ([]detection.VehicleDetection, error) {
	return []detection.VehicleDetection(s), nil
}
