package detector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPDetectorParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("multipart parse: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"detections": [
			{"class_id": 2, "confidence": 0.87, "bbox": [100, 100, 180, 220]},
			{"class_id": 15, "confidence": 0.9, "bbox": [300, 100, 380, 220]}
		]}`))
	}))
	defer srv.Close()

	d := NewHTTPDetector(srv.URL)
	vehicles, err := d.Detect(context.Background(), []byte("fake-jpeg"), 640, 480)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	// The class-15 detection is not a vehicle and must be gated out.
	if len(vehicles) != 1 {
		t.Fatalf("got %d vehicles, want 1", len(vehicles))
	}
	v := vehicles[0]
	if v.Label != "car" {
		t.Errorf("label = %q, want car", v.Label)
	}
	if v.Box.X1 != 100 || v.Box.Y2 != 220 {
		t.Errorf("box = %+v", v.Box)
	}
}

func TestHTTPDetectorEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"detections": []}`))
	}))
	defer srv.Close()

	d := NewHTTPDetector(srv.URL)
	_, err := d.Detect(context.Background(), []byte("fake-jpeg"), 640, 480)
	if !errors.Is(err, ErrNoDetections) {
		t.Errorf("err = %v, want ErrNoDetections", err)
	}
}

func TestHTTPDetectorServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewHTTPDetector(srv.URL)
	if _, err := d.Detect(context.Background(), []byte("fake-jpeg"), 640, 480); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestParseDetections(t *testing.T) {
	payload := []byte(`[
		{"class_id": 2, "confidence": 0.8, "bbox": [50, 50, 130, 170]},
		{"class_id": 67, "confidence": 0.4, "bbox": [200, 50, 280, 170]},
		{"class_id": 2, "confidence": 0.05, "bbox": [350, 50, 430, 170]}
	]`)

	vehicles, err := ParseDetections(payload, 640, 480)
	if err != nil {
		t.Fatalf("ParseDetections: %v", err)
	}
	// The third entry is below the confidence floor.
	if len(vehicles) != 2 {
		t.Fatalf("got %d vehicles, want 2", len(vehicles))
	}
	for _, v := range vehicles {
		if v.Label != "car" {
			t.Errorf("label = %q, want car", v.Label)
		}
	}
}

func TestParseDetectionsRejectsDegenerateBox(t *testing.T) {
	payload := []byte(`[{"class_id": 2, "confidence": 0.8, "bbox": [100, 50, 100, 170]}]`)
	if _, err := ParseDetections(payload, 640, 480); err == nil {
		t.Error("degenerate bbox accepted")
	}
}

func TestParseDetectionsBadJSON(t *testing.T) {
	if _, err := ParseDetections([]byte("{nope"), 640, 480); err == nil {
		t.Error("malformed payload accepted")
	}
}

func TestStaticDetector(t *testing.T) {
	d := Static(nil)
	vehicles, err := d.Detect(context.Background(), nil, 0, 0)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(vehicles) != 0 {
		t.Errorf("got %d vehicles, want 0", len(vehicles))
	}
}
