package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"parkvision/internal/detection"
	"parkvision/internal/detector"
	"parkvision/internal/geometry"
	"parkvision/internal/imaging"
	"parkvision/internal/metrics"
	"parkvision/internal/pipeline"
	"parkvision/internal/render"
	"parkvision/internal/storage"
)

// maxUploadBytes caps the accepted image size.
const maxUploadBytes = 20 << 20

// maxOverlayWidth caps the rendered overlay so the base64 payload in
// the response stays reasonable for large uploads.
const maxOverlayWidth = 1280

// DetectionResult is the detect endpoint's response body.
type DetectionResult struct {
	ReportID      string                       `json:"report_id"`
	Timestamp     time.Time                    `json:"timestamp"`
	TotalSlots    int                          `json:"total_slots"`
	OccupiedSlots int                          `json:"occupied_slots"`
	FreeSlots     int                          `json:"free_slots"`
	Confidence    float64                      `json:"confidence"`
	Detections    []detection.VehicleDetection `json:"detections"`
	ParkingSpots  ParkingSpotsSummary          `json:"parking_spots"`
	ImageBase64   string                       `json:"image_base64,omitempty"`
}

// ParkingSpotsSummary mirrors the lot-level summary in the response.
type ParkingSpotsSummary struct {
	DetectedSpots       int    `json:"detected_spots"`
	OccupiedSpots       int    `json:"occupied_spots"`
	FreeSpots           int    `json:"free_spots"`
	SpotDetectionMethod string `json:"spot_detection_method"`
}

func (s *Server) detect(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("file is required"))
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, errorResponse("file too large"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("cannot read upload"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("cannot read upload"))
		return
	}

	img, format, err := imaging.Decode(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("not a decodable image"))
		return
	}
	width, height := imaging.Dimensions(img)

	totalSlots := s.cfg.Lot.DefaultTotalSlots
	if raw := c.DefaultPostForm("total_slots", c.Query("total_slots")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, errorResponse("total_slots must be a positive integer"))
			return
		}
		totalSlots = parsed
	}

	enhanced, boosted := imaging.Enhance(img)

	vehicles, ok := s.obtainVehicles(c, data, width, height)
	if !ok {
		return
	}

	lines := detection.DetectWhiteLines(enhanced)

	report, err := pipeline.Analyze(pipeline.Input{
		Width:       width,
		Height:      height,
		Lines:       lines,
		Vehicles:    vehicles,
		ManualTotal: totalSlots,
	})
	if err != nil {
		if errors.Is(err, geometry.ErrInvalidBox) {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		s.log.Error().Err(err).Msg("analysis failed")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}

	overlay := render.Overlay(enhanced, report.Lines, report.Occupied, report.Free)
	imageB64, err := render.EncodeJPEG(imaging.FitWidth(overlay, maxOverlayWidth))
	if err != nil {
		s.log.Error().Err(err).Msg("overlay encoding failed")
		imageB64 = ""
	}

	spotTypes := make(map[string]int, 4)
	for _, sp := range report.Spots {
		spotTypes[string(sp.Type)]++
	}
	metrics.RecordAnalysis(report.Summary.Method, spotTypes,
		len(report.Occupied), report.Summary.UnmatchedVehicles,
		report.Summary.TotalSpots, report.Summary.OccupiedSpots)

	s.persist(c, report, len(vehicles))

	s.log.Info().
		Str("report_id", report.ID).
		Str("format", format).
		Bool("enhanced", boosted).
		Int("vehicles", len(vehicles)).
		Int("spots", len(report.Spots)).
		Str("method", report.Summary.Method).
		Msg("detect request served")

	c.JSON(http.StatusOK, DetectionResult{
		ReportID:      report.ID,
		Timestamp:     report.Timestamp,
		TotalSlots:    report.Summary.TotalSpots,
		OccupiedSlots: report.Summary.OccupiedSpots,
		FreeSlots:     report.Summary.FreeSpots,
		Confidence:    report.MeanConfidence,
		Detections:    report.Vehicles,
		ParkingSpots: ParkingSpotsSummary{
			DetectedSpots:       len(report.Spots),
			OccupiedSpots:       len(report.Occupied),
			FreeSpots:           len(report.Free),
			SpotDetectionMethod: report.Summary.Method,
		},
		ImageBase64: imageB64,
	})
}

// obtainVehicles resolves the vehicle list for a detect request:
// caller-supplied detections take precedence, then the inference
// service, then an empty list. A false return means the response was
// already written.
func (s *Server) obtainVehicles(c *gin.Context, imageData []byte, width, height int) ([]detection.VehicleDetection, bool) {
	if raw := c.PostForm("detections"); raw != "" {
		vehicles, err := detector.ParseDetections([]byte(raw), width, height)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return nil, false
		}
		return vehicles, true
	}

	if s.det == nil {
		return nil, true
	}

	vehicles, err := s.det.Detect(c.Request.Context(), imageData, width, height)
	if err != nil {
		if errors.Is(err, detector.ErrNoDetections) {
			return nil, true
		}
		metrics.DetectorErrors.Inc()
		s.log.Error().Err(err).Msg("inference service call failed")
		c.JSON(http.StatusBadGateway, errorResponse("inference service unavailable"))
		return nil, false
	}
	return vehicles, true
}

// persist stores the summary when a repository is configured. Storage
// failure is logged, never surfaced; the analysis result still stands.
func (s *Server) persist(c *gin.Context, report *pipeline.Report, vehicleCount int) {
	if s.repo == nil {
		return
	}
	rec := &storage.DetectionRecord{
		ReportID:          report.ID,
		TotalSlots:        report.Summary.TotalSpots,
		OccupiedSlots:     report.Summary.OccupiedSpots,
		FreeSlots:         report.Summary.FreeSpots,
		VehicleCount:      vehicleCount,
		UnmatchedVehicles: report.Summary.UnmatchedVehicles,
		MeanConfidence:    report.MeanConfidence,
		Method:            report.Summary.Method,
	}
	if err := s.repo.Create(c.Request.Context(), rec); err != nil {
		s.log.Error().Err(err).Str("report_id", report.ID).Msg("failed to persist detection record")
	}
}

func (s *Server) lastResult(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusNotFound, errorResponse("no results available"))
		return
	}
	rec, err := s.repo.Latest(c.Request.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("no results available"))
			return
		}
		s.log.Error().Err(err).Msg("failed to load last result")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}
	c.JSON(http.StatusOK, successResponse(rec))
}

func (s *Server) history(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusNotFound, errorResponse("storage not configured"))
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	recs, err := s.repo.History(c.Request.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load history")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}
	c.JSON(http.StatusOK, successResponse(recs))
}

func (s *Server) stats(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusNotFound, errorResponse("storage not configured"))
		return
	}
	stats, err := s.repo.Stats(c.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load stats")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}
	c.JSON(http.StatusOK, successResponse(stats))
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": s.repo != nil,
		"detector": s.det != nil,
	})
}
