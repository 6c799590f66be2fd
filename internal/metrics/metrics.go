package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parkvision",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "parkvision",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})

	// Analysis metrics
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parkvision",
		Subsystem: "analysis",
		Name:      "runs_total",
		Help:      "Total lot analyses run, by summary method",
	}, []string{"method"})

	SpotsSynthesized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parkvision",
		Subsystem: "analysis",
		Name:      "spots_synthesized_total",
		Help:      "Total parking spots in final results, by synthesis origin",
	}, []string{"type"})

	VehiclesMatched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "parkvision",
		Subsystem: "analysis",
		Name:      "vehicles_matched_total",
		Help:      "Total vehicles matched to a parking spot",
	})

	VehiclesUnmatched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "parkvision",
		Subsystem: "analysis",
		Name:      "vehicles_unmatched_total",
		Help:      "Total detected vehicles no spot claimed",
	})

	OccupancyRatio = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "parkvision",
		Subsystem: "analysis",
		Name:      "occupancy_ratio",
		Help:      "Occupied fraction of the lot in the most recent analysis",
	})

	DetectorErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "parkvision",
		Subsystem: "detector",
		Name:      "errors_total",
		Help:      "Total inference service call failures",
	})
)

// Middleware records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// Handler returns a gin handler serving the Prometheus /metrics
// endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordAnalysis updates the analysis metrics from one summary.
func RecordAnalysis(method string, spotTypes map[string]int, matched, unmatched, totalSpots, occupiedSpots int) {
	AnalysesTotal.WithLabelValues(method).Inc()
	for t, n := range spotTypes {
		SpotsSynthesized.WithLabelValues(t).Add(float64(n))
	}
	VehiclesMatched.Add(float64(matched))
	VehiclesUnmatched.Add(float64(unmatched))
	if totalSpots > 0 {
		OccupancyRatio.Set(float64(occupiedSpots) / float64(totalSpots))
	}
}
