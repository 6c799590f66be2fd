package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"parkvision/internal/config"
	"parkvision/internal/detector"
	"parkvision/internal/metrics"
	"parkvision/internal/storage"
)

// Server wires the pipeline, detector, and storage behind the HTTP
// API. Repo may be nil (no persistence) and det may be nil (detections
// must come with the request).
type Server struct {
	cfg  *config.Config
	det  detector.Detector
	repo *storage.Repository
	log  zerolog.Logger
}

func New(cfg *config.Config, det detector.Detector, repo *storage.Repository, log zerolog.Logger) *Server {
	return &Server{
		cfg:  cfg,
		det:  det,
		repo: repo,
		log:  log,
	}
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	api := r.Group("/api/v1")
	{
		api.POST("/detect", s.detect)
		api.GET("/last-result", s.lastResult)
		api.GET("/history", s.history)
		api.GET("/stats", s.stats)
	}

	r.GET("/health", s.health)
	r.GET("/metrics", metrics.Handler())

	return r
}

// Run starts the HTTP server on the configured port.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Server.Port).Msg("listening")
	return srv.ListenAndServe()
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
