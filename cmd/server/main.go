package main

import (
	"os"

	"github.com/rs/zerolog"

	"parkvision/internal/config"
	"parkvision/internal/detector"
	"parkvision/internal/server"
	"parkvision/internal/storage"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "parkvision").Logger()
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		logger = logger.Level(lvl)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("loading config")
	}

	var det detector.Detector
	if cfg.Detector.URL != "" {
		det = detector.NewHTTPDetector(cfg.Detector.URL)
		logger.Info().Str("url", cfg.Detector.URL).Msg("inference service configured")
	} else {
		logger.Warn().Msg("no inference service configured; requests must carry detections")
	}

	var repo *storage.Repository
	if cfg.Database.Enabled {
		db, err := storage.Connect(cfg.Database.DSN())
		if err != nil {
			logger.Fatal().Err(err).Msg("connecting database")
		}
		repo = storage.NewRepository(db)
		logger.Info().Str("host", cfg.Database.Host).Msg("database connected")
	} else {
		logger.Warn().Msg("database disabled; results will not be persisted")
	}

	srv := server.New(cfg, det, repo, logger)
	if err := srv.Run(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
