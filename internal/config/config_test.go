package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Enabled {
		t.Error("database enabled by default")
	}
	if cfg.Lot.DefaultTotalSlots != 20 {
		t.Errorf("lot.default_total_slots = %d, want 20", cfg.Lot.DefaultTotalSlots)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PARKVISION_SERVER_PORT", "9090")
	t.Setenv("PARKVISION_DETECTOR_URL", "http://inference:8500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090 from env", cfg.Server.Port)
	}
	if cfg.Detector.URL != "http://inference:8500" {
		t.Errorf("detector.url = %q", cfg.Detector.URL)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 0, ReadTimeout: 30, WriteTimeout: 30},
		Lot:    LotConfig{DefaultTotalSlots: 20},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("port 0 accepted")
	}
	if !strings.Contains(err.Error(), "server.port") {
		t.Errorf("error does not name the field: %v", err)
	}
}

func TestValidateDatabaseOnlyWhenEnabled(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 8080, ReadTimeout: 30, WriteTimeout: 30},
		Lot:    LotConfig{DefaultTotalSlots: 20},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled database should not require connection fields: %v", err)
	}

	cfg.Database.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("enabled database with no host accepted")
	}
}
