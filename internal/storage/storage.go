package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrNotFound reports that no record matched the query.
var ErrNotFound = errors.New("record not found")

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
	statsWindow         = 100
)

// DetectionRecord is one persisted analysis summary. Spot geometry and
// overlays are not stored; only the lot-level numbers needed for
// history and stats.
type DetectionRecord struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	ReportID          string    `gorm:"not null" json:"report_id"`
	TotalSlots        int       `json:"total_slots"`
	OccupiedSlots     int       `json:"occupied_slots"`
	FreeSlots         int       `json:"free_slots"`
	VehicleCount      int       `json:"vehicle_count"`
	UnmatchedVehicles int       `json:"unmatched_vehicles"`
	MeanConfidence    float64   `json:"mean_confidence"`
	Method            string    `gorm:"not null" json:"method"`
	CreatedAt         time.Time `json:"created_at"`
}

// LotStats aggregates the most recent records.
type LotStats struct {
	Records         int              `json:"records"`
	AverageOccupied float64          `json:"average_occupied"`
	AverageFree     float64          `json:"average_free"`
	Latest          *DetectionRecord `json:"latest,omitempty"`
}

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS detection_records (
		id                 BIGSERIAL PRIMARY KEY,
		report_id          TEXT NOT NULL,
		total_slots        INT NOT NULL,
		occupied_slots     INT NOT NULL,
		free_slots         INT NOT NULL,
		vehicle_count      INT NOT NULL,
		unmatched_vehicles INT NOT NULL DEFAULT 0,
		mean_confidence    NUMERIC(5,4),
		method             TEXT NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_detection_records_created_at ON detection_records(created_at);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// Connect opens the Postgres database and applies migrations.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, rec *DetectionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

// Latest returns the most recent record, or ErrNotFound when the
// table is empty.
func (r *Repository) Latest(ctx context.Context) (*DetectionRecord, error) {
	var rec DetectionRecord
	err := r.db.WithContext(ctx).Order("created_at DESC").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// History returns recent records newest first. A non-positive limit
// uses the default; limits above the maximum are capped.
func (r *Repository) History(ctx context.Context, limit int) ([]DetectionRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var recs []DetectionRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// Stats aggregates the most recent records into lot-level averages.
func (r *Repository) Stats(ctx context.Context) (*LotStats, error) {
	recs, err := r.History(ctx, statsWindow)
	if err != nil {
		return nil, err
	}
	stats := aggregate(recs)
	return &stats, nil
}

// aggregate computes stats over records ordered newest first.
func aggregate(recs []DetectionRecord) LotStats {
	stats := LotStats{Records: len(recs)}
	if len(recs) == 0 {
		return stats
	}

	var occupied, free int
	for _, rec := range recs {
		occupied += rec.OccupiedSlots
		free += rec.FreeSlots
	}
	stats.AverageOccupied = float64(occupied) / float64(len(recs))
	stats.AverageFree = float64(free) / float64(len(recs))
	latest := recs[0]
	stats.Latest = &latest
	return stats
}
