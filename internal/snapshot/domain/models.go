// Package domain defines the persisted form of prediction snapshots and
// their accuracy scores.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ledgerscope/internal/canonical"
	predictdomain "github.com/smallbiznis/ledgerscope/internal/predict/domain"
	"gorm.io/datatypes"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot_not_found")
	ErrInvalidKind      = errors.New("invalid_snapshot_kind")
)

// PredictionSnapshot is one stored generation of party patterns.
type PredictionSnapshot struct {
	ID          snowflake.ID   `gorm:"primaryKey"`
	Kind        string         `gorm:"type:text;not null;index:idx_prediction_snapshots_kind_generated,priority:1"`
	GeneratedAt time.Time      `gorm:"not null;index:idx_prediction_snapshots_kind_generated,priority:2"`
	Patterns    datatypes.JSON `gorm:"not null"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PredictionSnapshot) TableName() string { return "prediction_snapshots" }

// AccuracyRecord is one party's score for one prior snapshot.
type AccuracyRecord struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	SnapshotID   snowflake.ID `gorm:"not null;index" json:"snapshot_id"`
	Kind         string       `gorm:"type:text;not null" json:"kind"`
	PartyKey     string       `gorm:"type:text;not null" json:"party_key"`
	PartyName    string       `gorm:"type:text;not null" json:"party_name"`
	DateAccuracy float64      `gorm:"not null" json:"date_accuracy"`
	ItemAccuracy float64      `gorm:"not null" json:"item_accuracy"`
	ActualDate   *time.Time   `json:"actual_date,omitempty"`
	ScoredAt     time.Time    `gorm:"not null" json:"scored_at"`
}

// TableName sets the database table name.
func (AccuracyRecord) TableName() string { return "accuracy_records" }

// Repository persists snapshots and accuracy scores.
type Repository interface {
	SaveSnapshot(ctx context.Context, snap *PredictionSnapshot) error
	LatestSnapshot(ctx context.Context, kind string) (*PredictionSnapshot, error)
	SaveAccuracies(ctx context.Context, records []AccuracyRecord) error
	ListAccuracies(ctx context.Context, limit int) ([]AccuracyRecord, error)
}

// Service runs the prediction feedback loop around each transactions import.
type Service interface {
	// RunFeedback scores the latest stored snapshot against the merged
	// dataset, persists the scores and stores a fresh snapshot. Storage
	// failures are logged, never returned, so imports are not blocked.
	RunFeedback(ctx context.Context, ds canonical.Dataset, kind canonical.VoucherType, asOf time.Time)

	// Latest returns the most recent stored snapshot for a kind.
	Latest(ctx context.Context, kind canonical.VoucherType) (predictdomain.Snapshot, error)

	// AccuracyHistory returns stored scores, most recent first.
	AccuracyHistory(ctx context.Context, limit int) ([]AccuracyRecord, error)
}
