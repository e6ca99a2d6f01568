package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/ledgerscope/internal/snapshot/domain"
	"github.com/smallbiznis/ledgerscope/pkg/db"
	"gorm.io/gorm"
)

// Repository is the gorm-backed snapshot store.
type Repository struct {
	db *gorm.DB
}

// NewRepository migrates the snapshot tables and returns the store.
func NewRepository(db *gorm.DB) (domain.Repository, error) {
	if err := db.AutoMigrate(&domain.PredictionSnapshot{}, &domain.AccuracyRecord{}); err != nil {
		return nil, fmt.Errorf("migrate snapshot tables: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) SaveSnapshot(ctx context.Context, snap *domain.PredictionSnapshot) error {
	if err := r.db.WithContext(ctx).Create(snap).Error; err != nil {
		// A replayed import can re-submit a snapshot row; already stored
		// is not a failure.
		if db.IsDuplicateKeyErr(err) {
			return nil
		}
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *Repository) LatestSnapshot(ctx context.Context, kind string) (*domain.PredictionSnapshot, error) {
	var snap domain.PredictionSnapshot
	err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("generated_at DESC").
		First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return &snap, nil
}

func (r *Repository) SaveAccuracies(ctx context.Context, records []domain.AccuracyRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&records).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil
		}
		return fmt.Errorf("save accuracy records: %w", err)
	}
	return nil
}

func (r *Repository) ListAccuracies(ctx context.Context, limit int) ([]domain.AccuracyRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []domain.AccuracyRecord
	err := r.db.WithContext(ctx).
		Order("scored_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list accuracy records: %w", err)
	}
	return records, nil
}
