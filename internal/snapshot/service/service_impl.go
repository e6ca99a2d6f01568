package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ledgerscope/internal/canonical"
	predictdomain "github.com/smallbiznis/ledgerscope/internal/predict/domain"
	"github.com/smallbiznis/ledgerscope/internal/snapshot/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Repo    domain.Repository
	Predict predictdomain.Service
	Log     *zap.Logger
	GenID   *snowflake.Node
}

type Service struct {
	repo    domain.Repository
	predict predictdomain.Service
	log     *zap.Logger
	genID   *snowflake.Node
}

func NewService(p Params) domain.Service {
	return &Service{
		repo:    p.Repo,
		predict: p.Predict,
		log:     p.Log.Named("snapshot.service"),
		genID:   p.GenID,
	}
}

// RunFeedback closes the loop after a transactions import: the previous
// snapshot is scored against the data that arrived since it was taken,
// then a fresh snapshot replaces it.
func (s *Service) RunFeedback(ctx context.Context, ds canonical.Dataset, kind canonical.VoucherType, asOf time.Time) {
	prior, err := s.loadLatest(ctx, kind)
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		// First import for this kind, nothing to score yet.
	case err != nil:
		s.log.Warn("load prior snapshot failed", zap.String("kind", string(kind)), zap.Error(err))
	default:
		s.scorePrior(ctx, prior, ds)
	}

	patterns := s.predict.Predict(ctx, ds, kind, asOf)
	if err := s.store(ctx, kind, asOf, patterns); err != nil {
		s.log.Warn("store snapshot failed", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	s.log.Info("prediction snapshot stored",
		zap.String("kind", string(kind)),
		zap.Int("patterns", len(patterns)),
	)
}

func (s *Service) Latest(ctx context.Context, kind canonical.VoucherType) (predictdomain.Snapshot, error) {
	prior, err := s.loadLatest(ctx, kind)
	if err != nil {
		return predictdomain.Snapshot{}, err
	}
	return prior.snapshot, nil
}

func (s *Service) AccuracyHistory(ctx context.Context, limit int) ([]domain.AccuracyRecord, error) {
	return s.repo.ListAccuracies(ctx, limit)
}

type storedSnapshot struct {
	id       snowflake.ID
	snapshot predictdomain.Snapshot
}

func (s *Service) loadLatest(ctx context.Context, kind canonical.VoucherType) (storedSnapshot, error) {
	row, err := s.repo.LatestSnapshot(ctx, string(kind))
	if err != nil {
		return storedSnapshot{}, err
	}

	var patterns []predictdomain.PartyPattern
	if err := json.Unmarshal(row.Patterns, &patterns); err != nil {
		return storedSnapshot{}, fmt.Errorf("decode snapshot patterns: %w", err)
	}

	return storedSnapshot{
		id: row.ID,
		snapshot: predictdomain.Snapshot{
			Kind:        canonical.VoucherType(row.Kind),
			GeneratedAt: row.GeneratedAt,
			Patterns:    patterns,
		},
	}, nil
}

func (s *Service) scorePrior(ctx context.Context, prior storedSnapshot, ds canonical.Dataset) {
	scores := s.predict.Score(ctx, prior.snapshot, ds)
	if len(scores) == 0 {
		return
	}

	now := time.Now().UTC()
	records := make([]domain.AccuracyRecord, 0, len(scores))
	for _, score := range scores {
		records = append(records, domain.AccuracyRecord{
			ID:           s.genID.Generate(),
			SnapshotID:   prior.id,
			Kind:         string(prior.snapshot.Kind),
			PartyKey:     score.PartyKey,
			PartyName:    score.PartyName,
			DateAccuracy: score.DateAccuracy,
			ItemAccuracy: score.ItemAccuracy,
			ActualDate:   score.ActualDate,
			ScoredAt:     now,
		})
	}

	if err := s.repo.SaveAccuracies(ctx, records); err != nil {
		s.log.Warn("save accuracy records failed",
			zap.String("kind", string(prior.snapshot.Kind)),
			zap.Error(err),
		)
		return
	}
	s.log.Info("prior snapshot scored",
		zap.String("kind", string(prior.snapshot.Kind)),
		zap.Int("parties", len(records)),
	)
}

func (s *Service) store(ctx context.Context, kind canonical.VoucherType, asOf time.Time, patterns []predictdomain.PartyPattern) error {
	payload, err := json.Marshal(patterns)
	if err != nil {
		return fmt.Errorf("encode snapshot patterns: %w", err)
	}
	return s.repo.SaveSnapshot(ctx, &domain.PredictionSnapshot{
		ID:          s.genID.Generate(),
		Kind:        string(kind),
		GeneratedAt: asOf.UTC(),
		Patterns:    datatypes.JSON(payload),
	})
}
