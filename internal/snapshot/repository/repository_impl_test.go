package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/ledgerscope/internal/snapshot/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestRepository(t *testing.T) (domain.Repository, *snowflake.Node) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	repo, err := NewRepository(db)
	assert.NoError(t, err)

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)
	return repo, node
}

func TestLatestSnapshotByKind(t *testing.T) {
	repo, node := newTestRepository(t)
	ctx := context.Background()

	older := &domain.PredictionSnapshot{
		ID:          node.Generate(),
		Kind:        "SALE",
		GeneratedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Patterns:    datatypes.JSON([]byte(`[]`)),
	}
	newer := &domain.PredictionSnapshot{
		ID:          node.Generate(),
		Kind:        "SALE",
		GeneratedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Patterns:    datatypes.JSON([]byte(`[{"party_key":"ACME"}]`)),
	}
	purchase := &domain.PredictionSnapshot{
		ID:          node.Generate(),
		Kind:        "PURCHASE",
		GeneratedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Patterns:    datatypes.JSON([]byte(`[]`)),
	}
	assert.NoError(t, repo.SaveSnapshot(ctx, older))
	assert.NoError(t, repo.SaveSnapshot(ctx, newer))
	assert.NoError(t, repo.SaveSnapshot(ctx, purchase))

	got, err := repo.LatestSnapshot(ctx, "SALE")
	assert.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
	assert.JSONEq(t, `[{"party_key":"ACME"}]`, string(got.Patterns))
}

func TestSaveSnapshotDuplicateIsAlreadyStored(t *testing.T) {
	repo, node := newTestRepository(t)
	ctx := context.Background()

	snap := &domain.PredictionSnapshot{
		ID:          node.Generate(),
		Kind:        "SALE",
		GeneratedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Patterns:    datatypes.JSON([]byte(`[]`)),
	}
	assert.NoError(t, repo.SaveSnapshot(ctx, snap))

	// Re-submitting the same row hits the primary key and reports success.
	again := *snap
	assert.NoError(t, repo.SaveSnapshot(ctx, &again))

	got, err := repo.LatestSnapshot(ctx, "SALE")
	assert.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
}

func TestSaveAccuraciesDuplicateIsAlreadyStored(t *testing.T) {
	repo, node := newTestRepository(t)
	ctx := context.Background()

	records := []domain.AccuracyRecord{{
		ID:         node.Generate(),
		SnapshotID: node.Generate(),
		Kind:       "SALE",
		PartyKey:   "ACME",
		ScoredAt:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}}
	assert.NoError(t, repo.SaveAccuracies(ctx, records))
	assert.NoError(t, repo.SaveAccuracies(ctx, records))

	got, err := repo.ListAccuracies(ctx, 10)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLatestSnapshotNotFound(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.LatestSnapshot(context.Background(), "SALE")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestListAccuraciesOrderAndLimit(t *testing.T) {
	repo, node := newTestRepository(t)
	ctx := context.Background()

	snapshotID := node.Generate()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var records []domain.AccuracyRecord
	for i := 0; i < 3; i++ {
		records = append(records, domain.AccuracyRecord{
			ID:           node.Generate(),
			SnapshotID:   snapshotID,
			Kind:         "SALE",
			PartyKey:     fmt.Sprintf("PARTY-%d", i),
			DateAccuracy: 0.5,
			ItemAccuracy: 0.5,
			ScoredAt:     base.AddDate(0, 0, i),
		})
	}
	assert.NoError(t, repo.SaveAccuracies(ctx, records))

	got, err := repo.ListAccuracies(ctx, 2)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "PARTY-2", got[0].PartyKey)
	assert.Equal(t, "PARTY-1", got[1].PartyKey)
}

func TestSaveAccuraciesEmptyIsNoop(t *testing.T) {
	repo, _ := newTestRepository(t)
	assert.NoError(t, repo.SaveAccuracies(context.Background(), nil))
}
