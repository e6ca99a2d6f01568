package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/ledgerscope/internal/canonical"
	predictdomain "github.com/smallbiznis/ledgerscope/internal/predict/domain"
	"github.com/smallbiznis/ledgerscope/internal/snapshot/domain"
	"github.com/smallbiznis/ledgerscope/internal/snapshot/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockPredict struct {
	mock.Mock
}

func (m *mockPredict) Predict(ctx context.Context, ds canonical.Dataset, kind canonical.VoucherType, asOf time.Time) []predictdomain.PartyPattern {
	args := m.Called(ctx, ds, kind, asOf)
	patterns, _ := args.Get(0).([]predictdomain.PartyPattern)
	return patterns
}

func (m *mockPredict) Score(ctx context.Context, snapshot predictdomain.Snapshot, ds canonical.Dataset) []predictdomain.Accuracy {
	args := m.Called(ctx, snapshot, ds)
	scores, _ := args.Get(0).([]predictdomain.Accuracy)
	return scores
}

func newTestService(t *testing.T, predict predictdomain.Service) domain.Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	repo, err := repository.NewRepository(db)
	assert.NoError(t, err)

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)

	return NewService(Params{
		Repo:    repo,
		Predict: predict,
		Log:     zap.NewNop(),
		GenID:   node,
	})
}

func TestRunFeedbackFirstImport(t *testing.T) {
	predict := new(mockPredict)
	svc := newTestService(t, predict)
	ctx := context.Background()
	ds := canonical.NewDataset()
	asOf := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	patterns := []predictdomain.PartyPattern{{PartyKey: "ACME", PartyName: "Acme"}}
	predict.On("Predict", ctx, mock.Anything, canonical.VoucherTypeSale, asOf).Return(patterns)

	svc.RunFeedback(ctx, ds, canonical.VoucherTypeSale, asOf)

	// No prior snapshot means nothing to score.
	predict.AssertNotCalled(t, "Score", mock.Anything, mock.Anything, mock.Anything)

	latest, err := svc.Latest(ctx, canonical.VoucherTypeSale)
	assert.NoError(t, err)
	assert.Equal(t, canonical.VoucherTypeSale, latest.Kind)
	assert.Len(t, latest.Patterns, 1)
	assert.Equal(t, "ACME", latest.Patterns[0].PartyKey)

	history, err := svc.AccuracyHistory(ctx, 10)
	assert.NoError(t, err)
	assert.Empty(t, history)
}

func TestRunFeedbackScoresPriorSnapshot(t *testing.T) {
	predict := new(mockPredict)
	svc := newTestService(t, predict)
	ctx := context.Background()
	ds := canonical.NewDataset()

	first := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	predict.On("Predict", ctx, mock.Anything, canonical.VoucherTypeSale, first).
		Return([]predictdomain.PartyPattern{{PartyKey: "ACME", PartyName: "Acme"}}).Once()
	svc.RunFeedback(ctx, ds, canonical.VoucherTypeSale, first)

	actual := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)
	predict.On("Score", ctx, mock.Anything, mock.Anything).
		Return([]predictdomain.Accuracy{{
			PartyKey:     "ACME",
			PartyName:    "Acme",
			DateAccuracy: 0.8,
			ItemAccuracy: 0.9,
			ActualDate:   &actual,
		}}).Once()
	predict.On("Predict", ctx, mock.Anything, canonical.VoucherTypeSale, second).
		Return([]predictdomain.PartyPattern{{PartyKey: "ACME"}, {PartyKey: "BHARAT"}}).Once()
	svc.RunFeedback(ctx, ds, canonical.VoucherTypeSale, second)

	predict.AssertExpectations(t)

	latest, err := svc.Latest(ctx, canonical.VoucherTypeSale)
	assert.NoError(t, err)
	assert.True(t, latest.GeneratedAt.Equal(second))
	assert.Len(t, latest.Patterns, 2)

	history, err := svc.AccuracyHistory(ctx, 10)
	assert.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, "ACME", history[0].PartyKey)
	assert.Equal(t, 0.8, history[0].DateAccuracy)
	assert.Equal(t, 0.9, history[0].ItemAccuracy)
	assert.NotNil(t, history[0].ActualDate)
}

func TestLatestNotFound(t *testing.T) {
	svc := newTestService(t, new(mockPredict))
	_, err := svc.Latest(context.Background(), canonical.VoucherTypePurchase)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}
