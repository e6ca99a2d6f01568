package service

import (
	"context"
	"time"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
	domain "github.com/smallbiznis/ledgerscope/internal/stock/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log *zap.Logger
}

type Service struct {
	log *zap.Logger
}

func NewService(p ServiceParam) domain.Service {
	return &Service{log: p.Log.Named("stock.service")}
}

func (s *Service) CurrentStock(ctx context.Context, ds canonical.Dataset, itemKey string) (float64, error) {
	item, ok := ds.Items[itemKey]
	if !ok {
		return 0, domain.ErrItemNotFound
	}
	return buildIndex(ds, itemKey).CurrentStock(item), nil
}

func (s *Service) MonthBuckets(ctx context.Context, ds canonical.Dataset, itemKey string, months int, asOf time.Time) ([]domain.MonthBucket, error) {
	item, ok := ds.Items[itemKey]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return buildIndex(ds, itemKey).MonthBuckets(item, months, asOf), nil
}

func (s *Service) Turnover(ctx context.Context, ds canonical.Dataset, itemKey string, months int, asOf time.Time) (domain.Turnover, error) {
	item, ok := ds.Items[itemKey]
	if !ok {
		return domain.Turnover{}, domain.ErrItemNotFound
	}
	return buildIndex(ds, itemKey).Turnover(item, months, asOf), nil
}
