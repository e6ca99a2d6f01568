package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
	"github.com/smallbiznis/ledgerscope/internal/config"
	domain "github.com/smallbiznis/ledgerscope/internal/predict/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log    *zap.Logger
	Config config.Config
}

type Service struct {
	log    *zap.Logger
	params domain.Params
}

func NewService(p ServiceParam) domain.Service {
	params := domain.DefaultParams()
	if p.Config.PredictAlpha > 0 {
		params.Alpha = p.Config.PredictAlpha
	}
	if p.Config.PredictAggression > 0 {
		params.Aggression = p.Config.PredictAggression
	}
	if p.Config.PredictOverlapThreshold > 0 {
		params.OverlapThreshold = p.Config.PredictOverlapThreshold
	}
	if p.Config.PredictTrendingRatio > 0 {
		params.TrendingRatio = p.Config.PredictTrendingRatio
	}
	return &Service{
		log:    p.Log.Named("predict.service"),
		params: params,
	}
}

// order is one voucher flattened to its date and per-item quantities.
type order struct {
	date  time.Time
	items map[string]float64
}

// partyHistory is every order of one counterparty, chronological.
type partyHistory struct {
	key    string
	name   string
	orders []order
}

func (s *Service) Predict(ctx context.Context, ds canonical.Dataset, kind canonical.VoucherType, asOf time.Time) []domain.PartyPattern {
	histories := collectHistories(ds, kind)
	market := buildMarket(histories, ds, asOf, s.params)

	var patterns []domain.PartyPattern
	for _, h := range histories {
		pattern, ok := s.minePattern(h, asOf)
		if !ok {
			continue
		}
		pattern.Items = s.forecastItems(h, ds)
		pattern.Suggestions = s.suggest(h, market, ds)
		patterns = append(patterns, pattern)
	}

	sort.SliceStable(patterns, func(i, j int) bool { return patterns[i].DaysUntil < patterns[j].DaysUntil })
	s.log.Debug("patterns mined",
		zap.String("kind", string(kind)),
		zap.Int("parties", len(patterns)),
	)
	return patterns
}

// collectHistories groups the dataset's vouchers of one type by counterparty.
// Orders are sorted by date per party; vouchers without a counterparty
// reference are skipped.
func collectHistories(ds canonical.Dataset, kind canonical.VoucherType) []partyHistory {
	byParty := make(map[string]*partyHistory)
	var keys []string
	for _, v := range ds.Vouchers {
		if v.Cancelled || v.Optional || v.Type != kind || v.PartyKey == "" {
			continue
		}
		h, ok := byParty[v.PartyKey]
		if !ok {
			h = &partyHistory{key: v.PartyKey, name: v.PartyName}
			byParty[v.PartyKey] = h
			keys = append(keys, v.PartyKey)
		}
		o := order{date: v.Date, items: make(map[string]float64)}
		for _, line := range v.Lines {
			if line.Kind != canonical.LineKindInventory {
				continue
			}
			o.items[line.Inventory.ItemKey] += line.Inventory.Qty
		}
		h.orders = append(h.orders, o)
	}

	sort.Strings(keys)
	histories := make([]partyHistory, 0, len(keys))
	for _, key := range keys {
		h := byParty[key]
		sort.SliceStable(h.orders, func(i, j int) bool { return h.orders[i].date.Before(h.orders[j].date) })
		histories = append(histories, *h)
	}
	return histories
}

// minePattern estimates the next-order date for one party. Parties below the
// minimum order count, or whose orders all share one date, yield no pattern.
func (s *Service) minePattern(h partyHistory, asOf time.Time) (domain.PartyPattern, bool) {
	if len(h.orders) < s.params.MinOrders {
		return domain.PartyPattern{}, false
	}

	var gaps []float64
	for i := 1; i < len(h.orders); i++ {
		gap := h.orders[i].date.Sub(h.orders[i-1].date).Hours() / 24
		if gap > 0 {
			gaps = append(gaps, gap)
		}
	}
	if len(gaps) == 0 {
		return domain.PartyPattern{}, false
	}

	// Recency-weighted interval, seeded at the first gap, then biased toward
	// earlier reorder by the aggression multiplier.
	ewma := gaps[0]
	for _, gap := range gaps[1:] {
		ewma = s.params.Alpha*gap + (1-s.params.Alpha)*ewma
	}
	aggressive := ewma * s.params.Aggression

	mean := meanOf(gaps)
	std := stdDevOf(gaps, mean)

	lastOrder := h.orders[len(h.orders)-1].date
	predicted := lastOrder.AddDate(0, 0, int(math.Round(aggressive)))
	daysUntil := int(predicted.Sub(dayOf(asOf)).Hours() / 24)

	dates := make([]time.Time, len(h.orders))
	for i, o := range h.orders {
		dates[i] = o.date
	}

	return domain.PartyPattern{
		PartyKey:       h.key,
		PartyName:      h.name,
		OrderDates:     dates,
		MeanInterval:   mean,
		IntervalStdDev: std,
		EwmaInterval:   ewma,
		LastOrder:      lastOrder,
		PredictedNext:  predicted,
		Confidence:     s.confidence(len(h.orders), mean, std, daysUntil),
		DaysUntil:      daysUntil,
	}, true
}

// confidence combines data volume, gap consistency and a recency bonus.
func (s *Service) confidence(orderCount int, mean, std float64, daysUntil int) float64 {
	volume := math.Min(float64(orderCount), float64(s.params.VolumeCap)) / float64(s.params.VolumeCap)

	consistency := 0.0
	if mean > 0 {
		consistency = math.Max(0, 1-std/mean) * s.params.ConsistencyDamp
	}

	bonus := 0.0
	switch {
	case daysUntil <= 7:
		bonus = 0.1
	case daysUntil <= 30:
		bonus = 0.05
	}

	conf := 0.5*volume + 0.5*consistency + bonus
	return math.Min(1, math.Max(s.params.ConfidenceFloor, conf))
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDevOf(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(values)))
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
