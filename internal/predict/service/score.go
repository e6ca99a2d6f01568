package service

import (
	"context"
	"math"
	"time"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
	domain "github.com/smallbiznis/ledgerscope/internal/predict/domain"
)

// Score closes the feedback loop: each prior prediction is compared against
// the first actual order that arrived after its last-known order. Parties
// with no later actuals score zero on both axes.
func (s *Service) Score(ctx context.Context, snapshot domain.Snapshot, ds canonical.Dataset) []domain.Accuracy {
	histories := collectHistories(ds, snapshot.Kind)
	byParty := make(map[string]partyHistory, len(histories))
	for _, h := range histories {
		byParty[h.key] = h
	}

	results := make([]domain.Accuracy, 0, len(snapshot.Patterns))
	for _, pattern := range snapshot.Patterns {
		acc := domain.Accuracy{PartyKey: pattern.PartyKey, PartyName: pattern.PartyName}

		if actual, ok := firstOrderAfter(byParty[pattern.PartyKey], pattern.LastOrder); ok {
			date := actual.date
			acc.ActualDate = &date
			acc.DateAccuracy = dateAccuracy(pattern, actual)
			acc.ItemAccuracy = itemAccuracy(pattern.Items, actual.items)
		}
		results = append(results, acc)
	}
	return results
}

func firstOrderAfter(h partyHistory, after time.Time) (order, bool) {
	for _, o := range h.orders {
		if o.date.After(after) {
			return o, true
		}
	}
	return order{}, false
}

func dateAccuracy(pattern domain.PartyPattern, actual order) float64 {
	if pattern.EwmaInterval <= 0 {
		return 0
	}
	errDays := math.Abs(pattern.PredictedNext.Sub(actual.date).Hours() / 24)
	return clamp01(1 - errDays/pattern.EwmaInterval)
}

// itemAccuracy compares predicted quantities with the actual order, summing
// absolute errors over the predicted items.
func itemAccuracy(forecasts []domain.ItemForecast, actual map[string]float64) float64 {
	var predictedSum, errSum float64
	for _, f := range forecasts {
		predictedSum += f.PredictedQty
		errSum += math.Abs(f.PredictedQty - actual[f.ItemKey])
	}
	if predictedSum <= 0 {
		return 0
	}
	return clamp01(1 - errSum/predictedSum)
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
