package service

import (
	"sort"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
	domain "github.com/smallbiznis/ledgerscope/internal/predict/domain"
)

// forecastItems predicts the next-order quantity for every item the party has
// ordered, keeping the most frequently ordered ones.
func (s *Service) forecastItems(h partyHistory, ds canonical.Dataset) []domain.ItemForecast {
	quantities := make(map[string][]float64)
	for _, o := range h.orders {
		for itemKey, qty := range o.items {
			quantities[itemKey] = append(quantities[itemKey], qty)
		}
	}

	forecasts := make([]domain.ItemForecast, 0, len(quantities))
	for itemKey, series := range quantities {
		avg := meanOf(series)
		trend := s.trendOf(series)
		predicted := avg * s.trendMultiplier(trend)

		unitsPerPack := 1.0
		name := itemKey
		if item, ok := ds.Items[itemKey]; ok {
			unitsPerPack = item.UnitsPerPack
			name = item.Name
		}

		forecasts = append(forecasts, domain.ItemForecast{
			ItemKey:      itemKey,
			ItemName:     name,
			Frequency:    len(series),
			AvgQty:       avg,
			LastQty:      series[len(series)-1],
			PredictedQty: canonical.RoundUpToPack(predicted, unitsPerPack),
			Trend:        trend,
		})
	}

	sort.SliceStable(forecasts, func(i, j int) bool {
		if forecasts[i].Frequency != forecasts[j].Frequency {
			return forecasts[i].Frequency > forecasts[j].Frequency
		}
		return forecasts[i].ItemKey < forecasts[j].ItemKey
	})
	if len(forecasts) > s.params.MaxItems {
		forecasts = forecasts[:s.params.MaxItems]
	}
	return forecasts
}

// trendOf compares the first and second half of the quantity history.
func (s *Service) trendOf(series []float64) domain.Trend {
	if len(series) < 2 {
		return domain.TrendStable
	}
	half := len(series) / 2
	first := meanOf(series[:half])
	second := meanOf(series[half:])
	if first <= 0 {
		return domain.TrendStable
	}
	switch ratio := second / first; {
	case ratio > s.params.TrendUpRatio:
		return domain.TrendUp
	case ratio < s.params.TrendDownRatio:
		return domain.TrendDown
	default:
		return domain.TrendStable
	}
}

func (s *Service) trendMultiplier(trend domain.Trend) float64 {
	switch trend {
	case domain.TrendUp:
		return s.params.TrendUpMult
	case domain.TrendDown:
		return s.params.TrendDownMult
	default:
		return s.params.TrendStableMult
	}
}
