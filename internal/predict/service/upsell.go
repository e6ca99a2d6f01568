package service

import (
	"sort"
	"time"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
	domain "github.com/smallbiznis/ledgerscope/internal/predict/domain"
)

// market is the cross-party view the upsell heuristics rank against: who buys
// what, how much of it, and how item volume has moved recently.
type market struct {
	itemSets     map[string]map[string]bool // party -> items bought
	buyers       map[string][]string        // item -> parties buying it
	avgOrderQty  map[string]float64         // item -> mean quantity per order
	categoryTop  map[string]string          // category -> highest-volume item
	trendingKeys []string                   // items whose recent volume outpaces their baseline
}

func buildMarket(histories []partyHistory, ds canonical.Dataset, asOf time.Time, params domain.Params) *market {
	m := &market{
		itemSets:    make(map[string]map[string]bool),
		buyers:      make(map[string][]string),
		avgOrderQty: make(map[string]float64),
		categoryTop: make(map[string]string),
	}

	totalQty := make(map[string]float64)
	orderCount := make(map[string]int)
	monthly := make(map[string]map[string]float64) // item -> YYYY-MM -> qty

	for _, h := range histories {
		set := make(map[string]bool)
		for _, o := range h.orders {
			monthKey := o.date.Format("2006-01")
			for itemKey, qty := range o.items {
				set[itemKey] = true
				totalQty[itemKey] += qty
				orderCount[itemKey]++
				if monthly[itemKey] == nil {
					monthly[itemKey] = make(map[string]float64)
				}
				monthly[itemKey][monthKey] += qty
			}
		}
		m.itemSets[h.key] = set
		for itemKey := range set {
			m.buyers[itemKey] = append(m.buyers[itemKey], h.key)
		}
	}

	for itemKey, total := range totalQty {
		if orderCount[itemKey] > 0 {
			m.avgOrderQty[itemKey] = total / float64(orderCount[itemKey])
		}
	}

	// Highest cross-party volume per category.
	categoryVolume := make(map[string]float64)
	for itemKey, total := range totalQty {
		item, ok := ds.Items[itemKey]
		if !ok || item.Group == "" {
			continue
		}
		if current, seen := m.categoryTop[item.Group]; !seen || total > categoryVolume[item.Group] || (total == categoryVolume[item.Group] && itemKey < current) {
			m.categoryTop[item.Group] = itemKey
			categoryVolume[item.Group] = total
		}
	}

	// Trailing 3-month average monthly volume vs the prior 9 months.
	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	recentCut := monthStart.AddDate(0, -2, 0)
	baselineCut := monthStart.AddDate(0, -11, 0)
	var trending []string
	for itemKey, byMonth := range monthly {
		var recent, baseline float64
		for monthKey, qty := range byMonth {
			t, err := time.Parse("2006-01", monthKey)
			if err != nil {
				continue
			}
			switch {
			case !t.Before(recentCut):
				recent += qty
			case !t.Before(baselineCut):
				baseline += qty
			}
		}
		recentAvg := recent / 3
		baselineAvg := baseline / 9
		if recentAvg > 0 && recentAvg > params.TrendingRatio*baselineAvg {
			trending = append(trending, itemKey)
		}
	}
	sort.Strings(trending)
	m.trendingKeys = trending

	return m
}

// suggest assembles up to MaxSuggestions cross-sell candidates in priority
// order: co-purchase lookalikes, category fill, then market-trending items.
func (s *Service) suggest(h partyHistory, m *market, ds canonical.Dataset) []domain.Suggestion {
	mine := m.itemSets[h.key]
	if mine == nil {
		return nil
	}
	var out []domain.Suggestion
	suggested := make(map[string]bool)

	add := func(itemKey, reason string) bool {
		if len(out) >= s.params.MaxSuggestions || suggested[itemKey] || mine[itemKey] {
			return len(out) < s.params.MaxSuggestions
		}
		suggested[itemKey] = true
		name := itemKey
		unitsPerPack := 1.0
		if item, ok := ds.Items[itemKey]; ok {
			name = item.Name
			unitsPerPack = item.UnitsPerPack
		}
		out = append(out, domain.Suggestion{
			ItemKey:      itemKey,
			ItemName:     name,
			Reason:       reason,
			SuggestedQty: canonical.RoundUpToPack(m.avgOrderQty[itemKey], unitsPerPack),
		})
		return len(out) < s.params.MaxSuggestions
	}

	for _, itemKey := range s.coPurchase(h.key, mine, m) {
		if !add(itemKey, domain.ReasonCoPurchase) {
			return out
		}
	}

	for _, itemKey := range s.categoryFill(mine, ds, m) {
		if !add(itemKey, domain.ReasonCategoryFill) {
			return out
		}
	}

	taken := 0
	for _, itemKey := range m.trendingKeys {
		if mine[itemKey] || suggested[itemKey] {
			continue
		}
		if taken >= s.params.MaxTrending {
			break
		}
		taken++
		if !add(itemKey, domain.ReasonTrending) {
			return out
		}
	}
	return out
}

// coPurchase ranks items bought by similar parties (item-set overlap at or
// above the threshold) that this party does not buy.
func (s *Service) coPurchase(partyKey string, mine map[string]bool, m *market) []string {
	votes := make(map[string]int)
	for otherKey, otherSet := range m.itemSets {
		if otherKey == partyKey {
			continue
		}
		shared := 0
		for itemKey := range mine {
			if otherSet[itemKey] {
				shared++
			}
		}
		if len(mine) == 0 || float64(shared)/float64(len(mine)) < s.params.OverlapThreshold {
			continue
		}
		for itemKey := range otherSet {
			if !mine[itemKey] {
				votes[itemKey]++
			}
		}
	}

	ranked := make([]string, 0, len(votes))
	for itemKey := range votes {
		ranked = append(ranked, itemKey)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if votes[ranked[i]] != votes[ranked[j]] {
			return votes[ranked[i]] > votes[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > s.params.MaxCoPurchase {
		ranked = ranked[:s.params.MaxCoPurchase]
	}
	return ranked
}

// categoryFill suggests the highest-volume unpurchased item for each category
// the party already buys into, one per category.
func (s *Service) categoryFill(mine map[string]bool, ds canonical.Dataset, m *market) []string {
	categories := make(map[string]bool)
	for itemKey := range mine {
		if item, ok := ds.Items[itemKey]; ok && item.Group != "" {
			categories[item.Group] = true
		}
	}
	sorted := make([]string, 0, len(categories))
	for category := range categories {
		sorted = append(sorted, category)
	}
	sort.Strings(sorted)

	var out []string
	for _, category := range sorted {
		top, ok := m.categoryTop[category]
		if ok && !mine[top] {
			out = append(out, top)
		}
	}
	return out
}
