package service

import (
	"math"
	"sort"
	"time"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
	domain "github.com/smallbiznis/ledgerscope/internal/stock/domain"
)

// epsilon guards the average-inventory divisor.
const epsilon = 1e-9

// daysPerMonth is the fixed month length used for days-of-inventory and the
// annualized ratio. Bucket boundaries use calendar months.
const daysPerMonth = 30

// movement is one replayed stock delta for a single item.
type movement struct {
	date         time.Time
	qty          float64 // signed delta in base units
	outwardValue float64 // cost value when qty < 0
}

// Index maps item keys to their date-ordered movements, pre-filtered to
// exclude cancelled and optional vouchers. It is an explicit caller-held
// value: rebuild it whenever the voucher list changes.
type Index struct {
	movements map[string][]movement
}

// BuildIndex scans the dataset once and buckets movements per item.
// Per-item queries touch only that item's vouchers.
func BuildIndex(ds canonical.Dataset) *Index {
	return buildIndex(ds, "")
}

// buildIndex with a non-empty onlyItem restricts the scan to one item; this
// is the unindexed path, sharing the same replay code.
func buildIndex(ds canonical.Dataset, onlyItem string) *Index {
	idx := &Index{movements: make(map[string][]movement)}
	for _, v := range ds.Vouchers {
		if v.Cancelled || v.Optional {
			continue
		}
		direction, moves := typeDirection(v.Type)
		if !moves {
			continue
		}
		for _, line := range v.Lines {
			if line.Kind != canonical.LineKindInventory {
				continue
			}
			inv := line.Inventory
			if onlyItem != "" && inv.ItemKey != onlyItem {
				continue
			}
			delta := direction * inv.Qty
			m := movement{date: v.Date, qty: delta}
			if delta < 0 {
				m.outwardValue = inv.Amount
				if m.outwardValue == 0 {
					m.outwardValue = -delta * inv.Rate
				}
			}
			idx.movements[inv.ItemKey] = append(idx.movements[inv.ItemKey], m)
		}
	}
	for key := range idx.movements {
		list := idx.movements[key]
		sort.SliceStable(list, func(i, j int) bool { return list[i].date.Before(list[j].date) })
		idx.movements[key] = list
	}
	return idx
}

// typeDirection gives the signed quantity multiplier per voucher type. Stock
// adjustments carry their direction in the line quantity itself.
func typeDirection(t canonical.VoucherType) (float64, bool) {
	switch t {
	case canonical.VoucherTypeSale, canonical.VoucherTypeCreditNote:
		return -1, true
	case canonical.VoucherTypePurchase, canonical.VoucherTypeDebitNote:
		return 1, true
	case canonical.VoucherTypeStockAdjustment:
		return 1, true
	default:
		return 0, false
	}
}

// CurrentStock replays every movement of the item on top of its opening
// quantity. Negative results are valid output on inconsistent data.
func (idx *Index) CurrentStock(item canonical.Item) float64 {
	qty := item.OpeningQty
	for _, m := range idx.movements[item.Key] {
		qty += m.qty
	}
	return qty
}

// MonthBuckets summarizes a trailing window of months ending at asOf's
// calendar month. All movements before the window roll forward into the first
// bucket's opening quantity.
func (idx *Index) MonthBuckets(item canonical.Item, months int, asOf time.Time) []domain.MonthBucket {
	if months < 1 {
		months = 1
	}
	windowStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	opening := item.OpeningQty
	list := idx.movements[item.Key]
	i := 0
	for ; i < len(list) && list[i].date.Before(windowStart); i++ {
		opening += list[i].qty
	}

	buckets := make([]domain.MonthBucket, 0, months)
	monthStart := windowStart
	for b := 0; b < months; b++ {
		monthEnd := monthStart.AddDate(0, 1, 0)
		var inward, outward float64
		for ; i < len(list) && list[i].date.Before(monthEnd); i++ {
			if list[i].qty >= 0 {
				inward += list[i].qty
			} else {
				outward += -list[i].qty
			}
		}
		closing := opening + inward - outward
		buckets = append(buckets, domain.MonthBucket{
			Key:     monthStart.Format("2006-01"),
			Label:   monthStart.Format("Jan 2006"),
			Opening: opening,
			Inward:  inward,
			Outward: outward,
			Closing: closing,
		})
		opening = closing
		monthStart = monthEnd
	}
	return buckets
}

// Turnover computes cost-of-goods-sold, average inventory value at opening
// rate, the turnover ratio and its annualized classification over a trailing
// period ending at asOf.
func (idx *Index) Turnover(item canonical.Item, months int, asOf time.Time) domain.Turnover {
	if months < 1 {
		months = 1
	}
	periodStart := asOf.AddDate(0, -months, 0)

	qtyAtStart := item.OpeningQty
	qtyAtEnd := item.OpeningQty
	var cogs float64
	for _, m := range idx.movements[item.Key] {
		if m.date.After(asOf) {
			break
		}
		qtyAtEnd += m.qty
		if !m.date.After(periodStart) {
			qtyAtStart += m.qty
			continue
		}
		if m.qty < 0 {
			cogs += m.outwardValue
		}
	}

	avgInventory := (qtyAtStart*item.OpeningRate + qtyAtEnd*item.OpeningRate) / 2
	ratio := 0.0
	if avgInventory > epsilon {
		ratio = cogs / avgInventory
	}
	days := math.Inf(1)
	if ratio != 0 {
		days = float64(months*daysPerMonth) / ratio
	}
	annualized := ratio * 12 / float64(months)

	return domain.Turnover{
		ItemKey:           item.Key,
		PeriodMonths:      months,
		COGS:              cogs,
		AvgInventoryValue: avgInventory,
		Ratio:             ratio,
		AnnualizedRatio:   annualized,
		DaysOfInventory:   days,
		Class:             classify(annualized),
	}
}

func classify(annualized float64) domain.TurnoverClass {
	switch {
	case annualized >= 6:
		return domain.TurnoverFast
	case annualized >= 2:
		return domain.TurnoverModerate
	case annualized >= 0.5:
		return domain.TurnoverSlow
	default:
		return domain.TurnoverDead
	}
}
