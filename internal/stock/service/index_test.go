package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
	domain "github.com/smallbiznis/ledgerscope/internal/stock/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func inventoryVoucher(t canonical.VoucherType, number string, on time.Time, qty, rate, amount float64) canonical.Voucher {
	v := canonical.Voucher{
		Type:   t,
		Number: number,
		Date:   on,
		Lines: []canonical.VoucherLine{
			canonical.NewInventoryLine(canonical.InventoryLine{
				ItemKey:  "WIDGET",
				ItemName: "Widget",
				Qty:      qty,
				Rate:     rate,
				Amount:   amount,
			}),
		},
	}
	v.Key = canonical.VoucherKey(t, number, on)
	return v
}

func stockDataset() canonical.Dataset {
	ds := canonical.NewDataset()
	ds.Items["WIDGET"] = canonical.Item{
		Key:         "WIDGET",
		Name:        "Widget",
		OpeningQty:  100,
		OpeningRate: 10,
	}

	cancelled := inventoryVoucher(canonical.VoucherTypeSale, "X", date(2024, 3, 1), 999, 10, 9990)
	cancelled.Cancelled = true

	ds.Vouchers = []canonical.Voucher{
		inventoryVoucher(canonical.VoucherTypePurchase, "P-1", date(2024, 2, 10), 50, 10, 500),
		inventoryVoucher(canonical.VoucherTypeSale, "S-1", date(2024, 3, 5), 30, 10, 300),
		cancelled,
		inventoryVoucher(canonical.VoucherTypeCreditNote, "CN-1", date(2024, 3, 20), 5, 10, 50),
		inventoryVoucher(canonical.VoucherTypeDebitNote, "DN-1", date(2024, 4, 2), 5, 10, 50),
		// Adjustment quantity carries its own sign.
		inventoryVoucher(canonical.VoucherTypeStockAdjustment, "ADJ-1", date(2024, 4, 10), -3, 0, 0),
	}
	return ds
}

func newStockService() domain.Service {
	return NewService(ServiceParam{Log: zap.NewNop()})
}

func TestCurrentStockReplay(t *testing.T) {
	svc := newStockService()
	qty, err := svc.CurrentStock(context.Background(), stockDataset(), "WIDGET")
	assert.NoError(t, err)
	// 100 +50 -30 -5 +5 -3, the cancelled sale never moves stock.
	assert.Equal(t, 117.0, qty)
}

func TestCurrentStockUnknownItem(t *testing.T) {
	svc := newStockService()
	_, err := svc.CurrentStock(context.Background(), stockDataset(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestIndexedMatchesUnindexed(t *testing.T) {
	ds := stockDataset()
	item := ds.Items["WIDGET"]

	full := BuildIndex(ds)
	svc := newStockService()
	qty, err := svc.CurrentStock(context.Background(), ds, "WIDGET")
	assert.NoError(t, err)
	assert.Equal(t, full.CurrentStock(item), qty)
}

func TestMonthBuckets(t *testing.T) {
	ds := stockDataset()
	buckets := BuildIndex(ds).MonthBuckets(ds.Items["WIDGET"], 3, date(2024, 4, 15))
	assert.Len(t, buckets, 3)

	assert.Equal(t, "2024-02", buckets[0].Key)
	assert.Equal(t, "Feb 2024", buckets[0].Label)
	assert.Equal(t, 100.0, buckets[0].Opening)
	assert.Equal(t, 50.0, buckets[0].Inward)
	assert.Equal(t, 150.0, buckets[0].Closing)

	assert.Equal(t, 35.0, buckets[1].Outward)
	assert.Equal(t, 115.0, buckets[1].Closing)

	assert.Equal(t, 5.0, buckets[2].Inward)
	assert.Equal(t, 3.0, buckets[2].Outward)
	assert.Equal(t, 117.0, buckets[2].Closing)
}

func TestMonthBucketsContinuity(t *testing.T) {
	ds := stockDataset()
	buckets := BuildIndex(ds).MonthBuckets(ds.Items["WIDGET"], 6, date(2024, 4, 15))
	for i := 1; i < len(buckets); i++ {
		assert.Equal(t, buckets[i-1].Closing, buckets[i].Opening, buckets[i].Key)
	}
}

func TestMonthBucketsRollsPreWindowForward(t *testing.T) {
	ds := stockDataset()
	// One-month window: everything before April folds into the opening.
	buckets := BuildIndex(ds).MonthBuckets(ds.Items["WIDGET"], 1, date(2024, 4, 15))
	assert.Len(t, buckets, 1)
	assert.Equal(t, 115.0, buckets[0].Opening)
	assert.Equal(t, 117.0, buckets[0].Closing)
}

func TestTurnover(t *testing.T) {
	ds := stockDataset()
	turnover := BuildIndex(ds).Turnover(ds.Items["WIDGET"], 3, date(2024, 4, 15))

	assert.Equal(t, 3, turnover.PeriodMonths)
	// Sale 300 + credit note 50; the adjustment has no cost value.
	assert.InDelta(t, 350.0, turnover.COGS, 1e-9)
	assert.InDelta(t, 1085.0, turnover.AvgInventoryValue, 1e-9)
	assert.InDelta(t, 350.0/1085.0, turnover.Ratio, 1e-9)
	assert.InDelta(t, turnover.Ratio*4, turnover.AnnualizedRatio, 1e-9)
	assert.InDelta(t, 90/turnover.Ratio, turnover.DaysOfInventory, 1e-6)
	assert.Equal(t, domain.TurnoverSlow, turnover.Class)
}

func TestTurnoverNoMovement(t *testing.T) {
	ds := canonical.NewDataset()
	ds.Items["WIDGET"] = canonical.Item{Key: "WIDGET", OpeningQty: 10, OpeningRate: 5}

	turnover := BuildIndex(ds).Turnover(ds.Items["WIDGET"], 12, date(2024, 4, 15))
	assert.Equal(t, 0.0, turnover.Ratio)
	assert.True(t, math.IsInf(turnover.DaysOfInventory, 1))
	assert.Equal(t, domain.TurnoverDead, turnover.Class)
}

func TestClassifyBoundaries(t *testing.T) {
	assert.Equal(t, domain.TurnoverFast, classify(6.0))
	assert.Equal(t, domain.TurnoverModerate, classify(5.99))
	assert.Equal(t, domain.TurnoverModerate, classify(2.0))
	assert.Equal(t, domain.TurnoverSlow, classify(1.99))
	assert.Equal(t, domain.TurnoverSlow, classify(0.5))
	assert.Equal(t, domain.TurnoverDead, classify(0.49))
}
