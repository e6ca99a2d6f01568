// Package domain defines the derived stock views: current quantity, monthly
// movement buckets and turnover classification.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
)

// MonthBucket is one item's movement summary for one calendar month.
// Closing of bucket i always equals opening of bucket i+1.
type MonthBucket struct {
	Key     string  `json:"key"`   // YYYY-MM
	Label   string  `json:"label"` // e.g. "Jan 2026"
	Opening float64 `json:"opening"`
	Inward  float64 `json:"inward"`
	Outward float64 `json:"outward"`
	Closing float64 `json:"closing"`
}

// TurnoverClass buckets an item by annualized turnover ratio.
type TurnoverClass string

const (
	TurnoverFast     TurnoverClass = "fast"     // annualized >= 6
	TurnoverModerate TurnoverClass = "moderate" // annualized >= 2
	TurnoverSlow     TurnoverClass = "slow"     // annualized >= 0.5
	TurnoverDead     TurnoverClass = "dead"
)

// Turnover is an item's turnover summary over a trailing period.
// DaysOfInventory is +Inf when the ratio is zero; that is a meaningful
// result (nothing moved), not an error.
type Turnover struct {
	ItemKey           string        `json:"item_key"`
	PeriodMonths      int           `json:"period_months"`
	COGS              float64       `json:"cogs"`
	AvgInventoryValue float64       `json:"avg_inventory_value"`
	Ratio             float64       `json:"ratio"`
	AnnualizedRatio   float64       `json:"annualized_ratio"`
	DaysOfInventory   float64       `json:"-"`
	Class             TurnoverClass `json:"class"`
}

// Service replays canonical vouchers against item opening balances. All
// methods are pure; the unindexed entry points build a throwaway single-item
// index so only one replay algorithm exists.
type Service interface {
	CurrentStock(ctx context.Context, ds canonical.Dataset, itemKey string) (float64, error)
	MonthBuckets(ctx context.Context, ds canonical.Dataset, itemKey string, months int, asOf time.Time) ([]MonthBucket, error)
	Turnover(ctx context.Context, ds canonical.Dataset, itemKey string, months int, asOf time.Time) (Turnover, error)
}

var ErrItemNotFound = errors.New("item_not_found")
