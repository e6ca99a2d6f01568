// Package domain defines order-pattern mining results: per-party cadence,
// item forecasts, upsell suggestions, prediction snapshots and their accuracy
// scores.
package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
)

// Params holds the mining heuristics. The thresholds have no derivation
// beyond observed behavior of the source data, so they stay configurable
// rather than hard-coded.
type Params struct {
	Alpha            float64 // EWMA smoothing factor
	Aggression       float64 // multiplier biasing reorder dates earlier
	MinOrders        int     // parties below this order count are excluded
	VolumeCap        int     // order count where the volume term saturates
	ConsistencyDamp  float64 // dampening applied to the consistency term
	ConfidenceFloor  float64
	OverlapThreshold float64 // co-purchase similarity cutoff
	TrendingRatio    float64 // recent-vs-prior volume ratio for trending items
	TrendUpRatio     float64
	TrendDownRatio   float64
	TrendUpMult      float64
	TrendDownMult    float64
	TrendStableMult  float64
	MaxItems         int // forecasted items kept per party
	MaxSuggestions   int
	MaxCoPurchase    int
	MaxTrending      int
}

// DefaultParams returns the stock heuristics.
func DefaultParams() Params {
	return Params{
		Alpha:            0.3,
		Aggression:       0.85,
		MinOrders:        2,
		VolumeCap:        8,
		ConsistencyDamp:  0.7,
		ConfidenceFloor:  0.05,
		OverlapThreshold: 0.5,
		TrendingRatio:    1.5,
		TrendUpRatio:     1.15,
		TrendDownRatio:   0.85,
		TrendUpMult:      1.2,
		TrendDownMult:    0.95,
		TrendStableMult:  1.05,
		MaxItems:         15,
		MaxSuggestions:   5,
		MaxCoPurchase:    3,
		MaxTrending:      2,
	}
}

// Trend labels the direction of an item's order quantities.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// ItemForecast is one item's predicted next-order quantity for one party.
// PredictedQty is rounded up to a whole package, never down.
type ItemForecast struct {
	ItemKey      string  `json:"item_key"`
	ItemName     string  `json:"item_name"`
	Frequency    int     `json:"frequency"`
	AvgQty       float64 `json:"avg_qty"`
	LastQty      float64 `json:"last_qty"`
	PredictedQty float64 `json:"predicted_qty"`
	Trend        Trend   `json:"trend"`
}

// Upsell reason tags, in suggestion priority order.
const (
	ReasonCoPurchase   = "co_purchase"
	ReasonCategoryFill = "category_fill"
	ReasonTrending     = "trending"
)

// Suggestion is one cross-sell candidate for a party.
type Suggestion struct {
	ItemKey      string  `json:"item_key"`
	ItemName     string  `json:"item_name"`
	Reason       string  `json:"reason"`
	SuggestedQty float64 `json:"suggested_qty"`
}

// PartyPattern is the mined order cadence of one counterparty.
// DaysUntil is negative when the predicted date is already past.
type PartyPattern struct {
	PartyKey       string         `json:"party_key"`
	PartyName      string         `json:"party_name"`
	OrderDates     []time.Time    `json:"order_dates"`
	MeanInterval   float64        `json:"mean_interval"`
	IntervalStdDev float64        `json:"interval_std_dev"`
	EwmaInterval   float64        `json:"ewma_interval"`
	LastOrder      time.Time      `json:"last_order"`
	PredictedNext  time.Time      `json:"predicted_next"`
	Confidence     float64        `json:"confidence"`
	DaysUntil      int            `json:"days_until"`
	Items          []ItemForecast `json:"items,omitempty"`
	Suggestions    []Suggestion   `json:"suggestions,omitempty"`
}

// Snapshot is one generation of predictions, the unit the feedback loop
// scores and persists.
type Snapshot struct {
	Kind        canonical.VoucherType `json:"kind"`
	GeneratedAt time.Time             `json:"generated_at"`
	Patterns    []PartyPattern        `json:"patterns"`
}

// Accuracy scores one prior party prediction against the first actual order
// that followed it. A party with no later actuals scores zero; that is data,
// not an error.
type Accuracy struct {
	PartyKey     string     `json:"party_key"`
	PartyName    string     `json:"party_name"`
	DateAccuracy float64    `json:"date_accuracy"`
	ItemAccuracy float64    `json:"item_accuracy"`
	ActualDate   *time.Time `json:"actual_date,omitempty"`
}

// Service mines order patterns and scores prior snapshots. Both operations
// are pure over their inputs.
type Service interface {
	// Predict returns one pattern per counterparty with enough history,
	// sorted most urgent first (ascending days-until-predicted).
	Predict(ctx context.Context, ds canonical.Dataset, kind canonical.VoucherType, asOf time.Time) []PartyPattern

	// Score evaluates a prior snapshot against the dataset's newer vouchers.
	Score(ctx context.Context, snapshot Snapshot, ds canonical.Dataset) []Accuracy
}
