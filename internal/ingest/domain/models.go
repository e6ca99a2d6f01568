// Package domain defines the ingestion contracts: record kinds, recognized
// document shapes, normalization results and the merge/reconciliation types.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
)

// Kind selects which record family a document carries.
type Kind string

const (
	KindMasters      Kind = "masters"
	KindTransactions Kind = "transactions"
)

// ParseKind validates a raw kind string.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindMasters, KindTransactions:
		return Kind(raw), nil
	default:
		return "", ErrUnknownKind
	}
}

// Shape identifies which of the recognized document dialects is present.
type Shape string

const (
	// ShapeTagged is a flat list of type-tagged records with lowercase,
	// loosely-typed fields.
	ShapeTagged Shape = "tagged"
	// ShapeEnvelope is the deeply nested envelope/body/request structure
	// wrapping uppercase-field records.
	ShapeEnvelope Shape = "envelope"
	// ShapeSimple is a pre-normalized document matching the canonical model.
	ShapeSimple Shape = "simple"
	// ShapeUnknown matches none of the recognized dialects.
	ShapeUnknown Shape = "unknown"
)

// Result is the canonical partial dataset one document normalizes into.
type Result struct {
	Shape    Shape
	Company  *canonical.Company
	Items    map[string]canonical.Item
	Accounts map[string]canonical.Account
	Vouchers []canonical.Voucher
	Warnings []canonical.Warning
}

// EmptyResult returns a Result with initialized maps.
func EmptyResult(shape Shape) Result {
	return Result{
		Shape:    shape,
		Items:    make(map[string]canonical.Item),
		Accounts: make(map[string]canonical.Account),
	}
}

// MergeStats summarizes one merge of a normalized result into a dataset.
type MergeStats struct {
	ItemsAdded        int `json:"items_added"`
	ItemsReplaced     int `json:"items_replaced"`
	AccountsAdded     int `json:"accounts_added"`
	AccountsReplaced  int `json:"accounts_replaced"`
	VouchersAdded     int `json:"vouchers_added"`
	DuplicatesDropped int `json:"duplicates_dropped"`
}

// Mismatch reports a voucher whose account-line debits and credits disagree
// beyond rounding tolerance. Advisory data for import review, never an
// ingestion failure.
type Mismatch struct {
	VoucherKey string    `json:"voucher_key"`
	Number     string    `json:"number"`
	Date       time.Time `json:"date"`
	Debit      float64   `json:"debit"`
	Credit     float64   `json:"credit"`
	Diff       float64   `json:"diff"`
}

// Service normalizes raw export documents into the canonical model and merges
// them into a dataset. All methods are pure with respect to their inputs.
type Service interface {
	// Ingest decodes and normalizes one raw document. A malformed record never
	// aborts the batch; data-quality findings come back as warnings on the
	// result.
	Ingest(ctx context.Context, doc []byte, kind Kind) (Result, error)

	// Merge folds a normalized result into an existing dataset, returning a
	// structurally new dataset. Masters are last-write-wins by key; vouchers
	// deduplicate by voucher key, first occurrence wins.
	Merge(existing canonical.Dataset, res Result, source string, at time.Time) (canonical.Dataset, MergeStats)

	// Reconcile lists vouchers whose debits and credits differ by more than
	// the rounding tolerance, for vouchers carrying more than one account line.
	Reconcile(ds canonical.Dataset) []Mismatch
}

var (
	ErrUnknownKind = errors.New("unknown_record_kind")
	ErrNotJSON     = errors.New("document_not_parseable")
)
