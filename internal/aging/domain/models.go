// Package domain defines receivable/payable aging views and the cash/bank
// balance aggregate.
package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
)

// Kind distinguishes money owed to us from money we owe.
type Kind string

const (
	KindReceivable Kind = "receivable"
	KindPayable    Kind = "payable"
)

// Aging bucket labels by days past due.
const (
	BucketCurrent = "current"
	Bucket1To30   = "1-30"
	Bucket31To60  = "31-60"
	Bucket61To90  = "61-90"
	BucketOver90  = "90+"
)

// BucketFor maps days-past-due onto its aging bucket. Zero and negative days
// are current; the boundaries 30/60/90 close their bucket.
func BucketFor(daysPastDue int) string {
	switch {
	case daysPastDue <= 0:
		return BucketCurrent
	case daysPastDue <= 30:
		return Bucket1To30
	case daysPastDue <= 60:
		return Bucket31To60
	case daysPastDue <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

// Outstanding is one unpaid (or partially paid) invoice.
type Outstanding struct {
	VoucherKey  string    `json:"voucher_key"`
	Number      string    `json:"number"`
	Date        time.Time `json:"date"`
	Kind        Kind      `json:"kind"`
	PartyKey    string    `json:"party_key"`
	PartyName   string    `json:"party_name"`
	Billed      float64   `json:"billed"`
	Paid        float64   `json:"paid"`
	Outstanding float64   `json:"outstanding"`
	DueDate     time.Time `json:"due_date"`
	DaysPastDue int       `json:"days_past_due"`
	Bucket      string    `json:"bucket"`
}

// AccountBalance is one cash/bank account's replayed balance.
type AccountBalance struct {
	AccountKey  string  `json:"account_key"`
	AccountName string  `json:"account_name"`
	Balance     float64 `json:"balance"`
}

// CashBalances aggregates the bank- and cash-natured accounts.
type CashBalances struct {
	Total    float64          `json:"total"`
	Accounts []AccountBalance `json:"accounts"`
}

// Service derives aging and balance views from a canonical dataset.
type Service interface {
	// Outstandings returns one record per unpaid sale/purchase voucher as of
	// the given date, most overdue first.
	Outstandings(ctx context.Context, ds canonical.Dataset, asOf time.Time) []Outstanding

	// CashAndBank sums opening balances of bank/cash accounts and replays
	// signed account-line amounts against them in a single voucher pass.
	CashAndBank(ctx context.Context, ds canonical.Dataset) CashBalances
}
