package service

import (
	"context"
	"testing"
	"time"

	domain "github.com/smallbiznis/ledgerscope/internal/aging/domain"
	"github.com/smallbiznis/ledgerscope/internal/canonical"
	"github.com/smallbiznis/ledgerscope/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newAgingService(defaultCreditDays int) domain.Service {
	return NewService(ServiceParam{
		Log:    zap.NewNop(),
		Config: config.Config{DefaultCreditDays: defaultCreditDays},
	})
}

func saleWithRef(number string, on time.Time, amount float64, ref string, due *time.Time) canonical.Voucher {
	v := canonical.Voucher{
		Type:      canonical.VoucherTypeSale,
		Number:    number,
		Date:      on,
		PartyKey:  "ACME",
		PartyName: "Acme",
		Amount:    amount,
		Lines: []canonical.VoucherLine{
			canonical.NewAccountLine(canonical.AccountLine{
				AccountKey:  "ACME",
				AccountName: "Acme",
				IsDebit:     true,
				Amount:      amount,
				IsParty:     true,
				Allocations: []canonical.BillAllocation{{
					Name:    ref,
					Kind:    canonical.AllocationNewRef,
					Amount:  amount,
					DueDate: due,
				}},
			}),
		},
	}
	v.Key = canonical.VoucherKey(v.Type, number, on)
	return v
}

func receiptAgainst(number string, on time.Time, ref string, amount float64) canonical.Voucher {
	v := canonical.Voucher{
		Type:   canonical.VoucherTypeReceipt,
		Number: number,
		Date:   on,
		Amount: amount,
		Lines: []canonical.VoucherLine{
			canonical.NewAccountLine(canonical.AccountLine{
				AccountKey:  "ACME",
				AccountName: "Acme",
				IsDebit:     false,
				Amount:      amount,
				IsParty:     true,
				Allocations: []canonical.BillAllocation{{
					Name:   ref,
					Kind:   canonical.AllocationAgainstRef,
					Amount: amount,
				}},
			}),
		},
	}
	v.Key = canonical.VoucherKey(v.Type, number, on)
	return v
}

func TestOutstandingPartialPayment(t *testing.T) {
	due := date(2024, 4, 15)
	ds := canonical.NewDataset()
	ds.Vouchers = []canonical.Voucher{
		saleWithRef("INV-1", date(2024, 4, 1), 1000, "INV-1", &due),
		receiptAgainst("RCP-1", date(2024, 4, 10), "INV-1", 600),
	}

	svc := newAgingService(30)
	out := svc.Outstandings(context.Background(), ds, date(2024, 4, 20))
	assert.Len(t, out, 1)
	assert.Equal(t, domain.KindReceivable, out[0].Kind)
	assert.Equal(t, 1000.0, out[0].Billed)
	assert.Equal(t, 600.0, out[0].Paid)
	assert.Equal(t, 400.0, out[0].Outstanding)
	assert.Equal(t, due, out[0].DueDate)
	assert.Equal(t, 5, out[0].DaysPastDue)
	assert.Equal(t, domain.Bucket1To30, out[0].Bucket)
}

func TestOutstandingFullyPaidDisappears(t *testing.T) {
	due := date(2024, 4, 15)
	ds := canonical.NewDataset()
	ds.Vouchers = []canonical.Voucher{
		saleWithRef("INV-1", date(2024, 4, 1), 1000, "INV-1", &due),
		receiptAgainst("RCP-1", date(2024, 4, 10), "INV-1", 1000),
	}

	svc := newAgingService(30)
	assert.Empty(t, svc.Outstandings(context.Background(), ds, date(2024, 7, 1)))
}

func TestOutstandingOverpaymentClampsToZero(t *testing.T) {
	due := date(2024, 4, 15)
	ds := canonical.NewDataset()
	ds.Vouchers = []canonical.Voucher{
		saleWithRef("INV-1", date(2024, 4, 1), 1000, "INV-1", &due),
		receiptAgainst("RCP-1", date(2024, 4, 10), "INV-1", 1500),
	}

	svc := newAgingService(30)
	assert.Empty(t, svc.Outstandings(context.Background(), ds, date(2024, 7, 1)))
}

func TestOutstandingDueDateFromCreditDays(t *testing.T) {
	// No allocation: due date falls back to voucher date + account credit days.
	ds := canonical.NewDataset()
	ds.Accounts["ACME"] = canonical.Account{Key: "ACME", Name: "Acme", CreditDays: 15}
	v := canonical.Voucher{
		Type:      canonical.VoucherTypeSale,
		Number:    "INV-2",
		Date:      date(2024, 4, 1),
		PartyKey:  "ACME",
		PartyName: "Acme",
		Amount:    500,
	}
	v.Key = canonical.VoucherKey(v.Type, v.Number, v.Date)
	ds.Vouchers = []canonical.Voucher{v}

	svc := newAgingService(30)
	out := svc.Outstandings(context.Background(), ds, date(2024, 4, 20))
	assert.Len(t, out, 1)
	assert.Equal(t, date(2024, 4, 16), out[0].DueDate)

	// Without account credit days the configured default applies.
	ds.Accounts = map[string]canonical.Account{}
	out = svc.Outstandings(context.Background(), ds, date(2024, 4, 20))
	assert.Equal(t, date(2024, 5, 1), out[0].DueDate)
}

func TestOutstandingPurchaseIsPayable(t *testing.T) {
	v := canonical.Voucher{
		Type:      canonical.VoucherTypePurchase,
		Number:    "PUR-1",
		Date:      date(2024, 4, 1),
		PartyKey:  "SUPPLIER",
		PartyName: "Supplier",
		Amount:    700,
	}
	v.Key = canonical.VoucherKey(v.Type, v.Number, v.Date)
	ds := canonical.NewDataset()
	ds.Vouchers = []canonical.Voucher{v}

	svc := newAgingService(30)
	out := svc.Outstandings(context.Background(), ds, date(2024, 6, 1))
	assert.Len(t, out, 1)
	assert.Equal(t, domain.KindPayable, out[0].Kind)
}

func TestOutstandingSortsMostOverdueFirst(t *testing.T) {
	oldDue := date(2024, 1, 10)
	newDue := date(2024, 4, 10)
	ds := canonical.NewDataset()
	ds.Vouchers = []canonical.Voucher{
		saleWithRef("NEW", date(2024, 4, 1), 100, "NEW", &newDue),
		saleWithRef("OLD", date(2024, 1, 1), 100, "OLD", &oldDue),
	}

	svc := newAgingService(30)
	out := svc.Outstandings(context.Background(), ds, date(2024, 4, 20))
	assert.Len(t, out, 2)
	assert.Equal(t, "OLD", out[0].Number)
}

func TestBucketFor(t *testing.T) {
	assert.Equal(t, domain.BucketCurrent, domain.BucketFor(0))
	assert.Equal(t, domain.BucketCurrent, domain.BucketFor(-10))
	assert.Equal(t, domain.Bucket1To30, domain.BucketFor(1))
	assert.Equal(t, domain.Bucket1To30, domain.BucketFor(30))
	assert.Equal(t, domain.Bucket31To60, domain.BucketFor(31))
	assert.Equal(t, domain.Bucket31To60, domain.BucketFor(60))
	assert.Equal(t, domain.Bucket61To90, domain.BucketFor(61))
	assert.Equal(t, domain.Bucket61To90, domain.BucketFor(90))
	assert.Equal(t, domain.BucketOver90, domain.BucketFor(91))
}

func TestCashAndBank(t *testing.T) {
	ds := canonical.NewDataset()
	ds.Accounts["HDFC BANK"] = canonical.Account{Key: "HDFC BANK", Name: "HDFC Bank", Group: "Bank Accounts", OpeningBalance: 10000}
	ds.Accounts["CASH"] = canonical.Account{Key: "CASH", Name: "Cash", Group: "Cash-in-Hand", OpeningBalance: 500}
	ds.Accounts["SALES"] = canonical.Account{Key: "SALES", Name: "Sales", Group: "Sales Accounts"}

	receipt := canonical.Voucher{
		Type:   canonical.VoucherTypeReceipt,
		Number: "RCP-1",
		Date:   date(2024, 4, 5),
		Lines: []canonical.VoucherLine{
			canonical.NewAccountLine(canonical.AccountLine{AccountKey: "HDFC BANK", IsDebit: true, Amount: 2000}),
			canonical.NewAccountLine(canonical.AccountLine{AccountKey: "ACME", IsDebit: false, Amount: 2000}),
		},
	}
	receipt.Key = canonical.VoucherKey(receipt.Type, receipt.Number, receipt.Date)

	payment := canonical.Voucher{
		Type:   canonical.VoucherTypePayment,
		Number: "PAY-1",
		Date:   date(2024, 4, 6),
		Lines: []canonical.VoucherLine{
			canonical.NewAccountLine(canonical.AccountLine{AccountKey: "CASH", IsDebit: false, Amount: 300}),
		},
	}
	payment.Key = canonical.VoucherKey(payment.Type, payment.Number, payment.Date)

	cancelled := canonical.Voucher{
		Type:      canonical.VoucherTypePayment,
		Number:    "PAY-2",
		Date:      date(2024, 4, 7),
		Cancelled: true,
		Lines: []canonical.VoucherLine{
			canonical.NewAccountLine(canonical.AccountLine{AccountKey: "CASH", IsDebit: false, Amount: 9999}),
		},
	}
	cancelled.Key = canonical.VoucherKey(cancelled.Type, cancelled.Number, cancelled.Date)

	ds.Vouchers = []canonical.Voucher{receipt, payment, cancelled}

	svc := newAgingService(30)
	balances := svc.CashAndBank(context.Background(), ds)

	assert.Len(t, balances.Accounts, 2)
	// Deterministic key order.
	assert.Equal(t, "CASH", balances.Accounts[0].AccountKey)
	assert.Equal(t, 200.0, balances.Accounts[0].Balance)
	assert.Equal(t, "HDFC BANK", balances.Accounts[1].AccountKey)
	assert.Equal(t, 12000.0, balances.Accounts[1].Balance)
	assert.Equal(t, 12200.0, balances.Total)
}
