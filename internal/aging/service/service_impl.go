package service

import (
	"context"
	"sort"
	"strings"
	"time"

	domain "github.com/smallbiznis/ledgerscope/internal/aging/domain"
	"github.com/smallbiznis/ledgerscope/internal/canonical"
	"github.com/smallbiznis/ledgerscope/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// outstandingEpsilon drops fully settled invoices whose remainder is pure
// rounding noise.
const outstandingEpsilon = 0.01

type ServiceParam struct {
	fx.In

	Log    *zap.Logger
	Config config.Config
}

type Service struct {
	log               *zap.Logger
	defaultCreditDays int
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:               p.Log.Named("aging.service"),
		defaultCreditDays: p.Config.DefaultCreditDays,
	}
}

func (s *Service) Outstandings(ctx context.Context, ds canonical.Dataset, asOf time.Time) []domain.Outstanding {
	paid := paidByReference(ds)

	var out []domain.Outstanding
	for _, v := range ds.Vouchers {
		if v.Cancelled || v.Optional {
			continue
		}
		var kind domain.Kind
		switch v.Type {
		case canonical.VoucherTypeSale:
			kind = domain.KindReceivable
		case canonical.VoucherTypePurchase:
			kind = domain.KindPayable
		default:
			continue
		}

		billed := v.Amount
		ref := v.Number
		dueDate := v.Date.AddDate(0, 0, s.creditDays(ds, v.PartyKey))
		if alloc := newRefAllocation(v); alloc != nil {
			billed = alloc.Amount
			if alloc.Name != "" {
				ref = alloc.Name
			}
			if alloc.DueDate != nil {
				dueDate = *alloc.DueDate
			}
		}

		outstanding := billed - paid[ref]
		if outstanding < 0 {
			outstanding = 0
		}
		if outstanding < outstandingEpsilon {
			continue
		}

		daysPastDue := int(asOf.Sub(dueDate).Hours() / 24)
		out = append(out, domain.Outstanding{
			VoucherKey:  v.Key,
			Number:      v.Number,
			Date:        v.Date,
			Kind:        kind,
			PartyKey:    v.PartyKey,
			PartyName:   v.PartyName,
			Billed:      billed,
			Paid:        billed - outstanding,
			Outstanding: outstanding,
			DueDate:     dueDate,
			DaysPastDue: daysPastDue,
			Bucket:      domain.BucketFor(daysPastDue),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysPastDue > out[j].DaysPastDue })
	return out
}

// paidByReference maps bill reference to cumulative settled amount across all
// receipt/payment vouchers' against-reference allocations.
func paidByReference(ds canonical.Dataset) map[string]float64 {
	paid := make(map[string]float64)
	for _, v := range ds.Vouchers {
		if v.Cancelled || v.Optional {
			continue
		}
		if v.Type != canonical.VoucherTypeReceipt && v.Type != canonical.VoucherTypePayment {
			continue
		}
		for _, line := range v.Lines {
			if line.Kind != canonical.LineKindAccount {
				continue
			}
			for _, alloc := range line.Account.Allocations {
				if alloc.Kind == canonical.AllocationAgainstRef && alloc.Name != "" {
					paid[alloc.Name] += alloc.Amount
				}
			}
		}
	}
	return paid
}

// newRefAllocation finds the authoritative billed amount on an invoice: the
// party line's new-reference allocation, when present.
func newRefAllocation(v canonical.Voucher) *canonical.BillAllocation {
	for _, line := range v.Lines {
		if line.Kind != canonical.LineKindAccount || !line.Account.IsParty {
			continue
		}
		for i := range line.Account.Allocations {
			if line.Account.Allocations[i].Kind == canonical.AllocationNewRef {
				return &line.Account.Allocations[i]
			}
		}
	}
	return nil
}

func (s *Service) creditDays(ds canonical.Dataset, partyKey string) int {
	if account, ok := ds.Accounts[partyKey]; ok && account.CreditDays > 0 {
		return account.CreditDays
	}
	return s.defaultCreditDays
}

func (s *Service) CashAndBank(ctx context.Context, ds canonical.Dataset) domain.CashBalances {
	balances := make(map[string]float64)
	var keys []string
	for key, account := range ds.Accounts {
		if isCashOrBank(account) {
			balances[key] = account.OpeningBalance
			keys = append(keys, key)
		}
	}

	// Single pass over vouchers: debit adds, credit subtracts. O(vouchers),
	// not O(accounts x vouchers).
	for _, v := range ds.Vouchers {
		if v.Cancelled || v.Optional {
			continue
		}
		for _, line := range v.Lines {
			if line.Kind != canonical.LineKindAccount {
				continue
			}
			current, tracked := balances[line.Account.AccountKey]
			if !tracked {
				continue
			}
			if line.Account.IsDebit {
				balances[line.Account.AccountKey] = current + line.Account.Amount
			} else {
				balances[line.Account.AccountKey] = current - line.Account.Amount
			}
		}
	}

	sort.Strings(keys)
	result := domain.CashBalances{}
	for _, key := range keys {
		result.Total += balances[key]
		result.Accounts = append(result.Accounts, domain.AccountBalance{
			AccountKey:  key,
			AccountName: ds.Accounts[key].Name,
			Balance:     balances[key],
		})
	}
	return result
}

func isCashOrBank(account canonical.Account) bool {
	group := strings.ToLower(account.Group)
	return strings.Contains(group, "bank") || strings.Contains(group, "cash")
}
