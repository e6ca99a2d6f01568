package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
	domain "github.com/smallbiznis/ledgerscope/internal/ingest/domain"
)

// reconcileTolerance is the rounding slack allowed between a voucher's debit
// and credit totals before it is reported as a mismatch.
const reconcileTolerance = 0.01

// Merge folds a normalized result into an existing dataset and returns a
// structurally new one. The input dataset is never mutated. Masters are
// last-write-wins by key; vouchers deduplicate by voucher key with the
// existing occurrence winning. Calling Merge twice with the same result is
// idempotent with respect to record counts.
func (s *Service) Merge(existing canonical.Dataset, res domain.Result, source string, at time.Time) (canonical.Dataset, domain.MergeStats) {
	out := canonical.NewDataset()
	out.Company = existing.Company
	for k, v := range existing.Items {
		out.Items[k] = v
	}
	for k, v := range existing.Accounts {
		out.Accounts[k] = v
	}
	out.Vouchers = append(out.Vouchers, existing.Vouchers...)
	out.Sources = append(out.Sources, existing.Sources...)
	out.Warnings = append(out.Warnings, existing.Warnings...)

	var stats domain.MergeStats
	if res.Company != nil {
		out.Company = *res.Company
	}
	for k, item := range res.Items {
		if _, ok := out.Items[k]; ok {
			stats.ItemsReplaced++
		} else {
			stats.ItemsAdded++
		}
		out.Items[k] = item
	}
	for k, account := range res.Accounts {
		if _, ok := out.Accounts[k]; ok {
			stats.AccountsReplaced++
		} else {
			stats.AccountsAdded++
		}
		out.Accounts[k] = account
	}

	known := make(map[string]bool, len(out.Vouchers))
	for _, v := range out.Vouchers {
		known[v.Key] = true
	}
	for _, v := range res.Vouchers {
		if known[v.Key] {
			stats.DuplicatesDropped++
			continue
		}
		known[v.Key] = true
		out.Vouchers = append(out.Vouchers, v)
		stats.VouchersAdded++
	}
	sort.SliceStable(out.Vouchers, func(i, j int) bool {
		return out.Vouchers[i].Date.Before(out.Vouchers[j].Date)
	})

	out.ImportedAt = at
	if source != "" {
		out.Sources = append(out.Sources, source)
	}
	out.Warnings = append(out.Warnings, res.Warnings...)
	if stats.DuplicatesDropped > 0 {
		out.Warnings = append(out.Warnings, canonical.Warning{
			Severity: canonical.SeverityInfo,
			Context:  "merge",
			Message:  mergeSummary(stats),
		})
		if s.metrics != nil {
			s.metrics.AddMergeDropped(stats.DuplicatesDropped)
		}
	}
	return out, stats
}

func mergeSummary(stats domain.MergeStats) string {
	return fmt.Sprintf("merge dropped %d duplicate voucher(s), added %d", stats.DuplicatesDropped, stats.VouchersAdded)
}

// Reconcile reports vouchers with more than one account line whose debit and
// credit totals differ beyond the rounding tolerance. Advisory only.
func (s *Service) Reconcile(ds canonical.Dataset) []domain.Mismatch {
	var out []domain.Mismatch
	for _, v := range ds.Vouchers {
		var debit, credit float64
		accountLines := 0
		for _, line := range v.Lines {
			if line.Kind != canonical.LineKindAccount {
				continue
			}
			accountLines++
			if line.Account.IsDebit {
				debit += line.Account.Amount
			} else {
				credit += line.Account.Amount
			}
		}
		if accountLines < 2 {
			continue
		}
		if diff := math.Abs(debit - credit); diff > reconcileTolerance {
			out = append(out, domain.Mismatch{
				VoucherKey: v.Key,
				Number:     v.Number,
				Date:       v.Date,
				Debit:      debit,
				Credit:     credit,
				Diff:       diff,
			})
		}
	}
	return out
}
