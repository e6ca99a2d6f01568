package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
	domain "github.com/smallbiznis/ledgerscope/internal/ingest/domain"
)

// voucherTypeFromRaw maps the export's voucher-type names onto the canonical
// enumeration. Unrecognized names become Other rather than failing.
func voucherTypeFromRaw(raw string) canonical.VoucherType {
	switch normalized := strings.ToLower(strings.TrimSpace(raw)); {
	case normalized == "sale" || normalized == "sales":
		return canonical.VoucherTypeSale
	case normalized == "purchase" || normalized == "purchases":
		return canonical.VoucherTypePurchase
	case normalized == "receipt":
		return canonical.VoucherTypeReceipt
	case normalized == "payment":
		return canonical.VoucherTypePayment
	case normalized == "journal":
		return canonical.VoucherTypeJournal
	case normalized == "contra":
		return canonical.VoucherTypeContra
	case strings.Contains(normalized, "debit note"):
		return canonical.VoucherTypeDebitNote
	case strings.Contains(normalized, "credit note"):
		return canonical.VoucherTypeCreditNote
	case strings.Contains(normalized, "stock") || strings.Contains(normalized, "physical"):
		return canonical.VoucherTypeStockAdjustment
	default:
		return canonical.VoucherTypeOther
	}
}

func allocationKindFromRaw(raw string) canonical.AllocationKind {
	switch normalized := strings.ToLower(strings.TrimSpace(raw)); {
	case strings.Contains(normalized, "new"):
		return canonical.AllocationNewRef
	case strings.Contains(normalized, "agst") || strings.Contains(normalized, "against"):
		return canonical.AllocationAgainstRef
	case strings.Contains(normalized, "adv"):
		return canonical.AllocationAdvance
	default:
		return canonical.AllocationOnAccount
	}
}

// finishVoucher applies the counterparty and amount fallback rules after all
// lines are attached: the party line names the counterparty and, when the
// total is unset, supplies it; inventory lines only back-fill the total when
// no party-line amount was found.
func finishVoucher(v *canonical.Voucher) {
	var inventoryTotal float64
	partyAmount := 0.0
	for _, line := range v.Lines {
		switch line.Kind {
		case canonical.LineKindAccount:
			if line.Account.IsParty {
				if v.PartyKey == "" {
					v.PartyKey = line.Account.AccountKey
					v.PartyName = line.Account.AccountName
				}
				if partyAmount == 0 {
					partyAmount = line.Account.Amount
				}
			}
		case canonical.LineKindInventory:
			inventoryTotal += line.Inventory.Amount
		}
	}
	if v.Amount == 0 {
		if partyAmount != 0 {
			v.Amount = math.Abs(partyAmount)
		} else {
			v.Amount = inventoryTotal
		}
	}
	v.Key = canonical.VoucherKey(v.Type, v.Number, v.Date)
}

// addVoucher appends a voucher, dropping batch-internal duplicates. First
// occurrence wins.
func addVoucher(res *domain.Result, seen map[string]bool, v canonical.Voucher) {
	if seen[v.Key] {
		warnf(res, canonical.SeverityInfo, "voucher", "duplicate voucher %s dropped", v.Key)
		return
	}
	seen[v.Key] = true
	res.Vouchers = append(res.Vouchers, v)
}

func warnf(res *domain.Result, severity canonical.Severity, context, format string, args ...any) {
	res.Warnings = append(res.Warnings, canonical.Warning{
		Severity: severity,
		Context:  context,
		Message:  fmt.Sprintf(format, args...),
	})
}

// lineQty normalizes an inventory-line quantity for the voucher type. Stock
// adjustments keep their sign (it encodes direction); every other type
// carries a magnitude and the replay engine applies the direction.
func lineQty(vt canonical.VoucherType, qty float64) float64 {
	if vt == canonical.VoucherTypeStockAdjustment {
		return qty
	}
	return math.Abs(qty)
}
