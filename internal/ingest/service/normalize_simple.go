package service

import (
	"math"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
	domain "github.com/smallbiznis/ledgerscope/internal/ingest/domain"
)

// normalizeSimple maps the pre-normalized dialect: top-level item/account/
// voucher lists already matching the canonical field names. Values are still
// treated as loosely typed; a hand-built document gets the same defaulting
// and warnings as an export.
func normalizeSimple(doc map[string]any, kind domain.Kind) domain.Result {
	res := domain.EmptyResult(domain.ShapeSimple)
	seen := make(map[string]bool)

	if kind == domain.KindMasters {
		if rec, ok := field(doc, "company"); ok {
			if m, ok := asMap(rec); ok {
				simpleCompany(&res, m)
			}
		}
		for _, raw := range fieldList(doc, "items") {
			if m, ok := asMap(raw); ok {
				simpleItem(&res, m)
			}
		}
		for _, raw := range fieldList(doc, "accounts", "ledgers") {
			if m, ok := asMap(raw); ok {
				simpleAccount(&res, m)
			}
		}
	}
	if kind == domain.KindTransactions {
		for _, raw := range fieldList(doc, "vouchers", "transactions") {
			if m, ok := asMap(raw); ok {
				simpleVoucher(&res, seen, m)
			}
		}
	}
	return res
}

func simpleCompany(res *domain.Result, m map[string]any) {
	company := canonical.Company{Name: fieldString(m, "name")}
	if raw, ok := field(m, "books_from"); ok {
		if from, err := ParseDate(raw); err == nil {
			company.BooksFrom = from
		}
	}
	res.Company = &company
}

func simpleItem(res *domain.Result, m map[string]any) {
	name := fieldString(m, "name")
	if name == "" {
		warnf(res, canonical.SeverityWarn, "item", "item without a name skipped")
		return
	}
	packUnit := NormalizeUnit(fieldString(m, "pack_unit"))
	unitsPerPack := 1.0
	if packUnit != "" {
		if raw, ok := field(m, "units_per_pack"); ok {
			unitsPerPack = ParseQuantity(raw)
		}
		if unitsPerPack < 1 {
			unitsPerPack = 1
		}
	}
	qtyRaw, _ := field(m, "opening_qty")
	rateRaw, _ := field(m, "opening_rate")
	valueRaw, _ := field(m, "opening_value")
	item := canonical.Item{
		Key:          canonical.MasterKey(name),
		Name:         name,
		Group:        CleanGroup(fieldString(m, "group")),
		BaseUnit:     NormalizeUnit(fieldString(m, "base_unit")),
		PackUnit:     packUnit,
		UnitsPerPack: unitsPerPack,
		OpeningQty:   ParseQuantity(qtyRaw),
		OpeningRate:  ParseRate(rateRaw),
		OpeningValue: math.Abs(ParseQuantity(valueRaw)),
	}
	res.Items[item.Key] = item
}

func simpleAccount(res *domain.Result, m map[string]any) {
	name := fieldString(m, "name")
	if name == "" {
		warnf(res, canonical.SeverityWarn, "account", "account without a name skipped")
		return
	}
	balanceRaw, _ := field(m, "opening_balance")
	creditRaw, _ := field(m, "credit_days")
	account := canonical.Account{
		Key:            canonical.MasterKey(name),
		Name:           name,
		Group:          CleanGroup(fieldString(m, "group")),
		OpeningBalance: ParseQuantity(balanceRaw),
		TaxID:          fieldString(m, "tax_id"),
		CreditDays:     int(ParseQuantity(creditRaw)),
	}
	res.Accounts[account.Key] = account
}

func simpleVoucher(res *domain.Result, seen map[string]bool, m map[string]any) {
	number := fieldString(m, "number")
	dateRaw, _ := field(m, "date")
	date, err := ParseDate(dateRaw)
	if err != nil {
		warnf(res, canonical.SeverityWarn, "voucher", "voucher %q rejected: %v", number, err)
		return
	}
	vt := voucherTypeFromRaw(fieldString(m, "type"))

	amountRaw, _ := field(m, "amount")
	cancelledRaw, _ := field(m, "cancelled")
	optionalRaw, _ := field(m, "optional")
	v := canonical.Voucher{
		Type:      vt,
		Number:    number,
		Date:      date,
		PartyName: fieldString(m, "party_name"),
		Amount:    math.Abs(ParseQuantity(amountRaw)),
		Cancelled: ParseBool(cancelledRaw),
		Optional:  ParseBool(optionalRaw),
		Narration: fieldString(m, "narration"),
	}
	if v.PartyName != "" {
		v.PartyKey = canonical.MasterKey(v.PartyName)
	}

	for _, raw := range fieldList(m, "lines") {
		lm, ok := asMap(raw)
		if !ok {
			continue
		}
		switch fieldString(lm, "kind") {
		case string(canonical.LineKindAccount):
			if am, ok := recordAt(lm, "account"); ok {
				v.Lines = append(v.Lines, canonical.NewAccountLine(simpleAccountLine(am)))
			}
		case string(canonical.LineKindInventory):
			if im, ok := recordAt(lm, "inventory"); ok {
				v.Lines = append(v.Lines, canonical.NewInventoryLine(simpleInventoryLine(im, vt)))
			}
		default:
			warnf(res, canonical.SeverityWarn, "voucher", "voucher %q line with unknown kind skipped", number)
		}
	}

	finishVoucher(&v)
	addVoucher(res, seen, v)
}

func simpleAccountLine(m map[string]any) canonical.AccountLine {
	name := fieldString(m, "account_name")
	amountRaw, _ := field(m, "amount")
	debitRaw, _ := field(m, "is_debit")
	partyRaw, _ := field(m, "is_party")
	line := canonical.AccountLine{
		AccountKey:  canonical.MasterKey(name),
		AccountName: name,
		IsDebit:     ParseBool(debitRaw),
		Amount:      math.Abs(ParseQuantity(amountRaw)),
		IsParty:     ParseBool(partyRaw),
	}
	for _, raw := range fieldList(m, "allocations") {
		bm, ok := asMap(raw)
		if !ok {
			continue
		}
		allocAmountRaw, _ := field(bm, "amount")
		alloc := canonical.BillAllocation{
			Name:   fieldString(bm, "name"),
			Kind:   allocationKindFromRaw(fieldString(bm, "kind")),
			Amount: math.Abs(ParseQuantity(allocAmountRaw)),
		}
		if dueRaw, ok := field(bm, "due_date"); ok {
			if due, err := ParseDate(dueRaw); err == nil {
				alloc.DueDate = &due
			}
		}
		line.Allocations = append(line.Allocations, alloc)
	}
	return line
}

func simpleInventoryLine(m map[string]any, vt canonical.VoucherType) canonical.InventoryLine {
	name := fieldString(m, "item_name")
	qtyRaw, _ := field(m, "qty")
	rateRaw, _ := field(m, "rate")
	amountRaw, _ := field(m, "amount")
	return canonical.InventoryLine{
		ItemKey:  canonical.MasterKey(name),
		ItemName: name,
		Qty:      lineQty(vt, ParseQuantity(qtyRaw)),
		Rate:     ParseRate(rateRaw),
		Amount:   math.Abs(ParseQuantity(amountRaw)),
	}
}
