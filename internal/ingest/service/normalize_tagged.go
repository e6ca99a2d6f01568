package service

import (
	"math"
	"strings"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
	domain "github.com/smallbiznis/ledgerscope/internal/ingest/domain"
)

// normalizeTagged maps the flat type-tagged dialect: a list of records, each
// carrying a "type" discriminator ("Stock Item", "Ledger", "Company",
// "Voucher") and lowercase loosely-typed fields.
func normalizeTagged(records []any, kind domain.Kind) domain.Result {
	res := domain.EmptyResult(domain.ShapeTagged)
	seen := make(map[string]bool)
	unknownTypes := make(map[string]bool)

	for _, entry := range records {
		m, ok := asMap(entry)
		if !ok {
			warnf(&res, canonical.SeverityWarn, "record", "non-object record skipped")
			continue
		}
		recordType := fieldString(m, "type")
		switch {
		case kind == domain.KindMasters && equalFoldAny(recordType, "Stock Item", "StockItem", "Item"):
			taggedItem(&res, m)
		case kind == domain.KindMasters && equalFoldAny(recordType, "Ledger", "Account"):
			taggedAccount(&res, m)
		case kind == domain.KindMasters && equalFoldAny(recordType, "Company"):
			taggedCompany(&res, m)
		case kind == domain.KindTransactions && equalFoldAny(recordType, "Voucher", "Transaction"):
			taggedVoucher(&res, seen, m)
		default:
			if recordType != "" && !unknownTypes[recordType] {
				unknownTypes[recordType] = true
				warnf(&res, canonical.SeverityInfo, "record", "record type %q not used for %s import", recordType, kind)
			}
		}
	}
	return res
}

func taggedItem(res *domain.Result, m map[string]any) {
	name := fieldString(m, "name")
	if name == "" {
		warnf(res, canonical.SeverityWarn, "item", "stock item without a name skipped")
		return
	}
	packUnit := NormalizeUnit(fieldString(m, "additionalUnits", "packUnit"))
	unitsPerPack := 1.0
	if packUnit != "" {
		if v, ok := field(m, "conversion", "unitsPerPack"); ok {
			unitsPerPack = ParseQuantity(v)
		}
		if unitsPerPack < 1 {
			unitsPerPack = 1
		}
	}
	qtyRaw, _ := field(m, "openingBalance", "openingQty")
	rateRaw, _ := field(m, "openingRate")
	valueRaw, _ := field(m, "openingValue")

	item := canonical.Item{
		Key:          canonical.MasterKey(name),
		Name:         name,
		Group:        CleanGroup(fieldString(m, "parent", "group", "category")),
		BaseUnit:     NormalizeUnit(fieldString(m, "baseUnits", "unit")),
		PackUnit:     packUnit,
		UnitsPerPack: unitsPerPack,
		OpeningQty:   ParseQuantity(qtyRaw),
		OpeningRate:  ParseRate(rateRaw),
		OpeningValue: math.Abs(ParseQuantity(valueRaw)),
	}
	res.Items[item.Key] = item
}

func taggedAccount(res *domain.Result, m map[string]any) {
	name := fieldString(m, "name")
	if name == "" {
		warnf(res, canonical.SeverityWarn, "account", "ledger without a name skipped")
		return
	}
	balanceRaw, _ := field(m, "openingBalance")
	creditRaw, _ := field(m, "creditDays", "creditPeriod")
	account := canonical.Account{
		Key:            canonical.MasterKey(name),
		Name:           name,
		Group:          CleanGroup(fieldString(m, "parent", "group")),
		OpeningBalance: ParseQuantity(balanceRaw),
		TaxID:          fieldString(m, "gstin", "taxId", "taxNumber"),
		CreditDays:     int(ParseQuantity(creditRaw)),
	}
	res.Accounts[account.Key] = account
}

func taggedCompany(res *domain.Result, m map[string]any) {
	company := canonical.Company{Name: fieldString(m, "name")}
	if raw, ok := field(m, "booksFrom", "startingFrom"); ok {
		from, err := ParseDate(raw)
		if err != nil {
			warnf(res, canonical.SeverityInfo, "company", "unparseable books-from date ignored: %v", err)
		} else {
			company.BooksFrom = from
		}
	}
	res.Company = &company
}

func taggedVoucher(res *domain.Result, seen map[string]bool, m map[string]any) {
	number := fieldString(m, "number", "voucherNumber")
	dateRaw, _ := field(m, "date")
	date, err := ParseDate(dateRaw)
	if err != nil {
		warnf(res, canonical.SeverityWarn, "voucher", "voucher %q rejected: %v", number, err)
		return
	}
	vt := voucherTypeFromRaw(fieldString(m, "voucherType", "voucherTypeName", "vchType"))

	amountRaw, _ := field(m, "amount")
	cancelledRaw, _ := field(m, "isCancelled", "cancelled")
	optionalRaw, _ := field(m, "isOptional", "optional")
	v := canonical.Voucher{
		Type:      vt,
		Number:    number,
		Date:      date,
		PartyName: fieldString(m, "party", "partyName"),
		Amount:    math.Abs(ParseQuantity(amountRaw)),
		Cancelled: ParseBool(cancelledRaw),
		Optional:  ParseBool(optionalRaw),
		Narration: fieldString(m, "narration"),
	}
	if v.PartyName != "" {
		v.PartyKey = canonical.MasterKey(v.PartyName)
	}

	for _, raw := range fieldList(m, "ledgerEntries", "allLedgerEntries") {
		lm, ok := asMap(raw)
		if !ok {
			continue
		}
		v.Lines = append(v.Lines, canonical.NewAccountLine(taggedAccountLine(lm)))
	}
	for _, raw := range fieldList(m, "inventoryEntries", "allInventoryEntries") {
		lm, ok := asMap(raw)
		if !ok {
			continue
		}
		v.Lines = append(v.Lines, canonical.NewInventoryLine(taggedInventoryLine(lm, vt)))
	}

	finishVoucher(&v)
	addVoucher(res, seen, v)
}

func taggedAccountLine(m map[string]any) canonical.AccountLine {
	name := fieldString(m, "ledgerName", "accountName", "name")
	amountRaw, _ := field(m, "amount")
	amount := ParseQuantity(amountRaw)
	isDebit := amount < 0
	if raw, ok := field(m, "isDeemedPositive", "isDebit"); ok {
		isDebit = ParseBool(raw)
	}
	partyRaw, _ := field(m, "isPartyLedger", "isParty")

	line := canonical.AccountLine{
		AccountKey:  canonical.MasterKey(name),
		AccountName: name,
		IsDebit:     isDebit,
		Amount:      math.Abs(amount),
		IsParty:     ParseBool(partyRaw),
	}
	for _, raw := range fieldList(m, "billAllocations", "billAllocations.list") {
		bm, ok := asMap(raw)
		if !ok {
			continue
		}
		allocAmountRaw, _ := field(bm, "amount")
		alloc := canonical.BillAllocation{
			Name:   fieldString(bm, "name", "billName"),
			Kind:   allocationKindFromRaw(fieldString(bm, "billType", "type")),
			Amount: math.Abs(ParseQuantity(allocAmountRaw)),
		}
		if dueRaw, ok := field(bm, "dueDate", "billDate"); ok {
			if due, err := ParseDate(dueRaw); err == nil {
				alloc.DueDate = &due
			}
		}
		line.Allocations = append(line.Allocations, alloc)
	}
	return line
}

func taggedInventoryLine(m map[string]any, vt canonical.VoucherType) canonical.InventoryLine {
	name := fieldString(m, "stockItemName", "itemName", "item")
	qtyRaw, _ := field(m, "actualQty", "qty", "quantity")
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

func equalFoldAny(s string, candidates ...string) bool {
	for _, c := range candidates {
		if strings.EqualFold(s, c) {
			return true
		}
	}
	return false
}
