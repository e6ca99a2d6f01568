package service

import (
	"math"

	"github.com/smallbiznis/ledgerscope/internal/canonical"
	domain "github.com/smallbiznis/ledgerscope/internal/ingest/domain"
)

// normalizeEnvelope maps the nested envelope dialect: an ENVELOPE/BODY/
// REQUESTDATA wrapper around a message list whose entries each hold one
// uppercase-field record keyed by its record name.
func normalizeEnvelope(doc map[string]any, kind domain.Kind) domain.Result {
	res := domain.EmptyResult(domain.ShapeEnvelope)
	seen := make(map[string]bool)

	messages := envelopeMessages(doc)
	if messages == nil {
		warnf(&res, canonical.SeverityWarn, "document", "no records found")
		return res
	}

	for _, raw := range messages {
		m, ok := asMap(raw)
		if !ok {
			continue
		}
		if kind == domain.KindMasters {
			if rec, ok := recordAt(m, "stockitem"); ok {
				envelopeItem(&res, rec)
			}
			if rec, ok := recordAt(m, "ledger"); ok {
				envelopeAccount(&res, rec)
			}
			if rec, ok := recordAt(m, "company"); ok {
				envelopeCompany(&res, rec)
			}
		}
		if kind == domain.KindTransactions {
			if rec, ok := recordAt(m, "voucher"); ok {
				envelopeVoucher(&res, seen, rec)
			}
		}
	}
	return res
}

// envelopeMessages unwraps the nesting down to the message list. Every level
// is looked up case-insensitively because exporters disagree on casing.
func envelopeMessages(doc map[string]any) []any {
	node := doc
	for _, level := range [][]string{
		{"envelope"},
		{"body"},
		{"importdata", "data"},
		{"requestdata", "request"},
	} {
		next, ok := field(node, level...)
		if !ok {
			continue
		}
		m, ok := asMap(next)
		if !ok {
			return nil
		}
		node = m
	}
	return fieldList(node, "tallymessage", "messages", "records")
}

func recordAt(m map[string]any, name string) (map[string]any, bool) {
	raw, ok := field(m, name)
	if !ok {
		return nil, false
	}
	return asMap(raw)
}

func envelopeItem(res *domain.Result, m map[string]any) {
	name := fieldString(m, "NAME")
	if name == "" {
		warnf(res, canonical.SeverityWarn, "item", "stock item without a NAME skipped")
		return
	}
	packUnit := NormalizeUnit(fieldString(m, "ADDITIONALUNITS"))
	unitsPerPack := 1.0
	if packUnit != "" {
		if raw, ok := field(m, "CONVERSION", "DENOMINATOR"); ok {
			unitsPerPack = ParseQuantity(raw)
		}
		if unitsPerPack < 1 {
			unitsPerPack = 1
		}
	}
	qtyRaw, _ := field(m, "OPENINGBALANCE")
	rateRaw, _ := field(m, "OPENINGRATE")
	valueRaw, _ := field(m, "OPENINGVALUE")
	item := canonical.Item{
		Key:          canonical.MasterKey(name),
		Name:         name,
		Group:        CleanGroup(fieldString(m, "PARENT")),
		BaseUnit:     NormalizeUnit(fieldString(m, "BASEUNITS")),
		PackUnit:     packUnit,
		UnitsPerPack: unitsPerPack,
		OpeningQty:   ParseQuantity(qtyRaw),
		OpeningRate:  ParseRate(rateRaw),
		OpeningValue: math.Abs(ParseQuantity(valueRaw)),
	}
	res.Items[item.Key] = item
}

func envelopeAccount(res *domain.Result, m map[string]any) {
	name := fieldString(m, "NAME")
	if name == "" {
		warnf(res, canonical.SeverityWarn, "account", "ledger without a NAME skipped")
		return
	}
	balanceRaw, _ := field(m, "OPENINGBALANCE")
	creditRaw, _ := field(m, "BILLCREDITPERIOD", "CREDITDAYS")
	account := canonical.Account{
		Key:            canonical.MasterKey(name),
		Name:           name,
		Group:          CleanGroup(fieldString(m, "PARENT")),
		OpeningBalance: ParseQuantity(balanceRaw),
		TaxID:          fieldString(m, "GSTIN", "PARTYGSTIN", "TAXNUMBER"),
		CreditDays:     int(ParseQuantity(creditRaw)),
	}
	res.Accounts[account.Key] = account
}

func envelopeCompany(res *domain.Result, m map[string]any) {
	company := canonical.Company{Name: fieldString(m, "NAME")}
	if raw, ok := field(m, "BOOKSFROM", "STARTINGFROM"); ok {
		if from, err := ParseDate(raw); err == nil {
			company.BooksFrom = from
		} else {
			warnf(res, canonical.SeverityInfo, "company", "unparseable books-from date ignored: %v", err)
		}
	}
	res.Company = &company
}

func envelopeVoucher(res *domain.Result, seen map[string]bool, m map[string]any) {
	number := fieldString(m, "VOUCHERNUMBER")
	dateRaw, _ := field(m, "DATE")
	date, err := ParseDate(dateRaw)
	if err != nil {
		warnf(res, canonical.SeverityWarn, "voucher", "voucher %q rejected: %v", number, err)
		return
	}
	vt := voucherTypeFromRaw(fieldString(m, "VOUCHERTYPENAME", "VCHTYPE"))

	cancelledRaw, _ := field(m, "ISCANCELLED")
	optionalRaw, _ := field(m, "ISOPTIONAL")
	v := canonical.Voucher{
		Type:      vt,
		Number:    number,
		Date:      date,
		PartyName: fieldString(m, "PARTYLEDGERNAME", "PARTYNAME"),
		Cancelled: ParseBool(cancelledRaw),
		Optional:  ParseBool(optionalRaw),
		Narration: fieldString(m, "NARRATION"),
	}
	if v.PartyName != "" {
		v.PartyKey = canonical.MasterKey(v.PartyName)
	}

	for _, raw := range fieldList(m, "ALLLEDGERENTRIES.LIST", "LEDGERENTRIES.LIST") {
		lm, ok := asMap(raw)
		if !ok {
			continue
		}
		v.Lines = append(v.Lines, canonical.NewAccountLine(envelopeAccountLine(lm)))
	}
	for _, raw := range fieldList(m, "ALLINVENTORYENTRIES.LIST", "INVENTORYENTRIES.LIST") {
		lm, ok := asMap(raw)
		if !ok {
			continue
		}
		v.Lines = append(v.Lines, canonical.NewInventoryLine(envelopeInventoryLine(lm, vt)))
	}

	finishVoucher(&v)
	addVoucher(res, seen, v)
}

func envelopeAccountLine(m map[string]any) canonical.AccountLine {
	name := fieldString(m, "LEDGERNAME")
	amountRaw, _ := field(m, "AMOUNT")
	amount := ParseQuantity(amountRaw)
	isDebit := amount < 0
	if raw, ok := field(m, "ISDEEMEDPOSITIVE"); ok {
		isDebit = ParseBool(raw)
	}
	partyRaw, _ := field(m, "ISPARTYLEDGER")

	line := canonical.AccountLine{
		AccountKey:  canonical.MasterKey(name),
		AccountName: name,
		IsDebit:     isDebit,
		Amount:      math.Abs(amount),
		IsParty:     ParseBool(partyRaw),
	}
	for _, raw := range fieldList(m, "BILLALLOCATIONS.LIST") {
		bm, ok := asMap(raw)
		if !ok {
			continue
		}
		allocAmountRaw, _ := field(bm, "AMOUNT")
		alloc := canonical.BillAllocation{
			Name:   fieldString(bm, "NAME"),
			Kind:   allocationKindFromRaw(fieldString(bm, "BILLTYPE")),
			Amount: math.Abs(ParseQuantity(allocAmountRaw)),
		}
		if dueRaw, ok := field(bm, "DUEDATE", "BILLDATE"); ok {
			if due, err := ParseDate(dueRaw); err == nil {
				alloc.DueDate = &due
			}
		}
		line.Allocations = append(line.Allocations, alloc)
	}
	return line
}

func envelopeInventoryLine(m map[string]any, vt canonical.VoucherType) canonical.InventoryLine {
	name := fieldString(m, "STOCKITEMNAME")
	qtyRaw, _ := field(m, "ACTUALQTY", "BILLEDQTY")
	rateRaw, _ := field(m, "RATE")
	amountRaw, _ := field(m, "AMOUNT")
	return canonical.InventoryLine{
		ItemKey:  canonical.MasterKey(name),
		ItemName: name,
		Qty:      lineQty(vt, ParseQuantity(qtyRaw)),
		Rate:     ParseRate(rateRaw),
		Amount:   math.Abs(ParseQuantity(amountRaw)),
	}
}
