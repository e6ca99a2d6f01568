// Package canonical holds the normalized data model every engine reads and
// writes. Types here are pure values: no behavior beyond key composition and
// unit conversion, no persistence concerns.
package canonical

import (
	"fmt"
	"strings"
	"time"
)

// VoucherType enumerates the recognized business-event types.
type VoucherType string

const (
	VoucherTypeSale            VoucherType = "SALE"
	VoucherTypePurchase        VoucherType = "PURCHASE"
	VoucherTypeReceipt         VoucherType = "RECEIPT"
	VoucherTypePayment         VoucherType = "PAYMENT"
	VoucherTypeJournal         VoucherType = "JOURNAL"
	VoucherTypeContra          VoucherType = "CONTRA"
	VoucherTypeDebitNote       VoucherType = "DEBIT_NOTE"
	VoucherTypeCreditNote      VoucherType = "CREDIT_NOTE"
	VoucherTypeStockAdjustment VoucherType = "STOCK_ADJUSTMENT"
	VoucherTypeOther           VoucherType = "OTHER"
)

// Item is a stockable good as of the active financial year start.
type Item struct {
	Key          string  `json:"key"`
	Name         string  `json:"name"`
	Group        string  `json:"group"`
	BaseUnit     string  `json:"base_unit"`
	PackUnit     string  `json:"pack_unit,omitempty"`
	UnitsPerPack float64 `json:"units_per_pack"`
	OpeningQty   float64 `json:"opening_qty"`
	OpeningRate  float64 `json:"opening_rate"`
	OpeningValue float64 `json:"opening_value"`
}

// Account is a bookkeeping ledger account. OpeningBalance is signed:
// positive debit-natured, negative credit-natured.
type Account struct {
	Key            string  `json:"key"`
	Name           string  `json:"name"`
	Group          string  `json:"group"`
	OpeningBalance float64 `json:"opening_balance"`
	TaxID          string  `json:"tax_id,omitempty"`
	CreditDays     int     `json:"credit_days"`
}

// AllocationKind classifies how a bill allocation relates a line to an invoice.
type AllocationKind string

const (
	AllocationNewRef     AllocationKind = "new_ref"
	AllocationAgainstRef AllocationKind = "against_ref"
	AllocationAdvance    AllocationKind = "advance"
	AllocationOnAccount  AllocationKind = "on_account"
)

// BillAllocation links an account-line amount to an invoice reference.
type BillAllocation struct {
	Name    string         `json:"name"`
	Kind    AllocationKind `json:"kind"`
	Amount  float64        `json:"amount"`
	DueDate *time.Time     `json:"due_date,omitempty"`
}

// LineKind discriminates the two voucher-line shapes.
type LineKind string

const (
	LineKindAccount   LineKind = "account"
	LineKindInventory LineKind = "inventory"
)

// AccountLine is a ledger posting on a voucher.
type AccountLine struct {
	AccountKey  string           `json:"account_key"`
	AccountName string           `json:"account_name"`
	IsDebit     bool             `json:"is_debit"`
	Amount      float64          `json:"amount"`
	IsParty     bool             `json:"is_party"`
	Allocations []BillAllocation `json:"allocations,omitempty"`
}

// InventoryLine is a stock movement on a voucher. Qty is in base units.
type InventoryLine struct {
	ItemKey  string  `json:"item_key"`
	ItemName string  `json:"item_name"`
	Qty      float64 `json:"qty"`
	Rate     float64 `json:"rate"`
	Amount   float64 `json:"amount"`
}

// VoucherLine is a tagged variant: exactly one of Account or Inventory is set,
// matching Kind. Callers must switch on Kind rather than probe for nils.
type VoucherLine struct {
	Kind      LineKind       `json:"kind"`
	Account   *AccountLine   `json:"account,omitempty"`
	Inventory *InventoryLine `json:"inventory,omitempty"`
}

// NewAccountLine wraps an account posting in a voucher line.
func NewAccountLine(l AccountLine) VoucherLine {
	return VoucherLine{Kind: LineKindAccount, Account: &l}
}

// NewInventoryLine wraps a stock movement in a voucher line.
func NewInventoryLine(l InventoryLine) VoucherLine {
	return VoucherLine{Kind: LineKindInventory, Inventory: &l}
}

// Voucher is one recorded business event.
type Voucher struct {
	Key       string        `json:"key"`
	Type      VoucherType   `json:"type"`
	Number    string        `json:"number"`
	Date      time.Time     `json:"date"`
	PartyKey  string        `json:"party_key,omitempty"`
	PartyName string        `json:"party_name,omitempty"`
	Amount    float64       `json:"amount"`
	Cancelled bool          `json:"cancelled,omitempty"`
	Optional  bool          `json:"optional,omitempty"`
	Narration string        `json:"narration,omitempty"`
	Lines     []VoucherLine `json:"lines,omitempty"`
}

// VoucherKey composes the stable identity of a voucher.
func VoucherKey(t VoucherType, number string, date time.Time) string {
	return fmt.Sprintf("%s|%s|%s", t, strings.TrimSpace(number), date.Format("2006-01-02"))
}

// Severity grades an import warning.
type Severity string

const (
	SeverityFatal Severity = "fatal"
	SeverityWarn  Severity = "warn"
	SeverityInfo  Severity = "info"
)

// Warning is a data-quality finding produced during ingestion. It is data,
// never an error: a warned record has already been handled (skipped or
// defaulted) by the time the warning is emitted.
type Warning struct {
	Severity Severity `json:"severity"`
	Context  string   `json:"context"`
	Message  string   `json:"message"`
}

// Company carries the exporting company's master info.
type Company struct {
	Name      string    `json:"name"`
	BooksFrom time.Time `json:"books_from,omitzero"`
}

// Dataset is the canonical aggregate a single import session produces and the
// engines consume. It is treated as immutable: corrections and further imports
// yield a structurally new Dataset.
type Dataset struct {
	Company    Company            `json:"company"`
	Items      map[string]Item    `json:"items"`
	Accounts   map[string]Account `json:"accounts"`
	Vouchers   []Voucher          `json:"vouchers"`
	ImportedAt time.Time          `json:"imported_at"`
	Sources    []string           `json:"sources,omitempty"`
	Warnings   []Warning          `json:"warnings,omitempty"`
}

// NewDataset returns an empty dataset with initialized maps.
func NewDataset() Dataset {
	return Dataset{
		Items:    make(map[string]Item),
		Accounts: make(map[string]Account),
	}
}

// MasterKey derives the identity key for a master record: the uppercased,
// trimmed display name. Two records with the same key overwrite rather than
// error.
func MasterKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
