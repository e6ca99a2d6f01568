package service

import (
	domain "github.com/smallbiznis/ledgerscope/internal/ingest/domain"
)

// DetectShape classifies a parsed document into one of the recognized export
// dialects. Dispatch happens once here; each shape then runs its own
// unambiguous normalizer.
func DetectShape(doc any) domain.Shape {
	switch d := doc.(type) {
	case []any:
		if hasTaggedRecords(d) {
			return domain.ShapeTagged
		}
		return domain.ShapeUnknown
	case map[string]any:
		if _, ok := field(d, "envelope"); ok {
			return domain.ShapeEnvelope
		}
		if _, ok := field(d, "body"); ok {
			if _, ok := field(d, "header"); ok {
				return domain.ShapeEnvelope
			}
		}
		if isSimpleDocument(d) {
			return domain.ShapeSimple
		}
		if records := fieldList(d, "records", "data"); records != nil && hasTaggedRecords(records) {
			return domain.ShapeTagged
		}
		return domain.ShapeUnknown
	default:
		return domain.ShapeUnknown
	}
}

func hasTaggedRecords(list []any) bool {
	for _, entry := range list {
		m, ok := asMap(entry)
		if !ok {
			continue
		}
		if fieldString(m, "type") != "" {
			return true
		}
	}
	return false
}

func isSimpleDocument(m map[string]any) bool {
	for _, key := range []string{"items", "accounts", "ledgers", "vouchers", "transactions", "company"} {
		if _, ok := field(m, key); ok {
			return true
		}
	}
	return false
}
