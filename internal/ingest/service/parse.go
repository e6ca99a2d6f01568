package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Exported data encodes scalar fields in several quirky string forms. Every
// such decoding lives here as a pure function so call sites stay free of
// regex logic.

// ParseQuantity accepts a bare number or a string of the form
// "<sign><number> <unit-code>" and returns the numeric part. Defaults to 0
// when nothing numeric leads the value.
func ParseQuantity(v any) float64 {
	if v == nil {
		return 0
	}
	switch v.(type) {
	case string:
	default:
		if f, err := cast.ToFloat64E(v); err == nil {
			return f
		}
	}
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return 0
	}
	token := s
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		token = s[:i]
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseRate accepts a bare number or "<number>/<unit-code>" and returns the
// portion before the slash. Defaults to 0.
func ParseRate(v any) float64 {
	if v == nil {
		return 0
	}
	switch v.(type) {
	case string:
	default:
		if f, err := cast.ToFloat64E(v); err == nil {
			return f
		}
	}
	s := strings.TrimSpace(cast.ToString(v))
	if i := strings.Index(s, "/"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

var dateLayouts = []string{
	"2006-01-02",
	"20060102",
	"02-01-2006",
	"02/01/2006",
}

// ParseDate normalizes the date dialects seen in exports: ISO, compact
// YYYYMMDD, and day-first with dash or slash separators. Unparseable dates
// are an error, never defaulted.
func ParseDate(v any) (time.Time, error) {
	if t, ok := v.(time.Time); ok {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// ParseBool accepts native booleans or the literal strings "Yes"/"No".
// Anything else is false.
func ParseBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "yes")
	default:
		return false
	}
}

var trailingAnnotation = regexp.MustCompile(`\s*\([^()]*\)\s*$`)

// CleanGroup strips a trailing parenthetical tax-code annotation from a
// group/parent name, e.g. "GROUP ( 950300 @ 12/5 %)" becomes "GROUP". The
// annotation is kept when stripping would leave an empty string.
func CleanGroup(s string) string {
	s = strings.TrimSpace(s)
	stripped := strings.TrimSpace(trailingAnnotation.ReplaceAllString(s, ""))
	if stripped == "" {
		return s
	}
	return stripped
}

// NormalizeUnit maps the "Not Applicable" sentinel (and empty strings) to
// "no unit".
func NormalizeUnit(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "not applicable") {
		return ""
	}
	return s
}

// field performs a case-insensitive lookup across candidate field names.
func field(m map[string]any, names ...string) (any, bool) {
	for _, name := range names {
		if v, ok := m[name]; ok {
			return v, true
		}
	}
	for k, v := range m {
		for _, name := range names {
			if strings.EqualFold(k, name) {
				return v, true
			}
		}
	}
	return nil, false
}

func fieldString(m map[string]any, names ...string) string {
	v, ok := field(m, names...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

func fieldList(m map[string]any, names ...string) []any {
	v, ok := field(m, names...)
	if !ok {
		return nil
	}
	list, _ := v.([]any)
	return list
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
