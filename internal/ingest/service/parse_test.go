package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 100.0, ParseQuantity(100))
	assert.Equal(t, 2.5, ParseQuantity(2.5))
	assert.Equal(t, 100.0, ParseQuantity(" 100 Pcs"))
	assert.Equal(t, -30.0, ParseQuantity("-30 Box"))
	assert.Equal(t, 0.0, ParseQuantity("Pcs 100"))
	assert.Equal(t, 0.0, ParseQuantity(""))
	assert.Equal(t, 0.0, ParseQuantity(nil))
}

func TestParseRate(t *testing.T) {
	assert.Equal(t, 12.5, ParseRate(12.5))
	assert.Equal(t, 12.5, ParseRate("12.50/Pcs"))
	assert.Equal(t, 890.0, ParseRate(" 890.00 /Box"))
	assert.Equal(t, 0.0, ParseRate("n.a."))
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2024-04-01", "20240401", "01-04-2024", "01/04/2024"} {
		got, err := ParseDate(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseDate("April 1st")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestParseBool(t *testing.T) {
	assert.True(t, ParseBool(true))
	assert.True(t, ParseBool("Yes"))
	assert.True(t, ParseBool(" yes "))
	assert.False(t, ParseBool("No"))
	assert.False(t, ParseBool(nil))
	assert.False(t, ParseBool(1))
}

func TestCleanGroup(t *testing.T) {
	assert.Equal(t, "EDIBLE OIL", CleanGroup("EDIBLE OIL ( 1512 @ 5 %)"))
	assert.Equal(t, "SPICES", CleanGroup("SPICES"))
	// Stripping must not produce an empty group.
	assert.Equal(t, "( 1512 @ 5 %)", CleanGroup("( 1512 @ 5 %)"))
}

func TestNormalizeUnit(t *testing.T) {
	assert.Equal(t, "", NormalizeUnit(" Not Applicable "))
	assert.Equal(t, "Pcs", NormalizeUnit("Pcs"))
}

func TestFieldLookupIsCaseInsensitive(t *testing.T) {
	m := map[string]any{"PARTYLEDGERNAME": "Acme"}
	assert.Equal(t, "Acme", fieldString(m, "partyLedgerName"))
	assert.Equal(t, "", fieldString(m, "narration"))
}
