package canonical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustDate(t *testing.T, year int, month time.Month, day int) time.Time {
	t.Helper()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestToPacksAndBack(t *testing.T) {
	assert.Equal(t, 2.5, ToPacks(25, 10))
	assert.Equal(t, 25.0, FromPacks(2.5, 10))

	// Unconfigured package size behaves as base units.
	assert.Equal(t, 7.0, ToPacks(7, 0))
	assert.Equal(t, 7.0, FromPacks(7, 0))
}

func TestRoundUpToPack(t *testing.T) {
	cases := []struct {
		name         string
		qty          float64
		unitsPerPack float64
		want         float64
	}{
		{"exact multiple stays", 20, 10, 20},
		{"partial rounds up", 21, 10, 30},
		{"just above boundary rounds up", 10.01, 10, 20},
		{"tiny positive becomes one pack", 0.2, 10, 10},
		{"zero stays zero", 0, 10, 0},
		{"negative stays zero", -5, 10, 0},
		{"no pack configured", 3.2, 0, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RoundUpToPack(tc.qty, tc.unitsPerPack))
		})
	}
}

func TestRoundUpToPackFloatSlack(t *testing.T) {
	// 0.1+0.2 style float noise must not bump an exact multiple up a pack.
	qty := 3 * 0.1 * 100 // 30.000000000000004
	assert.Equal(t, 30.0, RoundUpToPack(qty, 10))
}

func TestVoucherKey(t *testing.T) {
	key := VoucherKey(VoucherTypeSale, "INV-001", mustDate(t, 2024, 4, 1))
	assert.Equal(t, "SALE|INV-001|2024-04-01", key)
}

func TestMasterKey(t *testing.T) {
	assert.Equal(t, "ACME TRADERS", MasterKey("  Acme Traders "))
	assert.Equal(t, MasterKey("acme traders"), MasterKey("ACME TRADERS"))
}
