package canonical

import "math"

// ToPacks converts a base-unit quantity into package units. UnitsPerPack
// values below 1 are treated as 1 (no package unit configured).
func ToPacks(baseQty, unitsPerPack float64) float64 {
	if unitsPerPack < 1 {
		unitsPerPack = 1
	}
	return baseQty / unitsPerPack
}

// FromPacks converts a package-unit quantity back into base units.
func FromPacks(packQty, unitsPerPack float64) float64 {
	if unitsPerPack < 1 {
		unitsPerPack = 1
	}
	return packQty * unitsPerPack
}

// RoundUpToPack rounds a base-unit quantity up to the nearest whole multiple
// of unitsPerPack. It never rounds down: a customer cannot order a fraction of
// a package.
func RoundUpToPack(baseQty, unitsPerPack float64) float64 {
	if unitsPerPack < 1 {
		unitsPerPack = 1
	}
	if baseQty <= 0 {
		return 0
	}
	packs := baseQty / unitsPerPack
	whole := math.Ceil(packs - 1e-9)
	if whole < 1 {
		whole = 1
	}
	return whole * unitsPerPack
}
