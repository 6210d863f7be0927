package calculators

import "math"

// Density is kg/m³ and volume is litres, so the product needs 1e6 to land in metric tons.
const tonnageDivisor = 1_000_000

// tonnagePrecision keeps 8 fractional digits in the stored result.
const tonnagePrecision = 1e8

// ComputeTonnage returns volume * density * vcf / 1_000_000 rounded to 8 decimals.
func ComputeTonnage(volume, density, vcf float64) float64 {
	tonnage := volume * density * vcf / tonnageDivisor
	return math.Round(tonnage*tonnagePrecision) / tonnagePrecision
}
