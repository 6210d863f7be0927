// Package vcf resolves Volume Correction Factors from a two-dimensional
// (density, temperature) reference table.
//
// Inputs are snapped to the table grid (density step 0.5, temperature step
// 0.25). An exact grid hit is returned verbatim. Otherwise the resolver picks
// the stored density closest to the target and then, among rows with that
// density, the closest stored temperature. This is deliberately not a 2D
// nearest-neighbour search and no interpolation is performed. Equidistant
// candidates resolve to the lower value.
package vcf
