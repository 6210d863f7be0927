package vcf

import "math"

const (
	DensityStep     = 0.5
	TemperatureStep = 0.25
)

// RoundToStep snaps v to the nearest multiple of step, halves away from zero.
func RoundToStep(v, step float64) float64 {
	return math.Round(v/step) * step
}

// RoundDensity snaps a density to the 0.5 grid.
func RoundDensity(density float64) float64 {
	return RoundToStep(density, DensityStep)
}

// RoundTemperature snaps a temperature to the 0.25 grid.
func RoundTemperature(temperature float64) float64 {
	return RoundToStep(temperature, TemperatureStep)
}
