package domain

import "math"

// Amounts are stored and computed in int64 minor units throughout the
// service. HTTP DTOs accept and return major-unit decimals; these helpers
// convert at that edge for two-decimal currencies.

// ToMinorUnits converts a major-unit amount (e.g. 100.00) to minor units
// (10000), rounding to the nearest unit.
func ToMinorUnits(major float64) int64 {
	return int64(math.Round(major * 100))
}

// ToMajorUnits converts minor units back to a major-unit decimal.
func ToMajorUnits(minor int64) float64 {
	return float64(minor) / 100
}
