package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// DBToGain converts a level in dB to a linear amplitude factor.
func DBToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

// GainToDB converts a linear amplitude factor to dB.
// Non-positive gains map to -Inf.
func GainToDB(gain float64) float64 {
	if gain <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(gain)
}

// FromNormalized maps a normalised value in [0, 1] onto [min, max].
//
// A skew of 1 is linear. Skews below 1 spend more of the normalised range on
// the low end of [min, max], skews above 1 on the high end. Invalid skews are
// treated as linear.
func FromNormalized(norm, min, max, skew float64) float64 {
	norm = Clamp(norm, 0, 1)
	if skew > 0 && skew != 1 && norm > 0 {
		norm = math.Exp(math.Log(norm) / skew)
	}

	return min + (max-min)*norm
}

// ToNormalized is the inverse of FromNormalized.
func ToNormalized(value, min, max, skew float64) float64 {
	if max == min {
		return 0
	}

	norm := Clamp((value-min)/(max-min), 0, 1)
	if skew > 0 && skew != 1 && norm > 0 {
		norm = math.Pow(norm, skew)
	}

	return norm
}
