package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ramp returns start, start+1, ... as float64 samples. Ramps make it easy
// to check which stream position ended up where.
func Ramp(start, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = float64(start + i)
	}
	return out
}

// Channels returns numChannels independent copies of signal.
func Channels(numChannels int, signal []float64) [][]float64 {
	out := make([][]float64, numChannels)
	for i := range out {
		out[i] = append([]float64(nil), signal...)
	}
	return out
}

// BlockSizes splits total into pseudo-random host block lengths in
// [1, maxBlock], as an irregular host would deliver them.
func BlockSizes(seed int64, total, maxBlock int) []int {
	rng := rand.New(rand.NewSource(seed))
	var sizes []int
	for total > 0 {
		n := min(rng.Intn(max(maxBlock, 1))+1, total)
		sizes = append(sizes, n)
		total -= n
	}
	return sizes
}
