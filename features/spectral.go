package features

import (
	"math"

	"github.com/cwbudde/algo-safe/dsp/spectrum"
)

const rolloffFraction = 0.85

// spectral holds the frequency-domain measurements of one frame.
type spectral struct {
	centroid, spread, flatness, rolloff float64
}

// measureSpectral computes shape descriptors of a one-sided magnitude
// spectrum taken from an FFT of size fftSize.
func measureSpectral(mag []float64, fftSize int, sampleRate float64) spectral {
	var s spectral
	if len(mag) < 2 {
		return s
	}

	var sum, energy, weighted float64
	for k, v := range mag {
		sum += v
		energy += v * v
		weighted += spectrum.BinFrequency(k, fftSize, sampleRate) * v
	}
	if sum == 0 {
		return s
	}

	s.centroid = weighted / sum

	var sq float64
	for k, v := range mag {
		d := spectrum.BinFrequency(k, fftSize, sampleRate) - s.centroid
		sq += d * d * v
	}
	s.spread = math.Sqrt(sq / sum)

	s.flatness = flatness(mag)

	threshold := rolloffFraction * energy
	cum := 0.0
	s.rolloff = spectrum.BinFrequency(len(mag)-1, fftSize, sampleRate)
	for k, v := range mag {
		cum += v * v
		if cum >= threshold {
			s.rolloff = spectrum.BinFrequency(k, fftSize, sampleRate)
			break
		}
	}
	return s
}

// flatness is the ratio of geometric to arithmetic mean over all bins but DC.
func flatness(mag []float64) float64 {
	bins := mag[1:]
	var sumLin, sumLog float64
	for _, v := range bins {
		if v <= 0 {
			return 0
		}
		sumLin += v
		sumLog += math.Log(v)
	}
	n := float64(len(bins))
	return math.Exp(sumLog/n) / (sumLin / n)
}

func (s spectral) value(d Descriptor) float64 {
	switch d {
	case SpectralCentroid:
		return s.centroid
	case SpectralSpread:
		return s.spread
	case SpectralFlatness:
		return s.flatness
	case SpectralRolloff:
		return s.rolloff
	default:
		return 0
	}
}
