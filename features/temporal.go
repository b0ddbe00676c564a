package features

import "math"

// temporal holds the time-domain measurements of one frame.
type temporal struct {
	rms, peak, crest, zcr        float64
	variance, skewness, kurtosis float64
}

func measureTemporal(frame []float64) temporal {
	var t temporal
	n := len(frame)
	if n == 0 {
		return t
	}

	// Welford's online update of the first four central moments.
	var mean, m2, m3, m4, energy float64
	for i, x := range frame {
		energy += x * x
		if a := math.Abs(x); a > t.peak {
			t.peak = a
		}
		if i > 0 && frame[i-1]*x < 0 {
			t.zcr++
		}

		k := float64(i + 1)
		delta := x - mean
		deltaN := delta / k
		deltaN2 := deltaN * deltaN
		term1 := delta * deltaN * float64(i)
		mean += deltaN
		m4 += term1*deltaN2*(k*k-3*k+3) + 6*deltaN2*m2 - 4*deltaN*m3
		m3 += term1*deltaN*(k-2) - 3*deltaN*m2
		m2 += term1
	}

	t.rms = math.Sqrt(energy / float64(n))
	if t.rms > 0 {
		t.crest = t.peak / t.rms
	}
	if n > 1 {
		t.zcr /= float64(n - 1)
	}

	t.variance = m2 / float64(n)
	if t.variance > 0 {
		t.skewness = (m3 / float64(n)) / math.Pow(t.variance, 1.5)
		t.kurtosis = (m4/float64(n))/(t.variance*t.variance) - 3
	}
	return t
}

func (t temporal) value(d Descriptor) float64 {
	switch d {
	case RMS:
		return t.rms
	case Peak:
		return t.peak
	case CrestFactor:
		return t.crest
	case ZeroCrossingRate:
		return t.zcr
	case Variance:
		return t.variance
	case Skewness:
		return t.skewness
	case Kurtosis:
		return t.kurtosis
	default:
		return 0
	}
}
