package spectrum

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-safe/dsp/window"
)

// Analyzer turns real frames of a fixed size into one-sided spectra.
type Analyzer struct {
	size     int
	windower window.Windower
	plan     *algofft.Plan[complex128]

	windowed []float64
	bins     []complex128
	re, im   []float64
}

// NewAnalyzer returns an Analyzer for frames of w.Size() samples. The size
// must be a power of two.
func NewAnalyzer(w window.Windower) (*Analyzer, error) {
	size := w.Size()
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("spectrum frame size must be a power of two >= 2: %d", size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
	}

	half := size/2 + 1
	return &Analyzer{
		size:     size,
		windower: w,
		plan:     plan,
		windowed: make([]float64, size),
		bins:     make([]complex128, size),
		re:       make([]float64, half),
		im:       make([]float64, half),
	}, nil
}

// Size returns the frame size in samples.
func (a *Analyzer) Size() int { return a.size }

// Bins returns the number of one-sided bins, Size()/2 + 1.
func (a *Analyzer) Bins() int { return a.size/2 + 1 }

// Magnitude windows frame, transforms it and writes |X[k]| for the
// non-negative frequency bins into dst, which must have length Bins().
func (a *Analyzer) Magnitude(dst, frame []float64) error {
	if err := a.transform(dst, frame); err != nil {
		return err
	}
	MagnitudeFromParts(dst, a.re, a.im)
	return nil
}

// Power is like Magnitude but writes |X[k]|^2.
func (a *Analyzer) Power(dst, frame []float64) error {
	if err := a.transform(dst, frame); err != nil {
		return err
	}
	PowerFromParts(dst, a.re, a.im)
	return nil
}

func (a *Analyzer) transform(dst, frame []float64) error {
	if len(frame) != a.size {
		return fmt.Errorf("spectrum frame length must be %d: %d", a.size, len(frame))
	}
	if len(dst) != a.Bins() {
		return fmt.Errorf("spectrum output length must be %d: %d", a.Bins(), len(dst))
	}

	a.windower.Apply(a.windowed, frame)
	for i, v := range a.windowed {
		a.bins[i] = complex(v, 0)
	}
	if err := a.plan.Forward(a.bins, a.bins); err != nil {
		return fmt.Errorf("spectrum: forward transform: %w", err)
	}
	for k := range a.re {
		a.re[k] = real(a.bins[k])
		a.im[k] = imag(a.bins[k])
	}
	return nil
}

// MagnitudeFromParts computes |X[k]| = sqrt(re[k]^2 + im[k]^2) into dst.
// All three slices must have the same length.
func MagnitudeFromParts(dst, re, im []float64) {
	vecmath.Magnitude(dst, re, im)
}

// PowerFromParts computes |X[k]|^2 = re[k]^2 + im[k]^2 into dst.
// All three slices must have the same length.
func PowerFromParts(dst, re, im []float64) {
	vecmath.Power(dst, re, im)
}

// BinFrequency returns the center frequency of bin k for an FFT of size n.
func BinFrequency(k, n int, sampleRate float64) float64 {
	if n <= 0 {
		return 0
	}
	return float64(k) * sampleRate / float64(n)
}
