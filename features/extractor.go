package features

import (
	"context"
	"fmt"
	"math"

	"github.com/cwbudde/algo-safe/dsp/spectrum"
	"github.com/cwbudde/algo-safe/dsp/window"
)

const (
	// DefaultFrameSize is the analysis frame length in samples.
	DefaultFrameSize = 4096
	// DefaultStepSize is the hop between analysis frames in samples.
	DefaultStepSize = 4096
)

// Option mutates extractor construction parameters.
type Option func(*config) error

type config struct {
	frameSize   int
	stepSize    int
	window      window.Type
	descriptors []Descriptor
}

func defaultConfig() config {
	return config{
		frameSize:   DefaultFrameSize,
		stepSize:    DefaultStepSize,
		window:      window.TypeHann,
		descriptors: AllDescriptors(),
	}
}

// WithFrameSize sets the analysis frame length; it must be a power of two.
func WithFrameSize(n int) Option {
	return func(cfg *config) error {
		if n < 2 || n&(n-1) != 0 {
			return fmt.Errorf("features frame size must be a power of two >= 2: %d", n)
		}
		cfg.frameSize = n
		return nil
	}
}

// WithStepSize sets the hop between frames.
func WithStepSize(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("features step size must be > 0: %d", n)
		}
		cfg.stepSize = n
		return nil
	}
}

// WithWindow selects the analysis window.
func WithWindow(t window.Type) Option {
	return func(cfg *config) error {
		cfg.window = t
		return nil
	}
}

// WithDescriptors limits extraction to the given descriptors.
func WithDescriptors(ds ...Descriptor) Option {
	return func(cfg *config) error {
		if len(ds) == 0 {
			return fmt.Errorf("features: at least one descriptor is required")
		}
		for _, d := range ds {
			if !d.Valid() {
				return fmt.Errorf("%w: %q", ErrUnknownDescriptor, d)
			}
		}
		cfg.descriptors = append([]Descriptor(nil), ds...)
		return nil
	}
}

// Extractor computes descriptors frame by frame. It is not safe for
// concurrent use; use one Extractor per goroutine.
type Extractor struct {
	sampleRate float64
	cfg        config
	spectral   bool

	analyzer *spectrum.Analyzer
	frame    []float64
	mag      []float64
}

// NewExtractor creates an extractor for audio at sampleRate.
func NewExtractor(sampleRate float64, opts ...Option) (*Extractor, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("features sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	e := &Extractor{
		sampleRate: sampleRate,
		cfg:        cfg,
		frame:      make([]float64, cfg.frameSize),
	}
	for _, d := range cfg.descriptors {
		e.spectral = e.spectral || d.Spectral()
	}

	if e.spectral {
		w, err := window.New(cfg.window, cfg.frameSize, window.WithPeriodic())
		if err != nil {
			return nil, fmt.Errorf("features: %w", err)
		}
		if e.analyzer, err = spectrum.NewAnalyzer(w); err != nil {
			return nil, fmt.Errorf("features: %w", err)
		}
		e.mag = make([]float64, e.analyzer.Bins())
	}
	return e, nil
}

// SampleRate returns the configured sample rate.
func (e *Extractor) SampleRate() float64 { return e.sampleRate }

// FrameSize returns the analysis frame length.
func (e *Extractor) FrameSize() int { return e.cfg.frameSize }

// StepSize returns the hop between frames.
func (e *Extractor) StepSize() int { return e.cfg.stepSize }

// Descriptors returns the descriptors this extractor computes.
func (e *Extractor) Descriptors() []Descriptor {
	return append([]Descriptor(nil), e.cfg.descriptors...)
}

// FrameCount returns how many frames a signal of n samples produces. Signals
// shorter than one frame are zero-padded to a single frame.
func (e *Extractor) FrameCount(n int) int {
	if n <= 0 {
		return 0
	}
	if n <= e.cfg.frameSize {
		return 1
	}
	return (n-e.cfg.frameSize)/e.cfg.stepSize + 1
}

// Analyse extracts descriptors from every channel. Cancellation is checked
// between frames.
func (e *Extractor) Analyse(ctx context.Context, channels [][]float64) (Set, error) {
	set := Set{
		SampleRate:  e.sampleRate,
		FrameSize:   e.cfg.frameSize,
		StepSize:    e.cfg.stepSize,
		Descriptors: e.Descriptors(),
		Channels:    make([]Channel, len(channels)),
	}

	for ch, samples := range channels {
		frames := e.FrameCount(len(samples))
		values := make(map[Descriptor][]float64, len(e.cfg.descriptors))
		for _, d := range e.cfg.descriptors {
			values[d] = make([]float64, frames)
		}

		for f := range frames {
			if err := ctx.Err(); err != nil {
				return Set{}, err
			}

			start := f * e.cfg.stepSize
			n := copy(e.frame, samples[start:])
			clear(e.frame[n:])

			tm := measureTemporal(e.frame)
			var sp spectral
			if e.spectral {
				if err := e.analyzer.Magnitude(e.mag, e.frame); err != nil {
					return Set{}, fmt.Errorf("features: channel %d frame %d: %w", ch, f, err)
				}
				sp = measureSpectral(e.mag, e.cfg.frameSize, e.sampleRate)
			}

			for _, d := range e.cfg.descriptors {
				if d.Spectral() {
					values[d][f] = sp.value(d)
				} else {
					values[d][f] = tm.value(d)
				}
			}
		}
		set.Channels[ch] = Channel{Frames: frames, Values: values}
	}
	return set, nil
}
