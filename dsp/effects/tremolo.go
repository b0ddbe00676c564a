package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultTremoloRateHz = 4.0
	defaultTremoloDepth  = 0.6
	defaultTremoloGain   = 1.0
	defaultTremoloBlock  = 512
)

// TremoloOption mutates tremolo construction parameters.
type TremoloOption func(*tremoloConfig) error

type tremoloConfig struct {
	rateHz   float64
	depth    float64
	gain     float64
	maxBlock int
}

func defaultTremoloConfig() tremoloConfig {
	return tremoloConfig{
		rateHz:   defaultTremoloRateHz,
		depth:    defaultTremoloDepth,
		gain:     defaultTremoloGain,
		maxBlock: defaultTremoloBlock,
	}
}

// WithTremoloRateHz sets modulation speed in Hz.
func WithTremoloRateHz(rateHz float64) TremoloOption {
	return func(cfg *tremoloConfig) error {
		if err := validateRate(rateHz); err != nil {
			return err
		}
		cfg.rateHz = rateHz
		return nil
	}
}

// WithTremoloDepth sets modulation depth in [0, 1].
func WithTremoloDepth(depth float64) TremoloOption {
	return func(cfg *tremoloConfig) error {
		if err := validateDepth(depth); err != nil {
			return err
		}
		cfg.depth = depth
		return nil
	}
}

// WithTremoloGain sets the linear output gain.
func WithTremoloGain(gain float64) TremoloOption {
	return func(cfg *tremoloConfig) error {
		if err := validateGain(gain); err != nil {
			return err
		}
		cfg.gain = gain
		return nil
	}
}

// WithTremoloMaxBlock sizes the envelope scratch buffer. Longer blocks are
// processed in chunks.
func WithTremoloMaxBlock(n int) TremoloOption {
	return func(cfg *tremoloConfig) error {
		if n <= 0 {
			return fmt.Errorf("tremolo max block must be > 0: %d", n)
		}
		cfg.maxBlock = n
		return nil
	}
}

// Tremolo applies LFO amplitude modulation and output gain to every channel
// of a block. Rate, depth and gain are held constant across one call; a
// control-rate scheduler changes them between sub-blocks.
type Tremolo struct {
	sampleRate float64
	rateHz     float64
	depth      float64
	gain       float64

	phase    float64
	phaseInc float64
	env      []float64
}

// NewTremolo creates a tremolo with practical defaults and optional overrides.
func NewTremolo(sampleRate float64, opts ...TremoloOption) (*Tremolo, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, err
	}

	cfg := defaultTremoloConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	t := &Tremolo{
		sampleRate: sampleRate,
		rateHz:     cfg.rateHz,
		depth:      cfg.depth,
		gain:       cfg.gain,
		env:        make([]float64, cfg.maxBlock),
	}
	t.updatePhaseIncrement()
	return t, nil
}

// SetSampleRate updates sample rate.
func (t *Tremolo) SetSampleRate(sampleRate float64) error {
	if err := validateSampleRate(sampleRate); err != nil {
		return err
	}
	t.sampleRate = sampleRate
	t.updatePhaseIncrement()
	return nil
}

// SetRateHz sets modulation speed in Hz.
func (t *Tremolo) SetRateHz(rateHz float64) error {
	if err := validateRate(rateHz); err != nil {
		return err
	}
	t.rateHz = rateHz
	t.updatePhaseIncrement()
	return nil
}

// SetDepth sets modulation depth in [0, 1].
func (t *Tremolo) SetDepth(depth float64) error {
	if err := validateDepth(depth); err != nil {
		return err
	}
	t.depth = depth
	return nil
}

// SetGain sets the linear output gain.
func (t *Tremolo) SetGain(gain float64) error {
	if err := validateGain(gain); err != nil {
		return err
	}
	t.gain = gain
	return nil
}

// Reset clears the modulation phase.
func (t *Tremolo) Reset() {
	t.phase = 0
}

// Process processes one sample.
func (t *Tremolo) Process(sample float64) float64 {
	out := sample * t.modulation() * t.gain
	t.advance()
	return out
}

// ProcessBlock applies the tremolo to the first n samples of every channel
// in place. All channels share one LFO phase.
func (t *Tremolo) ProcessBlock(channels [][]float64, n int) {
	for start := 0; start < n; start += len(t.env) {
		m := min(len(t.env), n-start)
		env := t.env[:m]
		for i := range env {
			env[i] = t.modulation()
			t.advance()
		}
		vecmath.ScaleBlock(env, env, t.gain)
		for _, ch := range channels {
			vecmath.MulBlockInPlace(ch[start:start+m], env)
		}
	}
}

// SampleRate returns sample rate in Hz.
func (t *Tremolo) SampleRate() float64 { return t.sampleRate }

// RateHz returns LFO speed in Hz.
func (t *Tremolo) RateHz() float64 { return t.rateHz }

// Depth returns modulation depth in [0, 1].
func (t *Tremolo) Depth() float64 { return t.depth }

// Gain returns the linear output gain.
func (t *Tremolo) Gain() float64 { return t.gain }

func (t *Tremolo) updatePhaseIncrement() {
	t.phaseInc = 2 * math.Pi * t.rateHz / t.sampleRate
}

func (t *Tremolo) advance() {
	t.phase += t.phaseInc
	if t.phase >= 2*math.Pi {
		t.phase -= 2 * math.Pi
	}
}

func (t *Tremolo) modulation() float64 {
	lfo := 0.5 * (1 + math.Sin(t.phase))
	return (1 - t.depth) + t.depth*lfo
}

func validateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("tremolo sample rate must be > 0 and finite: %f", sampleRate)
	}
	return nil
}

func validateRate(rateHz float64) error {
	if rateHz <= 0 || math.IsNaN(rateHz) || math.IsInf(rateHz, 0) {
		return fmt.Errorf("tremolo rate must be > 0 and finite: %f", rateHz)
	}
	return nil
}

func validateDepth(depth float64) error {
	if depth < 0 || depth > 1 || math.IsNaN(depth) || math.IsInf(depth, 0) {
		return fmt.Errorf("tremolo depth must be in [0, 1]: %f", depth)
	}
	return nil
}

func validateGain(gain float64) error {
	if gain < 0 || math.IsNaN(gain) || math.IsInf(gain, 0) {
		return fmt.Errorf("tremolo gain must be >= 0 and finite: %f", gain)
	}
	return nil
}
