package param

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-safe/dsp/core"
)

// Spec describes a parameter. Default, Min and Max are in the scaled domain.
type Spec struct {
	Name  string
	Units string

	Default float64
	Min     float64
	Max     float64

	// Skew shapes the normalised-to-scaled mapping; 0 means linear.
	Skew float64
	// DB marks a parameter whose scaled value is a level in dB; Gain
	// returns it as a linear factor.
	DB bool
	// Smoothing is the time a change takes to reach its target.
	// Zero applies changes at the next block start.
	Smoothing time.Duration
	// UIScale multiplies the scaled value for display; 0 means 1.
	UIScale float64
}

func (s Spec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("param: name must not be empty")
	}
	for _, v := range []float64{s.Default, s.Min, s.Max, s.Skew, s.UIScale} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("param %q: values must be finite", s.Name)
		}
	}
	if s.Min >= s.Max {
		return fmt.Errorf("param %q: min must be < max: %f >= %f", s.Name, s.Min, s.Max)
	}
	if s.Default < s.Min || s.Default > s.Max {
		return fmt.Errorf("param %q: default must be in [%f, %f]: %f", s.Name, s.Min, s.Max, s.Default)
	}
	if s.Skew < 0 {
		return fmt.Errorf("param %q: skew must be >= 0: %f", s.Name, s.Skew)
	}
	if s.Smoothing < 0 {
		return fmt.Errorf("param %q: smoothing must be >= 0: %s", s.Name, s.Smoothing)
	}
	return nil
}

// Parameter is a single smoothed value.
type Parameter struct {
	index int
	spec  Spec

	// Real-time state.
	current   float64
	target    float64
	remaining int
	steps     int

	requested atomic.Uint64
	scaled    atomic.Uint64
	pending   atomic.Bool
}

func newParameter(index int, spec Spec) *Parameter {
	if spec.Skew == 0 {
		spec.Skew = 1
	}
	if spec.UIScale == 0 {
		spec.UIScale = 1
	}
	p := &Parameter{
		index:   index,
		spec:    spec,
		current: spec.Default,
		target:  spec.Default,
	}
	p.requested.Store(math.Float64bits(spec.Default))
	p.scaled.Store(math.Float64bits(spec.Default))
	return p
}

// Index returns the position of p in its Set.
func (p *Parameter) Index() int { return p.index }

// Name returns the parameter name.
func (p *Parameter) Name() string { return p.spec.Name }

// Spec returns the parameter description with defaults filled in.
func (p *Parameter) Spec() Spec { return p.spec }

// SetScaled requests a new value in [Min, Max]. Out-of-range values are
// clamped. Safe for concurrent use.
func (p *Parameter) SetScaled(v float64) {
	if math.IsNaN(v) {
		return
	}
	v = core.Clamp(v, p.spec.Min, p.spec.Max)
	p.requested.Store(math.Float64bits(v))
	p.pending.Store(true)
}

// SetBase requests a new value given as a normalised host value in [0, 1].
func (p *Parameter) SetBase(v float64) {
	if math.IsNaN(v) {
		return
	}
	p.SetScaled(core.FromNormalized(v, p.spec.Min, p.spec.Max, p.spec.Skew))
}

// Scaled returns the current, possibly still interpolating, value.
func (p *Parameter) Scaled() float64 {
	return math.Float64frombits(p.scaled.Load())
}

// Requested returns the most recently requested value.
func (p *Parameter) Requested() float64 {
	return math.Float64frombits(p.requested.Load())
}

// Base returns the requested value as a normalised host value.
func (p *Parameter) Base() float64 {
	return core.ToNormalized(p.Requested(), p.spec.Min, p.spec.Max, p.spec.Skew)
}

// Gain returns the current value as a linear factor for dB parameters and
// the scaled value otherwise.
func (p *Parameter) Gain() float64 {
	if p.spec.DB {
		return core.DBToGain(p.Scaled())
	}
	return p.Scaled()
}

// UIValue returns the requested value multiplied by the display scale.
func (p *Parameter) UIValue() float64 {
	return p.Requested() * p.spec.UIScale
}

// Text formats the display value with two decimals and the unit suffix.
func (p *Parameter) Text() string {
	return fmt.Sprintf("%.2f%s", p.UIValue(), p.spec.Units)
}

// Interpolating reports whether p is still moving toward its target.
// Real-time goroutine only.
func (p *Parameter) Interpolating() bool { return p.remaining > 0 }

func (p *Parameter) publish() {
	p.scaled.Store(math.Float64bits(p.current))
}

func (p *Parameter) setControlPeriod(seconds float64) {
	if p.spec.Smoothing <= 0 || seconds <= 0 {
		p.steps = 0
		return
	}
	p.steps = max(1, int(math.Round(p.spec.Smoothing.Seconds()/seconds)))
}
