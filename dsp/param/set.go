package param

import (
	"fmt"

	"github.com/cwbudde/algo-safe/dsp/core"
)

// Set is an ordered collection of parameters that advance together.
type Set struct {
	params        []*Parameter
	interpolating int
	periodSeconds float64
	onChange      func(index int)
}

// NewSet returns an empty Set prepared for the given processing settings.
func NewSet(cfg core.ProcessorConfig) *Set {
	return &Set{periodSeconds: cfg.ControlPeriodSeconds()}
}

// Add appends a parameter. Parameters must be added before processing starts.
func (s *Set) Add(spec Spec) (*Parameter, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	for _, p := range s.params {
		if p.spec.Name == spec.Name {
			return nil, fmt.Errorf("param: duplicate name %q", spec.Name)
		}
	}
	p := newParameter(len(s.params), spec)
	p.setControlPeriod(s.periodSeconds)
	s.params = append(s.params, p)
	return p, nil
}

// MustAdd is like Add but panics on error.
func (s *Set) MustAdd(spec Spec) *Parameter {
	p, err := s.Add(spec)
	if err != nil {
		panic(err)
	}
	return p
}

// Len returns the number of parameters.
func (s *Set) Len() int { return len(s.params) }

// At returns parameter i.
func (s *Set) At(i int) *Parameter { return s.params[i] }

// Lookup returns the parameter with the given name.
func (s *Set) Lookup(name string) (*Parameter, bool) {
	for _, p := range s.params {
		if p.spec.Name == name {
			return p, true
		}
	}
	return nil, false
}

// OnChange registers fn to run on the real-time goroutine whenever a
// parameter value moves. fn must not allocate or block.
func (s *Set) OnChange(fn func(index int)) {
	s.onChange = fn
}

// Prepare recomputes smoothing step counts for new processing settings and
// snaps every parameter to its requested value.
func (s *Set) Prepare(cfg core.ProcessorConfig) {
	s.periodSeconds = cfg.ControlPeriodSeconds()
	for _, p := range s.params {
		p.setControlPeriod(s.periodSeconds)
	}
	s.SnapAll()
}

// ApplyPending moves requested values into the smoother. Called once at the
// start of every host block, before scheduling.
func (s *Set) ApplyPending() {
	for _, p := range s.params {
		if !p.pending.Swap(false) {
			continue
		}
		target := p.Requested()
		if target == p.current && p.remaining == 0 {
			continue
		}
		p.target = target
		if p.steps == 0 {
			if p.remaining > 0 {
				s.interpolating--
			}
			p.remaining = 0
			p.current = target
			p.publish()
			s.changed(p.index)
			continue
		}
		if p.remaining == 0 {
			s.interpolating++
		}
		p.remaining = p.steps
	}
}

// AdvanceOneStep moves every interpolating parameter one step toward its
// target. The final step lands exactly on the target.
func (s *Set) AdvanceOneStep() {
	if s.interpolating == 0 {
		return
	}
	for _, p := range s.params {
		if p.remaining == 0 {
			continue
		}
		p.current += (p.target - p.current) / float64(p.remaining)
		p.remaining--
		if p.remaining == 0 {
			p.current = p.target
			s.interpolating--
		}
		p.current = core.Clamp(p.current, p.spec.Min, p.spec.Max)
		p.publish()
		s.changed(p.index)
	}
}

// IsAnyInterpolating reports whether any parameter is still moving.
func (s *Set) IsAnyInterpolating() bool {
	return s.interpolating > 0
}

// SnapAll ends all interpolation and jumps to the requested values.
func (s *Set) SnapAll() {
	for _, p := range s.params {
		p.pending.Store(false)
		p.target = p.Requested()
		p.remaining = 0
		moved := p.current != p.target
		p.current = p.target
		p.publish()
		if moved {
			s.changed(p.index)
		}
	}
	s.interpolating = 0
}

// Snapshot writes the requested value of every parameter into dst, growing
// it only when it is too short, and returns it.
func (s *Set) Snapshot(dst []float64) []float64 {
	if cap(dst) < len(s.params) {
		dst = make([]float64, len(s.params))
	}
	dst = dst[:len(s.params)]
	for i, p := range s.params {
		dst[i] = p.Requested()
	}
	return dst
}

// Drifted reports whether any requested value differs from snapshot.
// Safe for concurrent use with the real-time goroutine.
func (s *Set) Drifted(snapshot []float64) bool {
	if len(snapshot) != len(s.params) {
		return true
	}
	for i, p := range s.params {
		if p.Requested() != snapshot[i] {
			return true
		}
	}
	return false
}

func (s *Set) changed(index int) {
	if s.onChange != nil {
		s.onChange(index)
	}
}
