package control

// Smoother advances parameter smoothing one control period at a time.
type Smoother interface {
	IsAnyInterpolating() bool
	AdvanceOneStep()
}

// Renderer processes one sub-block in place. Sub-block samples and event
// offsets both start at zero. Render runs on the real-time goroutine.
type Renderer interface {
	Render(block Block, events Events)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(block Block, events Events)

// Render calls f.
func (f RenderFunc) Render(block Block, events Events) { f(block, events) }

// Scheduler splits blocks at control period boundaries.
type Scheduler struct {
	smoother  Smoother
	period    int
	remainder int
	views     [][]float64
}

// NewScheduler returns a Scheduler for the given control period in samples,
// with view storage for up to maxChannels channels.
func NewScheduler(smoother Smoother, period, maxChannels int) *Scheduler {
	s := &Scheduler{smoother: smoother}
	s.Prepare(period, maxChannels)
	return s
}

// Prepare sets the control period and channel capacity and clears the
// carried remainder. It may allocate and must not race with Process.
func (s *Scheduler) Prepare(period, maxChannels int) {
	s.period = max(period, 1)
	if cap(s.views) < maxChannels {
		s.views = make([][]float64, 0, maxChannels)
	}
	s.remainder = 0
}

// Reset clears the carried remainder.
func (s *Scheduler) Reset() { s.remainder = 0 }

// Period returns the control period in samples.
func (s *Scheduler) Period() int { return s.period }

// Remainder returns the number of samples left in the current control
// period. It is always in [0, Period()).
func (s *Scheduler) Remainder() int { return s.remainder }

// Process renders block through r, advancing the smoother at every control
// period boundary while it is interpolating, then zeroes output channels
// that have no matching input.
func (s *Scheduler) Process(block Block, events Events, r Renderer) {
	n := block.Len()

	if !s.smoother.IsAnyInterpolating() {
		r.Render(block, events)
		s.remainder = 0
	} else {
		pos := 0

		if s.remainder > 0 && n > 0 {
			lead := min(s.remainder, n)
			s.render(block, events, r, 0, lead)
			s.remainder -= lead
			pos = lead
		}

		for pos+s.period <= n {
			s.smoother.AdvanceOneStep()
			s.render(block, events, r, pos, pos+s.period)
			pos += s.period
		}

		if tail := n - pos; tail > 0 {
			s.smoother.AdvanceOneStep()
			s.render(block, events, r, pos, n)
			s.remainder = s.period - tail
		}
	}

	for ch := block.NumInputs; ch < min(block.NumOutputs, len(block.Channels)); ch++ {
		clear(block.Channels[ch][:n])
	}
}

func (s *Scheduler) render(block Block, events Events, r Renderer, start, end int) {
	r.Render(block.Slice(s.views, start, end), events.Slice(start, end))
}
