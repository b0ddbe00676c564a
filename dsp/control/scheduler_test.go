package control

import (
	"math/rand"
	"testing"
	"time"

	"github.com/cwbudde/algo-safe/dsp/core"
	"github.com/cwbudde/algo-safe/dsp/param"
)

type fakeSmoother struct {
	interpolating bool
	advances      int
}

func (f *fakeSmoother) IsAnyInterpolating() bool { return f.interpolating }
func (f *fakeSmoother) AdvanceOneStep()          { f.advances++ }

type recorder struct {
	smoother *fakeSmoother
	lengths  []int
	// advances seen by the smoother when each sub-block started.
	advanceAt []int
	events    [][]Event
}

func (r *recorder) Render(b Block, ev Events) {
	r.lengths = append(r.lengths, b.Len())
	if r.smoother != nil {
		r.advanceAt = append(r.advanceAt, r.smoother.advances)
	}
	got := make([]Event, ev.Len())
	for i := range got {
		got[i] = ev.At(i)
	}
	r.events = append(r.events, got)
}

func monoBlock(n int) Block {
	return NewBlock([][]float64{make([]float64, n)}, 1, 1)
}

func TestFirstBlockAtControlRate(t *testing.T) {
	period := core.ControlPeriod(44100, 64)
	sm := &fakeSmoother{interpolating: true}
	s := NewScheduler(sm, period, 2)
	rec := &recorder{smoother: sm}

	s.Process(monoBlock(1000), Events{}, rec)

	if len(rec.lengths) != 2 || rec.lengths[0] != 689 || rec.lengths[1] != 311 {
		t.Fatalf("sub-blocks = %v, want [689 311]", rec.lengths)
	}
	if sm.advances != 2 {
		t.Fatalf("advances = %d, want 2", sm.advances)
	}
	if s.Remainder() != 378 {
		t.Fatalf("Remainder() = %d, want 378", s.Remainder())
	}
}

func TestRemainderCarriesIntoNextBlock(t *testing.T) {
	sm := &fakeSmoother{interpolating: true}
	s := NewScheduler(sm, 689, 1)
	s.Process(monoBlock(1000), Events{}, RenderFunc(func(Block, Events) {}))

	rec := &recorder{smoother: sm}
	s.Process(monoBlock(500), Events{}, rec)

	if len(rec.lengths) != 2 || rec.lengths[0] != 378 || rec.lengths[1] != 122 {
		t.Fatalf("sub-blocks = %v, want [378 122]", rec.lengths)
	}
	// The carried segment finishes the previous period without an advance.
	if rec.advanceAt[0] != 2 || rec.advanceAt[1] != 3 {
		t.Fatalf("advances at sub-block start = %v, want [2 3]", rec.advanceAt)
	}
	if s.Remainder() != 567 {
		t.Fatalf("Remainder() = %d, want 567", s.Remainder())
	}
}

func TestBlockShorterThanRemainder(t *testing.T) {
	sm := &fakeSmoother{interpolating: true}
	s := NewScheduler(sm, 100, 1)
	s.Process(monoBlock(30), Events{}, RenderFunc(func(Block, Events) {}))
	if s.Remainder() != 70 || sm.advances != 1 {
		t.Fatalf("remainder=%d advances=%d, want 70 and 1", s.Remainder(), sm.advances)
	}

	s.Process(monoBlock(50), Events{}, RenderFunc(func(Block, Events) {}))
	if s.Remainder() != 20 || sm.advances != 1 {
		t.Fatalf("remainder=%d advances=%d, want 20 and 1", s.Remainder(), sm.advances)
	}
}

func TestBlockEndingOnBoundaryClearsRemainder(t *testing.T) {
	sm := &fakeSmoother{interpolating: true}
	s := NewScheduler(sm, 100, 1)
	rec := &recorder{smoother: sm}

	s.Process(monoBlock(300), Events{}, rec)
	if s.Remainder() != 0 {
		t.Fatalf("Remainder() = %d, want 0", s.Remainder())
	}
	if sm.advances != 3 || len(rec.lengths) != 3 {
		t.Fatalf("advances=%d sub-blocks=%v, want 3 x 100", sm.advances, rec.lengths)
	}
}

func TestFastPathRendersWholeBlock(t *testing.T) {
	sm := &fakeSmoother{interpolating: true}
	s := NewScheduler(sm, 100, 1)
	s.Process(monoBlock(150), Events{}, RenderFunc(func(Block, Events) {}))

	sm.interpolating = false
	before := sm.advances
	rec := &recorder{}
	s.Process(monoBlock(777), Events{}, rec)

	if len(rec.lengths) != 1 || rec.lengths[0] != 777 {
		t.Fatalf("sub-blocks = %v, want [777]", rec.lengths)
	}
	if sm.advances != before {
		t.Fatalf("advances = %d, want %d", sm.advances, before)
	}
	if s.Remainder() != 0 {
		t.Fatalf("Remainder() = %d, want 0", s.Remainder())
	}
}

func TestInterpolationAfterFastPathAdvancesImmediately(t *testing.T) {
	sm := &fakeSmoother{}
	s := NewScheduler(sm, 100, 1)
	s.Process(monoBlock(64), Events{}, RenderFunc(func(Block, Events) {}))

	sm.interpolating = true
	rec := &recorder{smoother: sm}
	s.Process(monoBlock(64), Events{}, rec)

	if len(rec.advanceAt) != 1 || rec.advanceAt[0] != 1 {
		t.Fatalf("advances at sub-block start = %v, want [1]", rec.advanceAt)
	}
	if s.Remainder() != 36 {
		t.Fatalf("Remainder() = %d, want 36", s.Remainder())
	}
}

func TestBlockConservationAndRemainderBound(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, period := range []int{1, 7, 64, 689, 1500} {
		sm := &fakeSmoother{}
		s := NewScheduler(sm, period, 1)
		for range 500 {
			n := rng.Intn(4096)
			sm.interpolating = rng.Intn(4) != 0

			total := 0
			s.Process(monoBlock(n), Events{}, RenderFunc(func(b Block, _ Events) {
				if b.Len() == 0 && n > 0 {
					t.Fatalf("period %d: empty sub-block in block of %d", period, n)
				}
				total += b.Len()
			}))

			if total != n {
				t.Fatalf("period %d: rendered %d samples, want %d", period, total, n)
			}
			if r := s.Remainder(); r < 0 || r >= period {
				t.Fatalf("period %d: remainder %d out of [0, %d)", period, r, period)
			}
		}
	}
}

func TestAdvanceCountMatchesBoundaries(t *testing.T) {
	// While interpolating continuously, advances equal the number of
	// control periods started so far.
	rng := rand.New(rand.NewSource(3))
	sm := &fakeSmoother{interpolating: true}
	s := NewScheduler(sm, 689, 1)

	total := 0
	for range 200 {
		n := rng.Intn(2048) + 1
		s.Process(monoBlock(n), Events{}, RenderFunc(func(Block, Events) {}))
		total += n

		want := (total + 688) / 689
		if sm.advances != want {
			t.Fatalf("after %d samples advances = %d, want %d", total, sm.advances, want)
		}
	}
}

func TestSubBlocksAreContiguousViews(t *testing.T) {
	sm := &fakeSmoother{interpolating: true}
	s := NewScheduler(sm, 4, 2)
	block := NewBlock([][]float64{make([]float64, 10), make([]float64, 10)}, 2, 2)

	next := 0.0
	s.Process(block, Events{}, RenderFunc(func(b Block, _ Events) {
		for i := range b.Len() {
			for _, ch := range b.Channels {
				ch[i] = next
			}
			next++
		}
	}))

	for ch := range block.Channels {
		for i, v := range block.Channels[ch] {
			if v != float64(i) {
				t.Fatalf("channel %d = %v, want ascending sample indices", ch, block.Channels[ch])
			}
		}
	}
}

func TestEventsAreRebasedPerSubBlock(t *testing.T) {
	sm := &fakeSmoother{interpolating: true}
	s := NewScheduler(sm, 100, 1)
	events := EventsOf([]Event{
		{Offset: 0, Data: [3]byte{0x90, 60, 100}},
		{Offset: 99},
		{Offset: 100},
		{Offset: 170},
	})
	rec := &recorder{smoother: sm}

	s.Process(monoBlock(250), events, rec)

	want := [][]int{{0, 99}, {0, 70}, {}}
	if len(rec.events) != len(want) {
		t.Fatalf("got %d sub-blocks, want %d", len(rec.events), len(want))
	}
	for i, offsets := range want {
		if len(rec.events[i]) != len(offsets) {
			t.Fatalf("sub-block %d events = %v, want offsets %v", i, rec.events[i], offsets)
		}
		for j, off := range offsets {
			if rec.events[i][j].Offset != off {
				t.Fatalf("sub-block %d event %d offset = %d, want %d", i, j, rec.events[i][j].Offset, off)
			}
		}
	}
	if rec.events[0][0].Data[1] != 60 {
		t.Fatalf("event data = %v, want note 60", rec.events[0][0].Data)
	}
}

func TestExtraOutputsAreZeroed(t *testing.T) {
	block := NewBlock([][]float64{{1, 1, 1}, {5, 5, 5}, {9, 9, 9}}, 1, 3)
	s := NewScheduler(&fakeSmoother{}, 64, 3)

	s.Process(block, Events{}, RenderFunc(func(Block, Events) {}))

	if block.Channels[0][0] != 1 {
		t.Fatalf("input channel was cleared: %v", block.Channels[0])
	}
	for ch := 1; ch < 3; ch++ {
		for _, v := range block.Channels[ch] {
			if v != 0 {
				t.Fatalf("channel %d = %v, want zeros", ch, block.Channels[ch])
			}
		}
	}
}

func TestZeroLengthBlock(t *testing.T) {
	sm := &fakeSmoother{interpolating: true}
	s := NewScheduler(sm, 64, 1)
	s.Process(monoBlock(0), Events{}, RenderFunc(func(Block, Events) {}))
	if sm.advances != 0 || s.Remainder() != 0 {
		t.Fatalf("advances=%d remainder=%d, want 0 and 0", sm.advances, s.Remainder())
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	sm := &fakeSmoother{interpolating: true}
	s := NewScheduler(sm, 689, 2)
	block := NewBlock([][]float64{make([]float64, 1000), make([]float64, 1000)}, 1, 2)
	events := EventsOf([]Event{{Offset: 10}, {Offset: 900}})
	r := RenderFunc(func(Block, Events) {})

	allocs := testing.AllocsPerRun(100, func() {
		s.Process(block, events, r)
	})
	if allocs != 0 {
		t.Fatalf("Process allocated %v times per run, want 0", allocs)
	}
}

func TestSchedulerDrivesParameterSet(t *testing.T) {
	cfg := core.ApplyProcessorOptions(core.WithSampleRate(44100))
	set := param.NewSet(cfg)
	gain := set.MustAdd(param.Spec{Name: "Gain", Min: 0, Max: 1, Smoothing: 50 * time.Millisecond})
	s := NewScheduler(set, cfg.ControlPeriod(), 1)

	gain.SetScaled(0.9)
	set.ApplyPending()

	var seen []float64
	s.Process(monoBlock(1000), Events{}, RenderFunc(func(Block, Events) {
		seen = append(seen, gain.Scaled())
	}))

	if len(seen) != 2 || !core.NearlyEqual(seen[0], 0.3, 1e-12) || !core.NearlyEqual(seen[1], 0.6, 1e-12) {
		t.Fatalf("values per sub-block = %v, want [0.3 0.6]", seen)
	}
}
