package analysis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/cwbudde/algo-safe/features"
	"github.com/cwbudde/algo-safe/internal/observe"
)

type fakeParams struct {
	mu     sync.Mutex
	values []float64
}

func (p *fakeParams) set(i int, v float64) {
	p.mu.Lock()
	p.values[i] = v
	p.mu.Unlock()
}

func (p *fakeParams) Snapshot(dst []float64) []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append(dst[:0], p.values...)
}

func (p *fakeParams) Drifted(snapshot []float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(snapshot) != len(p.values) {
		return true
	}
	for i, v := range p.values {
		if v != snapshot[i] {
			return true
		}
	}
	return false
}

type fakeTransport struct{ stopped atomic.Bool }

func (t *fakeTransport) IsPlaying() bool { return !t.stopped.Load() }

type fakeExporter struct {
	mu      sync.Mutex
	local   []Annotation
	remote  []Annotation
	warning Warning
}

func (e *fakeExporter) ExportLocal(_ context.Context, a Annotation) Warning {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.local = append(e.local, a)
	return e.warning
}

func (e *fakeExporter) ExportRemote(_ context.Context, a Annotation) Warning {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.remote = append(e.remote, a)
	return e.warning
}

func (e *fakeExporter) counts() (local, remote int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.local), len(e.remote)
}

// stubExtractor records its input and optionally blocks until release is
// closed, ignoring cancellation.
type stubExtractor struct {
	calls   atomic.Int32
	release chan struct{}
	err     error

	mu     sync.Mutex
	inputs [][][]float64
}

func (p *stubExtractor) Analyse(_ context.Context, channels [][]float64) (features.Set, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.inputs = append(p.inputs, channels)
	p.mu.Unlock()
	if p.release != nil {
		<-p.release
	}
	if p.err != nil {
		return features.Set{}, p.err
	}
	return features.Set{FrameSize: 1, StepSize: 1}, nil
}

func (p *stubExtractor) factory() ExtractorFactory {
	return func(float64) (FeatureExtractor, error) { return p, nil }
}

type warningLog struct {
	mu   sync.Mutex
	seen []Warning
}

func (l *warningLog) Notify(w Warning) {
	l.mu.Lock()
	l.seen = append(l.seen, w)
	l.mu.Unlock()
}

func (l *warningLog) all() []Warning {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Warning(nil), l.seen...)
}

type fixture struct {
	c         *Coordinator
	params    *fakeParams
	transport *fakeTransport
	exporter  *fakeExporter
	extract   *stubExtractor
	warnings  *warningLog
}

func newFixture(t *testing.T, captureSamples int, opts ...Option) *fixture {
	t.Helper()
	m, err := observe.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	f := &fixture{
		params:    &fakeParams{values: []float64{0.5, 1}},
		transport: &fakeTransport{},
		exporter:  &fakeExporter{},
		extract:   &stubExtractor{},
		warnings:  &warningLog{},
	}
	base := []Option{
		WithNotifier(f.warnings),
		WithLock(NewLockRegistry().Lock("test")),
		WithExtractorFactory(f.extract.factory()),
		WithMetrics(m),
	}
	if captureSamples > 0 {
		base = append(base, WithCaptureSamples(captureSamples))
	}
	f.c, err = New(f.params, f.transport, f.exporter, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = f.c.Close(time.Second) })
	return f
}

// process runs one block through the taps, writing ramp input and doubled
// output starting at sample index start.
func (f *fixture) process(start, n int) {
	in := make([]float64, n)
	out := make([]float64, n)
	for i := range in {
		in[i] = float64(start + i)
		out[i] = 2 * in[i]
	}
	f.c.BeginBlock()
	f.c.TapPre([][]float64{in}, n)
	f.c.TapPost([][]float64{out}, n)
}

func waitOutcome(t *testing.T, c *Coordinator) Outcome {
	t.Helper()
	select {
	case out := <-c.Outcomes():
		return out
	case <-time.After(2 * time.Second):
		t.Fatalf("no outcome within 2s, state = %s", c.State())
		return Outcome{}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
