package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-safe/features"
	"github.com/cwbudde/algo-safe/internal/observe"
)

var (
	// ErrNotIdle is returned by Arm while a recording or analysis is in progress.
	ErrNotIdle = errors.New("analysis: not idle")
	// ErrEmptyCapture is returned by Arm when the capture length is zero.
	ErrEmptyCapture = errors.New("analysis: capture length is zero")
	// ErrShutdownTimeout is returned by Close when a worker outlives the grace period.
	ErrShutdownTimeout = errors.New("analysis: worker did not stop within grace period")
	// ErrClosed is returned by Arm after Close.
	ErrClosed = errors.New("analysis: coordinator closed")
)

// Coordinator runs the capture state machine and the single-flight
// analysis worker.
type Coordinator struct {
	cfg       config
	params    ParameterSource
	transport Transport
	exporter  Exporter

	state   atomic.Int32
	running atomic.Bool
	closed  atomic.Bool

	// mu serialises non-real-time writers of state and session data.
	mu         sync.Mutex
	session    Session
	snapshot   []float64
	sampleRate float64

	capture   *capture
	completed chan struct{}
	outcomes  chan Outcome

	ctx       context.Context
	cancel    context.CancelFunc
	stop      chan struct{}
	stopOnce  sync.Once
	dispatchW sync.WaitGroup
	workers   sync.WaitGroup
}

// New creates a Coordinator and starts its dispatcher goroutine. Call
// Prepare before processing and Close when done.
func New(params ParameterSource, transport Transport, exporter Exporter, opts ...Option) (*Coordinator, error) {
	if params == nil || transport == nil || exporter == nil {
		return nil, fmt.Errorf("analysis: parameters, transport and exporter are required")
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
	if cfg.notifier == nil {
		cfg.notifier = NotifierFunc(func(w Warning) {
			slog.Warn("analysis warning", "warning", w.String(), "message", w.Message())
		})
	}
	if cfg.lock == nil {
		cfg.lock = DefaultLocks.Lock("analysis")
	}
	if cfg.extractors == nil {
		cfg.extractors = DefaultExtractorFactory(cfg.frameSize)
	}
	if cfg.metrics == nil {
		cfg.metrics = observe.DefaultMetrics()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		cfg:       cfg,
		params:    params,
		transport: transport,
		exporter:  exporter,
		capture:   newCapture(),
		completed: make(chan struct{}, 1),
		outcomes:  make(chan Outcome, cfg.outcomeBuffer),
		ctx:       ctx,
		cancel:    cancel,
		stop:      make(chan struct{}),
	}

	c.dispatchW.Add(1)
	go c.dispatch()
	return c, nil
}

// Prepare sizes the capture buffers for a new stream configuration and
// discards any recording in progress. It must not run concurrently with
// the real-time taps.
func (c *Coordinator) Prepare(sampleRate float64, numInputs, numOutputs int) {
	target := c.cfg.captureSamples
	if target == 0 {
		target = TargetSamples(sampleRate, c.cfg.analysisTime, c.cfg.frameSize)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.State() {
	case Armed, Capturing, Ready:
		c.state.Store(int32(Idle))
	}
	c.sampleRate = sampleRate
	c.capture.prepare(numInputs, numOutputs, target)
}

// CaptureLength returns the number of samples a recording captures.
func (c *Coordinator) CaptureLength() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture.target
}

// State returns the current phase.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// IsIdle reports whether a new recording may be armed.
func (c *Coordinator) IsIdle() bool {
	return c.State() == Idle && !c.running.Load()
}

// Outcomes delivers the result of every analysis run. Outcomes are dropped
// when nobody reads the channel and its buffer is full.
func (c *Coordinator) Outcomes() <-chan Outcome {
	return c.outcomes
}

// Arm starts a recording of the next CaptureLength samples before and
// after processing. It fails with ErrNotIdle unless the coordinator is idle.
func (c *Coordinator) Arm(s Session) error {
	if c.closed.Load() {
		return ErrClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.IsIdle() {
		return ErrNotIdle
	}
	if c.capture.target == 0 {
		return ErrEmptyCapture
	}
	c.session = s
	c.snapshot = c.params.Snapshot(c.snapshot)
	c.state.Store(int32(Armed))

	c.cfg.metrics.CapturesArmed.Add(c.ctx, 1)
	slog.Info("recording armed", "descriptor", s.Descriptor, "samples", c.capture.target, "send_to_server", s.SendToServer)
	return nil
}

// BeginBlock moves an armed recording to Capturing. Real-time goroutine,
// once per block before TapPre.
func (c *Coordinator) BeginBlock() {
	if c.state.CompareAndSwap(int32(Armed), int32(Capturing)) {
		c.capture.reset()
	}
}

// TapPre records unprocessed input audio. Real-time goroutine.
func (c *Coordinator) TapPre(inputs [][]float64, n int) {
	if c.State() != Capturing {
		return
	}
	c.capture.tapPre(inputs, n)
}

// TapPost records processed output audio and completes the recording when
// the capture is full. Real-time goroutine.
func (c *Coordinator) TapPost(outputs [][]float64, n int) {
	if c.State() != Capturing {
		return
	}
	if !c.capture.tapPost(outputs, n) {
		return
	}
	if c.state.CompareAndSwap(int32(Capturing), int32(Ready)) {
		select {
		case c.completed <- struct{}{}:
		default:
		}
	}
}

// CheckIntegrity aborts an armed or capturing recording when parameters
// changed since arming or the transport stopped. It returns the warning
// that caused an abort, or NoWarning.
func (c *Coordinator) CheckIntegrity() Warning {
	c.mu.Lock()
	s := c.State()
	if s != Armed && s != Capturing {
		c.mu.Unlock()
		return NoWarning
	}

	w := NoWarning
	switch {
	case c.params.Drifted(c.snapshot):
		w = ParameterChange
	case !c.transport.IsPlaying():
		w = AudioNotPlaying
	}
	aborted := w != NoWarning && c.abortLocked()
	c.mu.Unlock()

	if !aborted {
		return NoWarning
	}
	c.cfg.metrics.RecordAbort(c.ctx, w.String())
	slog.Info("recording aborted", "reason", w.String())
	c.cfg.notifier.Notify(w)
	return w
}

// abortLocked returns an armed or capturing recording to Idle. The real-time
// goroutine may move Armed to Capturing concurrently, so the swap retries.
func (c *Coordinator) abortLocked() bool {
	for {
		s := c.state.Load()
		if State(s) != Armed && State(s) != Capturing {
			return false
		}
		if c.state.CompareAndSwap(s, int32(Idle)) {
			return true
		}
	}
}

// StartAnalysis starts a worker for job. The coordinator must hold a
// completed capture (Ready) or be Idle. While a worker runs the job is
// discarded and AnalysisThreadBusy is reported; the same warning is
// reported when a recording is armed or capturing, which is left intact.
func (c *Coordinator) StartAnalysis(job Job) Warning {
	if !c.running.CompareAndSwap(false, true) {
		c.mu.Lock()
		c.state.CompareAndSwap(int32(Ready), int32(Idle))
		c.mu.Unlock()
		return c.busy()
	}

	c.mu.Lock()
	if c.closed.Load() {
		c.state.CompareAndSwap(int32(Ready), int32(Idle))
		c.running.Store(false)
		c.mu.Unlock()
		slog.Warn("analysis discarded after close", "descriptor", job.Descriptor)
		return NoWarning
	}
	if !c.state.CompareAndSwap(int32(Ready), int32(Running)) &&
		!c.state.CompareAndSwap(int32(Idle), int32(Running)) {
		s := c.State()
		c.running.Store(false)
		c.mu.Unlock()
		slog.Warn("analysis rejected during recording", "state", s.String(), "descriptor", job.Descriptor)
		return c.busy()
	}
	c.mu.Unlock()

	c.workers.Add(1)
	go c.run(job)
	return NoWarning
}

func (c *Coordinator) busy() Warning {
	c.cfg.metrics.AnalysisBusy.Add(c.ctx, 1)
	c.cfg.notifier.Notify(AnalysisThreadBusy)
	return AnalysisThreadBusy
}

// Close stops the dispatcher and waits up to grace for a running worker.
// A recording that has not reached a worker is discarded. After grace the worker's context is cancelled, the worker is abandoned and
// ErrShutdownTimeout is returned. A non-positive grace uses
// DefaultShutdownGrace.
func (c *Coordinator) Close(grace time.Duration) error {
	if grace <= 0 {
		grace = DefaultShutdownGrace
	}
	c.stopOnce.Do(func() {
		c.closed.Store(true)
		close(c.stop)
	})
	c.dispatchW.Wait()

	c.mu.Lock()
	c.abortLocked()
	c.state.CompareAndSwap(int32(Ready), int32(Idle))
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.workers.Wait()
		close(done)
	}()

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-done:
		c.cancel()
		return nil
	case <-timer.C:
		c.cancel()
		slog.Warn("analysis worker abandoned", "grace", grace)
		return ErrShutdownTimeout
	}
}

func (c *Coordinator) dispatch() {
	defer c.dispatchW.Done()
	for {
		select {
		case <-c.stop:
			return
		case <-c.completed:
			job, ok := c.takeJob()
			if ok {
				c.StartAnalysis(job)
			}
		}
	}
}

// takeJob copies the completed capture into a Job.
func (c *Coordinator) takeJob() (Job, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.State() != Ready {
		return Job{}, false
	}
	return Job{
		Session:    c.session,
		Parameters: append([]float64(nil), c.snapshot...),
		SampleRate: c.sampleRate,
		Pre:        c.capture.pre.Clone().Channels(),
		Post:       c.capture.post.Clone().Channels(),
	}, true
}

func (c *Coordinator) run(job Job) {
	defer c.workers.Done()

	ctx, span := observe.StartSpan(c.ctx, "analysis.run")
	defer span.End()
	log := observe.Logger(ctx)

	out := Outcome{}
	waitStart := time.Now()
	if err := c.cfg.lock.Lock(ctx); err != nil {
		out.Err = fmt.Errorf("analysis: acquire lock: %w", err)
	} else {
		c.cfg.metrics.LockWait.Record(ctx, time.Since(waitStart).Seconds())
		start := time.Now()
		out.Annotation, out.Warning, out.Err = c.analyse(ctx, job)
		c.cfg.lock.Unlock()
		out.Duration = time.Since(start)
		c.cfg.metrics.RecordRun(ctx, out.Warning.String(), out.Duration.Seconds())
	}

	if out.Err != nil {
		log.Error("analysis failed", "descriptor", job.Descriptor, "err", out.Err)
	} else {
		log.Info("analysis finished", "descriptor", job.Descriptor, "warning", out.Warning.String(), "duration", out.Duration)
	}
	if out.Warning != NoWarning {
		c.cfg.notifier.Notify(out.Warning)
	}

	c.finish()
	select {
	case c.outcomes <- out:
	default:
		log.Warn("analysis outcome dropped", "descriptor", job.Descriptor)
	}
}

// finish marks the system idle.
func (c *Coordinator) finish() {
	c.mu.Lock()
	c.state.CompareAndSwap(int32(Running), int32(Idle))
	c.running.Store(false)
	c.mu.Unlock()
}

func (c *Coordinator) analyse(ctx context.Context, job Job) (*Annotation, Warning, error) {
	pre, err := c.cfg.extractors(job.SampleRate)
	if err != nil {
		return nil, NoWarning, fmt.Errorf("analysis: create extractor: %w", err)
	}
	post, err := c.cfg.extractors(job.SampleRate)
	if err != nil {
		return nil, NoWarning, fmt.Errorf("analysis: create extractor: %w", err)
	}

	var preSet, postSet features.Set
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := pre.Analyse(gctx, job.Pre)
		preSet = s
		return err
	})
	g.Go(func() error {
		s, err := post.Analyse(gctx, job.Post)
		postSet = s
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, NoWarning, fmt.Errorf("analysis: extract features: %w", err)
	}

	a := newAnnotation(job, preSet, postSet, time.Now())
	var w Warning
	if job.SendToServer {
		w = c.exporter.ExportRemote(ctx, *a)
	} else {
		w = c.exporter.ExportLocal(ctx, *a)
	}
	if w == DataFileUnavailable || w == ServerUnavailable {
		dest := "local"
		if job.SendToServer {
			dest = "remote"
		}
		c.cfg.metrics.RecordExportError(ctx, dest)
	}
	return a, w, nil
}
