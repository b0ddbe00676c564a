package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/algo-safe/dsp/control"
	"github.com/cwbudde/algo-safe/dsp/core"
	"github.com/cwbudde/algo-safe/dsp/param"
	"github.com/cwbudde/algo-safe/plugin/analysis"
	"github.com/cwbudde/algo-safe/plugin/provenance"
)

// ErrParameterIndex is returned for a parameter index outside
// [0, NumParameters()).
var ErrParameterIndex = errors.New("plugin: parameter index out of range")

// Store persists annotations and answers descriptor lookups.
// *provenance.Exporter implements it.
type Store interface {
	analysis.Exporter
	Lookup(ctx context.Context, descriptor string, fromServer bool) ([]float64, analysis.Warning)
}

var _ Store = (*provenance.Exporter)(nil)

// Processor is one plugin instance.
type Processor struct {
	cfg        core.ProcessorConfig
	numInputs  int
	numOutputs int

	kernel   Kernel
	params   *param.Set
	sched    *control.Scheduler
	coord    *analysis.Coordinator
	store    Store
	notifier analysis.Notifier

	integrityInterval time.Duration
}

// New registers the kernel's parameters, starts the analysis coordinator
// and prepares the processor for the configured stream.
func New(kernel Kernel, transport analysis.Transport, store Store, opts ...Option) (*Processor, error) {
	if kernel == nil {
		return nil, errors.New("plugin: kernel is required")
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
		cfg.notifier = analysis.NotifierFunc(func(w analysis.Warning) {
			slog.Warn("plugin warning", "warning", w.String(), "message", w.Message())
		})
	}

	pc := core.ApplyProcessorOptions(cfg.processor...)
	params := param.NewSet(pc)
	for _, spec := range kernel.Parameters() {
		if _, err := params.Add(spec); err != nil {
			return nil, fmt.Errorf("plugin: %w", err)
		}
	}

	coord, err := analysis.New(params, transport, store,
		append([]analysis.Option{analysis.WithNotifier(cfg.notifier)}, cfg.analysis...)...)
	if err != nil {
		return nil, err
	}

	p := &Processor{
		cfg:               pc,
		kernel:            kernel,
		params:            params,
		sched:             control.NewScheduler(params, pc.ControlPeriod(), max(cfg.numInputs, cfg.numOutputs)),
		coord:             coord,
		store:             store,
		notifier:          cfg.notifier,
		integrityInterval: cfg.integrityInterval,
	}
	params.OnChange(kernel.Update)

	if err := p.Prepare(pc.SampleRate, pc.BlockSize, cfg.numInputs, cfg.numOutputs); err != nil {
		_ = coord.Close(time.Second)
		return nil, err
	}
	return p, nil
}

// Prepare configures the processor for a new stream. Any recording in
// progress is discarded. It must not run concurrently with ProcessBlock.
func (p *Processor) Prepare(sampleRate float64, blockSize, numInputs, numOutputs int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("plugin sample rate must be > 0: %f", sampleRate)
	}
	if blockSize <= 0 {
		return fmt.Errorf("plugin block size must be > 0: %d", blockSize)
	}
	if numInputs < 0 || numOutputs < 0 || numInputs+numOutputs == 0 {
		return fmt.Errorf("plugin channels must be >= 0 and not both zero: %d/%d", numInputs, numOutputs)
	}

	p.cfg.SampleRate = sampleRate
	p.cfg.BlockSize = blockSize
	p.numInputs = numInputs
	p.numOutputs = numOutputs

	p.params.Prepare(p.cfg)
	if err := p.kernel.Prepare(p.cfg, p.params); err != nil {
		return fmt.Errorf("plugin: prepare kernel: %w", err)
	}
	p.sched.Prepare(p.cfg.ControlPeriod(), max(numInputs, numOutputs))
	p.coord.Prepare(sampleRate, numInputs, numOutputs)

	slog.Info("processor prepared",
		"sample_rate", sampleRate,
		"block_size", blockSize,
		"control_period", p.sched.Period(),
		"inputs", numInputs,
		"outputs", numOutputs,
		"capture_samples", p.coord.CaptureLength(),
	)
	return nil
}

// ProcessBlock processes one host block in place. channels holds
// max(inputs, outputs) equally long channels; events are sorted by offset.
// Real-time goroutine.
func (p *Processor) ProcessBlock(channels [][]float64, events []control.Event) {
	block := control.NewBlock(channels, p.numInputs, p.numOutputs)
	n := block.Len()

	p.coord.BeginBlock()
	p.coord.TapPre(block.Inputs(), n)
	p.params.ApplyPending()
	p.sched.Process(block, control.EventsOf(events), p.kernel)
	p.coord.TapPost(block.Outputs(), n)
}

// Config returns the current processing settings.
func (p *Processor) Config() core.ProcessorConfig { return p.cfg }

// Channels returns the input and output channel counts.
func (p *Processor) Channels() (numInputs, numOutputs int) { return p.numInputs, p.numOutputs }

// ControlPeriod returns the control period in samples.
func (p *Processor) ControlPeriod() int { return p.sched.Period() }

// CaptureLength returns the number of samples a recording captures.
func (p *Processor) CaptureLength() int { return p.coord.CaptureLength() }

// StartRecording arms a recording for s. It returns false while another
// recording or analysis is in progress.
func (p *Processor) StartRecording(s analysis.Session) bool {
	if err := p.coord.Arm(s); err != nil {
		slog.Debug("recording not started", "err", err)
		return false
	}
	return true
}

// IsRecording reports whether a recording is armed or capturing.
func (p *Processor) IsRecording() bool {
	s := p.coord.State()
	return s == analysis.Armed || s == analysis.Capturing
}

// IsReadyToSave reports whether a new recording may be started.
func (p *Processor) IsReadyToSave() bool { return p.coord.IsIdle() }

// State returns the capture and analysis phase.
func (p *Processor) State() analysis.State { return p.coord.State() }

// CheckIntegrity aborts the active recording if parameters changed or the
// transport stopped since it was armed.
func (p *Processor) CheckIntegrity() analysis.Warning { return p.coord.CheckIntegrity() }

// Outcomes delivers the result of every analysis run.
func (p *Processor) Outcomes() <-chan analysis.Outcome { return p.coord.Outcomes() }

// Run checks recording integrity every integrity interval until ctx is done.
func (p *Processor) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.integrityInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.coord.CheckIntegrity()
		}
	}
}

// Close stops the analysis pipeline, waiting up to grace for a running
// analysis.
func (p *Processor) Close(grace time.Duration) error { return p.coord.Close(grace) }

// NumParameters returns the number of parameters.
func (p *Processor) NumParameters() int { return p.params.Len() }

// Params returns the parameter set.
func (p *Processor) Params() *param.Set { return p.params }

func (p *Processor) parameter(i int) (*param.Parameter, error) {
	if i < 0 || i >= p.params.Len() {
		return nil, fmt.Errorf("%w: %d", ErrParameterIndex, i)
	}
	return p.params.At(i), nil
}

// ParameterName returns the name of parameter i, or "" when out of range.
func (p *Processor) ParameterName(i int) string {
	prm, err := p.parameter(i)
	if err != nil {
		return ""
	}
	return prm.Name()
}

// Parameter returns the normalised host value of parameter i, or 0 when
// out of range.
func (p *Processor) Parameter(i int) float64 {
	prm, err := p.parameter(i)
	if err != nil {
		return 0
	}
	return prm.Base()
}

// SetParameter requests parameter i from a normalised host value in [0, 1].
func (p *Processor) SetParameter(i int, v float64) error {
	prm, err := p.parameter(i)
	if err != nil {
		return err
	}
	prm.SetBase(v)
	return nil
}

// SetScaledParameter requests parameter i in its scaled range.
func (p *Processor) SetScaledParameter(i int, v float64) error {
	prm, err := p.parameter(i)
	if err != nil {
		return err
	}
	prm.SetScaled(v)
	return nil
}

// ParameterText returns the display text of parameter i, or "" when out of
// range.
func (p *Processor) ParameterText(i int) string {
	prm, err := p.parameter(i)
	if err != nil {
		return ""
	}
	return prm.Text()
}

// ParamInfos describes every parameter for the details files.
func (p *Processor) ParamInfos() []provenance.ParamInfo {
	specs := make([]param.Spec, p.params.Len())
	for i := range specs {
		specs[i] = p.params.At(i).Spec()
	}
	return ParamInfos(specs)
}

// ParamInfos converts parameter descriptions for the details files.
func ParamInfos(specs []param.Spec) []provenance.ParamInfo {
	out := make([]provenance.ParamInfo, len(specs))
	for i, s := range specs {
		out[i] = provenance.ParamInfo{Name: s.Name, Units: s.Units, Default: s.Default, Min: s.Min, Max: s.Max}
	}
	return out
}

// LoadDescriptor applies the parameter settings stored for descriptor,
// from the remote service when fromServer is set. Warnings are also sent to
// the notifier.
func (p *Processor) LoadDescriptor(ctx context.Context, descriptor string, fromServer bool) analysis.Warning {
	if p.store == nil {
		return analysis.DataFileUnavailable
	}
	values, w := p.store.Lookup(ctx, descriptor, fromServer)
	if w != analysis.NoWarning {
		p.notifier.Notify(w)
		return w
	}
	n := min(len(values), p.params.Len())
	for i := range n {
		p.params.At(i).SetScaled(values[i])
	}
	slog.Info("descriptor loaded", "descriptor", descriptor, "from_server", fromServer, "parameters", n)
	return analysis.NoWarning
}
