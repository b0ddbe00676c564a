package plugin

import (
	"time"

	"github.com/cwbudde/algo-safe/dsp/control"
	"github.com/cwbudde/algo-safe/dsp/core"
	"github.com/cwbudde/algo-safe/dsp/effects"
	"github.com/cwbudde/algo-safe/dsp/param"
)

// Tremolo parameter indexes.
const (
	TremoloRate = iota
	TremoloDepth
	TremoloGain
)

// TremoloKernel is a demonstration Kernel: amplitude modulation whose rate,
// depth and output gain are smoothed parameters.
type TremoloKernel struct {
	fx     *effects.Tremolo
	params *param.Set
}

// NewTremoloKernel returns an unprepared kernel.
func NewTremoloKernel() *TremoloKernel { return &TremoloKernel{} }

// Parameters implements Kernel.
func (k *TremoloKernel) Parameters() []param.Spec {
	return []param.Spec{
		{Name: "Rate", Units: "Hz", Default: 4, Min: 0.1, Max: 20, Skew: 0.5, Smoothing: 100 * time.Millisecond},
		{Name: "Depth", Units: "%", Default: 60, Min: 0, Max: 100, Smoothing: 50 * time.Millisecond},
		{Name: "Gain", Units: "dB", Default: 0, Min: -24, Max: 12, DB: true, Smoothing: 50 * time.Millisecond},
	}
}

// Prepare implements Kernel.
func (k *TremoloKernel) Prepare(cfg core.ProcessorConfig, params *param.Set) error {
	fx, err := effects.NewTremolo(cfg.SampleRate, effects.WithTremoloMaxBlock(max(cfg.BlockSize, 1)))
	if err != nil {
		return err
	}
	k.fx = fx
	k.params = params
	for i := range params.Len() {
		k.Update(i)
	}
	return nil
}

// Update implements Kernel.
func (k *TremoloKernel) Update(index int) {
	if k.fx == nil || index >= k.params.Len() {
		return
	}
	p := k.params.At(index)
	spec := p.Spec()
	switch index {
	case TremoloRate:
		_ = k.fx.SetRateHz(core.Clamp(p.Scaled(), spec.Min, spec.Max))
	case TremoloDepth:
		_ = k.fx.SetDepth(core.Clamp(p.Scaled()/100, 0, 1))
	case TremoloGain:
		_ = k.fx.SetGain(core.DBToGain(core.Clamp(p.Scaled(), spec.Min, spec.Max)))
	}
}

// Render implements control.Renderer. Channels without a matching input
// are left to the scheduler, which clears them.
func (k *TremoloKernel) Render(block control.Block, _ control.Events) {
	n := min(block.NumInputs, block.NumOutputs, len(block.Channels))
	k.fx.ProcessBlock(block.Channels[:n], block.Len())
}
