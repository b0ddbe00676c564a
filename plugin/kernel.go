package plugin

import (
	"github.com/cwbudde/algo-safe/dsp/control"
	"github.com/cwbudde/algo-safe/dsp/core"
	"github.com/cwbudde/algo-safe/dsp/param"
)

// Kernel is the DSP transfer function rendered once per control sub-block.
type Kernel interface {
	control.Renderer

	// Parameters lists the parameters the processor registers for the
	// kernel, in index order.
	Parameters() []param.Spec
	// Prepare allocates state for new processing settings. params holds the
	// registered parameters. Not called on the real-time goroutine.
	Prepare(cfg core.ProcessorConfig, params *param.Set) error
	// Update recalculates coefficients after parameter index moved. Called
	// on the real-time goroutine; must not allocate or block.
	Update(index int)
}
