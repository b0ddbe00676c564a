package plugin

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-safe/dsp/core"
	"github.com/cwbudde/algo-safe/plugin/analysis"
)

// DefaultIntegrityInterval is how often Run checks an active recording.
const DefaultIntegrityInterval = 50 * time.Millisecond

// Option mutates processor construction parameters.
type Option func(*config) error

type config struct {
	processor         []core.ProcessorOption
	analysis          []analysis.Option
	numInputs         int
	numOutputs        int
	notifier          analysis.Notifier
	integrityInterval time.Duration
}

func defaultConfig() config {
	return config{
		numInputs:         2,
		numOutputs:        2,
		integrityInterval: DefaultIntegrityInterval,
	}
}

// WithProcessorOptions sets sample rate, block size and control rate.
func WithProcessorOptions(opts ...core.ProcessorOption) Option {
	return func(cfg *config) error {
		cfg.processor = append(cfg.processor, opts...)
		return nil
	}
}

// WithAnalysisOptions passes options to the analysis coordinator.
func WithAnalysisOptions(opts ...analysis.Option) Option {
	return func(cfg *config) error {
		cfg.analysis = append(cfg.analysis, opts...)
		return nil
	}
}

// WithChannels sets the initial input and output channel counts.
func WithChannels(numInputs, numOutputs int) Option {
	return func(cfg *config) error {
		if numInputs < 0 || numOutputs < 0 || numInputs+numOutputs == 0 {
			return fmt.Errorf("plugin channels must be >= 0 and not both zero: %d/%d", numInputs, numOutputs)
		}
		cfg.numInputs = numInputs
		cfg.numOutputs = numOutputs
		return nil
	}
}

// WithNotifier sets the receiver of warnings from recording, analysis and
// descriptor loading.
func WithNotifier(n analysis.Notifier) Option {
	return func(cfg *config) error {
		cfg.notifier = n
		return nil
	}
}

// WithIntegrityInterval sets how often Run checks an active recording.
func WithIntegrityInterval(d time.Duration) Option {
	return func(cfg *config) error {
		if d <= 0 {
			return fmt.Errorf("plugin integrity interval must be > 0: %s", d)
		}
		cfg.integrityInterval = d
		return nil
	}
}
