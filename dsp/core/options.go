package core

// ProcessorConfig defines common processing settings shared by the
// real-time path and the capture pipeline.
type ProcessorConfig struct {
	SampleRate float64
	// BlockSize is an advisory hint; hosts may deliver any block length.
	BlockSize   int
	ControlRate float64
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultControlRate is the parameter update rate in Hz.
const DefaultControlRate = 64

// DefaultProcessorConfig returns sensible defaults for streaming use.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:  44100,
		BlockSize:   512,
		ControlRate: DefaultControlRate,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the expected block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithControlRate sets how often per second smoothed parameters advance.
func WithControlRate(controlRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if controlRate > 0 {
			cfg.ControlRate = controlRate
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// ControlPeriod returns the number of samples between two parameter
// advances: int(SampleRate / ControlRate), never less than 1.
func (c ProcessorConfig) ControlPeriod() int {
	return ControlPeriod(c.SampleRate, c.ControlRate)
}

// ControlPeriod returns int(sampleRate / controlRate), never less than 1.
func ControlPeriod(sampleRate, controlRate float64) int {
	if sampleRate <= 0 || controlRate <= 0 {
		return 1
	}
	n := int(sampleRate / controlRate)
	if n < 1 {
		return 1
	}
	return n
}

// ControlPeriodSeconds returns the duration of one control period.
func (c ProcessorConfig) ControlPeriodSeconds() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(c.ControlPeriod()) / c.SampleRate
}
