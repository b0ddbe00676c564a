package config

import (
	"time"

	"github.com/cwbudde/algo-safe/dsp/core"
	"github.com/cwbudde/algo-safe/dsp/window"
	"github.com/cwbudde/algo-safe/features"
	"github.com/cwbudde/algo-safe/plugin/analysis"
	"github.com/cwbudde/algo-safe/plugin/provenance"
)

// CaptureDuration returns the configured recording length.
func (c *Config) CaptureDuration() time.Duration {
	return time.Duration(c.Analysis.CaptureMS) * time.Millisecond
}

// ProcessorOptions returns the stream settings for sampleRate, or for
// audio.sample_rate when it is set.
func (c *Config) ProcessorOptions(sampleRate float64) []core.ProcessorOption {
	if c.Audio.SampleRate > 0 {
		sampleRate = c.Audio.SampleRate
	}
	return []core.ProcessorOption{
		core.WithSampleRate(sampleRate),
		core.WithBlockSize(c.Audio.BlockSize),
		core.WithControlRate(c.Audio.ControlRateHz),
	}
}

// ExtractorFactory returns a factory for extractors with the configured
// frame, step and window.
func (c *Config) ExtractorFactory() analysis.ExtractorFactory {
	a := c.Analysis
	return func(sampleRate float64) (analysis.FeatureExtractor, error) {
		w, err := window.ParseType(a.Window)
		if err != nil {
			return nil, err
		}
		return features.NewExtractor(sampleRate,
			features.WithFrameSize(a.FrameSize),
			features.WithStepSize(a.StepSize),
			features.WithWindow(w),
		)
	}
}

// AnalysisOptions returns the coordinator options. lockPath is used when
// storage.lock is "file".
func (c *Config) AnalysisOptions(lockPath string) []analysis.Option {
	var lock analysis.Lock = analysis.DefaultLocks.Lock("analysis")
	if c.Storage.Lock == LockFile {
		lock = analysis.NewFileLock(lockPath)
	}
	return []analysis.Option{
		analysis.WithAnalysisTime(c.CaptureDuration()),
		analysis.WithFrameSize(c.Analysis.FrameSize),
		analysis.WithExtractorFactory(c.ExtractorFactory()),
		analysis.WithLock(lock),
	}
}

// Info returns the plugin identity written into records.
func (c *Config) Info() provenance.Info {
	return provenance.Info{
		Name:    c.Plugin.Name,
		Code:    c.Plugin.Code,
		Format:  c.Plugin.Format,
		Version: c.Plugin.Version,
	}
}

// RemoteConfig returns the aggregation service settings.
func (c *Config) RemoteConfig() provenance.RemoteConfig {
	return provenance.RemoteConfig{
		UploadURL: c.Remote.UploadURL,
		LookupURL: c.Remote.LookupURL,
		Timeout:   c.Remote.Timeout,
	}
}
