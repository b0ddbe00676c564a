package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/cwbudde/algo-safe/features"
	"github.com/cwbudde/algo-safe/internal/observe"
)

const (
	// DefaultAnalysisTime is the length of audio captured per recording.
	DefaultAnalysisTime = 5 * time.Second
	// DefaultShutdownGrace bounds how long Close waits for a running worker.
	DefaultShutdownGrace = 4 * time.Second

	defaultOutcomeBuffer = 8
)

// FeatureExtractor turns multichannel audio into descriptors. One extractor
// is used per goroutine.
type FeatureExtractor interface {
	Analyse(ctx context.Context, channels [][]float64) (features.Set, error)
}

// ExtractorFactory creates a FeatureExtractor for audio at sampleRate.
type ExtractorFactory func(sampleRate float64) (FeatureExtractor, error)

// Exporter persists or transmits an annotation and reports the outcome.
type Exporter interface {
	ExportLocal(ctx context.Context, a Annotation) Warning
	ExportRemote(ctx context.Context, a Annotation) Warning
}

// Transport reports whether the host is currently playing audio.
type Transport interface {
	IsPlaying() bool
}

// ParameterSource snapshots parameter values at arm time and detects later
// changes. Both methods must be safe for use off the real-time goroutine.
type ParameterSource interface {
	Snapshot(dst []float64) []float64
	Drifted(snapshot []float64) bool
}

// Option mutates coordinator construction parameters.
type Option func(*config) error

type config struct {
	analysisTime   time.Duration
	frameSize      int
	captureSamples int
	notifier       Notifier
	lock           Lock
	extractors     ExtractorFactory
	metrics        *observe.Metrics
	outcomeBuffer  int
}

func defaultConfig() config {
	return config{
		analysisTime:  DefaultAnalysisTime,
		frameSize:     features.DefaultFrameSize,
		outcomeBuffer: defaultOutcomeBuffer,
	}
}

// WithAnalysisTime sets how much audio a recording captures.
func WithAnalysisTime(d time.Duration) Option {
	return func(cfg *config) error {
		if d <= 0 {
			return fmt.Errorf("analysis time must be > 0: %s", d)
		}
		cfg.analysisTime = d
		return nil
	}
}

// WithFrameSize sets the analysis frame size. Capture lengths are rounded
// down to whole frames.
func WithFrameSize(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("analysis frame size must be > 0: %d", n)
		}
		cfg.frameSize = n
		return nil
	}
}

// WithCaptureSamples fixes the capture length in samples, overriding the
// analysis time.
func WithCaptureSamples(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("capture length must be > 0: %d", n)
		}
		cfg.captureSamples = n
		return nil
	}
}

// WithNotifier sets the receiver of warnings.
func WithNotifier(n Notifier) Option {
	return func(cfg *config) error {
		cfg.notifier = n
		return nil
	}
}

// WithLock sets the exclusion lock held by every analysis run.
func WithLock(l Lock) Option {
	return func(cfg *config) error {
		cfg.lock = l
		return nil
	}
}

// WithExtractorFactory replaces the default feature extractor.
func WithExtractorFactory(f ExtractorFactory) Option {
	return func(cfg *config) error {
		cfg.extractors = f
		return nil
	}
}

// WithMetrics sets the metric instruments.
func WithMetrics(m *observe.Metrics) Option {
	return func(cfg *config) error {
		cfg.metrics = m
		return nil
	}
}

// WithOutcomeBuffer sets the capacity of the Outcomes channel.
func WithOutcomeBuffer(n int) Option {
	return func(cfg *config) error {
		if n < 0 {
			return fmt.Errorf("outcome buffer must be >= 0: %d", n)
		}
		cfg.outcomeBuffer = n
		return nil
	}
}

// DefaultExtractorFactory returns extractors with the given frame size,
// stepping by whole frames.
func DefaultExtractorFactory(frameSize int) ExtractorFactory {
	return func(sampleRate float64) (FeatureExtractor, error) {
		return features.NewExtractor(sampleRate,
			features.WithFrameSize(frameSize),
			features.WithStepSize(frameSize),
		)
	}
}
