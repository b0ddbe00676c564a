// Package observe provides the observability primitives used outside the
// real-time path: OpenTelemetry metrics and tracing, and structured logging
// that carries trace identifiers.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) is backed by
// the global meter provider; tests should use [NewMetrics] with their own
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/cwbudde/algo-safe"

// Metrics holds all OpenTelemetry metric instruments. All fields are safe
// for concurrent use.
type Metrics struct {
	// AnalysisRuns counts finished analysis runs. Use with attribute:
	//   attribute.String("warning", ...)
	AnalysisRuns metric.Int64Counter

	// AnalysisDuration tracks the wall time of an analysis run, excluding
	// the wait for the exclusion lock.
	AnalysisDuration metric.Float64Histogram

	// AnalysisBusy counts analysis requests rejected because another run
	// was in progress.
	AnalysisBusy metric.Int64Counter

	// CapturesArmed counts successfully armed recordings.
	CapturesArmed metric.Int64Counter

	// CaptureAborts counts recordings discarded by the integrity check. Use
	// with attribute:
	//   attribute.String("reason", ...)
	CaptureAborts metric.Int64Counter

	// LockWait tracks how long a run waited for the exclusion lock.
	LockWait metric.Float64Histogram

	// ExportErrors counts exporter failures. Use with attribute:
	//   attribute.String("destination", "local"|"remote")
	ExportErrors metric.Int64Counter
}

// durationBuckets defines histogram bucket boundaries in seconds, sized for
// analyses of a few seconds of audio and uploads to a remote service.
var durationBuckets = []float64{
	0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider].
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AnalysisRuns, err = m.Int64Counter("safe.analysis.runs",
		metric.WithDescription("Total finished analysis runs by resulting warning."),
	); err != nil {
		return nil, err
	}
	if met.AnalysisDuration, err = m.Float64Histogram("safe.analysis.duration",
		metric.WithDescription("Duration of feature extraction and export."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AnalysisBusy, err = m.Int64Counter("safe.analysis.busy",
		metric.WithDescription("Analysis requests rejected while another run was active."),
	); err != nil {
		return nil, err
	}
	if met.CapturesArmed, err = m.Int64Counter("safe.capture.armed",
		metric.WithDescription("Recordings armed."),
	); err != nil {
		return nil, err
	}
	if met.CaptureAborts, err = m.Int64Counter("safe.capture.aborts",
		metric.WithDescription("Recordings discarded by the integrity check by reason."),
	); err != nil {
		return nil, err
	}
	if met.LockWait, err = m.Float64Histogram("safe.lock.wait",
		metric.WithDescription("Time spent waiting for the analysis exclusion lock."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ExportErrors, err = m.Int64Counter("safe.export.errors",
		metric.WithDescription("Exporter failures by destination."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Panics if instrument creation
// fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordRun records a finished analysis run.
func (m *Metrics) RecordRun(ctx context.Context, warning string, seconds float64) {
	m.AnalysisRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("warning", warning)))
	m.AnalysisDuration.Record(ctx, seconds)
}

// RecordAbort records a recording discarded for reason.
func (m *Metrics) RecordAbort(ctx context.Context, reason string) {
	m.CaptureAborts.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordExportError records a failed export to destination.
func (m *Metrics) RecordExportError(ctx context.Context, destination string) {
	m.ExportErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("destination", destination)))
}
