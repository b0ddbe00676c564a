package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/cwbudde/algo-safe/internal/observe"
)

// telemetry collects metrics and spans in memory for the command summary.
type telemetry struct {
	metrics *observe.Metrics
	reader  *sdkmetric.ManualReader
	spans   *tracetest.SpanRecorder
	tracer  *sdktrace.TracerProvider
}

func newTelemetry(withMetrics, withTrace bool) (*telemetry, error) {
	t := &telemetry{}
	if withMetrics {
		t.reader = sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(t.reader))
		m, err := observe.NewMetrics(mp)
		if err != nil {
			return nil, fmt.Errorf("create metrics: %w", err)
		}
		t.metrics = m
	} else {
		t.metrics = observe.DefaultMetrics()
	}
	if withTrace {
		t.spans = tracetest.NewSpanRecorder()
		t.tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(t.spans))
		otel.SetTracerProvider(t.tracer)
	}
	return t, nil
}

func (t *telemetry) report(ctx context.Context, w io.Writer) error {
	if t.reader != nil {
		var rm metricdata.ResourceMetrics
		if err := t.reader.Collect(ctx, &rm); err != nil {
			return fmt.Errorf("collect metrics: %w", err)
		}
		printTitle(w, "Metrics")
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				printKV(w, m.Name, summarize(m.Data))
			}
		}
	}
	if t.tracer != nil {
		if err := t.tracer.ForceFlush(ctx); err != nil {
			return fmt.Errorf("flush spans: %w", err)
		}
		printTitle(w, "Spans")
		for _, s := range t.spans.Ended() {
			printKV(w, s.Name(), s.EndTime().Sub(s.StartTime()).Round(time.Microsecond))
		}
		if err := t.tracer.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown tracer: %w", err)
		}
	}
	return nil
}

func summarize(data metricdata.Aggregation) string {
	switch d := data.(type) {
	case metricdata.Sum[int64]:
		var total int64
		for _, dp := range d.DataPoints {
			total += dp.Value
		}
		return fmt.Sprint(total)
	case metricdata.Histogram[float64]:
		var count uint64
		var sum float64
		for _, dp := range d.DataPoints {
			count += dp.Count
			sum += dp.Sum
		}
		if count == 0 {
			return "0"
		}
		return fmt.Sprintf("n=%d mean=%.4fs", count, sum/float64(count))
	default:
		return fmt.Sprintf("%T", data)
	}
}
