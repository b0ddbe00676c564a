package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-safe/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithControlRate(64),
	)

	fmt.Printf("sampleRate=%.0f controlPeriod=%d\n", cfg.SampleRate, cfg.ControlPeriod())

	// Output:
	// sampleRate=44100 controlPeriod=689
}

func ExampleFromNormalized() {
	fmt.Printf("%.1f\n", core.FromNormalized(0.5, -12, 12, 1))
	fmt.Printf("%.1f\n", core.FromNormalized(0.5, 0, 100, 0.5))

	// Output:
	// 0.0
	// 25.0
}
