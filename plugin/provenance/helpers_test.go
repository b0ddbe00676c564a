package provenance

import (
	"time"

	"github.com/cwbudde/algo-safe/features"
	"github.com/cwbudde/algo-safe/plugin/analysis"
)

var testInfo = Info{Name: "Tremolo", Code: "Trem", Format: "VST", Version: "1.0.0"}

func testFeatures(scale float64) features.Set {
	return features.Set{
		SampleRate:  44100,
		FrameSize:   4096,
		StepSize:    4096,
		Descriptors: []features.Descriptor{features.RMS, features.SpectralCentroid},
		Channels: []features.Channel{{
			Frames: 2,
			Values: map[features.Descriptor][]float64{
				features.RMS:              {0.1 * scale, 0.3 * scale},
				features.SpectralCentroid: {1000 * scale, 1000 * scale},
			},
		}},
	}
}

func testAnnotation(descriptor string, params ...float64) analysis.Annotation {
	return analysis.Annotation{
		Descriptor: descriptor,
		Terms:      analysis.SplitDescriptor(descriptor),
		Metadata: analysis.Metadata{
			Genre:      "jazz",
			Instrument: "guitar",
			Location:   "GB",
			Experience: "5",
			Age:        "30",
			Language:   "en",
		},
		Parameters:  params,
		SampleRate:  44100,
		NumInputs:   1,
		NumOutputs:  1,
		Samples:     220500,
		Unprocessed: testFeatures(1),
		Processed:   testFeatures(2),
		Created:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}
