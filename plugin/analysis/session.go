package analysis

import (
	"strings"
	"time"

	"github.com/cwbudde/algo-safe/features"
)

// Metadata describes the person and material behind an annotation.
type Metadata struct {
	Genre      string
	Instrument string
	Location   string
	Experience string
	Age        string
	Language   string
}

// Session is the user request that arms a recording.
type Session struct {
	// Descriptor is free text; individual terms are separated by spaces,
	// commas or semicolons.
	Descriptor   string
	Metadata     Metadata
	SendToServer bool
}

// Job is the immutable input of one analysis run.
type Job struct {
	Session
	// Parameters are the parameter values at the time the session was armed.
	Parameters []float64
	SampleRate float64
	// Pre holds one slice per input channel, Post one per output channel.
	Pre  [][]float64
	Post [][]float64
}

// Annotation is the record handed to an Exporter.
type Annotation struct {
	Descriptor   string
	Terms        []string
	Metadata     Metadata
	SendToServer bool
	Parameters   []float64
	SampleRate   float64
	NumInputs    int
	NumOutputs   int
	Samples      int
	Unprocessed  features.Set
	Processed    features.Set
	Created      time.Time
}

// Outcome reports how an analysis run finished.
type Outcome struct {
	Warning    Warning
	Annotation *Annotation
	Err        error
	Duration   time.Duration
}

// SplitDescriptor splits descriptor text into its terms.
func SplitDescriptor(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == ';' || r == '\t' || r == '\n'
	})
}

func newAnnotation(job Job, pre, post features.Set, now time.Time) *Annotation {
	samples := 0
	if len(job.Post) > 0 {
		samples = len(job.Post[0])
	}
	return &Annotation{
		Descriptor:   job.Descriptor,
		Terms:        SplitDescriptor(job.Descriptor),
		Metadata:     job.Metadata,
		SendToServer: job.SendToServer,
		Parameters:   append([]float64(nil), job.Parameters...),
		SampleRate:   job.SampleRate,
		NumInputs:    len(job.Pre),
		NumOutputs:   len(job.Post),
		Samples:      samples,
		Unprocessed:  pre,
		Processed:    post,
		Created:      now,
	}
}
