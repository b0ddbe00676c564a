package features

import "math"

// Set holds the descriptors extracted from one multichannel signal.
type Set struct {
	SampleRate  float64
	FrameSize   int
	StepSize    int
	Descriptors []Descriptor
	Channels    []Channel
}

// Channel holds per-frame values for one channel.
type Channel struct {
	Frames int
	Values map[Descriptor][]float64
}

// Summary is the mean and population standard deviation of a descriptor
// over frames.
type Summary struct {
	Mean float64
	Std  float64
}

// Summary summarises descriptor d over all frames of the channel.
func (c Channel) Summary(d Descriptor) Summary {
	values := c.Values[d]
	if len(values) == 0 {
		return Summary{}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return Summary{Mean: mean, Std: math.Sqrt(sq / float64(len(values)))}
}

// Mean returns the mean of descriptor d over all frames and channels.
func (s Set) Mean(d Descriptor) float64 {
	var sum float64
	var n int
	for _, c := range s.Channels {
		for _, v := range c.Values[d] {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Empty reports whether the set holds no frames.
func (s Set) Empty() bool {
	for _, c := range s.Channels {
		if c.Frames > 0 {
			return false
		}
	}
	return true
}
