package analysis

import (
	"math"
	"time"

	"github.com/cwbudde/algo-safe/dsp/buffer"
)

// TargetSamples returns the capture length for an analysis window of d at
// sampleRate, rounded down to a whole number of frames of frameSize.
func TargetSamples(sampleRate float64, d time.Duration, frameSize int) int {
	if sampleRate <= 0 || d <= 0 {
		return 0
	}
	total := int(math.Floor(sampleRate * d.Seconds()))
	if frameSize <= 0 {
		return total
	}
	return total / frameSize * frameSize
}

// capture owns the pre- and post-processing buffers. Offsets are only
// touched on the real-time goroutine; buffers are resized in prepare and
// read by the dispatcher once the coordinator is Ready.
type capture struct {
	pre, post  *buffer.Buffer
	target     int
	preOffset  int
	postOffset int
}

func newCapture() *capture {
	return &capture{pre: buffer.New(0, 0), post: buffer.New(0, 0)}
}

func (c *capture) prepare(numInputs, numOutputs, target int) {
	c.pre.Resize(numInputs, target)
	c.post.Resize(numOutputs, target)
	c.target = target
	c.reset()
}

func (c *capture) reset() {
	c.preOffset = 0
	c.postOffset = 0
}

func (c *capture) preRemaining() int  { return c.target - c.preOffset }
func (c *capture) postRemaining() int { return c.target - c.postOffset }

func (c *capture) tapPre(channels [][]float64, n int) {
	k := min(c.preRemaining(), n)
	if k <= 0 {
		return
	}
	c.pre.WriteAt(c.preOffset, channels, k)
	c.preOffset += k
}

// tapPost reports whether the post buffer became full.
func (c *capture) tapPost(channels [][]float64, n int) bool {
	k := min(c.postRemaining(), n)
	if k <= 0 {
		return false
	}
	c.post.WriteAt(c.postOffset, channels, k)
	c.postOffset += k
	return c.postOffset == c.target
}
