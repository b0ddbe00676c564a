package buffer

// Buffer holds a fixed number of equally sized channels.
// Channels() exposes the storage directly; mutations are visible both ways.
type Buffer struct {
	channels [][]float64
	length   int
}

// New returns a zero-filled Buffer with numChannels channels of length
// samples each. Negative arguments are treated as zero.
func New(numChannels, length int) *Buffer {
	b := &Buffer{}
	b.Resize(numChannels, length)
	return b
}

// FromChannels wraps existing channel slices without copying. The buffer
// length is the length of the shortest channel.
func FromChannels(channels [][]float64) *Buffer {
	length := 0
	for i, ch := range channels {
		if i == 0 || len(ch) < length {
			length = len(ch)
		}
	}
	return &Buffer{channels: channels, length: length}
}

// Channels returns the channel slices.
func (b *Buffer) Channels() [][]float64 {
	return b.channels
}

// Channel returns channel i.
func (b *Buffer) Channel(i int) []float64 {
	return b.channels[i]
}

// NumChannels returns the number of channels.
func (b *Buffer) NumChannels() int {
	return len(b.channels)
}

// Len returns the number of samples per channel.
func (b *Buffer) Len() int {
	return b.length
}

// Resize sets the channel count and per-channel length, reusing existing
// storage when it is large enough. Retained samples are kept and newly
// exposed samples are zeroed.
func (b *Buffer) Resize(numChannels, length int) {
	if numChannels < 0 {
		numChannels = 0
	}
	if length < 0 {
		length = 0
	}

	if numChannels <= cap(b.channels) {
		b.channels = b.channels[:numChannels]
	} else {
		grown := make([][]float64, numChannels)
		copy(grown, b.channels)
		b.channels = grown
	}

	for i, ch := range b.channels {
		oldLen := len(ch)
		if length <= cap(ch) {
			ch = ch[:length]
		} else {
			s := make([]float64, length)
			copy(s, ch)
			ch = s
		}
		for j := min(oldLen, length); j < length; j++ {
			ch[j] = 0
		}
		b.channels[i] = ch
	}

	b.length = length
}

// Zero sets all samples to 0.
func (b *Buffer) Zero() {
	for _, ch := range b.channels {
		clear(ch)
	}
}

// ZeroRange sets samples in [start, end) of every channel to 0.
// Indices are clamped to valid bounds.
func (b *Buffer) ZeroRange(start, end int) {
	start = max(start, 0)
	end = min(end, b.length)
	if start >= end {
		return
	}
	for _, ch := range b.channels {
		clear(ch[start:end])
	}
}

// WriteAt copies n samples from each src channel into the matching channel
// starting at offset. Copying stops at the end of the buffer and at the end
// of src; the number of samples written per channel is returned. Channels
// without a matching src channel are left untouched.
func (b *Buffer) WriteAt(offset int, src [][]float64, n int) int {
	if offset < 0 || offset >= b.length || n <= 0 {
		return 0
	}
	n = min(n, b.length-offset)

	written := 0
	for i := range min(len(src), len(b.channels)) {
		c := copy(b.channels[i][offset:offset+n], src[i])
		written = max(written, c)
	}
	return written
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	c := New(len(b.channels), b.length)
	for i, ch := range b.channels {
		copy(c.channels[i], ch[:b.length])
	}
	return c
}

// Views fills dst with the [start, end) window of every src channel and
// returns it. dst is re-sliced, not reallocated, when it has enough capacity,
// so callers that size dst once can take views on the real-time path.
func Views(dst, src [][]float64, start, end int) [][]float64 {
	if cap(dst) < len(src) {
		dst = make([][]float64, len(src))
	}
	dst = dst[:len(src)]
	for i, ch := range src {
		s := min(max(start, 0), len(ch))
		e := min(max(end, s), len(ch))
		dst[i] = ch[s:e]
	}
	return dst
}
