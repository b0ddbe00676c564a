package control

import "github.com/cwbudde/algo-safe/dsp/buffer"

// Block is one buffer of audio processed in place. Channels holds
// max(inputs, outputs) channels of equal length; the first NumInputs carry
// input audio.
type Block struct {
	Channels   [][]float64
	NumInputs  int
	NumOutputs int
}

// NewBlock returns a Block over channels with numInputs input channels and
// numOutputs output channels.
func NewBlock(channels [][]float64, numInputs, numOutputs int) Block {
	return Block{Channels: channels, NumInputs: numInputs, NumOutputs: numOutputs}
}

// Len returns the number of samples per channel.
func (b Block) Len() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Slice returns the [start, end) window of b. The window's channel slices
// are written into views, which must have capacity for len(b.Channels)
// to avoid allocation.
func (b Block) Slice(views [][]float64, start, end int) Block {
	b.Channels = buffer.Views(views, b.Channels, start, end)
	return b
}

// Inputs returns the input channels.
func (b Block) Inputs() [][]float64 {
	return b.Channels[:min(b.NumInputs, len(b.Channels))]
}

// Outputs returns the output channels.
func (b Block) Outputs() [][]float64 {
	return b.Channels[:min(b.NumOutputs, len(b.Channels))]
}

// Event is a timestamped control message, such as a MIDI message, whose
// Offset is the sample position relative to the start of its block.
type Event struct {
	Offset int
	Data   [3]byte
}

// Events is a view onto time-ordered events with offsets rebased to the
// start of a sub-block.
type Events struct {
	list []Event
	base int
}

// EventsOf returns a view over list, which must be sorted by Offset.
func EventsOf(list []Event) Events {
	return Events{list: list}
}

// Len returns the number of events in the view.
func (e Events) Len() int { return len(e.list) }

// At returns event i with its offset relative to the view start.
func (e Events) At(i int) Event {
	ev := e.list[i]
	ev.Offset -= e.base
	return ev
}

// Slice returns the events whose offset falls in [start, end) of the current
// view, rebased so that start becomes offset zero.
func (e Events) Slice(start, end int) Events {
	lo := 0
	for lo < len(e.list) && e.list[lo].Offset-e.base < start {
		lo++
	}
	hi := lo
	for hi < len(e.list) && e.list[hi].Offset-e.base < end {
		hi++
	}
	return Events{list: e.list[lo:hi], base: e.base + start}
}
