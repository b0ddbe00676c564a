package plugin

import "sync/atomic"

// PlayHead is a Transport whose state the host sets.
type PlayHead struct {
	playing atomic.Bool
}

// SetPlaying records whether the host transport is running.
func (p *PlayHead) SetPlaying(playing bool) { p.playing.Store(playing) }

// IsPlaying reports the last state passed to SetPlaying.
func (p *PlayHead) IsPlaying() bool { return p.playing.Load() }
