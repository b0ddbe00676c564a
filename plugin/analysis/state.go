package analysis

import "fmt"

// State is the capture and analysis phase.
type State int32

const (
	Idle State = iota
	Armed
	Capturing
	Ready
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Capturing:
		return "capturing"
	case Ready:
		return "ready"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}
