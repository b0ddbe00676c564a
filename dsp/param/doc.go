// Package param implements host-automatable parameters whose values move
// toward new targets in equal steps, one step per control period.
//
// Parameter targets may be written from any goroutine. Everything else that
// mutates smoothing state (ApplyPending, AdvanceOneStep, SnapAll) belongs to
// the real-time goroutine and never allocates or blocks.
package param
