// Package analysis captures a window of audio before and after processing
// and turns it into a semantic annotation on a background goroutine.
//
// A Coordinator moves through
//
//	Idle -> Armed -> Capturing -> Ready -> Running -> Idle
//
// Armed and Capturing may also fall back to Idle when the integrity check
// aborts a recording. The real-time goroutine only performs the
// Armed->Capturing and Capturing->Ready transitions, with atomic
// compare-and-swap, and never blocks. Capture completion is handed to a
// dispatcher goroutine through a single-slot channel; the dispatcher starts
// at most one analysis worker at a time, and every worker holds an injected
// exclusion Lock for its whole run.
package analysis
