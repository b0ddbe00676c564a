// Package plugin glues the control-rate signal path to the capture and
// analysis pipeline.
//
// A [Processor] owns a parameter set, a control-rate scheduler, a DSP
// [Kernel] and an analysis.Coordinator. The host calls ProcessBlock from its
// audio goroutine; everything else (parameter changes, recording requests,
// descriptor loading, the integrity timer started by Run) runs elsewhere.
//
// Per host block the processor:
//
//  1. moves an armed recording to capturing,
//  2. taps the unprocessed input,
//  3. applies pending parameter requests,
//  4. renders through the scheduler in control-rate sub-blocks,
//  5. taps the processed output.
package plugin
