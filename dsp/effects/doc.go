// Package effects provides non-I/O DSP effect kernels driven by smoothed
// plugin parameters.
//
// Effects in this package:
//   - Tremolo: Sine LFO amplitude modulation with depth and output gain.
//
// Effects are designed for real-time processing with zero-allocation
// hot paths and support both single-sample and buffer-based processing.
package effects
