// Package spectrum computes one-sided magnitude and power spectra of
// windowed analysis frames.
//
// An Analyzer owns its FFT plan and scratch memory, so repeated calls on
// frames of the configured size do not allocate.
package spectrum
