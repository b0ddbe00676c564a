// Package buffer provides a multichannel float64 buffer that is allocated once
// and then written without further allocation, plus helpers for building
// per-channel views into host-owned audio.
//
// Processing code accepts raw [][]float64 channel slices; Buffer owns storage
// for code that has to keep audio around, such as capture taps.
package buffer
