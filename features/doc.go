// Package features extracts frame-based audio descriptors from captured
// multichannel audio.
//
// Audio is cut into frames of FrameSize samples every StepSize samples. Each
// frame yields one value per descriptor and channel. Temporal descriptors are
// computed on the raw frame, spectral descriptors on the magnitude spectrum of
// the windowed frame.
package features
