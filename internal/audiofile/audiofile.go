// Package audiofile decodes WAV, AIFF, MP3 and Ogg Vorbis files into
// planar float64 channels and writes 16-bit WAV files.
package audiofile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned when the container cannot be identified.
var ErrUnknownFormat = errors.New("audiofile: unknown format")

// ErrUnsupportedEncoding is returned for containers whose sample encoding
// cannot be decoded.
var ErrUnsupportedEncoding = errors.New("audiofile: unsupported encoding")

// Format identifies a container format.
type Format int

const (
	FormatUnknown Format = iota
	FormatWAV
	FormatAIFF
	FormatMP3
	FormatOgg
)

var formatNames = map[Format]string{
	FormatUnknown: "unknown",
	FormatWAV:     "wav",
	FormatAIFF:    "aiff",
	FormatMP3:     "mp3",
	FormatOgg:     "ogg",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Audio is decoded audio with one slice per channel.
type Audio struct {
	SampleRate int
	Channels   [][]float64
}

// Len returns the number of samples per channel.
func (a *Audio) Len() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Duration returns the length in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(a.Len()) / float64(a.SampleRate)
}

// FormatFromPath guesses the format from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV
	case ".aif", ".aiff":
		return FormatAIFF
	case ".mp3":
		return FormatMP3
	case ".ogg", ".oga":
		return FormatOgg
	}
	return FormatUnknown
}

// Sniff identifies the format from the first bytes of a file.
func Sniff(header []byte) Format {
	switch {
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return FormatWAV
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("FORM")) &&
		(bytes.Equal(header[8:12], []byte("AIFF")) || bytes.Equal(header[8:12], []byte("AIFC"))):
		return FormatAIFF
	case len(header) >= 4 && bytes.Equal(header[:4], []byte("OggS")):
		return FormatOgg
	case len(header) >= 3 && bytes.Equal(header[:3], []byte("ID3")):
		return FormatMP3
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		return FormatMP3
	}
	return FormatUnknown
}

// Open decodes the file at path. The content decides the format; the
// extension is used when the header is not recognised.
func Open(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: open %q: %w", path, err)
	}
	defer f.Close()

	a, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("audiofile: decode %q: %w", path, err)
	}
	return a, nil
}

// Decode reads a whole file from r. The header is sniffed first; hint is
// used when sniffing fails.
func Decode(r io.ReadSeeker, hint Format) (*Audio, error) {
	header := make([]byte, 12)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	format := Sniff(header[:n])
	if format == FormatUnknown {
		format = hint
	}

	var a *Audio
	switch format {
	case FormatWAV:
		a, err = decodeWAV(r)
	case FormatAIFF:
		a, err = decodeAIFF(r)
	case FormatMP3:
		a, err = decodeMP3(r)
	case FormatOgg:
		a, err = decodeOgg(r)
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", format, err)
	}
	if a.SampleRate <= 0 || len(a.Channels) == 0 {
		return nil, fmt.Errorf("%s: %w: %d Hz, %d channels", format, ErrUnsupportedEncoding, a.SampleRate, len(a.Channels))
	}
	return a, nil
}

func deinterleaveInts(data []int, numChannels int, scale float64) [][]float64 {
	frames := len(data) / numChannels
	out := make([][]float64, numChannels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}
	for i := range frames {
		for ch := range numChannels {
			out[ch][i] = float64(data[i*numChannels+ch]) * scale
		}
	}
	return out
}

func deinterleaveFloats(data []float32, numChannels int) [][]float64 {
	frames := len(data) / numChannels
	out := make([][]float64, numChannels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}
	for i := range frames {
		for ch := range numChannels {
			out[ch][i] = float64(data[i*numChannels+ch])
		}
	}
	return out
}

func fullScale(bitDepth int) (float64, error) {
	if bitDepth < 8 || bitDepth > 32 {
		return 0, fmt.Errorf("%w: %d-bit", ErrUnsupportedEncoding, bitDepth)
	}
	return 1 / float64(int64(1)<<(bitDepth-1)), nil
}

func createFile(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: create %q: %w", path, err)
	}
	return f, nil
}
