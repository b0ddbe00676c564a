package audiofile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

const pcmFormat = 1

func decodeWAV(r io.ReadSeeker) (*Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid wav file", ErrUnsupportedEncoding)
	}
	if dec.WavAudioFormat != pcmFormat {
		return nil, fmt.Errorf("%w: wav format tag %d", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if dec.BitDepth == 8 {
		// 8-bit WAV is unsigned.
		for i := range buf.Data {
			buf.Data[i] -= 128
		}
	}
	return fromIntBuffer(buf, int(dec.BitDepth))
}

func decodeAIFF(r io.ReadSeeker) (*Audio, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid aiff file", ErrUnsupportedEncoding)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	return fromIntBuffer(buf, int(dec.BitDepth))
}

func fromIntBuffer(buf *goaudio.IntBuffer, bitDepth int) (*Audio, error) {
	if buf == nil || buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("%w: missing format", ErrUnsupportedEncoding)
	}
	scale, err := fullScale(bitDepth)
	if err != nil {
		return nil, err
	}
	return &Audio{
		SampleRate: buf.Format.SampleRate,
		Channels:   deinterleaveInts(buf.Data, buf.Format.NumChannels, scale),
	}, nil
}

// go-mp3 always produces 16-bit little-endian stereo.
func decodeMP3(r io.Reader) (*Audio, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}
	data := make([]int, len(raw)/2)
	for i := range data {
		data[i] = int(int16(binary.LittleEndian.Uint16(raw[2*i:])))
	}
	return &Audio{
		SampleRate: dec.SampleRate(),
		Channels:   deinterleaveInts(data, 2, 1.0/32768),
	}, nil
}

func decodeOgg(r io.Reader) (*Audio, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format.Channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedEncoding, format.Channels)
	}
	return &Audio{
		SampleRate: format.SampleRate,
		Channels:   deinterleaveFloats(data, format.Channels),
	}, nil
}

// WriteWAV writes channels as interleaved 16-bit PCM. Samples are clipped
// to [-1, 1].
func WriteWAV(w io.WriteSeeker, sampleRate int, channels [][]float64) error {
	if sampleRate <= 0 {
		return fmt.Errorf("audiofile: sample rate must be > 0: %d", sampleRate)
	}
	if len(channels) == 0 {
		return fmt.Errorf("audiofile: at least one channel is required")
	}
	frames := len(channels[0])
	for ch, c := range channels {
		if len(c) != frames {
			return fmt.Errorf("audiofile: channel %d has %d samples, want %d", ch, len(c), frames)
		}
	}

	data := make([]int, frames*len(channels))
	for i := range frames {
		for ch, c := range channels {
			v := math.Max(-1, math.Min(1, c[i]))
			data[i*len(channels)+ch] = int(math.Round(v * 32767))
		}
	}

	enc := wav.NewEncoder(w, sampleRate, 16, len(channels), pcmFormat)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: len(channels), SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("audiofile: write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("audiofile: close wav: %w", err)
	}
	return nil
}

// WriteWAVFile creates path and writes channels to it with [WriteWAV].
func WriteWAVFile(path string, sampleRate int, channels [][]float64) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("audiofile: close %q: %w", path, cerr)
		}
	}()
	return WriteWAV(f, sampleRate, channels)
}
