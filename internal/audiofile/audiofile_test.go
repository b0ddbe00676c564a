package audiofile

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/cwbudde/algo-safe/internal/testutil"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   Format
	}{
		{"wav", []byte("RIFF\x00\x00\x00\x00WAVE"), FormatWAV},
		{"aiff", []byte("FORM\x00\x00\x00\x00AIFF"), FormatAIFF},
		{"aifc", []byte("FORM\x00\x00\x00\x00AIFC"), FormatAIFF},
		{"ogg", []byte("OggS\x00\x02"), FormatOgg},
		{"mp3 id3", []byte("ID3\x04"), FormatMP3},
		{"mp3 sync", []byte{0xFF, 0xFB, 0x90}, FormatMP3},
		{"riff avi", []byte("RIFF\x00\x00\x00\x00AVI "), FormatUnknown},
		{"short", []byte("RI"), FormatUnknown},
		{"empty", nil, FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.header); got != tt.want {
				t.Fatalf("Sniff() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"take.wav":       FormatWAV,
		"TAKE.WAV":       FormatWAV,
		"loop.aiff":      FormatAIFF,
		"song.mp3":       FormatMP3,
		"pad.ogg":        FormatOgg,
		"notes.txt":      FormatUnknown,
		"no-extension":   FormatUnknown,
		"dir.wav/file.x": FormatUnknown,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.wav")
	left := testutil.DeterministicSine(440, 44100, 0.5, 1000)
	right := testutil.DeterministicSine(220, 44100, 0.25, 1000)
	if err := WriteWAVFile(path, 44100, [][]float64{left, right}); err != nil {
		t.Fatalf("WriteWAVFile: %v", err)
	}

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if a.SampleRate != 44100 || len(a.Channels) != 2 || a.Len() != 1000 {
		t.Fatalf("decoded %d Hz, %d channels, %d samples", a.SampleRate, len(a.Channels), a.Len())
	}
	testutil.RequireSliceNearlyEqual(t, a.Channels[0], left, 1.0/16384)
	testutil.RequireSliceNearlyEqual(t, a.Channels[1], right, 1.0/16384)
	if got, want := a.Duration(), 1000.0/44100; math.Abs(got-want) > 1e-12 {
		t.Fatalf("Duration() = %v, want %v", got, want)
	}
}

func TestWriteWAVClips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hot.wav")
	if err := WriteWAVFile(path, 8000, [][]float64{{2, -2, 0}}); err != nil {
		t.Fatalf("WriteWAVFile: %v", err)
	}
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, a.Channels[0], []float64{1, -1, 0}, 1.0/16384)
}

func TestWriteWAVValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := WriteWAVFile(path, 0, [][]float64{{0}}); err == nil {
		t.Fatal("WriteWAVFile accepted a zero sample rate")
	}
	if err := WriteWAVFile(path, 8000, nil); err == nil {
		t.Fatal("WriteWAVFile accepted no channels")
	}
	if err := WriteWAVFile(path, 8000, [][]float64{{0, 0}, {0}}); err == nil {
		t.Fatal("WriteWAVFile accepted ragged channels")
	}
}

func TestDecodeAIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.aiff")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc := aiff.NewEncoder(f, 22050, 16, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 22050},
		Data:           []int{0, 16384, -16384, 32767},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if a.SampleRate != 22050 || len(a.Channels) != 1 {
		t.Fatalf("decoded %d Hz, %d channels", a.SampleRate, len(a.Channels))
	}
	testutil.RequireSliceNearlyEqual(t, a.Channels[0], []float64{0, 0.5, -0.5, 32767.0 / 32768}, 1e-12)
}

func TestDecodeUnknownFormat(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("plain text, not audio")), FormatUnknown)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("Decode() = %v, want ErrUnknownFormat", err)
	}
}

func TestDecodeCorruptInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		hint Format
	}{
		{"ogg header only", []byte("OggS\x00\x02garbage"), FormatUnknown},
		{"mp3 by hint", []byte("definitely not mpeg audio"), FormatMP3},
		{"truncated wav", []byte("RIFF\x04\x00\x00\x00WAVE"), FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(bytes.NewReader(tt.data), tt.hint); err == nil {
				t.Fatal("Decode() succeeded on corrupt input")
			}
		})
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("Open() of a missing file succeeded")
	}
}
