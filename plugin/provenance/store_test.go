package provenance

import (
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-safe/plugin/analysis"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(t.TempDir(), testInfo)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return s
}

func TestNewLocalStoreWritesEmptyDocument(t *testing.T) {
	s := newTestStore(t)
	if filepath.Base(s.Path()) != "TremoloData.xml" {
		t.Fatalf("Path() = %q, want TremoloData.xml", s.Path())
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var doc dataDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.XMLName.Local != "TremoloData" || len(doc.Entries) != 0 {
		t.Fatalf("document = %s with %d entries, want empty TremoloData", doc.XMLName.Local, len(doc.Entries))
	}
}

func TestNewLocalStoreRequiresName(t *testing.T) {
	if _, err := NewLocalStore(t.TempDir(), Info{}); err == nil {
		t.Fatal("NewLocalStore without name succeeded")
	}
}

func TestSaveAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if w := s.Save(ctx, testAnnotation("warm round", 0.3, 2)); w != analysis.NoWarning {
		t.Fatalf("Save = %s", w)
	}
	if w := s.Save(ctx, testAnnotation("bright", 0.9, 5)); w != analysis.NoWarning {
		t.Fatalf("Save = %s", w)
	}

	tests := []struct {
		descriptor string
		want       []float64
		warning    analysis.Warning
	}{
		{"round", []float64{0.3, 2}, analysis.NoWarning},
		{"bright, airy", []float64{0.9, 5}, analysis.NoWarning},
		{"warm", []float64{0.3, 2}, analysis.NoWarning},
		{"dark", nil, analysis.DescriptorNotInFile},
		{"  ", nil, analysis.DescriptorNotInFile},
	}
	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			got, w := s.Lookup(tt.descriptor)
			if w != tt.warning {
				t.Fatalf("Lookup(%q) warning = %s, want %s", tt.descriptor, w, tt.warning)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Lookup(%q) = %v, want %v", tt.descriptor, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Lookup(%q) = %v, want %v", tt.descriptor, got, tt.want)
				}
			}
		})
	}
}

func TestSavedEntryLayout(t *testing.T) {
	s := newTestStore(t)
	if w := s.Save(context.Background(), testAnnotation("warm round", 0.3, 2)); w != analysis.NoWarning {
		t.Fatalf("Save = %s", w)
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`Descriptor0="warm"`,
		`Descriptor1="round"`,
		`<PlugInConfiguration PluginCode="Trem" Inputs="1" Outputs="1" SampleRate="44100" AnalysisTime="5000">`,
		`<ParameterSettings Values="0.3, 2">`,
		`<UnprocessedAudioFeatures FrameSize="4096" StepSize="4096">`,
		`<Feature Name="rms" Mean="0.2"`,
		`Genre="jazz"`,
		`Created="2026-03-01T12:00:00Z"`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("data file missing %s:\n%s", want, text)
		}
	}
}

func TestDescriptorsAndSuggest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, d := range []string{"warm round", "bright", "warm; crisp"} {
		if w := s.Save(ctx, testAnnotation(d, 1)); w != analysis.NoWarning {
			t.Fatalf("Save(%q) = %s", d, w)
		}
	}

	got, err := s.Descriptors()
	if err != nil {
		t.Fatalf("Descriptors: %v", err)
	}
	want := []string{"bright", "crisp", "round", "warm"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Descriptors() = %v, want %v", got, want)
	}

	suggested, err := s.Suggest("wram", 2)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(suggested) != 2 || suggested[0] != "warm" {
		t.Fatalf("Suggest(wram, 2) = %v, want warm first", suggested)
	}
	if none, _ := s.Suggest("warm", 0); none != nil {
		t.Fatalf("Suggest(n=0) = %v, want nil", none)
	}
}

func TestUnreadableFileReportsDataFileUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		corrupt func(t *testing.T, path string)
	}{
		{"malformed", func(t *testing.T, path string) {
			if err := os.WriteFile(path, []byte("<TremoloData><Entry"), 0o644); err != nil {
				t.Fatal(err)
			}
		}},
		{"directory", func(t *testing.T, path string) {
			if err := os.Remove(path); err != nil {
				t.Fatal(err)
			}
			if err := os.Mkdir(path, 0o755); err != nil {
				t.Fatal(err)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			tt.corrupt(t, s.Path())

			if w := s.Save(context.Background(), testAnnotation("warm", 1)); w != analysis.DataFileUnavailable {
				t.Fatalf("Save = %s, want data_file_unavailable", w)
			}
			if _, w := s.Lookup("warm"); w != analysis.DataFileUnavailable {
				t.Fatalf("Lookup = %s, want data_file_unavailable", w)
			}
			if _, err := s.Descriptors(); err == nil {
				t.Fatal("Descriptors on broken file succeeded")
			}
		})
	}
}

func TestSaveRespectsCancellation(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if w := s.Save(ctx, testAnnotation("warm", 1)); w != analysis.DataFileUnavailable {
		t.Fatalf("Save(cancelled) = %s, want data_file_unavailable", w)
	}
}

func TestParseValues(t *testing.T) {
	got, err := ParseValues(" 0.5, 1e3,, -2 ")
	if err != nil {
		t.Fatalf("ParseValues: %v", err)
	}
	if len(got) != 3 || got[0] != 0.5 || got[1] != 1000 || got[2] != -2 {
		t.Fatalf("ParseValues = %v, want [0.5 1000 -2]", got)
	}
	if _, err := ParseValues("1, x"); err == nil {
		t.Fatal("ParseValues accepted a non-number")
	}
	if FormatValues([]float64{0.5, 1000, -2}) != "0.5, 1000, -2" {
		t.Fatalf("FormatValues = %q", FormatValues([]float64{0.5, 1000, -2}))
	}
}
