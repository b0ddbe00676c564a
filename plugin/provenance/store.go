package provenance

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/antzucaro/matchr"
	"github.com/google/uuid"

	"github.com/cwbudde/algo-safe/plugin/analysis"
)

// LocalStore is the per-plugin XML data file <Name>Data.xml in a data
// directory. Methods are safe for concurrent use within one process;
// processes sharing the file must serialise through an analysis.FileLock.
type LocalStore struct {
	info Info
	path string

	mu sync.Mutex
}

// NewLocalStore creates dir if needed and returns the store for info. An
// empty data file is written when none exists.
func NewLocalStore(dir string, info Info) (*LocalStore, error) {
	if info.Name == "" {
		return nil, errors.New("provenance: plugin name is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("provenance: create data directory: %w", err)
	}
	s := &LocalStore{
		info: info,
		path: filepath.Join(dir, XMLName(info.Name)+"Data.xml"),
	}
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(s.emptyDocument()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Path returns the data file location.
func (s *LocalStore) Path() string { return s.path }

// LockPath returns the path of the lock file guarding the data file.
func (s *LocalStore) LockPath() string { return s.path + ".lock" }

// Save appends an entry for a. Any I/O failure is logged and reported as
// DataFileUnavailable.
func (s *LocalStore) Save(ctx context.Context, a analysis.Annotation) analysis.Warning {
	if err := ctx.Err(); err != nil {
		slog.Warn("local export cancelled", "err", err)
		return analysis.DataFileUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		slog.Error("read data file", "path", s.path, "err", err)
		return analysis.DataFileUnavailable
	}
	doc.Entries = append(doc.Entries, newDataEntry(uuid.NewString(), s.info, a))
	if err := s.write(doc); err != nil {
		slog.Error("write data file", "path", s.path, "err", err)
		return analysis.DataFileUnavailable
	}
	slog.Info("annotation saved", "path", s.path, "descriptor", a.Descriptor, "entries", len(doc.Entries))
	return analysis.NoWarning
}

// Lookup returns the parameter values stored with the first entry carrying
// the first term of descriptor.
func (s *LocalStore) Lookup(descriptor string) ([]float64, analysis.Warning) {
	terms := analysis.SplitDescriptor(descriptor)
	if len(terms) == 0 {
		return nil, analysis.DescriptorNotInFile
	}

	s.mu.Lock()
	doc, err := s.read()
	s.mu.Unlock()
	if err != nil {
		slog.Error("read data file", "path", s.path, "err", err)
		return nil, analysis.DataFileUnavailable
	}

	for _, e := range doc.Entries {
		if !e.hasDescriptor(terms[0]) {
			continue
		}
		values, err := ParseValues(e.Parameters.Values)
		if err != nil {
			slog.Warn("skipping malformed entry", "id", e.ID, "err", err)
			continue
		}
		return values, analysis.NoWarning
	}
	return nil, analysis.DescriptorNotInFile
}

// Descriptors returns every descriptor term in the file, sorted and
// de-duplicated.
func (s *LocalStore) Descriptors() ([]string, error) {
	s.mu.Lock()
	doc, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range doc.Entries {
		out = append(out, e.terms()...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// Suggest returns up to n stored descriptors closest to term by
// Jaro-Winkler similarity, best first.
func (s *LocalStore) Suggest(term string, n int) ([]string, error) {
	all, err := s.Descriptors()
	if err != nil {
		return nil, err
	}
	if n <= 0 || len(all) == 0 {
		return nil, nil
	}

	type scored struct {
		term  string
		score float64
	}
	needle := strings.ToLower(term)
	ranked := make([]scored, len(all))
	for i, d := range all {
		ranked[i] = scored{term: d, score: matchr.JaroWinkler(needle, strings.ToLower(d), false)}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})

	out := make([]string, 0, min(n, len(ranked)))
	for _, r := range ranked[:min(n, len(ranked))] {
		out = append(out, r.term)
	}
	return out, nil
}

func (s *LocalStore) emptyDocument() dataDocument {
	return dataDocument{XMLName: xml.Name{Local: XMLName(s.info.Name + "Data")}}
}

func (s *LocalStore) read() (dataDocument, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.emptyDocument(), nil
	}
	if err != nil {
		return dataDocument{}, fmt.Errorf("provenance: read data file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return s.emptyDocument(), nil
	}
	var doc dataDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return dataDocument{}, fmt.Errorf("provenance: parse data file: %w", err)
	}
	return doc, nil
}

// write replaces the data file through a temporary file in the same
// directory.
func (s *LocalStore) write(doc dataDocument) error {
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("provenance: encode data file: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')
	return writeFileAtomic(s.path, data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("provenance: write %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("provenance: write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("provenance: write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("provenance: write %s: %w", filepath.Base(path), err)
	}
	return nil
}
