package provenance

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"time"
)

const (
	// ArchiveName is the file name of an uploaded record archive.
	ArchiveName = "SemanticData.zip"
	// ArchiveEntry is the name of the Turtle record inside the archive.
	ArchiveEntry = "Temp.ttl"
)

// Archive zips a Turtle record into a single-entry archive compressed at
// the best deflate level.
func Archive(record []byte, modified time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	hdr := &zip.FileHeader{Name: ArchiveEntry, Method: zip.Deflate, Modified: modified}
	fw, err := zw.CreateHeader(hdr)
	if err != nil {
		return nil, fmt.Errorf("provenance: create archive entry: %w", err)
	}
	if _, err := fw.Write(record); err != nil {
		return nil, fmt.Errorf("provenance: write archive entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("provenance: close archive: %w", err)
	}
	return buf.Bytes(), nil
}
