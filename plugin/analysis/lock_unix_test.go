//go:build unix

package analysis

import (
	"context"
	"path/filepath"
	"testing"
)

func TestFileLockReportsOpenFailure(t *testing.T) {
	l := NewFileLock(filepath.Join(t.TempDir(), "missing", "data.lock"))
	if err := l.Lock(context.Background()); err == nil {
		l.Unlock()
		t.Fatal("Lock in missing directory succeeded")
	}
}
