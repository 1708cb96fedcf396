//go:build linux || darwin || freebsd || netbsd || openbsd

package fileutil_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/idelchi/xtsenc/internal/fileutil"
)

// An mmap-backed output outlives its file descriptor.
func TestMapOutputWithoutFile(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, 5000} {
		path := filepath.Join(t.TempDir(), "output")

		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}

		m, err := fileutil.MapOutput(f, size)
		if err != nil {
			t.Fatalf("MapOutput(%d) error = %v", size, err)
		}

		want := bytes.Repeat([]byte{0x5a}, size)
		copy(m.Bytes(), want)

		if err := f.Close(); err != nil {
			t.Fatal(err)
		}

		if err := m.Close(); err != nil {
			t.Fatalf("size=%d: Close() after closing the file: %v", size, err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}

		if !bytes.Equal(got, want) {
			t.Errorf("size=%d: file content differs from what was written to the mapping", size)
		}
	}
}
