package fileutil

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// ErrTooLarge is returned for files whose size does not fit in memory addressing.
var ErrTooLarge = errors.New("file too large to map")

// Mapping is a byte buffer backed by a file.
// Input mappings are read-only; output mappings are flushed to their file on Close.
type Mapping struct {
	data []byte
	// file is only read by the non-unix build, which writes data back to it on Close.
	file     *os.File
	writable bool
	mapped   bool
}

// Bytes returns the mapped contents.
func (m *Mapping) Bytes() []byte {
	return m.data
}

// Len returns the size of the mapping in bytes.
func (m *Mapping) Len() int {
	return len(m.data)
}

// MapInput maps the file at path for reading.
func MapInput(path string) (*Mapping, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}

	size, err := checkSize(info.Size())
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}

	if size == 0 {
		return &Mapping{}, nil
	}

	m, err := mapInput(f, size)
	if err != nil {
		return nil, fmt.Errorf("mapping %q: %w", path, err)
	}

	return m, nil
}

// MapOutput resizes f to size bytes and maps it for writing.
// The caller keeps ownership of f and must Close the mapping before closing f.
func MapOutput(f *os.File, size int) (*Mapping, error) {
	if err := f.Truncate(int64(size)); err != nil {
		return nil, fmt.Errorf("resizing %q: %w", f.Name(), err)
	}

	if size == 0 {
		return &Mapping{writable: true}, nil
	}

	m, err := mapOutput(f, size)
	if err != nil {
		return nil, fmt.Errorf("mapping %q: %w", f.Name(), err)
	}

	return m, nil
}

func checkSize(size int64) (int, error) {
	if size < 0 || uint64(size) > math.MaxInt {
		return 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}

	return int(size), nil
}
