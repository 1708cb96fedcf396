//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package fileutil

import (
	"fmt"
	"io"
	"os"
)

// Without mmap support the input is read into memory and the output buffer is written
// back to its file on Close.

func mapInput(f *os.File, size int) (*Mapping, error) {
	data := make([]byte, size)

	if _, err := io.ReadFull(f, data); err != nil {
		return nil, fmt.Errorf("reading: %w", err)
	}

	return &Mapping{data: data}, nil
}

func mapOutput(f *os.File, size int) (*Mapping, error) {
	return &Mapping{data: make([]byte, size), file: f, writable: true, mapped: true}, nil
}

// Close writes a writable buffer to its file.
// Calling Close more than once is a no-op.
func (m *Mapping) Close() error {
	defer func() {
		m.data = nil
		m.mapped = false
	}()

	if !m.mapped || !m.writable {
		return nil
	}

	if _, err := m.file.WriteAt(m.data, 0); err != nil {
		return fmt.Errorf("writing %q: %w", m.file.Name(), err)
	}

	return nil
}
