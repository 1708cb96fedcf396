//go:build linux || darwin || freebsd || netbsd || openbsd

package fileutil

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func mapInput(f *os.File, size int) (*Mapping, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}

	return &Mapping{data: data, mapped: true}, nil
}

func mapOutput(f *os.File, size int) (*Mapping, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}

	return &Mapping{data: data, writable: true, mapped: true}, nil
}

// Close flushes a writable mapping to its file and unmaps it.
// Calling Close more than once is a no-op.
func (m *Mapping) Close() error {
	if !m.mapped {
		m.data = nil

		return nil
	}

	var errs []error

	if m.writable {
		if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
			errs = append(errs, fmt.Errorf("msync: %w", err))
		}
	}

	if err := unix.Munmap(m.data); err != nil {
		errs = append(errs, fmt.Errorf("munmap: %w", err))
	}

	m.data = nil
	m.mapped = false

	return errors.Join(errs...)
}
