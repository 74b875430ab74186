//go:build linux

package osfs

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/go-staticd/internal/interfaces"
)

// Open opens path read-only, maps its entire contents PROT_READ /
// MAP_PRIVATE, and closes the descriptor immediately; the mapping
// keeps the pages alive independent of the fd. Size-0 files skip the
// map entirely: mmap refuses a zero-length mapping, and an empty
// body never needs one.
func (FS) Open(path string) (interfaces.MappedFile, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		return &mapping{data: []byte{}}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	return &mapping{data: data}, nil
}

type mapping struct {
	data   []byte
	closed bool
}

func (m *mapping) Data() []byte { return m.data }

func (m *mapping) Close() error {
	if m.closed || len(m.data) == 0 {
		m.closed = true
		return nil
	}
	m.closed = true
	return unix.Munmap(m.data)
}
