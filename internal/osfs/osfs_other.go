//go:build !linux

package osfs

import (
	"io"
	"os"

	"github.com/ehrlich-b/go-staticd/internal/interfaces"
)

// Open falls back to a plain read on platforms without the mmap
// syscall wired up. It provides the same interfaces.MappedFile
// contract so the rest of the pipeline is agnostic to how the bytes
// were obtained.
func (FS) Open(path string) (interfaces.MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &mapping{data: data}, nil
}

type mapping struct {
	data []byte
}

func (m *mapping) Data() []byte { return m.data }
func (m *mapping) Close() error { m.data = nil; return nil }
