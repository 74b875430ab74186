// Package osfs is the production interfaces.FileSystem: real stat(2)
// and a real read-only, private mmap(2) of the whole file.
package osfs

import (
	"os"
)

// FS is the zero-value-usable, production filesystem.
type FS struct{}

// New returns a ready-to-use production filesystem.
func New() FS { return FS{} }

func (FS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}
