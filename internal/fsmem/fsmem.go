// Package fsmem provides an in-memory interfaces.FileSystem for tests
// and for exercising the reactor and resolver without real files or
// mmap. Whole files are read once and never partially overwritten,
// so one map behind one mutex is all the concurrency control needed.
package fsmem

import (
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/ehrlich-b/go-staticd/internal/interfaces"
)

type fileInfo struct {
	name  string
	size  int64
	mode  fs.FileMode
	isDir bool
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *fileInfo) ModTime() time.Time { return time.Time{} }
func (fi *fileInfo) IsDir() bool        { return fi.isDir }
func (fi *fileInfo) Sys() interface{}   { return nil }

type entry struct {
	data  []byte
	mode  fs.FileMode
	isDir bool
}

// FS is a named-file in-memory filesystem. The zero value is not
// usable; build one with New.
type FS struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// New returns an empty in-memory filesystem.
func New() *FS {
	return &FS{entries: make(map[string]*entry)}
}

// PutFile registers path with the given contents and mode (default
// 0o644 if mode is 0).
func (f *FS) PutFile(path string, data []byte, mode fs.FileMode) {
	if mode == 0 {
		mode = 0o644
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[path] = &entry{data: append([]byte(nil), data...), mode: mode}
}

// PutDir registers path as a directory.
func (f *FS) PutDir(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[path] = &entry{mode: 0o755 | fs.ModeDir, isDir: true}
}

// Stat implements interfaces.FileSystem.
func (f *FS) Stat(path string) (os.FileInfo, error) {
	f.mu.RLock()
	e, ok := f.entries[path]
	f.mu.RUnlock()
	if !ok {
		return nil, fs.ErrNotExist
	}
	return &fileInfo{name: path, size: int64(len(e.data)), mode: e.mode, isDir: e.isDir}, nil
}

// Open implements interfaces.FileSystem. It returns a MappedFile
// whose Data is a fresh copy of the stored bytes, mirroring a real
// mmap's isolation from later writes through the original descriptor.
func (f *FS) Open(path string) (interfaces.MappedFile, error) {
	f.mu.RLock()
	e, ok := f.entries[path]
	f.mu.RUnlock()
	if !ok || e.isDir {
		return nil, fs.ErrNotExist
	}
	return &mappedBytes{data: append([]byte(nil), e.data...)}, nil
}

type mappedBytes struct {
	data   []byte
	closed bool
}

func (m *mappedBytes) Data() []byte { return m.data }

func (m *mappedBytes) Close() error {
	m.closed = true
	m.data = nil
	return nil
}
