// Package interfaces provides internal interface definitions shared
// across the reactor, resolver and response pipeline. These are kept
// separate from the public package to avoid circular imports between
// the top-level staticd package and its internal/... callers.
package interfaces

import "os"

// FileSystem is the stat+open+mmap abstraction the resolver
// consumes. It is the sole seam between the server and the filesystem:
// production code backs it with real syscalls (internal/osfs), tests
// back it with an in-memory store (internal/fsmem).
type FileSystem interface {
	// Stat returns metadata for path, or an error satisfying
	// os.IsNotExist if no such entry exists.
	Stat(path string) (os.FileInfo, error)

	// Open maps the entire file at path read-only and private. The
	// underlying file descriptor, if any, is closed before Open
	// returns; the returned MappedFile owns the mapping until Close.
	Open(path string) (MappedFile, error)
}

// MappedFile is a read-only view of a file's full contents, backed by
// a memory map (or an in-memory slice in tests).
type MappedFile interface {
	// Data returns the mapped bytes. The slice is valid until Close.
	Data() []byte

	// Close releases the mapping. Safe to call exactly once; calling
	// it more than once is a caller bug, not a safety requirement the
	// implementation must guard.
	Close() error
}

// Logger interface for optional logging.
type Logger interface {
	Printf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// Observer interface for metrics collection.
// Implementations must be thread-safe: methods are called from worker
// goroutines and the reactor goroutine concurrently.
type Observer interface {
	ObserveRequest(verdict string, latencyNs uint64)
	ObserveBytesSent(n uint64)
	ObserveConnectionOpened()
	ObserveConnectionClosed()
}
