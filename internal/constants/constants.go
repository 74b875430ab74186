// Package constants holds the tuning constants shared by every internal
// package: buffer sizes, table sizes, and the defaults a Server falls
// back to when its Params leave a field at its zero value.
package constants

import "time"

// Per-connection buffer sizes. Fixed and statically sized: no allocation
// on the read/parse/write hot path.
const (
	// ReadBufferSize is the capacity of a connection's read buffer.
	ReadBufferSize = 2048

	// WriteBufferSize is the capacity of a connection's write buffer
	// (headers and inline error bodies only; file bodies are mmap'd,
	// not copied into this buffer).
	WriteBufferSize = 1024

	// MaxFilenameLen bounds the resolved absolute path buffer.
	MaxFilenameLen = 200
)

// Table and event-batch sizing.
const (
	// MaxFD bounds the connection slot table: the largest socket
	// descriptor the reactor will track.
	MaxFD = 65536

	// MaxEvents is the largest batch of readiness events requested
	// from a single poller Wait call.
	MaxEvents = 10000

	// DefaultWorkerCount is the default fixed worker pool size.
	DefaultWorkerCount = 4

	// ListenBacklog is the backlog passed to listen(2).
	ListenBacklog = 5
)

// ShutdownPollInterval bounds how long the reactor blocks in a single
// poller Wait call, so it can notice context cancellation promptly.
const ShutdownPollInterval = 200 * time.Millisecond
