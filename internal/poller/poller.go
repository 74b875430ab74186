// Package poller provides the readiness multiplexer: register
// sockets, block for a batch of readiness events, deliver them.
// Connection descriptors are edge-triggered and one-shot; the
// listening descriptor is level-triggered and persistent.
package poller

import (
	"errors"
	"time"
)

// ErrUnsupported is returned by New on platforms without a real
// epoll-backed implementation.
var ErrUnsupported = errors.New("poller: epoll not available on this platform")

// Event describes one readiness notification for a descriptor.
type Event struct {
	FD       int
	Readable bool
	Writable bool
	// Closed is set for peer-shutdown, hangup or error conditions
	// (EPOLLRDHUP | EPOLLHUP | EPOLLERR in the epoll backend).
	Closed bool
}

// Poller is the descriptor-level multiplexer the reactor drives.
type Poller interface {
	// AddListener registers fd for read-readiness, level-triggered,
	// without one-shot. Used only for the listening socket.
	AddListener(fd int) error

	// AddConn registers fd for read-readiness, edge-triggered and
	// one-shot, plus peer-shutdown/error conditions. Used for every
	// accepted connection.
	AddConn(fd int) error

	// ModifyRead re-arms fd for read-readiness (edge-triggered,
	// one-shot). Called after a worker finishes with a connection
	// that needs more input.
	ModifyRead(fd int) error

	// ModifyWrite re-arms fd for write-readiness (edge-triggered,
	// one-shot). Called after a worker stages a response, and again
	// by the reactor when the scatter writer reports partial-write
	// backpressure.
	ModifyWrite(fd int) error

	// Remove unregisters fd. The caller is responsible for closing
	// the descriptor itself.
	Remove(fd int) error

	// Wait blocks until at least one event is ready, or timeout
	// elapses (0 blocks indefinitely), and returns the ready batch
	// (bounded by constants.MaxEvents).
	Wait(timeout time.Duration) ([]Event, error)

	// Close releases the poller's own resources (e.g. the epoll
	// descriptor). It does not close any registered connection fds.
	Close() error
}
