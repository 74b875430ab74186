//go:build linux

// Package listener builds the raw, non-blocking listening socket the
// reactor registers with the poller. It stays off net.Listener on
// purpose: the reactor needs the bare descriptor to hand to epoll and
// to accept4 connections as raw fds (see internal/conn.Table, which
// is indexed by descriptor).
package listener

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/go-staticd/internal/constants"
)

// Listener owns the raw listening socket descriptor.
type Listener struct {
	FD int
}

// New binds addr:port, sets SO_REUSEADDR, listens with the configured
// backlog, and leaves the descriptor non-blocking for accept4-loop use.
func New(addr string, port int) (*Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("listener: socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("listener: setsockopt SO_REUSEADDR: %w", err)
	}

	sa, err := sockaddr(addr, port)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("listener: bind %s:%d: %w", addr, port, err)
	}
	if err := unix.Listen(fd, constants.ListenBacklog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("listener: listen: %w", err)
	}

	return &Listener{FD: fd}, nil
}

func sockaddr(addr string, port int) (*unix.SockaddrInet4, error) {
	sa := &unix.SockaddrInet4{Port: port}
	if addr == "" || addr == "0.0.0.0" {
		return sa, nil
	}
	ip, err := parseIPv4(addr)
	if err != nil {
		return nil, fmt.Errorf("listener: invalid bind address %q: %w", addr, err)
	}
	sa.Addr = ip
	return sa, nil
}

func parseIPv4(addr string) ([4]byte, error) {
	var out [4]byte
	var a, b, c, d int
	n, err := fmt.Sscanf(addr, "%d.%d.%d.%d", &a, &b, &c, &d)
	if err != nil || n != 4 {
		return out, fmt.Errorf("not a dotted-quad IPv4 address")
	}
	for _, v := range []int{a, b, c, d} {
		if v < 0 || v > 255 {
			return out, fmt.Errorf("octet out of range")
		}
	}
	out[0], out[1], out[2], out[3] = byte(a), byte(b), byte(c), byte(d)
	return out, nil
}

// Accept4 accepts one pending connection as a non-blocking descriptor
// plus its peer address, or returns unix.EAGAIN when the backlog is
// drained — the reactor's accept loop runs until it sees that error.
func (l *Listener) Accept4() (fd int, peer string, err error) {
	connFD, sa, err := unix.Accept4(l.FD, unix.SOCK_NONBLOCK)
	if err != nil {
		return -1, "", err
	}
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		peer = fmt.Sprintf("%d.%d.%d.%d:%d", in4.Addr[0], in4.Addr[1], in4.Addr[2], in4.Addr[3], in4.Port)
	}
	return connFD, peer, nil
}

// Port reports the port actually bound, which matters when the
// listener was created with port 0 (ephemeral bind, used by tests).
func (l *Listener) Port() (int, error) {
	sa, err := unix.Getsockname(l.FD)
	if err != nil {
		return 0, fmt.Errorf("listener: getsockname: %w", err)
	}
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, fmt.Errorf("listener: unexpected sockaddr type %T", sa)
	}
	return in4.Port, nil
}

// Close closes the listening socket.
func (l *Listener) Close() error {
	return unix.Close(l.FD)
}

// SocketIO performs raw non-blocking reads and closes against
// connection descriptors; it is the production implementation of the
// reactor's Reader and Closer seams.
type SocketIO struct{}

// Read performs one non-blocking read(2) from fd into p.
func (SocketIO) Read(fd int, p []byte) (int, error) {
	return unix.Read(fd, p)
}

// CloseFD closes a raw connection descriptor.
func (SocketIO) CloseFD(fd int) error {
	return unix.Close(fd)
}
