//go:build linux

package response

import "golang.org/x/sys/unix"

// UnixWriter issues a single real writev(2) syscall per attempt.
type UnixWriter struct{}

func (UnixWriter) WriteV(fd int, vecs [][]byte) (int, error) {
	n, err := unix.Writev(fd, vecs)
	return int(n), err
}

// IsWouldBlock reports whether err is the platform's "try again"
// signal for a non-blocking socket.
func IsWouldBlock(err error) bool {
	return err == unix.EAGAIN || err == unix.EWOULDBLOCK
}
