package response

import "github.com/ehrlich-b/go-staticd/internal/conn"

// Writer performs one vectored write attempt against a connection
// descriptor. Real and platform-fallback implementations are
// provided in writer_linux.go / writer_other.go, the same real/stub
// split the poller package uses for its own syscall dependency.
type Writer interface {
	WriteV(fd int, vecs [][]byte) (int, error)
}

// Outcome is what the scatter writer wants the reactor to do next.
type Outcome int

const (
	// OutcomeDone means every byte was sent; the reactor should
	// release resources and either keep the slot armed for read
	// (keep-alive) or close it.
	OutcomeDone Outcome = iota
	// OutcomeInProgress means the kernel's send buffer filled up;
	// the reactor should re-arm the descriptor for write-readiness
	// and return without closing anything.
	OutcomeInProgress
	// OutcomeFailed means an unrecoverable write error occurred; the
	// reactor should release resources and close the connection.
	OutcomeFailed
)

// advance consumes n bytes from the front of vecs, reslicing rather
// than copying: a partial write resumes mid-vector without any
// offset bookkeeping, and the scheme generalizes past exactly two
// vectors for free.
func advance(vecs [][]byte, n int) [][]byte {
	for n > 0 && len(vecs) > 0 {
		if n < len(vecs[0]) {
			vecs[0] = vecs[0][n:]
			return vecs
		}
		n -= len(vecs[0])
		vecs = vecs[1:]
	}
	return vecs
}

// Drain attempts to send everything queued in s.SendVecs over fd,
// looping on short writes until the kernel either accepts everything,
// reports EAGAIN, or fails outright. On OutcomeDone or OutcomeFailed
// the mapped file (if any) is released; the caller is responsible
// for poller rearmament and slot reset/close.
func Drain(fd int, s *conn.Slot, wv Writer) Outcome {
	release := func() {
		if s.Mapped != nil {
			s.Mapped.Close()
			s.Mapped = nil
		}
	}

	for {
		if s.BytesToSend <= 0 {
			release()
			return OutcomeDone
		}

		n, err := wv.WriteV(fd, s.SendVecs)
		if err != nil {
			if IsWouldBlock(err) {
				return OutcomeInProgress
			}
			release()
			return OutcomeFailed
		}

		s.BytesHaveSend += int64(n)
		s.BytesToSend -= int64(n)
		s.SendVecs = advance(s.SendVecs, n)

		if s.BytesToSend <= 0 {
			release()
			return OutcomeDone
		}
	}
}
