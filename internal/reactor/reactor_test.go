//go:build linux

package reactor

import (
	"bytes"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/go-staticd/internal/conn"
	"github.com/ehrlich-b/go-staticd/internal/fsmem"
	"github.com/ehrlich-b/go-staticd/internal/poller"
	"github.com/ehrlich-b/go-staticd/internal/response"
	"github.com/ehrlich-b/go-staticd/internal/workerpool"
)

type unixReader struct{}

func (unixReader) Read(fd int, p []byte) (int, error) { return unix.Read(fd, p) }

type fdCloser struct{}

func (fdCloser) CloseFD(fd int) error { return unix.Close(fd) }

// testHarness wires a Reactor against a real pair of connected
// sockets so drainRead/process/drainWrite exercise real non-blocking
// read/write syscalls, with a Fake poller standing in for epoll so
// the test can drive readiness deterministically instead of timing
// against a kernel event.
type testHarness struct {
	r          *Reactor
	fake       *poller.Fake
	serverFD   int
	clientFD   int
	pool       *workerpool.Pool
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}

	fs := fsmem.New()
	fs.PutFile("/srv/index.html", []byte("<html>hi</html>"), 0o644)
	fs.PutDir("/srv")

	fake := poller.NewFake()
	pool := workerpool.New(2, nil)
	table := conn.NewTable(16)

	r := &Reactor{
		Pol:      fake,
		Pool:     pool,
		Table:    table,
		FS:       fs,
		DocRoot:  "/srv",
		ListenFD: -1,
		Reader:   unixReader{},
		Writer:   response.UnixWriter{},
		Closer:   fdCloser{},
	}

	sl, ok := table.Acquire(fds[0], "peer")
	if !ok {
		t.Fatalf("table.Acquire failed")
	}
	_ = sl
	if err := fake.AddConn(fds[0]); err != nil {
		t.Fatalf("AddConn: %v", err)
	}

	h := &testHarness{r: r, fake: fake, serverFD: fds[0], clientFD: fds[1], pool: pool}
	t.Cleanup(func() {
		pool.Stop()
		unix.Close(fds[1])
	})
	return h
}

// waitArmed polls (bounded) for the server fd to be re-armed for the
// given mode, since request processing happens on a worker goroutine.
func (h *testHarness) waitArmed(t *testing.T, mode string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.fake.ArmedFor(h.serverFD) == mode {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for fd to be armed for %q (got %q)", mode, h.fake.ArmedFor(h.serverFD))
}

func (h *testHarness) readResponse(t *testing.T, want int) []byte {
	t.Helper()
	buf := make([]byte, 0, want+256)
	deadline := time.Now().Add(2 * time.Second)
	for len(buf) < want && time.Now().Before(deadline) {
		tmp := make([]byte, 4096)
		n, err := unix.Read(h.clientFD, tmp)
		if err != nil {
			if response.IsWouldBlock(err) {
				time.Sleep(time.Millisecond)
				continue
			}
			t.Fatalf("read response: %v", err)
		}
		buf = append(buf, tmp[:n]...)
	}
	return buf
}

func TestReactor_ValidGET(t *testing.T) {
	h := newHarness(t)

	req := "GET /index.html HTTP/1.1\r\nHost: h\r\n\r\n"
	if _, err := unix.Write(h.clientFD, []byte(req)); err != nil {
		t.Fatalf("write request: %v", err)
	}

	h.r.handleEvent(makeEvent(h.serverFD, true, false, false))
	h.waitArmed(t, "write")
	h.r.handleEvent(makeEvent(h.serverFD, false, true, false))

	body := h.readResponse(t, len("HTTP/1.1 200 OK"))
	if !bytes.HasPrefix(body, []byte("HTTP/1.1 200 OK\r\n")) {
		t.Fatalf("response = %q", body)
	}
	if !bytes.Contains(body, []byte("<html>hi</html>")) {
		t.Fatalf("response missing body: %q", body)
	}
}

func TestReactor_NonGETMethod(t *testing.T) {
	h := newHarness(t)

	req := "POST /index.html HTTP/1.1\r\n\r\n"
	unix.Write(h.clientFD, []byte(req))

	h.r.handleEvent(makeEvent(h.serverFD, true, false, false))
	h.waitArmed(t, "write")
	h.r.handleEvent(makeEvent(h.serverFD, false, true, false))

	body := h.readResponse(t, len("HTTP/1.1 400 Bad Request"))
	if !bytes.HasPrefix(body, []byte("HTTP/1.1 400 Bad Request\r\n")) {
		t.Fatalf("response = %q", body)
	}
}

func TestReactor_MissingFile(t *testing.T) {
	h := newHarness(t)

	req := "GET /does-not-exist HTTP/1.1\r\n\r\n"
	unix.Write(h.clientFD, []byte(req))

	h.r.handleEvent(makeEvent(h.serverFD, true, false, false))
	h.waitArmed(t, "write")
	h.r.handleEvent(makeEvent(h.serverFD, false, true, false))

	body := h.readResponse(t, len("HTTP/1.1 404 Not Found"))
	if !bytes.HasPrefix(body, []byte("HTTP/1.1 404 Not Found\r\n")) {
		t.Fatalf("response = %q", body)
	}
}

func TestReactor_DirectoryTarget(t *testing.T) {
	h := newHarness(t)

	req := "GET / HTTP/1.1\r\n\r\n"
	unix.Write(h.clientFD, []byte(req))

	h.r.handleEvent(makeEvent(h.serverFD, true, false, false))
	h.waitArmed(t, "write")
	h.r.handleEvent(makeEvent(h.serverFD, false, true, false))

	body := h.readResponse(t, len("HTTP/1.1 400 Bad Request"))
	if !bytes.HasPrefix(body, []byte("HTTP/1.1 400 Bad Request\r\n")) {
		t.Fatalf("response = %q", body)
	}
}

func TestReactor_KeepAliveReuse(t *testing.T) {
	h := newHarness(t)

	req := "GET /index.html HTTP/1.1\r\nConnection: keep-alive\r\n\r\n"
	unix.Write(h.clientFD, []byte(req))
	h.r.handleEvent(makeEvent(h.serverFD, true, false, false))
	h.waitArmed(t, "write")
	h.r.handleEvent(makeEvent(h.serverFD, false, true, false))
	h.readResponse(t, len("HTTP/1.1 200 OK"))

	h.waitArmed(t, "read")

	unix.Write(h.clientFD, []byte(req))
	h.r.handleEvent(makeEvent(h.serverFD, true, false, false))
	h.waitArmed(t, "write")
	h.r.handleEvent(makeEvent(h.serverFD, false, true, false))
	second := h.readResponse(t, len("HTTP/1.1 200 OK"))

	if !bytes.HasPrefix(second, []byte("HTTP/1.1 200 OK\r\n")) {
		t.Fatalf("second response = %q", second)
	}
	if got := h.r.Table.LiveCount(); got != 1 {
		t.Errorf("LiveCount = %d, want 1 (connection kept alive)", got)
	}
}

func TestReactor_ChunkedByteAtATimeArrival(t *testing.T) {
	h := newHarness(t)

	req := []byte("GET /index.html HTTP/1.1\r\nHost: h\r\n\r\n")
	for _, b := range req {
		unix.Write(h.clientFD, []byte{b})
		h.r.handleEvent(makeEvent(h.serverFD, true, false, false))
	}
	h.waitArmed(t, "write")
	h.r.handleEvent(makeEvent(h.serverFD, false, true, false))

	body := h.readResponse(t, len("HTTP/1.1 200 OK"))
	if !bytes.HasPrefix(body, []byte("HTTP/1.1 200 OK\r\n")) {
		t.Fatalf("response = %q", body)
	}
	if !bytes.Contains(body, []byte("<html>hi</html>")) {
		t.Fatalf("response missing body: %q", body)
	}
}

func makeEvent(fd int, readable, writable, closed bool) poller.Event {
	return poller.Event{FD: fd, Readable: readable, Writable: writable, Closed: closed}
}
