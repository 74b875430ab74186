// Package reactor implements the event loop: one goroutine waits on
// the poller, accepts new connections, drains readable sockets and
// runs the request parser over the new bytes itself, hands requests
// that reached a final verdict to the worker pool for resolving and
// response building, and drains writable sockets through the scatter
// writer. Parsing does not run on the worker pool. Besides the
// reactor goroutine, a worker calls the poller to re-arm its
// connection for write (or to remove it when staging fails); the
// pipeline's lock-free design relies on one-shot readiness to keep
// any one connection on a single goroutine at a time.
package reactor

import (
	"time"

	"github.com/ehrlich-b/go-staticd/internal/conn"
	"github.com/ehrlich-b/go-staticd/internal/interfaces"
	"github.com/ehrlich-b/go-staticd/internal/poller"
	"github.com/ehrlich-b/go-staticd/internal/resolver"
	"github.com/ehrlich-b/go-staticd/internal/response"
	"github.com/ehrlich-b/go-staticd/internal/workerpool"
)

// Acceptor accepts one pending connection as a non-blocking
// descriptor plus its peer address, returning an error satisfying
// IsWouldBlock once the backlog is drained. internal/listener.Listener
// implements this.
type Acceptor interface {
	Accept4() (fd int, peer string, err error)
}

// Reader performs one non-blocking read from fd into p.
type Reader interface {
	Read(fd int, p []byte) (int, error)
}

// Closer closes a raw connection descriptor.
type Closer interface {
	CloseFD(fd int) error
}

// IsWouldBlock reports whether err is the "try again" signal for a
// non-blocking descriptor. Reused from the response package so both
// the read and write paths agree on one errno predicate.
var IsWouldBlock = response.IsWouldBlock

// Reactor ties the poller, worker pool, connection table, resolver
// and response builder/writer together into the single event loop.
type Reactor struct {
	Pol      poller.Poller
	Pool     *workerpool.Pool
	Table    *conn.Table
	FS       interfaces.FileSystem
	DocRoot  string
	ListenFD int
	Acceptor Acceptor
	Reader   Reader
	Writer   response.Writer
	Closer   Closer
	Logger   interfaces.Logger
	Observer interfaces.Observer

	// PollTimeout bounds how long Wait blocks between checks of the
	// stop channel; it does not otherwise affect behavior.
	PollTimeout time.Duration
}

// Run registers the listening descriptor and processes readiness
// batches until stop is closed or the poller reports a fatal error.
func (r *Reactor) Run(stop <-chan struct{}) error {
	if err := r.Pol.AddListener(r.ListenFD); err != nil {
		return err
	}
	timeout := r.PollTimeout
	if timeout <= 0 {
		timeout = 200 * time.Millisecond
	}

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		events, err := r.Pol.Wait(timeout)
		if err != nil {
			return err
		}
		for _, ev := range events {
			if ev.FD == r.ListenFD {
				r.acceptLoop()
				continue
			}
			r.handleEvent(ev)
		}
	}
}

func (r *Reactor) acceptLoop() {
	for {
		fd, peer, err := r.Acceptor.Accept4()
		if err != nil {
			if !IsWouldBlock(err) && r.Logger != nil {
				r.Logger.Printf("reactor: accept: %v", err)
			}
			return
		}

		_, ok := r.Table.Acquire(fd, peer)
		if !ok {
			// Slot table exhausted: reject this connection outright
			// without a response, per the resource-exhaustion path.
			if r.Closer != nil {
				r.Closer.CloseFD(fd)
			}
			continue
		}
		if err := r.Pol.AddConn(fd); err != nil {
			r.Table.Release(fd)
			if r.Closer != nil {
				r.Closer.CloseFD(fd)
			}
			continue
		}
		if r.Observer != nil {
			r.Observer.ObserveConnectionOpened()
		}
	}
}

func (r *Reactor) handleEvent(ev poller.Event) {
	sl := r.Table.Get(ev.FD)
	if sl == nil || sl.FD < 0 {
		return
	}

	if ev.Closed {
		r.closeSlot(sl)
		return
	}
	if ev.Readable {
		r.drainRead(sl)
		return
	}
	if ev.Writable {
		r.drainWrite(sl)
	}
}

// drainRead reads until EAGAIN or a zero-byte/error read, then, if a
// full request (or definitive rejection) was parsed, submits the
// build-and-respond work to the pool. A NO_REQUEST verdict just
// re-arms for more input, never touching the pool.
func (r *Reactor) drainRead(sl *conn.Slot) {
	for {
		space := sl.ReadSpace()
		if len(space) == 0 {
			break
		}

		n, err := r.Reader.Read(sl.FD, space)
		if err != nil {
			if IsWouldBlock(err) {
				break
			}
			r.closeSlot(sl)
			return
		}
		if n == 0 {
			r.closeSlot(sl)
			return
		}
		sl.CommitRead(n)
	}

	verdict := sl.Feed(r.Logger)
	if verdict == conn.NoRequest {
		if len(sl.ReadSpace()) == 0 {
			// Read buffer exhausted without a complete request: the
			// request is larger than this server can ever parse.
			r.closeSlot(sl)
			return
		}
		if err := r.Pol.ModifyRead(sl.FD); err != nil {
			r.closeSlot(sl)
		}
		return
	}

	r.Pool.Submit(func() {
		r.process(sl, verdict)
	})
}

// process runs the resolver (for GetRequest) and response builder,
// then re-arms the descriptor for write. It executes on a worker
// goroutine; the one-shot readiness discipline guarantees no other
// goroutine touches sl concurrently.
func (r *Reactor) process(sl *conn.Slot, verdict conn.Verdict) {
	var res *resolver.Resource
	switch verdict {
	case conn.GetRequest:
		res, verdict = resolver.Resolve(r.FS, r.DocRoot, sl.URL)
	case conn.BadRequest:
		// already final
	default:
		verdict = conn.InternalError
	}

	if !response.Build(sl, verdict, res) {
		r.closeSlot(sl)
		return
	}
	if r.Observer != nil {
		r.Observer.ObserveRequest(verdict.String(), 0)
	}
	if err := r.Pol.ModifyWrite(sl.FD); err != nil {
		r.closeSlot(sl)
	}
}

// drainWrite drives the scatter writer; it re-arms or closes based on
// the outcome, and resets the slot for reuse on a keep-alive finish.
func (r *Reactor) drainWrite(sl *conn.Slot) {
	outcome := response.Drain(sl.FD, sl, r.Writer)
	switch outcome {
	case response.OutcomeInProgress:
		if err := r.Pol.ModifyWrite(sl.FD); err != nil {
			r.closeSlot(sl)
		}
	case response.OutcomeFailed:
		r.closeSlot(sl)
	case response.OutcomeDone:
		if r.Observer != nil {
			r.Observer.ObserveBytesSent(uint64(sl.BytesHaveSend))
		}
		if sl.KeepAlive() {
			sl.Reset()
			if err := r.Pol.ModifyRead(sl.FD); err != nil {
				r.closeSlot(sl)
			}
			return
		}
		r.closeSlot(sl)
	}
}

func (r *Reactor) closeSlot(sl *conn.Slot) {
	_ = r.Pol.Remove(sl.FD)
	fd := sl.FD
	r.Table.Release(fd)
	if r.Closer != nil {
		r.Closer.CloseFD(fd)
	}
	if r.Observer != nil {
		r.Observer.ObserveConnectionClosed()
	}
}
