// Package conn implements the per-connection state machine: a
// fixed-capacity slot holding a connection's read/write buffers and
// parse state, a line scanner that extracts CRLF-terminated lines
// from the read buffer, and a request parser that drives
// REQUESTLINE -> HEADER -> CONTENT off those lines.
package conn

import (
	"os"

	"github.com/ehrlich-b/go-staticd/internal/constants"
	"github.com/ehrlich-b/go-staticd/internal/interfaces"
)

// CheckState is the main request-parser state.
type CheckState int

const (
	StateRequestLine CheckState = iota
	StateHeader
	StateContent
)

// Verdict is the outcome of parsing and resolving a request, shared
// across the parser, the resolver and the response builder so a
// single value flows from "read some bytes" to "write this status
// line".
type Verdict int

const (
	// NoRequest means the buffer doesn't yet hold a complete request;
	// the connection should stay armed for more input.
	NoRequest Verdict = iota
	// GetRequest means a complete, syntactically valid GET request
	// has been parsed and is ready for the resolver.
	GetRequest
	// BadRequest means the bytes seen so far cannot be a valid
	// request no matter what follows.
	BadRequest
	// NoResource means the resolved path does not exist.
	NoResource
	// Forbidden means the resolved path exists but isn't readable,
	// or falls outside the served root.
	Forbidden
	// FileRequest means the resolver produced a servable, mapped file.
	FileRequest
	// InternalError covers an open/mmap failure on a file that stat
	// found, and any verdict the worker does not expect to receive.
	InternalError
)

func (v Verdict) String() string {
	switch v {
	case NoRequest:
		return "NoRequest"
	case GetRequest:
		return "GetRequest"
	case BadRequest:
		return "BadRequest"
	case NoResource:
		return "NoResource"
	case Forbidden:
		return "Forbidden"
	case FileRequest:
		return "FileRequest"
	case InternalError:
		return "InternalError"
	default:
		return "Verdict(?)"
	}
}

// Slot holds everything the reactor, parser, resolver and response
// writer need for one connection. It has a fixed memory footprint:
// the read and write buffers are arrays, not slices, so no allocation
// happens on the hot path beyond the one-time *Slot itself. A Slot is
// reused across keep-alive requests and across descriptor reuse after
// a connection closes (see Table).
type Slot struct {
	FD   int
	Peer string

	// Read side.
	ReadBuf    [constants.ReadBufferSize]byte
	ReadIdx    int // bytes received so far
	CheckedIdx int // bytes already scanned for a line
	StartLine  int // start of the line currently being scanned

	// Parsed request state.
	State         CheckState
	Method        string
	URL           string
	Version       string
	Host          string
	ContentLength int64
	Linger        bool

	// Write side.
	WriteBuf [constants.WriteBufferSize]byte
	WriteIdx int

	// Resolved resource, set by the resolver between GetRequest and
	// the response being fully sent.
	RealPath string
	Info     os.FileInfo
	Mapped   interfaces.MappedFile

	// Scatter-write bookkeeping. SendVecs holds the
	// remaining, not-yet-sent portion of each vector; writev
	// progress is applied by reslicing, not by copying.
	SendVecs      [][]byte
	BytesToSend   int64
	BytesHaveSend int64
}

func newSlot() *Slot {
	s := &Slot{}
	s.Reset()
	return s
}

// Init prepares a freshly accepted connection. It sets the descriptor
// and peer address and resets all parse/response state.
func (s *Slot) Init(fd int, peer string) {
	s.FD = fd
	s.Peer = peer
	s.Reset()
}

// Reset restores parse and response state for a new request on the
// same connection (the keep-alive path) or for a freshly accepted one
// (via Init). It zeroes both buffers and releases any mapped file.
func (s *Slot) Reset() {
	for i := range s.ReadBuf {
		s.ReadBuf[i] = 0
	}
	s.ReadIdx = 0
	s.CheckedIdx = 0
	s.StartLine = 0

	s.State = StateRequestLine
	s.Method = ""
	s.URL = ""
	s.Version = ""
	s.Host = ""
	s.ContentLength = 0
	s.Linger = false

	for i := range s.WriteBuf {
		s.WriteBuf[i] = 0
	}
	s.WriteIdx = 0

	s.RealPath = ""
	s.Info = nil
	if s.Mapped != nil {
		s.Mapped.Close()
		s.Mapped = nil
	}
	s.SendVecs = nil
	s.BytesToSend = 0
	s.BytesHaveSend = 0
}

// ReadSpace returns the unused tail of the read buffer a drain-read
// may fill. An empty slice means the buffer is exhausted without a
// complete request, which the reactor treats as a fatal parse error.
func (s *Slot) ReadSpace() []byte {
	return s.ReadBuf[s.ReadIdx:]
}

// CommitRead records n freshly-read bytes appended at ReadIdx.
func (s *Slot) CommitRead(n int) {
	s.ReadIdx += n
}

// KeepAlive reports whether the connection should stay open after the
// in-flight response finishes sending.
func (s *Slot) KeepAlive() bool {
	return s.Linger
}
