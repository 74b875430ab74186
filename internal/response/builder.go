// Package response implements the response builder and scatter
// writer: format a status line, headers and (for errors) an inline
// body into the connection's fixed write buffer, then stream it,
// plus a memory-mapped file body on success, out over the socket
// with vectored writes.
package response

import (
	"fmt"

	"github.com/ehrlich-b/go-staticd/internal/conn"
	"github.com/ehrlich-b/go-staticd/internal/resolver"
)

const (
	okTitle        = "OK"
	badRequestForm = "Your request has bad syntax or is inherently impossible to satisfy.\n"
	forbiddenForm  = "You do not have permission to get file from this server.\n"
	notFoundForm   = "The requested file was not found on this server.\n"
	internalForm   = "There was an unusual problem serving the requested file.\n"
)

// emit appends a formatted fragment to the slot's write buffer. It
// fails rather than overflows: a fragment that does not fit within
// len(WriteBuf)-1 leaves the buffer untouched and returns false.
func emit(s *conn.Slot, format string, args ...interface{}) bool {
	if s.WriteIdx >= len(s.WriteBuf) {
		return false
	}
	msg := fmt.Sprintf(format, args...)
	room := len(s.WriteBuf) - 1 - s.WriteIdx
	if len(msg) >= room {
		return false
	}
	n := copy(s.WriteBuf[s.WriteIdx:], msg)
	s.WriteIdx += n
	return true
}

func addStatusLine(s *conn.Slot, status int, title string) bool {
	return emit(s, "HTTP/1.1 %d %s\r\n", status, title)
}

func addHeaders(s *conn.Slot, contentLength int64) bool {
	if !emit(s, "Content-Length: %d\r\n", contentLength) {
		return false
	}
	if !emit(s, "Content-Type: text/html\r\n") {
		return false
	}
	conn := "close"
	if s.Linger {
		conn = "keep-alive"
	}
	if !emit(s, "Connection: %s\r\n", conn) {
		return false
	}
	return emit(s, "\r\n")
}

// Build formats the response for verdict into s's write buffer and
// populates s.SendVecs (and bytes-to-send bookkeeping) for the
// scatter writer. It returns false if the write buffer overflowed,
// which the caller must treat as a fatal connection error (the
// original bails out the same way when add_content fails).
func Build(s *conn.Slot, verdict conn.Verdict, res *resolver.Resource) bool {
	switch verdict {
	case conn.InternalError:
		if !addStatusLine(s, 500, "Internal Error") || !addHeaders(s, int64(len(internalForm))) || !emit(s, "%s", internalForm) {
			return false
		}
	case conn.BadRequest:
		if !addStatusLine(s, 400, "Bad Request") || !addHeaders(s, int64(len(badRequestForm))) || !emit(s, "%s", badRequestForm) {
			return false
		}
	case conn.NoResource:
		if !addStatusLine(s, 404, "Not Found") || !addHeaders(s, int64(len(notFoundForm))) || !emit(s, "%s", notFoundForm) {
			return false
		}
	case conn.Forbidden:
		if !addStatusLine(s, 403, "Forbidden") || !addHeaders(s, int64(len(forbiddenForm))) || !emit(s, "%s", forbiddenForm) {
			return false
		}
	case conn.FileRequest:
		if res == nil {
			return false
		}
		if !addStatusLine(s, 200, okTitle) || !addHeaders(s, res.Size) {
			return false
		}
		s.Mapped = res.Mapped
		s.SendVecs = [][]byte{
			s.WriteBuf[:s.WriteIdx],
			res.Mapped.Data(),
		}
		s.BytesToSend = int64(s.WriteIdx) + res.Size
		s.BytesHaveSend = 0
		return true
	default:
		return false
	}

	s.SendVecs = [][]byte{s.WriteBuf[:s.WriteIdx]}
	s.BytesToSend = int64(s.WriteIdx)
	s.BytesHaveSend = 0
	return true
}
