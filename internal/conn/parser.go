package conn

import (
	"bytes"
	"strings"

	"github.com/ehrlich-b/go-staticd/internal/interfaces"
)

// Feed drives the main request state machine over whatever new bytes
// the reactor has appended to the read buffer since the last call. It
// may advance through several lines already buffered in one call
// (e.g. a request line plus several headers that all arrived in the
// same read), stopping as soon as it returns anything other than
// NoRequest, or as soon as the buffered bytes run out.
func (s *Slot) Feed(logger interfaces.Logger) Verdict {
	for {
		if s.State == StateContent {
			return s.parseContent()
		}

		status, line := s.scanLine()
		if status == lineOpen {
			return NoRequest
		}
		if status == lineBad {
			return BadRequest
		}

		s.StartLine = s.CheckedIdx

		switch s.State {
		case StateRequestLine:
			if v := s.parseRequestLine(line); v != NoRequest {
				return v
			}
		case StateHeader:
			v := s.parseHeaderLine(line, logger)
			if v != NoRequest {
				return v
			}
		default:
			return InternalError
		}
	}
}

// splitField splits b on the first run of space/tab, returning the
// field before it and the remainder with leading space/tab consumed.
// ok is false if b contains no space/tab at all.
func splitField(b []byte) (field, rest []byte, ok bool) {
	i := bytes.IndexAny(b, " \t")
	if i < 0 {
		return nil, nil, false
	}
	j := i
	for j < len(b) && (b[j] == ' ' || b[j] == '\t') {
		j++
	}
	return b[:i], b[j:], true
}

// parseRequestLine handles "METHOD SP URL SP VERSION". Only GET and
// HTTP/1.1 are accepted: this server serves static files, it has no
// business accepting POST/PUT or negotiating HTTP/1.0.
func (s *Slot) parseRequestLine(line []byte) Verdict {
	method, rest, ok := splitField(line)
	if !ok {
		return BadRequest
	}
	if !strings.EqualFold(string(method), "GET") {
		return BadRequest
	}

	url, version, ok := splitField(rest)
	if !ok {
		return BadRequest
	}
	if !strings.EqualFold(string(version), "HTTP/1.1") {
		return BadRequest
	}

	if len(url) >= 7 && strings.EqualFold(string(url[:7]), "http://") {
		rem := url[7:]
		i := bytes.IndexByte(rem, '/')
		if i < 0 {
			return BadRequest
		}
		url = rem[i:]
	}
	if len(url) == 0 || url[0] != '/' {
		return BadRequest
	}

	s.Method = "GET"
	s.URL = string(url)
	s.Version = "HTTP/1.1"
	s.State = StateHeader
	return NoRequest
}

// parseHeaderLine handles one header line, or the blank line that
// ends the header block. Unrecognized headers are logged and
// ignored.
func (s *Slot) parseHeaderLine(line []byte, logger interfaces.Logger) Verdict {
	if len(line) == 0 {
		if s.ContentLength > 0 {
			s.State = StateContent
			return NoRequest
		}
		return GetRequest
	}

	i := bytes.IndexByte(line, ':')
	if i < 0 {
		if logger != nil {
			logger.Debugf("conn: ignoring malformed header line %q", string(line))
		}
		return NoRequest
	}
	name := line[:i]
	value := bytes.TrimLeft(line[i+1:], " \t")

	switch {
	case strings.EqualFold(string(name), "Connection"):
		s.Linger = strings.EqualFold(string(value), "keep-alive")
	case strings.EqualFold(string(name), "Content-Length"):
		var n int64
		for _, c := range value {
			if c < '0' || c > '9' {
				n = 0
				break
			}
			n = n*10 + int64(c-'0')
		}
		s.ContentLength = n
	case strings.EqualFold(string(name), "Host"):
		s.Host = string(value)
	default:
		if logger != nil {
			logger.Debugf("conn: unrecognized header %q", string(name))
		}
	}
	return NoRequest
}

// parseContent waits for the declared body to fully arrive. Static
// GET requests never need the body's contents, only its presence, so
// it is never copied anywhere.
func (s *Slot) parseContent() Verdict {
	if s.ContentLength > 0 && int64(s.ReadIdx) >= int64(s.CheckedIdx)+s.ContentLength {
		return GetRequest
	}
	return NoRequest
}
