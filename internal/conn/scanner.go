package conn

// lineStatus is the line-scanner's own sub-state.
type lineStatus int

const (
	lineOK lineStatus = iota
	lineOpen
	lineBad
)

// scanLine extracts one CRLF-terminated line starting at s.StartLine
// out of the bytes already received (s.ReadBuf[:s.ReadIdx]), resuming
// from s.CheckedIdx so repeated calls across partial reads do not
// re-scan bytes already checked; the one exception is a trailing '\r',
// which is left unconsumed and examined again on the next call.
//
// Two edge cases matter for resumability: a lone trailing '\r' at
// the end of the received bytes is lineOpen (the '\n' may simply not
// have arrived yet) rather than lineBad, and a bare '\n' is only
// accepted as a line terminator when it is preceded by '\r' and sits
// at read-buffer index 2 or later. Together these make
// repeated Feed calls over a byte-at-a-time arrival yield the same
// verdict as one call over the same bytes delivered whole.
func (s *Slot) scanLine() (lineStatus, []byte) {
	for ; s.CheckedIdx < s.ReadIdx; s.CheckedIdx++ {
		c := s.ReadBuf[s.CheckedIdx]
		switch c {
		case '\r':
			if s.CheckedIdx+1 == s.ReadIdx {
				return lineOpen, nil
			}
			if s.ReadBuf[s.CheckedIdx+1] == '\n' {
				line := s.ReadBuf[s.StartLine:s.CheckedIdx]
				s.ReadBuf[s.CheckedIdx] = 0
				s.CheckedIdx++
				s.ReadBuf[s.CheckedIdx] = 0
				s.CheckedIdx++
				return lineOK, line
			}
			return lineBad, nil
		case '\n':
			if s.CheckedIdx > 1 && s.ReadBuf[s.CheckedIdx-1] == '\r' {
				line := s.ReadBuf[s.StartLine : s.CheckedIdx-1]
				s.ReadBuf[s.CheckedIdx-1] = 0
				s.ReadBuf[s.CheckedIdx] = 0
				s.CheckedIdx++
				return lineOK, line
			}
			return lineBad, nil
		}
	}
	return lineOpen, nil
}
