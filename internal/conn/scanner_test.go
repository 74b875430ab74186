package conn

import "testing"

func feedBytes(s *Slot, b []byte) {
	n := copy(s.ReadSpace(), b)
	s.CommitRead(n)
}

func TestScanLine_OK(t *testing.T) {
	s := newSlot()
	feedBytes(s, []byte("GET / HTTP/1.1\r\n"))

	status, line := s.scanLine()
	if status != lineOK {
		t.Fatalf("status = %v, want lineOK", status)
	}
	if string(line) != "GET / HTTP/1.1" {
		t.Errorf("line = %q, want %q", line, "GET / HTTP/1.1")
	}
	if s.CheckedIdx != 16 {
		t.Errorf("CheckedIdx = %d, want 16", s.CheckedIdx)
	}
}

func TestScanLine_OpenOnPartialCRLF(t *testing.T) {
	s := newSlot()
	feedBytes(s, []byte("GET / HTTP/1.1\r"))

	status, _ := s.scanLine()
	if status != lineOpen {
		t.Fatalf("status = %v, want lineOpen", status)
	}

	// The \n arrives in a later read; scanning resumes and completes.
	feedBytes(s, []byte("\n"))
	status, line := s.scanLine()
	if status != lineOK {
		t.Fatalf("status = %v, want lineOK", status)
	}
	if string(line) != "GET / HTTP/1.1" {
		t.Errorf("line = %q, want %q", line, "GET / HTTP/1.1")
	}
}

func TestScanLine_OpenWithNoTerminatorYet(t *testing.T) {
	s := newSlot()
	feedBytes(s, []byte("GET / HTTP"))

	status, _ := s.scanLine()
	if status != lineOpen {
		t.Fatalf("status = %v, want lineOpen", status)
	}
	if s.CheckedIdx != s.ReadIdx {
		t.Errorf("CheckedIdx = %d, want %d (scanned to end)", s.CheckedIdx, s.ReadIdx)
	}
}

func TestScanLine_BadLoneCR(t *testing.T) {
	s := newSlot()
	feedBytes(s, []byte("GET\rX"))

	status, _ := s.scanLine()
	if status != lineBad {
		t.Fatalf("status = %v, want lineBad (CR not followed by LF)", status)
	}
}

func TestScanLine_BareLFAtStartIsBad(t *testing.T) {
	// The first byte of the connection being a bare '\n' can never be
	// a valid line terminator.
	s := newSlot()
	feedBytes(s, []byte("\n"))

	status, _ := s.scanLine()
	if status != lineBad {
		t.Fatalf("status = %v, want lineBad", status)
	}
}

func TestScanLine_ByteAtATimeMatchesWholeArrival(t *testing.T) {
	whole := []byte("GET /index.html HTTP/1.1\r\n")

	sWhole := newSlot()
	feedBytes(sWhole, whole)
	_, lineWhole := sWhole.scanLine()

	sChunked := newSlot()
	var lineChunked []byte
	for i := range whole {
		feedBytes(sChunked, whole[i:i+1])
		status, line := sChunked.scanLine()
		if status == lineOK {
			lineChunked = line
			break
		}
		if status == lineBad {
			t.Fatalf("unexpected lineBad feeding byte %d", i)
		}
	}

	if string(lineChunked) != string(lineWhole) {
		t.Errorf("chunked line = %q, whole line = %q", lineChunked, lineWhole)
	}
}
