package conn

import "testing"

func TestFeed_ValidGET(t *testing.T) {
	s := newSlot()
	feedBytes(s, []byte("GET /index.html HTTP/1.1\r\nHost: example.com\r\nConnection: keep-alive\r\n\r\n"))

	v := s.Feed(nil)
	if v != GetRequest {
		t.Fatalf("verdict = %v, want GetRequest", v)
	}
	if s.URL != "/index.html" {
		t.Errorf("URL = %q", s.URL)
	}
	if s.Host != "example.com" {
		t.Errorf("Host = %q", s.Host)
	}
	if !s.Linger {
		t.Errorf("Linger = false, want true for keep-alive")
	}
}

func TestFeed_NonGETMethodIsBad(t *testing.T) {
	s := newSlot()
	feedBytes(s, []byte("POST / HTTP/1.1\r\n\r\n"))

	if v := s.Feed(nil); v != BadRequest {
		t.Fatalf("verdict = %v, want BadRequest", v)
	}
}

func TestFeed_WrongVersionIsBad(t *testing.T) {
	s := newSlot()
	feedBytes(s, []byte("GET / HTTP/1.0\r\n\r\n"))

	if v := s.Feed(nil); v != BadRequest {
		t.Fatalf("verdict = %v, want BadRequest", v)
	}
}

func TestFeed_MissingVersionIsBad(t *testing.T) {
	s := newSlot()
	feedBytes(s, []byte("GET /\r\n\r\n"))

	if v := s.Feed(nil); v != BadRequest {
		t.Fatalf("verdict = %v, want BadRequest", v)
	}
}

func TestFeed_AbsoluteURIIsStrippedToPath(t *testing.T) {
	s := newSlot()
	feedBytes(s, []byte("GET http://example.com/a/b.html HTTP/1.1\r\n\r\n"))

	v := s.Feed(nil)
	if v != GetRequest {
		t.Fatalf("verdict = %v, want GetRequest", v)
	}
	if s.URL != "/a/b.html" {
		t.Errorf("URL = %q, want /a/b.html", s.URL)
	}
}

func TestFeed_IncompleteRequestLineStaysOpen(t *testing.T) {
	s := newSlot()
	feedBytes(s, []byte("GET /index.html HTTP/1.1"))

	if v := s.Feed(nil); v != NoRequest {
		t.Fatalf("verdict = %v, want NoRequest", v)
	}
}

func TestFeed_WaitsForDeclaredContentLength(t *testing.T) {
	s := newSlot()
	feedBytes(s, []byte("GET /upload HTTP/1.1\r\nContent-Length: 5\r\n\r\n"))

	if v := s.Feed(nil); v != NoRequest {
		t.Fatalf("verdict = %v, want NoRequest before body arrives", v)
	}

	feedBytes(s, []byte("hello"))
	if v := s.Feed(nil); v != GetRequest {
		t.Fatalf("verdict = %v, want GetRequest once body arrives", v)
	}
}

func TestFeed_ByteAtATimeArrivalReachesSameVerdict(t *testing.T) {
	whole := []byte("GET /a.txt HTTP/1.1\r\nHost: h\r\n\r\n")

	s := newSlot()
	var v Verdict = NoRequest
	for i := range whole {
		feedBytes(s, whole[i:i+1])
		v = s.Feed(nil)
		if v != NoRequest && i != len(whole)-1 {
			t.Fatalf("verdict resolved early at byte %d: %v", i, v)
		}
	}
	if v != GetRequest {
		t.Fatalf("final verdict = %v, want GetRequest", v)
	}
	if s.URL != "/a.txt" {
		t.Errorf("URL = %q", s.URL)
	}
}

func TestFeed_MultipleRequestsPipelinedInOneRead(t *testing.T) {
	s := newSlot()
	feedBytes(s, []byte("GET /one HTTP/1.1\r\n\r\nGET /two HTTP/1.1\r\n\r\n"))

	v := s.Feed(nil)
	if v != GetRequest {
		t.Fatalf("first verdict = %v, want GetRequest", v)
	}
	if s.URL != "/one" {
		t.Errorf("URL = %q, want /one", s.URL)
	}
}
