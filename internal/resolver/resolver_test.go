package resolver

import (
	"strings"
	"testing"

	"github.com/ehrlich-b/go-staticd/internal/conn"
	"github.com/ehrlich-b/go-staticd/internal/fsmem"
)

func TestResolve_FileRequest(t *testing.T) {
	fs := fsmem.New()
	fs.PutFile("/srv/index.html", []byte("<html></html>"), 0o644)

	res, v := Resolve(fs, "/srv", "/index.html")
	if v != conn.FileRequest {
		t.Fatalf("verdict = %v, want FileRequest", v)
	}
	if res.Size != 13 {
		t.Errorf("Size = %d, want 13", res.Size)
	}
	if string(res.Mapped.Data()) != "<html></html>" {
		t.Errorf("Data = %q", res.Mapped.Data())
	}
}

func TestResolve_MissingFile(t *testing.T) {
	fs := fsmem.New()
	_, v := Resolve(fs, "/srv", "/nope.html")
	if v != conn.NoResource {
		t.Fatalf("verdict = %v, want NoResource", v)
	}
}

func TestResolve_NotWorldReadable(t *testing.T) {
	fs := fsmem.New()
	fs.PutFile("/srv/secret.html", []byte("x"), 0o640)

	_, v := Resolve(fs, "/srv", "/secret.html")
	if v != conn.Forbidden {
		t.Fatalf("verdict = %v, want Forbidden", v)
	}
}

func TestResolve_DirectoryTarget(t *testing.T) {
	fs := fsmem.New()
	fs.PutDir("/srv")

	_, v := Resolve(fs, "/srv", "/")
	if v != conn.BadRequest {
		t.Fatalf("verdict = %v, want BadRequest", v)
	}
}

func TestResolve_RejectsParentTraversal(t *testing.T) {
	fs := fsmem.New()
	fs.PutFile("/etc/passwd", []byte("root:x"), 0o644)

	_, v := Resolve(fs, "/srv", "/../etc/passwd")
	if v != conn.Forbidden {
		t.Fatalf("verdict = %v, want Forbidden", v)
	}
}

func TestResolve_RejectsMissingLeadingSlash(t *testing.T) {
	fs := fsmem.New()
	_, v := Resolve(fs, "/srv", "index.html")
	if v != conn.BadRequest {
		t.Fatalf("verdict = %v, want BadRequest", v)
	}
}

func TestResolve_RejectsOverlongPath(t *testing.T) {
	fs := fsmem.New()
	long := "/" + strings.Repeat("a", 300)
	_, v := Resolve(fs, "/srv", long)
	if v != conn.NoResource {
		t.Fatalf("verdict = %v, want NoResource", v)
	}
}
