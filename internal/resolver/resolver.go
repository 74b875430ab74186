// Package resolver implements the document-root resolver: turn a
// parsed request URL and a configured document root into either a
// mapped, servable file or a rejection verdict. It stats the joined
// path, rejects non-world-readable entries and directories, then
// opens and maps the file, handing the mapping's ownership to the
// caller.
package resolver

import (
	"path"
	"strings"

	"github.com/ehrlich-b/go-staticd/internal/conn"
	"github.com/ehrlich-b/go-staticd/internal/constants"
	"github.com/ehrlich-b/go-staticd/internal/interfaces"
)

// Resource is a resolved, mapped file ready for the response builder.
type Resource struct {
	Path   string
	Size   int64
	Mapped interfaces.MappedFile
}

// Resolve joins root and url, validates the result and consults fs
// for the artifact's metadata and contents. It never returns both a
// non-nil *Resource and a verdict other than conn.FileRequest.
func Resolve(fs interfaces.FileSystem, root, url string) (*Resource, conn.Verdict) {
	if !strings.HasPrefix(url, "/") {
		return nil, conn.BadRequest
	}
	// The joined path is bounded; reject rather than truncate, since
	// a truncated path could resolve to the wrong file.
	if len(root)+len(url) >= constants.MaxFilenameLen {
		return nil, conn.NoResource
	}

	// Check the raw URL for parent traversal before cleaning:
	// path.Clean silently swallows ".." segments on rooted paths, and
	// a request that tried to climb out of the root deserves a
	// rejection, not a quiet remap.
	for _, seg := range strings.Split(url, "/") {
		if seg == ".." {
			return nil, conn.Forbidden
		}
	}
	clean := path.Clean(url)

	// Clean the joined path so "/" maps to the root directory itself
	// rather than a trailing-slash alias of it.
	full := path.Clean(root + clean)

	info, err := fs.Stat(full)
	if err != nil {
		return nil, conn.NoResource
	}
	if info.Mode().Perm()&0o004 == 0 {
		return nil, conn.Forbidden
	}
	if info.IsDir() {
		return nil, conn.BadRequest
	}

	mapped, err := fs.Open(full)
	if err != nil {
		return nil, conn.InternalError
	}

	return &Resource{
		Path:   full,
		Size:   info.Size(),
		Mapped: mapped,
	}, conn.FileRequest
}
