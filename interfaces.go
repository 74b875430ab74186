package staticd

import "github.com/ehrlich-b/go-staticd/internal/interfaces"

// FileSystem is the stat+open+mmap abstraction the resolver consumes.
// Production servers use the real filesystem (the default when
// Params.FileSystem is nil); tests plug in MockFileSystem or any other
// implementation. It is internal/interfaces' FileSystem re-exported so
// implementers only need to import the root package.
type FileSystem = interfaces.FileSystem

// MappedFile is a read-only view of one file's full contents, backed
// by a memory map in production. Ownership transfers to the server
// when the resolver returns it; the server releases it exactly once,
// on response completion or connection teardown.
type MappedFile = interfaces.MappedFile

// Logger is the optional logging interface accepted by Options.
// internal/logging.Logger satisfies it, as does any type with
// Printf/Debugf.
type Logger = interfaces.Logger
