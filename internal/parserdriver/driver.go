// Package parserdriver is the external "parser driver" collaborator:
// given a compile command and a filesystem handle, it walks the
// translation unit's syntax tree and reports symbols, references,
// relations, and the include graph through indexdata.IndexFileIn.
//
// The core never parses anything itself; it only calls a Driver and
// treats compiler diagnostics as an opaque had-errors flag.
package parserdriver

import (
	"github.com/standardbeagle/bgindexd/internal/fsvfs"
	"github.com/standardbeagle/bgindexd/internal/indexdata"
)

// FileFilter reports whether an absolute path should be indexed at all.
// The driver consults it before descending into an included file, mirroring
// clangd's per-TU file filter (e.g. skip files outside the project).
type FileFilter func(absPath string) bool

// Driver parses one translation unit rooted at cmd.Filename, using fsys to
// read cmd.Filename and everything it transitively includes. hadErrors
// reports whether the driver observed any syntax error while parsing
// cmd.Filename itself or any included file passing filter; this is not a
// failure, it only forces the caller to treat the shard as stale until a
// clean re-parse happens.
type Driver interface {
	Parse(cmd indexdata.CompileCommand, fsys fsvfs.FS, filter FileFilter) (result indexdata.IndexFileIn, hadErrors bool, err error)
}

// AllowAll is the trivial FileFilter that indexes every path it is asked
// about, useful for tests and single-file invocations.
func AllowAll(string) bool { return true }
