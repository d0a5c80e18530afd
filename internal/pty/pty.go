// Package pty implements the RedirectPTY domain-stack extension
// (SPEC_FULL.md §3): a single pseudo-terminal shared by a child's three
// standard streams, generalized from the teacher's
// executable/stdio_handler/single_pty_stdio_handler.go.
package pty

import (
	"github.com/creack/pty"

	"github.com/codecrafters-io/reproc/internal/ohandle"
)

// Open creates one PTY pair for merged stdin/stdout/stderr redirection.
// Only the master (parent) end is readable/writable by the library; the
// slave end is the handle installed as the child's stdin, stdout, and
// stderr.
func Open() (master, slave ohandle.Handle, err error) {
	m, s, err := pty.Open()
	if err != nil {
		return ohandle.Invalid, ohandle.Invalid, err
	}
	return ohandle.FromFile(m), ohandle.FromFile(s), nil
}
