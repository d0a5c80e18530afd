// Package ohandle implements the Handle & Pipe primitives of the
// supervision core: an opaque OS handle with a distinguished invalid
// sentinel, and pipe creation/destroy/read/write built on top of it.
package ohandle

import (
	"io"
	"os"
)

// Handle is an opaque OS-level identifier with a distinguished invalid
// value, the zero Handle{}. Every Handle field held by a caller satisfies
// the master invariant: either valid and exclusively owned, or invalid.
type Handle struct {
	file *os.File
}

// Invalid is the sentinel handle value.
var Invalid = Handle{}

// FromFile wraps an already-open *os.File as a valid Handle. Passing nil
// produces Invalid.
func FromFile(f *os.File) Handle {
	if f == nil {
		return Invalid
	}
	return Handle{file: f}
}

// Valid reports whether h holds a live OS resource.
func (h Handle) Valid() bool {
	return h.file != nil
}

// File exposes the underlying *os.File for callers (os/exec wiring,
// syscall-level nonblocking toggles) that need it directly. Returns nil
// for Invalid.
func (h Handle) File() *os.File {
	return h.file
}

// Fd returns the underlying file descriptor, or ^uintptr(0) if invalid.
func (h Handle) Fd() uintptr {
	if h.file == nil {
		return ^uintptr(0)
	}
	return h.file.Fd()
}

// Destroy closes h if valid and always returns Invalid. Idempotent:
// destroying Invalid is a no-op.
func (h Handle) Destroy() Handle {
	if h.file != nil {
		h.file.Close()
	}
	return Invalid
}

// Read delegates to the underlying file. Returns io.EOF when the remote
// end has closed, matching pipe_read's documented EOF semantics.
func (h Handle) Read(buf []byte) (int, error) {
	if !h.Valid() {
		return 0, ErrInvalidHandle
	}
	n, err := h.file.Read(buf)
	if err != nil && err != io.EOF {
		if isClosedOrBroken(err) || (isTTYReadEIO(err) && IsTTY(h)) {
			return n, io.EOF
		}
	}
	return n, err
}

// Write delegates to the underlying file, reporting ErrBrokenPipe when
// the remote end has closed.
func (h Handle) Write(buf []byte) (int, error) {
	if !h.Valid() {
		return 0, ErrInvalidHandle
	}
	n, err := h.file.Write(buf)
	if err != nil && isClosedOrBroken(err) {
		return n, ErrBrokenPipe
	}
	return n, err
}

// ErrInvalidHandle is returned by operations attempted on Invalid.
var ErrInvalidHandle = &handleError{"invalid handle"}

// ErrBrokenPipe is returned by Write (and by Read via io.EOF) once the
// remote end has closed.
var ErrBrokenPipe = &handleError{"broken pipe"}

type handleError struct{ msg string }

func (e *handleError) Error() string { return e.msg }
