//go:build windows

package ohandle

import (
	"errors"
	"syscall"
)

// SetNonblocking is a no-op on Windows: anonymous pipes created via
// os.Pipe don't support the overlapped-I/O mode this would otherwise
// toggle, so writes to them stay blocking.
func SetNonblocking(h Handle, nonblocking bool) error {
	if !h.Valid() {
		return ErrInvalidHandle
	}
	return nil
}

func isBrokenPipeErrno(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ERROR_BROKEN_PIPE || errno == syscall.ERROR_NO_DATA
	}
	return false
}

// IsWouldBlock always reports false on Windows: anonymous pipe handles
// here are never put into nonblocking mode (see SetNonblocking above).
func IsWouldBlock(err error) bool {
	return false
}

// isTTYReadEIO never occurs on Windows: console handles don't surface
// the Unix PTY closed-slave EIO quirk.
func isTTYReadEIO(err error) bool {
	return false
}
