//go:build unix

package ohandle

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// SetNonblocking switches h's I/O mode. Rationale (spec.md §4.1): writing
// an input blob larger than the kernel pipe buffer before the child has
// started reading would deadlock a blocking write.
func SetNonblocking(h Handle, nonblocking bool) error {
	if !h.Valid() {
		return ErrInvalidHandle
	}
	if err := unix.SetNonblock(int(h.Fd()), nonblocking); err != nil {
		return otherOSError(err)
	}
	return nil
}

func isBrokenPipeErrno(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EPIPE || errno == syscall.ECONNRESET
	}
	return false
}

// IsWouldBlock reports whether err is the platform's EAGAIN/EWOULDBLOCK,
// surfaced by a nonblocking Read/Write that has no data/room yet.
func IsWouldBlock(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EAGAIN || errno == syscall.EWOULDBLOCK
	}
	return false
}

// isTTYReadEIO reports whether err is the EIO a PTY master read returns
// once every slave-side file descriptor has been closed.
func isTTYReadEIO(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EIO
	}
	return false
}
