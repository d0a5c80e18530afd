package ohandle

import (
	"errors"
	"io"
	"os"
)

func otherOSError(err error) error {
	return &handleError{msg: err.Error()}
}

// isClosedOrBroken folds the several OS-level spellings of "the peer is
// gone" (os.ErrClosed, io.ErrClosedPipe, EPIPE, ECONNRESET) into one
// check, so pipe_read/pipe_write can report the single BrokenPipe/EOF
// outcome spec.md §4.1 asks for instead of leaking platform errors.
func isClosedOrBroken(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	return isBrokenPipeErrno(err)
}
