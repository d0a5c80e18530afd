package reproc

import (
	"errors"
	"io"

	"github.com/codecrafters-io/reproc/internal/ohandle"
)

// Read reads from the child's stdout or stderr (or the merged PTY
// master when RedirectPTY was used for both), per spec.md §4.4. Returns
// io.EOF once the remote end has closed, destroying the pipe first
// (invariant 5): the next Read/Write on the same stream then hits the
// "invalid pipe" case below and deterministically reports ErrBrokenPipe.
func (p *Process) Read(stream Stream, buf []byte) (int, error) {
	if err := p.checkNotInChild(); err != nil {
		return 0, err
	}
	if stream != StreamOut && stream != StreamErr {
		return 0, newError(KindInvalidArgument, "Read requires StreamOut or StreamErr")
	}
	h := p.pipeFor(stream)
	if h == nil || !h.Valid() {
		return 0, ErrBrokenPipe
	}
	n, err := h.Read(buf)
	if errors.Is(err, io.EOF) || errors.Is(err, ohandle.ErrBrokenPipe) {
		p.destroyStream(stream)
	}
	return n, err
}

// Write writes to the child's stdin, per spec.md §4.4. Returns
// ErrBrokenPipe once the child has stopped reading (or exited), having
// destroyed the pipe first (invariant 5) so repeated calls deterministically
// yield ErrBrokenPipe rather than a platform error (spec.md §7).
//
// Write is only meaningful when Options.Input was left empty: supplying
// Input hands stdin-closing duties to Start/flushPendingInput instead
// (spec.md §4.4 step 5), and calling Write after that point is legal but
// competes with no ongoing writer, since the pipe is already drained and
// closed.
func (p *Process) Write(buf []byte) (int, error) {
	if err := p.checkNotInChild(); err != nil {
		return 0, err
	}
	if len(buf) == 0 {
		return 0, nil
	}
	if !p.pipeIn.Valid() {
		return 0, ErrBrokenPipe
	}
	n, err := p.pipeIn.Write(buf)
	if errors.Is(err, ohandle.ErrBrokenPipe) {
		p.destroyStream(StreamIn)
		return n, ErrBrokenPipe
	}
	return n, err
}

// CloseStream closes one of the child's pipes from the parent side
// without tearing down the whole Process, e.g. to signal EOF on stdin
// mid-conversation. Idempotent.
func (p *Process) CloseStream(stream Stream) {
	p.destroyStream(stream)
}

// destroyStream destroys the pipe for stream (invariant 5: "once
// destroyed ... stays invalid until the process is destroyed"). When the
// three streams are merged onto one PTY (ptyMerged), out/err destruction
// invalidates all three Handle copies together, since they alias the
// same underlying file and closing one leaves the others pointing at a
// dead descriptor.
func (p *Process) destroyStream(stream Stream) {
	h := p.pipeFor(stream)
	if h == nil {
		return
	}
	*h = h.Destroy()
	if p.ptyMerged && (stream == StreamOut || stream == StreamErr) {
		p.pipeIn = ohandle.Invalid
		p.pipeOut = ohandle.Invalid
		p.pipeErr = ohandle.Invalid
	}
}
