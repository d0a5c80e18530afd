// Package reproctest provides test helpers for reproc consumers and for
// reproc's own test suite. They accept the mitchellh/go-testing-interface
// testing.T so these helpers work from both *testing.T and any
// benchmarking/fuzzing harness that implements the same minimal
// interface.
package reproctest

import (
	"errors"
	"io"
	"time"

	"github.com/mitchellh/go-testing-interface"
	"github.com/stretchr/testify/require"

	"github.com/codecrafters-io/reproc"
)

// RunToCompletion starts argv with opts, waits for it to exit within
// timeout, and fails t immediately on any error along the way. Returns
// the Process so the caller can inspect Read/ExitCode.
func RunToCompletion(t testing.T, argv []string, opts reproc.Options, timeout reproc.Timeout) *reproc.Process {
	p := reproc.New()
	require.NoError(t, p.Start(argv, opts))
	require.NoError(t, p.Wait(timeout))
	return p
}

// ReadAll drains a stream until EOF (or ErrBrokenPipe, for a stream
// that is already closed), returning whatever was read. Fails t on any
// other error, or if a non-zero deadline has passed before EOF; the
// deadline is checked between reads, so a blocked Read is not cut short.
func ReadAll(t testing.T, p *reproc.Process, stream reproc.Stream, deadline time.Time) []byte {
	var out []byte
	buf := make([]byte, 4096)
	for {
		if !deadline.IsZero() && time.Now().After(deadline) {
			t.Fatal("ReadAll: deadline exceeded before EOF")
		}
		n, err := p.Read(stream, buf)
		out = append(out, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out
			}
			require.ErrorIs(t, err, reproc.ErrBrokenPipe)
			return out
		}
	}
}

// AssertExitCode runs argv to completion and asserts its exit code.
func AssertExitCode(t testing.T, argv []string, opts reproc.Options, want int) {
	p := RunToCompletion(t, argv, opts, reproc.Timeout(5*time.Second))
	require.Equal(t, want, p.ExitCode())
	require.NoError(t, p.Destroy())
}
