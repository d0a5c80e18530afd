package reproc_test

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecrafters-io/reproc"
	"github.com/codecrafters-io/reproc/internal/randpayload"
)

func readAll(t *testing.T, p *reproc.Process, stream reproc.Stream) []byte {
	t.Helper()
	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := p.Read(stream, buf)
		out = append(out, buf[:n]...)
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			return out
		}
	}
}

func TestStartAndWaitExitCode(t *testing.T) {
	p := reproc.New()
	err := p.Start([]string{"./test_helpers/exit_with.sh", "3"}, reproc.Options{})
	require.NoError(t, err)

	require.NoError(t, p.Wait(reproc.Infinite))
	assert.Equal(t, reproc.StatusExited, p.Status())
	assert.Equal(t, 3, p.ExitCode())
	require.NoError(t, p.Destroy())
}

func TestStdoutCapture(t *testing.T) {
	p := reproc.New()
	require.NoError(t, p.Start([]string{"./test_helpers/echo_stdout.sh", "hey"}, reproc.Options{}))

	out := readAll(t, p, reproc.StreamOut)
	require.NoError(t, p.Wait(reproc.Infinite))

	assert.Equal(t, "hey\n", string(out))
	require.NoError(t, p.Destroy())
}

func TestStderrCapture(t *testing.T) {
	p := reproc.New()
	require.NoError(t, p.Start([]string{"./test_helpers/echo_stderr.sh", "hey"}, reproc.Options{}))

	out := readAll(t, p, reproc.StreamErr)
	require.NoError(t, p.Wait(reproc.Infinite))

	assert.Equal(t, "hey\n", string(out))
	require.NoError(t, p.Destroy())
}

func TestMergedStderrOntoStdout(t *testing.T) {
	p := reproc.New()
	opts := reproc.Options{
		Err: reproc.Redirect{Mode: reproc.RedirectParent, ParentStream: reproc.StreamOut},
	}
	require.NoError(t, p.Start([]string{"./test_helpers/echo_both.sh", "x"}, opts))

	out := readAll(t, p, reproc.StreamOut)
	require.NoError(t, p.Wait(reproc.Infinite))

	assert.Contains(t, string(out), "out: x\n")
	assert.Contains(t, string(out), "err: x\n")
	require.NoError(t, p.Destroy())
}

func TestDiscardRedirect(t *testing.T) {
	p := reproc.New()
	opts := reproc.Options{
		Out: reproc.Redirect{Mode: reproc.RedirectDiscard},
	}
	require.NoError(t, p.Start([]string{"./test_helpers/echo_stdout.sh", "swallowed"}, opts))
	require.NoError(t, p.Wait(reproc.Infinite))
	assert.Equal(t, 0, p.ExitCode())
	require.NoError(t, p.Destroy())
}

func TestWriteStdinThenEOF(t *testing.T) {
	p := reproc.New()
	require.NoError(t, p.Start([]string{"./test_helpers/cat.sh"}, reproc.Options{}))

	_, err := p.Write([]byte("roundtrip"))
	require.NoError(t, err)
	p.CloseStream(reproc.StreamIn)

	out := readAll(t, p, reproc.StreamOut)
	require.NoError(t, p.Wait(reproc.Infinite))

	assert.Equal(t, "roundtrip", string(out))
	require.NoError(t, p.Destroy())
}

func TestOptionsInput(t *testing.T) {
	p := reproc.New()
	opts := reproc.Options{Input: []byte("preloaded")}
	require.NoError(t, p.Start([]string{"./test_helpers/cat.sh"}, opts))

	out := readAll(t, p, reproc.StreamOut)
	require.NoError(t, p.Wait(reproc.Infinite))

	assert.Equal(t, "preloaded", string(out))
	require.NoError(t, p.Destroy())
}

// TestRoundTripRandomPayloads exercises spec.md §8's round-trip property
// ("for any payload p: writing p to stdin, closing stdin, draining
// stdout of an echo-to-stdout child yields exactly p") over several
// randomly sized payloads instead of one fixed one.
func TestRoundTripRandomPayloads(t *testing.T) {
	for _, size := range randpayload.Sizes(1, 64*1024, 5) {
		payload := randpayload.Bytes(size)

		p := reproc.New()
		require.NoError(t, p.Start([]string{"./test_helpers/cat.sh"}, reproc.Options{}))

		_, err := p.Write(payload)
		require.NoError(t, err)
		p.CloseStream(reproc.StreamIn)

		out := readAll(t, p, reproc.StreamOut)
		require.NoError(t, p.Wait(reproc.Infinite))

		assert.Equal(t, payload, out, "round trip mismatch for payload of size %d", size)
		require.NoError(t, p.Destroy())
	}
}

func TestWaitTimesOut(t *testing.T) {
	p := reproc.New()
	require.NoError(t, p.Start([]string{"./test_helpers/sleep_for.sh", "2"}, reproc.Options{}))

	err := p.Wait(reproc.Timeout(10 * time.Millisecond))
	assert.True(t, reproc.IsTimedOut(err))
	assert.Equal(t, reproc.StatusInProgress, p.Status())

	require.NoError(t, p.Destroy())
}

func TestKill(t *testing.T) {
	p := reproc.New()
	require.NoError(t, p.Start([]string{"./test_helpers/sleep_for.sh", "60"}, reproc.Options{}))

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, p.Kill())
	require.NoError(t, p.Wait(reproc.Infinite))

	assert.Equal(t, reproc.SIGKILL, p.ExitCode())
	require.NoError(t, p.Destroy())
}

func TestStopEscalatesToKillWhenSigtermIgnored(t *testing.T) {
	p := reproc.New()
	require.NoError(t, p.Start([]string{"./test_helpers/ignore_sigterm.sh"}, reproc.Options{}))

	time.Sleep(50 * time.Millisecond)

	stop := [3]reproc.StopAction{
		{Action: reproc.ActionTerminate, Timeout: reproc.Timeout(100 * time.Millisecond)},
		{Action: reproc.ActionKill, Timeout: reproc.Timeout(2 * time.Second)},
		{Action: reproc.ActionNoop},
	}
	code, err := p.Stop(stop)
	require.NoError(t, err)

	assert.Equal(t, reproc.StatusExited, p.Status())
	assert.Equal(t, reproc.SIGKILL, code)
	assert.Equal(t, reproc.SIGKILL, p.ExitCode())
	require.NoError(t, p.Destroy())
}

func TestStartRejectsEmptyArgv(t *testing.T) {
	p := reproc.New()
	err := p.Start(nil, reproc.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, reproc.ErrInvalidArgument)
}

func TestDestroyBeforeStartIsNoop(t *testing.T) {
	p := reproc.New()
	require.NoError(t, p.Destroy())
}

func TestPollReportsReadable(t *testing.T) {
	p := reproc.New()
	require.NoError(t, p.Start([]string{"./test_helpers/echo_stdout.sh", "poll-me"}, reproc.Options{}))
	defer p.Destroy()

	sources := []reproc.EventSource{
		{Process: p, Stream: reproc.StreamOut, Interest: reproc.InterestReadable},
	}
	events, err := reproc.Poll(sources, reproc.Timeout(2*time.Second))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Has(reproc.EventReadable))

	require.NoError(t, p.Wait(reproc.Infinite))
}

func TestPollTimesOut(t *testing.T) {
	p := reproc.New()
	require.NoError(t, p.Start([]string{"./test_helpers/sleep_for.sh", "2"}, reproc.Options{}))
	defer p.Destroy()

	sources := []reproc.EventSource{
		{Process: p, Stream: reproc.StreamOut, Interest: reproc.InterestReadable},
	}
	_, err := reproc.Poll(sources, reproc.Timeout(20*time.Millisecond))
	assert.True(t, reproc.IsTimedOut(err))
}
