package reproc

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/codecrafters-io/reproc/internal/mux"
)

// Wait blocks until the child exits or timeout elapses. Calling Wait
// again after a successful Wait is a no-op that returns the cached
// result. timeout may be Infinite or UseDeadline (the Process's own
// deadline set at Start).
func (p *Process) Wait(timeout Timeout) error {
	if err := p.checkNotInChild(); err != nil {
		return err
	}
	if p.status == StatusExited {
		return nil
	}
	if p.status != StatusInProgress {
		return newError(KindInvalidArgument, "Wait called before Start")
	}

	if len(p.pendingInput) > 0 {
		p.flushPendingInput()
	}

	if err := p.waitForExitSignal(timeout); err != nil {
		return err
	}
	return p.reap()
}

// ExitCode returns the collected exit code. Only meaningful once Status
// reports StatusExited; signal deaths are reported as 128+signal
// (SIGTERM=143, SIGKILL=137).
func (p *Process) ExitCode() int {
	return p.exitCode
}

func (p *Process) waitForExitSignal(timeout Timeout) error {
	if !p.pipeExit.Valid() {
		return nil
	}

	horizon := p.resolveTimeout(timeout)
	items := []mux.Item{{Fd: p.pipeExit.Fd(), Interest: mux.Readable, Token: 0}}

	outcome, err := mux.WaitAny(items, horizon)
	if err != nil {
		return otherError(0, err)
	}
	if outcome.TimedOut {
		return ErrTimedOut
	}
	return nil
}

// resolveTimeout turns a Timeout into the time.Duration internal/mux
// expects, substituting the Process's own deadline for UseDeadline.
func (p *Process) resolveTimeout(timeout Timeout) time.Duration {
	switch timeout {
	case Infinite:
		return -1
	case UseDeadline:
		if p.deadline.IsZero() {
			return -1
		}
		remaining := time.Until(p.deadline)
		if remaining < 0 {
			remaining = 0
		}
		return remaining
	default:
		return time.Duration(timeout)
	}
}

// reap collects the child's exit status, tears down the exit-signal
// pipe, and folds any cgroup OOM kill into p.oomKilled, completing the
// transition to StatusExited.
func (p *Process) reap() error {
	p.pipeExit = p.pipeExit.Destroy()

	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return otherError(0, err)
	}

	p.exitCode = exitCodeFromState(p.cmd.ProcessState)

	if p.memLimiter != nil {
		p.oomKilled = p.memLimiter.WasOOMKilled()
		p.memLimiter.Close()
		p.memLimiter = nil
	}

	p.status = StatusExited
	p.cmd = nil // child identity now invalid
	p.logger.Infof("exited with code %d (oom=%v)", p.exitCode, p.oomKilled)
	return nil
}

func exitCodeFromState(state *os.ProcessState) int {
	if state == nil {
		return -1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return signalOffset + int(ws.Signal())
	}
	return state.ExitCode()
}
