package reproc

import (
	"errors"
	"syscall"
)

// Stop runs the three-stage graceful escalation of spec.md §4.5 — each
// stage tries an action, waits up to its own timeout for the process to
// exit, and only escalates to the next stage if it's still running. Stop
// is a no-op once the process has already exited. Returns the collected
// exit code on success, per spec.md §6's stop(Process, actions) ->
// exit_code | error.
func (p *Process) Stop(actions [3]StopAction) (int, error) {
	if err := p.checkNotInChild(); err != nil {
		return 0, err
	}
	if p.status == StatusExited {
		return p.exitCode, nil
	}
	if p.status != StatusInProgress {
		return 0, newError(KindInvalidArgument, "Stop called before Start")
	}

	for _, action := range actions {
		if err := p.applyStopAction(action); err != nil {
			return 0, err
		}
		if action.Action == ActionNoop {
			continue
		}

		err := p.Wait(action.Timeout)
		if err == nil {
			return p.exitCode, nil
		}
		if !IsTimedOut(err) {
			return 0, err
		}
		// Escalate to the next stage.
	}

	return 0, ErrTimedOut
}

func (p *Process) applyStopAction(action StopAction) error {
	switch action.Action {
	case ActionNoop:
		return nil
	case ActionWait:
		return nil
	case ActionTerminate:
		return p.signal(syscall.SIGTERM)
	case ActionKill:
		return p.signal(syscall.SIGKILL)
	default:
		return newErrorf(KindInvalidArgument, "unknown stop action %d", action.Action)
	}
}

// Terminate sends the platform's graceful-stop signal (SIGTERM on Unix).
func (p *Process) Terminate() error {
	if err := p.checkNotInChild(); err != nil {
		return err
	}
	return p.signal(syscall.SIGTERM)
}

// Kill sends the platform's unconditional-stop signal (SIGKILL on Unix).
func (p *Process) Kill() error {
	if err := p.checkNotInChild(); err != nil {
		return err
	}
	return p.signal(syscall.SIGKILL)
}

func (p *Process) signal(sig syscall.Signal) error {
	if p.status != StatusInProgress {
		return nil
	}
	if err := p.cmd.Process.Signal(sig); err != nil {
		return otherError(0, err)
	}
	return nil
}

// IsTimedOut reports whether err is (or wraps) ErrTimedOut, the one
// error Poll/Wait return for an elapsed caller timeout as opposed to a
// per-process DEADLINE event (spec.md §4.7).
func IsTimedOut(err error) bool {
	return errors.Is(err, ErrTimedOut)
}
