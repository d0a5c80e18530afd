// Package reproc implements a cross-platform child-process supervision
// core: redirected-stdio process launch, a multiplexed wait over many
// processes' pipes at once, and a three-stage graceful stop escalation.
// See spec.md and SPEC_FULL.md for the full design.
package reproc

import (
	"os/exec"
	"time"

	"github.com/google/uuid"

	"github.com/codecrafters-io/reproc/internal/cgroupmem"
	"github.com/codecrafters-io/reproc/internal/ohandle"
	"github.com/codecrafters-io/reproc/internal/tracelog"
)

// Process is the central entity of the library: four pipes and a child
// identity owned by a single downward ownership tree (spec.md §9 — "no
// cycles, no weak references needed").
type Process struct {
	id     uuid.UUID
	status Status

	// cmd is non-nil exactly when the child identity is valid (spec.md
	// invariant 2): set at the end of a successful Start, cleared by
	// Wait once the exit status is collected.
	cmd *exec.Cmd

	pipeIn, pipeOut, pipeErr ohandle.Handle
	pipeExit                 ohandle.Handle

	ptyMerged bool // true when In/Out/Err all share one RedirectPTY handle

	// pendingInput holds whatever Options.Input hasn't yet been written
	// to pipeIn; flushPendingInput (start.go) drains it opportunistically
	// without the library spinning up a thread of its own.
	pendingInput []byte

	exitCode int

	stop     [3]StopAction
	deadline time.Time // zero means Infinite

	memLimiter *cgroupmem.Limiter
	oomKilled  bool

	logger *tracelog.Logger
}

// New returns a Process in StatusNotStarted, per spec.md §3's lifecycle.
func New() *Process {
	return &Process{
		id:     uuid.New(),
		status: StatusNotStarted,
	}
}

// Status reports the current state-machine tag.
func (p *Process) Status() Status {
	return p.status
}

// ID is the process's correlation id, used in tracelog output so that
// several Processes tracked by one Poll call can be told apart in logs
// (SPEC_FULL.md §3 domain-stack addition).
func (p *Process) ID() uuid.UUID {
	return p.id
}

// Deadline returns the absolute overdue time, or the zero time if none
// was set (spec.md's Infinite deadline).
func (p *Process) Deadline() time.Time {
	return p.deadline
}

// WasOOMKilled reports whether the configured memory limit killed this
// process (SPEC_FULL.md §3 — polled, never delivered as a callback, per
// spec.md's no-signals/no-callbacks non-goal).
func (p *Process) WasOOMKilled() bool {
	return p.oomKilled
}

func (p *Process) checkNotInChild() error {
	if p.status == StatusInChild {
		return newError(KindInvalidArgument, "operation not legal on a Process in the post-fork child branch")
	}
	return nil
}

func (p *Process) pipeFor(stream Stream) *ohandle.Handle {
	switch stream {
	case StreamIn:
		return &p.pipeIn
	case StreamOut:
		return &p.pipeOut
	case StreamErr:
		return &p.pipeErr
	default:
		return nil
	}
}
