package reproc

import (
	"os"
	"time"
)

// RedirectMode is one of the five redirections of spec.md §4.2, plus the
// domain-stack PTY extension documented in SPEC_FULL.md §3.
type RedirectMode int

const (
	// RedirectPipe: parent end of a fresh pipe / child end of that pipe.
	RedirectPipe RedirectMode = iota

	// RedirectInherit: invalid parent handle / a duplicate of the
	// parent's own corresponding stream.
	RedirectInherit

	// RedirectDiscard: invalid parent handle / the null device.
	RedirectDiscard

	// RedirectParent: invalid parent handle / a duplicate of the
	// parent's stream named by Redirect.ParentStream. The special case
	// RedirectParent{ParentStream: StreamOut} on the stderr slot merges
	// stderr onto the stdout pipe's child end (spec.md §4.2).
	RedirectParent

	// RedirectHandle: invalid parent handle / the caller-supplied
	// Redirect.Handle.
	RedirectHandle

	// RedirectPTY is a domain-stack extension (SPEC_FULL.md §3): all
	// three streams share one pseudo-terminal. Only meaningful when set
	// identically on all three of Options.In/Out/Err; see start.go.
	RedirectPTY
)

// Redirect describes one stream's redirection.
type Redirect struct {
	Mode RedirectMode

	// ParentStream is used by RedirectParent.
	ParentStream Stream

	// Handle is used by RedirectHandle.
	Handle *os.File
}

// StopActionKind is one stage of the escalation in spec.md §4.5.
type StopActionKind int

const (
	ActionNoop StopActionKind = iota
	ActionWait
	ActionTerminate
	ActionKill
)

// StopAction pairs an escalation stage with its own timeout.
type StopAction struct {
	Action  StopActionKind
	Timeout Timeout
}

// DefaultStop asks nicely (SIGTERM), gives the process two seconds,
// then makes it so (SIGKILL).
func DefaultStop() [3]StopAction {
	return [3]StopAction{
		{Action: ActionTerminate, Timeout: Timeout(2 * time.Second)},
		{Action: ActionKill, Timeout: Infinite},
		{Action: ActionNoop},
	}
}

// Options configures Start, per the table in spec.md §6.
type Options struct {
	// Environment replaces the child's environment; nil inherits the
	// parent's (via os.Environ()).
	Environment []string

	// WorkingDirectory chdirs the child before exec; "" inherits.
	WorkingDirectory string

	In, Out, Err Redirect

	// Nonblocking is accepted (and loaded by reprocconfig) but Start
	// does not read it: the parent ends of the pipes are left in their
	// default mode whatever its value.
	Nonblocking bool

	// Input is written to stdin before Start returns, then stdin is
	// closed so the child observes EOF (spec.md §4.4 step 5).
	Input []byte

	// Stop is the three-stage escalation Destroy runs if the process
	// is still InProgress; the zero value selects DefaultStop. Explicit
	// Process.Stop calls use the actions passed to them, not this field.
	Stop [3]StopAction

	// Timeout is relative; converted to an absolute Deadline at Start
	// time. Deadline wins if both are set.
	Timeout  time.Duration
	Deadline time.Time

	// MemoryLimitBytes enforces a process-level memory ceiling via a
	// cgroup (Linux only; no-op elsewhere). Zero disables it. Domain
	// extension, SPEC_FULL.md §3.
	MemoryLimitBytes int64

	// Debug turns on lifecycle tracing via internal/tracelog. Ambient
	// addition, SPEC_FULL.md §2.
	Debug bool
}

// normalize fills in defaults and validates argv, per the "Options
// parser" component of spec.md's system overview.
func (o Options) normalize(argv []string) (Options, error) {
	if len(argv) == 0 || argv[0] == "" {
		return o, newError(KindInvalidArgument, "argv must have at least one element naming the program")
	}

	norm := o
	if norm.Stop == ([3]StopAction{}) {
		norm.Stop = DefaultStop()
	}
	if !norm.Deadline.IsZero() {
		// Deadline wins; leave as-is.
	} else if norm.Timeout > 0 {
		norm.Deadline = time.Now().Add(norm.Timeout)
	}
	return norm, nil
}
