package reproc

import (
	"os"

	"github.com/codecrafters-io/reproc/internal/ohandle"
)

// resolveRedirect implements the redirect policy table of spec.md §4.2
// for one stream, given the already-resolved stdout child handle (used
// only by the stderr slot's PARENT(stdout) merge recipe).
func resolveRedirect(stream Stream, r Redirect, stdoutChild ohandle.Handle) (parent, child ohandle.Handle, err error) {
	switch r.Mode {
	case RedirectPipe:
		var p ohandle.Pipe
		if stream == StreamIn {
			p, err = ohandle.NewInputPipe()
		} else {
			p, err = ohandle.NewPipe()
		}
		if err != nil {
			return ohandle.Invalid, ohandle.Invalid, err
		}
		return p.Parent, p.Child, nil

	case RedirectInherit:
		// Duplicated so that Start closing the child end after launch
		// leaves the parent's own stream open.
		dup, derr := duplicateHandle(inheritedStream(stream))
		if derr != nil {
			return ohandle.Invalid, ohandle.Invalid, derr
		}
		return ohandle.Invalid, dup, nil

	case RedirectDiscard:
		h, derr := nullDeviceHandle(stream)
		if derr != nil {
			return ohandle.Invalid, ohandle.Invalid, derr
		}
		return ohandle.Invalid, h, nil

	case RedirectParent:
		// Special composition (spec.md §4.2): stderr routed onto the
		// stdout pipe's child end for stream merging.
		if stream == StreamErr && r.ParentStream == StreamOut && stdoutChild.Valid() {
			dup, derr := duplicateHandle(stdoutChild)
			if derr != nil {
				return ohandle.Invalid, ohandle.Invalid, derr
			}
			return ohandle.Invalid, dup, nil
		}
		dup, derr := duplicateHandle(inheritedStream(r.ParentStream))
		if derr != nil {
			return ohandle.Invalid, ohandle.Invalid, derr
		}
		return ohandle.Invalid, dup, nil

	case RedirectHandle:
		if r.Handle == nil {
			return ohandle.Invalid, ohandle.Invalid, newError(KindInvalidArgument, "RedirectHandle requires a non-nil Handle")
		}
		return ohandle.Invalid, ohandle.FromFile(r.Handle), nil

	default:
		return ohandle.Invalid, ohandle.Invalid, newErrorf(KindInvalidArgument, "unknown redirect mode %d for stream %s", r.Mode, stream)
	}
}

func inheritedStream(stream Stream) ohandle.Handle {
	switch stream {
	case StreamIn:
		return ohandle.FromFile(os.Stdin)
	case StreamOut:
		return ohandle.FromFile(os.Stdout)
	case StreamErr:
		return ohandle.FromFile(os.Stderr)
	default:
		return ohandle.Invalid
	}
}

func nullDeviceHandle(stream Stream) (ohandle.Handle, error) {
	flag := os.O_WRONLY
	if stream == StreamIn {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(os.DevNull, flag, 0)
	if err != nil {
		return ohandle.Invalid, otherError(0, err)
	}
	return ohandle.FromFile(f), nil
}

func duplicateHandle(h ohandle.Handle) (ohandle.Handle, error) {
	dup, err := dupFile(h.File())
	if err != nil {
		return ohandle.Invalid, otherError(0, err)
	}
	return ohandle.FromFile(dup), nil
}
