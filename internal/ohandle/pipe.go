package ohandle

import "os"

// Pipe is a Handle pair produced by a single pipe_init call: parent is
// kept by the library, child is inherited by the launched process and
// closed in the parent immediately after launch (invariant §3: "the
// child end is closed in the parent").
type Pipe struct {
	Parent Handle
	Child  Handle
}

// NewPipe creates a connected (parent, child) pair. Mirrors the
// teacher's per-stream cmd.StdinPipe()/StdoutPipe()/StderrPipe() helpers
// (executable/stdio_handler/pipe_trio_stdio_handler.go) but returns both
// ends explicitly instead of handing the child end to os/exec, so the
// library — not the exec package — owns the child-close-after-launch
// step required by the redirect policy's PARENT(stdout) merge recipe.
func NewPipe() (Pipe, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return Pipe{}, otherOSError(err)
	}
	// r is the end that will be read; child writes, parent reads.
	return Pipe{Parent: FromFile(r), Child: FromFile(w)}, nil
}

// NewInputPipe is NewPipe with the roles reversed: parent writes, child
// reads. Used for the stdin redirect.
func NewInputPipe() (Pipe, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return Pipe{}, otherOSError(err)
	}
	return Pipe{Parent: FromFile(w), Child: FromFile(r)}, nil
}

// Destroy tears down both ends and returns the zero Pipe.
func (p Pipe) Destroy() Pipe {
	p.Parent.Destroy()
	p.Child.Destroy()
	return Pipe{}
}

// DestroyChild closes only the child end, as done by the launcher
// immediately after a successful (or failed) spawn — see spec.md §4.4
// step: "the child-side stdio and exit handles are closed in the parent
// at the end".
func (p *Pipe) DestroyChild() {
	p.Child = p.Child.Destroy()
}

// DestroyParent closes only the parent end.
func (p *Pipe) DestroyParent() {
	p.Parent = p.Parent.Destroy()
}
