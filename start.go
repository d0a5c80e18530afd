package reproc

import (
	"os"
	"os/exec"

	"github.com/codecrafters-io/reproc/internal/cgroupmem"
	"github.com/codecrafters-io/reproc/internal/execpath"
	"github.com/codecrafters-io/reproc/internal/ohandle"
	"github.com/codecrafters-io/reproc/internal/pty"
	"github.com/codecrafters-io/reproc/internal/tracelog"
)

// Start launches argv under the given Options, with each step of the
// launch sequence reversible on failure. Preconditions: p.status ==
// StatusNotStarted.
func (p *Process) Start(argv []string, opts Options) (err error) {
	if p.status != StatusNotStarted {
		return newError(KindInvalidArgument, "Start called on a Process that is not NotStarted")
	}

	norm, err := opts.normalize(argv)
	if err != nil {
		return err
	}

	resolvedPath, err := execpath.Resolve(argv[0])
	if err != nil {
		return newError(KindInvalidArgument, err.Error())
	}
	argv = append([]string{resolvedPath}, argv[1:]...)

	p.logger = tracelog.New(p.id.String()[:8], norm.Debug)
	p.logger.Infof("starting %v", argv)

	if norm.MemoryLimitBytes > 0 {
		p.memLimiter, err = cgroupmem.New(norm.MemoryLimitBytes)
		if err != nil {
			p.logger.Errorf("cgroup setup failed: %v", err)
			return otherError(0, err)
		}
	}

	// Every handle opened below is tracked here so a failure partway
	// through can unwind everything opened so far.
	var opened []ohandle.Handle
	track := func(h ohandle.Handle) ohandle.Handle {
		if h.Valid() {
			opened = append(opened, h)
		}
		return h
	}
	rollback := func() {
		for _, h := range opened {
			h.Destroy()
		}
		p.pipeIn, p.pipeOut, p.pipeErr, p.pipeExit = ohandle.Invalid, ohandle.Invalid, ohandle.Invalid, ohandle.Invalid
		p.ptyMerged = false
		p.pendingInput = nil
		if p.memLimiter != nil {
			p.memLimiter.Close()
			p.memLimiter = nil
		}
	}

	var childIn, childOut, childErr ohandle.Handle

	if isAllPTY(norm) {
		master, slave, perr := pty.Open()
		if perr != nil {
			rollback()
			return otherError(0, perr)
		}
		track(master)
		track(slave)
		p.pipeIn, p.pipeOut, p.pipeErr = master, master, master
		childIn, childOut, childErr = slave, slave, slave
		p.ptyMerged = true
	} else {
		p.pipeIn, childIn, err = resolveRedirect(StreamIn, norm.In, ohandle.Invalid)
		if err != nil {
			rollback()
			return err
		}
		track(p.pipeIn)
		track(childIn)

		p.pipeOut, childOut, err = resolveRedirect(StreamOut, norm.Out, ohandle.Invalid)
		if err != nil {
			rollback()
			return err
		}
		track(p.pipeOut)
		track(childOut)

		p.pipeErr, childErr, err = resolveRedirect(StreamErr, norm.Err, childOut)
		if err != nil {
			rollback()
			return err
		}
		track(p.pipeErr)
		track(childErr)
	}

	exitPipe, err := ohandle.NewPipe()
	if err != nil {
		rollback()
		return otherError(0, err)
	}
	track(exitPipe.Parent)
	track(exitPipe.Child)
	p.pipeExit = exitPipe.Parent

	if len(norm.Input) > 0 && p.pipeIn.Valid() && !p.ptyMerged {
		if serr := ohandle.SetNonblocking(p.pipeIn, true); serr != nil {
			rollback()
			return otherError(0, serr)
		}
		p.pendingInput = norm.Input
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if norm.Environment != nil {
		cmd.Env = norm.Environment
	}
	cmd.Dir = norm.WorkingDirectory
	cmd.Stdin = childIn.File()
	cmd.Stdout = childOut.File()
	cmd.Stderr = childErr.File()
	cmd.ExtraFiles = []*os.File{exitPipe.Child.File()}

	if err := cmd.Start(); err != nil {
		rollback()
		return otherError(0, err)
	}

	// The child end of every pipe (including the exit-signal pipe) is
	// now owned solely by the child process; close the parent's copy so
	// EOF/close propagates correctly.
	childIn.Destroy()
	childOut.Destroy()
	if !p.ptyMerged {
		childErr.Destroy()
	}
	exitPipe.Child.Destroy()

	if p.memLimiter != nil {
		if merr := p.memLimiter.AddProcess(cmd.Process.Pid); merr != nil {
			p.logger.Errorf("cgroup enrollment failed: %v", merr)
		}
	}

	p.cmd = cmd
	p.stop = norm.Stop
	p.deadline = norm.Deadline
	p.status = StatusInProgress

	if len(p.pendingInput) > 0 {
		p.flushPendingInput()
	}

	p.logger.Debugf("pid %d in progress", cmd.Process.Pid)
	return nil
}

// isAllPTY reports whether all three streams request the merged-PTY
// domain extension; mixing RedirectPTY with any other mode is rejected
// by normalize's caller (Start) via this check's else branch falling
// through to the ordinary per-stream path, which then errors on the
// unhandled RedirectPTY case in resolveRedirect.
func isAllPTY(o Options) bool {
	return o.In.Mode == RedirectPTY && o.Out.Mode == RedirectPTY && o.Err.Mode == RedirectPTY
}

// flushPendingInput attempts a single non-blocking write of whatever
// input remains, closing the stdin pipe once fully drained so the child
// observes EOF. Safe to call repeatedly; a caller in the middle of Poll
// or Wait may call this opportunistically to make progress on large
// inputs without the library spinning up a thread of its own.
func (p *Process) flushPendingInput() error {
	for len(p.pendingInput) > 0 {
		n, err := p.pipeIn.Write(p.pendingInput)
		p.pendingInput = p.pendingInput[n:]
		if err != nil {
			if ohandle.IsWouldBlock(err) {
				return nil
			}
			p.pendingInput = nil
			return err
		}
	}
	if p.pipeIn.Valid() {
		p.pipeIn = p.pipeIn.Destroy()
	}
	return nil
}

