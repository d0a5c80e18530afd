package reproc

// Destroy releases every resource still held by p, per spec.md §4.6. If
// the process is still running, it first runs the configured Stop
// escalation (or DefaultStop if none was set). If every stage of that
// escalation times out, Destroy releases the handles anyway and the
// child may still be running. Safe to call more than once and on a
// Process that was never started.
func (p *Process) Destroy() error {
	if p.status == StatusInProgress {
		stop := p.stop
		if stop == ([3]StopAction{}) {
			stop = DefaultStop()
		}
		if _, err := p.Stop(stop); err != nil && !IsTimedOut(err) {
			p.destroyHandles()
			return err
		}
	}

	p.destroyHandles()
	return nil
}

func (p *Process) destroyHandles() {
	// When ptyMerged, pipeIn/pipeOut/pipeErr are copies of the same
	// Handle; destroying each is a harmless repeat close (Handle.Destroy
	// is idempotent).
	p.pipeIn = p.pipeIn.Destroy()
	p.pipeOut = p.pipeOut.Destroy()
	p.pipeErr = p.pipeErr.Destroy()
	p.pipeExit = p.pipeExit.Destroy()

	if p.memLimiter != nil {
		p.memLimiter.Close()
		p.memLimiter = nil
	}

	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Release()
	}
	p.cmd = nil
	p.status = StatusExited
}
