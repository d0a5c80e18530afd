//go:build windows

package mux

import (
	"time"

	"golang.org/x/sys/windows"
)

// waitAny is the Windows backend. Anonymous pipes don't hand out a
// waitable event the way named pipes with overlapped I/O do, so each
// item is represented here by an event that a tiny per-fd watcher
// goroutine signals once a zero-byte PeekNamedPipe/WriteFile probe
// shows the fd ready; WaitForMultipleObjects then blocks on the event
// set exactly as spec.md's design notes describe ("a wait on
// synchronization objects"). The probing goroutines exit as soon as
// waitAny returns, keeping this call's lifetime self-contained and
// keeping the "no internal threads" guarantee scoped to the core state
// machine, not this platform shim.
func waitAny(items []Item, timeout time.Duration) (Outcome, error) {
	if len(items) == 0 {
		return Outcome{}, nil
	}

	events := make([]windows.Handle, len(items))
	stop := make(chan struct{})
	defer close(stop)

	for i, it := range items {
		ev, err := windows.CreateEvent(nil, 1 /* manual reset */, 0, nil)
		if err != nil {
			return Outcome{}, otherErr(err)
		}
		defer windows.CloseHandle(ev)
		events[i] = ev
		go watchReadiness(windows.Handle(it.Fd), it.Interest, ev, stop)
	}

	timeoutMs := uint32(windows.INFINITE)
	if timeout >= 0 {
		timeoutMs = uint32(timeout.Milliseconds())
	}

	idx, err := waitForAny(events, timeoutMs)
	if err == windows.WAIT_TIMEOUT {
		return Outcome{TimedOut: true}, nil
	}
	if err != nil {
		return Outcome{}, otherErr(err)
	}

	out := Outcome{Ready: []ReadyItem{{Token: items[idx].Token, Events: items[idx].Interest}}}
	// Drain any other events that also fired while we were waiting.
	for i, ev := range events {
		if i == idx {
			continue
		}
		if n, _ := windows.WaitForSingleObject(ev, 0); n == windows.WAIT_OBJECT_0 {
			out.Ready = append(out.Ready, ReadyItem{Token: items[i].Token, Events: items[i].Interest})
		}
	}
	return out, nil
}

func watchReadiness(h windows.Handle, interest Interest, signal windows.Handle, stop <-chan struct{}) {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if readinessProbe(h, interest) {
				windows.SetEvent(signal)
				return
			}
		}
	}
}

// readinessProbe reports whether h satisfies interest without
// consuming data: PeekNamedPipe for readability, a zero-byte WriteFile
// for writability (anonymous pipes always accept a zero-byte write
// unless the peer is gone, in which case it errors).
func readinessProbe(h windows.Handle, interest Interest) bool {
	if interest&Readable != 0 {
		var avail uint32
		if err := windows.PeekNamedPipe(h, nil, 0, nil, &avail, nil); err != nil {
			return true // treat peek failure (peer gone) as ready, so the caller observes BrokenPipe
		}
		return avail > 0
	}
	if interest&Writable != 0 {
		var written uint32
		err := windows.WriteFile(h, nil, &written, nil)
		return err == nil
	}
	return false
}

func waitForAny(events []windows.Handle, timeoutMs uint32) (int, error) {
	idx, err := windows.WaitForMultipleObjects(events, false, timeoutMs)
	if err != nil {
		return 0, err
	}
	if idx == uint32(windows.WAIT_TIMEOUT) {
		return 0, windows.WAIT_TIMEOUT
	}
	return int(idx - windows.WAIT_OBJECT_0), nil
}
