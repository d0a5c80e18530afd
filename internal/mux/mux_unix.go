//go:build unix

package mux

import (
	"time"

	"golang.org/x/sys/unix"
)

// waitAny is the Unix backend: a single poll(2) call over the fd set,
// masked per item by the interest it registered. This is the "hard
// engineering" piece spec.md §4.3 calls the multiplex wait: the core
// above only ever sees Item/Outcome, never unix.PollFd.
func waitAny(items []Item, timeout time.Duration) (Outcome, error) {
	if len(items) == 0 {
		return Outcome{}, nil
	}

	pollFds := make([]unix.PollFd, len(items))
	for i, it := range items {
		var events int16
		if it.Interest&Readable != 0 {
			events |= unix.POLLIN
		}
		if it.Interest&Writable != 0 {
			events |= unix.POLLOUT
		}
		pollFds[i] = unix.PollFd{Fd: int32(it.Fd), Events: events}
	}

	timeoutMs := -1
	if timeout >= 0 {
		timeoutMs = int(timeout.Milliseconds())
	}

	n, err := retryingPoll(pollFds, timeoutMs)
	if err != nil {
		return Outcome{}, err
	}
	if n == 0 {
		return Outcome{TimedOut: true}, nil
	}

	out := Outcome{Ready: make([]ReadyItem, 0, n)}
	for i, pfd := range pollFds {
		if pfd.Revents == 0 {
			continue
		}
		var ev Interest
		if pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			ev |= Readable
		}
		if pfd.Revents&(unix.POLLOUT|unix.POLLERR) != 0 {
			ev |= Writable
		}
		if ev == 0 {
			continue
		}
		out.Ready = append(out.Ready, ReadyItem{Token: items[i].Token, Events: ev})
	}
	return out, nil
}

// retryingPoll retries on EINTR, the one error poll(2) callers must
// never surface to their own caller as a real failure.
func retryingPoll(fds []unix.PollFd, timeoutMs int) (int, error) {
	for {
		n, err := unix.Poll(fds, timeoutMs)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, otherErr(err)
		}
		return n, nil
	}
}
