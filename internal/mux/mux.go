// Package mux implements the platform wait primitive behind reproc's
// multiplex wait (spec.md §4.3): a poll-like call over a heterogeneous
// set of pipe file descriptors, each tagged with the readiness it's
// interested in, bounded by a single timeout. The core package treats
// this as a black box — per spec.md's design notes, "the core must not
// leak either vocabulary" of poll(2) or Windows wait objects.
package mux

import "time"

// Interest bits, one per stream direction a caller can wait on.
const (
	Readable Interest = 1 << iota
	Writable
)

type Interest uint8

// Item is one fd-and-interest pair to wait on, tagged with an opaque
// Token the caller uses to map the returned Events back to its own
// bookkeeping (reproc uses it to carry the EventSource index).
type Item struct {
	Fd       uintptr
	Interest Interest
	Token    int
}

// Outcome is the result of one WaitAny call.
type Outcome struct {
	// Ready holds one entry per Item that became ready, in no
	// guaranteed order (spec.md §5: "no ordering between readiness
	// reports is guaranteed").
	Ready []ReadyItem

	// TimedOut is true when the horizon elapsed with nothing ready.
	TimedOut bool
}

// ReadyItem reports which of an Item's interests fired.
type ReadyItem struct {
	Token  int
	Events Interest
}

// WaitAny blocks until at least one item is ready, the timeout elapses,
// or an error occurs. A negative timeout blocks indefinitely.
func WaitAny(items []Item, timeout time.Duration) (Outcome, error) {
	return waitAny(items, timeout)
}
