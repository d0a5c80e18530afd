package reproc

import (
	"time"

	"github.com/codecrafters-io/reproc/internal/mux"
)

// Interest is the set of readiness events a caller wants to wait for on
// one Process's one stream, mirroring internal/mux.Interest without
// leaking that package's vocabulary across the boundary (spec.md's
// design note: "the core must not leak either vocabulary").
type Interest uint8

const (
	InterestReadable Interest = 1 << iota
	InterestWritable
)

// Events reports which of an EventSource's interests fired, plus the
// DEADLINE bit spec.md §4.3 requires be distinct from a timeout: a
// per-process deadline elapsing is an event on that source, not a
// TimedOut error from Poll as a whole.
type Events uint8

const (
	EventReadable Events = 1 << iota
	EventWritable
	EventDeadline
)

func (e Events) Has(flag Events) bool { return e&flag != 0 }

// EventSource names one (Process, Stream, Interest) triple to multiplex
// over. Poll does not modify the sources; it reports back through a
// parallel slice of Events, one entry per EventSource.
type EventSource struct {
	Process  *Process
	Stream   Stream
	Interest Interest
}

// Poll implements spec.md §4.3's multiplex wait: it waits for any one of
// several processes' pipes to become ready, for any process's own
// deadline to pass, or for the caller's timeout to elapse — whichever
// comes first. The returned slice has one entry per element of sources,
// reporting the Events observed (zero if none).
//
// Algorithm (spec.md §4.3):
//  1. If sources is empty, return immediately with no error.
//  2. If the earliest process deadline among sources has already
//     passed, set EventDeadline on that process's sources and return
//     success without waiting.
//  3. If every source's pipe is invalid, return ErrBrokenPipe: there is
//     nothing left to wait for.
//  4. Compute the effective horizon: the caller's timeout, clipped to
//     the earliest of any source's own process deadline.
//  5. Delegate to the platform multiplex primitive.
//  6. If the earliest deadline (not the caller's timeout) is what
//     elapsed, set EventDeadline on every source owned by that process
//     and return success, not ErrTimedOut.
//  7. If the caller's timeout elapsed with nothing ready and no deadline
//     due, return ErrTimedOut.
func Poll(sources []EventSource, timeout Timeout) ([]Events, error) {
	if len(sources) == 0 {
		return nil, nil
	}

	events := make([]Events, len(sources))

	items := make([]mux.Item, 0, len(sources))
	anyValid := false
	for i, src := range sources {
		h := src.Process.pipeFor(src.Stream)
		if h == nil || !h.Valid() {
			continue
		}
		anyValid = true
		var interest mux.Interest
		if src.Interest&InterestReadable != 0 {
			interest |= mux.Readable
		}
		if src.Interest&InterestWritable != 0 {
			interest |= mux.Writable
		}
		items = append(items, mux.Item{Fd: h.Fd(), Interest: interest, Token: i})
	}

	earliest, deadlineIndices := earliestDeadline(sources)

	// Step 2: an already-expired deadline short-circuits before any I/O
	// wait at all (spec.md §4.3 step 1) — a ready pipe on the same
	// process must not mask the overdue report as ordinary readiness.
	if !earliest.IsZero() && !earliest.After(time.Now()) {
		for _, i := range deadlineIndices {
			events[i] |= EventDeadline
		}
		return events, nil
	}

	if !anyValid {
		return events, ErrBrokenPipe
	}

	horizon := effectiveHorizon(earliest, timeout)

	outcome, err := mux.WaitAny(items, horizon)
	if err != nil {
		return events, otherError(0, err)
	}

	if outcome.TimedOut {
		if len(deadlineIndices) > 0 && horizonIsDeadline(earliest, timeout) {
			for _, i := range deadlineIndices {
				events[i] |= EventDeadline
			}
			return events, nil
		}
		return events, ErrTimedOut
	}

	for _, r := range outcome.Ready {
		if r.Events&mux.Readable != 0 {
			events[r.Token] |= EventReadable
		}
		if r.Events&mux.Writable != 0 {
			events[r.Token] |= EventWritable
		}
	}
	return events, nil
}

// earliestDeadline finds the earliest per-process deadline among sources
// and the indices of the sources owned by that process, per spec.md §4.3
// step 1's "earliest per-process deadline" language.
func earliestDeadline(sources []EventSource) (time.Time, []int) {
	var earliest time.Time
	var earliestIdx []int

	for i, src := range sources {
		d := src.Process.deadline
		if d.IsZero() {
			continue
		}
		if earliest.IsZero() || d.Before(earliest) {
			earliest = d
			earliestIdx = []int{i}
		} else if d.Equal(earliest) {
			earliestIdx = append(earliestIdx, i)
		}
	}
	return earliest, earliestIdx
}

// effectiveHorizon computes the wait duration to hand to the platform
// primitive: the caller's timeout clipped to the earliest deadline among
// sources, per spec.md §4.3 step 3 (H = min(timeout, time_until(deadline))).
// Callers must have already ruled out an expired deadline.
func effectiveHorizon(earliest time.Time, timeout Timeout) time.Duration {
	callerHorizon := time.Duration(-1)
	switch {
	case timeout == Infinite:
		callerHorizon = -1
	case timeout >= 0:
		callerHorizon = time.Duration(timeout)
	}

	if earliest.IsZero() {
		return callerHorizon
	}

	untilDeadline := time.Until(earliest)
	if callerHorizon < 0 || untilDeadline < callerHorizon {
		return untilDeadline
	}
	return callerHorizon
}

// horizonIsDeadline re-derives, after the wait returns, whether it was
// the deadline (rather than the caller's own timeout coincidentally
// matching it) that bounded the wait.
func horizonIsDeadline(earliest time.Time, timeout Timeout) bool {
	if earliest.IsZero() {
		return false
	}
	if timeout == Infinite {
		return true
	}
	return !earliest.After(time.Now())
}
