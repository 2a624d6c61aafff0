package tracing

import (
	"sync"

	"github.com/sarchlab/arqsim/sim"
)

type transmission struct {
	start, end sim.VTimeInSec
}

// LinkBusyTracer is a hook that measures how long the sender keeps the link
// busy putting frames on the wire. A transmission starts with a "Start to
// send frame" record and ends with the next "Frame completely sent" record of
// the same sequence number. Overlapping transmissions are only counted once.
type LinkBusyTracer struct {
	lock     sync.Mutex
	inflight map[int]sim.VTimeInSec
	done     []transmission
	busyTime sim.VTimeInSec
	lastEnd  sim.VTimeInSec
}

// NewLinkBusyTracer creates a new LinkBusyTracer.
func NewLinkBusyTracer() *LinkBusyTracer {
	return &LinkBusyTracer{
		inflight: make(map[int]sim.VTimeInSec),
	}
}

// Func handles the records.
func (t *LinkBusyTracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosRecord {
		return
	}

	rec, ok := ctx.Item.(Record)
	if !ok || rec.Entity != Sender {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	switch rec.Action {
	case ActionStartSend:
		t.inflight[rec.SeqNum] = rec.Time
	case ActionFrameSent:
		start, found := t.inflight[rec.SeqNum]
		if !found {
			return
		}

		delete(t.inflight, rec.SeqNum)
		t.done = append(t.done, transmission{start: start, end: rec.Time})
		t.collapse()
	}
}

// collapse folds the completed transmissions that start before any pending
// one into the busy time.
func (t *LinkBusyTracer) collapse() {
	limit, pending := t.earliestPendingStart()

	kept := t.done[:0]

	for _, tr := range t.done {
		if pending && tr.start > limit {
			kept = append(kept, tr)
			continue
		}

		t.add(tr)
	}

	t.done = kept
}

func (t *LinkBusyTracer) add(tr transmission) {
	start := tr.start
	if start < t.lastEnd {
		start = t.lastEnd
	}

	if tr.end > start {
		t.busyTime += tr.end - start
	}

	if tr.end > t.lastEnd {
		t.lastEnd = tr.end
	}
}

func (t *LinkBusyTracer) earliestPendingStart() (sim.VTimeInSec, bool) {
	var earliest sim.VTimeInSec

	found := false

	for _, start := range t.inflight {
		if !found || start < earliest {
			earliest = start
			found = true
		}
	}

	return earliest, found
}

// BusyTime returns the time that the link has spent carrying frames.
func (t *LinkBusyTracer) BusyTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.busyTime
}

// Utilization returns the busy time as a fraction of the given duration.
func (t *LinkBusyTracer) Utilization(duration sim.VTimeInSec) float64 {
	if duration <= 0 {
		return 0
	}

	return float64(t.BusyTime() / duration)
}
