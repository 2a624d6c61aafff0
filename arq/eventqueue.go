package arq

import (
	"container/heap"

	"github.com/sarchlab/arqsim/sim"
)

// AllSeqs selects every sequence number in RemoveTimeouts.
const AllSeqs = -1

// EventQueue holds the pending events of a run, ordered by time. Same-time
// events are ordered by kind, then events added with AddFront (the latest
// first), then by insertion order.
//
// Link occupancy is derived from the queue content: the link is busy until
// the latest pending TRANS_FRAME_END.
type EventQueue struct {
	events    eventHeap
	parked    []Event
	nextOrder uint64
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue() *EventQueue {
	q := new(EventQueue)
	q.events = make([]Event, 0)
	heap.Init(&q.events)
	return q
}

// Add inserts an event.
func (q *EventQueue) Add(evt Event) {
	b := evt.base()
	if b.order == 0 {
		b.order = q.newOrder()
	}

	heap.Push(&q.events, evt)
}

// AddFront inserts an event ahead of the same-time events of its kind.
func (q *EventQueue) AddFront(evt Event) {
	b := evt.base()
	b.order = q.newOrder()
	b.front = true

	heap.Push(&q.events, evt)
}

func (q *EventQueue) newOrder() uint64 {
	q.nextOrder++
	return q.nextOrder
}

// Next removes and returns the next event to happen. It returns false when no
// event can be processed anymore, which terminates a run.
func (q *EventQueue) Next() (Event, bool) {
	if q.events.Len() == 0 {
		return nil, false
	}

	return heap.Pop(&q.events).(Event), true
}

// Peek returns the next event without removing it.
func (q *EventQueue) Peek() (Event, bool) {
	if q.events.Len() == 0 {
		return nil, false
	}

	return q.events[0], true
}

// Len returns the number of pending events, parked ones included.
func (q *EventQueue) Len() int {
	return q.events.Len() + len(q.parked)
}

// NumParked returns the number of parked send events.
func (q *EventQueue) NumParked() int {
	return len(q.parked)
}

// Requeue puts an event back at a later time, keeping its position among
// same-time events.
func (q *EventQueue) Requeue(evt Event, t sim.VTimeInSec) {
	evt.base().time = t
	q.Add(evt)
}

// Park moves a send event to the back of the queue, where it waits until a
// call to RebasePendingSendsTo releases it.
func (q *EventQueue) Park(evt *SendFrameEvent) {
	b := evt.base()
	if b.order == 0 {
		b.order = q.newOrder()
	}

	q.parked = append(q.parked, evt)
}

// RemoveTimeouts purges the pending timeouts of a sequence number, or of all
// sequence numbers when seq is AllSeqs. It returns the number of events
// removed.
func (q *EventQueue) RemoveTimeouts(seq int) int {
	kept := q.events[:0]
	removed := 0

	for _, evt := range q.events {
		if evt.Kind() == KindTimeout && (seq == AllSeqs || evt.SeqNum() == seq) {
			removed++
			continue
		}

		kept = append(kept, evt)
	}

	for i := len(kept); i < len(q.events); i++ {
		q.events[i] = nil
	}

	q.events = kept
	heap.Init(&q.events)

	return removed
}

// LinkFreeAt returns the time the latest pending frame transmission ends. It
// returns false if no frame is being transmitted.
func (q *EventQueue) LinkFreeAt() (sim.VTimeInSec, bool) {
	var (
		t    sim.VTimeInSec
		busy bool
	)

	for _, evt := range q.events {
		if evt.Kind() != KindTransFrameEnd {
			continue
		}

		if !busy || evt.Time() > t {
			t = evt.Time()
			busy = true
		}
	}

	return t, busy
}

// RebasePendingSends delays the pending send events so that none of them
// starts before the link becomes free. Events are never moved earlier.
func (q *EventQueue) RebasePendingSends() {
	t, busy := q.LinkFreeAt()
	if !busy {
		return
	}

	changed := false
	for _, evt := range q.events {
		if evt.Kind() == KindSendFrame && evt.Time() < t {
			evt.base().time = t
			changed = true
		}
	}

	if changed {
		heap.Init(&q.events)
	}
}

// RebasePendingSendsTo sets the time of every pending send event to t. Parked
// send events are released back into the queue.
func (q *EventQueue) RebasePendingSendsTo(t sim.VTimeInSec) {
	for _, evt := range q.events {
		if evt.Kind() == KindSendFrame {
			evt.base().time = t
		}
	}

	for _, evt := range q.parked {
		evt.base().time = t
		q.events = append(q.events, evt)
	}

	q.parked = nil

	heap.Init(&q.events)
}

type eventHeap []Event

// Len returns the length of the event queue
func (h eventHeap) Len() int {
	return len(h)
}

// Less determines the order between two events. Less returns true if the i-th
// event happens before the j-th event.
func (h eventHeap) Less(i, j int) bool {
	a, b := h[i].base(), h[j].base()

	if a.time != b.time {
		return a.time < b.time
	}

	ka, kb := h[i].Kind(), h[j].Kind()
	if ka != kb {
		return ka < kb
	}

	if a.front != b.front {
		return a.front
	}

	if a.front {
		return a.order > b.order
	}

	return a.order < b.order
}

// Swap changes the position of two events in the event queue
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Push adds an event into the event queue
func (h *eventHeap) Push(x interface{}) {
	event := x.(Event)
	*h = append(*h, event)
}

// Pop removes and returns the next event to happen
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	event := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return event
}
