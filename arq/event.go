package arq

import (
	"fmt"

	"github.com/sarchlab/arqsim/sim"
)

// An Event is something that happens on the link at a certain virtual time.
// The set of events is closed: every concrete type is defined in this file.
type Event interface {
	sim.Event

	// Kind returns the kind of the event, which also decides the order of
	// same-time events.
	Kind() Kind

	// SeqNum returns the sequence number the event is about.
	SeqNum() int

	base() *EventBase
}

// EventBase provides the fields shared by all the events.
type EventBase struct {
	time   sim.VTimeInSec
	seqNum int

	// Queue bookkeeping. order is assigned on the first insertion and kept
	// when the event is retimed or parked.
	order uint64
	front bool
}

// Time returns the time that the event is going to happen.
func (e *EventBase) Time() sim.VTimeInSec {
	return e.time
}

// SeqNum returns the sequence number of the event.
func (e *EventBase) SeqNum() int {
	return e.seqNum
}

func (e *EventBase) base() *EventBase {
	return e
}

// FrameEventBase is the base of sender-side events, which also know the
// 0-based index of the frame they are about.
type FrameEventBase struct {
	EventBase

	Frame int
}

func (e *FrameEventBase) describe(k Kind) string {
	return fmt.Sprintf("%s seq=%d frame=%d", k, e.seqNum, e.Frame)
}

func (e *EventBase) describe(k Kind) string {
	return fmt.Sprintf("%s seq=%d", k, e.seqNum)
}

// SendFrameEvent asks the sender to put a frame on the link.
type SendFrameEvent struct {
	FrameEventBase
}

// NewSendFrameEvent creates a SendFrameEvent.
func NewSendFrameEvent(t sim.VTimeInSec, seqNum, frame int) *SendFrameEvent {
	e := &SendFrameEvent{}
	e.time, e.seqNum, e.Frame = t, seqNum, frame
	return e
}

// Kind returns KindSendFrame.
func (e *SendFrameEvent) Kind() Kind { return KindSendFrame }

func (e *SendFrameEvent) String() string { return e.describe(e.Kind()) }

// TransFrameEndEvent marks the end of the transmission of a frame.
type TransFrameEndEvent struct {
	FrameEventBase
}

// NewTransFrameEndEvent creates a TransFrameEndEvent.
func NewTransFrameEndEvent(
	t sim.VTimeInSec,
	seqNum, frame int,
) *TransFrameEndEvent {
	e := &TransFrameEndEvent{}
	e.time, e.seqNum, e.Frame = t, seqNum, frame
	return e
}

// Kind returns KindTransFrameEnd.
func (e *TransFrameEndEvent) Kind() Kind { return KindTransFrameEnd }

func (e *TransFrameEndEvent) String() string { return e.describe(e.Kind()) }

// TimeoutEvent fires when a frame has not been acknowledged in time.
type TimeoutEvent struct {
	FrameEventBase
}

// NewTimeoutEvent creates a TimeoutEvent.
func NewTimeoutEvent(t sim.VTimeInSec, seqNum, frame int) *TimeoutEvent {
	e := &TimeoutEvent{}
	e.time, e.seqNum, e.Frame = t, seqNum, frame
	return e
}

// Kind returns KindTimeout.
func (e *TimeoutEvent) Kind() Kind { return KindTimeout }

func (e *TimeoutEvent) String() string { return e.describe(e.Kind()) }

// ReceiveFrameEvent marks the arrival of a frame at the receiver.
type ReceiveFrameEvent struct {
	EventBase
}

// NewReceiveFrameEvent creates a ReceiveFrameEvent.
func NewReceiveFrameEvent(t sim.VTimeInSec, seqNum int) *ReceiveFrameEvent {
	e := &ReceiveFrameEvent{}
	e.time, e.seqNum = t, seqNum
	return e
}

// Kind returns KindReceiveFrame.
func (e *ReceiveFrameEvent) Kind() Kind { return KindReceiveFrame }

func (e *ReceiveFrameEvent) String() string { return e.describe(e.Kind()) }

// ProcAckTimeEvent marks the end of the processing of a received frame.
type ProcAckTimeEvent struct {
	EventBase
}

// NewProcAckTimeEvent creates a ProcAckTimeEvent.
func NewProcAckTimeEvent(t sim.VTimeInSec, seqNum int) *ProcAckTimeEvent {
	e := &ProcAckTimeEvent{}
	e.time, e.seqNum = t, seqNum
	return e
}

// Kind returns KindProcAckTime.
func (e *ProcAckTimeEvent) Kind() Kind { return KindProcAckTime }

func (e *ProcAckTimeEvent) String() string { return e.describe(e.Kind()) }

// TransAckEndEvent marks the end of the transmission of an ACK.
type TransAckEndEvent struct {
	EventBase
}

// NewTransAckEndEvent creates a TransAckEndEvent.
func NewTransAckEndEvent(t sim.VTimeInSec, seqNum int) *TransAckEndEvent {
	e := &TransAckEndEvent{}
	e.time, e.seqNum = t, seqNum
	return e
}

// Kind returns KindTransAckEnd.
func (e *TransAckEndEvent) Kind() Kind { return KindTransAckEnd }

func (e *TransAckEndEvent) String() string { return e.describe(e.Kind()) }

// TransNackEndEvent marks the end of the transmission of a NACK.
type TransNackEndEvent struct {
	EventBase
}

// NewTransNackEndEvent creates a TransNackEndEvent.
func NewTransNackEndEvent(t sim.VTimeInSec, seqNum int) *TransNackEndEvent {
	e := &TransNackEndEvent{}
	e.time, e.seqNum = t, seqNum
	return e
}

// Kind returns KindTransNackEnd.
func (e *TransNackEndEvent) Kind() Kind { return KindTransNackEnd }

func (e *TransNackEndEvent) String() string { return e.describe(e.Kind()) }

// ReceiveAckEvent marks the arrival of an ACK at the sender.
type ReceiveAckEvent struct {
	EventBase
}

// NewReceiveAckEvent creates a ReceiveAckEvent.
func NewReceiveAckEvent(t sim.VTimeInSec, seqNum int) *ReceiveAckEvent {
	e := &ReceiveAckEvent{}
	e.time, e.seqNum = t, seqNum
	return e
}

// Kind returns KindReceiveAck.
func (e *ReceiveAckEvent) Kind() Kind { return KindReceiveAck }

func (e *ReceiveAckEvent) String() string { return e.describe(e.Kind()) }

// ReceiveNackEvent marks the arrival of a NACK at the sender.
type ReceiveNackEvent struct {
	EventBase
}

// NewReceiveNackEvent creates a ReceiveNackEvent.
func NewReceiveNackEvent(t sim.VTimeInSec, seqNum int) *ReceiveNackEvent {
	e := &ReceiveNackEvent{}
	e.time, e.seqNum = t, seqNum
	return e
}

// Kind returns KindReceiveNack.
func (e *ReceiveNackEvent) Kind() Kind { return KindReceiveNack }

func (e *ReceiveNackEvent) String() string { return e.describe(e.Kind()) }
