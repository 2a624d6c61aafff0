package arq

import (
	"github.com/sarchlab/arqsim/config"
	"github.com/sarchlab/arqsim/sim"
	"github.com/sarchlab/arqsim/tracing"
)

func (e *Engine) handleSendFrame(evt *SendFrameEvent) {
	now := evt.Time()

	if evt.Frame < e.window.SenderStart() {
		// Acknowledged while the send was pending.
		return
	}

	if !e.window.SenderContains(evt.Frame) {
		e.queue.Park(evt)
		return
	}

	if free, busy := e.queue.LinkFreeAt(); busy && free > now {
		e.queue.Requeue(evt, free)
		return
	}

	e.record(tracing.Sender, tracing.ActionStartSend, evt.SeqNum())

	e.queue.Add(NewTransFrameEndEvent(
		now+e.cfg.Timing.FrameTransmission, evt.SeqNum(), evt.Frame))
	e.queue.RebasePendingSends()
}

func (e *Engine) handleTransFrameEnd(evt *TransFrameEndEvent) {
	now := evt.Time()

	if evt.Frame >= e.window.SenderStart() {
		e.queue.Add(NewTimeoutEvent(
			now+e.cfg.Timing.Timeout, evt.SeqNum(), evt.Frame))
		e.window.MarkSender(evt.SeqNum(), true)
	}

	e.stats.FramesSent++
	e.record(tracing.Sender, tracing.ActionFrameSent, evt.SeqNum())

	if e.cfg.FrameLost(e.stats.FramesSent) {
		e.stats.FramesLost++
		e.record(tracing.Sender, tracing.ActionFrameLost, evt.SeqNum())
		return
	}

	e.queue.Add(NewReceiveFrameEvent(
		now+e.cfg.Timing.FramePropagation, evt.SeqNum()))
}

func (e *Engine) handleTimeout(evt *TimeoutEvent) {
	if !e.window.IsInFlight(evt.Frame) {
		return
	}

	now := evt.Time()
	e.stats.Timeouts++
	e.record(tracing.Sender, tracing.ActionTimeout, evt.SeqNum())

	if e.cfg.Protocol != config.GoBackN {
		e.retransmit(now, evt.Frame)
		return
	}

	inFlight := e.window.InFlight()
	for i := len(inFlight) - 1; i >= 0; i-- {
		e.retransmit(now, inFlight[i])
	}
}

func (e *Engine) retransmit(now sim.VTimeInSec, frame int) {
	seq := e.window.SeqOf(frame)

	e.queue.RemoveTimeouts(seq)
	e.window.MarkSender(seq, false)
	e.stats.Retransmissions++
	e.record(tracing.Sender, tracing.ActionRetransmit, seq)

	e.queue.AddFront(NewSendFrameEvent(now, seq, frame))
}

func (e *Engine) handleReceiveAck(evt *ReceiveAckEvent) {
	now := evt.Time()

	index, ok := e.window.SenderPosition(evt.SeqNum())
	if ok {
		for _, seq := range e.window.SlideSenderTo(index) {
			e.queue.RemoveTimeouts(seq)
		}

		e.queue.RebasePendingSendsTo(now)
	}

	e.record(tracing.Sender, tracing.ActionAckReceived, evt.SeqNum())
}

func (e *Engine) handleReceiveNack(evt *ReceiveNackEvent) {
	now := evt.Time()

	e.record(tracing.Sender, tracing.ActionNackReceived, evt.SeqNum())

	index, ok := e.window.SenderPosition(evt.SeqNum())
	if !ok || !e.window.IsInFlight(index) {
		return
	}

	e.retransmit(now, index)
}
