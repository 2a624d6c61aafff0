package arq

import (
	"github.com/sarchlab/arqsim/config"
	"github.com/sarchlab/arqsim/tracing"
)

func (e *Engine) handleReceiveFrame(evt *ReceiveFrameEvent) {
	e.record(tracing.Receiver, tracing.ActionFrameReceived, evt.SeqNum())

	e.queue.Add(NewProcAckTimeEvent(
		evt.Time()+e.cfg.Timing.Processing, evt.SeqNum()))
}

func (e *Engine) handleProcAckTime(evt *ProcAckTimeEvent) {
	now := evt.Time()
	seq := evt.SeqNum()
	ackTime := now + e.cfg.Timing.AckTransmission

	m := e.window.ReceiverMembership(seq)

	switch {
	case m.InWindow && m.IsFirst:
		e.window.MarkReceiver(seq)
		e.record(tracing.Receiver, tracing.ActionFrameAccepted, seq)
		e.queue.Add(NewTransAckEndEvent(ackTime, e.window.LastAcceptedSeq()))
	case m.InWindow && e.cfg.Protocol == config.SelectiveRepeat:
		e.window.MarkReceiver(seq)
		e.record(tracing.Receiver, tracing.ActionFrameBuffered, seq)
		e.queue.Add(NewTransNackEndEvent(ackTime, m.FirstSeq))
	default:
		e.record(tracing.Receiver, tracing.ActionFrameDiscarded, seq)
		e.queue.Add(NewTransAckEndEvent(ackTime, m.LastAcceptedSeq))
	}
}

func (e *Engine) handleTransAckEnd(evt *TransAckEndEvent) {
	e.stats.AcksSent++
	e.record(tracing.Receiver, tracing.ActionAckSent, evt.SeqNum())

	if e.cfg.AckLost(e.stats.AcksSent) {
		e.stats.AcksLost++
		e.record(tracing.Receiver, tracing.ActionAckLost, evt.SeqNum())
		return
	}

	e.queue.Add(NewReceiveAckEvent(
		evt.Time()+e.cfg.Timing.AckPropagation, evt.SeqNum()))
}

func (e *Engine) handleTransNackEnd(evt *TransNackEndEvent) {
	e.stats.AcksSent++
	e.stats.NacksSent++
	e.record(tracing.Receiver, tracing.ActionNackSent, evt.SeqNum())

	if e.cfg.AckLost(e.stats.AcksSent) {
		e.stats.AcksLost++
		e.record(tracing.Receiver, tracing.ActionNackLost, evt.SeqNum())
		return
	}

	e.queue.Add(NewReceiveNackEvent(
		evt.Time()+e.cfg.Timing.AckPropagation, evt.SeqNum()))
}
