// Package arq simulates Stop-and-Wait, Go-Back-N and Selective Repeat links
// with a discrete event engine.
package arq

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/pkg/errors"
	"github.com/sarchlab/arqsim/config"
	"github.com/sarchlab/arqsim/sim"
	"github.com/sarchlab/arqsim/tracing"
)

// ErrEventLimit is returned when a run processes more events than allowed by
// the configuration.
var ErrEventLimit = errors.New("event limit exceeded")

var _ sim.Engine = (*Engine)(nil)

// Engine runs the protocol state machine of one sender and one receiver
// sharing a link. An Engine performs a single run.
type Engine struct {
	*sim.HookableBase

	cfg    config.Config
	queue  *EventQueue
	window *Window
	sink   tracing.Sink
	stats  Stats

	timeLock sync.RWMutex
	now      sim.VTimeInSec

	stateLock sync.RWMutex
	state     State

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex
	seeded        bool
}

// Config returns the configuration simulated by the engine.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Queue returns the event queue of the engine.
func (e *Engine) Queue() *EventQueue {
	return e.queue
}

// Window returns the sender and receiver windows. It must only be used from
// hooks or when the engine is not running.
func (e *Engine) Window() *Window {
	return e.window
}

// Stats returns the statistics of the run. It must only be used from hooks or
// when the engine is not running; use State otherwise.
func (e *Engine) Stats() Stats {
	return e.stats
}

// State returns a snapshot of the engine taken after the last event.
func (e *Engine) State() State {
	e.stateLock.RLock()
	defer e.stateLock.RUnlock()

	s := e.state
	s.InFlight = append([]int(nil), e.state.InFlight...)

	return s
}

func (e *Engine) publishState(finished bool) {
	s := State{
		Now:            e.readNow(),
		SenderStart:    e.window.SenderStart(),
		ReceiverStart:  e.window.ReceiverStart(),
		SenderWindow:   e.window.SenderSnapshot(),
		ReceiverWindow: e.window.ReceiverSnapshot(),
		InFlight:       e.window.InFlight(),
		PendingEvents:  e.queue.Len(),
		ParkedEvents:   e.queue.NumParked(),
		Finished:       finished,
		Stats:          e.stats,
	}

	e.stateLock.Lock()
	e.state = s
	e.stateLock.Unlock()
}

func (e *Engine) readNow() sim.VTimeInSec {
	e.timeLock.RLock()
	t := e.now
	e.timeLock.RUnlock()
	return t
}

func (e *Engine) writeNow(t sim.VTimeInSec) {
	e.timeLock.Lock()
	e.now = t
	e.timeLock.Unlock()
}

// CurrentTime returns the time of the event being processed, or of the last
// processed event.
func (e *Engine) CurrentTime() sim.VTimeInSec {
	return e.readNow()
}

func (e *Engine) seed() {
	for frame := 0; frame < e.cfg.NumFrames; frame++ {
		e.queue.Add(NewSendFrameEvent(0, e.window.SeqOf(frame), frame))
	}

	e.seeded = true
	e.publishState(false)
}

// Run processes the events until the queue is empty. Cancelling the context
// stops the run between two events.
func (e *Engine) Run(ctx context.Context) error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	if !e.seeded {
		e.seed()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		done, err := e.step()
		if err != nil || done {
			return err
		}
	}
}

func (e *Engine) step() (done bool, err error) {
	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	evt, ok := e.queue.Next()
	if !ok {
		e.stats.EndTime = e.readNow()
		e.publishState(true)
		return true, nil
	}

	if e.stats.EventsProcessed >= e.cfg.MaxEvents {
		e.queue.Add(evt)
		return false, errors.Wrapf(ErrEventLimit,
			"%d events processed, now %.6f", e.stats.EventsProcessed, e.readNow())
	}

	now := e.readNow()
	if evt.Time() < now {
		panic(fmt.Sprintf(
			"cannot run event in the past, evt %s @ %.10f, now %.10f",
			reflect.TypeOf(evt), evt.Time(), now,
		))
	}

	e.writeNow(evt.Time())
	e.stats.EventsProcessed++

	hookCtx := sim.HookCtx{
		Domain: e,
		Pos:    sim.HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	e.handle(evt)

	hookCtx.Pos = sim.HookPosAfterEvent
	e.InvokeHook(hookCtx)

	e.publishState(false)

	return false, nil
}

func (e *Engine) handle(evt Event) {
	switch evt := evt.(type) {
	case *SendFrameEvent:
		e.handleSendFrame(evt)
	case *TransFrameEndEvent:
		e.handleTransFrameEnd(evt)
	case *TimeoutEvent:
		e.handleTimeout(evt)
	case *ReceiveAckEvent:
		e.handleReceiveAck(evt)
	case *ReceiveNackEvent:
		e.handleReceiveNack(evt)
	case *ReceiveFrameEvent:
		e.handleReceiveFrame(evt)
	case *ProcAckTimeEvent:
		e.handleProcAckTime(evt)
	case *TransAckEndEvent:
		e.handleTransAckEnd(evt)
	case *TransNackEndEvent:
		e.handleTransNackEnd(evt)
	default:
		panic(fmt.Sprintf("unknown event type %T", evt))
	}
}

func (e *Engine) record(entity tracing.Entity, action string, seq int) {
	window := e.window.SenderSnapshot()
	if entity == tracing.Receiver {
		window = e.window.ReceiverSnapshot()
	}

	rec := tracing.Record{
		Time:   e.readNow(),
		Entity: entity,
		Action: action,
		SeqNum: seq,
		Window: window,
	}

	e.sink.Append(rec)

	e.InvokeHook(sim.HookCtx{
		Domain: e,
		Pos:    tracing.HookPosRecord,
		Item:   rec,
	})
}

// Pause prevents the engine from processing more events.
func (e *Engine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the engine to process more events.
func (e *Engine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}
