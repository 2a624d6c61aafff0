package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arqsim/sim"
)

var _ = Describe("LinkBusyTracer", func() {
	var t *LinkBusyTracer

	send := func(time sim.VTimeInSec, action string, seq int) {
		t.Func(sim.HookCtx{
			Pos: HookPosRecord,
			Item: Record{
				Time:   time,
				Entity: Sender,
				Action: action,
				SeqNum: seq,
			},
		})
	}

	BeforeEach(func() {
		t = NewLinkBusyTracer()
	})

	It("should track one transmission", func() {
		send(1, ActionStartSend, 0)
		send(2, ActionFrameSent, 0)

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(1)))
	})

	It("should add back to back transmissions", func() {
		send(0, ActionStartSend, 0)
		send(1, ActionFrameSent, 0)
		send(1, ActionStartSend, 1)
		send(2, ActionFrameSent, 1)
		send(5, ActionStartSend, 0)
		send(6, ActionFrameSent, 0)

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(3)))
		Expect(t.Utilization(6)).To(Equal(0.5))
	})

	It("should count overlapping transmissions once", func() {
		send(0, ActionStartSend, 0)
		send(1, ActionStartSend, 1)
		send(2, ActionFrameSent, 0)
		send(3, ActionFrameSent, 1)

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(3)))
	})

	It("should ignore other records and positions", func() {
		send(0, ActionStartSend, 0)
		send(1, ActionTimeout, 0)
		t.Func(sim.HookCtx{Pos: sim.HookPosBeforeEvent, Item: Record{}})
		t.Func(sim.HookCtx{
			Pos:  HookPosRecord,
			Item: Record{Entity: Receiver, Action: ActionFrameSent},
		})

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(0)))
		Expect(t.Utilization(0)).To(Equal(0.0))
	})
})
