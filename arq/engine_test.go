package arq

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/arqsim/config"
	"github.com/sarchlab/arqsim/sim"
	"github.com/sarchlab/arqsim/tracing"
)

type hookFunc func(ctx sim.HookCtx)

func (f hookFunc) Func(ctx sim.HookCtx) { f(ctx) }

func mustConfig(raw map[string]any) config.Config {
	c, err := config.FromMap(raw)
	Expect(err).NotTo(HaveOccurred())

	return c
}

func stopAndWait(frames int) map[string]any {
	return map[string]any{
		config.KeyProtocol:  "Stop & Wait",
		config.KeyBits:      1,
		config.KeyNumFrames: frames,
	}
}

func goBackNScenario() map[string]any {
	return map[string]any{
		config.KeyProtocol:     "Go-Back-N",
		config.KeyBits:         2,
		config.KeyNumFrames:    5,
		config.KeySenderWindow: 3,
		config.KeyFramesLost:   []any{2},
	}
}

func selectiveRepeatScenario() map[string]any {
	return map[string]any{
		config.KeyProtocol:     "Selective Repeat",
		config.KeyBits:         2,
		config.KeyNumFrames:    4,
		config.KeySenderWindow: 2,
		config.KeyFramesLost:   []any{1},
	}
}

func runConfig(c config.Config, hooks ...sim.Hook) (*Engine, *tracing.Trace) {
	trace := tracing.NewTrace()

	b := MakeBuilder().WithConfig(c).WithSink(trace)
	for _, h := range hooks {
		b = b.WithHook(h)
	}

	e := b.Build()
	Expect(e.Run(context.Background())).To(Succeed())

	return e, trace
}

func filterRecords(records []tracing.Record, action string) []tracing.Record {
	var out []tracing.Record
	for _, r := range records {
		if r.Action == action {
			out = append(out, r)
		}
	}

	return out
}

func seqsOf(records []tracing.Record) []int {
	seqs := []int{}
	for _, r := range records {
		seqs = append(seqs, r.SeqNum)
	}

	return seqs
}

func timesOf(records []tracing.Record) []sim.VTimeInSec {
	times := []sim.VTimeInSec{}
	for _, r := range records {
		times = append(times, r.Time)
	}

	return times
}

var _ = Describe("Engine", func() {
	Context("Stop-and-Wait without losses", func() {
		var (
			e       *Engine
			records []tracing.Record
		)

		BeforeEach(func() {
			var trace *tracing.Trace
			e, trace = runConfig(mustConfig(stopAndWait(3)))
			records = trace.Records()
		})

		It("should do three round trips", func() {
			Expect(records).To(HaveLen(18))

			starts := filterRecords(records, tracing.ActionStartSend)
			Expect(seqsOf(starts)).To(Equal([]int{0, 1, 0}))
			Expect(timesOf(starts)).To(Equal([]sim.VTimeInSec{0, 4, 8}))

			acks := filterRecords(records, tracing.ActionAckReceived)
			Expect(timesOf(acks)).To(Equal([]sim.VTimeInSec{4, 8, 12}))
		})

		It("should alternate the sender window", func() {
			var windows []string
			for _, r := range filterRecords(records, tracing.ActionStartSend) {
				windows = append(windows, r.Window)
			}

			Expect(windows).To(Equal([]string{"[0]", "[1]", "[0]"}))
		})

		It("should log each round trip in order", func() {
			Expect(records[0:6]).To(Equal([]tracing.Record{
				{Time: 0, Entity: tracing.Sender, Action: tracing.ActionStartSend, SeqNum: 0, Window: "[0]"},
				{Time: 1, Entity: tracing.Sender, Action: tracing.ActionFrameSent, SeqNum: 0, Window: "[0]"},
				{Time: 2, Entity: tracing.Receiver, Action: tracing.ActionFrameReceived, SeqNum: 0, Window: "[0]"},
				{Time: 2.5, Entity: tracing.Receiver, Action: tracing.ActionFrameAccepted, SeqNum: 0, Window: "[1]"},
				{Time: 3, Entity: tracing.Receiver, Action: tracing.ActionAckSent, SeqNum: 0, Window: "[1]"},
				{Time: 4, Entity: tracing.Sender, Action: tracing.ActionAckReceived, SeqNum: 0, Window: "[1]"},
			}))
		})

		It("should have no timeouts", func() {
			s := e.Stats()
			Expect(s.Timeouts).To(Equal(0))
			Expect(s.FramesSent).To(Equal(3))
			Expect(s.AcksSent).To(Equal(3))
			Expect(s.EndTime).To(Equal(sim.VTimeInSec(12)))
			Expect(e.Window().SenderStart()).To(Equal(3))
			Expect(e.State().Finished).To(BeTrue())
			Expect(e.State().PendingEvents).To(Equal(0))
		})
	})

	Context("Stop-and-Wait with a lost ACK", func() {
		It("should time out and discard the duplicate", func() {
			raw := stopAndWait(2)
			raw[config.KeyAcksLost] = []any{1}

			e, trace := runConfig(mustConfig(raw))
			records := trace.Records()

			Expect(filterRecords(records, tracing.ActionAckLost)).To(HaveLen(1))

			timeouts := filterRecords(records, tracing.ActionTimeout)
			Expect(timesOf(timeouts)).To(Equal([]sim.VTimeInSec{13}))

			discarded := filterRecords(records, tracing.ActionFrameDiscarded)
			Expect(seqsOf(discarded)).To(Equal([]int{0}))
			Expect(timesOf(discarded)).To(Equal([]sim.VTimeInSec{15.5}))

			Expect(e.Stats().Retransmissions).To(Equal(1))
			Expect(e.Window().SenderStart()).To(Equal(2))
		})
	})

	Context("Go-Back-N with a lost frame", func() {
		var (
			e       *Engine
			records []tracing.Record
		)

		BeforeEach(func() {
			var trace *tracing.Trace
			e, trace = runConfig(mustConfig(goBackNScenario()))
			records = trace.Records()
		})

		It("should lose the second frame sent", func() {
			lost := filterRecords(records, tracing.ActionFrameLost)
			Expect(seqsOf(lost)).To(Equal([]int{1}))
			Expect(timesOf(lost)).To(Equal([]sim.VTimeInSec{2}))
		})

		It("should time out for the lost frame", func() {
			timeouts := filterRecords(records, tracing.ActionTimeout)
			Expect(seqsOf(timeouts)).To(Equal([]int{1}))
			Expect(timesOf(timeouts)).To(Equal([]sim.VTimeInSec{14}))
		})

		It("should retransmit the in-flight frames in descending order", func() {
			retransmits := filterRecords(records, tracing.ActionRetransmit)
			Expect(seqsOf(retransmits)).To(Equal([]int{3, 2, 1}))
			Expect(timesOf(retransmits)).To(Equal([]sim.VTimeInSec{14, 14, 14}))
		})

		It("should put the retransmitted frames on the link in order", func() {
			starts := filterRecords(records, tracing.ActionStartSend)
			Expect(seqsOf(starts)).To(Equal([]int{0, 1, 2, 3, 1, 2, 3, 0}))
			Expect(timesOf(starts)).To(Equal(
				[]sim.VTimeInSec{0, 1, 2, 4, 14, 15, 16, 18}))
		})

		It("should never accept out of order frames", func() {
			accepted := filterRecords(records, tracing.ActionFrameAccepted)
			Expect(seqsOf(accepted)).To(Equal([]int{0, 1, 2, 3, 0}))

			discarded := filterRecords(records, tracing.ActionFrameDiscarded)
			Expect(seqsOf(discarded)).To(Equal([]int{2, 3}))
		})

		It("should collect statistics", func() {
			s := e.Stats()
			Expect(s.FramesSent).To(Equal(8))
			Expect(s.FramesLost).To(Equal(1))
			Expect(s.Timeouts).To(Equal(1))
			Expect(s.Retransmissions).To(Equal(3))
			Expect(s.AcksSent).To(Equal(7))
			Expect(s.EndTime).To(Equal(sim.VTimeInSec(22)))
		})
	})

	Context("Selective Repeat with an early arrival", func() {
		var (
			e       *Engine
			records []tracing.Record
		)

		BeforeEach(func() {
			var trace *tracing.Trace
			e, trace = runConfig(mustConfig(selectiveRepeatScenario()))
			records = trace.Records()
		})

		It("should buffer the early frame and NACK the gap", func() {
			buffered := filterRecords(records, tracing.ActionFrameBuffered)
			Expect(seqsOf(buffered)).To(Equal([]int{1}))
			Expect(timesOf(buffered)).To(Equal([]sim.VTimeInSec{3.5}))

			nacks := filterRecords(records, tracing.ActionNackSent)
			Expect(seqsOf(nacks)).To(Equal([]int{0}))
			Expect(timesOf(nacks)).To(Equal([]sim.VTimeInSec{4}))

			accepted := filterRecords(records, tracing.ActionFrameAccepted)
			Expect(accepted[0].Time).To(BeNumerically(">", nacks[0].Time))
		})

		It("should only retransmit the missing frame", func() {
			retransmits := filterRecords(records, tracing.ActionRetransmit)
			Expect(seqsOf(retransmits)).To(Equal([]int{0}))
			Expect(timesOf(retransmits)).To(Equal([]sim.VTimeInSec{5}))
			Expect(e.Stats().Timeouts).To(Equal(0))
		})

		It("should not slide past the missing frame", func() {
			acks := filterRecords(records, tracing.ActionAckReceived)
			Expect(acks[0].Time).To(Equal(sim.VTimeInSec(9)))
			Expect(acks[0].SeqNum).To(Equal(1))

			for _, r := range records {
				if r.Entity == tracing.Sender && r.Time < 9 {
					Expect(r.Window).To(Equal("[0 1]"))
				}
			}
		})

		It("should finish", func() {
			s := e.Stats()
			Expect(s.NacksSent).To(Equal(1))
			Expect(s.FramesSent).To(Equal(5))
			Expect(s.EndTime).To(Equal(sim.VTimeInSec(14)))
			Expect(e.Window().SenderStart()).To(Equal(4))
			Expect(e.Window().ReceiverStart()).To(Equal(4))
		})
	})

	DescribeTable("properties",
		func(raw map[string]any) {
			c := mustConfig(raw)

			lastStart := 0
			receivedFrames := 0
			receivedAcks := 0

			hook := hookFunc(func(ctx sim.HookCtx) {
				e := ctx.Domain.(*Engine)

				switch ctx.Pos {
				case sim.HookPosBeforeEvent:
					switch evt := ctx.Item.(type) {
					case *SendFrameEvent:
						Expect(evt.SeqNum()).To(Equal(evt.Frame % c.SeqSpace()))
					case *TransFrameEndEvent:
						Expect(evt.SeqNum()).To(Equal(evt.Frame % c.SeqSpace()))
					case *ReceiveFrameEvent:
						receivedFrames++
					case *ReceiveAckEvent, *ReceiveNackEvent:
						receivedAcks++
					}
				case sim.HookPosAfterEvent:
					start := e.Window().SenderStart()
					Expect(start).To(BeNumerically(">=", lastStart))
					Expect(start).To(BeNumerically("<=", c.NumFrames))
					lastStart = start

					if c.Protocol == config.StopAndWait {
						Expect(len(e.Window().InFlight())).To(BeNumerically("<=", 1))
					}
				}
			})

			e, trace := runConfig(c, hook)
			s := e.Stats()

			Expect(receivedFrames).To(Equal(s.FramesSent - s.FramesLost))
			Expect(receivedAcks).To(Equal(s.AcksSent - s.AcksLost))
			Expect(e.Window().SenderStart()).To(Equal(c.NumFrames))
			Expect(e.Window().ReceiverStart()).To(Equal(c.NumFrames))

			_, again := runConfig(c)
			Expect(again.Records()).To(Equal(trace.Records()))
		},
		Entry("stop and wait", stopAndWait(4)),
		Entry("stop and wait with losses", map[string]any{
			config.KeyProtocol:   "Stop & Wait",
			config.KeyBits:       1,
			config.KeyNumFrames:  5,
			config.KeyFramesLost: []any{1, 3},
			config.KeyAcksLost:   []any{2},
		}),
		Entry("go back n", goBackNScenario()),
		Entry("go back n with ack losses", map[string]any{
			config.KeyProtocol:     "Go-Back-N",
			config.KeyBits:         3,
			config.KeyNumFrames:    12,
			config.KeySenderWindow: 7,
			config.KeyFramesLost:   []any{3, 9},
			config.KeyAcksLost:     []any{1, 4},
		}),
		Entry("selective repeat", selectiveRepeatScenario()),
		Entry("selective repeat with ack losses", map[string]any{
			config.KeyProtocol:     "Selective Repeat",
			config.KeyBits:         3,
			config.KeyNumFrames:    10,
			config.KeySenderWindow: 4,
			config.KeyFramesLost:   []any{2, 5},
			config.KeyAcksLost:     []any{1, 3},
		}),
	)

	It("should reject an unknown protocol before any event", func() {
		_, err := config.FromMap(map[string]any{
			config.KeyProtocol:  "Sliding Window",
			config.KeyBits:      2,
			config.KeyNumFrames: 3,
		})

		var cfgErr *config.Error
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Field).To(Equal(config.KeyProtocol))
	})

	It("should refuse to build without a config", func() {
		Expect(func() { MakeBuilder().Build() }).To(Panic())
	})

	It("should write every record to the sink", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		sink := NewMockSink(mockCtrl)
		sink.EXPECT().Append(gomock.Any()).Times(6)

		e := MakeBuilder().
			WithConfig(mustConfig(stopAndWait(1))).
			WithSink(sink).
			Build()

		Expect(e.Run(context.Background())).To(Succeed())
		mockCtrl.Finish()
	})

	It("should invoke the record hook", func() {
		var seen []tracing.Record

		_, trace := runConfig(mustConfig(stopAndWait(2)),
			hookFunc(func(ctx sim.HookCtx) {
				if ctx.Pos == tracing.HookPosRecord {
					seen = append(seen, ctx.Item.(tracing.Record))
				}
			}))

		Expect(seen).To(Equal(trace.Records()))
	})

	It("should stop at the event limit", func() {
		c := mustConfig(stopAndWait(3))
		c.MaxEvents = 5

		e := MakeBuilder().WithConfig(c).Build()
		err := e.Run(context.Background())

		Expect(errors.Is(err, ErrEventLimit)).To(BeTrue())
		Expect(e.Stats().EventsProcessed).To(Equal(5))
		Expect(e.State().Finished).To(BeFalse())
	})

	It("should stop when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		trace := tracing.NewTrace()
		e := MakeBuilder().
			WithConfig(mustConfig(stopAndWait(3))).
			WithSink(trace).
			Build()

		Expect(e.Run(ctx)).To(MatchError(context.Canceled))
		Expect(trace.Len()).To(Equal(0))
		Expect(e.State().PendingEvents).To(Equal(3))
	})

	It("should pause and continue", func() {
		trace := tracing.NewTrace()
		e := MakeBuilder().
			WithConfig(mustConfig(stopAndWait(3))).
			WithSink(trace).
			Build()

		e.Pause()

		done := make(chan error)
		go func() {
			done <- e.Run(context.Background())
		}()

		Consistently(done, 50*time.Millisecond).ShouldNot(Receive())
		Expect(trace.Len()).To(Equal(0))

		e.Continue()

		Eventually(done).Should(Receive(BeNil()))
		Expect(trace.Len()).To(Equal(18))
	})
})
