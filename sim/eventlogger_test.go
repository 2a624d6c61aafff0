package sim

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

type namedEvent struct {
	time VTimeInSec
}

func (e namedEvent) Time() VTimeInSec {
	return e.time
}

func (e namedEvent) String() string {
	return "named event"
}

var _ = Describe("EventLogger", func() {
	var (
		mockCtrl *gomock.Controller
		buf      *bytes.Buffer
		logger   *EventLogger
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		buf = new(bytes.Buffer)
		logger = NewEventLogger(zerolog.New(buf).Level(zerolog.DebugLevel))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should log events before they are handled", func() {
		evt := NewMockEvent(mockCtrl)
		evt.EXPECT().Time().Return(VTimeInSec(2.5)).AnyTimes()

		logger.Func(HookCtx{Pos: HookPosBeforeEvent, Item: evt})

		Expect(buf.String()).To(ContainSubstring(`"time":2.5`))
		Expect(buf.String()).To(ContainSubstring("MockEvent"))
	})

	It("should include the event description", func() {
		logger.Func(HookCtx{
			Pos:  HookPosBeforeEvent,
			Item: namedEvent{time: 1},
		})

		Expect(buf.String()).To(ContainSubstring(`"event":"named event"`))
	})

	It("should ignore other hook positions", func() {
		logger.Func(HookCtx{Pos: HookPosAfterEvent, Item: namedEvent{}})

		Expect(buf.Len()).To(Equal(0))
	})

	It("should ignore items that are not events", func() {
		logger.Func(HookCtx{Pos: HookPosBeforeEvent, Item: "not an event"})

		Expect(buf.Len()).To(Equal(0))
	})

	It("should stay quiet above debug level", func() {
		logger = NewEventLogger(zerolog.New(buf).Level(zerolog.InfoLevel))

		logger.Func(HookCtx{Pos: HookPosBeforeEvent, Item: namedEvent{}})

		Expect(buf.Len()).To(Equal(0))
	})
})
