package arq

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Window", func() {
	Context("Go-Back-N sized", func() {
		var w *Window

		BeforeEach(func() {
			w = NewWindow(6, 4, 3, 1)
		})

		It("should number frames modulo the sequence space", func() {
			Expect(w.SeqOf(0)).To(Equal(0))
			Expect(w.SeqOf(5)).To(Equal(1))
		})

		It("should render the windows", func() {
			Expect(w.SenderSnapshot()).To(Equal("[0 1 2]"))
			Expect(w.ReceiverSnapshot()).To(Equal("[0]"))
		})

		It("should only resolve sequence numbers of the active range", func() {
			index, ok := w.SenderPosition(2)
			Expect(ok).To(BeTrue())
			Expect(index).To(Equal(2))

			_, ok = w.SenderPosition(3)
			Expect(ok).To(BeFalse())

			_, ok = w.SenderPosition(7)
			Expect(ok).To(BeFalse())
		})

		It("should resolve across the wrap around", func() {
			w.SlideSenderTo(2)

			Expect(w.SenderSnapshot()).To(Equal("[3 0 1]"))

			index, ok := w.SenderPosition(0)
			Expect(ok).To(BeTrue())
			Expect(index).To(Equal(4))

			_, ok = w.SenderPosition(2)
			Expect(ok).To(BeFalse())
		})

		It("should track in-flight frames", func() {
			Expect(w.MarkSender(0, true)).To(BeTrue())
			Expect(w.MarkSender(2, true)).To(BeTrue())
			Expect(w.MarkSender(3, true)).To(BeFalse())

			Expect(w.InFlight()).To(Equal([]int{0, 2}))
			Expect(w.IsInFlight(2)).To(BeTrue())
			Expect(w.IsInFlight(1)).To(BeFalse())

			w.MarkSender(0, false)
			Expect(w.InFlight()).To(Equal([]int{2}))
		})

		It("should slide and report the slots slid past", func() {
			w.MarkSender(0, true)
			w.MarkSender(1, true)

			Expect(w.SlideSenderTo(1)).To(Equal([]int{0, 1}))
			Expect(w.SenderStart()).To(Equal(2))
			Expect(w.InFlight()).To(BeEmpty())
			Expect(w.SenderContains(4)).To(BeTrue())
			Expect(w.SenderContains(5)).To(BeFalse())

			Expect(w.SlideSenderTo(0)).To(BeNil())
			Expect(w.SenderStart()).To(Equal(2))
		})

		It("should clip the window to the frames", func() {
			w.SlideSenderTo(3)
			Expect(w.SenderSnapshot()).To(Equal("[0 1]"))

			w.SlideSenderTo(5)
			Expect(w.SenderSnapshot()).To(Equal("[]"))
			Expect(w.SenderStart()).To(Equal(6))
		})

		It("should accept in order only", func() {
			m := w.ReceiverMembership(1)
			Expect(m.InWindow).To(BeFalse())
			Expect(m.FirstSeq).To(Equal(0))
			Expect(m.LastAcceptedSeq).To(Equal(3))

			m = w.ReceiverMembership(0)
			Expect(m.InWindow).To(BeTrue())
			Expect(m.IsFirst).To(BeTrue())

			Expect(w.MarkReceiver(0)).To(BeTrue())
			Expect(w.ReceiverStart()).To(Equal(1))
			Expect(w.LastAcceptedSeq()).To(Equal(0))
			Expect(w.IsAccepted(0)).To(BeTrue())
			Expect(w.MarkReceiver(0)).To(BeFalse())
		})
	})

	Context("Selective Repeat sized", func() {
		var w *Window

		BeforeEach(func() {
			w = NewWindow(4, 4, 2, 2)
		})

		It("should buffer out of order frames and advance past them", func() {
			m := w.ReceiverMembership(1)
			Expect(m.InWindow).To(BeTrue())
			Expect(m.IsFirst).To(BeFalse())
			Expect(m.FirstSeq).To(Equal(0))

			Expect(w.MarkReceiver(1)).To(BeTrue())
			Expect(w.ReceiverStart()).To(Equal(0))

			Expect(w.MarkReceiver(0)).To(BeTrue())
			Expect(w.ReceiverStart()).To(Equal(2))
			Expect(w.ReceiverSnapshot()).To(Equal("[2 3]"))
			Expect(w.LastAcceptedSeq()).To(Equal(1))
		})
	})

	It("should refuse invalid parameters", func() {
		Expect(func() { NewWindow(0, 2, 1, 1) }).To(Panic())
		Expect(func() { NewWindow(1, 1, 1, 1) }).To(Panic())
	})
})
