package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("HookableBase", func() {
	var (
		mockCtrl *gomock.Controller
		hookable *HookableBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		hookable = NewHookableBase()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should count registered hooks", func() {
		Expect(hookable.NumHooks()).To(Equal(0))

		hookable.AcceptHook(NewMockHook(mockCtrl))
		hookable.AcceptHook(NewMockHook(mockCtrl))

		Expect(hookable.NumHooks()).To(Equal(2))
	})

	It("should invoke hooks in registration order", func() {
		hook1 := NewMockHook(mockCtrl)
		hook2 := NewMockHook(mockCtrl)
		hookable.AcceptHook(hook1)
		hookable.AcceptHook(hook2)

		ctx := HookCtx{
			Domain: hookable,
			Pos:    HookPosBeforeEvent,
			Item:   42,
		}

		first := hook1.EXPECT().Func(ctx)
		hook2.EXPECT().Func(ctx).After(first)

		hookable.InvokeHook(ctx)
	})
})
