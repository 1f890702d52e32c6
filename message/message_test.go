package message_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/message"
)

var _ = Describe("Message", func() {
	It("copies content so the caller's buffer can be reused", func() {
		buf := []byte("hello world")
		msg := message.New(buf)
		buf[0] = 'H'

		Expect(msg.Content[0]).To(Equal(byte('h')))
		Expect(msg.Len()).To(Equal(11))
	})

	It("reports zero length for a nil Message", func() {
		var msg *message.Message
		Expect(msg.Len()).To(Equal(0))
	})
})

var _ = Describe("Context", func() {
	It("defaults to BuildMessageProperties", func() {
		ctx := message.NewContext()
		Expect(ctx.EffectiveProperties().MsgOrdered()).To(BeTrue())
	})

	It("falls back to defaults when Properties is nil", func() {
		ctx := &message.Context{}
		Expect(ctx.EffectiveProperties()).NotTo(BeNil())
	})

	It("WithRemoteOverride deep-copies the override endpoint", func() {
		r := &endpoint.Remote{Hostname: "example.com"}
		ctx := message.NewContext().WithRemoteOverride(r)
		r.Hostname = "mutated"

		Expect(ctx.RemoteOverride.Hostname).To(Equal("example.com"))
	})
})
