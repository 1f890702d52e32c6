package socket_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ikhovind/gotaps/socket"
)

var _ = Describe("socket basics", func() {
	It("has the expected default buffer size", func() {
		Expect(socket.DefaultBufferSize).To(Equal(32 * 1024))
	})

	It("uses newline as EOL", func() {
		Expect(socket.EOL).To(Equal(byte('\n')))
	})

	Describe("Phase.String", func() {
		It("names every defined phase", func() {
			phases := []socket.Phase{
				socket.PhaseDial, socket.PhaseNew, socket.PhaseRead, socket.PhaseCloseRead,
				socket.PhaseHandler, socket.PhaseWrite, socket.PhaseCloseWrite, socket.PhaseClose,
			}
			for _, p := range phases {
				Expect(p.String()).NotTo(Equal("unknown connection state"))
			}
		})

		It("reports unknown for an out-of-range phase", func() {
			Expect(socket.Phase(255).String()).To(Equal("unknown connection state"))
		})
	})

	Describe("ErrorFilter", func() {
		It("passes nil through unchanged", func() {
			Expect(socket.ErrorFilter(nil)).To(BeNil())
		})

		It("swallows the bare closed-connection error", func() {
			err := fmt.Errorf("use of closed network connection")
			Expect(socket.ErrorFilter(err)).To(BeNil())
		})

		It("keeps an error that merely mentions closed connections in context", func() {
			err := fmt.Errorf("read tcp 127.0.0.1:8080->127.0.0.1:54321: use of closed network connection")
			Expect(socket.ErrorFilter(err)).NotTo(BeNil())
		})

		It("passes through unrelated errors", func() {
			err := fmt.Errorf("connection refused")
			result := socket.ErrorFilter(err)
			Expect(result).NotTo(BeNil())
			Expect(result.Error()).To(Equal("connection refused"))
		})
	})
})
