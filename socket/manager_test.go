package socket_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ikhovind/gotaps/adapter"
	adaptermock "github.com/ikhovind/gotaps/adapter/mock"
	"github.com/ikhovind/gotaps/socket"
)

var _ = Describe("Manager", func() {
	It("closes the underlying protocol only once every reference is released", func() {
		client, _ := adaptermock.NewPair(adapter.Capabilities{})
		mgr := socket.NewManager(client)

		mgr.Acquire()
		Expect(mgr.RefCount()).To(Equal(2))

		Expect(mgr.Release()).To(Succeed())
		Expect(mgr.RefCount()).To(Equal(1))

		Expect(mgr.Release()).To(Succeed())
		Expect(mgr.RefCount()).To(Equal(0))
	})

	It("tolerates extra Release calls beyond the reference count", func() {
		client, _ := adaptermock.NewPair(adapter.Capabilities{})
		mgr := socket.NewManager(client)

		Expect(mgr.Release()).To(Succeed())
		Expect(mgr.Release()).To(Succeed())
		Expect(mgr.RefCount()).To(Equal(0))
	})

	It("exposes the shared Protocol handle", func() {
		client, _ := adaptermock.NewPair(adapter.Capabilities{})
		mgr := socket.NewManager(client)
		Expect(mgr.Protocol()).To(BeIdenticalTo(client))
	})
})

var _ = Describe("Config", func() {
	It("rejects a missing address", func() {
		c := socket.Config{Network: adapter.TCP}
		Expect(c.Validate()).To(HaveOccurred())
	})

	It("rejects TLS on plain UDP", func() {
		c := socket.Config{Network: adapter.UDP, Address: ":9000", TLS: socket.TLSConfig{Enabled: true}}
		Expect(c.Validate()).To(HaveOccurred())
	})

	It("accepts TLS on TCP", func() {
		c := socket.Config{Network: adapter.TCP, Address: ":8443", TLS: socket.TLSConfig{Enabled: true}}
		Expect(c.Validate()).To(Succeed())
	})

	It("accepts a plain UDP socket", func() {
		c := socket.Config{Network: adapter.UDP, Address: ":9000"}
		Expect(c.Validate()).To(Succeed())
	})
})

