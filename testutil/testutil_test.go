package testutil_test

import (
	"net"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ikhovind/gotaps/testutil"
)

var _ = Describe("testutil", func() {
	It("FreeTCPPort returns a port that can be immediately rebound", func() {
		port := testutil.FreeTCPPort()
		Expect(port).To(BeNumerically(">", 0))

		l, err := net.Listen("tcp", "127.0.0.1:"+strconv.Itoa(port))
		Expect(err).NotTo(HaveOccurred())
		l.Close()
	})

	It("FreeUDPPort returns a port that can be immediately rebound", func() {
		port := testutil.FreeUDPPort()
		Expect(port).To(BeNumerically(">", 0))

		c, err := net.ListenPacket("udp", "127.0.0.1:"+strconv.Itoa(port))
		Expect(err).NotTo(HaveOccurred())
		c.Close()
	})

	It("builds loopback endpoint templates", func() {
		r := testutil.LoopbackRemote(4001)
		Expect(r.Address).To(Equal("127.0.0.1"))
		Expect(r.Port).To(Equal(uint16(4001)))

		l := testutil.LoopbackLocal(0)
		Expect(l.Port).To(Equal(uint16(0)))
	})
})
