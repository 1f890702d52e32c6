package gotaps_test

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ikhovind/gotaps"
	"github.com/ikhovind/gotaps/connection"
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/listener"
	"github.com/ikhovind/gotaps/log"
	"github.com/ikhovind/gotaps/message"
	"github.com/ikhovind/gotaps/property"
	"github.com/ikhovind/gotaps/testutil"
)

func tcpOnlySelection() *property.SelectionProperties {
	sel := property.BuildSelectionProperties()
	sel.Set(property.Multistreaming, property.Prohibit)
	return sel
}

type collector struct {
	mu       sync.Mutex
	received []*message.Message
}

func (c *collector) onReceive(m *message.Message) {
	c.mu.Lock()
	c.received = append(c.received, m)
	c.mu.Unlock()
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.received)
}

var _ = Describe("gotaps", func() {
	AfterEach(func() {
		_ = gotaps.CloseLibrary()
	})

	It("rejects a second Initialize before CloseLibrary", func() {
		Expect(gotaps.Initialize(gotaps.WithLogLevel(log.WarnLevel))).To(Succeed())
		Expect(gotaps.Initialize()).To(HaveOccurred())
	})

	It("allows Initialize again after CloseLibrary", func() {
		Expect(gotaps.Initialize()).To(Succeed())
		Expect(gotaps.CloseLibrary()).To(Succeed())
		Expect(gotaps.Initialize()).To(Succeed())
	})

	It("establishes a TCP connection end-to-end through a shared reactor", func() {
		Expect(gotaps.Initialize()).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		serverCol := &collector{}
		accepted := make(chan *connection.Connection, 1)

		local := gotaps.NewPreconnectionWithLocal(nil, tcpOnlySelection(), nil, testutil.LoopbackLocal(0))
		ln, err := local.Listen(ctx, listener.Callbacks{
			ConnectionReceived: func(conn *connection.Connection) {
				conn.OnReceive(serverCol.onReceive)
				accepted <- conn
			},
		})
		Expect(err).NotTo(HaveOccurred())
		defer ln.Stop()

		_, portStr, err := net.SplitHostPort(ln.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		port, err := strconv.Atoi(portStr)
		Expect(err).NotTo(HaveOccurred())

		pc := gotaps.NewPreconnection(
			[]*endpoint.Remote{{Address: "127.0.0.1", Port: uint16(port)}},
			tcpOnlySelection(),
			nil,
		)

		clientCol := &collector{}
		clientConn, err := pc.Initiate(ctx, connection.Callbacks{Receive: clientCol.onReceive})
		Expect(err).NotTo(HaveOccurred())
		defer clientConn.Close()

		var serverConn *connection.Connection
		Eventually(accepted, "2s").Should(Receive(&serverConn))
		defer serverConn.Close()

		clientConn.Send(message.New([]byte("ping")), nil)
		Eventually(serverCol.count, "2s").Should(Equal(1))

		serverConn.Send(message.New([]byte("pong")), nil)
		Eventually(clientCol.count, "2s").Should(Equal(1))
	})
})
