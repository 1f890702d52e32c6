package connection_test

import (
	"context"
	"encoding/binary"
	"net"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ikhovind/gotaps/adapter"
	adaptermock "github.com/ikhovind/gotaps/adapter/mock"
	"github.com/ikhovind/gotaps/connection"
	"github.com/ikhovind/gotaps/message"
	"github.com/ikhovind/gotaps/property"
	"github.com/ikhovind/gotaps/reactor"
)

func frameOf(payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(out, uint32(len(payload)))
	copy(out[4:], payload)
	return out
}

type collector struct {
	mu       sync.Mutex
	received []*message.Message
	ready    int
	closed   int
}

func (c *collector) onReceive(m *message.Message) {
	c.mu.Lock()
	c.received = append(c.received, m)
	c.mu.Unlock()
}

func (c *collector) onReady() { c.mu.Lock(); c.ready++; c.mu.Unlock() }

func (c *collector) readyCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *collector) onClosed() { c.mu.Lock(); c.closed++; c.mu.Unlock() }

func (c *collector) closedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *collector) receivedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.received)
}

func (c *collector) lastReceived() *message.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.received) == 0 {
		return nil
	}
	return c.received[len(c.received)-1]
}

// fakeDeliverySession is a minimal adapter.Session used only to observe
// what bytes a peer's Receive call actually delivered, independent of
// package connection's own framing.
type fakeDeliverySession struct {
	ch chan []byte
}

func (f *fakeDeliverySession) SetLocalEndpoint(addr net.Addr) {}
func (f *fakeDeliverySession) OnReady()                       {}
func (f *fakeDeliverySession) OnError(err error)              {}
func (f *fakeDeliverySession) OnSoftError(err error)          {}
func (f *fakeDeliverySession) Deliver(m *message.Message)     { f.ch <- m.Content }

type establishErr struct{}

func (establishErr) Error() string { return "forced establishment failure" }

var _ = Describe("Connection", func() {
	It("fires Ready immediately for an already-established Protocol", func() {
		_, server := adaptermock.NewPair(adapter.Capabilities{MessageOriented: true})

		col := &collector{}
		conn := connection.New(server, nil, connection.Callbacks{Ready: col.onReady}, false, true)
		defer conn.Close()

		Expect(conn.State()).To(Equal(property.Ready))
		Eventually(col.readyCount).Should(Equal(1))
	})

	It("delivers an unframed message straight to the Receive callback", func() {
		client, server := adaptermock.NewPair(adapter.Capabilities{MessageOriented: true})

		col := &collector{}
		conn := connection.New(server, nil, connection.Callbacks{Receive: col.onReceive}, false, true)
		defer conn.Close()

		Expect(client.Send(context.Background(), message.New([]byte("hello")), nil)).To(Succeed())

		Eventually(col.receivedCount).Should(Equal(1))
		Expect(col.lastReceived().Content).To(Equal([]byte("hello")))
	})

	It("reassembles a length-prefixed frame split across two deliveries", func() {
		client, server := adaptermock.NewPair(adapter.Capabilities{})

		col := &collector{}
		conn := connection.New(server, nil, connection.Callbacks{Receive: col.onReceive}, true, true)
		defer conn.Close()

		full := frameOf([]byte("split message"))

		Expect(client.Send(context.Background(), message.New(full[:3]), nil)).To(Succeed())
		Consistently(col.receivedCount, "100ms").Should(Equal(0))

		Expect(client.Send(context.Background(), message.New(full[3:]), nil)).To(Succeed())
		Eventually(col.receivedCount).Should(Equal(1))
		Expect(col.lastReceived().Content).To(Equal([]byte("split message")))
	})

	It("dispatches a message queued via Send to the peer", func() {
		client, server := adaptermock.NewPair(adapter.Capabilities{MessageOriented: true})

		peerReceived := make(chan []byte, 1)
		server.SetSession(&fakeDeliverySession{ch: peerReceived})
		go func() {
			_ = server.Receive(context.Background(), adapter.ReceiveRequest{MaxBytes: 64})
		}()

		conn := connection.New(client, nil, connection.Callbacks{}, false, true)
		defer conn.Close()

		conn.Send(message.New([]byte("queued")), nil)

		Eventually(peerReceived, "2s").Should(Receive(Equal([]byte("queued"))))
	})

	It("transitions to CLOSED and fires Closed on Close", func() {
		_, server := adaptermock.NewPair(adapter.Capabilities{})

		col := &collector{}
		conn := connection.New(server, nil, connection.Callbacks{Closed: col.onClosed}, false, true)

		Expect(conn.Close()).To(Succeed())
		Expect(conn.State()).To(Equal(property.Closed))
		Eventually(col.closedCount).Should(Equal(1))
	})

	It("fires EstablishmentError instead of Ready when the Protocol never reaches READY", func() {
		proto := adaptermock.New(adapter.Capabilities{})

		estErr := make(chan error, 1)
		conn := connection.New(proto, nil, connection.Callbacks{
			EstablishmentError: func(err error) { estErr <- err },
		}, false, false)
		defer conn.Close()

		conn.OnError(establishErr{})
		Eventually(estErr, "1s").Should(Receive())
	})

	It("delivers callbacks through a shared Reactor instead of inline", func() {
		client, server := adaptermock.NewPair(adapter.Capabilities{MessageOriented: true})

		r := reactor.New()
		defer r.Stop()

		col := &collector{}
		conn := connection.NewOnReactor(r, server, nil, connection.Callbacks{Receive: col.onReceive}, false, true)
		defer conn.Close()

		Expect(client.Send(context.Background(), message.New([]byte("via reactor")), nil)).To(Succeed())

		Eventually(col.receivedCount).Should(Equal(1))
		Expect(col.lastReceived().Content).To(Equal([]byte("via reactor")))
	})
})
