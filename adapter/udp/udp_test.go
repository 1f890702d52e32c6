package udp_test

import (
	"context"
	"net"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ikhovind/gotaps/adapter"
	adapterudp "github.com/ikhovind/gotaps/adapter/udp"
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/message"
)

type fakeSession struct {
	mu        sync.Mutex
	ready     bool
	err       error
	local     net.Addr
	delivered []*message.Message
}

func (f *fakeSession) SetLocalEndpoint(addr net.Addr) { f.mu.Lock(); f.local = addr; f.mu.Unlock() }
func (f *fakeSession) OnReady()                       { f.mu.Lock(); f.ready = true; f.mu.Unlock() }
func (f *fakeSession) OnError(err error)              { f.mu.Lock(); f.err = err; f.mu.Unlock() }
func (f *fakeSession) OnSoftError(err error)          {}
func (f *fakeSession) Deliver(m *message.Message) {
	f.mu.Lock()
	f.delivered = append(f.delivered, m)
	f.mu.Unlock()
}

func (f *fakeSession) isReady() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

var _ = Describe("UDP adapter", func() {
	It("registers itself under adapter.UDP", func() {
		Expect(adapter.Registered()).To(ContainElement(adapter.UDP))
	})

	It("exchanges one datagram with a raw UDP peer", func() {
		peer, err := net.ListenPacket("udp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer peer.Close()

		port := peer.LocalAddr().(*net.UDPAddr).Port
		proto := adapterudp.New()
		sess := &fakeSession{}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		Expect(proto.Init(ctx, sess, []endpoint.Resolved{{IP: net.ParseIP("127.0.0.1"), Port: uint16(port)}}, nil, nil)).To(Succeed())
		Eventually(sess.isReady).Should(BeTrue())

		Expect(proto.Send(ctx, message.New([]byte("hello world")), nil)).To(Succeed())

		buf := make([]byte, 64)
		peer.SetReadDeadline(time.Now().Add(time.Second))
		n, _, err := peer.ReadFrom(buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("hello world"))

		Expect(proto.Close()).To(Succeed())
	})

	It("delivers a received datagram to its Session as one message", func() {
		peer, err := net.ListenPacket("udp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer peer.Close()

		port := peer.LocalAddr().(*net.UDPAddr).Port
		proto := adapterudp.New()
		sess := &fakeSession{}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		Expect(proto.Init(ctx, sess, []endpoint.Resolved{{IP: net.ParseIP("127.0.0.1"), Port: uint16(port)}}, nil, nil)).To(Succeed())
		Eventually(sess.isReady).Should(BeTrue())

		recvErr := make(chan error, 1)
		go func() {
			recvErr <- proto.Receive(ctx, adapter.ReceiveRequest{MaxBytes: 64})
		}()

		sess.mu.Lock()
		localAddr := sess.local
		sess.mu.Unlock()

		_, err = peer.WriteTo([]byte("pong"), localAddr)
		Expect(err).NotTo(HaveOccurred())
		Eventually(recvErr).Should(Receive(BeNil()))

		sess.mu.Lock()
		defer sess.mu.Unlock()
		Expect(sess.delivered).To(HaveLen(1))
		Expect(sess.delivered[0].Content).To(Equal([]byte("pong")))

		Expect(proto.Close()).To(Succeed())
	})
})
