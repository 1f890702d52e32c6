package mock_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ikhovind/gotaps/adapter"
	adaptermock "github.com/ikhovind/gotaps/adapter/mock"
	"github.com/ikhovind/gotaps/message"
)

type fakeSession struct {
	mu        sync.Mutex
	ready     bool
	err       error
	delivered []*message.Message
}

func (f *fakeSession) SetLocalEndpoint(addr net.Addr) {}
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

func (f *fakeSession) lastDelivered() *message.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.delivered) == 0 {
		return nil
	}
	return f.delivered[len(f.delivered)-1]
}

var _ = Describe("mock adapter", func() {
	It("registers itself under the \"mock\" name", func() {
		Expect(adapter.Registered()).To(ContainElement(adapter.Name("mock")))
	})

	It("becomes ready without touching any real socket", func() {
		proto := adaptermock.New(adapter.Capabilities{Reliable: true})
		sess := &fakeSession{}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		Expect(proto.Init(ctx, sess, nil, nil, nil)).To(Succeed())
		Eventually(sess.isReady).Should(BeTrue())
		Expect(proto.Close()).To(Succeed())
	})

	It("exchanges content between a paired client and server", func() {
		client, server := adaptermock.NewPair(adapter.Capabilities{MessageOriented: true})

		sess := &fakeSession{}
		server.SetSession(sess)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		recvErr := make(chan error, 1)
		go func() {
			recvErr <- server.Receive(ctx, adapter.ReceiveRequest{MaxBytes: 64})
		}()

		Expect(client.Send(ctx, message.New([]byte("hello")), nil)).To(Succeed())
		Eventually(recvErr).Should(Receive(BeNil()))

		Expect(sess.lastDelivered()).NotTo(BeNil())
		Expect(sess.lastDelivered().Content).To(Equal([]byte("hello")))

		Expect(client.Close()).To(Succeed())
		Expect(server.Close()).To(Succeed())
	})

	It("reports OnError via FailInit without touching a socket", func() {
		proto := adaptermock.New(adapter.Capabilities{})
		proto.FailInit = errors.New("forced failure")
		sess := &fakeSession{}

		err := proto.Init(context.Background(), sess, nil, nil, nil)
		Expect(err).To(HaveOccurred())
		Expect(sess.isReady()).To(BeFalse())
	})
})
