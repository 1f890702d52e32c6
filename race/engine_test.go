package race_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ikhovind/gotaps/adapter"
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/message"
	"github.com/ikhovind/gotaps/race"
	"github.com/ikhovind/gotaps/security"
)

func init() {
	// A winning and a losing mock adapter, registered so race.Engine
	// tests can exercise a deterministic first-READY-wins scenario
	// without a real network race between tcp/udp/quic, whose dial
	// latency isn't controllable from a test.
	adapter.Register(adapter.Name("race-winner"), func() adapter.Protocol { return newControllableMock(nil) })
	adapter.Register(adapter.Name("race-loser"), func() adapter.Protocol { return newControllableMock(errors.New("loser")) })
}

var _ = Describe("Engine", func() {
	It("returns the only candidate when just one is given", func() {
		e := race.NewEngine()
		candidates := []race.Candidate{{Protocol: adapter.Name("race-winner"), Endpoint: sampleEndpoints[0]}}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		winner, err := e.Initiate(ctx, candidates, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(winner).NotTo(BeNil())
		Expect(winner.Candidate.Protocol).To(Equal(adapter.Name("race-winner")))
	})

	It("aggregates the last failure when every candidate errors", func() {
		e := race.NewEngine()
		candidates := []race.Candidate{
			{Protocol: adapter.Name("race-loser"), Endpoint: sampleEndpoints[0]},
			{Protocol: adapter.Name("race-loser"), Endpoint: sampleEndpoints[0]},
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, err := e.Initiate(ctx, candidates, nil)
		Expect(err).To(HaveOccurred())
	})

	It("picks a winner even when mixed with failing candidates", func() {
		e := race.NewEngine()
		candidates := []race.Candidate{
			{Protocol: adapter.Name("race-loser"), Endpoint: sampleEndpoints[0]},
			{Protocol: adapter.Name("race-winner"), Endpoint: sampleEndpoints[0]},
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		winner, err := e.Initiate(ctx, candidates, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(winner.Candidate.Protocol).To(Equal(adapter.Name("race-winner")))
	})

	It("returns NoCandidate for an empty candidate list", func() {
		e := race.NewEngine()
		_, err := e.Initiate(context.Background(), nil, nil)
		Expect(err).To(HaveOccurred())
	})

	It("reports a timeout when no candidate becomes ready in time", func() {
		adapter.Register(adapter.Name("race-hangs"), func() adapter.Protocol { return newControllableMock(nil).slow() })
		e := race.NewEngine()
		candidates := []race.Candidate{{Protocol: adapter.Name("race-hangs"), Endpoint: sampleEndpoints[0]}}

		_, err := e.InitiateWithTimeout(context.Background(), candidates, nil, 50*time.Millisecond)
		Expect(err).To(HaveOccurred())
	})

	It("Close is idempotent", func() {
		e := race.NewEngine()
		Expect(e.Close()).To(Succeed())
		Expect(e.Close()).To(Succeed())
	})
})

// controllableMock is a minimal adapter.Protocol double for race.Engine
// tests: it reports ready or errors immediately (or after a delay),
// without touching net.Pipe or any real socket.
type controllableMock struct {
	failWith error
	delay    time.Duration
	closed   bool
}

func newControllableMock(failWith error) *controllableMock {
	return &controllableMock{failWith: failWith}
}

func (m *controllableMock) slow() *controllableMock {
	m.delay = time.Hour
	return m
}

func (m *controllableMock) Name() adapter.Name                 { return adapter.Name("controllable-mock") }
func (m *controllableMock) Capabilities() adapter.Capabilities { return adapter.Capabilities{} }

func (m *controllableMock) Init(ctx context.Context, sess adapter.Session, remote []endpoint.Resolved, local *endpoint.Local, sec *security.Parameters) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.failWith != nil {
		sess.OnError(m.failWith)
		return m.failWith
	}
	sess.OnReady()
	return nil
}

func (m *controllableMock) Send(ctx context.Context, msg *message.Message, mctx *message.Context) error {
	return nil
}
func (m *controllableMock) Receive(ctx context.Context, req adapter.ReceiveRequest) error { return nil }
func (m *controllableMock) Close() error                                                  { m.closed = true; return nil }
func (m *controllableMock) Abort() error                                                  { m.closed = true; return nil }
func (m *controllableMock) Listen(ctx context.Context, local *endpoint.Local, sec *security.Parameters, onAccept func(adapter.Protocol)) error {
	return nil
}
