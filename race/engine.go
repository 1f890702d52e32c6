package race

import (
	"context"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ikhovind/gotaps/adapter"
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/errors"
	"github.com/ikhovind/gotaps/message"
	"github.com/ikhovind/gotaps/security"
)

// Winner is the result of a successful race: the adapter instance that
// reached READY first, and which candidate it was.
type Winner struct {
	Candidate Candidate
	Protocol  adapter.Protocol
}

// Engine drives the first-READY-wins establishment race across a
// Gather'd candidate list. Every candidate runs concurrently under one
// cancelable context; the first to signal READY cancels that context,
// and the Engine additionally Aborts every other candidate once the
// race ends.
type Engine struct {
	mu       sync.Mutex
	closed   bool
	aborters []adapter.Protocol
}

// NewEngine returns a fresh, unraced Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Initiate races every candidate's Init concurrently and returns the
// first to reach READY. If every candidate errors or the context is
// canceled first, the returned error is the failure of the last
// candidate, in list order, that reported one — so the choice does not
// depend on which goroutine finished last.
func (e *Engine) Initiate(ctx context.Context, candidates []Candidate, sec *security.Parameters) (*Winner, error) {
	if len(candidates) == 0 {
		return nil, errors.New(errors.NoCandidate, nil)
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(raceCtx)

	var (
		mu       sync.Mutex
		winner   *Winner
		errs     = make([]error, len(candidates))
		attempts = make([]adapter.Protocol, len(candidates))
	)

	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			proto := adapter.New(c.Protocol)
			if proto == nil {
				return nil
			}

			mu.Lock()
			attempts[i] = proto
			mu.Unlock()

			sess := newCandidateSession()
			err := proto.Init(gctx, sess, []endpoint.Resolved{c.Endpoint}, nil, sec)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				errs[i] = err
				return nil
			}
			if !sess.waitReady(gctx) {
				if sess.err != nil {
					errs[i] = sess.err
				}
				return nil
			}
			if winner == nil {
				winner = &Winner{Candidate: c, Protocol: proto}
				cancel()
			} else {
				_ = proto.Abort()
			}
			return nil
		})
	}

	_ = g.Wait()

	mu.Lock()
	defer mu.Unlock()

	if winner == nil {
		for _, proto := range attempts {
			if proto != nil {
				_ = proto.Abort()
			}
		}
		var lastErr error
		for _, err := range errs {
			if err != nil {
				lastErr = err
			}
		}
		if lastErr == nil {
			lastErr = errors.New(errors.EstablishmentError, nil)
		}
		return nil, lastErr
	}

	e.mu.Lock()
	for _, proto := range attempts {
		if proto == nil || proto == winner.Protocol {
			continue
		}
		e.aborters = append(e.aborters, proto)
	}
	e.mu.Unlock()

	return winner, nil
}

// InitiateWithTimeout wraps Initiate with a deadline; if no candidate
// reaches READY before it elapses, every candidate is aborted and
// ERR_TIMEOUT is returned.
func (e *Engine) InitiateWithTimeout(ctx context.Context, candidates []Candidate, sec *security.Parameters, timeout time.Duration) (*Winner, error) {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	winner, err := e.Initiate(tctx, candidates, sec)
	if err != nil && tctx.Err() != nil {
		return nil, errors.New(errors.Timeout, tctx.Err())
	}
	return winner, err
}

// Close aborts every non-winning candidate recorded by the last
// Initiate. Idempotent: subsequent calls are no-ops.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	for _, proto := range e.aborters {
		_ = proto.Abort()
	}
	e.aborters = nil
	return nil
}

// candidateSession is the adapter.Session given to a racing candidate:
// it only needs to observe READY/error to report back to Engine.Initiate,
// and discards everything a live Connection would otherwise consume.
type candidateSession struct {
	mu    sync.Mutex
	ready bool
	err   error
	done  chan struct{}
}

func newCandidateSession() *candidateSession {
	return &candidateSession{done: make(chan struct{})}
}

func (s *candidateSession) SetLocalEndpoint(addr net.Addr) {}

func (s *candidateSession) OnReady() {
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
	close(s.done)
}

func (s *candidateSession) OnError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.done)
}

func (s *candidateSession) OnSoftError(err error)      {}
func (s *candidateSession) Deliver(m *message.Message) {}

func (s *candidateSession) waitReady(ctx context.Context) bool {
	select {
	case <-s.done:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.ready
	case <-ctx.Done():
		return false
	}
}
