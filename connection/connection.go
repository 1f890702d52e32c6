/*
 * MIT License
 *
 * Copyright (c) 2025 gotaps contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package connection

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ikhovind/gotaps/adapter"
	"github.com/ikhovind/gotaps/atomic"
	"github.com/ikhovind/gotaps/errors"
	"github.com/ikhovind/gotaps/log"
	"github.com/ikhovind/gotaps/message"
	"github.com/ikhovind/gotaps/property"
	"github.com/ikhovind/gotaps/reactor"
	"github.com/ikhovind/gotaps/socket"
)

// Callbacks is the full callback surface of spec.md §4.6/§7. Any field
// left nil is simply not invoked; none are required.
type Callbacks struct {
	Ready              func()
	EstablishmentError func(err error)
	Closed             func()
	ConnectionError    func(err error)
	SendError          func(err error)
	Sent               func()
	PathChange         func()
	SoftError          func(err error)
	Receive            func(msg *message.Message)
}

// Connection is the Go realization of a TAPS Connection: it is the
// adapter.Session its underlying adapter.Protocol reports readiness,
// errors and received data into, and exposes Send/Close/Abort plus the
// full state machine of spec.md §4.6.
type Connection struct {
	id uuid.UUID

	// state is mutated only under mu, alongside connProp and the other
	// fields below — stateView mirrors it so State() can be read from any
	// goroutine without taking mu (atomic.Value guards it with its own,
	// separate mutex).
	mu        sync.Mutex
	state     State
	stateView atomic.Value[State]

	proto    adapter.Protocol
	mgr      *socket.Manager
	remote   net.Addr
	cbs      Callbacks
	connProp *property.ConnectionProperties

	framed bool // true: byte-stream transport with PRESERVE_MSG_BOUNDARIES=REQUIRE
	frames *unframer

	queue    *sendQueue
	closeCh  chan struct{}
	closeOne sync.Once

	// react, when non-nil, is where every user callback actually runs
	// (spec.md §5: "no user callback ever runs concurrently with
	// another"). nil means callbacks run inline on whichever goroutine
	// triggered them — the behavior a Connection built via New has always
	// had, and what package connection's own tests exercise directly.
	react *reactor.Reactor
}

// setState updates both the mu-protected state and its stateView
// mirror; callers must already hold mu.
func (c *Connection) setState(s State) {
	c.state = s
	c.stateView.Store(s)
}

// runCallback executes fn the way this Connection is configured to:
// Submitted to the shared reactor if one was given, otherwise inline.
func (c *Connection) runCallback(fn func()) {
	c.mu.Lock()
	r := c.react
	c.mu.Unlock()
	if r != nil {
		r.Submit(fn)
		return
	}
	fn()
}

// New wraps proto as a Connection, sharing mgr's lifetime. framed
// indicates whether length-prefix reassembly applies to this transport
// (spec.md §4.6: byte-stream + PRESERVE_MSG_BOUNDARIES=REQUIRE). alreadyReady
// is true when proto reached READY under a different Session before this
// call — the race engine's own candidateSession, for the winning
// candidate — so OnReady must be re-fired against this Connection once
// proto's Session is repointed via SetSession; it is false for a
// freshly-accepted Listener Protocol which hasn't reported readiness yet.
func New(proto adapter.Protocol, mgr *socket.Manager, cbs Callbacks, framed bool, alreadyReady bool) *Connection {
	return newConnection(nil, proto, mgr, cbs, framed, alreadyReady)
}

// NewOnReactor is New, but every callback this Connection fires runs on
// r instead of inline — the mechanism that lets many Connections share
// one serialized callback ordering (spec.md §5), used by package gotaps
// once a library-wide Reactor exists. The per-connection dispatch and
// receive goroutines are unaffected: Go's blocking net.Conn.Read has no
// non-blocking variant to multiplex on a single goroutine the way an
// epoll-based reactor would, so each Connection still owns a read
// goroutine — only the callbacks those reads trigger are centralized.
func NewOnReactor(r *reactor.Reactor, proto adapter.Protocol, mgr *socket.Manager, cbs Callbacks, framed bool, alreadyReady bool) *Connection {
	return newConnection(r, proto, mgr, cbs, framed, alreadyReady)
}

func newConnection(r *reactor.Reactor, proto adapter.Protocol, mgr *socket.Manager, cbs Callbacks, framed bool, alreadyReady bool) *Connection {
	c := &Connection{
		id:        uuid.New(),
		state:     Establishing,
		stateView: atomic.NewValue[State](),
		proto:     proto,
		mgr:       mgr,
		cbs:       cbs,
		connProp:  property.BuildConnectionProperties(),
		framed:    framed,
		frames:    &unframer{},
		queue:     newSendQueue(),
		closeCh:   make(chan struct{}),
		react:     r,
	}
	c.stateView.Store(Establishing)
	if s, ok := proto.(interface{ SetSession(adapter.Session) }); ok {
		s.SetSession(c)
	}
	go c.dispatchLoop()
	go c.receiveLoop()
	if alreadyReady {
		c.OnReady()
	}
	return c
}

// UUID returns the RFC 9562 identifier assigned at construction
// (connection_get_uuid, spec.md §6).
func (c *Connection) UUID() uuid.UUID { return c.id }

// State reports the public, four-valued STATE property. It reads
// stateView rather than taking mu, so callers on arbitrary goroutines
// never wait on the dispatch/receive goroutines that hold mu.
func (c *Connection) State() property.ConnState {
	return c.stateView.Load().ToProperty()
}

// RemoteEndpoint returns the peer address set via SetLocalEndpoint's
// sibling call once known (connection_get_remote_endpoint, spec.md §6).
func (c *Connection) RemoteEndpoint() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remote
}

// --- adapter.Session ---

func (c *Connection) SetLocalEndpoint(addr net.Addr) {
	c.mu.Lock()
	c.remote = addr
	c.mu.Unlock()
}

// OnReady fires exactly once, transitioning ESTABLISHING -> READY.
func (c *Connection) OnReady() {
	c.mu.Lock()
	if c.state != Establishing {
		c.mu.Unlock()
		return
	}
	c.setState(Ready)
	c.connProp.SetState(property.Ready)
	cb := c.cbs.Ready
	c.mu.Unlock()

	log.Debug("connection ready", log.Fields{"uuid": c.id.String()})
	if cb != nil {
		c.runCallback(cb)
	}
}

// OnError fires on a fatal error. During ESTABLISHING this is an
// establishment failure; once READY it is a connection error (spec.md
// §4.6 transition table).
func (c *Connection) OnError(err error) {
	c.mu.Lock()
	if c.state == Closed || c.state == Errored {
		c.mu.Unlock()
		return
	}
	wasEstablishing := c.state == Establishing
	c.setState(Errored)
	c.connProp.SetState(property.Closed)
	estCb, connCb := c.cbs.EstablishmentError, c.cbs.ConnectionError
	c.mu.Unlock()

	c.teardown()

	if wasEstablishing {
		log.Warn("connection establishment failed", log.Fields{"uuid": c.id.String(), "error": err.Error()})
		if estCb != nil {
			c.runCallback(func() { estCb(err) })
		}
		return
	}
	log.Warn("connection error", log.Fields{"uuid": c.id.String(), "error": err.Error()})
	if connCb != nil {
		c.runCallback(func() { connCb(err) })
	}
}

// OnSoftError fires a path-level error that never closes the connection
// (spec.md §7).
func (c *Connection) OnSoftError(err error) {
	c.mu.Lock()
	cb := c.cbs.SoftError
	c.mu.Unlock()
	if cb != nil {
		c.runCallback(func() { cb(err) })
	}
}

// Deliver hands a chunk read by the adapter up to the receive callback,
// reassembling length-prefixed frames first when framed is set; otherwise
// the chunk is delivered opaque, undefined-boundary (spec.md §4.6).
func (c *Connection) Deliver(msg *message.Message) {
	c.mu.Lock()
	framed := c.framed
	cb := c.cbs.Receive
	c.mu.Unlock()

	if !framed {
		if cb != nil {
			c.runCallback(func() { cb(msg) })
		}
		return
	}

	c.mu.Lock()
	c.frames.push(msg.Content)
	var payloads [][]byte
	for {
		p, ok := c.frames.next()
		if !ok {
			break
		}
		payloads = append(payloads, p)
	}
	c.mu.Unlock()

	for _, p := range payloads {
		p := p
		if cb != nil {
			c.runCallback(func() { cb(message.New(p)) })
		}
	}
}

// --- sending ---

// Send enqueues msg for dispatch per the send-queue rules of spec.md
// §4.6; completion is reported asynchronously via Sent/SendError.
func (c *Connection) Send(msg *message.Message, mctx *message.Context) {
	if mctx == nil {
		mctx = message.NewContext()
	}
	props := mctx.EffectiveProperties()

	entry := &sendEntry{msg: msg, mctx: mctx, priority: props.MsgPriority()}
	if lifetime := props.MsgLifetime(); lifetime != property.MsgLifetimeInfinite {
		entry.deadline = time.Now().Add(time.Duration(lifetime) * time.Second)
	}
	c.queue.push(entry)
}

func (c *Connection) dispatchLoop() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-c.closeCh:
			return
		case <-c.queue.notify:
		case <-ticker.C:
		}

		for {
			next, expired, ok := c.queue.popReady(time.Now())
			for _, e := range expired {
				c.reportExpired(e)
			}
			if !ok {
				break
			}
			c.dispatchOne(next)
		}
	}
}

func (c *Connection) reportExpired(_ *sendEntry) {
	err := errors.New(errors.Expired, nil)
	log.Warn("message expired before send", log.Fields{"uuid": c.id.String()})
	c.mu.Lock()
	cb := c.cbs.SendError
	c.mu.Unlock()
	if cb != nil {
		c.runCallback(func() { cb(err) })
	}
}

func (c *Connection) dispatchOne(e *sendEntry) {
	c.mu.Lock()
	proto, framed := c.proto, c.framed
	c.mu.Unlock()

	payload := e.msg.Content
	if framed {
		payload = frame(payload)
	}

	ctx := context.Background()
	err := proto.Send(ctx, message.New(payload), e.mctx)

	c.mu.Lock()
	cb := c.cbs.Sent
	errCb := c.cbs.SendError
	c.mu.Unlock()

	if err != nil {
		log.Warn("send failed", log.Fields{"uuid": c.id.String(), "error": err.Error()})
		if errCb != nil {
			c.runCallback(func() { errCb(err) })
		}
		c.OnError(err)
		return
	}
	if cb != nil {
		c.runCallback(cb)
	}
}

// --- receiving ---

func (c *Connection) receiveLoop() {
	ctx := context.Background()
	for {
		c.mu.Lock()
		state, proto := c.state, c.proto
		c.mu.Unlock()
		if state == Closed || state == Errored {
			return
		}
		if state != Ready {
			select {
			case <-c.closeCh:
				return
			case <-time.After(5 * time.Millisecond):
				continue
			}
		}

		err := proto.Receive(ctx, adapter.ReceiveRequest{MaxBytes: socket.DefaultBufferSize})
		if err != nil {
			select {
			case <-c.closeCh:
				return
			default:
			}
			c.OnError(err)
			return
		}
	}
}

// --- lifecycle ---

// Close performs a graceful shutdown: ESTABLISHING/READY -> CLOSING ->
// CLOSED, firing Closed once teardown completes (spec.md §4.6).
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.state == Closed || c.state == Errored {
		c.mu.Unlock()
		return nil
	}
	c.setState(Closing)
	c.connProp.SetState(property.Closing)
	c.mu.Unlock()

	err := c.teardown()

	c.mu.Lock()
	c.setState(Closed)
	c.connProp.SetState(property.Closed)
	cb := c.cbs.Closed
	c.mu.Unlock()

	log.Debug("connection closed", log.Fields{"uuid": c.id.String()})
	if cb != nil {
		c.runCallback(cb)
	}
	return err
}

// Abort performs an immediate, non-graceful teardown, for callers that
// don't want a drain.
func (c *Connection) Abort() error {
	c.mu.Lock()
	if c.state == Closed || c.state == Errored {
		c.mu.Unlock()
		return nil
	}
	c.setState(Closed)
	c.connProp.SetState(property.Closed)
	c.mu.Unlock()

	err := c.proto.Abort()
	c.teardownOnce()
	if c.mgr != nil {
		_ = c.mgr.Release()
	}
	return err
}

func (c *Connection) teardown() error {
	err := c.proto.Close()
	c.teardownOnce()
	if c.mgr != nil {
		_ = c.mgr.Release()
	}
	return err
}

func (c *Connection) teardownOnce() {
	c.closeOne.Do(func() { close(c.closeCh) })
}
