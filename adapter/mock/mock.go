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

// Package mock is a link-free adapter.Protocol for unit tests that need
// an establishment/send/receive cycle without opening a real socket. A
// pair obtained from NewPair shares an in-process net.Pipe, so tests can
// drive both ends without touching the network stack.
package mock

import (
	"context"
	"net"
	"sync"

	"github.com/ikhovind/gotaps/adapter"
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/errors"
	"github.com/ikhovind/gotaps/message"
	"github.com/ikhovind/gotaps/security"
)

func init() {
	adapter.Register(adapter.Name("mock"), func() adapter.Protocol { return New(adapter.Capabilities{}) })
}

// Protocol is a Protocol over an in-process net.Conn (typically one end
// of a net.Pipe pair). FailInit, when set, makes Init report an error
// without ever calling OnReady, for exercising race/listener failure
// paths without a real unreachable address.
type Protocol struct {
	mu     sync.Mutex
	caps   adapter.Capabilities
	conn   net.Conn
	closed bool
	sess   adapter.Session

	FailInit error
}

// SetSession wires the Session that Receive delivers to, for a Protocol
// handed back through Listen's onAccept.
func (p *Protocol) SetSession(sess adapter.Session) {
	p.mu.Lock()
	p.sess = sess
	p.mu.Unlock()
}

// New returns a Protocol with no underlying conn yet; Init must be
// called, or the conn wired directly via SetConn for accepted-side use.
func New(caps adapter.Capabilities) *Protocol {
	return &Protocol{caps: caps}
}

// NewPair returns two mock Protocols sharing one net.Pipe, modeling an
// already-established link between two endpoints — the common case for
// connection/listener tests that don't need Init/Listen at all.
func NewPair(caps adapter.Capabilities) (client, server *Protocol) {
	c1, c2 := net.Pipe()
	return &Protocol{caps: caps, conn: c1}, &Protocol{caps: caps, conn: c2}
}

func (p *Protocol) Name() adapter.Name                 { return adapter.Name("mock") }
func (p *Protocol) Capabilities() adapter.Capabilities { return p.caps }

// SetConn wires an already-open conn, used by a Listener's onAccept path
// to hand a freshly paired mock Protocol to the connection layer.
func (p *Protocol) SetConn(conn net.Conn) {
	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()
}

func (p *Protocol) Init(ctx context.Context, sess adapter.Session, remote []endpoint.Resolved, local *endpoint.Local, sec *security.Parameters) error {
	if p.FailInit != nil {
		sess.OnError(p.FailInit)
		return p.FailInit
	}

	p.mu.Lock()
	conn := p.conn
	if conn == nil {
		conn, p.conn = net.Pipe()
		go func(peer net.Conn) { <-ctx.Done(); _ = peer.Close() }(conn)
	}
	p.sess = sess
	p.mu.Unlock()

	sess.SetLocalEndpoint(conn.LocalAddr())
	sess.OnReady()
	return nil
}

func (p *Protocol) Send(ctx context.Context, msg *message.Message, mctx *message.Context) error {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()

	if conn == nil {
		return errors.New(errors.SendError, nil)
	}
	if _, err := conn.Write(msg.Content); err != nil {
		return errors.New(errors.SendError, err)
	}
	return nil
}

func (p *Protocol) Receive(ctx context.Context, req adapter.ReceiveRequest) error {
	p.mu.Lock()
	conn, sess := p.conn, p.sess
	p.mu.Unlock()

	if conn == nil {
		return errors.New(errors.ConnectionError, nil)
	}

	size := req.MaxBytes
	if size <= 0 {
		size = 4096
	}
	buf := make([]byte, size)
	n, err := conn.Read(buf)
	if err != nil {
		return errors.New(errors.ConnectionError, err)
	}
	if sess != nil && n > 0 {
		sess.Deliver(message.New(buf[:n]))
	}
	return nil
}

func (p *Protocol) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *Protocol) Abort() error { return p.Close() }

func (p *Protocol) Listen(ctx context.Context, local *endpoint.Local, sec *security.Parameters, onAccept func(adapter.Protocol)) error {
	go func() {
		<-ctx.Done()
	}()
	return nil
}
