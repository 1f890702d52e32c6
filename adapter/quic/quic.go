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

// Package quic is the QUIC protocol adapter: reliable, ordered (per
// stream), message-oriented, multistreaming. A QUIC association accepted
// server-side is one quic.Connection plus N multiplexed per-stream
// Connections sharing one socket.Manager (spec.md §4.7, QUIC adapter
// note in SPEC_FULL.md §4.5).
package quic

import (
	"context"
	"net"
	"sync"

	"github.com/quic-go/quic-go"

	"github.com/ikhovind/gotaps/adapter"
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/errors"
	"github.com/ikhovind/gotaps/message"
	"github.com/ikhovind/gotaps/security"
	"github.com/ikhovind/gotaps/tlsconfig"
)

func init() {
	adapter.Register(adapter.QUIC, func() adapter.Protocol { return New() })
}

func capabilities() adapter.Capabilities {
	return adapter.Capabilities{Reliable: true, PreservesOrder: true, MessageOriented: true, Multistreaming: true, ConfigurableCongCtl: true}
}

const genericApplicationErrorCode = quic.ApplicationErrorCode(0)

// Protocol is the concrete adapter.Protocol for QUIC. One instance
// models a listener (ln set), a dialed association with its one default
// stream (conn and stream set), or one multiplexed stream of an accepted
// association (conn and stream set).
type Protocol struct {
	mu     sync.Mutex
	conn   quic.Connection
	stream quic.Stream
	ln     *quic.Listener
	closed bool
	sess   adapter.Session
}

// SetSession wires the Session that Receive delivers to, for a Protocol
// handed back through Listen's onAccept.
func (p *Protocol) SetSession(sess adapter.Session) {
	p.mu.Lock()
	p.sess = sess
	p.mu.Unlock()
}

// New returns a fresh, unassociated QUIC adapter.
func New() *Protocol {
	return &Protocol{}
}

func (p *Protocol) Name() adapter.Name                 { return adapter.QUIC }
func (p *Protocol) Capabilities() adapter.Capabilities { return capabilities() }

// Addr returns the bound listener address, valid after Listen succeeds.
func (p *Protocol) Addr() net.Addr {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ln == nil {
		return nil
	}
	return p.ln.Addr()
}

// FromStream wraps an already-open quic.Connection/quic.Stream pair,
// used both for accepted streams and to model a dialed candidate's
// default stream.
func FromStream(conn quic.Connection, stream quic.Stream) *Protocol {
	return &Protocol{conn: conn, stream: stream}
}

func (p *Protocol) Init(ctx context.Context, sess adapter.Session, remote []endpoint.Resolved, local *endpoint.Local, sec *security.Parameters) error {
	if len(remote) == 0 {
		return errors.New(errors.InvalidArgument, nil)
	}

	tlsCfg, err := tlsconfig.Build(sec)
	if err != nil {
		sess.OnError(err)
		return err
	}
	if len(tlsCfg.NextProtos) == 0 {
		tlsCfg.NextProtos = []string{"gotaps"}
	}

	addr := &net.UDPAddr{IP: remote[0].IP, Port: int(remote[0].Port)}

	conn, err := quic.DialAddr(ctx, addr.String(), tlsCfg, nil)
	if err != nil {
		err = errors.New(errors.EstablishmentError, err)
		sess.OnError(err)
		return err
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(genericApplicationErrorCode, "stream open failed")
		err = errors.New(errors.EstablishmentError, err)
		sess.OnError(err)
		return err
	}

	p.mu.Lock()
	p.conn = conn
	p.stream = stream
	p.sess = sess
	p.mu.Unlock()

	sess.SetLocalEndpoint(conn.LocalAddr())
	sess.OnReady()
	return nil
}

func (p *Protocol) Send(ctx context.Context, msg *message.Message, mctx *message.Context) error {
	p.mu.Lock()
	stream := p.stream
	p.mu.Unlock()

	if stream == nil {
		return errors.New(errors.SendError, nil)
	}
	if _, err := stream.Write(msg.Content); err != nil {
		return errors.New(errors.SendError, err)
	}
	return nil
}

// Receive reads from the stream and delivers whatever arrived to the
// Session as one message (QUIC streams are message-oriented in this
// adapter: one Receive call delivers one Deliver call).
func (p *Protocol) Receive(ctx context.Context, req adapter.ReceiveRequest) error {
	p.mu.Lock()
	stream, sess := p.stream, p.sess
	p.mu.Unlock()

	if stream == nil {
		return errors.New(errors.ConnectionError, nil)
	}

	size := req.MaxBytes
	if size <= 0 {
		size = 64 * 1024
	}
	buf := make([]byte, size)
	n, err := stream.Read(buf)
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

	if p.ln != nil {
		_ = p.ln.Close()
	}
	if p.stream != nil {
		_ = p.stream.Close()
	}
	if p.conn != nil {
		return p.conn.CloseWithError(genericApplicationErrorCode, "")
	}
	return nil
}

func (p *Protocol) Abort() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.conn != nil {
		return p.conn.CloseWithError(genericApplicationErrorCode, "aborted")
	}
	return nil
}

func (p *Protocol) Listen(ctx context.Context, local *endpoint.Local, sec *security.Parameters, onAccept func(adapter.Protocol)) error {
	resolved, err := endpoint.ResolveLocal(local)
	if err != nil {
		return err
	}

	tlsCfg, err := tlsconfig.Build(sec)
	if err != nil {
		return err
	}
	if len(tlsCfg.NextProtos) == 0 {
		tlsCfg.NextProtos = []string{"gotaps"}
	}

	ln, err := quic.ListenAddr(resolved[0].String(), tlsCfg, nil)
	if err != nil {
		return errors.New(errors.EstablishmentError, err)
	}

	p.mu.Lock()
	p.ln = ln
	p.mu.Unlock()

	go acceptLoop(ctx, ln, onAccept)
	return nil
}

// acceptLoop accepts QUIC associations and, per association, accepts
// every multiplexed stream, reporting each as its own Protocol/Session
// pair sharing the parent connection (spec.md §4.7).
func acceptLoop(ctx context.Context, ln *quic.Listener, onAccept func(adapter.Protocol)) {
	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			return
		}
		go streamAcceptLoop(ctx, conn, onAccept)
	}
}

func streamAcceptLoop(ctx context.Context, conn quic.Connection, onAccept func(adapter.Protocol)) {
	for {
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			return
		}
		onAccept(FromStream(conn, stream))
	}
}
