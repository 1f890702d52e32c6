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

// Package tcp is the TCP protocol adapter: reliable, ordered,
// byte-stream, single-stream. When PRESERVE_MSG_BOUNDARIES=REQUIRE, the
// connection package is responsible for length-prefix framing (spec.md
// §4.6) — this adapter only ever sees opaque bytes.
package tcp

import (
	"context"
	"net"
	"sync"

	"github.com/ikhovind/gotaps/adapter"
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/errors"
	"github.com/ikhovind/gotaps/message"
	"github.com/ikhovind/gotaps/security"
	"github.com/ikhovind/gotaps/tlsconfig"
)

func init() {
	adapter.Register(adapter.TCP, func() adapter.Protocol { return New() })
}

func capabilities() adapter.Capabilities {
	return adapter.Capabilities{Reliable: true, PreservesOrder: true, ConfigurableCongCtl: true}
}

// Protocol is the concrete adapter.Protocol for TCP.
type Protocol struct {
	mu       sync.Mutex
	conn     net.Conn
	listener net.Listener
	closed   bool
	sess     adapter.Session
}

// New returns a fresh, unassociated TCP adapter.
func New() *Protocol {
	return &Protocol{}
}

func (p *Protocol) Name() adapter.Name                 { return adapter.TCP }
func (p *Protocol) Capabilities() adapter.Capabilities { return capabilities() }

// Addr returns the bound listener address, valid after Listen succeeds
// (needed when the caller bound to port 0 and must learn the ephemeral
// port the OS assigned).
func (p *Protocol) Addr() net.Addr {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener == nil {
		return nil
	}
	return p.listener.Addr()
}

// FromAccepted wraps an already-accepted net.Conn (used by Listen's
// onAccept, and directly by this package's tests).
func FromAccepted(c net.Conn) *Protocol {
	return &Protocol{conn: c}
}

// SetSession wires the Session that Receive delivers to, for a Protocol
// handed back through Listen's onAccept — the listener package
// constructs the Session only after seeing the accepted Protocol, so it
// cannot be supplied any earlier than this.
func (p *Protocol) SetSession(sess adapter.Session) {
	p.mu.Lock()
	p.sess = sess
	p.mu.Unlock()
}

func (p *Protocol) Init(ctx context.Context, sess adapter.Session, remote []endpoint.Resolved, local *endpoint.Local, sec *security.Parameters) error {
	if len(remote) == 0 {
		return errors.New(errors.InvalidArgument, nil)
	}

	p.mu.Lock()
	p.sess = sess
	p.mu.Unlock()

	var lastErr error
	var dialer net.Dialer

	for _, r := range remote {
		conn, err := dialer.DialContext(ctx, "tcp", r.String())
		if err != nil {
			lastErr = err
			continue
		}

		if sec != nil && (sec.CertificateFile != "" || len(sec.ALPN) > 0 || sec.ServerName != "") {
			tlsCfg, err := tlsconfig.Build(sec)
			if err != nil {
				_ = conn.Close()
				sess.OnError(err)
				return err
			}
			conn = tlsClient(conn, tlsCfg)
		}

		p.mu.Lock()
		p.conn = conn
		p.mu.Unlock()

		sess.SetLocalEndpoint(conn.LocalAddr())
		sess.OnReady()
		return nil
	}

	err := errors.New(errors.EstablishmentError, lastErr)
	sess.OnError(err)
	return err
}

func (p *Protocol) Send(ctx context.Context, msg *message.Message, mctx *message.Context) error {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()

	if conn == nil {
		return errors.New(errors.SendError, nil)
	}
	_, err := conn.Write(msg.Content)
	if err != nil {
		return errors.New(errors.SendError, err)
	}
	return nil
}

// Receive performs one read and delivers whatever bytes arrived to the
// Session as an opaque chunk; message framing for
// PRESERVE_MSG_BOUNDARIES=REQUIRE is the connection package's job
// (spec.md §4.6), not this adapter's.
func (p *Protocol) Receive(ctx context.Context, req adapter.ReceiveRequest) error {
	p.mu.Lock()
	conn, sess := p.conn, p.sess
	p.mu.Unlock()

	if conn == nil {
		return errors.New(errors.ConnectionError, nil)
	}

	size := req.MaxBytes
	if size <= 0 {
		size = 64 * 1024
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
	if p.listener != nil {
		_ = p.listener.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *Protocol) Abort() error {
	return p.Close()
}

func (p *Protocol) Listen(ctx context.Context, local *endpoint.Local, sec *security.Parameters, onAccept func(adapter.Protocol)) error {
	resolved, err := endpoint.ResolveLocal(local)
	if err != nil {
		return err
	}

	addr := resolved[0].String()
	var ln net.Listener

	if sec != nil && (sec.CertificateFile != "" || len(sec.ALPN) > 0) {
		tlsCfg, err := tlsconfig.Build(sec)
		if err != nil {
			return err
		}
		ln, err = tlsListen(addr, tlsCfg)
		if err != nil {
			return errors.New(errors.EstablishmentError, err)
		}
	} else {
		ln, err = net.Listen("tcp", addr)
		if err != nil {
			return errors.New(errors.EstablishmentError, err)
		}
	}

	p.mu.Lock()
	p.listener = ln
	p.mu.Unlock()

	go acceptLoop(ctx, ln, onAccept)
	return nil
}

func acceptLoop(ctx context.Context, ln net.Listener, onAccept func(adapter.Protocol)) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		select {
		case <-ctx.Done():
			_ = conn.Close()
			return
		default:
		}
		onAccept(FromAccepted(conn))
	}
}
