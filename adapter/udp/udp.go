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

// Package udp is the UDP protocol adapter: unreliable, unordered,
// message-oriented (one datagram per Send/Receive). When a local
// endpoint names an interface, the outbound multicast interface is
// pinned via golang.org/x/net/ipv4 or ipv6, since net.ListenPacket alone
// cannot express that.
package udp

import (
	"context"
	"net"
	"sync"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/ikhovind/gotaps/adapter"
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/errors"
	"github.com/ikhovind/gotaps/message"
	"github.com/ikhovind/gotaps/security"
)

func init() {
	adapter.Register(adapter.UDP, func() adapter.Protocol { return New() })
}

func capabilities() adapter.Capabilities {
	return adapter.Capabilities{MessageOriented: true}
}

// Protocol is the concrete adapter.Protocol for UDP.
type Protocol struct {
	mu     sync.Mutex
	conn   net.PacketConn
	peer   net.Addr
	closed bool
	sess   adapter.Session

	// demux carries datagrams the Listener's shared receiveLoop matched to
	// this peer by source address (spec.md §4.7: "demultiplexed UDP socket
	// underlying N peer Connections"); nil for a non-listener-spawned
	// Protocol, which reads conn directly in Receive.
	demux chan []byte

	// listening tracks the peer demux table for a Protocol bound via
	// Listen, so its receiveLoop can route each inbound datagram to the
	// right peer's demux channel instead of every peer racing to read the
	// same socket.
	listening *peerTable
}

// peerTable maps a UDP peer address to the demultiplexed Protocol
// receiveLoop spawned for it, so every datagram after the first from a
// given peer reaches that peer's own Connection instead of whichever
// goroutine happens to call conn.ReadFrom next.
type peerTable struct {
	mu    sync.Mutex
	peers map[string]*Protocol
}

func newPeerTable() *peerTable { return &peerTable{peers: map[string]*Protocol{}} }

// New returns a fresh, unassociated UDP adapter.
func New() *Protocol {
	return &Protocol{}
}

// SetSession wires the Session that Receive delivers datagrams to, for a
// Protocol handed back through Listen's onAccept.
func (p *Protocol) SetSession(sess adapter.Session) {
	p.mu.Lock()
	p.sess = sess
	p.mu.Unlock()
}

func (p *Protocol) Name() adapter.Name                 { return adapter.UDP }
func (p *Protocol) Capabilities() adapter.Capabilities { return capabilities() }

// Addr returns the bound local address, valid after Init or Listen
// succeeds (needed when the caller bound to port 0 and must learn the
// ephemeral port the OS assigned).
func (p *Protocol) Addr() net.Addr {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	return p.conn.LocalAddr()
}

func (p *Protocol) Init(ctx context.Context, sess adapter.Session, remote []endpoint.Resolved, local *endpoint.Local, sec *security.Parameters) error {
	if len(remote) == 0 {
		return errors.New(errors.InvalidArgument, nil)
	}

	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		err = errors.New(errors.EstablishmentError, err)
		sess.OnError(err)
		return err
	}

	if err := bindInterface(conn, local); err != nil {
		_ = conn.Close()
		sess.OnError(err)
		return err
	}

	peerAddr := &net.UDPAddr{IP: remote[0].IP, Port: int(remote[0].Port)}

	p.mu.Lock()
	p.conn = conn
	p.peer = peerAddr
	p.sess = sess
	p.mu.Unlock()

	sess.SetLocalEndpoint(conn.LocalAddr())
	sess.OnReady()
	return nil
}

// bindInterface pins the outbound multicast interface on conn when
// local names one, using x/net/ipv4 or x/net/ipv6 depending on the
// resolved address family (net.PacketConn has no portable "bind to
// interface" option of its own).
func bindInterface(conn net.PacketConn, local *endpoint.Local) error {
	if local == nil || local.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(local.Interface)
	if err != nil {
		return errors.New(errors.NoInterface, err)
	}

	if udpAddr, ok := conn.LocalAddr().(*net.UDPAddr); ok && udpAddr.IP.To4() == nil {
		p6 := ipv6.NewPacketConn(conn)
		if err := p6.SetMulticastInterface(iface); err != nil {
			return errors.New(errors.NoInterface, err)
		}
		return nil
	}

	p4 := ipv4.NewPacketConn(conn)
	if err := p4.SetMulticastInterface(iface); err != nil {
		return errors.New(errors.NoInterface, err)
	}
	return nil
}

func (p *Protocol) Send(ctx context.Context, msg *message.Message, mctx *message.Context) error {
	p.mu.Lock()
	conn, peer := p.conn, p.peer
	p.mu.Unlock()

	if conn == nil {
		return errors.New(errors.SendError, nil)
	}

	if mctx != nil && mctx.RemoteOverride != nil {
		resolved, err := endpoint.ResolveRemote(ctx, mctx.RemoteOverride)
		if err != nil {
			return errors.New(errors.SendError, err)
		}
		if len(resolved) > 0 {
			peer = &net.UDPAddr{IP: resolved[0].IP, Port: int(resolved[0].Port)}
		}
	}

	if _, err := conn.WriteTo(msg.Content, peer); err != nil {
		return errors.New(errors.SendError, err)
	}
	return nil
}

// Receive reads exactly one datagram and delivers it whole to the
// Session (UDP is message-oriented: one datagram is one message). A
// Protocol spawned for a demultiplexed peer (via Listen's onAccept)
// pulls from its demux channel instead of reading the shared socket
// directly, so concurrent peer Connections never race for the same
// inbound datagram.
func (p *Protocol) Receive(ctx context.Context, req adapter.ReceiveRequest) error {
	p.mu.Lock()
	conn, sess, demux := p.conn, p.sess, p.demux
	p.mu.Unlock()

	if conn == nil {
		return errors.New(errors.ConnectionError, nil)
	}

	if demux != nil {
		select {
		case buf, ok := <-demux:
			if !ok {
				return errors.New(errors.ConnectionError, nil)
			}
			if sess != nil {
				sess.Deliver(message.New(buf))
			}
			return nil
		case <-ctx.Done():
			return errors.New(errors.ConnectionError, ctx.Err())
		}
	}

	size := req.MaxBytes
	if size <= 0 {
		size = 64 * 1024
	}
	buf := make([]byte, size)
	n, _, err := conn.ReadFrom(buf)
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
	// A demultiplexed peer shares the Listener's socket, which only the
	// Listener's own Protocol closes.
	if p.conn != nil && p.demux == nil {
		return p.conn.Close()
	}
	return nil
}

func (p *Protocol) Abort() error { return p.Close() }

func (p *Protocol) Listen(ctx context.Context, local *endpoint.Local, sec *security.Parameters, onAccept func(adapter.Protocol)) error {
	resolved, err := endpoint.ResolveLocal(local)
	if err != nil {
		return err
	}

	conn, err := net.ListenPacket("udp", resolved[0].String())
	if err != nil {
		return errors.New(errors.EstablishmentError, err)
	}

	table := newPeerTable()
	p.mu.Lock()
	p.conn = conn
	p.listening = table
	p.mu.Unlock()

	go p.receiveLoop(ctx, conn, table, onAccept)
	return nil
}

// receiveLoop demultiplexes inbound datagrams by source address: UDP has
// no explicit accept, so the first datagram from a new peer spawns a new
// Protocol sharing this Listener's socket.Manager (spec.md §4.7), and
// every subsequent datagram from the same peer is routed to that same
// Protocol's demux channel instead of racing every peer's Receive call
// against the shared socket.
func (p *Protocol) receiveLoop(ctx context.Context, conn net.PacketConn, table *peerTable, onAccept func(adapter.Protocol)) {
	buf := make([]byte, 64*1024)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		payload := append([]byte(nil), buf[:n]...)
		key := addr.String()

		table.mu.Lock()
		peerProto, known := table.peers[key]
		if !known {
			peerProto = &Protocol{conn: conn, peer: addr, demux: make(chan []byte, 16)}
			table.peers[key] = peerProto
		}
		table.mu.Unlock()

		if !known {
			peerProto.demux <- payload
			onAccept(peerProto)
			continue
		}
		select {
		case peerProto.demux <- payload:
		case <-ctx.Done():
			return
		}
	}
}
