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

// Package adapter defines the protocol-adapter vtable of spec.md §4.5:
// a capability descriptor plus init/send/receive/close/abort/listen,
// operating against a minimal Session so the adapter package never
// imports package connection (avoiding the import cycle connection ->
// adapter -> connection).
package adapter

import (
	"context"
	"net"

	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/message"
	"github.com/ikhovind/gotaps/property"
	"github.com/ikhovind/gotaps/security"
)

// Name identifies a registered protocol adapter.
type Name string

const (
	UDP  Name = "udp"
	TCP  Name = "tcp"
	QUIC Name = "quic"
)

// Capabilities describes what a protocol stack can satisfy, evaluated
// against SelectionProperties by the candidate-gathering engine
// (spec.md §4.3).
type Capabilities struct {
	Reliable            bool
	PreservesOrder      bool
	MessageOriented     bool // true: preserves message boundaries natively
	Multistreaming      bool
	ConfigurableCongCtl bool
}

// Satisfies reports whether these capabilities meet pref for the named
// selection property; used by the eligibility filter and the PREFER/AVOID
// ranking pass.
func (c Capabilities) Satisfies(name property.SelectionName, pref property.Preference) bool {
	has := c.has(name)
	switch pref {
	case property.Require:
		return has
	case property.Prohibit:
		return !has
	default: // AVOID, PREFER, NO_PREFERENCE never disqualify
		return true
	}
}

// Score returns +1 if these capabilities satisfy a PREFER for name (the
// capability is present) or an AVOID (the capability is absent), -1 if
// the capability is present when AVOID was requested, else 0. Used for
// the PREFER-minus-AVOID ranking pass (spec.md §4.3 step 2).
func (c Capabilities) Score(name property.SelectionName, pref property.Preference) int {
	has := c.has(name)
	switch pref {
	case property.Prefer:
		if has {
			return 1
		}
		return 0
	case property.Avoid:
		if !has {
			return 1
		}
		return -1
	default:
		return 0
	}
}

// RequiresFraming reports whether a Connection wrapping caps under sel
// needs explicit length-prefix framing: true only for a byte-stream
// transport (not message-oriented) with PRESERVE_MSG_BOUNDARIES=REQUIRE
// (spec.md §4.6).
func RequiresFraming(caps Capabilities, sel *property.SelectionProperties) bool {
	return !caps.MessageOriented && sel.Get(property.PreserveMsgBoundaries) == property.Require
}

func (c Capabilities) has(name property.SelectionName) bool {
	switch name {
	case property.Reliability:
		return c.Reliable
	case property.PreserveOrder:
		return c.PreservesOrder
	case property.PreserveMsgBoundaries:
		return c.MessageOriented
	case property.Multistreaming:
		return c.Multistreaming
	case property.CongestionControl:
		return c.ConfigurableCongCtl
	default:
		return false
	}
}

// Session is the minimal view of a Connection an adapter needs: enough
// to report readiness/errors/data without depending on package
// connection's concrete type.
type Session interface {
	// LocalEndpoint is set by the adapter once bound, nil until then.
	SetLocalEndpoint(addr net.Addr)
	// OnReady is invoked exactly once, when Init succeeds.
	OnReady()
	// OnError is invoked on a fatal, connection-closing error.
	OnError(err error)
	// OnSoftError is invoked on a non-fatal path error; never closes the
	// connection (spec.md §7).
	OnSoftError(err error)
	// Deliver hands a received message up to the connection's receive
	// queue.
	Deliver(msg *message.Message)
}

// ReceiveRequest parameterizes one Receive call the way spec.md's
// receive contract allows a caller to bound how much/whether it wants.
type ReceiveRequest struct {
	MinBytes int
	MaxBytes int
}

// Protocol is the vtable every concrete adapter (tcp, udp, quic)
// implements (spec.md §4.5).
type Protocol interface {
	Name() Name
	Capabilities() Capabilities

	// Init establishes the association (dial for a client candidate,
	// nothing beyond socket creation for a to-be-accepted session) and
	// calls sess.OnReady on success or sess.OnError on failure.
	Init(ctx context.Context, sess Session, remote []endpoint.Resolved, local *endpoint.Local, sec *security.Parameters) error

	// Send writes msg's content as given. Ordering, priority and framing
	// are applied by the Connection before Send is called; of mctx, an
	// adapter consults at most the remote-endpoint override.
	Send(ctx context.Context, msg *message.Message, mctx *message.Context) error

	// Receive reads the next message per req and delivers it to the
	// Session via Deliver; a read failure is returned to the caller.
	Receive(ctx context.Context, req ReceiveRequest) error

	// Close performs a graceful shutdown.
	Close() error

	// Abort performs an immediate, non-graceful teardown (used for
	// losing candidates in the race, spec.md §4.4).
	Abort() error

	// Listen binds local and begins accepting; each accepted peer is
	// reported via onAccept as a fresh, already-associated Protocol
	// instance. The caller (package listener) is responsible for
	// constructing the Session, wiring callbacks, and marking it ready.
	Listen(ctx context.Context, local *endpoint.Local, sec *security.Parameters, onAccept func(Protocol)) error
}
