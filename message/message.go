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

// Package message implements Message and MessageContext (spec.md §3):
// an opaque byte payload plus optional per-send properties and endpoint
// override.
package message

import (
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/property"
)

// Message is an opaque byte sequence. Content is not null-terminated by
// contract; Len is bytewise (spec.md §3).
type Message struct {
	Content []byte
}

// New builds a Message by copying content, so the caller's buffer may be
// reused or freed immediately after the call.
func New(content []byte) *Message {
	return &Message{Content: append([]byte(nil), content...)}
}

// Len reports the payload length in bytes.
func (m *Message) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Content)
}

// Context is the per-send MessageContext: per-message properties plus
// an optional endpoint override for sendmsg-style datagram sends to a
// peer other than the Connection's bound remote.
type Context struct {
	Properties     *property.MessageProperties
	RemoteOverride *endpoint.Remote
}

// NewContext returns a Context with default MessageProperties and no
// endpoint override.
func NewContext() *Context {
	return &Context{Properties: property.BuildMessageProperties()}
}

// WithProperties returns a copy of c with Properties replaced.
func (c *Context) WithProperties(p *property.MessageProperties) *Context {
	if c == nil {
		c = NewContext()
	}
	cp := *c
	cp.Properties = p
	return &cp
}

// WithRemoteOverride returns a copy of c with a per-send remote endpoint
// override set.
func (c *Context) WithRemoteOverride(r *endpoint.Remote) *Context {
	if c == nil {
		c = NewContext()
	}
	cp := *c
	cp.RemoteOverride = r.DeepCopy()
	return &cp
}

// effectiveProperties returns c's properties, or the package defaults if
// c or its Properties field is nil.
func (c *Context) effectiveProperties() *property.MessageProperties {
	if c == nil || c.Properties == nil {
		return property.BuildMessageProperties()
	}
	return c.Properties
}

// EffectiveProperties is a nil-safe accessor used by the connection
// package's send queue to read ordering/priority/lifetime without a nil
// check at every call site.
func (c *Context) EffectiveProperties() *property.MessageProperties {
	return c.effectiveProperties()
}
