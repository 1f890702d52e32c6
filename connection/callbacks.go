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

import "github.com/ikhovind/gotaps/message"

// SetCallbacks replaces the full callback set in one call, for a caller
// (package preconnection) that already knows every handler it wants
// before the Connection does anything observable.
func (c *Connection) SetCallbacks(cbs Callbacks) {
	c.mu.Lock()
	c.cbs = cbs
	c.mu.Unlock()
}

// OnReceive registers the receive callback (spec.md §4.5: "registers a
// receive callback"); this is the one a Listener's connection_received
// handler typically calls, since the Connection exists before the
// caller has anywhere to hang a receive handler.
func (c *Connection) OnReceive(cb func(msg *message.Message)) {
	c.mu.Lock()
	c.cbs.Receive = cb
	c.mu.Unlock()
}

func (c *Connection) OnClosed(cb func()) {
	c.mu.Lock()
	c.cbs.Closed = cb
	c.mu.Unlock()
}

func (c *Connection) OnConnectionError(cb func(err error)) {
	c.mu.Lock()
	c.cbs.ConnectionError = cb
	c.mu.Unlock()
}

func (c *Connection) OnSendError(cb func(err error)) {
	c.mu.Lock()
	c.cbs.SendError = cb
	c.mu.Unlock()
}

func (c *Connection) OnSent(cb func()) {
	c.mu.Lock()
	c.cbs.Sent = cb
	c.mu.Unlock()
}

// SetSoftErrorCallback registers the soft_error handler (spec.md §7);
// named apart from the adapter.Session method OnSoftError, which this
// Connection already implements to receive path-level errors from its
// own adapter.
func (c *Connection) SetSoftErrorCallback(cb func(err error)) {
	c.mu.Lock()
	c.cbs.SoftError = cb
	c.mu.Unlock()
}
