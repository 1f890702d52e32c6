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

// Package reactor implements the single-threaded cooperative scheduler
// of spec.md §5: one goroutine runs every submitted unit of work
// serially, so no two user callbacks — regardless of which Connection
// or Listener they belong to — ever execute concurrently with each
// other.
//
// Go's net.Conn has no non-blocking read, so multiplexing every
// connection's inbound bytes onto a single OS thread the way an
// epoll-based reactor would isn't idiomatic Go; a goroutine per blocking
// read is. What Reactor actually centralizes is the invariant spec.md
// §5 cares about — callback serialization — not the thread count behind
// blocking I/O: a Connection's read goroutine still blocks in its own
// call to Protocol.Receive, but the callback that read triggers is
// Submitted here rather than invoked inline, so it runs in turn with
// every other connection's callbacks instead of concurrently with them.
package reactor
