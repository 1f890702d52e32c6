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
	"sync"
	"time"

	"github.com/ikhovind/gotaps/message"
)

// sendEntry is one pending (message, context) tuple on the queue
// (spec.md §4.6); completion is reported through the Connection's
// Sent/SendError callbacks, not per-entry.
type sendEntry struct {
	msg      *message.Message
	mctx     *message.Context
	priority int
	deadline time.Time // zero means msgLifetime == infinite, never expires
}

func (e *sendEntry) expired(now time.Time) bool {
	return !e.deadline.IsZero() && now.After(e.deadline)
}

// sendQueue is the ordered per-connection FIFO of spec.md §4.6. Ordered
// messages (msgOrdered=true) are dispatched in strict enqueue order
// relative to each other. Unordered messages may jump ahead of any
// pending ordered ones; among themselves and against each other they are
// picked highest-priority-first, ties broken by enqueue order.
type sendQueue struct {
	mu       sync.Mutex
	ordered  []*sendEntry
	unordered []*sendEntry
	notify   chan struct{}
}

func newSendQueue() *sendQueue {
	return &sendQueue{notify: make(chan struct{}, 1)}
}

// push enqueues e and wakes the dispatch loop.
func (q *sendQueue) push(e *sendEntry) {
	q.mu.Lock()
	if e.mctx.EffectiveProperties().MsgOrdered() {
		q.ordered = append(q.ordered, e)
	} else {
		q.unordered = append(q.unordered, e)
	}
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// popReady removes and returns the next entry to dispatch along with any
// entries that expired and were dropped in the same pass, or ok=false if
// the queue holds nothing ready yet.
func (q *sendQueue) popReady(now time.Time) (next *sendEntry, expired []*sendEntry, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.unordered, expired = dropExpired(q.unordered, now)
	var orderedExpired []*sendEntry
	q.ordered, orderedExpired = dropExpired(q.ordered, now)
	expired = append(expired, orderedExpired...)

	if len(q.unordered) > 0 {
		idx := highestPriorityIndex(q.unordered)
		next = q.unordered[idx]
		q.unordered = append(q.unordered[:idx:idx], q.unordered[idx+1:]...)
		return next, expired, true
	}
	if len(q.ordered) > 0 {
		next = q.ordered[0]
		q.ordered = q.ordered[1:]
		return next, expired, true
	}
	return nil, expired, false
}

func dropExpired(entries []*sendEntry, now time.Time) (kept, expired []*sendEntry) {
	kept = entries[:0:0]
	for _, e := range entries {
		if e.expired(now) {
			expired = append(expired, e)
		} else {
			kept = append(kept, e)
		}
	}
	return kept, expired
}

func highestPriorityIndex(entries []*sendEntry) int {
	best := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].priority > entries[best].priority {
			best = i
		}
	}
	return best
}
