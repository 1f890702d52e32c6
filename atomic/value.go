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

// Package atomic provides a generic, type-safe holder for a single value
// that is mutated on one goroutine but read from arbitrary caller
// goroutines; in gotaps it backs Connection's state mirror. Each Value is
// guarded by its own mutex.
package atomic

import "sync"

// Value is a generic CAS-capable holder for a single value of type T.
type Value[T comparable] interface {
	// Load returns the current value, or the zero value of T if Store was
	// never called.
	Load() T

	// Store sets the current value.
	Store(v T)

	// Swap atomically replaces the value and returns the previous one.
	Swap(v T) (old T)

	// CompareAndSwap atomically sets the value to new if the current value
	// equals old. Returns whether the swap happened.
	CompareAndSwap(old, new T) bool
}

type val[T comparable] struct {
	mu sync.Mutex
	v  T
}

// NewValue returns a Value[T] whose zero state reads back as the zero
// value of T.
//
// Example:
//
//	s := NewValue[connection.State]()
//	s.Store(connection.Establishing)
func NewValue[T comparable]() Value[T] {
	return &val[T]{}
}

func (v *val[T]) Load() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.v
}

func (v *val[T]) Store(x T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.v = x
}

func (v *val[T]) Swap(x T) (old T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	old = v.v
	v.v = x
	return old
}

func (v *val[T]) CompareAndSwap(old, new T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.v != old {
		return false
	}
	v.v = new
	return true
}
