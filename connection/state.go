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

import "github.com/ikhovind/gotaps/property"

// State is the internal Connection lifecycle (spec.md §4.6). It has one
// member, Errored, that property.ConnState does not: the public STATE
// property only distinguishes ESTABLISHING/READY/CLOSING/CLOSED, folding
// ERRORED into CLOSED (spec.md §3 names STATE with those four values
// only). ToProperty performs that fold.
type State int

const (
	Establishing State = iota
	Ready
	Closing
	Closed
	Errored
)

func (s State) String() string {
	switch s {
	case Establishing:
		return "ESTABLISHING"
	case Ready:
		return "READY"
	case Closing:
		return "CLOSING"
	case Closed:
		return "CLOSED"
	case Errored:
		return "ERRORED"
	default:
		return "UNKNOWN"
	}
}

// ToProperty folds the internal five-state machine onto the four-valued
// public STATE property.
func (s State) ToProperty() property.ConnState {
	if s == Errored {
		return property.Closed
	}
	return property.ConnState(s)
}
