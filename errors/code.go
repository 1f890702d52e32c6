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

package errors

// CodeError classifies an Error per the taxonomy in spec.md §7.
type CodeError uint16

const (
	UnknownError CodeError = iota
	InvalidArgument
	OutOfMemory
	NoCandidate
	EstablishmentError
	PathError
	ConnectionError
	SendError
	DNSError
	NoPort
	NoInterface
	Timeout
	Expired
)

var messages = map[CodeError]string{
	UnknownError:        "unknown error",
	InvalidArgument:      "invalid argument",
	OutOfMemory:          "out of memory",
	NoCandidate:          "no candidate protocol stack satisfies the requested properties",
	EstablishmentError:   "establishment error",
	PathError:            "path or soft error",
	ConnectionError:      "connection error",
	SendError:            "send error",
	DNSError:             "dns resolution failed",
	NoPort:               "no port could be resolved",
	NoInterface:          "named interface could not be resolved",
	Timeout:              "establishment timed out",
	Expired:               "message expired before it could be sent",
}

// Message returns the default human-readable message for c.
func (c CodeError) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return messages[UnknownError]
}
