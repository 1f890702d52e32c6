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

// Package errors implements the error taxonomy described in spec.md §7: a
// CodeError-tagged Error that carries an optional parent chain and the
// call site it was raised from, instead of a bare error string.
package errors

import (
	"fmt"
	"runtime"
	"strings"
)

type ers struct {
	code   CodeError
	msg    string
	parent []Error
	frame  runtime.Frame
}

// Error extends the standard error with a taxonomy code, a parent chain
// and the call site that raised it.
type Error interface {
	error

	// IsCode reports whether this error's own code equals c (parents are
	// not consulted).
	IsCode(c CodeError) bool

	// Code returns this error's own taxonomy code.
	Code() CodeError

	// Add appends parent errors, turning this error into the root of a
	// hierarchy; Error() joins this error's message with every parent's.
	// tlsconfig.Build uses it to collect validation failures.
	Add(errs ...error)

	// HasParent reports whether any parent error has been recorded.
	HasParent() bool

	// GetFile and GetLine report the call site New was invoked from.
	GetFile() string
	GetLine() int
}

// New creates an Error tagged with code, optionally wrapping cause, with
// the call site captured via runtime.Caller.
func New(code CodeError, cause error) Error {
	e := &ers{code: code, frame: callerFrame(2)}
	if cause != nil {
		e.msg = cause.Error()
	}
	return e
}

// Newf behaves like New but formats the message like fmt.Errorf.
func Newf(code CodeError, format string, args ...any) Error {
	e := &ers{code: code, msg: fmt.Sprintf(format, args...), frame: callerFrame(2)}
	return e
}

func callerFrame(skip int) runtime.Frame {
	pc := make([]uintptr, 1)
	n := runtime.Callers(skip+1, pc)
	if n == 0 {
		return runtime.Frame{}
	}
	frames := runtime.CallersFrames(pc[:n])
	f, _ := frames.Next()
	return f
}

func (e *ers) Error() string {
	parts := make([]string, 0, 1+len(e.parent))
	if e.msg != "" {
		parts = append(parts, e.msg)
	} else if e.code != UnknownError {
		parts = append(parts, e.code.Message())
	}
	for _, p := range e.parent {
		if p != nil {
			parts = append(parts, p.Error())
		}
	}
	return strings.Join(parts, ": ")
}

func (e *ers) IsCode(c CodeError) bool {
	return e.code == c
}

func (e *ers) Code() CodeError {
	return e.code
}

func (e *ers) Add(errs ...error) {
	for _, er := range errs {
		if er == nil {
			continue
		}
		if ce, ok := er.(Error); ok {
			e.parent = append(e.parent, ce)
		} else {
			e.parent = append(e.parent, New(UnknownError, er))
		}
	}
}

func (e *ers) HasParent() bool {
	return len(e.parent) > 0
}

func (e *ers) GetFile() string {
	return e.frame.File
}

func (e *ers) GetLine() int {
	return e.frame.Line
}
