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

// Package log is the ambient logging concern carried regardless of
// spec.md's Non-goals (spec.md §6): SetLevel/AddFile map directly onto
// set_log_level/add_log_file, backed by logrus the way the teacher's
// logger package is.
package log

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu  sync.Mutex
	std = logrus.New()
)

func init() {
	std.SetLevel(InfoLevel.logrus())
}

// Fields is a structured-logging field set, attached per log call the way
// the teacher's logger.Fields type is (e.g. connection UUID, protocol,
// remote address).
type Fields map[string]any

func (f Fields) logrus() logrus.Fields {
	out := make(logrus.Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// SetLevel sets the minimum level the standard logger emits at, realizing
// set_log_level from spec.md §6.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	std.SetLevel(l.logrus())
}

// AddFile adds an append-mode file hook that receives entries at or above
// min, realizing add_log_file from spec.md §6. A single file per call;
// rotation is out of scope (spec.md §1).
func AddFile(path string, min Level) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	std.AddHook(&fileHook{file: f, level: min.logrus()})
	return nil
}

type fileHook struct {
	file  *os.File
	level logrus.Level
}

func (h *fileHook) Levels() []logrus.Level {
	levels := make([]logrus.Level, 0, h.level+1)
	for l := logrus.PanicLevel; l <= h.level; l++ {
		levels = append(levels, l)
	}
	return levels
}

func (h *fileHook) Fire(e *logrus.Entry) error {
	line, err := e.String()
	if err != nil {
		return err
	}
	_, err = h.file.WriteString(line)
	return err
}

// Trace, Debug, Info, Warn and Error log at the matching level with the
// given structured fields.
func Trace(msg string, f Fields) { entry(f).Trace(msg) }
func Debug(msg string, f Fields) { entry(f).Debug(msg) }
func Info(msg string, f Fields)  { entry(f).Info(msg) }
func Warn(msg string, f Fields)  { entry(f).Warn(msg) }
func Error(msg string, f Fields) { entry(f).Error(msg) }

func entry(f Fields) *logrus.Entry {
	if f == nil {
		return logrus.NewEntry(std)
	}
	return std.WithFields(f.logrus())
}
