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

import "encoding/binary"

// frameHeaderLen is the length of the explicit framing prefix spec.md
// §4.6/§6 requires for byte-stream transports with
// PRESERVE_MSG_BOUNDARIES=REQUIRE: a 32-bit big-endian length followed by
// that many payload bytes.
const frameHeaderLen = 4

// frame prepends msg's length as a 32-bit big-endian prefix.
func frame(msg []byte) []byte {
	out := make([]byte, frameHeaderLen+len(msg))
	binary.BigEndian.PutUint32(out, uint32(len(msg)))
	copy(out[frameHeaderLen:], msg)
	return out
}

// unframer reassembles length-prefixed messages out of a byte stream that
// may deliver chunks split anywhere relative to frame boundaries — the
// Connection feeds it whatever an adapter.Session.Deliver call hands in,
// one chunk at a time, and drains complete frames out as they close.
type unframer struct {
	buf []byte
}

// push appends chunk to the reassembly buffer.
func (u *unframer) push(chunk []byte) {
	u.buf = append(u.buf, chunk...)
}

// next pops one complete frame's payload off the front of the buffer, or
// reports ok=false if fewer than a full frame is currently buffered.
func (u *unframer) next() (payload []byte, ok bool) {
	if len(u.buf) < frameHeaderLen {
		return nil, false
	}
	n := binary.BigEndian.Uint32(u.buf)
	total := frameHeaderLen + int(n)
	if len(u.buf) < total {
		return nil, false
	}
	payload = append([]byte(nil), u.buf[frameHeaderLen:total]...)
	u.buf = u.buf[total:]
	return payload, true
}
