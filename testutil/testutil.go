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

// Package testutil collects helpers shared by this module's *_test.go
// files — free-port allocation and loopback endpoint construction —
// instead of each package duplicating its own copy, the way the
// original test harness's networking.cpp helpers were shared across
// its own test binaries.
package testutil

import (
	"net"

	"github.com/ikhovind/gotaps/endpoint"
)

// FreeTCPPort asks the OS for an ephemeral TCP port, binds it briefly to
// learn which one it picked, then releases it. There is an inherent
// race between releasing and a caller rebinding it, acceptable for test
// use the way the teacher's own GetFreePort helpers accept it
// (socket/server/udp/udp_test.go).
func FreeTCPPort() int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// FreeUDPPort is FreeTCPPort for UDP.
func FreeUDPPort() int {
	addr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	if err != nil {
		panic(err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		panic(err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).Port
}

// LoopbackRemote builds a Remote endpoint template pointed at 127.0.0.1:port.
func LoopbackRemote(port int) *endpoint.Remote {
	return &endpoint.Remote{Address: "127.0.0.1", Port: uint16(port)}
}

// LoopbackLocal builds a Local endpoint template bound to the given
// port on every local interface (port 0 lets the OS assign an
// ephemeral one, discoverable afterward via the Listener's Addr
// method).
func LoopbackLocal(port int) *endpoint.Local {
	return &endpoint.Local{Port: uint16(port)}
}

// UnreachablePort is a port reserved for test use as a destination no
// listener will ever bind (port 1 is a privileged, rarely-assigned port
// on every platform this module targets), for exercising
// establishment-failure and NO_CANDIDATE paths without relying on DNS.
const UnreachablePort = 1
