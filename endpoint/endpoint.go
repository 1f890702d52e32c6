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

// Package endpoint implements the Local/Remote endpoint tagged union and
// resolution contract of spec.md §4.1: hostname-or-literal plus
// optional service name, resolving to one or more concrete addresses.
package endpoint

import "net"

// Family is the resolved address family.
type Family int

const (
	Unspecified Family = iota
	IPv4
	IPv6
)

func familyOf(ip net.IP) Family {
	if ip == nil {
		return Unspecified
	}
	if ip.To4() != nil {
		return IPv4
	}
	return IPv6
}

// MaxInterfaceAddresses bounds the number of addresses returned from an
// interface-scoped local bind, matching MAX_FOUND_INTERFACE_ADDRS in the
// reference implementation.
const MaxInterfaceAddresses = 64

// Remote is the user-supplied remote endpoint: an unresolved hostname or
// literal address, plus an optional service name used when no numeric
// port is given.
type Remote struct {
	Hostname string
	Address  string // literal IPv4/IPv6 address, mutually exclusive with Hostname
	Service  string
	Port     uint16 // 0 means "resolve from Service"
}

// DeepCopy returns an independent copy of r (spec.md §3: "deep-copied on
// every ownership transfer").
func (r *Remote) DeepCopy() *Remote {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

// Local is the user-supplied local endpoint: optionally scoped to a
// named network interface, otherwise a wildcard bind.
type Local struct {
	Interface string
	Service   string
	Port      uint16
}

// DeepCopy returns an independent copy of l.
func (l *Local) DeepCopy() *Local {
	if l == nil {
		return nil
	}
	cp := *l
	return &cp
}

// Resolved is one concrete resolution result: a concrete address family
// and a numeric port, ready to hand to net.Dial/net.Listen.
type Resolved struct {
	IP     net.IP
	Port   uint16
	Family Family
}

func (r Resolved) String() string {
	return net.JoinHostPort(r.IP.String(), portString(r.Port))
}
