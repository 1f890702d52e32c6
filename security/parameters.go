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

// Package security implements SecurityParameters (spec.md §3): the
// indexed table of security knobs a Preconnection carries, independent
// of how any one adapter turns it into a live TLS/QUIC session (that
// conversion lives in package tlsconfig).
package security

// Parameters is the deep-copyable security knob set. ALPN, certificate
// and key fields are string arrays/paths rather than parsed material —
// parsing and *tls.Config materialization is tlsconfig's job, mirroring
// the teacher's certificates.Config/TLSConfig split (a plain struct for
// declared intent, a richer type for the materialized config).
type Parameters struct {
	ALPN               []string
	ServerName         string
	CertificateFile    string
	KeyFile            string
	RootCAFiles        []string
	ClientCAFiles      []string
	RequireClientCert  bool
	InsecureSkipVerify bool
}

// NewParameters returns an empty Parameters (no security, i.e. the
// adapter runs cleartext unless the caller sets fields).
func NewParameters() *Parameters {
	return &Parameters{}
}

// DeepCopy duplicates p, including its slices, so mutating the source
// after a deep copy — e.g. a Listener's template after spawning a
// Connection — cannot affect the copy (spec.md §3).
func (p *Parameters) DeepCopy() *Parameters {
	if p == nil {
		return NewParameters()
	}
	cp := *p
	cp.ALPN = append([]string(nil), p.ALPN...)
	cp.RootCAFiles = append([]string(nil), p.RootCAFiles...)
	cp.ClientCAFiles = append([]string(nil), p.ClientCAFiles...)
	return &cp
}
