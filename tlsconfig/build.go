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

// Package tlsconfig materializes security.Parameters into a *tls.Config,
// the way the teacher's certificates.Config.NewFrom turns a declarative
// Config into a live TLSConfig.
package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	libval "github.com/go-playground/validator/v10"

	"github.com/ikhovind/gotaps/errors"
	"github.com/ikhovind/gotaps/security"
)

type validated struct {
	ALPN            []string `validate:"omitempty,dive,required"`
	ServerName      string   `validate:"omitempty,hostname_port|hostname|ip"`
	CertificateFile string   `validate:"required_with=KeyFile"`
	KeyFile         string   `validate:"required_with=CertificateFile"`
}

// Build converts sec into a *tls.Config ready to hand to a stream or
// QUIC adapter. A nil or zero-value sec yields a config with no
// certificates and default curves/versions, i.e. the adapter will fail
// to establish a server-side TLS listener but a client may still dial
// (matching the reference implementation's "security optional" stance).
func Build(sec *security.Parameters) (*tls.Config, error) {
	if sec == nil {
		sec = security.NewParameters()
	}

	v := validated{
		ALPN:            sec.ALPN,
		ServerName:      sec.ServerName,
		CertificateFile: sec.CertificateFile,
		KeyFile:         sec.KeyFile,
	}

	if err := libval.New().Struct(v); err != nil {
		e := errors.New(errors.InvalidArgument, nil)
		if ve, ok := err.(libval.ValidationErrors); ok {
			for _, fe := range ve {
				e.Add(fmt.Errorf("security parameter %q failed constraint %q", fe.Field(), fe.Tag()))
			}
		} else {
			e.Add(err)
		}
		return nil, e
	}

	cfg := &tls.Config{
		ServerName:         sec.ServerName,
		InsecureSkipVerify: sec.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
		NextProtos:         append([]string(nil), sec.ALPN...),
	}

	if sec.CertificateFile != "" && sec.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(sec.CertificateFile, sec.KeyFile)
		if err != nil {
			return nil, errors.New(errors.InvalidArgument, err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	if len(sec.RootCAFiles) > 0 {
		pool := x509.NewCertPool()
		for _, f := range sec.RootCAFiles {
			pem, err := os.ReadFile(f)
			if err != nil {
				return nil, errors.New(errors.InvalidArgument, err)
			}
			if !pool.AppendCertsFromPEM(pem) {
				return nil, errors.Newf(errors.InvalidArgument, "root CA file %q has no usable certificate", f)
			}
		}
		cfg.RootCAs = pool
	}

	if len(sec.ClientCAFiles) > 0 {
		pool := x509.NewCertPool()
		for _, f := range sec.ClientCAFiles {
			pem, err := os.ReadFile(f)
			if err != nil {
				return nil, errors.New(errors.InvalidArgument, err)
			}
			if !pool.AppendCertsFromPEM(pem) {
				return nil, errors.Newf(errors.InvalidArgument, "client CA file %q has no usable certificate", f)
			}
		}
		cfg.ClientCAs = pool
		if sec.RequireClientCert {
			cfg.ClientAuth = tls.RequireAndVerifyClientCert
		} else {
			cfg.ClientAuth = tls.VerifyClientCertIfGiven
		}
	}

	return cfg, nil
}
