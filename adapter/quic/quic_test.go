package quic_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ikhovind/gotaps/adapter"
	adapterquic "github.com/ikhovind/gotaps/adapter/quic"
	"github.com/ikhovind/gotaps/endpoint"
	"github.com/ikhovind/gotaps/message"
	"github.com/ikhovind/gotaps/security"
)

type fakeSession struct {
	mu        sync.Mutex
	ready     bool
	err       error
	delivered []*message.Message
}

func (f *fakeSession) SetLocalEndpoint(addr net.Addr) {}
func (f *fakeSession) OnReady()                       { f.mu.Lock(); f.ready = true; f.mu.Unlock() }
func (f *fakeSession) OnError(err error)              { f.mu.Lock(); f.err = err; f.mu.Unlock() }
func (f *fakeSession) OnSoftError(err error)          {}
func (f *fakeSession) Deliver(m *message.Message) {
	f.mu.Lock()
	f.delivered = append(f.delivered, m)
	f.mu.Unlock()
}

func (f *fakeSession) isReady() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

// writeSelfSignedPair generates an ECDSA P256 self-signed cert/key pair
// for "127.0.0.1" under simple-ping ALPN, written to PEM files in dir.
func writeSelfSignedPair(dir string) (certFile, keyFile string) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	Expect(err).NotTo(HaveOccurred())

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "127.0.0.1"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IsCA:         true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	Expect(err).NotTo(HaveOccurred())

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")

	certOut, err := os.Create(certFile)
	Expect(err).NotTo(HaveOccurred())
	Expect(pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: der})).To(Succeed())
	Expect(certOut.Close()).To(Succeed())

	keyBytes, err := x509.MarshalECPrivateKey(key)
	Expect(err).NotTo(HaveOccurred())

	keyOut, err := os.Create(keyFile)
	Expect(err).NotTo(HaveOccurred())
	Expect(pem.Encode(keyOut, &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyBytes})).To(Succeed())
	Expect(keyOut.Close()).To(Succeed())

	return certFile, keyFile
}

var _ = Describe("QUIC adapter", func() {
	It("registers itself under adapter.QUIC", func() {
		Expect(adapter.Registered()).To(ContainElement(adapter.QUIC))
	})

	It("accepts a client stream and exchanges a ping message", func() {
		dir := GinkgoT().TempDir()
		certFile, keyFile := writeSelfSignedPair(dir)

		serverSec := &security.Parameters{
			ALPN:            []string{"simple-ping"},
			CertificateFile: certFile,
			KeyFile:         keyFile,
		}

		serverProto := adapterquic.New()
		accepted := make(chan adapter.Protocol, 1)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		local := &endpoint.Local{Service: ""}
		Expect(serverProto.Listen(ctx, local, serverSec, func(p adapter.Protocol) {
			accepted <- p
		})).To(Succeed())

		udpAddr := serverProto.Addr().(*net.UDPAddr)

		clientSec := &security.Parameters{
			ALPN:               []string{"simple-ping"},
			InsecureSkipVerify: true,
		}
		clientProto := adapterquic.New()
		clientSess := &fakeSession{}

		Expect(clientProto.Init(ctx, clientSess, []endpoint.Resolved{{IP: udpAddr.IP, Port: uint16(udpAddr.Port)}}, nil, clientSec)).To(Succeed())
		Eventually(clientSess.isReady).Should(BeTrue())

		Expect(clientProto.Send(ctx, message.New([]byte("ping")), nil)).To(Succeed())

		var serverSide adapter.Protocol
		Eventually(accepted).Should(Receive(&serverSide))
		Expect(serverSide.Receive(ctx, adapter.ReceiveRequest{MaxBytes: 64})).To(Succeed())

		Expect(clientProto.Close()).To(Succeed())
		Expect(serverProto.Close()).To(Succeed())
	})
})
