package tlsconfig_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ikhovind/gotaps/security"
	"github.com/ikhovind/gotaps/tlsconfig"
)

func writeSelfSignedPair(dir string) (certFile, keyFile string) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	Expect(err).NotTo(HaveOccurred())

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "gotaps-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	Expect(err).NotTo(HaveOccurred())

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")

	certOut, err := os.Create(certFile)
	Expect(err).NotTo(HaveOccurred())
	Expect(pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: der})).To(Succeed())
	Expect(certOut.Close()).To(Succeed())

	keyDER, err := x509.MarshalECPrivateKey(key)
	Expect(err).NotTo(HaveOccurred())

	keyOut, err := os.Create(keyFile)
	Expect(err).NotTo(HaveOccurred())
	Expect(pem.Encode(keyOut, &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})).To(Succeed())
	Expect(keyOut.Close()).To(Succeed())

	return certFile, keyFile
}

var _ = Describe("Build", func() {
	It("builds a clean cleartext-adjacent config from empty parameters", func() {
		cfg, err := tlsconfig.Build(security.NewParameters())

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Certificates).To(BeEmpty())
		Expect(cfg.MinVersion).To(Equal(uint16(0x0303))) // tls.VersionTLS12
	})

	It("carries ALPN through to NextProtos", func() {
		cfg, err := tlsconfig.Build(&security.Parameters{ALPN: []string{"simple-ping"}})

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.NextProtos).To(ConsistOf("simple-ping"))
	})

	It("loads a certificate/key pair when both are set", func() {
		certFile, keyFile := writeSelfSignedPair(GinkgoT().TempDir())

		cfg, err := tlsconfig.Build(&security.Parameters{
			CertificateFile: certFile,
			KeyFile:         keyFile,
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Certificates).To(HaveLen(1))
	})

	It("rejects a certificate file set without a matching key file", func() {
		_, err := tlsconfig.Build(&security.Parameters{CertificateFile: "/tmp/does-not-matter.pem"})
		Expect(err).To(HaveOccurred())
	})
})
