package quicnet

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/caddyserver/certmagic"
)

// webProtos are offered on the TCP listener; HTTP/3 adds "h3" itself.
var webProtos = []string{"h2", "http/1.1"}

// CertMagicConfig configures automatic certificate management with CertMagic.
type CertMagicConfig struct {
	Domain     string
	Email      string
	StorageDir string // optional; defaults to XDG or ~/.cache/sheetsite/certmagic
	CA         string // optional; defaults to Let's Encrypt prod
	// EnableHTTP01 returns a handler the caller must serve on :80.
	EnableHTTP01 bool
}

// BuildCertMagicTLS provisions or loads certificates via CertMagic and
// returns a TLS config plus, when enabled, the HTTP-01 challenge handler.
func BuildCertMagicTLS(ctx context.Context, cfg CertMagicConfig) (*tls.Config, http.Handler, error) {
	if cfg.Domain == "" {
		return nil, nil, errors.New("domain is required")
	}

	cm := certmagic.NewDefault()
	if cfg.StorageDir == "" {
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			cfg.StorageDir = filepath.Join(xdg, "sheetsite", "certmagic")
		} else {
			home, _ := os.UserHomeDir()
			cfg.StorageDir = filepath.Join(home, ".cache", "sheetsite", "certmagic")
		}
	}
	if err := os.MkdirAll(cfg.StorageDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("cert storage: %w", err)
	}
	cm.Storage = &certmagic.FileStorage{Path: cfg.StorageDir}

	issuer := certmagic.NewACMEIssuer(cm, certmagic.ACMEIssuer{
		CA:                   ifEmpty(cfg.CA, certmagic.LetsEncryptProductionCA),
		Email:                cfg.Email,
		Agreed:               true,
		DisableHTTPChallenge: !cfg.EnableHTTP01,
	})
	cm.Issuers = []certmagic.Issuer{issuer}

	if err := cm.ManageSync(ctx, []string{cfg.Domain}); err != nil {
		return nil, nil, err
	}

	tlsConf := cm.TLSConfig()
	tlsConf.MinVersion = tls.VersionTLS12

	if cfg.EnableHTTP01 {
		return tlsConf, issuer.HTTPChallengeHandler(http.NotFoundHandler()), nil
	}
	return tlsConf, nil, nil
}

func ifEmpty(s, d string) string {
	if s == "" {
		return d
	}
	return s
}

// BuildFileTLS loads a certificate from PEM files for BYO certs.
func BuildFileTLS(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" || keyFile == "" {
		return nil, errors.New("both certFile and keyFile are required")
	}

	c, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load keypair: %w", err)
	}

	now := time.Now()
	for i, b := range c.Certificate {
		cert, err := x509.ParseCertificate(b)
		if err != nil {
			return nil, fmt.Errorf("invalid certificate at index %d: %w", i, err)
		}
		if now.Before(cert.NotBefore) {
			return nil, fmt.Errorf("certificate not yet valid (starts %s)", cert.NotBefore)
		}
		if now.After(cert.NotAfter) {
			return nil, fmt.Errorf("certificate expired on %s", cert.NotAfter)
		}
	}

	return &tls.Config{
		Certificates: []tls.Certificate{c},
		NextProtos:   append([]string(nil), webProtos...),
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// SelfSignedPEM returns a short-lived certificate and key for localhost,
// for local HTTPS and HTTP/3 development.
func SelfSignedPEM(hosts ...string) (certPEM, keyPEM []byte, err error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, err
	}
	if len(hosts) == 0 {
		hosts = []string{"localhost", "127.0.0.1"}
	}
	templ := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: hosts[0]},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			templ.IPAddresses = append(templ.IPAddresses, ip)
		} else {
			templ.DNSNames = append(templ.DNSNames, h)
		}
	}
	der, err := x509.CreateCertificate(rand.Reader, templ, templ, &key.PublicKey, key)
	if err != nil {
		return nil, nil, err
	}
	pkcs8, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, nil, err
	}
	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8})
	return certPEM, keyPEM, nil
}

// SelfSignedTLS wraps SelfSignedPEM into a server TLS config.
func SelfSignedTLS(hosts ...string) (*tls.Config, error) {
	certPEM, keyPEM, err := SelfSignedPEM(hosts...)
	if err != nil {
		return nil, err
	}
	c, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{c},
		NextProtos:   append([]string(nil), webProtos...),
		MinVersion:   tls.VersionTLS12,
	}, nil
}
