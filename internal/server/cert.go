package server

import (
	"crypto/tls"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/crypto/acme"
	"golang.org/x/crypto/acme/autocert"
)

type CertManager interface {
	GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error)
	HTTPHandler(fallback http.Handler) http.Handler
}

// StaticCertManager serves a certificate loaded from disk on first use.
type StaticCertManager struct {
	certificatePath string
	privateKeyPath  string
	cert            *tls.Certificate
	lock            sync.Mutex
}

func NewStaticCertManager(certificatePath, privateKeyPath string) *StaticCertManager {
	return &StaticCertManager{
		certificatePath: certificatePath,
		privateKeyPath:  privateKeyPath,
	}
}

func (m *StaticCertManager) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.cert != nil {
		return m.cert, nil
	}

	slog.Info("Loading TLS certificate", "certificate", m.certificatePath, "private_key", m.privateKeyPath)

	cert, err := tls.LoadX509KeyPair(m.certificatePath, m.privateKeyPath)
	if err != nil {
		return nil, err
	}
	m.cert = &cert

	return m.cert, nil
}

func (m *StaticCertManager) HTTPHandler(fallback http.Handler) http.Handler {
	return fallback
}

func NewACMECertManager(hosts []string, directory string, cachePath string) *autocert.Manager {
	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(cachePath),
		HostPolicy: autocert.HostWhitelist(hosts...),
	}

	if directory != "" {
		manager.Client = &acme.Client{DirectoryURL: directory}
	}

	return manager
}

func newCertManager(config *Config) CertManager {
	if config.TLSCertificatePath != "" {
		return NewStaticCertManager(config.TLSCertificatePath, config.TLSPrivateKeyPath)
	}
	return NewACMECertManager(config.ACMEHosts, config.ACMEDirectory, config.CertificatePath())
}
