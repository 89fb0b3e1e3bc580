package server

import (
	"cmp"
	"errors"
	"os"
	"path"
	"syscall"
)

const (
	DefaultHttpPort  = 80
	DefaultHttpsPort = 443
)

var (
	ErrorOriginNotSet             = errors.New("origin not set")
	ErrorTLSCertificateIncomplete = errors.New("TLS certificate and private key must be provided together")
	ErrorConflictingTLSSources    = errors.New("a TLS certificate and ACME hosts cannot be used together")
	ErrorHTTP3RequiresHTTPS       = errors.New("HTTP/3 requires HTTPS to be enabled")
)

type Config struct {
	Bind           string
	HttpPort       int
	HttpsPort      int
	MetricsPort    int
	HTTP3Enabled   bool
	MaxConnections int

	TLSCertificatePath string
	TLSPrivateKeyPath  string
	ACMEHosts          []string
	ACMEDirectory      string
	ACMECachePath      string

	OriginURL           string
	OriginOptions       OriginOptions
	TrustedEntries      []string
	ClientAddressHeader string
	PageOptions         PageOptions

	AlternateConfigDir string
}

func (c Config) Validate() error {
	if c.OriginURL == "" {
		return ErrorOriginNotSet
	}

	if (c.TLSCertificatePath == "") != (c.TLSPrivateKeyPath == "") {
		return ErrorTLSCertificateIncomplete
	}

	if c.TLSCertificatePath != "" && len(c.ACMEHosts) > 0 {
		return ErrorConflictingTLSSources
	}

	if c.HTTP3Enabled && !c.TLSEnabled() {
		return ErrorHTTP3RequiresHTTPS
	}

	return nil
}

// TLSEnabled reports whether HTTPS should be served. It is only served when a
// certificate source is configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertificatePath != "" || len(c.ACMEHosts) > 0
}

func (c Config) CertificatePath() string {
	return cmp.Or(c.ACMECachePath, path.Join(c.dataDirectory(), "certs"))
}

// Private

func (c Config) dataDirectory() string {
	return cmp.Or(c.AlternateConfigDir, c.defaultDataDirectory())
}

func (c Config) defaultDataDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}

	dir := path.Join(home, ".config", "maintenance-proxy")

	err = os.MkdirAll(dir, syscall.S_IRUSR|syscall.S_IWUSR|syscall.S_IXUSR)
	if err != nil {
		dir = os.TempDir()
	}

	return dir
}
