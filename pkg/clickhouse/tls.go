package clickhouse

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/pkg/errors"
)

// TLSSettings locates the PEM files used to secure a ClickHouse connection.
type TLSSettings struct {
	CAFile   string `yaml:"cafile,omitempty"`
	CertFile string `yaml:"certfile,omitempty"`
	KeyFile  string `yaml:"keyfile,omitempty"`
}

// Enabled reports whether any TLS file is configured.
func (s TLSSettings) Enabled() bool {
	return s.CAFile != "" || s.CertFile != "" || s.KeyFile != ""
}

// TLSConfig builds a client TLS config. It returns nil when no file is
// configured. A client certificate is loaded when CertFile and KeyFile are set,
// enabling mTLS.
//
// Example usage:
//
//	cfg, err := clickhouse.TLSSettings{
//		CAFile:   "/certs/ca.crt",
//		CertFile: "/certs/tls.crt",
//		KeyFile:  "/certs/tls.key",
//	}.TLSConfig()
//	if err != nil {
//		return err
//	}
func (s TLSSettings) TLSConfig() (*tls.Config, error) {
	if !s.Enabled() {
		return nil, nil
	}

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if s.CertFile != "" || s.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(s.CertFile, s.KeyFile)
		if err != nil {
			return nil, errors.Wrap(err, "unable to load certfile/keyfile")
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	if s.CAFile != "" {
		caCert, err := os.ReadFile(s.CAFile)
		if err != nil {
			return nil, errors.Wrap(err, "unable to load cafile")
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, errors.Errorf("no certificates found in %s", s.CAFile)
		}
		cfg.RootCAs = pool
	}

	return cfg, nil
}
