package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
)

// configureTLS sets up the listener's TLS config based on the mode
func (s *Server) configureTLS(httpServer *http.Server) error {
	switch s.cfg.Server.TLS.Mode {
	case "", "disabled":
		return nil
	case "server", "mutual":
		tlsConfig, err := s.buildTLSConfig()
		if err != nil {
			return fmt.Errorf("failed to set up TLS: %w", err)
		}
		httpServer.TLSConfig = tlsConfig
		return nil
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.cfg.Server.TLS.Mode)
	}
}

// buildTLSConfig assembles the tls.Config, starting the certificate manager
// when auto-reload is on
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion: minTLSVersion(s.cfg.Server.TLS.MinVersion),
	}

	if s.cfg.Server.TLS.AutoReload {
		certManager := NewCertificateManager(&s.cfg.Server.TLS, s.obs, s.logger)
		if err := certManager.Start(); err != nil {
			return nil, fmt.Errorf("failed to start certificate manager: %w", err)
		}
		s.certManager = certManager
		tlsConfig.GetCertificate = certManager.GetServerCertificate
	} else {
		cert, err := tls.LoadX509KeyPair(s.cfg.Server.TLS.CertFile, s.cfg.Server.TLS.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load server cert/key: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if s.cfg.Server.TLS.Mode == "mutual" {
		caCertPool, err := loadCACertPool(s.cfg.Server.TLS.CAFile)
		if err != nil {
			return nil, err
		}
		tlsConfig.ClientCAs = caCertPool
		tlsConfig.ClientAuth = clientAuthPolicy(s.cfg.Server.TLS.ClientAuthPolicy)
	}

	return tlsConfig, nil
}

// loadCACertPool reads the CA bundle used to verify client certificates
func loadCACertPool(caFile string) (*x509.CertPool, error) {
	if caFile == "" {
		return nil, fmt.Errorf("CA certificate is required for mutual TLS mode")
	}
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM(caCert); !ok {
		return nil, fmt.Errorf("failed to append CA cert")
	}
	return pool, nil
}

func minTLSVersion(version string) uint16 {
	switch version {
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}

func clientAuthPolicy(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}
