package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"tailorbase/internal/config"
	"tailorbase/internal/errors"
	"tailorbase/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// How often the expiry gauge is refreshed
const expiryCheckInterval = time.Hour

// CertificateManager serves the TLS key pair and reloads it when the files
// change on disk.
type CertificateManager struct {
	mu sync.RWMutex

	serverCert *tls.Certificate
	certExpiry time.Time

	watcher *CertWatcher
	config  *config.TLSConfig
	obs     *observability.Manager
	logger  *errors.Logger

	stopExpiry chan struct{}

	reloadCount        int64
	reloadSuccessCount int64
	reloadFailureCount int64
	lastReloadTime     time.Time
	lastReloadSuccess  bool
	lastReloadError    string
}

// CertificateMetrics is a snapshot of reload accounting
type CertificateMetrics struct {
	ReloadCount        int64
	ReloadSuccessCount int64
	ReloadFailureCount int64
	LastReloadTime     time.Time
	LastReloadSuccess  bool
	LastReloadError    string
}

// NewCertificateManager creates a manager for the configured key pair
func NewCertificateManager(tlsConfig *config.TLSConfig, obs *observability.Manager, logger *errors.Logger) *CertificateManager {
	return &CertificateManager{
		config:     tlsConfig,
		obs:        obs,
		logger:     logger,
		stopExpiry: make(chan struct{}),
	}
}

// Start loads the initial certificates and begins watching the files
func (cm *CertificateManager) Start() error {
	if err := cm.loadCertificate(); err != nil {
		return fmt.Errorf("failed to load initial certificates: %w", err)
	}

	debounce := cm.config.DebounceDelay
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	watcher, err := NewCertWatcher(
		cm.config.CertFile, cm.config.KeyFile, cm.config.CAFile,
		debounce, cm.reload, cm.logger)
	if err != nil {
		return fmt.Errorf("failed to create certificate watcher: %w", err)
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start certificate watcher: %w", err)
	}
	cm.watcher = watcher

	go cm.expiryLoop()

	cm.logger.Info("Certificate manager started",
		"cert_file", cm.config.CertFile,
		"debounce", debounce)
	return nil
}

// Stop halts the watcher and the expiry monitor
func (cm *CertificateManager) Stop() error {
	close(cm.stopExpiry)
	if cm.watcher != nil {
		return cm.watcher.Stop()
	}
	return nil
}

// GetServerCertificate hands the current certificate to the TLS handshake
func (cm *CertificateManager) GetServerCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if cm.serverCert == nil {
		return nil, fmt.Errorf("no server certificate loaded")
	}
	return cm.serverCert, nil
}

// CheckExpiry reports how long the current certificate remains valid
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if cm.serverCert == nil {
		return 0, fmt.Errorf("no server certificate loaded")
	}
	return time.Until(cm.certExpiry), nil
}

// Metrics returns a snapshot of the reload counters
func (cm *CertificateManager) Metrics() CertificateMetrics {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return CertificateMetrics{
		ReloadCount:        cm.reloadCount,
		ReloadSuccessCount: cm.reloadSuccessCount,
		ReloadFailureCount: cm.reloadFailureCount,
		LastReloadTime:     cm.lastReloadTime,
		LastReloadSuccess:  cm.lastReloadSuccess,
		LastReloadError:    cm.lastReloadError,
	}
}

// loadCertificate reads the key pair from disk and records its expiry
func (cm *CertificateManager) loadCertificate() error {
	cert, err := tls.LoadX509KeyPair(cm.config.CertFile, cm.config.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to load key pair: %w", err)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	cm.mu.Lock()
	cm.serverCert = &cert
	cm.certExpiry = leaf.NotAfter
	cm.mu.Unlock()

	cm.recordExpiryGauge()
	return nil
}

// reload is invoked by the file watcher after a debounced change
func (cm *CertificateManager) reload() {
	err := cm.loadCertificate()

	cm.mu.Lock()
	cm.reloadCount++
	cm.lastReloadTime = time.Now()
	if err != nil {
		cm.reloadFailureCount++
		cm.lastReloadSuccess = false
		cm.lastReloadError = err.Error()
	} else {
		cm.reloadSuccessCount++
		cm.lastReloadSuccess = true
		cm.lastReloadError = ""
	}
	cm.mu.Unlock()

	if cm.obs != nil {
		cm.obs.GetMetrics().CertReloadCount.Add(context.Background(), 1,
			metric.WithAttributes(attribute.Bool("success", err == nil)))
	}

	if err != nil {
		cm.logger.LogError(err, "Failed to reload TLS certificates; keeping previous pair")
		return
	}
	cm.logger.Info("TLS certificates reloaded")
}

// expiryLoop refreshes the expiry gauge until Stop
func (cm *CertificateManager) expiryLoop() {
	ticker := time.NewTicker(expiryCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cm.recordExpiryGauge()
			if remaining, err := cm.CheckExpiry(); err == nil && remaining <= 7*24*time.Hour {
				cm.logger.Warn("TLS certificate nearing expiry",
					"remaining", remaining.String())
			}
		case <-cm.stopExpiry:
			return
		}
	}
}

func (cm *CertificateManager) recordExpiryGauge() {
	if cm.obs == nil {
		return
	}
	remaining, err := cm.CheckExpiry()
	if err != nil {
		return
	}
	cm.obs.GetMetrics().CertExpiryTime.Record(context.Background(), remaining.Hours())
}
