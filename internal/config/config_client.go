package config

import (
	"fmt"
	"time"
)

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// BaseURL is the vault server endpoint used by the client.
	BaseURL string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DSN is the SQLite connection string for the local record cache.
	// Empty disables the local cache.
	DSN string
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// AutoLockAfter defines the idle duration before the session is
	// locked automatically. Zero disables auto-lock.
	AutoLockAfter time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// Adapter contains client transport addresses and timeouts.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Workers contains background job settings.
	Workers ClientWorkers
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Adapter: ClientAdapter{
			BaseURL:        cfg.Adapter.BaseURL,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DSN: cfg.Storage.DB.DSN,
		},
		Workers: ClientWorkers{AutoLockAfter: cfg.Workers.AutoLockAfter},
	}

	return clientCfg, clientCfg.validate()
}

// validate checks the client view of the configuration. A configured
// local SQLite store replaces the remote adapter, so the adapter settings
// are only mandatory when no DSN is set.
func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DSN != "" {
		return nil
	}
	if cfg.Adapter.BaseURL == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	return nil
}
