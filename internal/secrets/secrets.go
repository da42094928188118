// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package secrets resolves credentials for the query client from the OS
// keyring. It is the single place that touches secure storage: the engine
// client asks for a credential by reference and receives an opaque string
// back, never a handle to the store itself.
//
// The GROVE_AUTH_TOKEN environment variable, when set, takes precedence over
// the keyring so scripted environments do not need a keyring at all.
package secrets

import (
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"

	groveerr "grove/cli/internal/errors"
)

// ServiceName identifies our keyring/credential store namespace.
const ServiceName = "grove"

// KeyAuthToken is the keyring entry holding the engine auth token.
const KeyAuthToken = "engine_auth_token"

// EnvAuthToken overrides the keyring when set.
const EnvAuthToken = "GROVE_AUTH_TOKEN"

// Global manager instance
var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// Manager provides thread-safe access to the OS keyring.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager opens the OS keyring.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// GetManager returns the global manager, creating it on first use.
// A failed initialization is retried on the next call.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	globalManager, globalError = NewManager()
	if globalError != nil {
		return nil, globalError
	}
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	default:
		allowedBackends = []keyring.BackendType{keyring.SecretServiceBackend, keyring.PassBackend}
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
	}
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, groveerr.Wrap(groveerr.SecretUnavailable, "secure storage unavailable on this system", err)
	}
	return ring, nil
}

// Resolve returns the credential named by ref. The environment override is
// checked first; otherwise the value comes from the keyring. A missing or
// empty credential is a SecretUnavailable error.
func (m *Manager) Resolve(ref string) (string, error) {
	if ref == KeyAuthToken {
		if v := strings.TrimSpace(os.Getenv(EnvAuthToken)); v != "" {
			return v, nil
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	item, err := m.ring.Get(ref)
	if err != nil {
		return "", groveerr.Wrap(groveerr.SecretUnavailable, "credential "+ref+" not found in keyring", err)
	}
	v := strings.TrimSpace(string(item.Data))
	if v == "" {
		return "", groveerr.New(groveerr.SecretUnavailable, "credential "+ref+" is empty")
	}
	return v, nil
}

// SaveAuthToken stores the engine auth token in the keyring.
func (m *Manager) SaveAuthToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{Key: KeyAuthToken, Data: []byte(token)})
}

// Resolve is the package-level resolver: environment override first, then
// the global keyring manager. The manager is only opened when actually
// needed, so env-only setups work on systems without a keyring.
func Resolve(ref string) (string, error) {
	if ref == KeyAuthToken {
		if v := strings.TrimSpace(os.Getenv(EnvAuthToken)); v != "" {
			return v, nil
		}
	}
	m, err := GetManager()
	if err != nil {
		return "", err
	}
	return m.Resolve(ref)
}

// Source adapts the package-level Resolve to the query client's
// SecretSource contract.
type Source struct{}

func (Source) Resolve(ref string) (string, error) { return Resolve(ref) }

// ClearAuthToken removes the engine auth token from the keyring.
// Removing a token that was never stored is not an error.
func (m *Manager) ClearAuthToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ring.Remove(KeyAuthToken); err != nil && err != keyring.ErrKeyNotFound {
		return err
	}
	return nil
}
