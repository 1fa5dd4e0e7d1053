package auth

import (
	"errors"

	"smd/pkg/logger"
)

// PasswordStore is the interface for storing and retrieving the single
// Instagram credential
type PasswordStore interface {
	StorePassword(password string) error
	Password() string
	Delete() error
}

// Manager layers credential backends: system keychain when available,
// encrypted file vault as the always-present fallback
type Manager struct {
	stores []PasswordStore
	log    logger.Logger
}

// NewManager builds the backend chain around an existing vault
func NewManager(vault *Vault, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}

	var stores []PasswordStore
	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	} else {
		log.WithError(err).Debug("system keyring unavailable, using encrypted file only")
	}
	stores = append(stores, vault)

	return &Manager{stores: stores, log: log}
}

// NewManagerWithStores builds a manager over explicit backends, used in tests
func NewManagerWithStores(stores ...PasswordStore) *Manager {
	return &Manager{stores: stores, log: logger.GetLogger()}
}

// StorePassword saves the credential in every backend so either can
// serve it later
func (m *Manager) StorePassword(password string) error {
	var lastErr error
	stored := false
	for _, store := range m.stores {
		if err := store.StorePassword(password); err != nil {
			lastErr = err
		} else {
			stored = true
		}
	}
	if !stored {
		if lastErr != nil {
			return lastErr
		}
		return errors.New("no available credential stores")
	}
	return nil
}

// Password returns the credential from the first backend that has one,
// "" when none do
func (m *Manager) Password() string {
	for _, store := range m.stores {
		if secret := store.Password(); secret != "" {
			return secret
		}
	}
	return ""
}

// Delete removes the credential from every backend
func (m *Manager) Delete() error {
	var lastErr error
	for _, store := range m.stores {
		if err := store.Delete(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Authenticated reports whether both a username and a decryptable
// password are configured. An empty password reads as "not
// authenticated".
func (m *Manager) Authenticated(username string) bool {
	return username != "" && m.Password() != ""
}
