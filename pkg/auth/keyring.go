package auth

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "smd"
	keyringUser    = "instagram_password"
)

// KeyringStore keeps the credential in the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a keychain-backed store, probing availability
// first since headless Linux systems often have no secret service
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// StorePassword saves the credential in the keychain
func (k *KeyringStore) StorePassword(password string) error {
	if err := keyring.Set(keyringService, keyringUser, password); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return nil
}

// Password retrieves the credential, "" when absent or unavailable
func (k *KeyringStore) Password() string {
	secret, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		return ""
	}
	return secret
}

// Delete removes the credential from the keychain
func (k *KeyringStore) Delete() error {
	err := keyring.Delete(keyringService, keyringUser)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}
