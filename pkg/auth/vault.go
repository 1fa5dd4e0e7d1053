package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"

	"smd/pkg/logger"
)

const (
	// DefaultKeyFile holds the raw symmetric key bytes
	DefaultKeyFile = ".smd_key"
	// DefaultCredentialsFile holds the encrypted credential record
	DefaultCredentialsFile = ".smd_credentials.json"

	credentialKey = "instagram_password"
)

// LoadOrCreateKey returns the symmetric key stored at path, generating
// and persisting a fresh one with owner-only permissions when the file
// does not exist.
//
// This is NOT safe to call from concurrent first-time processes: two
// racers may each generate a key and the loser's ciphertext becomes
// undecryptable. The behavior under such races is unspecified upstream
// and deliberately left as is.
func LoadOrCreateKey(path string) ([]byte, error) {
	if key, err := os.ReadFile(path); err == nil {
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("key file %s has invalid size %d", path, len(key))
		}
		return key, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create key directory: %w", err)
		}
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}
	return key, nil
}

// Vault encrypts and decrypts a single stored credential under an
// injected symmetric key. It holds no state beyond the key and the
// credential file path.
type Vault struct {
	key      []byte
	credFile string
	log      logger.Logger
}

// NewVault creates a vault using the given key and credential file path
func NewVault(key []byte, credentialsFile string, log logger.Logger) *Vault {
	if credentialsFile == "" {
		credentialsFile = DefaultCredentialsFile
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Vault{key: key, credFile: credentialsFile, log: log}
}

// Encrypt authenticates-and-encrypts the secret and encodes the result
// for text storage
func (v *Vault) Encrypt(secret string) (string, error) {
	aead, err := chacha20poly1305.New(v.key)
	if err != nil {
		return "", fmt.Errorf("failed to initialize cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(secret), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt decodes and decrypts a stored credential. Any failure (wrong
// key, corrupted data, tampering) yields an empty string: callers must
// treat "" as "no credential available", not as an empty password. A
// legitimately empty stored password is indistinguishable from absence.
func (v *Vault) Decrypt(ciphertext string) string {
	sealed, err := base64.URLEncoding.DecodeString(ciphertext)
	if err != nil {
		return ""
	}

	aead, err := chacha20poly1305.New(v.key)
	if err != nil {
		return ""
	}

	if len(sealed) < aead.NonceSize() {
		return ""
	}
	nonce, data := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, data, nil)
	if err != nil {
		return ""
	}
	return string(plaintext)
}

// StorePassword encrypts the password and overwrites the credential file
// with owner-only permissions
func (v *Vault) StorePassword(password string) error {
	ciphertext, err := v.Encrypt(password)
	if err != nil {
		return err
	}

	record := map[string]string{credentialKey: ciphertext}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(v.credFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	// WriteFile only applies the mode on creation
	if err := os.Chmod(v.credFile, 0600); err != nil {
		v.log.WithError(err).Warn("failed to tighten credentials file permissions")
	}
	return nil
}

// Password reads and decrypts the stored credential, returning "" when
// the file is missing, unreadable, or the ciphertext does not decrypt
func (v *Vault) Password() string {
	data, err := os.ReadFile(v.credFile)
	if err != nil {
		return ""
	}

	var record map[string]string
	if err := json.Unmarshal(data, &record); err != nil {
		v.log.WithError(err).Debug("credentials file is not valid JSON")
		return ""
	}

	return v.Decrypt(record[credentialKey])
}

// Delete removes the credential file. The key file is left in place.
func (v *Vault) Delete() error {
	if err := os.Remove(v.credFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}
	return nil
}
