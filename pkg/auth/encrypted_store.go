package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"gradewatch/pkg/storage"
	"gradewatch/pkg/vault"
)

// EncryptedFileStore keeps the credentials sealed in the data directory.
// It is the fallback for headless hosts without a keychain.
type EncryptedFileStore struct {
	files      *storage.Manager
	name       string
	passphrase string
	mu         sync.RWMutex
}

// NewEncryptedFileStore creates a sealed-file store. It returns an error
// when no passphrase is configured.
func NewEncryptedFileStore(files *storage.Manager, name, passphrase string) (*EncryptedFileStore, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("encrypted credential store: %w", vault.ErrNoPassphrase)
	}
	return &EncryptedFileStore{files: files, name: name, passphrase: passphrase}, nil
}

func (e *EncryptedFileStore) Name() string {
	return "encrypted-file"
}

// Store seals the credentials to disk
func (e *EncryptedFileStore) Store(account *Account) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if account == nil || account.Username == "" {
		return ErrInvalidCredentials
	}

	plaintext, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	sealed, err := vault.Seal(plaintext, e.passphrase)
	if err != nil {
		return err
	}
	return e.files.WriteFile(e.name, sealed, 0600)
}

// Retrieve unseals the credentials
func (e *EncryptedFileStore) Retrieve() (*Account, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sealed, err := e.files.ReadFile(e.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	plaintext, err := vault.Open(sealed, e.passphrase)
	if err != nil {
		return nil, err
	}

	var account Account
	if err := json.Unmarshal(plaintext, &account); err != nil {
		return nil, fmt.Errorf("failed to parse account: %w", err)
	}
	return &account, nil
}

// Delete removes the sealed file
func (e *EncryptedFileStore) Delete() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.files.Exists(e.name) {
		return ErrCredentialsNotFound
	}
	return e.files.Remove(e.name)
}

func (e *EncryptedFileStore) Exists() bool {
	account, err := e.Retrieve()
	return err == nil && account != nil
}
