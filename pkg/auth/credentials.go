package auth

import (
	"errors"
	"fmt"
	"time"
)

// Account holds the portal login credentials
type Account struct {
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving credentials.
// The bot watches a single account, so stores hold at most one.
type CredentialStore interface {
	// Name identifies the store in status output
	Name() string

	// Store saves the credentials
	Store(account *Account) error

	// Retrieve gets the stored credentials
	Retrieve() (*Account, error)

	// Delete removes the stored credentials
	Delete() error

	// Exists checks if credentials are stored
	Exists() bool
}

// StoreStatus describes what one store holds
type StoreStatus struct {
	Store    string
	Username string
	Found    bool
}

// Manager handles credential lookup with fallback across stores
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a manager that consults stores in order
func NewManager(stores ...CredentialStore) *Manager {
	var usable []CredentialStore
	for _, s := range stores {
		if s != nil {
			usable = append(usable, s)
		}
	}
	return &Manager{stores: usable}
}

// Credentials returns the first complete username/password pair found
func (m *Manager) Credentials() (string, string, error) {
	account, err := m.Retrieve()
	if err != nil {
		return "", "", err
	}
	return account.Username, account.Password, nil
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve() (*Account, error) {
	for _, store := range m.stores {
		account, err := store.Retrieve()
		if err == nil && account != nil && account.Username != "" && account.Password != "" {
			return account, nil
		}
	}
	return nil, ErrCredentialsNotFound
}

// Store saves credentials using the first store that accepts them
func (m *Manager) Store(account *Account) error {
	if account == nil || account.Username == "" {
		return errors.New("username is required")
	}
	if account.Password == "" {
		return errors.New("password is required")
	}

	account.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(account)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Delete removes credentials from every writable store
func (m *Manager) Delete() error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		err := store.Delete()
		switch {
		case err == nil:
			deleted = true
		case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrCredentialsNotFound):
		default:
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	if !deleted {
		return ErrCredentialsNotFound
	}
	return nil
}

// Status reports, per store, whether credentials are present
func (m *Manager) Status() []StoreStatus {
	statuses := make([]StoreStatus, 0, len(m.stores))
	for _, store := range m.stores {
		status := StoreStatus{Store: store.Name()}
		if account, err := store.Retrieve(); err == nil && account != nil {
			status.Found = true
			status.Username = account.Username
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// SanitizeAccount creates a copy of the account with the password masked
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}

	return &Account{
		Username:     account.Username,
		Password:     maskString(account.Password),
		LastModified: account.LastModified,
	}
}

// maskString masks all but the first 2 and last 2 characters of a string
func maskString(s string) string {
	if len(s) <= 6 {
		return "********"
	}
	return s[:2] + "..." + s[len(s)-2:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
