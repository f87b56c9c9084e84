package auth

import "sync"

// MockStore implements CredentialStore for testing purposes
type MockStore struct {
	account *Account
	mu      sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	DeleteError   error
}

// NewMockStore creates a new mock credential store
func NewMockStore() *MockStore {
	return &MockStore{}
}

// NewMockStoreWith creates a mock store already holding credentials
func NewMockStoreWith(username, password string) *MockStore {
	return &MockStore{account: &Account{Username: username, Password: password}}
}

func (m *MockStore) Name() string {
	return "mock"
}

func (m *MockStore) Store(account *Account) error {
	if m.StoreError != nil {
		return m.StoreError
	}
	if account == nil || account.Username == "" {
		return ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	accountCopy := *account
	m.account = &accountCopy
	return nil
}

func (m *MockStore) Retrieve() (*Account, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.account == nil {
		return nil, ErrCredentialsNotFound
	}
	accountCopy := *m.account
	return &accountCopy, nil
}

func (m *MockStore) Delete() error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.account == nil {
		return ErrCredentialsNotFound
	}
	m.account = nil
	return nil
}

func (m *MockStore) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.account != nil
}

// NewMockManager creates a Manager with a mock store for testing
func NewMockManager() (*Manager, *MockStore) {
	mockStore := NewMockStore()
	return NewManager(mockStore), mockStore
}
