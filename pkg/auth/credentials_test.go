package auth

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gradewatch/pkg/config"
	"gradewatch/pkg/storage"
	"gradewatch/pkg/vault"
)

func TestManagerFallback(t *testing.T) {
	empty := NewMockStore()
	filled := NewMockStoreWith("jdoe", "hunter22")
	manager := NewManager(nil, empty, filled)

	username, password, err := manager.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "jdoe", username)
	assert.Equal(t, "hunter22", password)
}

func TestManagerNoCredentials(t *testing.T) {
	manager := NewManager(NewConfigStore(&config.PortalConfig{}), NewMockStore())

	_, _, err := manager.Credentials()
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerSkipsIncompleteAccount(t *testing.T) {
	partial := NewMockStore()
	require.NoError(t, partial.Store(&Account{Username: "jdoe"}))
	manager := NewManager(partial, NewMockStoreWith("other", "pw"))

	username, _, err := manager.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "other", username)
}

func TestManagerStoreAndDelete(t *testing.T) {
	readOnly := NewConfigStore(&config.PortalConfig{})
	mock := NewMockStore()
	manager := NewManager(readOnly, mock)

	require.NoError(t, manager.Store(&Account{Username: "jdoe", Password: "pw"}))
	assert.True(t, mock.Exists())

	stored, err := mock.Retrieve()
	require.NoError(t, err)
	assert.False(t, stored.LastModified.IsZero())

	require.NoError(t, manager.Delete())
	assert.False(t, mock.Exists())

	assert.ErrorIs(t, manager.Delete(), ErrCredentialsNotFound)
}

func TestManagerStoreValidation(t *testing.T) {
	manager, _ := NewMockManager()
	assert.Error(t, manager.Store(&Account{Password: "pw"}))
	assert.Error(t, manager.Store(&Account{Username: "jdoe"}))
}

func TestManagerStoreErrors(t *testing.T) {
	failing := NewMockStore()
	failing.StoreError = errors.New("disk full")
	manager := NewManager(failing)

	err := manager.Store(&Account{Username: "jdoe", Password: "pw"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.ErrorIs(t, NewManager().Store(&Account{Username: "a", Password: "b"}), ErrStoreUnavailable)
}

func TestManagerStatus(t *testing.T) {
	manager := NewManager(
		NewConfigStore(&config.PortalConfig{Username: "cfg-user", Password: "pw"}),
		NewMockStore(),
	)

	statuses := manager.Status()
	require.Len(t, statuses, 2)
	assert.Equal(t, StoreStatus{Store: "config", Username: "cfg-user", Found: true}, statuses[0])
	assert.Equal(t, StoreStatus{Store: "mock"}, statuses[1])
}

func TestConfigStore(t *testing.T) {
	store := NewConfigStore(&config.PortalConfig{Username: "jdoe", Password: "pw"})
	assert.True(t, store.Exists())

	account, err := store.Retrieve()
	require.NoError(t, err)
	assert.Equal(t, "jdoe", account.Username)

	assert.ErrorIs(t, store.Store(account), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete(), ErrStoreUnavailable)

	partial := NewConfigStore(&config.PortalConfig{Username: "jdoe"})
	assert.False(t, partial.Exists())
	_, err = partial.Retrieve()
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEncryptedFileStore(t *testing.T) {
	files, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)

	_, err = NewEncryptedFileStore(files, "credentials.enc", "")
	assert.ErrorIs(t, err, vault.ErrNoPassphrase)

	store, err := NewEncryptedFileStore(files, "credentials.enc", "passphrase")
	require.NoError(t, err)
	assert.False(t, store.Exists())

	require.NoError(t, store.Store(&Account{Username: "jdoe", Password: "hunter22"}))
	assert.True(t, store.Exists())

	raw, err := os.ReadFile(files.Path("credentials.enc"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter22")

	account, err := store.Retrieve()
	require.NoError(t, err)
	assert.Equal(t, "hunter22", account.Password)

	wrong, err := NewEncryptedFileStore(files, "credentials.enc", "other")
	require.NoError(t, err)
	_, err = wrong.Retrieve()
	assert.ErrorIs(t, err, vault.ErrDecrypt)

	require.NoError(t, store.Delete())
	assert.ErrorIs(t, store.Delete(), ErrCredentialsNotFound)
}

func TestMockStore(t *testing.T) {
	store := NewMockStore()
	assert.Equal(t, "mock", store.Name())

	_, err := store.Retrieve()
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.ErrorIs(t, store.Store(nil), ErrInvalidCredentials)

	store.RetrieveError = errors.New("boom")
	_, err = store.Retrieve()
	assert.EqualError(t, err, "boom")
}

func TestSanitizeAccount(t *testing.T) {
	sanitized := SanitizeAccount(&Account{Username: "jdoe", Password: "averylongpassword"})
	assert.Equal(t, "jdoe", sanitized.Username)
	assert.Equal(t, "av...rd", sanitized.Password)

	assert.Equal(t, "********", SanitizeAccount(&Account{Password: "short"}).Password)
	assert.Nil(t, SanitizeAccount(nil))
}
