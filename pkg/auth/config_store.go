package auth

import (
	"time"

	"gradewatch/pkg/config"
)

// ConfigStore serves the credentials given in configuration (HP_USERNAME
// and HP_PASSWORD). It is read-only.
type ConfigStore struct {
	username string
	password string
}

// NewConfigStore creates a store backed by the portal configuration
func NewConfigStore(cfg *config.PortalConfig) *ConfigStore {
	return &ConfigStore{username: cfg.Username, password: cfg.Password}
}

func (c *ConfigStore) Name() string {
	return "config"
}

// Store is not supported for configuration
func (c *ConfigStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

func (c *ConfigStore) Retrieve() (*Account, error) {
	if c.username == "" || c.password == "" {
		return nil, ErrCredentialsNotFound
	}
	return &Account{
		Username:     c.username,
		Password:     c.password,
		LastModified: time.Now(),
	}, nil
}

// Delete is not supported for configuration
func (c *ConfigStore) Delete() error {
	return ErrStoreUnavailable
}

func (c *ConfigStore) Exists() bool {
	return c.username != "" && c.password != ""
}
