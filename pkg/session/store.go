// Package session persists the authenticated browsing-context snapshot
// between run cycles.
package session

import (
	"errors"
	"io/fs"

	gwerrors "gradewatch/pkg/errors"
	"gradewatch/pkg/logger"
	"gradewatch/pkg/storage"
	"gradewatch/pkg/vault"
)

// Store reads and writes the single session artifact
type Store struct {
	files      *storage.Manager
	name       string
	passphrase string
	logger     logger.Logger
}

// NewStore creates a session store. When passphrase is set the artifact
// is sealed at rest; plain artifacts are still readable.
func NewStore(files *storage.Manager, name, passphrase string, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Store{
		files:      files,
		name:       name,
		passphrase: passphrase,
		logger:     log.WithField("component", "session"),
	}
}

// Load returns the stored state, or nil when no artifact exists yet.
// An unreadable or invalid artifact is reported as a session error.
func (s *Store) Load() (*State, error) {
	data, err := s.files.ReadFile(s.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, gwerrors.Wrap(gwerrors.ErrorTypeSession, "failed to read session artifact", err)
	}

	if vault.IsSealed(data) {
		data, err = vault.Open(data, s.passphrase)
		if err != nil {
			return nil, gwerrors.Wrap(gwerrors.ErrorTypeSession, "failed to unseal session artifact", err)
		}
	}

	state, err := Parse(data)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.ErrorTypeSession, "session artifact is invalid", err)
	}
	return state, nil
}

// Save overwrites the artifact with the given state
func (s *Store) Save(state *State) error {
	if state == nil {
		state = &State{}
	}

	data, err := state.Marshal()
	if err != nil {
		return gwerrors.Wrap(gwerrors.ErrorTypeStorage, "failed to encode session state", err)
	}

	if s.passphrase != "" {
		data, err = vault.Seal(data, s.passphrase)
		if err != nil {
			return gwerrors.Wrap(gwerrors.ErrorTypeStorage, "failed to seal session state", err)
		}
	}

	if err := s.files.WriteFile(s.name, data, 0600); err != nil {
		return gwerrors.Wrap(gwerrors.ErrorTypeStorage, "failed to write session artifact", err)
	}

	s.logger.InfoWithFields("Session saved", map[string]interface{}{
		"cookies": len(state.Cookies),
		"origins": len(state.Origins),
		"sealed":  s.passphrase != "",
	})
	return nil
}

// Seed writes blob as the initial artifact when none exists yet. It
// returns true when the artifact was written.
func (s *Store) Seed(blob string) (bool, error) {
	if blob == "" || s.Exists() {
		return false, nil
	}

	state, err := Parse([]byte(blob))
	if err != nil {
		return false, gwerrors.Wrap(gwerrors.ErrorTypeSession, "seed session blob is invalid", err)
	}
	if err := s.Save(state); err != nil {
		return false, err
	}

	s.logger.Info("Session artifact seeded from configuration")
	return true, nil
}

// Exists checks if an artifact is present
func (s *Store) Exists() bool {
	return s.files.Exists(s.name)
}

// Clear removes the artifact, forcing a fresh login on the next cycle
func (s *Store) Clear() error {
	if err := s.files.Remove(s.name); err != nil {
		return gwerrors.Wrap(gwerrors.ErrorTypeStorage, "failed to remove session artifact", err)
	}
	return nil
}

// Path returns the location of the artifact
func (s *Store) Path() string {
	return s.files.Path(s.name)
}
