// Package history persists the set of grade records already reported.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	gwerrors "gradewatch/pkg/errors"
	"gradewatch/pkg/logger"
	"gradewatch/pkg/models"
	"gradewatch/pkg/storage"
)

// Store reads and writes the grade history file
type Store struct {
	files  *storage.Manager
	name   string
	logger logger.Logger
}

// NewStore creates a history store for the named file in the data directory
func NewStore(files *storage.Manager, name string, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Store{files: files, name: name, logger: log.WithField("component", "history")}
}

// Load returns the stored history in discovery order. A missing, empty or
// unreadable file yields an empty history and never an error.
func (s *Store) Load() []models.GradeRecord {
	data, err := s.files.ReadFile(s.name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.WithError(err).Warn("History file unreadable, starting from empty history")
		}
		return []models.GradeRecord{}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []models.GradeRecord{}
	}

	var records []models.GradeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.WithError(err).WarnWithFields("History file is corrupt, starting from empty history", map[string]interface{}{
			"path": s.files.Path(s.name),
		})
		return []models.GradeRecord{}
	}
	if records == nil {
		records = []models.GradeRecord{}
	}
	return records
}

// Save replaces the history file with the given records, pretty-printed
func (s *Store) Save(records []models.GradeRecord) error {
	if records == nil {
		records = []models.GradeRecord{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "    ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(records); err != nil {
		return gwerrors.Wrap(gwerrors.ErrorTypeStorage, "failed to encode history", err)
	}

	if err := s.files.WriteFile(s.name, buf.Bytes(), 0644); err != nil {
		return gwerrors.Wrap(gwerrors.ErrorTypeStorage, fmt.Sprintf("failed to write %s", s.name), err)
	}

	s.logger.DebugWithFields("History saved", map[string]interface{}{
		"records": len(records),
	})
	return nil
}

// Path returns the location of the history file
func (s *Store) Path() string {
	return s.files.Path(s.name)
}
