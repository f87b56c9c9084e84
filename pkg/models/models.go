package models

import "strings"

// NoClassAverage is stored when the portal shows no class average for a grade
const NoClassAverage = "N/A"

// GradeRecord is one grade as displayed by the portal
type GradeRecord struct {
	Subject      string `json:"subject"`
	Date         string `json:"date"`
	Grade        string `json:"grade"`
	ClassAverage string `json:"class_average,omitempty"`
}

// RecordKey is the identity of a grade record
type RecordKey struct {
	Subject string
	Date    string
	Grade   string
}

// Key returns the trimmed identity triple. The class average is not part
// of it, so the same grade seen with a different average is not a new grade.
func (r GradeRecord) Key() RecordKey {
	return RecordKey{
		Subject: strings.TrimSpace(r.Subject),
		Date:    strings.TrimSpace(r.Date),
		Grade:   strings.TrimSpace(r.Grade),
	}
}

// SameAs reports whether two records are identity-equal
func (r GradeRecord) SameAs(other GradeRecord) bool {
	return r.Key() == other.Key()
}

// HasClassAverage reports whether a real class average was captured
func (r GradeRecord) HasClassAverage() bool {
	avg := strings.TrimSpace(r.ClassAverage)
	return avg != "" && avg != NoClassAverage
}
