// Package reconcile decides which freshly scanned grades have never been
// reported before.
package reconcile

import "gradewatch/pkg/models"

// Result is the outcome of one reconciliation
type Result struct {
	// New holds the unseen records in notification order
	New []models.GradeRecord
	// History is the input history with New appended
	History []models.GradeRecord
}

// Changed reports whether the history must be persisted
func (r Result) Changed() bool {
	return len(r.New) > 0
}

// NotificationOrder returns fresh records in the order they are notified:
// reverse of discovery. The portal lists newest first, so reversing gets
// the chat messages close to posting order. The date column is display
// text and is deliberately not parsed to sort chronologically.
func NotificationOrder(fresh []models.GradeRecord) []models.GradeRecord {
	ordered := make([]models.GradeRecord, len(fresh))
	for i, rec := range fresh {
		ordered[len(fresh)-1-i] = rec
	}
	return ordered
}

// Reconcile compares fresh records against history. Identity ignores the
// class average and surrounding whitespace. A record repeated within fresh
// is only reported once. The input history slice is not modified.
func Reconcile(fresh, history []models.GradeRecord) Result {
	updated := make([]models.GradeRecord, len(history), len(history)+len(fresh))
	copy(updated, history)

	var newRecords []models.GradeRecord
	for _, rec := range NotificationOrder(fresh) {
		if contains(updated, rec) {
			continue
		}
		newRecords = append(newRecords, rec)
		updated = append(updated, rec)
	}

	return Result{New: newRecords, History: updated}
}

func contains(records []models.GradeRecord, rec models.GradeRecord) bool {
	for _, known := range records {
		if known.SameAs(rec) {
			return true
		}
	}
	return false
}
