package notify

import (
	"context"

	"gradewatch/pkg/models"
)

type multi []Notifier

// Multi fans every notification out to each non-nil notifier, in order
func Multi(notifiers ...Notifier) Notifier {
	var m multi
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

func (m multi) NotifyGrade(ctx context.Context, rec models.GradeRecord) {
	for _, n := range m {
		n.NotifyGrade(ctx, rec)
	}
}

func (m multi) NotifyError(ctx context.Context, message string) {
	for _, n := range m {
		n.NotifyError(ctx, message)
	}
}
