package scraper

import (
	"context"

	"gradewatch/pkg/history"
	"gradewatch/pkg/models"
	"gradewatch/pkg/portal"
	"gradewatch/pkg/session"
)

// BrowserSession is a browser scoped to one cycle
type BrowserSession interface {
	OpenPage(ctx context.Context, state *session.State) (portal.Page, error)
	Close() error
}

// LaunchFunc starts a browser for a cycle
type LaunchFunc func(ctx context.Context) (BrowserSession, error)

// SessionStore loads and persists the browsing session snapshot
type SessionStore interface {
	Load() (*session.State, error)
	Save(state *session.State) error
}

// HistoryStore loads and persists the reported grades
type HistoryStore interface {
	Load() []models.GradeRecord
	Save(records []models.GradeRecord) error
}

var (
	_ SessionStore = (*session.Store)(nil)
	_ HistoryStore = (*history.Store)(nil)
)
