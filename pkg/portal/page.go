package portal

import (
	"context"
	"errors"
	"time"

	"gradewatch/pkg/session"
)

// ErrPageClosed is returned (wrapped) by Page implementations when the
// underlying browser target is gone and no further interaction can work.
var ErrPageClosed = errors.New("page closed")

// Page is the subset of browser interactions the portal flows need.
// Selectors are CSS selectors.
type Page interface {
	// Navigate loads url and waits for the load event
	Navigate(ctx context.Context, url string) error
	// URL returns the current location after redirects
	URL() string
	// Count returns how many elements currently match selector, without waiting
	Count(ctx context.Context, selector string) (int, error)
	// Fill replaces the value of the first element matching selector
	Fill(ctx context.Context, selector, value string) error
	// Click clicks the first element matching selector
	Click(ctx context.Context, selector string) error
	// ClickNth clicks the element at index among those matching selector
	ClickNth(ctx context.Context, selector string, index int) error
	// WaitFor waits until selector matches a visible element
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	// WaitStable waits for network and DOM activity to settle
	WaitStable(ctx context.Context, timeout time.Duration) error
	// OuterHTML returns the markup of the first element matching selector
	OuterHTML(ctx context.Context, selector string) (string, error)
	// StorageState snapshots cookies and local storage of the browsing context
	StorageState(ctx context.Context) (*session.State, error)
}

// SleepFunc pauses for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// firstMatch returns the first candidate selector present on the page.
// Candidates whose lookup fails are skipped.
func firstMatch(ctx context.Context, page Page, candidates []string) (string, bool) {
	for _, candidate := range candidates {
		n, err := page.Count(ctx, candidate)
		if err == nil && n > 0 {
			return candidate, true
		}
	}
	return "", false
}
