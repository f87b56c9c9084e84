package portal

import (
	"context"
	"fmt"
	"strings"
)

// LoginDetector decides whether the page is showing a login gateway
// instead of the portal.
type LoginDetector interface {
	RequiresLogin(ctx context.Context, page Page) (bool, error)
}

// SignalDetector flags a login page when the URL contains one of the
// marker tokens OR a password field is present. Neither signal alone is
// reliable across SSO gateways.
type SignalDetector struct {
	URLMarkers    []string
	PasswordField string
}

// NewSignalDetector creates a detector with the given markers and selector
func NewSignalDetector(markers []string, passwordField string) *SignalDetector {
	return &SignalDetector{URLMarkers: markers, PasswordField: passwordField}
}

func (d *SignalDetector) RequiresLogin(ctx context.Context, page Page) (bool, error) {
	if d.urlMatches(page.URL()) {
		return true, nil
	}

	if d.PasswordField == "" {
		return false, nil
	}
	n, err := page.Count(ctx, d.PasswordField)
	if err != nil {
		return false, fmt.Errorf("failed to look for a password field: %w", err)
	}
	return n > 0, nil
}

func (d *SignalDetector) urlMatches(url string) bool {
	lower := strings.ToLower(url)
	for _, marker := range d.URLMarkers {
		if marker != "" && strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}
