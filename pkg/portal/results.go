package portal

import (
	"context"

	"gradewatch/pkg/config"
	gwerrors "gradewatch/pkg/errors"
)

// OpenResults brings the page to the results view. When no dedicated
// results URL is configured the landing page is expected to host it.
func OpenResults(ctx context.Context, page Page, cfg *config.PortalConfig) error {
	if cfg.ResultsURL != "" {
		navCtx, cancel := context.WithTimeout(ctx, cfg.NavigationTimeout)
		err := page.Navigate(navCtx, cfg.ResultsURL)
		cancel()
		if err != nil {
			return gwerrors.Wrap(gwerrors.ErrorTypeNavigation, "failed to open the results view", err)
		}
	}

	if err := page.WaitFor(ctx, cfg.Selectors.PeriodTrigger, cfg.ResultsTimeout); err != nil {
		return gwerrors.Wrap(gwerrors.ErrorTypeNavigation, "results view did not render the period selector", err)
	}
	return nil
}
