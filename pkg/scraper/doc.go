// Package scraper runs the grade watch cycle.
//
// A cycle launches a browser, restores the stored session, makes sure the
// portal is logged in, scans every reporting period, reconciles the
// scanned grades against the history file and notifies each grade that
// was never reported before. The history is written only when something
// new was found.
//
// Run repeats cycles forever on a fixed interval. A failed cycle is
// reported through the notifier's error message and the loop carries on
// with the next interval:
//
//	s, err := scraper.New(cfg, scraper.Deps{
//	    Launch:      launch,
//	    Sessions:    sessions,
//	    History:     history,
//	    Credentials: credentials,
//	    Notifier:    notifier,
//	}, log)
//	if err != nil {
//	    return err
//	}
//	return s.Run(ctx)
//
// Cancelling ctx stops the loop between cycles. A cycle already running
// is not interrupted; its page operations are bounded by their own
// timeouts.
package scraper
