package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gradewatch/pkg/browser"
	"gradewatch/pkg/logger"
	"gradewatch/pkg/notify"
	"gradewatch/pkg/scraper"
	"gradewatch/pkg/ui"
	"gradewatch/pkg/ui/tui"
)

var (
	runOnce     bool
	runInterval time.Duration
	runHeadless bool
	runURL      string
	runWebhook  string
	runTUI      bool
	runDesktop  bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the portal and notify new grades",
	Long: `Run the watch loop: every interval, log into the portal if needed, scan all
reporting periods and post each never-reported grade to the webhook.

The loop never stops on its own. A failed cycle is posted to the webhook as
an error message and the next cycle runs after the usual interval. SIGINT
or SIGTERM stops the loop between cycles.`,
	Example: `  # Watch forever with the configured interval
  gradewatch run

  # Single cycle, e.g. from cron; exits non-zero if the cycle failed
  gradewatch run --once

  # Check every 15 minutes with a visible browser
  gradewatch run --interval 15m --headless=false

  # Live dashboard; p pauses scheduled cycles, q quits
  gradewatch run --tui`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runOnce, "once", false, "run a single cycle and exit")
	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "time between cycles (default from CHECK_INTERVAL_SECONDS or 1h)")
	runCmd.Flags().BoolVar(&runHeadless, "headless", true, "run the browser without a window")
	runCmd.Flags().StringVar(&runURL, "url", "", "portal entry URL (overrides HP_URL)")
	runCmd.Flags().StringVar(&runWebhook, "webhook", "", "webhook URL (overrides DISCORD_WEBHOOK_URL)")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "show a live dashboard instead of console logs")
	runCmd.Flags().BoolVar(&runDesktop, "desktop", false, "also show desktop notifications")
}

func runWatch(cmd *cobra.Command, args []string) error {
	flags := map[string]interface{}{
		"url":      runURL,
		"webhook":  runWebhook,
		"interval": runInterval,
	}
	if cmd.Flags().Changed("headless") {
		flags["headless"] = runHeadless
	}

	var board *tui.TUI
	if runTUI && !runOnce {
		board = tui.NewTUI()
		logOutput = board.LogWriter()
	}

	a, err := newApp(true, flags)
	if err != nil {
		return err
	}
	for _, w := range a.cfg.Warnings() {
		a.log.Warn(w)
	}
	a.seedSession()

	var dashboard ui.Dashboard
	if board != nil {
		dashboard = board
	}

	var desktop notify.Notifier
	if runDesktop {
		desktop = ui.NewDesktopNotifier(ui.PlatformSender())
		if desktop == nil {
			a.log.Warn("Desktop notifications are not supported on this platform")
		}
	}
	notifier := notify.Multi(
		notify.NewDiscord(&a.cfg.Webhook, a.log),
		notify.NewEmail(&a.cfg.Email, &a.cfg.Webhook, a.log),
		desktop,
	)
	s, err := scraper.New(a.cfg, scraper.Deps{
		Launch:      browserLauncher(a),
		Sessions:    a.sessions,
		History:     a.history,
		Credentials: a.creds,
		Notifier:    notifier,
		Dashboard:   dashboard,
	}, a.log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runOnce {
		report, err := s.RunOnce(ctx)
		if err != nil {
			return err
		}
		ui.PrintSuccess("Cycle complete")
		ui.PrintInfo("Grades scanned", itoa(report.Scanned))
		ui.PrintInfo("New grades", itoa(report.New))
		return nil
	}

	logger.LogComponentStart(a.log, "gradewatch", map[string]interface{}{
		"version":  version,
		"data_dir": a.files.DataDir(),
		"interval": a.cfg.Schedule.Interval.String(),
	})
	if board != nil {
		return runWithDashboard(ctx, s, board)
	}
	return s.Run(ctx)
}

// runWithDashboard runs the loop behind the dashboard. Quitting the
// dashboard stops the loop once the current cycle is over.
func runWithDashboard(ctx context.Context, s *scraper.Scraper, board *tui.TUI) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
		board.Stop()
	}()

	uiErr := board.Start()
	cancel()
	ui.PrintInfo("Stopping", "waiting for the current cycle to finish")
	if err := <-done; err != nil {
		return err
	}
	return uiErr
}

// browserLauncher starts one browser per cycle from the configuration
func browserLauncher(a *app) scraper.LaunchFunc {
	return func(ctx context.Context) (scraper.BrowserSession, error) {
		b, err := browser.Launch(ctx, &a.cfg.Browser, a.log)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}
